package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/model"
)

// Number of arguments expected by the install command.
const installCommandArgs = 2

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install APP ARTIFACT",
		Short: "Install a downloaded artifact",
		Long: `Install an already downloaded .dmg, .zip or tarball for a configured
application, replacing the bundle at its install path.`,
		Args: cobra.ExactArgs(installCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args[0], args[1])
		},
	}

	return cmd
}

func runInstall(cmd *cobra.Command, id, artifact string) error {
	artifactPath, err := filepath.Abs(artifact)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrInvalidPath, artifact)
	}

	printer := newProgressPrinter(cmd.OutOrStdout())
	env, err := loadEnvironment(printer.hooks())
	if err != nil {
		return err
	}
	e, err := env.registry.Get(id)
	if err != nil {
		return err
	}

	switch state := e.Install(cmd.Context(), artifactPath); state {
	case model.StateUpdated:
		return nil
	case model.StateUnsupported:
		return fmt.Errorf("%s: %w", artifact, errors.ErrUnsupportedFormat)
	default:
		return fmt.Errorf("%s: %w", id, errors.ErrInstallFailed)
	}
}
