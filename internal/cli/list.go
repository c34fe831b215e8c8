package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/freshen/pkg/engine"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List managed applications",
		Long:  "List the configured applications and the version currently installed. No network access is made.",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment(engine.Hooks{})
	if err != nil {
		return err
	}

	engines := env.registry.Engines()
	if len(engines) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No applications configured.")
		return nil
	}

	w := newTable(cmd.OutOrStdout())
	_, _ = fmt.Fprintln(w, "ID\tNAME\tINSTALLED\tPATH")
	for _, e := range engines {
		app := e.App()
		installed := notAvailable
		if v, ok := e.InstalledVersion(); ok {
			installed = v.String()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", app.ID, app.DisplayName(), installed, app.InstallPath)
	}
	return w.Flush()
}
