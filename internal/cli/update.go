package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/engine"
	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/model"
)

// NewUpdateCmd creates the update command.
func NewUpdateCmd() *cobra.Command {
	var (
		all    bool
		dryRun bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "update [APP...]",
		Short: "Update applications",
		Long: `Download and install the latest version of one or more applications.

Use --all to update every configured application. Applications that are
already up to date are skipped unless --force is given. Running instances are
closed before the install and reopened afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, args, all, dryRun, force)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Update all configured applications")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be updated without installing")
	cmd.Flags().BoolVar(&force, "force", false, "Reinstall the latest version even when up to date")

	return cmd
}

func runUpdate(cmd *cobra.Command, ids []string, all, dryRun, force bool) error {
	if !all && len(ids) == 0 {
		return fmt.Errorf("no applications specified and --all flag not used: %w", errors.ErrNoAppsSpecified)
	}

	out := cmd.OutOrStdout()
	printer := newProgressPrinter(out)
	env, err := loadEnvironment(printer.hooks())
	if err != nil {
		return err
	}

	if removed, err := env.cacheManager().CleanTemp(); err != nil {
		logger.Warn("Failed to remove partial downloads", logger.Fields{"error": err.Error()})
	} else if removed > 0 {
		logger.Debug("Removed partial downloads", logger.Fields{"count": removed})
	}

	statuses, err := env.registry.CheckAll(cmd.Context(), ids, false)
	if err != nil {
		return err
	}

	var pending []string
	for _, s := range statuses {
		switch {
		case s.FromAppStore:
			_, _ = fmt.Fprintf(out, "%s: %s\n", s.AppID, render(faintStyle, "updated by the App Store, skipped"))
		case s.Updatable || (force && !s.Latest.IsZero()):
			pending = append(pending, s.AppID)
		case s.Latest.IsZero():
			_, _ = fmt.Fprintf(out, "%s: %s\n", s.AppID, render(faintStyle, "latest version unknown, skipped"))
		default:
			logger.Debug("No update needed", logger.Fields{"app": s.AppID, "installed": s.Installed.String(), "latest": s.Latest.String()})
		}
	}

	logger.Debugf("%d of %d applications selected for update", len(pending), len(statuses))
	if len(pending) == 0 {
		_, _ = fmt.Fprintln(out, render(currentStyle, "Everything is up to date."))
		return nil
	}

	if dryRun {
		_, _ = fmt.Fprintln(out, render(headerStyle, "Would update:"))
		for _, s := range statuses {
			if slices.Contains(pending, s.AppID) {
				_, _ = fmt.Fprintf(out, "  %s %s -> %s\n", s.AppID, versionOrNone(s), s.Latest)
			}
		}
		return nil
	}

	updateAll := env.registry.UpdateAll
	if force {
		updateAll = env.registry.ReinstallAll
	}
	results, err := updateAll(cmd.Context(), pending)
	if err != nil {
		return err
	}
	return summarize(cmd, results)
}

// summarize prints one line per result and fails when any update failed.
func summarize(cmd *cobra.Command, results []engine.Result) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, render(headerStyle, "Summary:"))

	failed := 0
	for _, r := range results {
		if r.State == model.StateFailed {
			failed++
		}
		_, _ = fmt.Fprintf(out, "  %s: %s\n", r.AppID, renderState(r.State))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d: %w", failed, len(results), errors.ErrUpdatesFailed)
	}
	return nil
}

func versionOrNone(s engine.Status) string {
	if !s.IsInstalled {
		return "(not installed)"
	}
	return s.Installed.String()
}
