package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/freshen/pkg/engine"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "check [APP...]",
		Short: "Check for updates",
		Long: `Resolve the latest version of the given applications, or of all
applications when none are given, and report which ones can be updated.

Resolved versions are cached; use --refresh to ignore the cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, refresh)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Resolve latest versions again instead of using the cache")

	return cmd
}

func runCheck(cmd *cobra.Command, ids []string, refresh bool) error {
	env, err := loadEnvironment(engine.Hooks{})
	if err != nil {
		return err
	}

	statuses, err := env.registry.CheckAll(cmd.Context(), ids, refresh)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(statuses) == 0 {
		_, _ = fmt.Fprintln(out, "No applications configured.")
		return nil
	}

	updates := 0
	w := newTable(out)
	_, _ = fmt.Fprintln(w, "ID\tINSTALLED\tLATEST\tCHECKED\tSTATUS")
	for _, s := range statuses {
		installed, latest, checked := notAvailable, notAvailable, notAvailable
		if s.IsInstalled {
			installed = s.Installed.String()
		}
		if !s.Latest.IsZero() {
			latest = s.Latest.String()
		}
		if entry, err := env.versions.Get(s.AppID); err == nil {
			checked = humanize.Time(entry.ResolvedAt)
		}
		if s.Updatable {
			updates++
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.AppID, installed, latest, checked, describeStatus(s))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out)
	switch updates {
	case 0:
		_, _ = fmt.Fprintln(out, render(currentStyle, "Everything is up to date."))
	case 1:
		_, _ = fmt.Fprintln(out, render(updateStyle, "1 update available."))
	default:
		_, _ = fmt.Fprintln(out, render(updateStyle, fmt.Sprintf("%d updates available.", updates)))
	}
	return nil
}

func describeStatus(s engine.Status) string {
	switch {
	case s.Latest.IsZero():
		return render(faintStyle, "unknown")
	case s.FromAppStore:
		return render(faintStyle, "app store")
	case s.Updatable:
		return render(updateStyle, "update available")
	case !s.IsInstalled:
		return render(faintStyle, "not installed")
	default:
		return render(currentStyle, "up to date")
	}
}
