package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/config"
	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/hooks"
)

const redacted = "********"

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  "View and create the freshen configuration file",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigPathCmd(),
		newConfigInitCmd(),
		newConfigHookTemplateCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Print the effective configuration, defaults included. Credentials are masked.",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	}

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force   bool
		minimal bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long:  "Create a configuration file with example applications. The syntax follows the file extension (.yaml or .toml).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force, minimal)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&minimal, "minimal", false, "Write only the default settings, without example applications")

	return cmd
}

func newConfigHookTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "hook-template TYPE",
		Short:     "Print a hook script template",
		Long:      "Print a tengo template for a pre-install or post-install hook. Save it as a .tengo file and reference it from an application's hooks.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(hooks.PreInstall), string(hooks.PostInstall)},
		RunE: func(cmd *cobra.Command, args []string) error {
			hookType := hooks.HookType(args[0])
			if hookType != hooks.PreInstall && hookType != hooks.PostInstall {
				return fmt.Errorf("%w: unsupported hook type %q", hooks.ErrHookLoad, args[0])
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), hooks.HookTemplate(hookType))
			return err
		},
	}

	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := maskCredentials(cfg).ToYAML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigInit(cmd *cobra.Command, force, minimal bool) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s: %w", path, errors.ErrConfigFileExists)
	}

	cfg := config.ExampleConfig()
	if minimal {
		cfg = config.DefaultConfig()
	}
	if err := cfg.SaveConfig(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	logger.Success("Configuration file created", logger.Fields{"path": path})
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// maskCredentials returns a copy of cfg whose auth secrets are replaced.
func maskCredentials(cfg *config.Config) *config.Config {
	if len(cfg.Settings.Auth) == 0 {
		return cfg
	}
	masked := *cfg
	masked.Settings.Auth = make(map[string]*config.AuthConfig, len(cfg.Settings.Auth))
	for host, a := range cfg.Settings.Auth {
		if a == nil {
			continue
		}
		m := &config.AuthConfig{}
		if a.BasicAuth != nil {
			m.BasicAuth = &config.BasicAuth{Username: a.BasicAuth.Username, Password: redacted}
		}
		if a.BearerAuth != nil {
			m.BearerAuth = &config.BearerAuth{Token: redacted}
		}
		if a.HeaderAuth != nil {
			headers := make(map[string]string, len(a.HeaderAuth.Headers))
			for k := range a.HeaderAuth.Headers {
				headers[k] = redacted
			}
			m.HeaderAuth = &config.HeaderAuth{Headers: headers}
		}
		masked.Settings.Auth[host] = m
	}
	return &masked
}
