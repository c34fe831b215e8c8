package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/cache"
	"github.com/glorpus-work/freshen/pkg/engine"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the download and version caches",
		Long:  "Clean, show information about, and locate downloaded artifacts, staged bundles and resolved versions",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var options cache.CleanOptions

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean caches",
		Long:  "Remove cached data. Without flags everything is removed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClean(cmd, options)
		},
	}

	cmd.Flags().BoolVar(&options.All, "all", false, "Clean all cached data")
	cmd.Flags().BoolVar(&options.Artifacts, "artifacts", false, "Clean only downloaded artifacts")
	cmd.Flags().BoolVar(&options.Staging, "staging", false, "Clean only staged bundles")
	cmd.Flags().BoolVar(&options.Versions, "versions", false, "Forget resolved latest versions")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the size of the artifact cache and staging area and the number of resolved versions",
		Args:  cobra.NoArgs,
		RunE:  runCacheInfo,
	}

	return cmd
}

func newCacheDirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the path to the cache directory",
		Args:  cobra.NoArgs,
		RunE:  runCacheDir,
	}

	return cmd
}

func cacheOperation() (*cache.CacheOperation, error) {
	env, err := loadEnvironment(engine.Hooks{})
	if err != nil {
		return nil, err
	}
	return cache.NewCacheOperation(env.cacheManager()), nil
}

func runCacheClean(cmd *cobra.Command, options cache.CleanOptions) error {
	op, err := cacheOperation()
	if err != nil {
		return err
	}

	message, err := op.Clean(options)
	if err != nil {
		return err
	}

	logger.Debug("Cache cleaning completed")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), message)
	return nil
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	op, err := cacheOperation()
	if err != nil {
		return err
	}

	message, err := op.GetInfo()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), message)
	return nil
}

func runCacheDir(cmd *cobra.Command, _ []string) error {
	op, err := cacheOperation()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), op.GetDirectory())
	return nil
}
