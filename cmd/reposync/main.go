// Command reposync clones or updates all YaST repositories in the current
// directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"yastbot/github"
	"yastbot/pkg/reposync"
	"yastbot/utils"
)

func newRootCmd() *cobra.Command {
	cfg := reposync.DefaultConfig()
	var (
		apiURL  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "reposync",
		Short: "Clone or update all repositories of a GitHub organization",
		Long: `Clone the missing repositories of a GitHub organization and update the
existing checkouts (checkout the default branch, fetch with pruning, pull).

The repository list is cached in a local file and refreshed after the cache
expires. GH_TOKEN is used for the GitHub API when set.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := utils.NewLogger(verbose)

			var ghOpts []github.Option
			if apiURL != "" {
				ghOpts = append(ghOpts, github.WithBaseURL(apiURL))
			}
			client, err := github.NewClient(utils.Getenv("GH_TOKEN"), ghOpts...)
			if err != nil {
				return err
			}

			syncer := reposync.NewSyncer(cfg, client, &reposync.GoGit{}, log)
			return syncer.Sync(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Org, "org", cfg.Org, "GitHub organization")
	flags.StringVar(&cfg.Host, "host", cfg.Host, "SSH host used for cloning")
	flags.StringVar(&cfg.Dir, "dir", cfg.Dir, "Directory holding the checkouts")
	flags.StringVar(&cfg.Branch, "branch", cfg.Branch, "Branch checked out before updating")
	flags.StringVar(&cfg.CacheFile, "cache-file", cfg.CacheFile, "Repository list cache")
	flags.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "Repository list cache expiration")
	flags.BoolVar(&cfg.Refresh, "refresh", false, "Ignore the repository list cache")
	flags.StringSliceVar(&cfg.Ignore, "ignore", cfg.Ignore, "Repositories which are never synchronized")
	flags.StringVar(&apiURL, "api-url", "", "GitHub API URL (default https://api.github.com/)")
	flags.BoolVar(&verbose, "verbose", false, "Enable verbose logging")

	return cmd
}

func main() {
	if err := utils.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: cannot load .env file: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		stop()
		os.Exit(1)
	}
}
