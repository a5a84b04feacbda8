// Command prcomment posts the result of a Jenkins job as a comment to the
// GitHub pull request merged as the checked out commit.
//
// Usage: export the GitHub token in GH_TOKEN, then run
//
//	rake osc:sr | tee rake_output
//	prcomment -l rake_output
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"yastbot/github"
	"yastbot/pkg/comment"
	"yastbot/utils"
)

type options struct {
	dryRun  bool
	failed  bool
	success bool
	logFile string
	dir     string
	apiURL  string
	verbose bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "prcomment",
		Short: "Comment the CI result at the respective pull request",
		Long: `Find the GitHub pull request merged as the current commit and add a
comment with the Jenkins job result or with a link to the submit request
created in the build service.

Environment:
  GH_TOKEN            GitHub token used for posting the comment
  BUILD_DISPLAY_NAME  Jenkins job name
  BUILD_URL           Jenkins job URL`,
		Example: `  # report success
  prcomment --success

  # link the submit request found in the log
  rake osc:sr | tee rake_output
  prcomment -l rake_output`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o, out)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&o.dryRun, "dry-run", "d", false, "Dry run (do not send the comment)")
	flags.BoolVarP(&o.failed, "failed", "f", false, "Report build failure")
	flags.BoolVarP(&o.success, "success", "s", false, "Report successful build")
	flags.StringVarP(&o.logFile, "log", "l", "", "Report success and send the link for the submit request found in the log `FILE`")
	flags.StringVarP(&o.dir, "dir", "C", ".", "Git checkout to inspect")
	flags.StringVar(&o.apiURL, "api-url", "", "GitHub API URL (default https://api.github.com/)")
	flags.BoolVar(&o.verbose, "verbose", false, "Enable verbose logging")
	cmd.MarkFlagsMutuallyExclusive("failed", "success", "log")

	return cmd
}

func (o options) mode() comment.Mode {
	switch {
	case o.failed:
		return comment.ModeFailure
	case o.success:
		return comment.ModeSuccess
	case o.logFile != "":
		return comment.ModeLog
	default:
		return comment.ModeNone
	}
}

func run(ctx context.Context, o options, out io.Writer) error {
	log := utils.NewLogger(o.verbose)

	checkout, err := comment.OpenCheckout(o.dir)
	if err != nil {
		return err
	}

	var ghOpts []github.Option
	if o.apiURL != "" {
		ghOpts = append(ghOpts, github.WithBaseURL(o.apiURL))
	}
	client, err := github.NewClient(utils.Getenv("GH_TOKEN"), ghOpts...)
	if err != nil {
		return err
	}

	poster := comment.NewPoster(checkout, client, out, log)
	return poster.Run(ctx, comment.Options{
		Mode:    o.mode(),
		LogFile: o.logFile,
		DryRun:  o.dryRun,
		Job: comment.Job{
			Name: utils.Getenv("BUILD_DISPLAY_NAME"),
			URL:  utils.Getenv("BUILD_URL"),
		},
	})
}

func main() {
	if err := utils.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: cannot load .env file: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		stop()
		os.Exit(1)
	}
}
