// Command imagestatus prints the automated build status of Docker Hub images.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"yastbot/pkg/imagestatus"
	"yastbot/slack"
	"yastbot/utils"
)

// errIssues makes the command fail when --fail-on-issues is set.
var errIssues = errors.New("some images failed to build")

type options struct {
	jsonOutput   bool
	notify       bool
	failOnIssues bool
	apiURL       string
	verbose      bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "imagestatus IMAGE...",
		Short: "Report the Docker Hub build status of images",
		Long: `Download the build history of Docker Hub images and report the latest
build result of every tag.

With --slack the summary is also sent to the Slack channel SLACK_CHANNEL_ID
using the SLACK_AUTH_TOKEN token.`,
		Example: `  imagestatus yast/ruby yast/cpp
  imagestatus --json yast/ruby`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o, args, out)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&o.jsonOutput, "json", false, "Print the reports as JSON")
	flags.BoolVar(&o.notify, "slack", false, "Send the summary to Slack")
	flags.BoolVar(&o.failOnIssues, "fail-on-issues", false, "Exit with an error when a build failed")
	flags.StringVar(&o.apiURL, "api-url", imagestatus.DefaultAPIURL, "Docker Hub API URL")
	flags.BoolVar(&o.verbose, "verbose", false, "Enable verbose logging")

	return cmd
}

func run(ctx context.Context, o options, args []string, out io.Writer) error {
	log := utils.NewLogger(o.verbose)

	var images []imagestatus.Image
	for _, arg := range args {
		img, err := imagestatus.ParseImage(arg)
		if err != nil {
			return err
		}
		images = append(images, img)
	}

	client := imagestatus.NewClient(
		imagestatus.WithBaseURL(o.apiURL),
		imagestatus.WithLogger(log),
	)

	reports := make([]*imagestatus.Report, 0, len(images))
	seen := make(map[*imagestatus.Report]bool)
	for _, img := range images {
		// repeated images get the cached report, print it once
		r := client.Report(ctx, img)
		if seen[r] {
			continue
		}
		seen[r] = true
		reports = append(reports, r)
	}

	if o.jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		err := encoder.Encode(struct {
			Summary imagestatus.Summary   `json:"summary"`
			Reports []*imagestatus.Report `json:"reports"`
		}{imagestatus.Summarize(reports), reports})
		if err != nil {
			return err
		}
	} else if err := imagestatus.WriteText(out, reports); err != nil {
		return err
	}

	if o.notify {
		notifier, err := slack.NewNotifier(utils.Getenv("SLACK_AUTH_TOKEN"), utils.Getenv("SLACK_CHANNEL_ID"))
		if err != nil {
			return err
		}
		if err := notifier.Send(ctx, imagestatus.SlackText(reports)); err != nil {
			return err
		}
	}

	if o.failOnIssues && !imagestatus.Summarize(reports).OK() {
		return errIssues
	}
	return nil
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
