// Package comment posts the result of a CI job to the pull request that
// produced the checked out commit.
package comment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/sirupsen/logrus"

	"yastbot/pkg/models"
)

var (
	// ErrPullRequestNotFound is returned when no pull request matches HEAD.
	ErrPullRequestNotFound = errors.New("cannot find the respective pull request")
	// ErrEmptyMessage is returned when no comment mode was selected.
	ErrEmptyMessage = errors.New("cannot build a comment message")
)

// default message of the GitHub "Merge" button
var mergeSubject = regexp.MustCompile(`Merge pull request #(\d+) from`)

// Source describes the local checkout.
type Source interface {
	Repo() (Repo, error)
	Head() (Head, error)
}

// PullLister lists the closed pull requests, most recently updated first.
type PullLister interface {
	ClosedPulls(ctx context.Context, owner, repo string) ([]models.PullRequestRef, error)
}

// Commenter adds a comment to a pull request.
type Commenter interface {
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
}

// API is the hosting service used by the Poster.
type API interface {
	PullLister
	Commenter
}

// Options select the comment posted by Run.
type Options struct {
	Mode    Mode
	LogFile string
	DryRun  bool
	Job     Job
	// WebURL is the root of the pull request links printed by Run.
	WebURL string
}

// Poster posts one comment per run.
type Poster struct {
	source Source
	api    API
	out    io.Writer
	log    logrus.FieldLogger
}

// NewPoster creates a Poster. The resolved pull request and the comment are
// printed to out.
func NewPoster(source Source, api API, out io.Writer, log logrus.FieldLogger) *Poster {
	return &Poster{source: source, api: api, out: out, log: log}
}

// ResolvePullRequest finds the pull request merged as head. The merge commit
// subject is tried first, then the closed pull requests are searched for
// head as their merge commit.
func ResolvePullRequest(ctx context.Context, lister PullLister, repo Repo, head Head) (models.PullRequestRef, error) {
	if m := mergeSubject.FindStringSubmatch(head.Subject); m != nil {
		number, err := strconv.Atoi(m[1])
		if err == nil {
			return models.PullRequestRef{Number: number, MergeCommitSHA: head.Hash}, nil
		}
	}

	pulls, err := lister.ClosedPulls(ctx, repo.Owner, repo.Name)
	if err != nil {
		return models.PullRequestRef{}, fmt.Errorf("list closed pull requests: %w", err)
	}
	for _, pr := range pulls {
		if pr.MergeCommitSHA == head.Hash {
			return pr, nil
		}
	}
	return models.PullRequestRef{}, ErrPullRequestNotFound
}

// Run resolves the pull request, builds the message and posts it unless
// opts.DryRun is set.
func (p *Poster) Run(ctx context.Context, opts Options) error {
	repo, err := p.source.Repo()
	if err != nil {
		return err
	}
	head, err := p.source.Head()
	if err != nil {
		return err
	}
	p.log.Debugf("Commit %s in %s", head.Hash, repo)

	pr, err := ResolvePullRequest(ctx, p.api, repo, head)
	if err != nil {
		return err
	}

	message, err := BuildMessage(opts.Mode, opts.Job, opts.LogFile)
	if err != nil {
		return err
	}
	if message == "" {
		return ErrEmptyMessage
	}

	webURL := opts.WebURL
	if webURL == "" {
		webURL = "https://github.com"
	}
	fmt.Fprintf(p.out, "Pull request: %s/%s/pull/%d\n", webURL, repo, pr.Number)
	fmt.Fprintf(p.out, "Comment: %s\n", message)

	if opts.DryRun {
		return nil
	}

	p.log.Debugf("Posting comment to %s#%d", repo, pr.Number)
	if err := p.api.CreateComment(ctx, repo.Owner, repo.Name, pr.Number, message); err != nil {
		return fmt.Errorf("post comment: %w", err)
	}
	fmt.Fprintln(p.out, "Success")
	return nil
}
