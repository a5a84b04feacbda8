package comment

import (
	"bytes"
	"context"
	"errors"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yastbot/pkg/models"
)

type fakeSource struct {
	repo Repo
	head Head
	err  error
}

func (f *fakeSource) Repo() (Repo, error) { return f.repo, f.err }
func (f *fakeSource) Head() (Head, error) { return f.head, nil }

type comment struct {
	owner, repo string
	number      int
	body        string
}

type fakeAPI struct {
	pulls      []models.PullRequestRef
	listCalls  int
	comments   []comment
	commentErr error
}

func (f *fakeAPI) ClosedPulls(_ context.Context, owner, repo string) ([]models.PullRequestRef, error) {
	f.listCalls++
	return f.pulls, nil
}

func (f *fakeAPI) CreateComment(_ context.Context, owner, repo string, number int, body string) error {
	if f.commentErr != nil {
		return f.commentErr
	}
	f.comments = append(f.comments, comment{owner, repo, number, body})
	return nil
}

var yastCore = Repo{Owner: "yast", Name: "yast-core"}

func TestResolvePullRequestFromMergeSubject(t *testing.T) {
	api := &fakeAPI{}
	head := Head{Hash: "abc", Subject: "Merge pull request #123 from yast/feature"}

	pr, err := ResolvePullRequest(context.Background(), api, yastCore, head)
	require.NoError(t, err)
	assert.Equal(t, 123, pr.Number)
	assert.Equal(t, 0, api.listCalls)
}

func TestResolvePullRequestFromClosedPulls(t *testing.T) {
	api := &fakeAPI{pulls: []models.PullRequestRef{
		{Number: 7, MergeCommitSHA: "111"},
		{Number: 6, MergeCommitSHA: "abc"},
		{Number: 5, MergeCommitSHA: "abc"},
	}}
	head := Head{Hash: "abc", Subject: "Fix the build (#6)"}

	pr, err := ResolvePullRequest(context.Background(), api, yastCore, head)
	require.NoError(t, err)
	assert.Equal(t, models.PullRequestRef{Number: 6, MergeCommitSHA: "abc"}, pr)
	assert.Equal(t, 1, api.listCalls)
}

func TestResolvePullRequestNotFound(t *testing.T) {
	api := &fakeAPI{pulls: []models.PullRequestRef{{Number: 7, MergeCommitSHA: "111"}}}

	_, err := ResolvePullRequest(context.Background(), api, yastCore, Head{Hash: "abc", Subject: "direct push"})
	assert.ErrorIs(t, err, ErrPullRequestNotFound)
}

func newTestPoster(api *fakeAPI, source *fakeSource) (*Poster, *bytes.Buffer) {
	var out bytes.Buffer
	log, _ := logtest.NewNullLogger()
	return NewPoster(source, api, &out, log), &out
}

func mergedHead() *fakeSource {
	return &fakeSource{repo: yastCore, head: Head{Hash: "abc", Subject: "Merge pull request #12 from yast/fix"}}
}

func TestRunPostsComment(t *testing.T) {
	api := &fakeAPI{}
	p, out := newTestPoster(api, mergedHead())

	err := p.Run(context.Background(), Options{Mode: ModeSuccess, Job: job})
	require.NoError(t, err)

	require.Len(t, api.comments, 1)
	assert.Equal(t, comment{"yast", "yast-core", 12, SuccessMessage(job)}, api.comments[0])
	assert.Contains(t, out.String(), "Pull request: https://github.com/yast/yast-core/pull/12\n")
	assert.Contains(t, out.String(), "Comment: "+SuccessMessage(job))
}

func TestRunDryRun(t *testing.T) {
	api := &fakeAPI{}
	p, out := newTestPoster(api, mergedHead())

	err := p.Run(context.Background(), Options{Mode: ModeFailure, Job: job, DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, api.comments)
	assert.Contains(t, out.String(), "Comment: "+FailureMessage(job))
}

func TestRunSubmitRequestFromLog(t *testing.T) {
	api := &fakeAPI{}
	p, _ := newTestPoster(api, mergedHead())
	path := writeLog(t, "osc -A 'https://api.suse.de/' sr\ncreated request id 4242\n")

	err := p.Run(context.Background(), Options{Mode: ModeLog, LogFile: path, Job: job})
	require.NoError(t, err)

	require.Len(t, api.comments, 1)
	assert.Contains(t, api.comments[0].body, "Created IBS submit [request #4242](https://build.suse.de/request/show/4242)")
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeSource
		api    *fakeAPI
		opts   Options
		want   error
	}{
		{
			name:   "unknown remote",
			source: &fakeSource{err: ErrUnknownRemote},
			api:    &fakeAPI{},
			opts:   Options{Mode: ModeSuccess},
			want:   ErrUnknownRemote,
		},
		{
			name:   "no pull request",
			source: &fakeSource{repo: yastCore, head: Head{Hash: "abc", Subject: "direct push"}},
			api:    &fakeAPI{},
			opts:   Options{Mode: ModeSuccess},
			want:   ErrPullRequestNotFound,
		},
		{
			name:   "no message",
			source: mergedHead(),
			api:    &fakeAPI{},
			opts:   Options{},
			want:   ErrEmptyMessage,
		},
		{
			name:   "missing log",
			source: mergedHead(),
			api:    &fakeAPI{},
			opts:   Options{Mode: ModeLog, LogFile: "/nonexistent/rake_output"},
			want:   ErrLogNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPoster(tt.api, tt.source)
			err := p.Run(context.Background(), tt.opts)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, tt.api.comments)
		})
	}
}

func TestRunRejectedComment(t *testing.T) {
	api := &fakeAPI{commentErr: errors.New("GitHub API error: 403 Forbidden")}
	p, _ := newTestPoster(api, mergedHead())

	err := p.Run(context.Background(), Options{Mode: ModeSuccess, Job: job})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
