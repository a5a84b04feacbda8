package models

import "time"

// BuildStatus is the pass/fail verdict of a single image build.
type BuildStatus string

const (
	StatusSuccess BuildStatus = "success"
	StatusFailure BuildStatus = "failure"
)

// BuildRecord describes the latest build of one image tag.
type BuildRecord struct {
	Tag    string      `json:"tag"`
	Status BuildStatus `json:"status"`
	// Raw is the status code reported by the image host.
	Raw   int    `json:"raw_status"`
	Image string `json:"image"`
}

// Failure reports whether the build failed.
func (b BuildRecord) Failure() bool {
	return b.Status == StatusFailure
}

// RepoCache is the locally cached list of organization repositories.
type RepoCache struct {
	Repos     []string
	FetchedAt time.Time
}

// Fresh reports whether the cache is still younger than ttl at now.
func (c RepoCache) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.FetchedAt) < ttl
}

// PullRequestRef identifies a pull request and the commit it was merged as.
type PullRequestRef struct {
	Number         int
	MergeCommitSHA string
}

// SubmitRequest is a request created in the build service.
type SubmitRequest struct {
	// Context is either "OBS" or "IBS".
	Context string
	ID      string
	URL     string
}
