// Package github wraps the GitHub REST API calls used by the release tools.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v55/github"
	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/oauth2"

	"yastbot/pkg/models"
)

// Client talks to the GitHub API.
type Client struct {
	gh *gh.Client
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL points the client at another API root, e.g. a GitHub Enterprise
// instance or a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
		}
		c.gh.BaseURL = u
		return nil
	}
}

// NewClient creates a client. A non-empty token is sent as
// "Authorization: token <token>".
func NewClient(token string, opts ...Option) (*Client, error) {
	httpClient := cleanhttp.DefaultClient()
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "token"})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	c := &Client{gh: gh.NewClient(httpClient)}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ListOrgRepos returns the repository names on one page of an organization's
// repository list.
func (c *Client) ListOrgRepos(ctx context.Context, org string, page, perPage int) ([]string, error) {
	opts := &gh.RepositoryListByOrgOptions{
		ListOptions: gh.ListOptions{Page: page, PerPage: perPage},
	}
	repos, _, err := c.gh.Repositories.ListByOrg(ctx, org, opts)
	if err != nil {
		return nil, apiError(err)
	}

	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.GetName())
	}
	return names, nil
}

// ClosedPulls lists the closed pull requests of owner/repo, most recently
// updated first.
func (c *Client) ClosedPulls(ctx context.Context, owner, repo string) ([]models.PullRequestRef, error) {
	opts := &gh.PullRequestListOptions{
		State:     "closed",
		Sort:      "updated",
		Direction: "desc",
	}
	pulls, _, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		return nil, apiError(err)
	}

	refs := make([]models.PullRequestRef, 0, len(pulls))
	for _, p := range pulls {
		refs = append(refs, models.PullRequestRef{
			Number:         p.GetNumber(),
			MergeCommitSHA: p.GetMergeCommitSHA(),
		})
	}
	return refs, nil
}

// CreateComment adds a comment to issue or pull request number.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &gh.IssueComment{Body: gh.String(body)}
	if _, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, comment); err != nil {
		return apiError(err)
	}
	return nil
}

// apiError turns a rejected request into an error carrying the HTTP status
// and the response body.
func apiError(err error) error {
	var (
		respErr  *gh.ErrorResponse
		rateErr  *gh.RateLimitError
		abuseErr *gh.AbuseRateLimitError
	)
	switch {
	case errors.As(err, &respErr) && respErr.Response != nil:
		return responseError(respErr.Response, respErr.Message)
	case errors.As(err, &rateErr) && rateErr.Response != nil:
		return responseError(rateErr.Response, rateErr.Message)
	case errors.As(err, &abuseErr) && abuseErr.Response != nil:
		return responseError(abuseErr.Response, abuseErr.Message)
	}
	return fmt.Errorf("request failed: %w", err)
}

func responseError(resp *http.Response, message string) error {
	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(resp.Body)
	}
	if len(body) == 0 {
		body = []byte(message)
	}
	return fmt.Errorf("GitHub API error: %d %s\n%s",
		resp.StatusCode, http.StatusText(resp.StatusCode), body)
}
