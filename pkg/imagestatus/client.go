// Package imagestatus reports the automated build status of Docker Hub images.
package imagestatus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"

	"yastbot/pkg/models"
)

// DefaultAPIURL is the Docker Hub API root.
const DefaultAPIURL = "https://hub.docker.com"

// pageSize is the number of builds requested, one page only.
const pageSize = 100

// Client downloads build histories. Every image is downloaded at most once
// per Client, later calls return the cached report.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
	reports    *xsync.MapOf[string, *Report]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger receiving download errors.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for the Docker Hub API.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultAPIURL,
		httpClient: cleanhttp.DefaultClient(),
		log:        logrus.StandardLogger(),
		reports:    xsync.NewMapOf[string, *Report](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Report returns the build status of img.
func (c *Client) Report(ctx context.Context, img Image) *Report {
	r, _ := c.reports.LoadOrCompute(img.Name, func() *Report {
		return c.download(ctx, img)
	})
	return r
}

func (c *Client) statusURL(img Image) string {
	return fmt.Sprintf("%s/v2/repositories/%s/buildhistory/?page_size=%d", c.baseURL, img.Name, pageSize)
}

type buildHistory struct {
	Results []struct {
		Tag    string `json:"dockertag_name"`
		Status int    `json:"status"`
	} `json:"results"`
}

func (c *Client) download(ctx context.Context, img Image) *Report {
	url := c.statusURL(img)
	report := &Report{Image: img, Builds: []models.BuildRecord{}}

	body := c.get(ctx, url)
	if len(body) == 0 {
		report.Error = fmt.Sprintf("cannot download %s", url)
		c.log.Error(report.Error)
		return report
	}

	var history buildHistory
	if err := json.Unmarshal(body, &history); err != nil {
		report.Error = fmt.Sprintf("cannot parse %s: %v", url, err)
		c.log.Error(report.Error)
		return report
	}

	// the history lists the newest builds first, keep the latest result per tag
	seen := make(map[string]bool)
	for _, r := range history.Results {
		if seen[r.Tag] {
			continue
		}
		seen[r.Tag] = true

		status := models.StatusSuccess
		if r.Status < 0 {
			status = models.StatusFailure
		}
		report.Builds = append(report.Builds, models.BuildRecord{
			Tag:    r.Tag,
			Status: status,
			Raw:    r.Status,
			Image:  img.Name,
		})
	}

	return report
}

// get returns the response body, or nil when the download failed.
func (c *Client) get(ctx context.Context, url string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Debugf("Failed to create request for %s: %v", url, err)
		return nil
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debugf("Downloading %s", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debugf("Request to %s failed: %v", url, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debugf("Docker Hub API error: %s", resp.Status)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Debugf("Failed to read %s: %v", url, err)
		return nil
	}
	return body
}
