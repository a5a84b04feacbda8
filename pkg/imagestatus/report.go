package imagestatus

import (
	"fmt"
	"io"
	"strings"

	"yastbot/pkg/models"
)

// Report is the build status of one image.
type Report struct {
	Image  Image                `json:"image"`
	Error  string               `json:"error,omitempty"`
	Builds []models.BuildRecord `json:"builds"`
}

// HasError reports whether the build history could not be obtained.
func (r *Report) HasError() bool {
	return r.Error != ""
}

// Success is true when no tag failed. A report without builds is successful.
func (r *Report) Success() bool {
	return r.Issues() == 0
}

// Issues counts the failed tags.
func (r *Report) Issues() int {
	n := 0
	for _, b := range r.Builds {
		if b.Failure() {
			n++
		}
	}
	return n
}

// Summary rolls up several reports.
type Summary struct {
	Images  int `json:"images"`
	Failing int `json:"failing"`
	Errors  int `json:"errors"`
	Issues  int `json:"issues"`
}

// OK is true when every image built successfully and was downloaded.
func (s Summary) OK() bool {
	return s.Failing == 0 && s.Errors == 0
}

// Summarize computes the rollup counts of reports.
func Summarize(reports []*Report) Summary {
	var s Summary
	for _, r := range reports {
		s.Images++
		if r.HasError() {
			s.Errors++
		}
		if !r.Success() {
			s.Failing++
		}
		s.Issues += r.Issues()
	}
	return s
}

// WriteText prints a human readable report to w.
func WriteText(w io.Writer, reports []*Report) error {
	var sb strings.Builder
	for _, r := range reports {
		switch {
		case r.HasError():
			sb.WriteString(fmt.Sprintf("%s: %s\n", r.Image, r.Error))
		case r.Success():
			sb.WriteString(fmt.Sprintf("%s: OK (%d tags) %s\n", r.Image, len(r.Builds), r.Image.URL()))
		default:
			sb.WriteString(fmt.Sprintf("%s: %d failed tag(s) %s\n", r.Image, r.Issues(), r.Image.BuildsURL()))
		}
		for _, b := range r.Builds {
			sb.WriteString(fmt.Sprintf("  %-30s %s\n", b.Tag, b.Status))
		}
	}

	s := Summarize(reports)
	sb.WriteString(fmt.Sprintf("\n%d image(s), %d failing, %d download error(s), %d issue(s)\n",
		s.Images, s.Failing, s.Errors, s.Issues))

	_, err := io.WriteString(w, sb.String())
	return err
}

// SlackText is a short report suitable for a chat message.
func SlackText(reports []*Report) string {
	var sb strings.Builder
	s := Summarize(reports)
	if s.OK() {
		sb.WriteString(fmt.Sprintf(":heavy_check_mark: All %d image(s) built successfully\n", s.Images))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf(":x: %d of %d image(s) need attention\n", s.Failing+s.Errors, s.Images))
	for _, r := range reports {
		if r.HasError() {
			sb.WriteString(fmt.Sprintf("*%s*: %s\n", r.Image, r.Error))
			continue
		}
		if r.Success() {
			continue
		}
		var failed []string
		for _, b := range r.Builds {
			if b.Failure() {
				failed = append(failed, b.Tag)
			}
		}
		sb.WriteString(fmt.Sprintf("*%s*: failed %s (<%s|builds>)\n", r.Image, strings.Join(failed, ", "), r.Image.BuildsURL()))
	}
	return sb.String()
}
