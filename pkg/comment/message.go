package comment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"yastbot/pkg/models"
)

// ErrLogNotFound is returned when the build log to scrape does not exist.
var ErrLogNotFound = errors.New("log file does not exist")

// Mode selects the comment text.
type Mode int

const (
	ModeNone Mode = iota
	ModeSuccess
	ModeFailure
	ModeLog
)

// Job describes the CI job reporting the result.
type Job struct {
	// Name is the display name, BUILD_DISPLAY_NAME in Jenkins.
	Name string
	// URL links the job, BUILD_URL in Jenkins.
	URL string
}

// SuccessMessage reports a successfully finished job.
func SuccessMessage(job Job) string {
	return fmt.Sprintf(":heavy_check_mark: [Jenkins job #%s](%s) successfully finished.", job.Name, job.URL)
}

// FailureMessage reports a failed job.
func FailureMessage(job Job) string {
	return fmt.Sprintf(":x: [Jenkins job #%s](%s) failed.", job.Name, job.URL)
}

// SubmitRequestMessage links the submit request created by the job.
func SubmitRequestMessage(job Job, sr models.SubmitRequest) string {
	by := ""
	if job.URL != "" {
		by = fmt.Sprintf(" by [Jenkins job %s](%s)", job.Name, job.URL)
	}
	return fmt.Sprintf(":heavy_check_mark: Created %s submit [request #%s](%s)%s.", sr.Context, sr.ID, sr.URL, by)
}

// LogMessage links the submit request found in the log file at path. Without
// a submit request in the log the job is reported as successful.
func LogMessage(job Job, path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrLogNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}

	sr, ok := ScrapeSubmitRequest(string(data))
	if !ok {
		return SuccessMessage(job), nil
	}
	return SubmitRequestMessage(job, sr), nil
}

// BuildMessage returns the comment text for mode. logFile is only used by
// ModeLog. ModeNone yields an empty message.
func BuildMessage(mode Mode, job Job, logFile string) (string, error) {
	switch mode {
	case ModeSuccess:
		return SuccessMessage(job), nil
	case ModeFailure:
		return FailureMessage(job), nil
	case ModeLog:
		return LogMessage(job, logFile)
	default:
		return "", nil
	}
}
