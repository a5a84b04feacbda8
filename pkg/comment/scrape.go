package comment

import (
	"regexp"

	"yastbot/pkg/models"
)

// InternalAPI is the API URL of the internal build service (IBS).
const InternalAPI = "https://api.suse.de/"

var (
	// line written by "rake osc:sr", e.g. osc -A 'https://api.opensuse.org/' sr ...
	oscCommand = regexp.MustCompile(`(?m)^osc -A '([^']*)'`)
	// osc output after submitting, e.g. created request id 4242
	createdRequest = regexp.MustCompile(`(?m)^created request id ([0-9]+)`)
)

// ScrapeSubmitRequest finds the submit request created in a build log. It
// returns false when the log does not contain both the osc call and the
// created request id.
func ScrapeSubmitRequest(log string) (models.SubmitRequest, bool) {
	api := oscCommand.FindStringSubmatch(log)
	if api == nil {
		return models.SubmitRequest{}, false
	}
	id := createdRequest.FindStringSubmatch(log)
	if id == nil {
		return models.SubmitRequest{}, false
	}

	linkHost, service := "build.opensuse.org", "OBS"
	if api[1] == InternalAPI {
		linkHost, service = "build.suse.de", "IBS"
	}

	return models.SubmitRequest{
		Context: service,
		ID:      id[1],
		URL:     "https://" + linkHost + "/request/show/" + id[1],
	}, true
}
