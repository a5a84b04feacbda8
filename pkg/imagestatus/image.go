package imagestatus

import (
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
)

// DashboardURL is the root of the human facing Docker Hub pages.
const DashboardURL = "https://hub.docker.com"

// Image is a Docker Hub repository such as "yast/ruby".
type Image struct {
	// Name is the repository path, official images carry the "library/" prefix.
	Name string
}

// ParseImage validates ref and normalizes it to a Docker Hub repository path.
// Tags and digests are not accepted, build history is per repository.
func ParseImage(ref string) (Image, error) {
	repo, err := name.NewRepository(ref)
	if err != nil {
		return Image{}, fmt.Errorf("invalid image %q: %w", ref, err)
	}
	if repo.RegistryStr() != name.DefaultRegistry {
		return Image{}, fmt.Errorf("image %q is not hosted on Docker Hub", ref)
	}
	return Image{Name: repo.RepositoryStr()}, nil
}

func (i Image) String() string {
	return i.Name
}

// URL is the dashboard page of the image.
func (i Image) URL() string {
	return fmt.Sprintf("%s/r/%s/", DashboardURL, i.Name)
}

// BuildsURL is the page listing the image builds and their logs.
func (i Image) BuildsURL() string {
	return fmt.Sprintf("%s/r/%s/builds/", DashboardURL, i.Name)
}

// MarshalText encodes the image as its repository path.
func (i Image) MarshalText() ([]byte, error) {
	return []byte(i.Name), nil
}
