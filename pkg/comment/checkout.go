package comment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
)

// ErrUnknownRemote is returned for remote URLs which are neither SSH nor HTTPS.
var ErrUnknownRemote = errors.New("cannot parse the git remote URL")

var (
	// e.g. git@github.com:yast/yast-yast2.git
	sshRemote = regexp.MustCompile(`^git@[^:/]+:([^/]+)/([^/]+)\.git$`)
	// e.g. https://github.com/yast/yast-yast2.git
	httpsRemote = regexp.MustCompile(`^https://[^/]+/([^/]+)/([^/]+)\.git$`)
)

// Repo identifies a hosted repository.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRemote extracts owner and name from a git remote URL.
func ParseRemote(url string) (Repo, error) {
	url = strings.TrimSpace(url)
	for _, re := range []*regexp.Regexp{sshRemote, httpsRemote} {
		if m := re.FindStringSubmatch(url); m != nil {
			return Repo{Owner: m[1], Name: m[2]}, nil
		}
	}
	return Repo{}, fmt.Errorf("%w: %q", ErrUnknownRemote, url)
}

// Head is the commit checked out in the working tree.
type Head struct {
	Hash string
	// Subject is the first line of the commit message.
	Subject string
}

// Checkout is a local git working tree.
type Checkout struct {
	repo *git.Repository
}

// OpenCheckout opens the git repository containing dir.
func OpenCheckout(dir string) (*Checkout, error) {
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	return &Checkout{repo: r}, nil
}

// Repo returns the repository "origin" points to.
func (c *Checkout) Repo() (Repo, error) {
	remote, err := c.repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return Repo{}, fmt.Errorf("read remote %s: %w", git.DefaultRemoteName, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return Repo{}, fmt.Errorf("%w: remote %s has no URL", ErrUnknownRemote, git.DefaultRemoteName)
	}
	return ParseRemote(urls[0])
}

// Head returns the checked out commit.
func (c *Checkout) Head() (Head, error) {
	ref, err := c.repo.Head()
	if err != nil {
		return Head{}, fmt.Errorf("read HEAD: %w", err)
	}
	commit, err := c.repo.CommitObject(ref.Hash())
	if err != nil {
		return Head{}, fmt.Errorf("read commit %s: %w", ref.Hash(), err)
	}
	subject, _, _ := strings.Cut(commit.Message, "\n")
	return Head{Hash: ref.Hash().String(), Subject: subject}, nil
}
