// Package reposync clones or updates all repositories of a GitHub organization.
package reposync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Lister lists the repositories of an organization page by page.
type Lister interface {
	ListOrgRepos(ctx context.Context, org string, page, perPage int) ([]string, error)
}

// Syncer converges Config.Dir to the organization's repository set.
type Syncer struct {
	cfg    Config
	lister Lister
	git    Git
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewSyncer creates a Syncer.
func NewSyncer(cfg Config, lister Lister, git Git, log logrus.FieldLogger) *Syncer {
	return &Syncer{
		cfg:    cfg,
		lister: lister,
		git:    git,
		log:    log,
		now:    time.Now,
	}
}

// Repositories returns the sorted repository names, from the cache file when
// it is fresh, otherwise from the API. A refetch overwrites the cache.
func (s *Syncer) Repositories(ctx context.Context) ([]string, error) {
	if !s.cfg.Refresh {
		cache, err := LoadCache(s.cfg.CacheFile)
		if err != nil {
			s.log.Warnf("Ignoring unreadable cache %s: %v", s.cfg.CacheFile, err)
		} else if cache != nil && cache.Fresh(s.now(), s.cfg.CacheTTL) {
			s.log.Debugf("Using cached repository list %s", s.cfg.CacheFile)
			return cache.Repos, nil
		}
	}

	var repos []string
	for page := 1; page <= s.cfg.Pages; page++ {
		names, err := s.lister.ListOrgRepos(ctx, s.cfg.Org, page, s.cfg.PerPage)
		if err != nil {
			return nil, fmt.Errorf("list %s repositories: %w", s.cfg.Org, err)
		}
		repos = append(repos, names...)
	}
	sort.Strings(repos)

	if _, err := StoreCache(s.cfg.CacheFile, repos); err != nil {
		return nil, fmt.Errorf("write cache %s: %w", s.cfg.CacheFile, err)
	}
	return repos, nil
}

// Filter returns repos without the names in ignore. Names are compared case
// insensitively, GitHub treats them that way.
func Filter(repos, ignore []string) []string {
	skip := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		skip[strings.ToLower(name)] = true
	}

	var list []string
	for _, name := range repos {
		if !skip[strings.ToLower(name)] {
			list = append(list, name)
		}
	}
	return list
}

// Sync clones the missing repositories and updates the existing ones.
// Failures of a single repository are logged and do not stop the run.
func (s *Syncer) Sync(ctx context.Context) error {
	repos, err := s.Repositories(ctx)
	if err != nil {
		return err
	}
	s.log.Infof("Found %d %s repositories", len(repos), s.cfg.Org)

	repos = Filter(repos, s.cfg.Ignore)
	s.log.Infof("Ignoring %d obsoleted repositories, using %d repositories", len(s.cfg.Ignore), len(repos))

	for _, name := range repos {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.converge(ctx, name)
	}
	return nil
}

func (s *Syncer) converge(ctx context.Context, name string) {
	dir := filepath.Join(s.cfg.Dir, name)

	if _, err := os.Stat(dir); err == nil {
		s.log.Infof("Updating %s...", name)
		if err := s.git.Update(ctx, dir, s.cfg.Branch); err != nil {
			s.log.Errorf("[ERR] %s: %v", name, err)
		}
		return
	}

	s.log.Infof("Cloning %s...", name)
	if err := s.git.Clone(ctx, s.cfg.CloneURL(name), dir); err != nil {
		s.log.Errorf("[ERR] %s: %v", name, err)
	}
}
