package reposync

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"yastbot/pkg/models"
	"yastbot/utils"
)

// LoadCache reads the cached repository list. The file modification time is
// the fetch time. A missing file returns nil and no error.
func LoadCache(path string) (*models.RepoCache, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var repos []string
	if err := utils.ReadJSONFile(path, &repos); err != nil {
		return nil, err
	}

	return &models.RepoCache{Repos: repos, FetchedAt: info.ModTime()}, nil
}

// StoreCache replaces the cache file with repos.
func StoreCache(path string, repos []string) (*models.RepoCache, error) {
	if repos == nil {
		repos = []string{}
	}
	if err := utils.WriteJSONFile(path, repos); err != nil {
		return nil, err
	}
	return &models.RepoCache{Repos: repos, FetchedAt: time.Now()}, nil
}
