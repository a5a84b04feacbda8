package reposync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	pages map[int][]string
	calls int
	err   error
}

func (f *fakeLister) ListOrgRepos(_ context.Context, org string, page, perPage int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[page], nil
}

// fakeGit creates an empty directory on clone, like a real clone would.
type fakeGit struct {
	cloned  []string
	updated []string
	failOn  string
}

func (f *fakeGit) Clone(_ context.Context, url, dir string) error {
	if filepath.Base(dir) == f.failOn {
		return errors.New("connection refused")
	}
	f.cloned = append(f.cloned, url)
	return os.MkdirAll(dir, 0o755)
}

func (f *fakeGit) Update(_ context.Context, dir, branch string) error {
	if filepath.Base(dir) == f.failOn {
		return errors.New("conflict")
	}
	f.updated = append(f.updated, filepath.Base(dir)+"@"+branch)
	return nil
}

func testConfig(t *testing.T) Config {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Dir = t.TempDir()
	cfg.CacheFile = filepath.Join(t.TempDir(), "repos.json")
	cfg.Ignore = []string{"yast-meta"}
	return cfg
}

func TestRepositoriesFetchesAndCaches(t *testing.T) {
	cfg := testConfig(t)
	lister := &fakeLister{pages: map[int][]string{
		1: {"yast-yast2", "yast-core"},
		2: {"yast-meta"},
	}}
	log, _ := logtest.NewNullLogger()
	s := NewSyncer(cfg, lister, &fakeGit{}, log)

	repos, err := s.Repositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"yast-core", "yast-meta", "yast-yast2"}, repos)
	assert.Equal(t, 2, lister.calls)

	cache, err := LoadCache(cfg.CacheFile)
	require.NoError(t, err)
	require.NotNil(t, cache)
	assert.Equal(t, repos, cache.Repos)

	// a fresh cache is used without asking the API
	repos, err = s.Repositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"yast-core", "yast-meta", "yast-yast2"}, repos)
	assert.Equal(t, 2, lister.calls)
}

func TestRepositoriesRefetchesExpiredCache(t *testing.T) {
	cfg := testConfig(t)
	_, err := StoreCache(cfg.CacheFile, []string{"yast-old"})
	require.NoError(t, err)

	old := time.Now().Add(-15 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(cfg.CacheFile, old, old))

	lister := &fakeLister{pages: map[int][]string{1: {"yast-new"}}}
	log, _ := logtest.NewNullLogger()
	s := NewSyncer(cfg, lister, &fakeGit{}, log)

	repos, err := s.Repositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"yast-new"}, repos)

	cache, err := LoadCache(cfg.CacheFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"yast-new"}, cache.Repos)
	assert.True(t, cache.Fresh(time.Now(), cfg.CacheTTL))
}

func TestRepositoriesCacheTTLBoundary(t *testing.T) {
	cfg := testConfig(t)
	_, err := StoreCache(cfg.CacheFile, []string{"yast-cached"})
	require.NoError(t, err)

	lister := &fakeLister{pages: map[int][]string{1: {"yast-fetched"}}}
	log, _ := logtest.NewNullLogger()
	s := NewSyncer(cfg, lister, &fakeGit{}, log)

	s.now = func() time.Time { return time.Now().Add(13 * 24 * time.Hour) }
	repos, err := s.Repositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"yast-cached"}, repos)

	s.now = func() time.Time { return time.Now().Add(14*24*time.Hour + time.Minute) }
	repos, err = s.Repositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"yast-fetched"}, repos)
}

func TestRepositoriesRefresh(t *testing.T) {
	cfg := testConfig(t)
	cfg.Refresh = true
	_, err := StoreCache(cfg.CacheFile, []string{"yast-cached"})
	require.NoError(t, err)

	lister := &fakeLister{pages: map[int][]string{2: {"yast-fetched"}}}
	log, _ := logtest.NewNullLogger()
	s := NewSyncer(cfg, lister, &fakeGit{}, log)

	repos, err := s.Repositories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"yast-fetched"}, repos)
}

func TestRepositoriesListError(t *testing.T) {
	cfg := testConfig(t)
	lister := &fakeLister{err: errors.New("rate limited")}
	log, _ := logtest.NewNullLogger()
	s := NewSyncer(cfg, lister, &fakeGit{}, log)

	_, err := s.Repositories(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")

	cache, err := LoadCache(cfg.CacheFile)
	require.NoError(t, err)
	assert.Nil(t, cache)
}

func TestFilter(t *testing.T) {
	repos := []string{"yast-yast2", "YaST-Meta", "yast-core", "yast-sudo", "yast-meta"}
	ignore := []string{"yast-sudo", "yast-meta", "yast-not-fetched"}

	assert.Equal(t, []string{"yast-yast2", "yast-core"}, Filter(repos, ignore))
	assert.Equal(t, repos, Filter(repos, nil))
	assert.Empty(t, Filter(nil, ignore))
}

func TestDefaultIgnore(t *testing.T) {
	cfg := DefaultConfig()
	assert.Contains(t, cfg.Ignore, "yast-meta")
	assert.Len(t, cfg.Ignore, len(DefaultIgnore))

	cfg.Ignore[0] = "changed"
	assert.Equal(t, "yast-backup", DefaultIgnore[0])
}

func TestCloneURL(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "git@github.com:yast/yast-core.git", cfg.CloneURL("yast-core"))
}

func TestSyncClonesThenUpdates(t *testing.T) {
	cfg := testConfig(t)
	lister := &fakeLister{pages: map[int][]string{1: {"yast-yast2", "yast-meta", "yast-core"}}}
	g := &fakeGit{}
	log, _ := logtest.NewNullLogger()
	s := NewSyncer(cfg, lister, g, log)

	require.NoError(t, s.Sync(context.Background()))
	assert.Equal(t, []string{
		"git@github.com:yast/yast-core.git",
		"git@github.com:yast/yast-yast2.git",
	}, g.cloned)
	assert.Empty(t, g.updated)

	// the second run only updates the existing checkouts
	g.cloned = nil
	require.NoError(t, s.Sync(context.Background()))
	assert.Empty(t, g.cloned)
	assert.Equal(t, []string{"yast-core@master", "yast-yast2@master"}, g.updated)

	entries, err := os.ReadDir(cfg.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSyncContinuesAfterFailure(t *testing.T) {
	cfg := testConfig(t)
	lister := &fakeLister{pages: map[int][]string{1: {"yast-a", "yast-b", "yast-c"}}}
	g := &fakeGit{failOn: "yast-b"}
	log, hook := logtest.NewNullLogger()
	s := NewSyncer(cfg, lister, g, log)

	require.NoError(t, s.Sync(context.Background()))
	assert.Equal(t, []string{
		"git@github.com:yast/yast-a.git",
		"git@github.com:yast/yast-c.git",
	}, g.cloned)

	var failed bool
	for _, e := range hook.AllEntries() {
		if e.Message == "[ERR] yast-b: connection refused" {
			failed = true
		}
	}
	assert.True(t, failed)
}

func TestSyncCanceled(t *testing.T) {
	cfg := testConfig(t)
	lister := &fakeLister{pages: map[int][]string{1: {"yast-a"}}}
	g := &fakeGit{}
	log, _ := logtest.NewNullLogger()
	s := NewSyncer(cfg, lister, g, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Sync(ctx), context.Canceled)
	assert.Empty(t, g.cloned)
}

func TestGoGitUpdateRequiresRepository(t *testing.T) {
	g := &GoGit{}
	err := g.Update(context.Background(), t.TempDir(), "master")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git open")
}
