package reposync

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Git clones and updates checkouts.
type Git interface {
	Clone(ctx context.Context, url, dir string) error
	Update(ctx context.Context, dir, branch string) error
}

// GoGit implements Git with go-git. SSH URLs authenticate through the
// running ssh-agent.
type GoGit struct {
	// Progress receives the remote progress output, may be nil.
	Progress io.Writer
}

// Clone clones url into dir.
func (g *GoGit) Clone(ctx context.Context, url, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:      url,
		Progress: g.Progress,
	})
	if err != nil {
		return fmt.Errorf("git clone %s: %w", url, err)
	}
	return nil
}

// Update checks out branch, fetches origin pruning stale remote branches and
// fast-forwards branch to its upstream.
func (g *GoGit) Update(ctx context.Context, dir, branch string) error {
	r, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("git open: %w", err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return err
	}

	ref := plumbing.NewBranchReferenceName(branch)
	if err := wt.Checkout(&git.CheckoutOptions{Branch: ref}); err != nil {
		return fmt.Errorf("git checkout %s: %w", branch, err)
	}

	err = r.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		Prune:      true,
		Progress:   g.Progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("git fetch: %w", err)
	}

	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:    git.DefaultRemoteName,
		ReferenceName: ref,
		SingleBranch:  true,
		Progress:      g.Progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("git pull: %w", err)
	}
	return nil
}
