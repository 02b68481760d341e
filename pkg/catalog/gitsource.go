package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"mercator-hq/argus/pkg/config"
)

// GitSource syncs a hook catalog from a git repository. Fleets that already
// distribute policy through git can carry hook catalogs in the same repos.
type GitSource struct {
	cfg       config.GitCatalogConfig
	localPath string
	logger    *slog.Logger

	mu   sync.Mutex
	repo *gogit.Repository
}

// NewGitSource creates a git-backed catalog source. A nil logger falls back
// to slog.Default.
func NewGitSource(cfg config.GitCatalogConfig, logger *slog.Logger) (*GitSource, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("git catalog source requires a repository URL")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("git catalog source requires a branch")
	}
	if logger == nil {
		logger = slog.Default()
	}

	localPath := cfg.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "argus-catalog")
	}

	return &GitSource{
		cfg:       cfg,
		localPath: localPath,
		logger:    logger.With("component", "catalog.git"),
	}, nil
}

// Sync brings the working copy up to date and loads the catalog file from
// it. The first call clones; later calls pull. An up-to-date working copy is
// not an error.
func (g *GitSource) Sync(ctx context.Context) (*Catalog, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.repo == nil {
		if err := g.open(ctx); err != nil {
			return nil, err
		}
	} else if err := g.pull(ctx); err != nil {
		return nil, err
	}

	return Load(filepath.Join(g.localPath, g.cfg.Path))
}

// open clones the repository, or opens an existing working copy.
func (g *GitSource) open(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(g.localPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(g.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing catalog repo: %w", err)
		}
		g.repo = repo
		return g.pull(ctx)
	}

	if err := os.MkdirAll(g.localPath, 0o755); err != nil {
		return fmt.Errorf("failed to create catalog repo directory: %w", err)
	}

	repo, err := gogit.PlainCloneContext(ctx, g.localPath, false, &gogit.CloneOptions{
		URL:           g.cfg.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(g.cfg.Branch),
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		return fmt.Errorf("failed to clone catalog repo %q: %w", g.cfg.Repository, err)
	}

	g.logger.Info("catalog repository cloned",
		"repository", g.cfg.Repository,
		"branch", g.cfg.Branch,
		"path", g.localPath,
	)

	g.repo = repo
	return nil
}

// pull fast-forwards the working copy.
func (g *GitSource) pull(ctx context.Context) error {
	wt, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get catalog worktree: %w", err)
	}

	err = wt.PullContext(ctx, &gogit.PullOptions{
		ReferenceName: plumbing.NewBranchReferenceName(g.cfg.Branch),
		SingleBranch:  true,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull catalog repo: %w", err)
	}

	return nil
}
