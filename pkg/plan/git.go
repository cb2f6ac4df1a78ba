package plan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// GitSourceConfig configures a git-backed spec source.
type GitSourceConfig struct {
	// Repository is the clone URL. Local filesystem paths work too, which
	// tests rely on.
	Repository string

	// Branch is the branch to track.
	Branch string

	// Path is the spec file's path within the repository.
	Path string

	// LocalPath is where the repository is cloned. Defaults to a
	// directory under the system temp dir.
	LocalPath string

	// Depth limits clone history; zero means a full clone.
	Depth int

	// Token enables HTTPS token auth. Empty means anonymous access, which
	// is the norm for public genome-config repositories.
	Token string

	// Timeout bounds each network operation.
	Timeout time.Duration
}

// GitSource fetches the spec from a git repository: clone on first use,
// pull on every fetch after that, and report the HEAD commit SHA as the
// revision. Keeping the spec in git makes every emitted plan traceable to
// a commit.
type GitSource struct {
	cfg    GitSourceConfig
	logger *slog.Logger

	mu   sync.Mutex
	repo *gogit.Repository
}

// NewGitSource creates a git-backed spec source.
func NewGitSource(cfg GitSourceConfig, logger *slog.Logger) (*GitSource, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("git source: repository cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("git source: branch cannot be empty")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("git source: spec path cannot be empty")
	}
	if cfg.LocalPath == "" {
		cfg.LocalPath = filepath.Join(os.TempDir(), "ganymede-spec")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GitSource{cfg: cfg, logger: logger}, nil
}

// Fetch ensures the local clone is up to date and reads the spec file
// from it. The returned revision is the HEAD commit SHA.
func (s *GitSource) Fetch(ctx context.Context) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		if err := s.open(ctx); err != nil {
			return nil, "", err
		}
	} else if err := s.pull(ctx); err != nil {
		return nil, "", err
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, "", fmt.Errorf("git source: failed to read HEAD: %w", err)
	}
	sha := ref.Hash().String()

	specPath := filepath.Join(s.cfg.LocalPath, s.cfg.Path)
	data, err := os.ReadFile(specPath)
	if err != nil {
		return nil, "", fmt.Errorf("git source: failed to read %q at %s: %w", s.cfg.Path, sha[:8], err)
	}

	s.logger.Debug("Fetched spec from git",
		"repository", s.cfg.Repository,
		"revision", sha,
		"bytes", len(data),
	)
	return data, sha, nil
}

// Describe returns the repository, branch, and in-repo path.
func (s *GitSource) Describe() string {
	return fmt.Sprintf("%s@%s:%s", s.cfg.Repository, s.cfg.Branch, s.cfg.Path)
}

// open clones the repository, or opens an existing clone left by an
// earlier run.
func (s *GitSource) open(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(s.cfg.LocalPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(s.cfg.LocalPath)
		if err != nil {
			return fmt.Errorf("git source: failed to open existing clone: %w", err)
		}
		s.repo = repo
		return s.pull(ctx)
	}

	if err := os.MkdirAll(s.cfg.LocalPath, 0755); err != nil {
		return fmt.Errorf("git source: failed to create clone directory: %w", err)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	s.logger.Info("Cloning spec repository",
		"repository", s.cfg.Repository,
		"branch", s.cfg.Branch,
		"local_path", s.cfg.LocalPath,
	)

	repo, err := gogit.PlainCloneContext(cloneCtx, s.cfg.LocalPath, false, &gogit.CloneOptions{
		URL:           s.cfg.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Branch),
		SingleBranch:  true,
		Depth:         s.cfg.Depth,
		Auth:          s.auth(),
	})
	if err != nil {
		return fmt.Errorf("git source: failed to clone %q: %w", s.cfg.Repository, err)
	}

	s.repo = repo
	return nil
}

// pull fast-forwards the clone. Already-up-to-date is not an error.
func (s *GitSource) pull(ctx context.Context) error {
	worktree, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("git source: failed to get worktree: %w", err)
	}

	pullCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	err = worktree.PullContext(pullCtx, &gogit.PullOptions{
		RemoteName: "origin",
		Auth:       s.auth(),
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return fmt.Errorf("git source: failed to pull: %w", err)
	}
	return nil
}

// auth returns token auth when configured, nil for anonymous access.
func (s *GitSource) auth() transport.AuthMethod {
	if s.cfg.Token == "" {
		return nil
	}
	// Username is ignored for token auth but must be non-empty.
	return &githttp.BasicAuth{Username: "git", Password: s.cfg.Token}
}
