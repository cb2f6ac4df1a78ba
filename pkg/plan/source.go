package plan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"
)

// DefaultMaxSpecSize bounds how large a spec file a source will hand to
// the parser.
const DefaultMaxSpecSize = 10 * 1024 * 1024

// Source supplies raw spec document bytes. Implementations cover plain
// files and git repositories; the planner does not care where the bytes
// came from.
type Source interface {
	// Fetch returns the spec bytes plus a revision identifier for sources
	// that have one (a git commit SHA); file sources return an empty
	// revision.
	Fetch(ctx context.Context) ([]byte, string, error)

	// Describe returns the source location for logs and error messages.
	Describe() string
}

// FileSource reads the spec from a single file on disk.
type FileSource struct {
	path    string
	maxSize int64
	logger  *slog.Logger
}

// NewFileSource creates a file-backed spec source.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:    path,
		maxSize: DefaultMaxSpecSize,
		logger:  logger,
	}
}

// WithMaxSize overrides the file size limit.
func (s *FileSource) WithMaxSize(n int64) *FileSource {
	s.maxSize = n
	return s
}

// Fetch reads the spec file. The revision is always empty for file
// sources.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to access spec file %q: %w", s.path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, "", fmt.Errorf("spec path %q is not a regular file", s.path)
	}
	if info.Size() > s.maxSize {
		return nil, "", fmt.Errorf("spec file %q is %d bytes, exceeds maximum %d", s.path, info.Size(), s.maxSize)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read spec file %q: %w", s.path, err)
	}
	if !utf8.Valid(data) {
		return nil, "", fmt.Errorf("spec file %q contains invalid UTF-8", s.path)
	}

	s.logger.Debug("Fetched spec file", "path", s.path, "bytes", len(data))
	return data, "", nil
}

// Describe returns the file path.
func (s *FileSource) Describe() string {
	return s.path
}
