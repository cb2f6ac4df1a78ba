package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mgv-hq/ganymede/pkg/ledger"
	"mgv-hq/ganymede/pkg/ledger/export"
)

// Archiver writes build records somewhere durable before the pruner
// deletes them from primary storage.
type Archiver interface {
	// Archive writes the records and returns a destination description
	// (file path or object URL) for logging. Archiving nothing is not an
	// error; implementations return an empty destination.
	Archive(ctx context.Context, records []*ledger.BuildRecord) (string, error)

	// Name identifies the backend in logs and metrics ("fs", "s3").
	Name() string
}

// FSArchiver writes pretty-printed JSON archive files to a local
// directory.
type FSArchiver struct {
	dir    string
	logger *slog.Logger
}

// NewFSArchiver creates an archiver that writes JSON files under dir.
// The directory is created on first archive.
func NewFSArchiver(dir string) *FSArchiver {
	return &FSArchiver{
		dir:    dir,
		logger: slog.Default().With("component", "ledger.archive.fs"),
	}
}

// Name returns the backend identifier.
func (a *FSArchiver) Name() string { return "fs" }

// Archive writes the records to a timestamped JSON file and returns its
// path.
func (a *FSArchiver) Archive(ctx context.Context, records []*ledger.BuildRecord) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archiveFile := filepath.Join(a.dir, archiveName())
	f, err := os.Create(archiveFile)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	exporter := export.NewJSONExporter(true)
	if err := exporter.Export(ctx, records, f); err != nil {
		return "", fmt.Errorf("failed to export records to archive: %w", err)
	}

	a.logger.Info("build records archived",
		"archive_file", archiveFile,
		"record_count", len(records),
	)

	return archiveFile, nil
}

// archiveName builds a unique archive object name. The uuid suffix keeps
// two prune phases in the same second from clobbering each other.
func archiveName() string {
	return fmt.Sprintf("ledger-%s-%s.json",
		time.Now().UTC().Format("20060102T150405"),
		uuid.New().String()[:8],
	)
}
