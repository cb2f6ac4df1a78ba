package retention

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mgv-hq/ganymede/pkg/ledger"
	"mgv-hq/ganymede/pkg/ledger/export"
)

// S3Config contains configuration for the S3 archive backend. It works
// against AWS S3 and any S3-compatible object store (MinIO, Ceph).
type S3Config struct {
	// Endpoint is the S3 endpoint host, e.g. "s3.amazonaws.com" or
	// "minio.internal:9000".
	Endpoint string

	// Bucket is the target bucket. It must already exist.
	Bucket string

	// Prefix is prepended to every archive object key.
	Prefix string

	// Region is the bucket region. Optional for S3-compatible stores.
	Region string

	// AccessKey and SecretKey are the static credentials.
	AccessKey string
	SecretKey string

	// UseSSL enables TLS for the endpoint connection.
	UseSSL bool
}

// S3Archiver uploads build record archives to an S3-compatible object
// store. Use it when archives must outlive the build host.
type S3Archiver struct {
	client *minio.Client
	config *S3Config
	logger *slog.Logger
}

// NewS3Archiver creates an S3 archiver. It validates the configuration
// and constructs the client; the bucket is not touched until the first
// archive.
func NewS3Archiver(config *S3Config) (*S3Archiver, error) {
	if config == nil {
		return nil, fmt.Errorf("s3 archive config cannot be nil")
	}
	if config.Endpoint == "" {
		return nil, fmt.Errorf("s3 archive endpoint cannot be empty")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("s3 archive bucket cannot be empty")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &S3Archiver{
		client: client,
		config: config,
		logger: slog.Default().With("component", "ledger.archive.s3"),
	}, nil
}

// Name returns the backend identifier.
func (a *S3Archiver) Name() string { return "s3" }

// Archive uploads the records as one pretty-printed JSON object and
// returns its s3:// URL.
func (a *S3Archiver) Archive(ctx context.Context, records []*ledger.BuildRecord) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	exporter := export.NewJSONExporter(true)
	if err := exporter.Export(ctx, records, &buf); err != nil {
		return "", fmt.Errorf("failed to serialize archive: %w", err)
	}

	key := path.Join(a.config.Prefix, archiveName())

	_, err := a.client.PutObject(ctx, a.config.Bucket, key,
		bytes.NewReader(buf.Bytes()), int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload archive: %w", err)
	}

	destination := fmt.Sprintf("s3://%s/%s", a.config.Bucket, key)

	a.logger.Info("build records archived",
		"destination", destination,
		"record_count", len(records),
		"size_bytes", buf.Len(),
	)

	return destination, nil
}
