package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"mgv-hq/ganymede/pkg/ledger"
)

// PostgresConfig contains configuration for the PostgreSQL storage backend.
type PostgresConfig struct {
	// Host is the PostgreSQL server hostname.
	Host string

	// Port is the PostgreSQL server port.
	// Default: 5432
	Port int

	// Database is the name of the database to use.
	Database string

	// User is the PostgreSQL user for authentication.
	User string

	// Password is the PostgreSQL password.
	Password string

	// SSLMode controls SSL/TLS connection mode
	// ("disable", "require", "verify-ca", "verify-full").
	// Default: "require"
	SSLMode string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 20
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int
}

// postgresSchema creates the ledger schema on PostgreSQL.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS build_records (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,

    spec_path TEXT,
    spec_hash TEXT,
    plan_version TEXT,

    genome TEXT NOT NULL,
    datatype TEXT NOT NULL,
    phase TEXT NOT NULL,
    adapter TEXT,

    status TEXT NOT NULL,

    started_at TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ,
    duration_ms BIGINT,

    bytes_fetched BIGINT,
    source_host TEXT,

    error TEXT,

    dry_run BOOLEAN,

    recorded_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_build_records_started_at ON build_records(started_at);
CREATE INDEX IF NOT EXISTS idx_build_records_run_id ON build_records(run_id);
CREATE INDEX IF NOT EXISTS idx_build_records_genome ON build_records(genome);
CREATE INDEX IF NOT EXISTS idx_build_records_status ON build_records(status);
CREATE INDEX IF NOT EXISTS idx_build_records_phase ON build_records(phase);
`

// PostgresStorage implements the Storage interface using PostgreSQL via
// the pgx stdlib driver. Use this backend when several build hosts share
// one ledger.
type PostgresStorage struct {
	db     *sql.DB
	config *PostgresConfig
	logger *slog.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage backend and
// initializes the schema.
func NewPostgresStorage(config *PostgresConfig) (*PostgresStorage, error) {
	if config == nil {
		return nil, ledger.NewStorageError("postgres", "open", fmt.Errorf("config cannot be nil"))
	}
	if config.Host == "" {
		return nil, ledger.NewStorageError("postgres", "open", fmt.Errorf("host cannot be empty"))
	}
	if config.Database == "" {
		return nil, ledger.NewStorageError("postgres", "open", fmt.Errorf("database cannot be empty"))
	}
	if config.Port == 0 {
		config.Port = 5432
	}
	if config.SSLMode == "" {
		config.SSLMode = "require"
	}
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = 20
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 5
	}

	logger := slog.Default().With("component", "ledger.storage.postgres")

	db, err := sql.Open("pgx", config.dsn())
	if err != nil {
		return nil, ledger.NewStorageError("postgres", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, ledger.NewStorageError("postgres", "ping", err)
	}

	s := &PostgresStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, ledger.NewStorageError("postgres", "create_schema", err)
	}

	logger.Info("PostgreSQL storage initialized",
		"host", config.Host,
		"database", config.Database,
		"ssl_mode", config.SSLMode,
	)

	return s, nil
}

// dsn builds the connection URL. Credentials go through url.UserPassword
// so passwords with reserved characters survive.
func (c *PostgresConfig) dsn() string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	return u.String()
}

// Store persists a build record to the database.
func (s *PostgresStorage) Store(ctx context.Context, record *ledger.BuildRecord) error {
	query := `
		INSERT INTO build_records (
			id, run_id,
			spec_path, spec_hash, plan_version,
			genome, datatype, phase, adapter,
			status,
			started_at, finished_at, duration_ms,
			bytes_fetched, source_host,
			error,
			dry_run,
			recorded_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)
	`

	var errorVal interface{}
	if record.Error != "" {
		errorVal = record.Error
	}

	recordedAt := record.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RunID,
		record.SpecPath, record.SpecHash, record.PlanVersion,
		record.Genome, record.Datatype, record.Phase, record.Adapter,
		record.Status,
		record.StartedAt, record.FinishedAt, record.Duration.Milliseconds(),
		record.BytesFetched, record.SourceHost,
		errorVal,
		record.DryRun,
		recordedAt,
	)
	if err != nil {
		return ledger.NewStorageError("postgres", "store", err)
	}

	return nil
}

// Query retrieves build records matching the query filters.
func (s *PostgresStorage) Query(ctx context.Context, query *ledger.Query) ([]*ledger.BuildRecord, error) {
	sqlQuery, args := s.buildSelect(query)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, ledger.NewStorageError("postgres", "query", err)
	}
	defer rows.Close()

	records := []*ledger.BuildRecord{}
	for rows.Next() {
		record, err := s.scanRow(rows)
		if err != nil {
			return nil, ledger.NewStorageError("postgres", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewStorageError("postgres", "query", err)
	}

	return records, nil
}

// QueryStream returns a channel of build records for memory-efficient
// streaming. The channels are closed when the query completes or errors.
func (s *PostgresStorage) QueryStream(ctx context.Context, query *ledger.Query) (<-chan *ledger.BuildRecord, <-chan error, error) {
	recordsCh := make(chan *ledger.BuildRecord, 100)
	errCh := make(chan error, 1)

	sqlQuery, args := s.buildSelect(query)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- ledger.NewStorageError("postgres", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			default:
			}

			record, err := s.scanRow(rows)
			if err != nil {
				errCh <- ledger.NewStorageError("postgres", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- ledger.NewStorageError("postgres", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of build records matching the query filters.
func (s *PostgresStorage) Count(ctx context.Context, query *ledger.Query) (int64, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM build_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count)
	if err != nil {
		return 0, ledger.NewStorageError("postgres", "count", err)
	}

	return count, nil
}

// Delete removes build records matching the query filters.
// Returns the number of records deleted.
func (s *PostgresStorage) Delete(ctx context.Context, query *ledger.Query) (int64, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "DELETE FROM build_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, ledger.NewStorageError("postgres", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, ledger.NewStorageError("postgres", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend.
func (s *PostgresStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return ledger.NewStorageError("postgres", "close", err)
	}

	s.logger.Info("PostgreSQL storage closed")
	return nil
}

// buildSelect builds a complete SELECT statement from query filters,
// sorting, and pagination.
func (s *PostgresStorage) buildSelect(query *ledger.Query) (string, []interface{}) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "SELECT * FROM build_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	sqlQuery += " ORDER BY " + sortColumn(query.SortBy) + " " + sortDirection(query.SortOrder)

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)

	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	return sqlQuery, args
}

// buildWhereClause builds a SQL WHERE clause from query filters using
// PostgreSQL positional placeholders.
func (s *PostgresStorage) buildWhereClause(query *ledger.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	add := func(column, op string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s %s $%d", column, op, len(args)))
	}

	if query.StartTime != nil {
		add("started_at", ">=", *query.StartTime)
	}
	if query.EndTime != nil {
		add("started_at", "<=", *query.EndTime)
	}
	if query.RunID != "" {
		add("run_id", "=", query.RunID)
	}
	if query.Genome != "" {
		add("genome", "=", query.Genome)
	}
	if query.Datatype != "" {
		add("datatype", "=", query.Datatype)
	}
	if query.Phase != "" {
		add("phase", "=", query.Phase)
	}
	if query.Adapter != "" {
		add("adapter", "=", query.Adapter)
	}
	if query.Status != "" {
		add("status", "=", query.Status)
	}
	if query.DryRun != nil {
		add("dry_run", "=", *query.DryRun)
	}

	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}

	return whereClause, args
}

// scanRow scans a database row into a BuildRecord.
func (s *PostgresStorage) scanRow(row *sql.Rows) (*ledger.BuildRecord, error) {
	var record ledger.BuildRecord
	var durationMs int64
	var errorVal sql.NullString

	err := row.Scan(
		&record.ID, &record.RunID,
		&record.SpecPath, &record.SpecHash, &record.PlanVersion,
		&record.Genome, &record.Datatype, &record.Phase, &record.Adapter,
		&record.Status,
		&record.StartedAt, &record.FinishedAt, &durationMs,
		&record.BytesFetched, &record.SourceHost,
		&errorVal,
		&record.DryRun,
		&record.RecordedAt,
	)
	if err != nil {
		return nil, err
	}

	if errorVal.Valid {
		record.Error = errorVal.String
	}
	record.Duration = time.Duration(durationMs) * time.Millisecond

	return &record, nil
}
