package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mgv-hq/ganymede/pkg/ledger"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/ledger.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "ledger.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		_, err := s.db.Exec("PRAGMA journal_mode=WAL;")
		if err != nil {
			return ledger.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs))
	if err != nil {
		return ledger.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	_, err = s.db.Exec(Schema)
	if err != nil {
		return ledger.NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	_, err = s.db.Exec(InsertSchemaVersion, SchemaVersion)
	if err != nil {
		return ledger.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err = s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return ledger.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return ledger.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Store persists a build record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *ledger.BuildRecord) error {
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
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	// Empty error becomes NULL so status queries can use IS NULL
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
		return ledger.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves build records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *ledger.Query) ([]*ledger.BuildRecord, error) {
	sqlQuery, args := s.buildSelect(query)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*ledger.BuildRecord{}
	for rows.Next() {
		record, err := s.scanRow(rows)
		if err != nil {
			return nil, ledger.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// QueryStream returns a channel of build records for memory-efficient
// streaming. The channels are closed when the query completes or errors.
func (s *SQLiteStorage) QueryStream(ctx context.Context, query *ledger.Query) (<-chan *ledger.BuildRecord, <-chan error, error) {
	recordsCh := make(chan *ledger.BuildRecord, 100)
	errCh := make(chan error, 1)

	sqlQuery, args := s.buildSelect(query)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- ledger.NewStorageError("sqlite", "query_stream", err)
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
				errCh <- ledger.NewStorageError("sqlite", "scan", err)
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
			errCh <- ledger.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of build records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *ledger.Query) (int64, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM build_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count)
	if err != nil {
		return 0, ledger.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes build records matching the query filters.
// Returns the number of records deleted.
func (s *SQLiteStorage) Delete(ctx context.Context, query *ledger.Query) (int64, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "DELETE FROM build_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, ledger.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, ledger.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return ledger.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite storage closed")
	return nil
}

// buildSelect builds a complete SELECT statement from query filters,
// sorting, and pagination.
func (s *SQLiteStorage) buildSelect(query *ledger.Query) (string, []interface{}) {
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

// sortColumn maps a query sort key to a whitelisted column name. Anything
// unrecognized falls back to started_at so queries never interpolate
// caller input.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "duration":
		return "duration_ms"
	case "bytes_fetched":
		return "bytes_fetched"
	default:
		return "started_at"
	}
}

// sortDirection maps a query sort order to ASC/DESC, defaulting to DESC.
func sortDirection(sortOrder string) string {
	if sortOrder == "asc" {
		return "ASC"
	}
	return "DESC"
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func (s *SQLiteStorage) buildWhereClause(query *ledger.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.StartTime != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "started_at <= ?")
		args = append(args, *query.EndTime)
	}

	if query.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, query.RunID)
	}
	if query.Genome != "" {
		conditions = append(conditions, "genome = ?")
		args = append(args, query.Genome)
	}
	if query.Datatype != "" {
		conditions = append(conditions, "datatype = ?")
		args = append(args, query.Datatype)
	}
	if query.Phase != "" {
		conditions = append(conditions, "phase = ?")
		args = append(args, query.Phase)
	}
	if query.Adapter != "" {
		conditions = append(conditions, "adapter = ?")
		args = append(args, query.Adapter)
	}
	if query.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, query.Status)
	}
	if query.DryRun != nil {
		conditions = append(conditions, "dry_run = ?")
		args = append(args, *query.DryRun)
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
func (s *SQLiteStorage) scanRow(row *sql.Rows) (*ledger.BuildRecord, error) {
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
