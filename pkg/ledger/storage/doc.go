// Package storage provides storage backends for build records.
//
// # Storage Backends
//
// The storage package implements the ledger.Storage interface three ways:
//
//   - SQLite: Embedded database for single-host builds (the default)
//   - PostgreSQL: Shared ledger for multi-host build farms
//   - Memory: In-memory storage for testing
//
// # SQLite Backend
//
// The SQLite backend provides durable storage with:
//
//   - WAL mode for concurrent reads/writes
//   - Indexes on frequently queried fields
//   - Connection pooling for concurrent access
//   - Busy timeout for handling locks
//
// # Basic Usage
//
//	// Create SQLite storage
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path: "data/ledger.db",
//	    MaxOpenConns: 10,
//	    MaxIdleConns: 5,
//	    WALMode: true,
//	    BusyTimeout: 5 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	// Store a build record
//	err = store.Store(ctx, record)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Query build records
//	query := &ledger.Query{
//	    StartTime: &startTime,
//	    EndTime: &endTime,
//	    Genome: "mus_musculus_grcm39",
//	    Limit: 100,
//	}
//	records, err := store.Query(ctx, query)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # PostgreSQL Backend
//
// The PostgreSQL backend connects through the pgx stdlib driver. It is
// schema-compatible with the SQLite backend at the query level, so the
// recorder, pruner, and exporters work unchanged against either. Select
// it when several build hosts need to record into one ledger.
//
// # Thread Safety
//
// All storage backends are thread-safe and support concurrent access:
//
//   - Store() can be called concurrently from multiple goroutines
//   - Query() can be called concurrently with Store()
//   - WAL mode enables concurrent readers and writers on SQLite
//
// # Schema Migration
//
// Backends initialize their schema on first use. The SQLite backend
// tracks its schema version in the schema_version table for future
// migrations.
package storage
