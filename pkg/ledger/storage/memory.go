package storage

import (
	"context"
	"sort"
	"sync"

	"mgv-hq/ganymede/pkg/ledger"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// This implementation is intended for testing and dry runs; records do not
// survive a restart.
type MemoryStorage struct {
	records map[string]*ledger.BuildRecord
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*ledger.BuildRecord),
	}
}

// Store persists a build record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *ledger.BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to avoid mutation by the caller after storing
	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves build records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *ledger.Query) ([]*ledger.BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*ledger.BuildRecord
	for _, record := range s.records {
		if s.matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sortRecords(results, query.SortBy, query.SortOrder)

	// Apply pagination
	start := query.Offset
	if start > len(results) {
		return []*ledger.BuildRecord{}, nil
	}
	end := start + query.Limit
	if end > len(results) {
		end = len(results)
	}
	if query.Limit > 0 {
		results = results[start:end]
	} else if start > 0 {
		results = results[start:]
	}

	return results, nil
}

// QueryStream returns a channel of build records for memory-efficient
// streaming. The channels are closed when the query completes or errors.
func (s *MemoryStorage) QueryStream(ctx context.Context, query *ledger.Query) (<-chan *ledger.BuildRecord, <-chan error, error) {
	recordsCh := make(chan *ledger.BuildRecord, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		// Reuse Query so streaming respects sorting and pagination too.
		results, err := s.Query(ctx, query)
		if err != nil {
			errCh <- err
			return
		}

		for _, record := range results {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of build records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *ledger.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if s.matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes build records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *ledger.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	toDelete := []string{}
	for id, record := range s.records {
		if s.matchesQuery(record, query) {
			toDelete = append(toDelete, id)
		}
	}
	for _, id := range toDelete {
		delete(s.records, id)
		deleted++
	}

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*ledger.BuildRecord)
	return nil
}

// matchesQuery checks if a record matches the query filters.
func (s *MemoryStorage) matchesQuery(record *ledger.BuildRecord, query *ledger.Query) bool {
	if query.StartTime != nil && record.StartedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.StartedAt.After(*query.EndTime) {
		return false
	}

	if query.RunID != "" && record.RunID != query.RunID {
		return false
	}
	if query.Genome != "" && record.Genome != query.Genome {
		return false
	}
	if query.Datatype != "" && record.Datatype != query.Datatype {
		return false
	}
	if query.Phase != "" && record.Phase != query.Phase {
		return false
	}
	if query.Adapter != "" && record.Adapter != query.Adapter {
		return false
	}
	if query.Status != "" && record.Status != query.Status {
		return false
	}
	if query.DryRun != nil && record.DryRun != *query.DryRun {
		return false
	}

	return true
}

// sortRecords orders records per the query's sort parameters. The default
// is newest first, matching the SQL backends.
func sortRecords(records []*ledger.BuildRecord, sortBy, sortOrder string) {
	asc := sortOrder == "asc"
	sort.SliceStable(records, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "duration":
			less = records[i].Duration < records[j].Duration
		case "bytes_fetched":
			less = records[i].BytesFetched < records[j].BytesFetched
		default:
			less = records[i].StartedAt.Before(records[j].StartedAt)
		}
		if asc {
			return less
		}
		return !less
	})
}

// Clear removes all records from storage (for testing).
func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*ledger.BuildRecord)
}

// GetByID retrieves a single build record by ID (for testing).
func (s *MemoryStorage) GetByID(id string) *ledger.BuildRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil
	}
	recordCopy := *record
	return &recordCopy
}

// Size returns the number of records in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
