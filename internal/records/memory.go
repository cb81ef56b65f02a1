package records

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Op string

const (
	OpFetch  Op = "fetch"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type failureKey struct {
	table string
	op    Op
	id    int
}

// MemoryStore is an in-memory implementation of RecordClient.
type MemoryStore struct {
	mu       sync.Mutex
	tables   map[string][]Record
	nextID   map[string]int
	failures map[failureKey]error
	now      func() time.Time
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:   map[string][]Record{},
		nextID:   map[string]int{},
		failures: map[failureKey]error{},
		now:      time.Now,
	}
}

// FailOn makes the given operation fail with err. An id of 0 matches every id,
// which is how fetch failures are injected.
func (s *MemoryStore) FailOn(table string, op Op, id int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[failureKey{table, op, id}] = err
}

// ClearFailures removes every injected failure.
func (s *MemoryStore) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[failureKey]error{}
}

// Clear drops every record of a table and resets its id sequence.
func (s *MemoryStore) Clear(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, table)
	delete(s.nextID, table)
}

func (s *MemoryStore) injected(table string, op Op, id int) error {
	if err, ok := s.failures[failureKey{table, op, id}]; ok {
		return err
	}
	if err, ok := s.failures[failureKey{table, op, 0}]; ok {
		return err
	}
	return nil
}

func (s *MemoryStore) FetchRecords(ctx context.Context, table string, q Query) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(table, OpFetch, 0); err != nil {
		return nil, err
	}

	out := []Record{}
	for _, r := range s.tables[table] {
		if q.Matches(r) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) GetRecordByID(ctx context.Context, table string, id int) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(table, OpGet, id); err != nil {
		return nil, err
	}

	i := s.indexOf(table, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return s.tables[table][i].Clone(), nil
}

func (s *MemoryStore) CreateRecord(ctx context.Context, table string, fields Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(table, OpCreate, 0); err != nil {
		return nil, err
	}

	s.nextID[table]++
	r := fields.Clone()
	r[IDField] = s.nextID[table]
	now := s.now().UTC().Format(time.RFC3339)
	r["CreatedOn"] = now
	r["ModifiedOn"] = now
	s.tables[table] = append(s.tables[table], r)
	return r.Clone(), nil
}

func (s *MemoryStore) UpdateRecord(ctx context.Context, table string, id int, fields Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(table, OpUpdate, id); err != nil {
		return nil, err
	}

	i := s.indexOf(table, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	merged := s.tables[table][i].Clone()
	for k, v := range fields {
		if k == IDField {
			continue
		}
		merged[k] = v
	}
	merged["ModifiedOn"] = s.now().UTC().Format(time.RFC3339)
	s.tables[table][i] = merged
	return merged.Clone(), nil
}

func (s *MemoryStore) DeleteRecord(ctx context.Context, table string, id int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(table, OpDelete, id); err != nil {
		return err
	}

	i := s.indexOf(table, id)
	if i < 0 {
		return ErrNotFound
	}
	rows := s.tables[table]
	s.tables[table] = append(rows[:i], rows[i+1:]...)
	return nil
}

func (s *MemoryStore) indexOf(table string, id int) int {
	for i, r := range s.tables[table] {
		if r.ID() == id {
			return i
		}
	}
	return -1
}
