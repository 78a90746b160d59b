package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// ErrRunNotFound is returned when a run ID has no record.
var ErrRunNotFound = fmt.Errorf("run not found")

// RunStore persists refresh run records.
type RunStore interface {
	Put(ctx context.Context, record *RunRecord) error
	Get(ctx context.Context, runID string) (*RunRecord, error)
	Close() error
}

// MemoryRunStore keeps run records in process memory.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]RunRecord
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{
		runs: make(map[string]RunRecord),
	}
}

func (s *MemoryRunStore) Put(ctx context.Context, record *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[record.RunID] = *record
	return nil
}

func (s *MemoryRunStore) Get(ctx context.Context, runID string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return &record, nil
}

func (s *MemoryRunStore) Close() error {
	return nil
}
