package budget_calculation

import (
	"context"
	"sort"
	"sync"
	"time"
)

// RepositoryStub keeps records in memory. It backs the service when the history database is
// disabled and in tests.
type RepositoryStub struct {
	mu      sync.Mutex
	records []Record
	// Err, when set, is returned by every method.
	Err error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{}
}

func (s *RepositoryStub) Store(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.records = append(s.records, record)
	return nil
}

func (s *RepositoryStub) ListForUser(ctx context.Context, userId string, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	records := make([]Record, 0)
	for _, r := range s.records {
		if r.UserId == userId {
			records = append(records, r)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CalculatedAt.After(records[j].CalculatedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *RepositoryStub) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	kept := s.records[:0]
	deleted := int64(0)
	for _, r := range s.records {
		if r.CalculatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted, nil
}

func (s *RepositoryStub) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.Err = nil
}
