package otp

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/signup/internal/pkg/goerror"
)

// MemoryStore keeps records in process. It suits tests and single-instance
// deployments.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}}
}

func (s *MemoryStore) Replace(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ConsumedAt = cloneTime(rec.ConsumedAt)
	s.records[rec.SubjectID] = rec
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, subjectID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[subjectID]
	if !ok {
		return Record{}, goerror.ErrNotFound
	}
	rec.ConsumedAt = cloneTime(rec.ConsumedAt)
	return rec, nil
}

func (s *MemoryStore) Consume(ctx context.Context, subjectID, recordID string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[subjectID]
	if !ok || rec.ID != recordID || !rec.Active(at) {
		return false, nil
	}
	rec.ConsumedAt = &at
	s.records[subjectID] = rec
	return true, nil
}

func (s *MemoryStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for subject, rec := range s.records {
		if rec.ConsumedAt != nil || !rec.ExpiresAt.After(before) {
			delete(s.records, subject)
			n++
		}
	}
	return n, nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
