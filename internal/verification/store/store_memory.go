package store

import (
	"context"
	"sync"
	"time"

	"ekyc-gateway/internal/verification"
	"ekyc-gateway/pkg/sentinel"
)

// InMemoryStore keeps records in process memory. Used by unit tests and as
// the service-test double; semantics mirror the PostgreSQL store.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []*verification.Record
	nextID  int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Insert(_ context.Context, rec *verification.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	stored.ID = s.nextID
	s.nextID++

	// The PostgreSQL store binds date fields against DATE columns, which take
	// NULL for anything that is not canonical YYYY-MM-DD.
	stored.BirthDate = canonicalDate(stored.BirthDate)
	stored.ExpiryDate = canonicalDate(stored.ExpiryDate)

	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.records = append(s.records, &stored)

	rec.ID = stored.ID
	rec.CreatedAt = stored.CreatedAt
	rec.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

func canonicalDate(s string) string {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return ""
	}
	return s
}

func (s *InMemoryStore) UpdateByToken(_ context.Context, sdkToken string, upd verification.StatusUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	now := time.Now()
	for _, rec := range s.records {
		if rec.SDKToken != sdkToken {
			continue
		}
		if rec.Status.Terminal() && !upd.Force {
			continue
		}

		rec.Status = upd.Status
		if upd.LivenessScore != nil {
			rec.LivenessScore = upd.LivenessScore
		}
		if upd.SimilarityScore != nil {
			rec.SimilarityScore = upd.SimilarityScore
		}
		if upd.RawResponse != nil {
			rec.RawResponse = upd.RawResponse
		}
		if upd.ErrorMessage != nil {
			rec.ErrorMessage = *upd.ErrorMessage
		}
		rec.UpdatedAt = now
		affected++
	}
	return affected, nil
}

func (s *InMemoryStore) GetLatestByUser(_ context.Context, userID string) (*verification.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *verification.Record
	for _, rec := range s.records {
		if rec.UserID != userID {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) ||
			(rec.CreatedAt.Equal(latest.CreatedAt) && rec.ID > latest.ID) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}

	out := *latest
	return &out, nil
}
