//go:build integration

package store_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ekyc-gateway/internal/verification"
	"ekyc-gateway/internal/verification/store"
	"ekyc-gateway/pkg/sentinel"
	"ekyc-gateway/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "ekyc_verifications"))
}

func (s *PostgresStoreSuite) newRecord(userID, token string) *verification.Record {
	return &verification.Record{
		UserID:         userID,
		SDKToken:       token,
		Status:         verification.StatusPreview,
		DocumentNumber: "3507210903970001",
		Name:           "GUGUS DARMAYANTO",
		BirthPlace:     "MALANG",
		BirthDate:      "1997-03-09",
		Gender:         "M",
		Nationality:    "WNI",
		OCRData:        json.RawMessage(`{"nik":"3507210903970001"}`),
	}
}

func (s *PostgresStoreSuite) TestInsertAndGetLatest() {
	ctx := context.Background()

	rec := s.newRecord("user-1", "tok-1")
	id, err := s.store.Insert(ctx, rec)
	s.Require().NoError(err)
	s.NotZero(id)
	s.False(rec.CreatedAt.IsZero())

	got, err := s.store.GetLatestByUser(ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("tok-1", got.SDKToken)
	s.Equal("3507210903970001", got.DocumentNumber)
	s.Equal("1997-03-09", got.BirthDate)
	s.Equal("", got.ExpiryDate)
	s.Equal("M", got.Gender)
	s.JSONEq(`{"nik":"3507210903970001"}`, string(got.OCRData))
	s.Nil(got.LivenessScore)
}

func (s *PostgresStoreSuite) TestGetLatestOrdersByCreation() {
	ctx := context.Background()

	first := s.newRecord("user-1", "tok-1")
	_, err := s.store.Insert(ctx, first)
	s.Require().NoError(err)

	// created_at has microsecond resolution; a tiny gap keeps ordering
	// deterministic.
	time.Sleep(5 * time.Millisecond)

	second := s.newRecord("user-1", "tok-2")
	_, err = s.store.Insert(ctx, second)
	s.Require().NoError(err)

	got, err := s.store.GetLatestByUser(ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("tok-2", got.SDKToken)
}

func (s *PostgresStoreSuite) TestGetLatestNotFound() {
	_, err := s.store.GetLatestByUser(context.Background(), "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateByToken() {
	ctx := context.Background()

	_, err := s.store.Insert(ctx, s.newRecord("user-1", "tok-1"))
	s.Require().NoError(err)

	sim := 0.92
	raw := json.RawMessage(`{"Response":{"Result":"0"}}`)
	affected, err := s.store.UpdateByToken(ctx, "tok-1", verification.StatusUpdate{
		Status:          verification.StatusSuccess,
		SimilarityScore: &sim,
		RawResponse:     raw,
	})
	s.Require().NoError(err)
	s.Equal(int64(1), affected)

	got, err := s.store.GetLatestByUser(ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(verification.StatusSuccess, got.Status)
	s.Require().NotNil(got.SimilarityScore)
	s.InDelta(0.92, *got.SimilarityScore, 1e-9)
	s.JSONEq(string(raw), string(got.RawResponse))
	// Untouched fields survive a partial update.
	s.Equal("3507210903970001", got.DocumentNumber)
	s.True(got.UpdatedAt.After(got.CreatedAt))
}

func (s *PostgresStoreSuite) TestUpdateByTokenNoMatch() {
	affected, err := s.store.UpdateByToken(context.Background(), "missing", verification.StatusUpdate{
		Status: verification.StatusSuccess,
	})
	s.Require().NoError(err)
	s.Equal(int64(0), affected)
}

func (s *PostgresStoreSuite) TestUpdateByTokenTerminalGuard() {
	ctx := context.Background()

	rec := s.newRecord("user-1", "tok-1")
	rec.Status = verification.StatusSuccess
	_, err := s.store.Insert(ctx, rec)
	s.Require().NoError(err)

	affected, err := s.store.UpdateByToken(ctx, "tok-1", verification.StatusUpdate{
		Status: verification.StatusPending,
	})
	s.Require().NoError(err)
	s.Equal(int64(0), affected)

	affected, err = s.store.UpdateByToken(ctx, "tok-1", verification.StatusUpdate{
		Status: verification.StatusPending,
		Force:  true,
	})
	s.Require().NoError(err)
	s.Equal(int64(1), affected)
}

func (s *PostgresStoreSuite) TestUpdateByTokenDuplicates() {
	ctx := context.Background()

	for i := range 3 {
		rec := s.newRecord(fmt.Sprintf("user-%d", i), "shared-tok")
		_, err := s.store.Insert(ctx, rec)
		s.Require().NoError(err)
	}

	affected, err := s.store.UpdateByToken(ctx, "shared-tok", verification.StatusUpdate{
		Status: verification.StatusFailed,
	})
	s.Require().NoError(err)
	s.Equal(int64(3), affected)
}

func (s *PostgresStoreSuite) TestConcurrentUpdatesLastWriteWins() {
	ctx := context.Background()

	_, err := s.store.Insert(ctx, s.newRecord("user-1", "tok-1"))
	s.Require().NoError(err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			score := float64(n) / 10
			_, _ = s.store.UpdateByToken(ctx, "tok-1", verification.StatusUpdate{
				Status:        verification.StatusPending,
				LivenessScore: &score,
			})
		}(i)
	}
	wg.Wait()

	got, err := s.store.GetLatestByUser(ctx, "user-1")
	s.Require().NoError(err)
	// One of the writers won; the row is consistent either way.
	s.Equal(verification.StatusPending, got.Status)
	s.Require().NotNil(got.LivenessScore)
	s.GreaterOrEqual(*got.LivenessScore, 0.0)
	s.LessOrEqual(*got.LivenessScore, 0.7)
}

func (s *PostgresStoreSuite) TestInsertNonCanonicalDates() {
	ctx := context.Background()

	// Resolved date fields pass unrecognized source text through verbatim.
	// The typed columns take NULL for that text; it stays in ocr_data.
	rec := s.newRecord("user-1", "tok-1")
	rec.BirthDate = "JAKARTA PUSAT"
	rec.ExpiryDate = "SEUMUR HIDUP"
	_, err := s.store.Insert(ctx, rec)
	s.Require().NoError(err)

	got, err := s.store.GetLatestByUser(ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("", got.BirthDate)
	s.Equal("", got.ExpiryDate)
	s.Equal("MALANG", got.BirthPlace)
}

func (s *PostgresStoreSuite) TestInsertMinimalRecord() {
	ctx := context.Background()

	// Only the required fields; every identity column is nullable.
	rec := &verification.Record{
		UserID:   "user-min",
		SDKToken: "tok-min",
		Status:   verification.StatusPending,
	}
	_, err := s.store.Insert(ctx, rec)
	s.Require().NoError(err)

	got, err := s.store.GetLatestByUser(ctx, "user-min")
	s.Require().NoError(err)
	s.Equal("", got.DocumentNumber)
	s.Equal("", got.Nationality)
	s.Nil(got.OCRData)
}
