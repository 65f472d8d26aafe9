package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekyc-gateway/internal/audit"
	"ekyc-gateway/internal/provider"
	"ekyc-gateway/internal/verification"
	"ekyc-gateway/internal/verification/store"
	dErrors "ekyc-gateway/pkg/domain-errors"
)

type fakeProvider struct {
	token     provider.TokenResponse
	tokenErr  error
	result    provider.VerificationResult
	resultErr error

	resultCalls int
}

func (f *fakeProvider) GetToken(context.Context, provider.TokenRequest) (provider.TokenResponse, error) {
	return f.token, f.tokenErr
}

func (f *fakeProvider) GetResult(context.Context, string) (provider.VerificationResult, error) {
	f.resultCalls++
	return f.result, f.resultErr
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *fakeRecorder) Record(_ context.Context, event audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeRecorder) types() []audit.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]audit.EventType, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

func newTestService(p provider.FaceID, st store.Store, opts ...Option) (*Service, *fakeRecorder) {
	rec := &fakeRecorder{}
	return New(p, st, rec, slog.Default(), opts...), rec
}

func TestStartSession(t *testing.T) {
	p := &fakeProvider{token: provider.TokenResponse{SDKToken: "tok-1", RequestID: "req-1"}}
	cache := NewInMemoryTokenCache()
	svc, rec := newTestService(p, store.NewInMemoryStore(), WithTokenCache(cache))

	sess, err := svc.StartSession(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.SDKToken)
	assert.Equal(t, "req-1", sess.RequestID)

	// The token is bound so completion can attribute the result later.
	userID, err := cache.Lookup(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	assert.Equal(t, []audit.EventType{audit.EventSessionStarted}, rec.types())
}

func TestStartSessionValidation(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{}, store.NewInMemoryStore())

	_, err := svc.StartSession(context.Background(), "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestStartSessionProviderDown(t *testing.T) {
	p := &fakeProvider{tokenErr: dErrors.New(dErrors.CodeUnavailable, "provider unreachable")}
	svc, rec := newTestService(p, store.NewInMemoryStore())

	_, err := svc.StartSession(context.Background(), "user-1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.Empty(t, rec.types())
}

func TestSavePreviewInsertsRecord(t *testing.T) {
	st := store.NewInMemoryStore()
	svc, rec := newTestService(&fakeProvider{}, st)

	saved, err := svc.SavePreview(context.Background(), "user-1", "tok-1", "req-1", map[string]any{
		"nik":  "3507210903970001",
		"nama": "GUGUS DARMAYANTO",
	})
	require.NoError(t, err)
	assert.Equal(t, verification.StatusPreview, saved.Status)
	assert.NotZero(t, saved.ID)

	stored, err := st.GetLatestByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "3507210903970001", stored.DocumentNumber)

	assert.Equal(t, []audit.EventType{audit.EventPreviewSaved}, rec.types())
}

func TestCompleteUpdatesPreviewRow(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	sim := 92.0
	p := &fakeProvider{result: provider.VerificationResult{
		Result:     "0",
		RequestID:  "req-2",
		Similarity: &sim,
		Raw:        json.RawMessage(`{"Response":{"Result":"0"}}`),
	}}
	svc, rec := newTestService(p, st)

	_, err := svc.SavePreview(ctx, "user-1", "tok-1", "req-1", map[string]any{"nik": "1"})
	require.NoError(t, err)

	completed, err := svc.Complete(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, verification.StatusSuccess, completed.Status)

	stored, err := st.GetLatestByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, verification.StatusSuccess, stored.Status)
	require.NotNil(t, stored.SimilarityScore)
	assert.InDelta(t, 0.92, *stored.SimilarityScore, 1e-9)
	assert.NotEmpty(t, stored.RawResponse)

	assert.Equal(t, []audit.EventType{
		audit.EventPreviewSaved,
		audit.EventVerificationCompleted,
	}, rec.types())
}

func TestCompleteFallsBackToTokenBinding(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	cache := NewInMemoryTokenCache()
	p := &fakeProvider{
		token:  provider.TokenResponse{SDKToken: "tok-1"},
		result: provider.VerificationResult{Result: "0"},
	}
	svc, _ := newTestService(p, st, WithTokenCache(cache))

	// Session started but no preview was ever saved.
	_, err := svc.StartSession(ctx, "user-1")
	require.NoError(t, err)

	completed, err := svc.Complete(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", completed.UserID)

	stored, err := st.GetLatestByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, verification.StatusSuccess, stored.Status)
	assert.Equal(t, "tok-1", stored.SDKToken)
}

func TestCompleteUnknownToken(t *testing.T) {
	p := &fakeProvider{result: provider.VerificationResult{Result: "0"}}
	svc, _ := newTestService(p, store.NewInMemoryStore(), WithTokenCache(NewInMemoryTokenCache()))

	_, err := svc.Complete(context.Background(), "never-issued")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCompleteWithoutCacheRequiresPreview(t *testing.T) {
	p := &fakeProvider{result: provider.VerificationResult{Result: "0"}}
	svc, _ := newTestService(p, store.NewInMemoryStore())

	_, err := svc.Complete(context.Background(), "tok-1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCompleteFailedVerdict(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	p := &fakeProvider{result: provider.VerificationResult{
		Result:      "1101",
		Description: "face mismatch",
	}}
	svc, rec := newTestService(p, st)

	_, err := svc.SavePreview(ctx, "user-1", "tok-1", "", map[string]any{"nik": "1"})
	require.NoError(t, err)

	completed, err := svc.Complete(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, verification.StatusFailed, completed.Status)
	assert.Equal(t, "face mismatch", completed.ErrorMessage)

	stored, err := st.GetLatestByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, verification.StatusFailed, stored.Status)
	assert.Equal(t, "face mismatch", stored.ErrorMessage)

	assert.Contains(t, rec.types(), audit.EventVerificationFailed)
}

func TestCompleteProviderError(t *testing.T) {
	p := &fakeProvider{resultErr: errors.New("timeout")}
	svc, _ := newTestService(p, store.NewInMemoryStore())

	_, err := svc.Complete(context.Background(), "tok-1")
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	svc, _ := newTestService(&fakeProvider{}, st)

	_, err := svc.Status(ctx, "user-1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = svc.SavePreview(ctx, "user-1", "tok-1", "", map[string]any{"nik": "1"})
	require.NoError(t, err)

	rec, err := svc.Status(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, verification.StatusPreview, rec.Status)

	_, err = svc.Status(ctx, "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
