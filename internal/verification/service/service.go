// Package service orchestrates the verification lifecycle: session issuance,
// OCR previews, provider result completion and status lookup.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ekyc-gateway/internal/audit"
	"ekyc-gateway/internal/provider"
	"ekyc-gateway/internal/verification"
	"ekyc-gateway/internal/verification/metrics"
	"ekyc-gateway/internal/verification/store"
	dErrors "ekyc-gateway/pkg/domain-errors"
	"ekyc-gateway/pkg/sentinel"
)

// Session is the client-facing result of starting a verification.
type Session struct {
	SDKToken  string `json:"sdkToken"`
	RequestID string `json:"requestId,omitempty"`
}

// Service wires the provider, the record store, the token binding cache and
// the audit trail. The cache may be nil; completion then requires that a
// preview row exists for the session.
type Service struct {
	provider provider.FaceID
	store    store.Store
	cache    TokenCache
	audit    audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tokenTTL time.Duration
}

// Option configures the Service.
type Option func(*Service)

func WithTokenCache(cache TokenCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.tokenTTL = ttl }
}

func New(p provider.FaceID, st store.Store, rec audit.Recorder, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		provider: p,
		store:    st,
		audit:    rec,
		logger:   logger,
		tokenTTL: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession obtains a fresh SDK token from the provider and binds it to
// the user. No record is inserted yet; rows appear at preview or completion.
func (s *Service) StartSession(ctx context.Context, userID string) (Session, error) {
	if userID == "" {
		return Session{}, dErrors.New(dErrors.CodeValidation, "user id is required")
	}

	start := time.Now()
	tok, err := s.provider.GetToken(ctx, provider.TokenRequest{UserID: userID})
	s.observeProvider("get_token", start)
	if err != nil {
		return Session{}, err
	}

	if s.cache != nil {
		if err := s.cache.Bind(ctx, tok.SDKToken, userID, s.tokenTTL); err != nil {
			// The binding is a fallback path; losing it degrades
			// completion to requiring a preview row.
			s.logger.Warn("token binding failed", "user_id", userID, "error", err)
		}
	}

	s.recordAudit(ctx, audit.Event{
		Type:      audit.EventSessionStarted,
		UserID:    userID,
		SDKToken:  tok.SDKToken,
		RequestID: tok.RequestID,
	})
	if s.metrics != nil {
		s.metrics.SessionsStarted.Inc()
	}

	return Session{SDKToken: tok.SDKToken, RequestID: tok.RequestID}, nil
}

// SavePreview persists a client-submitted OCR draft as a preview record.
func (s *Service) SavePreview(ctx context.Context, userID, sdkToken, requestID string, ocr map[string]any) (*verification.Record, error) {
	rec, err := verification.BuildPreview(userID, sdkToken, requestID, ocr)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Insert(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save preview record")
	}

	s.recordAudit(ctx, audit.Event{
		Type:      audit.EventPreviewSaved,
		UserID:    userID,
		SDKToken:  sdkToken,
		RequestID: requestID,
	})
	if s.metrics != nil {
		s.metrics.PreviewsSaved.Inc()
	}

	return rec, nil
}

// Complete fetches the provider verdict for a session and persists it. The
// preview row for the token is updated in place; when none exists the token
// binding supplies the user and a fresh row is inserted.
func (s *Service) Complete(ctx context.Context, sdkToken string) (*verification.Record, error) {
	if sdkToken == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "sdk token is required")
	}

	start := time.Now()
	res, err := s.provider.GetResult(ctx, sdkToken)
	s.observeProvider("get_result", start)
	if err != nil {
		return nil, err
	}

	rec := verification.BuildFromResult("", sdkToken, res)
	if s.cache != nil {
		// Best effort; the binding also attributes the audit event when
		// the update path is taken.
		if userID, err := s.cache.Lookup(ctx, sdkToken); err == nil {
			rec.UserID = userID
		}
	}

	upd := verification.StatusUpdate{
		Status:          rec.Status,
		LivenessScore:   rec.LivenessScore,
		SimilarityScore: rec.SimilarityScore,
		RawResponse:     rec.RawResponse,
	}
	if rec.ErrorMessage != "" {
		msg := rec.ErrorMessage
		upd.ErrorMessage = &msg
	}

	affected, err := s.store.UpdateByToken(ctx, sdkToken, upd)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update verification record")
	}

	if affected == 0 {
		// No preview row was ever saved for this session. The token
		// binding supplies the user; without it there is nothing to
		// attach the verdict to.
		if rec.UserID == "" {
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification record matches the token")
		}
		if _, err := s.store.Insert(ctx, rec); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "insert verification record")
		}
	}

	eventType := audit.EventVerificationCompleted
	if rec.Status == verification.StatusFailed {
		eventType = audit.EventVerificationFailed
	}
	s.recordAudit(ctx, audit.Event{
		Type:      eventType,
		UserID:    rec.UserID,
		SDKToken:  sdkToken,
		RequestID: rec.RequestID,
		Detail:    rec.ErrorMessage,
	})
	if s.metrics != nil {
		s.metrics.Completions.WithLabelValues(string(rec.Status)).Inc()
	}

	return rec, nil
}

// Status returns the most recent verification record for the user.
func (s *Service) Status(ctx context.Context, userID string) (*verification.Record, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "user id is required")
	}

	rec, err := s.store.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification record for user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load verification record")
	}
	return rec, nil
}

// recordAudit never fails the calling operation.
func (s *Service) recordAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Error("audit event not recorded", "type", event.Type, "error", err)
	}
}

func (s *Service) observeProvider(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ProviderLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
