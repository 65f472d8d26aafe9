// Package handler exposes the verification flow over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ekyc-gateway/internal/platform/metrics"
	"ekyc-gateway/internal/platform/middleware"
	"ekyc-gateway/internal/transport/http/shared"
	"ekyc-gateway/internal/verification"
	"ekyc-gateway/internal/verification/service"
	dErrors "ekyc-gateway/pkg/domain-errors"
	"ekyc-gateway/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service-mocks.go -package=mocks Service

// Service defines the verification operations the handler exposes.
type Service interface {
	StartSession(ctx context.Context, userID string) (service.Session, error)
	SavePreview(ctx context.Context, userID, sdkToken, requestID string, ocr map[string]any) (*verification.Record, error)
	Complete(ctx context.Context, sdkToken string) (*verification.Record, error)
	Status(ctx context.Context, userID string) (*verification.Record, error)
}

// Handler handles the eKYC verification endpoints.
type Handler struct {
	verification Service
	logger       *slog.Logger
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

func New(svc Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		verification: svc,
		logger:       logger,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the verification routes under /api/ekyc.
func (h *Handler) Register(r chi.Router) {
	ekycRouter := chi.NewRouter()
	ekycRouter.Use(middleware.Recovery(h.logger))
	ekycRouter.Use(middleware.RequestID)
	ekycRouter.Use(middleware.Metadata)
	ekycRouter.Use(middleware.Logger(h.logger))
	ekycRouter.Use(middleware.Timeout(60 * time.Second))
	ekycRouter.Use(middleware.ContentTypeJSON)
	ekycRouter.Use(middleware.Latency(h.metrics))
	ekycRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	ekycRouter.Post("/token", h.handleToken)
	ekycRouter.Post("/save-ocr-preview", h.handleSavePreview)
	ekycRouter.Post("/result", h.handleResult)
	ekycRouter.Get("/verification-status/{userId}", h.handleStatus)
	ekycRouter.Get("/user/{userId}", h.handleUserRecord)

	r.Mount("/api/ekyc", ekycRouter)
}

// handleToken starts a verification session for the authenticated user.
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	sess, err := h.verification.StartSession(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "start session failed", "user_id", userID, "error", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, tokenResponse{
		SDKToken:  sess.SDKToken,
		RequestID: sess.RequestID,
	})
}

// handleSavePreview stores a client-submitted OCR draft before the liveness
// step has run.
func (h *Handler) handleSavePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	if userID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req savePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid preview request", "error", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	rec, err := h.verification.SavePreview(ctx, userID, req.SDKToken, req.RequestID, req.OCRData)
	if err != nil {
		h.logger.ErrorContext(ctx, "save preview failed", "user_id", userID, "error", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, newRecordResponse(rec))
}

// handleResult fetches and persists the provider verdict for a session.
func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid result request", "error", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	rec, err := h.verification.Complete(ctx, req.SDKToken)
	if err != nil {
		h.logger.ErrorContext(ctx, "complete verification failed", "sdk_token", req.SDKToken, "error", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, newRecordResponse(rec))
}

// handleStatus returns a summary of the user's latest verification.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")

	rec, err := h.verification.Status(ctx, userID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "status lookup failed", "user_id", userID, "error", err)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, newStatusResponse(rec))
}

// handleUserRecord returns the full latest record for a user.
func (h *Handler) handleUserRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")

	rec, err := h.verification.Status(ctx, userID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "record lookup failed", "user_id", userID, "error", err)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, newRecordResponse(rec))
}
