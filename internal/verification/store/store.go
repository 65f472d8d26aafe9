// Package store persists verification records. Stores are pure I/O; status
// derivation and field normalization happen before a record reaches them.
package store

import (
	"context"

	"ekyc-gateway/internal/verification"
)

type Store interface {
	// Insert appends a new record and returns its assigned id. Optional
	// identity fields may be empty; only user id and token are required
	// by the schema.
	Insert(ctx context.Context, rec *verification.Record) (int64, error)

	// UpdateByToken applies the update to every record matching the token
	// and returns the affected count. Zero matches is not an error; the
	// caller decides whether that is a fault. Records in a terminal status
	// are skipped unless the update sets Force.
	UpdateByToken(ctx context.Context, sdkToken string, upd verification.StatusUpdate) (int64, error)

	// GetLatestByUser returns the most recently created record for the
	// user, or sentinel.ErrNotFound when none exists.
	GetLatestByUser(ctx context.Context, userID string) (*verification.Record, error)
}
