// Package provider integrates the face/ID verification provider behind a
// narrow interface so the verification service never sees transport details.
package provider

import (
	"context"
	"encoding/json"
)

// TokenRequest asks the provider for a new verification session.
type TokenRequest struct {
	UserID      string
	RedirectURL string
}

// TokenResponse carries the SDK token the client embeds in its capture flow.
type TokenResponse struct {
	SDKToken  string
	RequestID string
}

// VerificationResult is the provider's verdict for one session. Raw holds the
// response body verbatim; the normalized fields are conveniences over it.
type VerificationResult struct {
	// Result is the provider's pass/fail code; "0" means passed.
	Result      string
	Description string
	RequestID   string

	// Similarity is the face-compare score as reported, nil when the
	// provider did not run a compare step. Scale is provider-defined.
	Similarity *float64

	Extra string
	Raw   json.RawMessage
}

// Passed reports whether the provider verdict is a pass.
func (r VerificationResult) Passed() bool {
	return r.Result == "0"
}

// FaceID is the provider surface the verification service consumes.
type FaceID interface {
	GetToken(ctx context.Context, req TokenRequest) (TokenResponse, error)
	GetResult(ctx context.Context, sdkToken string) (VerificationResult, error)
}
