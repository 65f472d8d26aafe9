package verification

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of a verification record.
type Status string

const (
	// StatusPreview marks a client-submitted OCR draft saved before the
	// provider verdict exists.
	StatusPreview Status = "preview"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Terminal reports whether the status ends the record's lifecycle. Terminal
// records are not updated again unless the caller forces it.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Record is one persisted verification attempt. String fields use "" for
// NULL; score pointers are nil when the provider did not report a score.
type Record struct {
	ID        int64  `json:"id"`
	UserID    string `json:"userId"`
	SDKToken  string `json:"sdkToken"`
	RequestID string `json:"requestId,omitempty"`
	Status    Status `json:"verificationStatus"`

	// OCRData is the normalized field set persisted as JSON; RawResponse is
	// the provider payload verbatim, kept as the audit trail.
	OCRData     json.RawMessage `json:"ocrData,omitempty"`
	RawResponse json.RawMessage `json:"-"`

	LivenessScore   *float64 `json:"livenessScore,omitempty"`
	SimilarityScore *float64 `json:"similarityScore,omitempty"`

	DocumentNumber string `json:"documentNumber,omitempty"`
	Name           string `json:"name,omitempty"`
	BirthPlace     string `json:"birthPlace,omitempty"`
	BirthDate      string `json:"birthDate,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Address        string `json:"address,omitempty"`
	RTRW           string `json:"rtRw,omitempty"`
	Village        string `json:"village,omitempty"`
	District       string `json:"district,omitempty"`
	City           string `json:"city,omitempty"`
	Province       string `json:"province,omitempty"`
	Religion       string `json:"religion,omitempty"`
	MaritalStatus  string `json:"maritalStatus,omitempty"`
	Occupation     string `json:"occupation,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	ExpiryDate     string `json:"expiryDate,omitempty"`

	ErrorMessage string `json:"errorMessage,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatusUpdate carries the fields a provider verdict may change on an
// existing record. Nil pointers leave the stored value untouched.
type StatusUpdate struct {
	Status          Status
	LivenessScore   *float64
	SimilarityScore *float64
	RawResponse     json.RawMessage
	ErrorMessage    *string

	// Force overrides the terminal-status guard. Records that already
	// reached success or failed are otherwise left alone.
	Force bool
}
