package handler

import (
	"time"

	"ekyc-gateway/internal/verification"
)

type tokenResponse struct {
	SDKToken  string `json:"sdkToken"`
	RequestID string `json:"requestId,omitempty"`
}

// statusResponse is the summary shape for status polling clients.
type statusResponse struct {
	UserID          string   `json:"userId"`
	Status          string   `json:"verificationStatus"`
	LivenessScore   *float64 `json:"livenessScore,omitempty"`
	SimilarityScore *float64 `json:"similarityScore,omitempty"`
	Name            string   `json:"name,omitempty"`
	DocumentNumber  string   `json:"documentNumber,omitempty"`
	ErrorMessage    string   `json:"errorMessage,omitempty"`
	UpdatedAt       string   `json:"updatedAt"`
}

func newStatusResponse(rec *verification.Record) statusResponse {
	return statusResponse{
		UserID:          rec.UserID,
		Status:          string(rec.Status),
		LivenessScore:   rec.LivenessScore,
		SimilarityScore: rec.SimilarityScore,
		Name:            rec.Name,
		DocumentNumber:  rec.DocumentNumber,
		ErrorMessage:    rec.ErrorMessage,
		UpdatedAt:       rec.UpdatedAt.Format(time.RFC3339),
	}
}

// recordResponse is the full record shape. Expiry is omitted entirely for
// lifetime documents.
type recordResponse struct {
	ID              int64    `json:"id"`
	UserID          string   `json:"userId"`
	SDKToken        string   `json:"sdkToken"`
	RequestID       string   `json:"requestId,omitempty"`
	Status          string   `json:"verificationStatus"`
	LivenessScore   *float64 `json:"livenessScore,omitempty"`
	SimilarityScore *float64 `json:"similarityScore,omitempty"`
	DocumentNumber  string   `json:"documentNumber,omitempty"`
	Name            string   `json:"name,omitempty"`
	BirthPlace      string   `json:"birthPlace,omitempty"`
	BirthDate       string   `json:"birthDate,omitempty"`
	Gender          string   `json:"gender,omitempty"`
	Address         string   `json:"address,omitempty"`
	RTRW            string   `json:"rtRw,omitempty"`
	Village         string   `json:"village,omitempty"`
	District        string   `json:"district,omitempty"`
	City            string   `json:"city,omitempty"`
	Province        string   `json:"province,omitempty"`
	Religion        string   `json:"religion,omitempty"`
	MaritalStatus   string   `json:"maritalStatus,omitempty"`
	Occupation      string   `json:"occupation,omitempty"`
	Nationality     string   `json:"nationality,omitempty"`
	ExpiryDate      string   `json:"expiryDate,omitempty"`
	ErrorMessage    string   `json:"errorMessage,omitempty"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

func newRecordResponse(rec *verification.Record) recordResponse {
	return recordResponse{
		ID:              rec.ID,
		UserID:          rec.UserID,
		SDKToken:        rec.SDKToken,
		RequestID:       rec.RequestID,
		Status:          string(rec.Status),
		LivenessScore:   rec.LivenessScore,
		SimilarityScore: rec.SimilarityScore,
		DocumentNumber:  rec.DocumentNumber,
		Name:            rec.Name,
		BirthPlace:      rec.BirthPlace,
		BirthDate:       rec.BirthDate,
		Gender:          rec.Gender,
		Address:         rec.Address,
		RTRW:            rec.RTRW,
		Village:         rec.Village,
		District:        rec.District,
		City:            rec.City,
		Province:        rec.Province,
		Religion:        rec.Religion,
		MaritalStatus:   rec.MaritalStatus,
		Occupation:      rec.Occupation,
		Nationality:     rec.Nationality,
		ExpiryDate:      rec.ExpiryDate,
		ErrorMessage:    rec.ErrorMessage,
		CreatedAt:       rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       rec.UpdatedAt.Format(time.RFC3339),
	}
}
