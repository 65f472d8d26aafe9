package verification

import (
	"encoding/json"

	"ekyc-gateway/internal/provider"
	"ekyc-gateway/internal/verification/mapping"
	dErrors "ekyc-gateway/pkg/domain-errors"
)

// DefaultNationality is assumed when the document does not state one. KTP
// cards are issued to citizens only.
const DefaultNationality = "WNI"

// BuildPreview constructs a preview record from a client-submitted OCR draft.
// No provider verdict exists yet, so the record carries no scores and the
// status is fixed to preview. The draft is kept verbatim in OCRData.
func BuildPreview(userID, sdkToken, requestID string, ocr map[string]any) (*Record, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "user id is required")
	}
	if len(ocr) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "ocr data is required")
	}

	ocrData, err := json.Marshal(ocr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "ocr data is not serializable")
	}

	rec := &Record{
		UserID:    userID,
		SDKToken:  sdkToken,
		RequestID: requestID,
		Status:    StatusPreview,
		OCRData:   ocrData,
	}
	resolveIdentity(rec, mapping.NewResolver(mapping.NewPayload(ocr)))
	return rec, nil
}

// BuildFromResult constructs a record from the provider's verdict for a
// finished session. The verbatim provider payload is preserved on the record;
// a payload that fails to parse degrades to empty identity fields rather than
// an error, since the verdict itself is still usable.
func BuildFromResult(userID, sdkToken string, res provider.VerificationResult) *Record {
	rec := &Record{
		UserID:      userID,
		SDKToken:    sdkToken,
		RequestID:   res.RequestID,
		RawResponse: res.Raw,
	}

	if res.Passed() {
		rec.Status = StatusSuccess
	} else {
		rec.Status = StatusFailed
		rec.ErrorMessage = res.Description
	}

	r := mapping.NewResolver(resultPayload(res.Raw))

	if res.Similarity != nil {
		rec.SimilarityScore = normalizeScore(*res.Similarity)
	} else if v, ok := r.Number("CompareResults.0.Sim", "Sim", "Similarity"); ok {
		rec.SimilarityScore = normalizeScore(v)
	}
	if v, ok := r.Number("CompareResults.0.LivenessScore", "LivenessScore", "liveness_score"); ok {
		rec.LivenessScore = normalizeScore(v)
	}

	resolveIdentity(rec, r)
	return rec
}

// resultPayload decodes a provider body for field resolution, descending into
// the Response envelope when present so candidate paths stay envelope-free.
func resultPayload(raw json.RawMessage) mapping.Payload {
	if len(raw) == 0 {
		return mapping.Payload{}
	}
	p, err := mapping.ParsePayload(raw)
	if err != nil {
		return mapping.Payload{}
	}
	if v, found := p.Lookup("Response"); found {
		if inner, ok := v.(map[string]any); ok {
			return mapping.NewPayload(inner)
		}
	}
	return p
}

// resolveIdentity fills the canonical identity-document fields from the
// resolver, applying the date and gender normalization rules.
func resolveIdentity(rec *Record, r *mapping.Resolver) {
	rec.DocumentNumber = r.String(mapping.FieldDocumentNumber)
	rec.Name = r.String(mapping.FieldName)
	rec.Address = r.String(mapping.FieldAddress)
	rec.RTRW = r.String(mapping.FieldRTRW)
	rec.Village = r.String(mapping.FieldVillage)
	rec.District = r.String(mapping.FieldDistrict)
	rec.City = r.String(mapping.FieldCity)
	rec.Province = r.String(mapping.FieldProvince)
	rec.Religion = r.String(mapping.FieldReligion)
	rec.MaritalStatus = r.String(mapping.FieldMaritalStatus)
	rec.Occupation = r.String(mapping.FieldOccupation)

	place, date := mapping.NormalizeBirth(r.String(mapping.FieldBirthday))
	if place == "" {
		place = r.String(mapping.FieldBirthPlace)
	}
	rec.BirthPlace = place
	rec.BirthDate = date

	rec.Gender = mapping.NormalizeGender(r.String(mapping.FieldSex))
	rec.ExpiryDate = mapping.NormalizeExpiry(r.String(mapping.FieldExpiryDate))

	rec.Nationality = r.String(mapping.FieldNationality)
	if rec.Nationality == "" {
		rec.Nationality = DefaultNationality
	}
}

// normalizeScore stores a provider score as a fraction. Providers report
// either a 0-1 fraction or a 0-100 percentage; the scale is detected from the
// value, not assumed.
func normalizeScore(v float64) *float64 {
	if v > 1 {
		v = v / 100
	}
	return &v
}
