package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverPrefersNestedOverFlat(t *testing.T) {
	// The same field present in both the structured nested location and the
	// flat fallback must resolve to the nested value.
	p, err := ParsePayload([]byte(`{
		"NIK": "FLAT",
		"CardVerifyResults": [
			{"NormalCardInfo": {"IndonesiaIDCard": {"NIK": "NESTED"}}}
		]
	}`))
	require.NoError(t, err)

	r := NewResolver(p)
	assert.Equal(t, "NESTED", r.String(FieldDocumentNumber))
}

func TestResolverFlatFallback(t *testing.T) {
	p := NewPayload(map[string]any{
		"LicenseNumber":    "3507210903970001",
		"FullName":         "GUGUS DARMAYANTO",
		"FormattedAddress": "DSN. DARUNGAN",
	})

	r := NewResolver(p)
	assert.Equal(t, "3507210903970001", r.String(FieldDocumentNumber))
	assert.Equal(t, "GUGUS DARMAYANTO", r.String(FieldName))
	assert.Equal(t, "DSN. DARUNGAN", r.String(FieldAddress))
}

func TestResolverLocalOCRShape(t *testing.T) {
	p := NewPayload(map[string]any{
		"nik":               "3507210903970001",
		"nama":              "GUGUS DARMAYANTO",
		"alamat":            "DSN. DARUNGAN",
		"kelurahan":         "DARUNGAN",
		"kecamatan":         "WONOSARI",
		"agama":             "ISLAM",
		"status_perkawinan": "KAWIN",
		"pekerjaan":         "WIRASWASTA",
		"kewarganegaraan":   "WNI",
	})

	r := NewResolver(p)
	assert.Equal(t, "3507210903970001", r.String(FieldDocumentNumber))
	assert.Equal(t, "DARUNGAN", r.String(FieldVillage))
	assert.Equal(t, "WONOSARI", r.String(FieldDistrict))
	assert.Equal(t, "ISLAM", r.String(FieldReligion))
	assert.Equal(t, "KAWIN", r.String(FieldMaritalStatus))
	assert.Equal(t, "WIRASWASTA", r.String(FieldOccupation))
	assert.Equal(t, "WNI", r.String(FieldNationality))
}

func TestResolverSkipsEmptyCandidates(t *testing.T) {
	p := NewPayload(map[string]any{
		"NIK":           "",
		"LicenseNumber": "3507210903970001",
	})

	r := NewResolver(p)
	assert.Equal(t, "3507210903970001", r.String(FieldDocumentNumber))
}

func TestResolverMultipleSources(t *testing.T) {
	structured, err := ParsePayload([]byte(`{
		"CardVerifyResults": [
			{"NormalCardInfo": {"IndonesiaIDCard": {"FullName": "FROM CARD"}}}
		]
	}`))
	require.NoError(t, err)
	draft := NewPayload(map[string]any{"FullName": "FROM DRAFT", "Sex": "PEREMPUAN"})

	r := NewResolver(structured, draft)
	// Path precedence wins across sources: the nested card path is tried in
	// every source before any flat candidate is considered.
	assert.Equal(t, "FROM CARD", r.String(FieldName))
	assert.Equal(t, "PEREMPUAN", r.String(FieldSex))
}

func TestResolverExhausted(t *testing.T) {
	r := NewResolver(NewPayload(map[string]any{}))
	assert.Equal(t, "", r.String(FieldDocumentNumber))

	_, ok := r.Number("CompareResults.0.Sim")
	assert.False(t, ok)
}
