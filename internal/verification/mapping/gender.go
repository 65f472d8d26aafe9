package mapping

import "strings"

// Canonical gender codes. These follow the two-value convention of the source
// documents ("LAKI-LAKI"/"PEREMPUAN"); callers that need a different coding
// remap on their side.
const (
	GenderMale   = "M"
	GenderFemale = "P"
)

// NormalizeGender maps a free-text sex indicator to a canonical code, or ""
// when the value matches neither convention. Matching is a case-insensitive
// substring check because OCR output wraps the keyword in noise more often
// than it delivers it clean.
func NormalizeGender(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(upper, "LAKI"):
		return GenderMale
	case strings.Contains(upper, "PEREMPUAN"):
		return GenderFemale
	default:
		return ""
	}
}
