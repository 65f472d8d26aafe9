package mapping

import (
	"regexp"
	"strings"
)

// Provider date fields are DD-MM-YYYY; the canonical form is YYYY-MM-DD.
var (
	dayFirst      = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
	canonicalDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Lifetime sentinels: the card says the document never expires.
var lifetimeSentinels = map[string]struct{}{
	"SEUMUR HIDUP": {},
	"LIFETIME":     {},
}

// NormalizeBirth splits the combined "<PLACE>, DD-MM-YYYY" birthday value into
// its place and canonical date components.
//
// When the value has no comma, the whole input is treated as the date part.
// A date part that is not DD-MM-YYYY is handed back unchanged rather than
// guessed at; already-canonical input therefore passes through, which keeps
// the function idempotent.
func NormalizeBirth(raw string) (place string, date string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}

	rest := raw
	if i := strings.Index(raw, ","); i >= 0 {
		place = strings.TrimSpace(raw[:i])
		rest = strings.TrimSpace(raw[i+1:])
	}

	if m := dayFirst.FindStringSubmatch(rest); m != nil {
		return place, m[3] + "-" + m[2] + "-" + m[1]
	}
	return place, rest
}

// NormalizeExpiry converts a document expiry value to canonical form.
//
// The lifetime sentinels and any shape that is not a strict DD-MM-YYYY string
// (segments of 2, 2 and 4 digits) normalize to "", meaning "no expiry". The
// two cases are indistinguishable here; the verbatim provider payload kept on
// the record is the audit trail for which one it was. Canonical YYYY-MM-DD
// input is returned unchanged (idempotence).
func NormalizeExpiry(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, ok := lifetimeSentinels[strings.ToUpper(raw)]; ok {
		return ""
	}
	if canonicalDate.MatchString(raw) {
		return raw
	}
	if m := dayFirst.FindStringSubmatch(raw); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	return ""
}
