// Package mapping normalizes heterogeneous provider payloads into the fields
// of the canonical verification record. Provider responses for the same
// semantic field arrive under different key names and nesting depths depending
// on which flow produced them; this package owns the lookup tables and the
// date/gender canonicalization rules.
package mapping

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Payload wraps one decoded provider JSON object and supports dotted path
// lookup. Numeric segments index into arrays, so
// "CardVerifyResults.0.NormalCardInfo.IndonesiaIDCard.NIK" addresses the card
// result buried inside a list-of-one.
type Payload struct {
	data map[string]any
}

// NewPayload wraps an already-decoded object.
func NewPayload(data map[string]any) Payload {
	return Payload{data: data}
}

// ParsePayload decodes raw JSON into a Payload.
func ParsePayload(raw []byte) (Payload, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return Payload{}, fmt.Errorf("decode provider payload: %w", err)
	}
	return Payload{data: data}, nil
}

// IsZero reports whether the payload holds no object.
func (p Payload) IsZero() bool {
	return p.data == nil
}

// Lookup walks the dotted path and returns the value found, or false when any
// segment is missing. JSON null resolves to (nil, true); callers decide what
// null means for their field type.
func (p Payload) Lookup(path string) (any, bool) {
	var current any = p.data
	for _, seg := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// String resolves path to a trimmed string. Absent keys, JSON null, and
// empty/whitespace-only strings all come back as "". Non-string scalars are
// rendered (a numeric document number still resolves), because some OCR
// drafts encode digit fields as numbers.
func (p Payload) String(path string) string {
	v, ok := p.Lookup(path)
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// Number resolves path to a float64. Unlike String, zero is a present value:
// the second return distinguishes "score of 0" from "no score". Strings that
// parse as numbers are accepted, matching payloads that quote their scores.
func (p Payload) Number(path string) (float64, bool) {
	v, ok := p.Lookup(path)
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
