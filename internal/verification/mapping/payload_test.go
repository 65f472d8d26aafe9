package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadLookup(t *testing.T) {
	p, err := ParsePayload([]byte(`{
		"Result": "0",
		"CardVerifyResults": [
			{"NormalCardInfo": {"IndonesiaIDCard": {"NIK": "3507210903970001"}}}
		],
		"CompareResults": [{"Sim": 87}]
	}`))
	require.NoError(t, err)

	t.Run("top level", func(t *testing.T) {
		v, ok := p.Lookup("Result")
		assert.True(t, ok)
		assert.Equal(t, "0", v)
	})

	t.Run("nested through array index", func(t *testing.T) {
		assert.Equal(t, "3507210903970001",
			p.String("CardVerifyResults.0.NormalCardInfo.IndonesiaIDCard.NIK"))
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok := p.Lookup("CardVerifyResults.0.NormalCardInfo.KTPCard")
		assert.False(t, ok)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, ok := p.Lookup("CardVerifyResults.1.NormalCardInfo")
		assert.False(t, ok)
	})
}

func TestPayloadString(t *testing.T) {
	p := NewPayload(map[string]any{
		"Name":    "  GUGUS DARMAYANTO  ",
		"Empty":   "",
		"Blank":   "   ",
		"Null":    nil,
		"Numeric": float64(3507210903970001),
	})

	assert.Equal(t, "GUGUS DARMAYANTO", p.String("Name"))
	assert.Equal(t, "", p.String("Empty"))
	assert.Equal(t, "", p.String("Blank"))
	assert.Equal(t, "", p.String("Null"))
	assert.Equal(t, "", p.String("Absent"))
	assert.Equal(t, "3507210903970001", p.String("Numeric"))
}

func TestPayloadNumberTreatsZeroAsPresent(t *testing.T) {
	p := NewPayload(map[string]any{
		"Zero":   float64(0),
		"Score":  float64(87),
		"Quoted": "0.87",
		"Text":   "high",
		"Null":   nil,
	})

	v, ok := p.Number("Zero")
	assert.True(t, ok, "a zero score is a computed score, not an absent one")
	assert.Equal(t, 0.0, v)

	v, ok = p.Number("Score")
	assert.True(t, ok)
	assert.Equal(t, 87.0, v)

	v, ok = p.Number("Quoted")
	assert.True(t, ok)
	assert.Equal(t, 0.87, v)

	_, ok = p.Number("Text")
	assert.False(t, ok)
	_, ok = p.Number("Null")
	assert.False(t, ok)
	_, ok = p.Number("Absent")
	assert.False(t, ok)
}
