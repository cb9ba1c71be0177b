package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"string", Record{"id": "abc"}, "abc"},
		{"int", Record{"id": 42}, "42"},
		{"int64", Record{"id": int64(7)}, "7"},
		{"float", Record{"id": 12.5}, "12.5"},
		{"missing", Record{}, ""},
		{"nil", Record{"id": nil}, ""},
		{"unsupported", Record{"id": []string{"x"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.rec.ID())
		})
	}
}

func TestRecordCoords(t *testing.T) {
	t.Parallel()

	x, y, ok := Record{"x": 7500000.25, "y": 5780000}.Coords()
	require.True(t, ok)
	assert.InDelta(t, 7500000.25, x, 1e-9)
	assert.InDelta(t, 5780000.0, y, 1e-9)

	x, _, ok = Record{"x": " 12.5 ", "y": "3"}.Coords()
	require.True(t, ok)
	assert.InDelta(t, 12.5, x, 1e-9)

	_, _, ok = Record{"x": 1.0}.Coords()
	assert.False(t, ok)

	_, _, ok = Record{"x": "abc", "y": 1.0}.Coords()
	assert.False(t, ok)
}

func TestRecordPoint(t *testing.T) {
	t.Parallel()

	p, err := Record{"id": "1", "x": 10.0, "y": 20.0}.Point(SRIDPoland2000Zone7)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, p.FlatCoords())
	assert.Equal(t, SRIDPoland2000Zone7, p.SRID())

	_, err = Record{"id": "2"}.Point(SRIDPoland2000Zone7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `record "2"`)
}

func TestRecordKeys(t *testing.T) {
	t.Parallel()
	assert.ElementsMatch(t, []string{"a", "b"}, Record{"a": 1, "b": 2}.Keys())
}
