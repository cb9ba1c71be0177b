package model

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Keys the FOI service sets on every feature entry.
const (
	FieldID     = "id"
	FieldName   = "name"
	FieldGType  = "gtype"
	FieldImgURL = "imgurl"
	FieldX      = "x"
	FieldY      = "y"
	FieldWidth  = "width"
	FieldHeight = "height"
)

// SRIDPoland2000Zone7 is EPSG:2178, the projection the map viewer serves.
const SRIDPoland2000Zone7 = 2178

// Record is one tree feature. Before attribute promotion it carries the
// free-text "name" blob; afterwards each embedded label is a top-level key.
// Key sets differ from record to record.
type Record map[string]any

// ID returns the feature identifier as text, or "" when absent.
func (r Record) ID() string {
	v, ok := r[FieldID]
	if !ok || v == nil {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

// Coords returns the feature position. ok is false when either axis is
// missing or not numeric.
func (r Record) Coords() (x, y float64, ok bool) {
	x, okX := toFloat(r[FieldX])
	y, okY := toFloat(r[FieldY])
	return x, y, okX && okY
}

// Point builds a go-geom point in the given SRID from the record position.
func (r Record) Point(srid int) (*geom.Point, error) {
	x, y, ok := r.Coords()
	if !ok {
		return nil, eris.Errorf("model: record %q has no numeric position", r.ID())
	}
	return geom.NewPointFlat(geom.XY, []float64{x, y}).SetSRID(srid), nil
}

// Keys returns the record's keys in no particular order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
