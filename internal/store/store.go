// Package store persists completed scrape runs and their tree records.
package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/kodujdlapolski/tree-research/internal/model"
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Sink is a run store.
type Sink interface {
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, run model.Run, records []model.Record) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	Close() error
}

// Open returns the sink for driver. An empty driver means no store and
// returns nil, nil.
func Open(ctx context.Context, driver, dsn string) (Sink, error) {
	switch driver {
	case "":
		return nil, nil
	case DriverSQLite:
		s, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := NewPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// treeColumns is the per-record layout shared by both sinks, after run_id
// and seq.
var treeColumns = []string{"feature_id", "x", "y", "geom", "attrs"}

// treeValues converts a record into feature_id, x, y, geom, attrs. Position
// columns are nil when the record has no numeric position; geom is EWKB in
// EPSG:2178.
func treeValues(rec model.Record) ([]any, error) {
	attrs, err := json.Marshal(rec)
	if err != nil {
		return nil, eris.Wrapf(err, "store: encode attrs of %q", rec.ID())
	}

	var x, y, g any
	if pt, err := rec.Point(model.SRIDPoland2000Zone7); err == nil {
		data, err := ewkb.Marshal(pt, ewkb.NDR)
		if err != nil {
			return nil, eris.Wrapf(err, "store: encode geometry of %q", rec.ID())
		}
		x, y, g = pt.X(), pt.Y(), data
	}
	return []any{rec.ID(), x, y, g, string(attrs)}, nil
}
