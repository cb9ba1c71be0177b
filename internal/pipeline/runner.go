// Package pipeline drives the tree scrape: enumerate tiles, fetch each one,
// repair and parse the payload, promote record attributes, and accumulate.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/kodujdlapolski/tree-research/internal/extract"
	"github.com/kodujdlapolski/tree-research/internal/foi"
	"github.com/kodujdlapolski/tree-research/internal/model"
	"github.com/kodujdlapolski/tree-research/internal/tile"
)

// ErrorPolicy decides what happens to a record whose name blob is malformed.
type ErrorPolicy string

const (
	// Skip logs the record and leaves it out of the result.
	Skip ErrorPolicy = "skip"
	// Abort fails the run.
	Abort ErrorPolicy = "abort"
)

// TileFetcher returns the raw payload text for one tile.
type TileFetcher interface {
	FetchTile(ctx context.Context, t tile.Tile) (string, error)
}

// Options configures a Runner.
type Options struct {
	Upper    geom.Coord
	Lower    geom.Coord
	TileSide float64
	Repair   foi.RepairMode
	OnError  ErrorPolicy
}

// Stats summarizes a run.
type Stats struct {
	Tiles    int
	Records  int
	Skipped  int
	Duration time.Duration
}

// Runner executes the scrape sequentially, one tile at a time.
type Runner struct {
	fetcher TileFetcher
	opts    Options
	log     *zap.Logger
}

// NewRunner creates a Runner. Empty Repair and OnError select literal repair
// and Skip.
func NewRunner(f TileFetcher, opts Options) *Runner {
	if opts.Repair == "" {
		opts.Repair = foi.RepairLiteral
	}
	if opts.OnError == "" {
		opts.OnError = Skip
	}
	return &Runner{
		fetcher: f,
		opts:    opts,
		log:     zap.L().With(zap.String("component", "pipeline")),
	}
}

// Run visits every tile in enumeration order and returns the accumulated
// records. Any fetch or parse failure ends the run; records gathered so far
// are discarded. The context is checked between tiles.
func (r *Runner) Run(ctx context.Context) (*Accumulator, Stats, error) {
	start := time.Now()
	acc := &Accumulator{}
	var stats Stats

	total := tile.Count(r.opts.Upper, r.opts.Lower, r.opts.TileSide)
	r.log.Info("pipeline: starting scrape", zap.Int("tiles", total))

	for t := range tile.Enumerate(r.opts.Upper, r.opts.Lower, r.opts.TileSide) {
		if err := ctx.Err(); err != nil {
			return nil, stats, eris.Wrapf(err, "tile %d", t.Index)
		}

		batch, skipped, err := r.processTile(ctx, t)
		if err != nil {
			return nil, stats, err
		}
		acc.Append(batch)
		stats.Tiles++
		stats.Skipped += skipped

		r.log.Info("pipeline: tile done",
			zap.Int("tile", t.Index),
			zap.Int("total", total),
			zap.Int("records", len(batch)),
			zap.Int("accumulated", acc.Len()),
		)
	}

	stats.Records = acc.Len()
	stats.Duration = time.Since(start)
	r.log.Info("pipeline: scrape complete",
		zap.Int("tiles", stats.Tiles),
		zap.Int("records", stats.Records),
		zap.Int("skipped", stats.Skipped),
		zap.Duration("duration", stats.Duration),
	)
	return acc, stats, nil
}

func (r *Runner) processTile(ctx context.Context, t tile.Tile) ([]model.Record, int, error) {
	raw, err := r.fetcher.FetchTile(ctx, t)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "tile %d: fetch", t.Index)
	}

	payload, err := foi.Decode(raw, r.opts.Repair)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "tile %d: parse", t.Index)
	}

	batch := make([]model.Record, 0, len(payload.Features))
	var skipped int
	for _, rec := range payload.Features {
		err := extract.Promote(rec)
		if err == nil {
			batch = append(batch, rec)
			continue
		}
		if r.opts.OnError == Abort {
			return nil, 0, eris.Wrapf(err, "tile %d: extract", t.Index)
		}
		skipped++
		r.log.Warn("pipeline: skipping record with malformed attributes",
			zap.Int("tile", t.Index),
			zap.Error(err),
		)
	}
	return batch, skipped, nil
}
