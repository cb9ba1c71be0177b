package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/kodujdlapolski/tree-research/internal/config"
	"github.com/kodujdlapolski/tree-research/internal/export"
	"github.com/kodujdlapolski/tree-research/internal/fetcher"
	"github.com/kodujdlapolski/tree-research/internal/foi"
	"github.com/kodujdlapolski/tree-research/internal/model"
	"github.com/kodujdlapolski/tree-research/internal/pipeline"
	"github.com/kodujdlapolski/tree-research/internal/store"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run the full scrape and export",
	Long:  "Fetches every tile of the scan region, promotes tree attributes, and writes the export files. Same as running trees with no arguments.",
	Args:  cobra.NoArgs,
	RunE:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		RatePerSec: cfg.Fetch.RatePerSec,
	})

	res, err := scrape(ctx, cfg, f, time.Now)
	if err != nil {
		return err
	}
	for _, p := range res.Paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

// scrapeResult is what one scrape produced.
type scrapeResult struct {
	Run   model.Run
	Paths []string
}

// scrape runs the pipeline, writes every configured export, and stores the
// run when a store is configured. Nothing is written if any tile fails.
func scrape(ctx context.Context, cfg *config.Config, f fetcher.Fetcher, now func() time.Time) (*scrapeResult, error) {
	runner, err := newRunner(cfg, f)
	if err != nil {
		return nil, err
	}

	run := model.Run{ID: store.NewRunID(), StartedAt: now()}
	log := zap.L().With(zap.String("component", "scrape"), zap.String("run_id", run.ID))
	log.Info("scrape: starting", zap.String("endpoint", cfg.FOI.Endpoint))

	acc, stats, err := runner.Run(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "scrape")
	}
	run.FinishedAt = now()
	run.Tiles = stats.Tiles
	run.Records = stats.Records
	run.Skipped = stats.Skipped

	paths, err := export.Write(cfg.Export.Formats, cfg.Export.Dir, run.StartedAt, acc.Records(), cfg.Export.Columns)
	if err != nil {
		return nil, eris.Wrap(err, "export")
	}
	for _, p := range paths {
		log.Info("scrape: wrote export", zap.String("path", p), zap.Int("records", acc.Len()))
	}

	if err := persist(ctx, cfg.Store, run, acc.Records()); err != nil {
		return nil, err
	}
	return &scrapeResult{Run: run, Paths: paths}, nil
}

func newRunner(cfg *config.Config, f fetcher.Fetcher) (*pipeline.Runner, error) {
	mode, err := foi.ParseRepairMode(cfg.FOI.Repair)
	if err != nil {
		return nil, err
	}
	client := foi.NewClient(cfg.FOI.Endpoint, foiParams(cfg.FOI), f)
	return pipeline.NewRunner(client, pipeline.Options{
		Upper:    geom.Coord{cfg.Scan.UpperX, cfg.Scan.UpperY},
		Lower:    geom.Coord{cfg.Scan.LowerX, cfg.Scan.LowerY},
		TileSide: cfg.Scan.TileSide,
		Repair:   mode,
		OnError:  pipeline.ErrorPolicy(cfg.Extract.OnError),
	}), nil
}

func foiParams(c config.FOIConfig) foi.Params {
	return foi.Params{
		Request:   c.Request,
		Version:   c.Version,
		Width:     c.Width,
		Height:    c.Height,
		Theme:     c.Theme,
		Clickable: c.Clickable,
		Area:      c.Area,
		DstSRID:   c.DstSRID,
		CacheFOI:  c.CacheFOI,
		AW:        c.AW,
		TID:       c.TID,
	}
}

func persist(ctx context.Context, sc config.StoreConfig, run model.Run, records []model.Record) error {
	st, err := store.Open(ctx, sc.Driver, sc.DSN)
	if err != nil {
		return eris.Wrap(err, "open store")
	}
	if st == nil {
		return nil
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	return eris.Wrap(st.SaveRun(ctx, run, records), "save run")
}
