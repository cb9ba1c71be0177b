package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kodujdlapolski/tree-research/internal/db"
	"github.com/kodujdlapolski/tree-research/internal/model"
)

// Table names in the Postgres store.
const (
	TableRuns       = "runs"
	TableTrees      = "trees"
	TableTreeLatest = "tree_latest"
)

// PostgresStore implements Sink using pgxpool. Every run appends to trees;
// tree_latest keeps the newest row per feature id.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Close does not close it.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	tiles       INTEGER NOT NULL DEFAULT 0,
	records     INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trees (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	seq        INTEGER NOT NULL,
	feature_id TEXT NOT NULL,
	x          DOUBLE PRECISION,
	y          DOUBLE PRECISION,
	geom       BYTEA,
	attrs      JSONB NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS tree_latest (
	feature_id TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	x          DOUBLE PRECISION,
	y          DOUBLE PRECISION,
	geom       BYTEA,
	attrs      JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_trees_feature_id ON trees(feature_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveRun inserts the run row and copies all records into trees in one
// transaction, then refreshes tree_latest for records with an id.
func (s *PostgresStore) SaveRun(ctx context.Context, run model.Run, records []model.Record) error {
	rows := make([][]any, 0, len(records))
	latest := make([][]any, 0, len(records))
	for i, rec := range records {
		vals, err := treeValues(rec)
		if err != nil {
			return err
		}
		rows = append(rows, append([]any{run.ID, i}, vals...))
		if rec.ID() != "" {
			latest = append(latest, append([]any{run.ID}, vals...))
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save run")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO runs (id, started_at, finished_at, tiles, records, skipped) VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Tiles, run.Records, run.Skipped,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	n, err := db.CopyFrom(ctx, tx, TableTrees, append([]string{"run_id", "seq"}, treeColumns...), rows)
	if err != nil {
		return eris.Wrap(err, "postgres: save trees")
	}
	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit save run")
	}

	u, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        TableTreeLatest,
		Columns:      append([]string{"run_id"}, treeColumns...),
		ConflictKeys: []string{"feature_id"},
	}, latest)
	if err != nil {
		return eris.Wrap(err, "postgres: refresh latest trees")
	}

	zap.L().Info("postgres: run saved",
		zap.String("run_id", run.ID),
		zap.Int64("trees", n),
		zap.Int64("latest", u),
	)
	return nil
}

// ListRuns returns the most recent runs first. A non-positive limit means 100.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, started_at, finished_at, tiles, records, skipped FROM runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Tiles, &r.Records, &r.Skipped); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

var _ Sink = (*PostgresStore)(nil)
