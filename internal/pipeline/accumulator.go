package pipeline

import "github.com/kodujdlapolski/tree-research/internal/model"

// Accumulator collects record batches in the order tiles were fetched.
// Records are kept as returned; duplicates across tiles are not merged.
type Accumulator struct {
	records []model.Record
	batches int
}

// Append adds one tile's batch. An empty batch still counts as a batch.
func (a *Accumulator) Append(batch []model.Record) {
	a.records = append(a.records, batch...)
	a.batches++
}

// Records returns every appended record in append order.
func (a *Accumulator) Records() []model.Record { return a.records }

// Len returns the number of records.
func (a *Accumulator) Len() int { return len(a.records) }

// Batches returns how many batches were appended.
func (a *Accumulator) Batches() int { return a.batches }
