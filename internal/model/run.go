package model

import "time"

// Run describes one completed scrape.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Tiles      int       `json:"tiles"`
	Records    int       `json:"records"`
	Skipped    int       `json:"skipped"`
}
