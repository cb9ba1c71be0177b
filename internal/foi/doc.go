// Package foi talks to the map viewer's "feature of interest" endpoint:
// it builds per-tile requests, repairs the bare-key payload the service
// returns, and parses it into feature records.
package foi
