// Package pipeline wires the stages together: dedup, selection, and
// the orchestrated fetch-score-synthesise run.
package pipeline

import "errors"

var (
	// ErrTotalFetchFailure is returned when zero items were collected
	// across all sources. Maps to exit code 2.
	ErrTotalFetchFailure = errors.New("no items fetched from any source")
)
