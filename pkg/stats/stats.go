// Package stats holds the counters the contraction and query paths report,
// mirroring original_source's statistics.rs: lightweight, owned by the
// caller rather than global, and cheap enough to fill in on every query.
package stats

import "time"

// SearchStats describes a single bidirectional CH query.
type SearchStats struct {
	NodesSettled int
	NodesStalled int
	Duration     time.Duration

	start time.Time
}

// Init marks the start of a search.
func (s *SearchStats) Init() {
	*s = SearchStats{start: time.Now()}
}

// Finish records the elapsed time since Init.
func (s *SearchStats) Finish() {
	s.Duration = time.Since(s.start)
}

// ContractionStats describes a full preprocessing run.
type ContractionStats struct {
	NodesContracted int
	ShortcutsAdded  int
	Duration        time.Duration

	start time.Time
}

func (s *ContractionStats) Init() {
	*s = ContractionStats{start: time.Now()}
}

func (s *ContractionStats) Finish() {
	s.Duration = time.Since(s.start)
}
