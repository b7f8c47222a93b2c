package monitor

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/dropwatch/internal/alerts"
	"github.com/jonathan/dropwatch/internal/types"
)

// TargetSummary records what happened to one watched page.
type TargetSummary struct {
	Name          string
	Failed        bool
	Error         string
	Candidates    int
	NewItems      int
	DetailFetches int
	DetailSkips   int
	DigestChanged bool
}

// Summary describes one completed run.
type Summary struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time

	Targets    []TargetSummary
	StateReset bool // Prior state was unreadable and the run started fresh
	StateSaved bool
	Evicted    int
	Tracked    int // Items in state after eviction

	Events   []types.AlertEvent // In delivery order
	Dispatch alerts.DispatchResult
}

// TargetsFailed counts targets whose listing could not be processed.
func (s *Summary) TargetsFailed() int {
	n := 0
	for _, t := range s.Targets {
		if t.Failed {
			n++
		}
	}
	return n
}

// Candidates counts candidates across all targets.
func (s *Summary) Candidates() int {
	n := 0
	for _, t := range s.Targets {
		n += t.Candidates
	}
	return n
}

// DetailFetches counts successful product page fetches.
func (s *Summary) DetailFetches() int {
	n := 0
	for _, t := range s.Targets {
		n += t.DetailFetches
	}
	return n
}

// DetailSkips counts gated candidates whose product page yielded no data.
func (s *Summary) DetailSkips() int {
	n := 0
	for _, t := range s.Targets {
		n += t.DetailSkips
	}
	return n
}

// AlertCounts groups events by kind.
func (s *Summary) AlertCounts() map[types.AlertKind]int {
	counts := make(map[types.AlertKind]int)
	for _, ev := range s.Events {
		counts[ev.Kind]++
	}
	return counts
}

// Duration is the wall time of the run.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
