package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Mode selects whether a run converges templates into the tenant or removes what it created.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeDelete Mode = "delete"
)

// RunState is the run-scoped hydration state. It is created at run start, filled in by the
// connection step and by each reconciler, and discarded when the process exits.
type RunState struct {
	RunID       string
	Mode        Mode
	DryRun      bool
	Connected   bool
	TenantID    string
	Environment string
	StartedAt   time.Time
	FinishedAt  time.Time

	results map[string][]ResultRecord
	order   []string
}

// NewRunState initialises an empty state for a new run.
func NewRunState(mode Mode, dryRun bool) *RunState {
	return &RunState{
		RunID:     uuid.NewString(),
		Mode:      mode,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
		results:   make(map[string][]ResultRecord),
	}
}

// Append records results for a category, preserving first-seen category order.
func (s *RunState) Append(category string, records ...ResultRecord) {
	if s.results == nil {
		s.results = make(map[string][]ResultRecord)
	}
	if _, ok := s.results[category]; !ok {
		s.order = append(s.order, category)
		s.results[category] = nil
	}
	s.results[category] = append(s.results[category], records...)
}

// Results returns a copy of the records for one category.
func (s *RunState) Results(category string) []ResultRecord {
	return append([]ResultRecord(nil), s.results[category]...)
}

// Categories lists categories in the order they were first recorded.
func (s *RunState) Categories() []string {
	return append([]string(nil), s.order...)
}

// AllResults returns every record, grouped by category order.
func (s *RunState) AllResults() []ResultRecord {
	var all []ResultRecord
	for _, category := range s.order {
		all = append(all, s.results[category]...)
	}
	return all
}

// Summary aggregates every category.
func (s *RunState) Summary() Summary {
	return Summarize(s.AllResults())
}

// CategorySummaries returns a summary per category keyed by name.
func (s *RunState) CategorySummaries() map[string]Summary {
	out := make(map[string]Summary, len(s.results))
	for category, records := range s.results {
		out[category] = Summarize(records)
	}
	return out
}

// Failures lists failed records sorted by name for stable reporting.
func (s *RunState) Failures() []ResultRecord {
	var failed []ResultRecord
	for _, r := range s.AllResults() {
		if r.Action == ActionFailed {
			failed = append(failed, r)
		}
	}
	sort.SliceStable(failed, func(i, j int) bool { return failed[i].Name < failed[j].Name })
	return failed
}

// Finish stamps the end time.
func (s *RunState) Finish() {
	s.FinishedAt = time.Now().UTC()
}
