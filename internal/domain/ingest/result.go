package ingest

import (
	"time"
)

// Outcome is the result of applying one ingestion step
type Outcome string

const (
	// OutcomeApplied means the payload was reconciled into the store
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the delivery was already handled and skipped
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeDeferred means a required parent entity is missing; the caller
	// is responsible for scheduling the retry
	OutcomeDeferred Outcome = "deferred"
	// OutcomeAbandoned means the retry budget is exhausted
	OutcomeAbandoned Outcome = "abandoned"
)

// ApplyResult is the explicit result of one ingestion step. Deferred results
// carry the reason and the attempt count so the caller can schedule them.
type ApplyResult struct {
	Outcome Outcome
	Reason  string
	Attempt int
}

// Applied returns an applied result
func Applied() ApplyResult {
	return ApplyResult{Outcome: OutcomeApplied}
}

// Duplicate returns a duplicate (short-circuited) result
func Duplicate() ApplyResult {
	return ApplyResult{Outcome: OutcomeDuplicate}
}

// Deferred returns a deferred result with scheduling context
func Deferred(reason string, attempt int) ApplyResult {
	return ApplyResult{Outcome: OutcomeDeferred, Reason: reason, Attempt: attempt}
}

// Abandoned returns an abandoned result
func Abandoned(reason string, attempt int) ApplyResult {
	return ApplyResult{Outcome: OutcomeAbandoned, Reason: reason, Attempt: attempt}
}

// MutatedSet collects the platform IDs that were actually created or changed
// by a reconciliation pass, plus the calendar dates they affect. Unchanged
// records never enter the set, so re-delivering an identical payload drives
// no downstream recomputation.
type MutatedSet struct {
	ids   map[string]struct{}
	dates map[time.Time]struct{}
}

// NewMutatedSet creates an empty mutated set
func NewMutatedSet() *MutatedSet {
	return &MutatedSet{
		ids:   make(map[string]struct{}),
		dates: make(map[time.Time]struct{}),
	}
}

// Add records a mutated platform ID
func (m *MutatedSet) Add(platformID string) {
	m.ids[platformID] = struct{}{}
}

// AddDate records an affected calendar date (normalized to UTC midnight)
func (m *MutatedSet) AddDate(t time.Time) {
	if t.IsZero() {
		return
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	m.dates[day] = struct{}{}
}

// Merge folds another set into this one
func (m *MutatedSet) Merge(other *MutatedSet) {
	if other == nil {
		return
	}
	for id := range other.ids {
		m.ids[id] = struct{}{}
	}
	for d := range other.dates {
		m.dates[d] = struct{}{}
	}
}

// Contains reports whether the platform ID was mutated
func (m *MutatedSet) Contains(platformID string) bool {
	_, ok := m.ids[platformID]
	return ok
}

// Empty reports whether nothing was mutated
func (m *MutatedSet) Empty() bool {
	return len(m.ids) == 0
}

// Len returns the number of mutated IDs
func (m *MutatedSet) Len() int {
	return len(m.ids)
}

// Dates returns the affected calendar dates
func (m *MutatedSet) Dates() []time.Time {
	out := make([]time.Time, 0, len(m.dates))
	for d := range m.dates {
		out = append(out, d)
	}
	return out
}
