package verify

import (
	"cmp"
	"slices"
	"sync"

	"irverify/internal/domain"
)

// Report accumulates failures and outcomes from concurrent workers.
// Entries are only ever appended; a later failure never hides an earlier one.
type Report struct {
	mu         sync.Mutex
	failures   []domain.Failure
	outcomes   []domain.Outcome
	strictArch bool
}

// NewReport creates an empty report. With strictArch, skipped arch-specific cases fail the run.
func NewReport(strictArch bool) *Report {
	return &Report{strictArch: strictArch}
}

// Add appends failures
func (r *Report) Add(failures ...domain.Failure) {
	if len(failures) == 0 {
		return
	}
	r.mu.Lock()
	r.failures = append(r.failures, failures...)
	r.mu.Unlock()
}

// Record stores the outcome of one test case
func (r *Report) Record(o domain.Outcome) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, o)
	r.mu.Unlock()
}

// Failures returns a copy of the entries in insertion order
func (r *Report) Failures() []domain.Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.failures)
}

// Sorted returns the entries ordered by test case and rule for stable rendering
func (r *Report) Sorted() []domain.Failure {
	out := r.Failures()
	slices.SortStableFunc(out, func(a, b domain.Failure) int {
		if c := cmp.Compare(a.TestCase, b.TestCase); c != 0 {
			return c
		}
		return cmp.Compare(a.RuleIndex, b.RuleIndex)
	})
	return out
}

// Outcomes returns the recorded outcomes ordered by test case
func (r *Report) Outcomes() []domain.Outcome {
	r.mu.Lock()
	out := slices.Clone(r.outcomes)
	r.mu.Unlock()
	slices.SortFunc(out, func(a, b domain.Outcome) int {
		return cmp.Compare(a.TestCase, b.TestCase)
	})
	return out
}

// Counts reports how many entries fail the run and how many are warnings
func (r *Report) Counts() (failures, warnings int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.failures {
		if f.Warning() && !r.strictArch {
			warnings++
		} else {
			failures++
		}
	}
	return failures, warnings
}

// Failed reports whether the run must exit non-zero
func (r *Report) Failed() bool {
	n, _ := r.Counts()
	return n > 0
}
