package domain

import "time"

// CompiledArtifact is the phase dump of one compiled method.
// Empty is set when the phase never ran for the method.
type CompiledArtifact struct {
	Method string
	Phase  Phase
	Arch   Arch
	Tier   Tier
	Text   string
	Empty  bool
}

// MatchResult maps each requested node kind to its observed count
type MatchResult map[NodeKind]int

// Equal reports whether two results hold the same counts
func (m MatchResult) Equal(other MatchResult) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Outcome summarizes how one test case went through the harness
type Outcome struct {
	TestCase    string         `json:"test_case"`
	Method      string         `json:"method"`
	Phase       Phase          `json:"phase"`
	Tier        Tier           `json:"tier"`
	Counts      map[string]int `json:"counts,omitempty"`
	Invocations int            `json:"invocations"`
	Traps       int            `json:"traps"`
	Attempts    int            `json:"attempts"`
	EmptyDump   bool           `json:"empty_dump,omitempty"`
	Skipped     bool           `json:"skipped,omitempty"`
	Passed      bool           `json:"passed"`
	Duration    time.Duration  `json:"duration"`
}

// RunMeta contains metadata about a harness run
type RunMeta struct {
	RunID           string  `json:"run_id"`
	Arch            Arch    `json:"arch"`
	TotalTestCases  int     `json:"total_test_cases"`
	PassedTestCases int     `json:"passed_test_cases"`
	FailedTestCases int     `json:"failed_test_cases"`
	SkippedCases    int     `json:"skipped_test_cases"`
	Failures        int     `json:"failures"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Seed            uint64  `json:"seed"`
	Timestamp       string  `json:"timestamp"`
}

// RunOutput is the persisted form of a complete run
type RunOutput struct {
	Meta     RunMeta   `json:"meta"`
	Outcomes []Outcome `json:"outcomes"`
	Details  []Failure `json:"details"`
}
