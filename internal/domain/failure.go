package domain

// FailureKind categorizes a report entry
type FailureKind string

const (
	FailCompilationTimeout   FailureKind = "CompilationTimeout"
	FailAssertionMismatch    FailureKind = "AssertionMismatch"
	FailArchitectureMismatch FailureKind = "ArchitectureMismatch"
	FailNondeterministicDump FailureKind = "NondeterministicDump"
)

// Failure is one entry of the run report
type Failure struct {
	Kind      FailureKind `json:"kind"`
	TestCase  string      `json:"test_case"`
	RuleIndex int         `json:"rule_index"` // -1 when not tied to a rule
	NodeKind  string      `json:"node_kind,omitempty"`
	Expected  string      `json:"expected,omitempty"`
	Actual    string      `json:"actual,omitempty"`
	Detail    string      `json:"detail,omitempty"`
	Resolved  bool        `json:"resolved,omitempty"` // Toggled in the failures viewer
}

// Warning reports whether the entry is informational and does not fail the run
func (f Failure) Warning() bool {
	return f.Kind == FailArchitectureMismatch
}
