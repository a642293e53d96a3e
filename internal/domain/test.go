package domain

import (
	"errors"
	"fmt"
	"slices"
)

// Op is the arithmetic a method under test performs
type Op string

const (
	OpDiv    Op = "div"
	OpMod    Op = "mod"
	OpDivMod Op = "divmod"
)

// MethodBody describes the shape of a method under test.
// Runtimes that compile methods themselves (the simulator) use it to register the method;
// external runtimes already know their methods and ignore it.
type MethodBody struct {
	Op   Op        `json:"op" yaml:"op"`
	Type ValueType `json:"type" yaml:"type"`
	// Dividend is a compile-time constant when set; otherwise the first parameter is the dividend.
	Dividend *int64 `json:"dividend,omitempty" yaml:"dividend,omitempty"`
}

// Params returns the parameter list the body expects
func (b MethodBody) Params() int {
	if b.Dividend != nil {
		return 1
	}
	return 2
}

// TestCase identifies one method under test together with its inputs and rules
type TestCase struct {
	Name     string      // Unique test case identifier
	Suite    string      // Suite the case was declared in
	Method   string      // Runtime method to compile
	Params   []ArgSpec   // One entry per method parameter
	Phase    Phase       // Compilation phase to inspect
	Rules    []Rule      // Node pattern rules checked against the phase dump
	Requires []Arch      // Targets the case may run on; empty means any
	Body     *MethodBody // Optional method description
}

// ID returns the suite-qualified name
func (tc TestCase) ID() string {
	if tc.Suite == "" {
		return tc.Name
	}
	return tc.Suite + "::" + tc.Name
}

// Supports reports whether the case may run on arch
func (tc TestCase) Supports(arch Arch) bool {
	return len(tc.Requires) == 0 || slices.Contains(tc.Requires, arch)
}

// Kinds returns the distinct node kinds referenced by the rules
func (tc TestCase) Kinds() []NodeKind {
	var kinds []NodeKind
	for _, r := range tc.Rules {
		if !slices.Contains(kinds, r.Kind) {
			kinds = append(kinds, r.Kind)
		}
	}
	return kinds
}

// Validate checks structural invariants that do not depend on the matcher vocabulary
func (tc TestCase) Validate() error {
	if tc.Name == "" {
		return errors.New("test case has no name")
	}
	if tc.Method == "" {
		return fmt.Errorf("%s: no method", tc.ID())
	}
	if _, err := ParsePhase(string(tc.Phase)); err != nil {
		return fmt.Errorf("%s: %w", tc.ID(), err)
	}
	if len(tc.Rules) == 0 {
		return fmt.Errorf("%s: no IR rules", tc.ID())
	}
	for i, p := range tc.Params {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: parameter %d: %w", tc.ID(), i, err)
		}
	}
	if tc.Body != nil {
		if len(tc.Params) != tc.Body.Params() {
			return fmt.Errorf("%s: method takes %d parameter(s), %d declared", tc.ID(), tc.Body.Params(), len(tc.Params))
		}
		if !tc.Body.Type.Valid() {
			return fmt.Errorf("%s: unsupported method type %q", tc.ID(), tc.Body.Type)
		}
		switch tc.Body.Op {
		case OpDiv, OpMod, OpDivMod:
		default:
			return fmt.Errorf("%s: unknown op %q", tc.ID(), tc.Body.Op)
		}
	}
	return nil
}
