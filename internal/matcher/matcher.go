// Package matcher counts node occurrences in compiler phase dumps.
package matcher

import (
	"errors"
	"fmt"

	"irverify/internal/domain"
)

// ErrArchitectureMismatch is returned when a recognizer cannot apply to the dump's target
var ErrArchitectureMismatch = errors.New("architecture mismatch")

// ArchMismatchError names the recognizer and target that do not fit together
type ArchMismatchError struct {
	Kind   domain.NodeKind
	Want   domain.Arch
	Target domain.Arch
}

func (e *ArchMismatchError) Error() string {
	return fmt.Sprintf("%s only matches %s code, target is %s", e.Kind, e.Want, e.Target)
}

// Unwrap lets errors.Is find ErrArchitectureMismatch
func (e *ArchMismatchError) Unwrap() error {
	return ErrArchitectureMismatch
}

// Matcher counts node kinds in compiled artifacts
type Matcher struct {
	vocab map[domain.NodeKind]Recognizer
}

// New creates a Matcher with the default vocabulary
func New() *Matcher {
	return &Matcher{vocab: DefaultVocabulary()}
}

// Recognizer returns the recognizer for kind
func (m *Matcher) Recognizer(kind domain.NodeKind) (Recognizer, bool) {
	r, ok := m.vocab[kind]
	return r, ok
}

// Kinds returns every kind the vocabulary recognizes, in declaration order
func (m *Matcher) Kinds() []domain.NodeKind {
	var kinds []domain.NodeKind
	for _, k := range domain.AllNodeKinds() {
		if _, ok := m.vocab[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Validate checks that every rule of tc names a recognized kind that can appear at the case's phase.
// It does not check the target arch; see CheckArch.
func (m *Matcher) Validate(tc domain.TestCase) error {
	for i, rule := range tc.Rules {
		r, ok := m.vocab[rule.Kind]
		if !ok {
			return fmt.Errorf("%s: rule %d: no recognizer for %s", tc.ID(), i, rule.Kind)
		}
		if r.Class != tc.Phase.Class() {
			return fmt.Errorf("%s: rule %d: %s is a %s node, phase %s prints %s nodes",
				tc.ID(), i, rule.Kind, r.Class, tc.Phase, tc.Phase.Class())
		}
	}
	return nil
}

// CheckArch refuses kinds scoped to an arch other than target.
// Running them would report zero matches, which looks the same as a true negative.
func (m *Matcher) CheckArch(kinds []domain.NodeKind, target domain.Arch) error {
	for _, k := range kinds {
		r, ok := m.vocab[k]
		if !ok {
			return fmt.Errorf("no recognizer for %s", k)
		}
		if !r.AppliesTo(target) {
			return &ArchMismatchError{Kind: k, Want: r.Arch, Target: target}
		}
	}
	return nil
}

// Match counts non-overlapping occurrences of each kind in the artifact.
// Each dump line holds one instruction and counts at most once per kind.
// An empty artifact yields zero for every kind.
func (m *Matcher) Match(art domain.CompiledArtifact, kinds []domain.NodeKind) (domain.MatchResult, error) {
	if err := m.CheckArch(kinds, art.Arch); err != nil {
		return nil, err
	}

	result := make(domain.MatchResult, len(kinds))
	for _, k := range kinds {
		result[k] = 0
	}
	if art.Empty || art.Text == "" {
		return result, nil
	}

	instructions, err := Parse(art.Text)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", art.Method, art.Phase, err)
	}
	for _, ins := range instructions {
		for _, k := range kinds {
			if m.vocab[k].Matches(ins) {
				result[k]++
			}
		}
	}
	return result, nil
}
