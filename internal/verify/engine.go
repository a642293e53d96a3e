// Package verify checks match results against node pattern rules and collects
// every failure of a run into one report.
package verify

import (
	"errors"
	"fmt"
	"strconv"

	"irverify/internal/domain"
)

// ErrFailures is returned by a run whose report holds at least one failure
var ErrFailures = errors.New("IR verification failed")

// Check evaluates every rule of tc against result. It never stops at the first mismatch.
func Check(tc domain.TestCase, result domain.MatchResult) []domain.Failure {
	var failures []domain.Failure
	for i, rule := range tc.Rules {
		actual, ok := result[rule.Kind]
		if !ok {
			failures = append(failures, domain.Failure{
				Kind:      domain.FailAssertionMismatch,
				TestCase:  tc.ID(),
				RuleIndex: i,
				NodeKind:  rule.Kind.String(),
				Expected:  rule.Expectation(),
				Actual:    "not counted",
				Detail:    rule.String(),
			})
			continue
		}
		if rule.Satisfied(actual) {
			continue
		}
		failures = append(failures, domain.Failure{
			Kind:      domain.FailAssertionMismatch,
			TestCase:  tc.ID(),
			RuleIndex: i,
			NodeKind:  rule.Kind.String(),
			Expected:  rule.Expectation(),
			Actual:    strconv.Itoa(actual),
			Detail:    rule.String(),
		})
	}
	return failures
}

// Timeout builds the report entry for a case whose method never reached its tier
func Timeout(tc domain.TestCase, err error) domain.Failure {
	return domain.Failure{
		Kind:      domain.FailCompilationTimeout,
		TestCase:  tc.ID(),
		RuleIndex: -1,
		Detail:    err.Error(),
	}
}

// ArchMismatch builds the warning entry for a case skipped on an incompatible target
func ArchMismatch(tc domain.TestCase, target domain.Arch, reason error) domain.Failure {
	return domain.Failure{
		Kind:      domain.FailArchitectureMismatch,
		TestCase:  tc.ID(),
		RuleIndex: -1,
		Expected:  fmt.Sprint(tc.Requires),
		Actual:    string(target),
		Detail:    reason.Error(),
	}
}

// Nondeterministic builds the entry for a case whose recaptured dump counted differently
func Nondeterministic(tc domain.TestCase, first, second domain.MatchResult) []domain.Failure {
	var failures []domain.Failure
	for _, k := range tc.Kinds() {
		if first[k] == second[k] {
			continue
		}
		failures = append(failures, domain.Failure{
			Kind:      domain.FailNondeterministicDump,
			TestCase:  tc.ID(),
			RuleIndex: -1,
			NodeKind:  k.String(),
			Expected:  strconv.Itoa(first[k]),
			Actual:    strconv.Itoa(second[k]),
			Detail:    "recaptured dump of the same compile counted differently",
		})
	}
	return failures
}
