package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Comparison is the relation a count rule requires between the observed and expected values
type Comparison string

const (
	CmpEqual        Comparison = "="
	CmpNotEqual     Comparison = "!="
	CmpLess         Comparison = "<"
	CmpLessEqual    Comparison = "<="
	CmpGreater      Comparison = ">"
	CmpGreaterEqual Comparison = ">="
)

// Holds reports whether actual satisfies the comparison against expected
func (c Comparison) Holds(actual, expected int) bool {
	switch c {
	case CmpEqual:
		return actual == expected
	case CmpNotEqual:
		return actual != expected
	case CmpLess:
		return actual < expected
	case CmpLessEqual:
		return actual <= expected
	case CmpGreater:
		return actual > expected
	case CmpGreaterEqual:
		return actual >= expected
	}
	return false
}

// Rule is one node pattern assertion attached to a test case.
// A forbidden rule requires the kind to be absent; otherwise the count must satisfy Cmp N.
type Rule struct {
	Kind      NodeKind
	Forbidden bool
	Cmp       Comparison
	N         int
}

// Count builds an exact or threshold rule from a count string such as "1", ">=2" or "!=0"
func Count(kind NodeKind, count string) (Rule, error) {
	cmp, n, err := ParseCount(count)
	if err != nil {
		return Rule{}, fmt.Errorf("%s: %w", kind, err)
	}
	return Rule{Kind: kind, Cmp: cmp, N: n}, nil
}

// Exactly builds an equality rule
func Exactly(kind NodeKind, n int) Rule {
	return Rule{Kind: kind, Cmp: CmpEqual, N: n}
}

// FailOn builds a forbidden-presence rule
func FailOn(kind NodeKind) Rule {
	return Rule{Kind: kind, Forbidden: true, Cmp: CmpEqual, N: 0}
}

// ParseCount splits a count string into its comparison and bound
func ParseCount(s string) (Comparison, int, error) {
	s = strings.TrimSpace(s)
	cmp := CmpEqual
	for _, c := range []Comparison{CmpGreaterEqual, CmpLessEqual, CmpNotEqual, CmpGreater, CmpLess, CmpEqual} {
		if strings.HasPrefix(s, string(c)) {
			cmp = c
			s = strings.TrimSpace(strings.TrimPrefix(s, string(c)))
			break
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return "", 0, fmt.Errorf("invalid count %q", s)
	}
	if n < 0 {
		return "", 0, fmt.Errorf("count must not be negative: %d", n)
	}
	return cmp, n, nil
}

// Satisfied reports whether an observed count passes the rule
func (r Rule) Satisfied(actual int) bool {
	if r.Forbidden {
		return actual == 0
	}
	return r.Cmp.Holds(actual, r.N)
}

// Expectation renders the rule's requirement for reports
func (r Rule) Expectation() string {
	if r.Forbidden {
		return "absent"
	}
	if r.Cmp == CmpEqual {
		return strconv.Itoa(r.N)
	}
	return string(r.Cmp) + strconv.Itoa(r.N)
}

func (r Rule) String() string {
	if r.Forbidden {
		return "failOn " + r.Kind.String()
	}
	return fmt.Sprintf("counts %s %s", r.Kind, r.Expectation())
}
