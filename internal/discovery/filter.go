package discovery

import (
	"path/filepath"
	"strings"

	"irverify/internal/domain"
)

// Filter filters suite files and test cases by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters suite files by name pattern using wildcard matching.
// Supports patterns like "*div.irsuite.yaml" or "*Div*"
func (f *Filter) FilterByName(files []string, pattern string) []string {
	if pattern == "" {
		return files
	}

	var filtered []string
	for _, file := range files {
		// Match against the filename only
		if matches(filepath.Base(file), pattern) {
			filtered = append(filtered, file)
		}
	}
	return filtered
}

// FilterCases keeps the cases whose name or suite-qualified name matches pattern
func (f *Filter) FilterCases(cases []domain.TestCase, pattern string) []domain.TestCase {
	if pattern == "" {
		return cases
	}

	var filtered []domain.TestCase
	for _, tc := range cases {
		if matches(tc.Name, pattern) || matches(tc.ID(), pattern) {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

func matches(name, pattern string) bool {
	// Try to match using filepath.Match (supports * and ? wildcards)
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// If no wildcards, do a simple contains check
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	// filepath.Match is anchored; fall back to requiring every literal part in order,
	// for patterns like "*Mod*Fast"
	hasPart := false
	rest := name
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		if strings.Contains(part, "?") {
			return false
		}
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
		hasPart = true
	}
	return hasPart
}
