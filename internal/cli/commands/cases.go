package commands

import (
	"fmt"

	"irverify/internal/config"
	"irverify/internal/discovery"
	"irverify/internal/domain"
	"irverify/internal/suite"
)

// CaseLoader collects the built-in cases and those of discovered suite files
type CaseLoader struct {
	config  *config.Config
	scanner *discovery.Scanner
	filter  *discovery.Filter
}

// NewCaseLoader creates a new CaseLoader
func NewCaseLoader(cfg *config.Config, scanner *discovery.Scanner, filter *discovery.Filter) *CaseLoader {
	return &CaseLoader{config: cfg, scanner: scanner, filter: filter}
}

// Load returns every selected case. Case IDs must be unique across suites.
func (l *CaseLoader) Load() ([]domain.TestCase, error) {
	var cases []domain.TestCase
	if !l.config.Flags.NoBuiltin {
		cases = append(cases, suite.DivSmallPath()...)
	}

	files, err := l.scanner.Scan(l.config.GetSuitePath())
	if err != nil {
		return nil, err
	}
	for _, file := range l.filter.FilterByName(files, l.config.Flags.SuiteFile) {
		loaded, err := suite.LoadFile(file)
		if err != nil {
			return nil, err
		}
		cases = append(cases, loaded...)
	}

	seen := make(map[string]bool, len(cases))
	for _, tc := range cases {
		if seen[tc.ID()] {
			return nil, fmt.Errorf("duplicate test case %s", tc.ID())
		}
		seen[tc.ID()] = true
	}

	return l.filter.FilterCases(cases, l.config.Flags.NameFilter), nil
}
