package suite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"irverify/internal/domain"
)

// File is the YAML form of a suite
type File struct {
	Suite    string     `yaml:"suite"`
	Phase    string     `yaml:"phase"`
	Requires []string   `yaml:"requires"`
	Cases    []CaseFile `yaml:"cases"`
}

// CaseFile is the YAML form of one test case.
// Counts is a flat list of node/count pairs, e.g. [X86_DIV_REG_FAST, "1", DIV_I, ">=1"].
type CaseFile struct {
	Name     string             `yaml:"name"`
	Method   string             `yaml:"method"`
	Phase    string             `yaml:"phase"`
	Params   []domain.ArgSpec   `yaml:"params"`
	Counts   []string           `yaml:"counts"`
	FailOn   []string           `yaml:"fail_on"`
	Requires []string           `yaml:"requires"`
	Body     *domain.MethodBody `yaml:"body"`
}

// LoadFile reads and converts one suite file
func LoadFile(path string) ([]domain.TestCase, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading suite %s: %w", path, err)
	}
	cases, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	// Suites without a name are named after their file
	for i := range cases {
		if cases[i].Suite == "" {
			cases[i].Suite = strings.TrimSuffix(filepath.Base(path), ".irsuite.yaml")
		}
	}
	return cases, nil
}

// Parse converts a YAML document into test cases
func Parse(content []byte) ([]domain.TestCase, error) {
	var f File
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("invalid suite yaml: %w", err)
	}
	if len(f.Cases) == 0 {
		return nil, errors.New("suite declares no cases")
	}

	suiteRequires, err := parseArchs(f.Requires)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	cases := make([]domain.TestCase, 0, len(f.Cases))
	for _, cf := range f.Cases {
		tc, err := cf.toTestCase(f.Suite, f.Phase, suiteRequires)
		if err != nil {
			return nil, err
		}
		if seen[tc.Name] {
			return nil, fmt.Errorf("duplicate case %q", tc.Name)
		}
		seen[tc.Name] = true
		cases = append(cases, tc)
	}
	return cases, nil
}

func (cf CaseFile) toTestCase(suite, defaultPhase string, suiteRequires []domain.Arch) (domain.TestCase, error) {
	tc := domain.TestCase{
		Name:     cf.Name,
		Suite:    suite,
		Method:   cf.Method,
		Params:   cf.Params,
		Requires: suiteRequires,
		Body:     cf.Body,
	}
	if tc.Method == "" {
		tc.Method = cf.Name
	}

	phase := cf.Phase
	if phase == "" {
		phase = defaultPhase
	}
	if phase == "" {
		phase = string(domain.PhaseFinalCode)
	}
	p, err := domain.ParsePhase(phase)
	if err != nil {
		return tc, fmt.Errorf("case %q: %w", cf.Name, err)
	}
	tc.Phase = p

	if len(cf.Requires) > 0 {
		if tc.Requires, err = parseArchs(cf.Requires); err != nil {
			return tc, fmt.Errorf("case %q: %w", cf.Name, err)
		}
	}

	for i := range tc.Params {
		if tc.Params[i].Strategy == "" {
			tc.Params[i].Strategy = domain.ArgRandomEach
		}
	}

	if len(cf.Counts)%2 != 0 {
		return tc, fmt.Errorf("case %q: counts must be node/count pairs", cf.Name)
	}
	for i := 0; i < len(cf.Counts); i += 2 {
		kind, err := domain.ParseNodeKind(cf.Counts[i])
		if err != nil {
			return tc, fmt.Errorf("case %q: %w", cf.Name, err)
		}
		rule, err := domain.Count(kind, cf.Counts[i+1])
		if err != nil {
			return tc, fmt.Errorf("case %q: %w", cf.Name, err)
		}
		tc.Rules = append(tc.Rules, rule)
	}
	for _, name := range cf.FailOn {
		kind, err := domain.ParseNodeKind(name)
		if err != nil {
			return tc, fmt.Errorf("case %q: %w", cf.Name, err)
		}
		tc.Rules = append(tc.Rules, domain.FailOn(kind))
	}

	if err := tc.Validate(); err != nil {
		return tc, err
	}
	return tc, nil
}

func parseArchs(names []string) ([]domain.Arch, error) {
	var archs []domain.Arch
	for _, n := range names {
		a, err := domain.ParseArch(n)
		if err != nil {
			return nil, err
		}
		archs = append(archs, a)
	}
	return archs, nil
}
