package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"irverify/internal/config"
	"irverify/internal/domain"
	"irverify/internal/matcher"
	"irverify/internal/storage"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to the color-aware stdout
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{
		config: cfg,
		out:    color.Output,
	}
}

// PrintMetaStats reads the last run report and displays its statistics and failures
func (f *Formatter) PrintMetaStats(st storage.Storage) error {
	output, err := st.Load()
	if err != nil {
		return err
	}
	WriteReport(f.out, output)
	return nil
}

// WriteReport renders the statistics table of a run followed by its failure tree
func WriteReport(w io.Writer, output *domain.RunOutput) {
	meta := output.Meta

	// Print header
	fmt.Fprint(w, "\n")
	cyan.Fprintln(w, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(w, "║                  IR Verification Statistics                   ║")
	cyan.Fprintln(w, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)

	// Print table
	const sep = "├─────────────────────────────────┼─────────────────────────────┤"
	fmt.Fprintln(w, "┌─────────────────────────────────┬─────────────────────────────┐")
	rows := []struct {
		label string
		c     *color.Color
		value string
	}{
		{"Run", white, meta.RunID},
		{"Arch", white, string(meta.Arch)},
		{"Total Test Cases", white, fmt.Sprint(meta.TotalTestCases)},
		{"Passed Test Cases", green, fmt.Sprint(meta.PassedTestCases)},
		{"Failed Test Cases", red, fmt.Sprint(meta.FailedTestCases)},
		{"Skipped Test Cases", yellow, fmt.Sprint(meta.SkippedCases)},
		{"Failures", red, fmt.Sprint(meta.Failures)},
		{"Duration", white, fmt.Sprintf("%.2fs", meta.DurationSeconds)},
		{"Workers", white, fmt.Sprint(meta.Workers)},
		{"Seed", white, fmt.Sprint(meta.Seed)},
		{"Timestamp", white, meta.Timestamp},
	}
	for i, row := range rows {
		fmt.Fprintf(w, "│ %-31s │ ", row.label)
		row.c.Fprintf(w, "%-27s", truncate(row.value, 27))
		fmt.Fprintln(w, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(w, sep)
		}
	}
	fmt.Fprintln(w, "└─────────────────────────────────┴─────────────────────────────┘")

	// Print summary line
	fmt.Fprintln(w)
	if meta.Failures == 0 {
		green.Fprintln(w, "✓ All IR rules passed!")
	} else {
		red.Fprintf(w, "✗ %d test case(s) failed with %d failure(s)\n", meta.FailedTestCases, meta.Failures)
	}
	if len(output.Details) > 0 {
		fmt.Fprintln(w)
		writeFailureTree(w, output.Details)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// writeFailureTree prints failures grouped by suite and case
func writeFailureTree(w io.Writer, failures []domain.Failure) {
	suites := make(map[string]map[string][]domain.Failure)
	for _, fl := range failures {
		suite, name := splitID(fl.TestCase)
		if suites[suite] == nil {
			suites[suite] = make(map[string][]domain.Failure)
		}
		suites[suite][name] = append(suites[suite][name], fl)
	}

	for _, suite := range sortedKeys(suites) {
		cyan.Fprintln(w, suite)
		cases := suites[suite]
		names := sortedKeys(cases)
		for i, name := range names {
			lastCase := i == len(names)-1
			casePrefix, entryPrefix := "  |_", "  |  |_"
			if lastCase {
				casePrefix, entryPrefix = "   |_", "      |_"
			}
			fmt.Fprint(w, casePrefix)
			yellow.Fprintln(w, name)
			for _, fl := range cases[name] {
				fmt.Fprint(w, entryPrefix)
				c := red
				if fl.Warning() {
					c = yellow
				}
				c.Fprintln(w, DescribeFailure(fl))
			}
		}
	}
}

// DescribeFailure renders one report entry on a single line
func DescribeFailure(fl domain.Failure) string {
	switch fl.Kind {
	case domain.FailAssertionMismatch:
		return fmt.Sprintf("[%s] rule %d %s: expected %s, got %s", fl.Kind, fl.RuleIndex, fl.Detail, fl.Expected, fl.Actual)
	case domain.FailNondeterministicDump:
		return fmt.Sprintf("[%s] %s: first capture %s, second %s", fl.Kind, fl.NodeKind, fl.Expected, fl.Actual)
	case domain.FailArchitectureMismatch:
		return fmt.Sprintf("[%s] skipped on %s: %s", fl.Kind, fl.Actual, fl.Detail)
	}
	return fmt.Sprintf("[%s] %s", fl.Kind, fl.Detail)
}

func splitID(id string) (suite, name string) {
	if i := strings.Index(id, "::"); i >= 0 {
		return id[:i], id[i+2:]
	}
	return "(no suite)", id
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PrintCaseList prints the cases grouped by suite, optionally with their rules.
// failed is optional; cases in this set are marked with [F] in red (from last run).
func (f *Formatter) PrintCaseList(cases []domain.TestCase, showRules bool, failed map[string]struct{}) {
	WriteCaseList(f.out, cases, showRules, failed)
}

// WriteCaseList renders the case tree printed by PrintCaseList
func WriteCaseList(w io.Writer, cases []domain.TestCase, showRules bool, failed map[string]struct{}) {
	green.Fprintf(w, "Found %d test case(s):\n\n", len(cases))

	bySuite := make(map[string][]domain.TestCase)
	for _, tc := range cases {
		bySuite[tc.Suite] = append(bySuite[tc.Suite], tc)
	}
	suites := sortedKeys(bySuite)
	for si, suite := range suites {
		name := suite
		if name == "" {
			name = "(no suite)"
		}
		cyan.Fprintln(w, name)

		list := bySuite[suite]
		for i, tc := range list {
			lastCase := i == len(list)-1
			prefix, childPrefix := "├── ", "│   "
			if lastCase {
				prefix, childPrefix = "└── ", "    "
			}

			failMarker := ""
			if _, ok := failed[tc.ID()]; ok {
				failMarker = " " + red.Sprint("[F]")
			}
			fmt.Fprintf(w, "%s%s %s%s\n", prefix, yellow.Sprint(tc.Name), tc.Phase, failMarker)

			if !showRules {
				continue
			}
			for j, rule := range tc.Rules {
				rulePrefix := "├── "
				if j == len(tc.Rules)-1 {
					rulePrefix = "└── "
				}
				fmt.Fprintf(w, "%s%s%s\n", childPrefix, rulePrefix, rule)
			}
		}

		// Add spacing between suites (except for the last one)
		if si < len(suites)-1 {
			fmt.Fprintln(w)
		}
	}
}

// PrintVocabulary lists the node kinds the matcher recognizes
func (f *Formatter) PrintVocabulary(m *matcher.Matcher) {
	for _, kind := range m.Kinds() {
		r, _ := m.Recognizer(kind)
		arch := string(r.Arch)
		if arch == "" {
			arch = "any"
		}
		yellow.Fprintf(f.out, "%-20s", kind)
		fmt.Fprintf(f.out, " %-8s %-6s %s\n", arch, r.Class, r.Doc)
	}
}

// PrintDrifts warns about node counts that changed since the previous recorded run
func (f *Formatter) PrintDrifts(drifts []storage.Drift) {
	if len(drifts) == 0 {
		return
	}
	yellow.Fprintf(f.out, "⚠ %d node count(s) changed since the previous run:\n", len(drifts))
	for _, d := range drifts {
		fmt.Fprintf(f.out, "  %s %s: %d -> %d\n", d.TestCase, d.NodeKind, d.Before, d.After)
	}
}

// Warn prints a warning line
func (f *Formatter) Warn(format string, args ...any) {
	yellow.Fprintf(f.out, "⚠ "+format+"\n", args...)
}
