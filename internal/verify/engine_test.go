package verify

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irverify/internal/domain"
)

func divModCase() domain.TestCase {
	return domain.TestCase{
		Name:   "testDivModIntFast",
		Suite:  "TestDivSmallPath",
		Method: "testDivModIntFast",
		Phase:  domain.PhaseFinalCode,
		Rules: []domain.Rule{
			domain.Exactly(domain.NodeX86DivModRegFast, 1),
			domain.FailOn(domain.NodeX86DivModReg),
			{Kind: domain.NodeX86ModRegFast, Cmp: domain.CmpLessEqual, N: 0},
		},
	}
}

func TestCheck_AllRulesPass(t *testing.T) {
	failures := Check(divModCase(), domain.MatchResult{
		domain.NodeX86DivModRegFast: 1,
		domain.NodeX86DivModReg:     0,
		domain.NodeX86ModRegFast:    0,
	})
	assert.Empty(t, failures)
}

func TestCheck_ReportsEveryMismatch(t *testing.T) {
	failures := Check(divModCase(), domain.MatchResult{
		domain.NodeX86DivModRegFast: 0,
		domain.NodeX86DivModReg:     1,
		domain.NodeX86ModRegFast:    2,
	})
	require.Len(t, failures, 3)

	assert.Equal(t, domain.FailAssertionMismatch, failures[0].Kind)
	assert.Equal(t, "TestDivSmallPath::testDivModIntFast", failures[0].TestCase)
	assert.Equal(t, "X86_DIVMOD_REG_FAST", failures[0].NodeKind)
	assert.Equal(t, "1", failures[0].Expected)
	assert.Equal(t, "0", failures[0].Actual)

	assert.Equal(t, "absent", failures[1].Expected)
	assert.Equal(t, "1", failures[1].Actual)

	assert.Equal(t, "<=0", failures[2].Expected)
	assert.Equal(t, 2, failures[2].RuleIndex)
}

func TestCheck_UncountedKind(t *testing.T) {
	failures := Check(divModCase(), domain.MatchResult{domain.NodeX86DivModRegFast: 1})
	require.Len(t, failures, 2)
	assert.Equal(t, "not counted", failures[0].Actual)
}

func TestNondeterministic(t *testing.T) {
	tc := divModCase()
	same := domain.MatchResult{domain.NodeX86DivModRegFast: 1}
	assert.Empty(t, Nondeterministic(tc, same, same))

	failures := Nondeterministic(tc, same, domain.MatchResult{domain.NodeX86DivModRegFast: 2})
	require.Len(t, failures, 1)
	assert.Equal(t, domain.FailNondeterministicDump, failures[0].Kind)
}

func TestReport_ConcurrentAppend(t *testing.T) {
	r := NewReport(false)
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				r.Add(domain.Failure{Kind: domain.FailAssertionMismatch, TestCase: fmt.Sprintf("case-%d", w), RuleIndex: i})
			}
			r.Record(domain.Outcome{TestCase: fmt.Sprintf("case-%d", w)})
		}()
	}
	wg.Wait()

	assert.Len(t, r.Failures(), 400)
	assert.Len(t, r.Outcomes(), 8)

	sorted := r.Sorted()
	assert.Equal(t, "case-0", sorted[0].TestCase)
	assert.Equal(t, 0, sorted[0].RuleIndex)
	assert.Equal(t, "case-7", sorted[399].TestCase)
	assert.Equal(t, 49, sorted[399].RuleIndex)
}

func TestReport_WarningsAndStrictArch(t *testing.T) {
	tc := divModCase()
	skip := ArchMismatch(tc, domain.ArchAArch64, errors.New("X86_DIVMOD_REG_FAST only matches amd64 code"))

	lenient := NewReport(false)
	lenient.Add(skip)
	failures, warnings := lenient.Counts()
	assert.Equal(t, 0, failures)
	assert.Equal(t, 1, warnings)
	assert.False(t, lenient.Failed())

	strict := NewReport(true)
	strict.Add(skip)
	assert.True(t, strict.Failed())

	lenient.Add(Timeout(tc, errors.New("never compiled")))
	assert.True(t, lenient.Failed())
	assert.Len(t, lenient.Failures(), 2, "earlier entries are kept")
}
