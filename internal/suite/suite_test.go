package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irverify/internal/domain"
)

func TestDivSmallPath(t *testing.T) {
	cases := DivSmallPath()
	require.Len(t, cases, 12)

	byName := make(map[string]domain.TestCase)
	for _, tc := range cases {
		require.NoError(t, tc.Validate(), tc.Name)
		assert.Equal(t, DivSmallPathName, tc.Suite)
		assert.Equal(t, domain.PhaseFinalCode, tc.Phase)
		assert.Equal(t, []domain.Arch{domain.ArchAMD64}, tc.Requires)
		byName[tc.Name] = tc
	}
	require.Len(t, byName, 12, "case names must be unique")

	fast := byName["testDivModLongFast"]
	require.NotNil(t, fast.Body)
	require.NotNil(t, fast.Body.Dividend)
	assert.Equal(t, Dividend, *fast.Body.Dividend)
	assert.Equal(t, domain.OpDivMod, fast.Body.Op)
	assert.Equal(t, []domain.Rule{domain.Exactly(domain.NodeX86DivModRegFast, 1)}, fast.Rules)
	assert.Len(t, fast.Params, 1)

	normal := byName["testModIntNormal"]
	require.NotNil(t, normal.Body)
	assert.Nil(t, normal.Body.Dividend)
	assert.Equal(t, []domain.Rule{domain.FailOn(domain.NodeX86ModRegFast)}, normal.Rules)
	assert.Equal(t, []domain.ArgSpec{domain.RandomEach(domain.TypeInt), domain.RandomEach(domain.TypeInt)}, normal.Params)
}

func TestLoadFile(t *testing.T) {
	cases, err := LoadFile(filepath.Join("testdata", "divconst.irsuite.yaml"))
	require.NoError(t, err)
	require.Len(t, cases, 3)

	first := cases[0]
	assert.Equal(t, "DivConst::testDivIntByParam", first.ID())
	assert.Equal(t, "testDivIntByParam", first.Method, "method defaults to the case name")
	assert.Equal(t, []domain.Arch{domain.ArchAMD64}, first.Requires)
	assert.Equal(t, []domain.Rule{
		domain.Exactly(domain.NodeX86DivRegFast, 1),
		domain.Exactly(domain.NodeX86DivReg, 0),
	}, first.Rules)

	second := cases[1]
	assert.Equal(t, "modLong", second.Method)
	assert.Equal(t, domain.FixedArg(domain.TypeLong, 1000), second.Params[0])
	assert.Equal(t, domain.ArgRandomEach, second.Params[1].Strategy, "strategy defaults to random_each")
	// counts come before fail_on
	assert.Equal(t, []domain.Rule{
		{Kind: domain.NodeX86ModReg, Cmp: domain.CmpGreaterEqual, N: 1},
		domain.FailOn(domain.NodeX86ModRegFast),
	}, second.Rules)

	third := cases[2]
	assert.Equal(t, domain.PhaseBeforeMatching, third.Phase)
	assert.Equal(t, []domain.Arch{domain.ArchAMD64, domain.ArchAArch64}, third.Requires)
}

func TestLoadFile_NamesSuiteAfterFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.irsuite.yaml")
	content := "cases:\n  - name: testDiv\n    params: [{type: int}, {type: int}]\n    counts: [DIV_I, \"1\"]\n    phase: ITER_GVN1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cases, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "extra", cases[0].Suite)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "cases: [\n"},
		{name: "no cases", content: "suite: Empty\n"},
		{name: "unknown node", content: "cases:\n  - name: a\n    counts: [X86_DIV_IMM, \"1\"]\n"},
		{name: "odd counts", content: "cases:\n  - name: a\n    counts: [DIV_I]\n"},
		{name: "bad count", content: "cases:\n  - name: a\n    counts: [DIV_I, \"lots\"]\n"},
		{name: "bad phase", content: "cases:\n  - name: a\n    phase: LATE\n    counts: [DIV_I, \"1\"]\n"},
		{name: "bad arch", content: "requires: [sparc]\ncases:\n  - name: a\n    counts: [DIV_I, \"1\"]\n"},
		{name: "no rules", content: "cases:\n  - name: a\n"},
		{name: "duplicate", content: "cases:\n  - name: a\n    counts: [DIV_I, \"1\"]\n  - name: a\n    counts: [DIV_I, \"1\"]\n"},
		{name: "params do not fit body", content: "cases:\n  - name: a\n    params: [{type: int}]\n    counts: [DIV_I, \"1\"]\n    body: {op: div, type: int}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}
