package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irverify/internal/config"
	"irverify/internal/discovery"
	"irverify/internal/suite"
)

const extraSuite = `suite: Extra
cases:
  - name: testDivLongParams
    params: [{type: long}, {type: long}]
    fail_on: [X86_DIV_REG_FAST]
    body: {op: div, type: long}
`

func newLoader(t *testing.T, flags config.Flags) *CaseLoader {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "suites"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "suites", "extra.irsuite.yaml"), []byte(extraSuite), 0644))

	cfg := config.New()
	cfg.ProjectPath = dir
	cfg.ApplyFlags(flags)
	scanner := discovery.NewScanner(cfg.PathsToIgnore, config.DefaultSuitePattern)
	return NewCaseLoader(cfg, scanner, discovery.NewFilter())
}

func TestCaseLoader_Load(t *testing.T) {
	t.Run("built-in and discovered suites", func(t *testing.T) {
		cases, err := newLoader(t, config.Flags{}).Load()
		require.NoError(t, err)
		require.Len(t, cases, 13)
		assert.Equal(t, suite.DivSmallPathName, cases[0].Suite)
		assert.Equal(t, "Extra::testDivLongParams", cases[12].ID())
	})

	t.Run("without built-in suite", func(t *testing.T) {
		cases, err := newLoader(t, config.Flags{NoBuiltin: true}).Load()
		require.NoError(t, err)
		require.Len(t, cases, 1)
	})

	t.Run("name filter", func(t *testing.T) {
		cases, err := newLoader(t, config.Flags{NameFilter: "*Mod*Fast"}).Load()
		require.NoError(t, err)
		var names []string
		for _, tc := range cases {
			names = append(names, tc.Name)
		}
		assert.Equal(t, []string{"testDivModIntFast", "testModIntFast", "testDivModLongFast", "testModLongFast"}, names)
	})

	t.Run("suite file filter", func(t *testing.T) {
		cases, err := newLoader(t, config.Flags{NoBuiltin: true, SuiteFile: "extra*"}).Load()
		require.NoError(t, err)
		assert.Len(t, cases, 1)

		cases, err = newLoader(t, config.Flags{NoBuiltin: true, SuiteFile: "div*"}).Load()
		require.NoError(t, err)
		assert.Empty(t, cases)
	})

	t.Run("missing suite path", func(t *testing.T) {
		_, err := newLoader(t, config.Flags{SuitePath: "nowhere"}).Load()
		assert.Error(t, err)
	})
}

func TestCaseLoader_RejectsDuplicateIDs(t *testing.T) {
	loader := newLoader(t, config.Flags{})
	dup := filepath.Join(loader.config.ProjectPath, "suites", "again.irsuite.yaml")
	require.NoError(t, os.WriteFile(dup, []byte(extraSuite), 0644))

	_, err := loader.Load()
	assert.Error(t, err)
}
