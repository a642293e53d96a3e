package runtime

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irverify/internal/domain"
)

func int64p(v int64) *int64 { return &v }

func newTestSim(t *testing.T, cfg SimConfig) *Sim {
	t.Helper()
	s := NewSim(cfg)
	require.NoError(t, s.Register("divFast", domain.MethodBody{Op: domain.OpDiv, Type: domain.TypeInt, Dividend: int64p(500)}))
	require.NoError(t, s.Register("modNormal", domain.MethodBody{Op: domain.OpMod, Type: domain.TypeLong}))
	require.NoError(t, s.Register("divModFast", domain.MethodBody{Op: domain.OpDivMod, Type: domain.TypeLong, Dividend: int64p(500)}))
	return s
}

func ints(vs ...int64) []domain.Value {
	out := make([]domain.Value, len(vs))
	for i, v := range vs {
		out[i] = domain.Value{Type: domain.TypeInt, Bits: v}
	}
	return out
}

func longs(vs ...int64) []domain.Value {
	out := make([]domain.Value, len(vs))
	for i, v := range vs {
		out[i] = domain.Value{Type: domain.TypeLong, Bits: v}
	}
	return out
}

func TestSim_Execute(t *testing.T) {
	s := newTestSim(t, SimConfig{C1Threshold: 1000, C2Threshold: 1000})

	inv, err := s.Invoke("divFast", ints(7))
	require.NoError(t, err)
	assert.Equal(t, []int64{71}, inv.Result)

	inv, err = s.Invoke("modNormal", longs(-17, 5))
	require.NoError(t, err)
	assert.Equal(t, []int64{-2}, inv.Result)

	inv, err = s.Invoke("divModFast", longs(7))
	require.NoError(t, err)
	assert.Equal(t, []int64{71, 3}, inv.Result)

	t.Run("divide by zero traps without error", func(t *testing.T) {
		inv, err := s.Invoke("divFast", ints(0))
		require.NoError(t, err)
		assert.True(t, inv.Trapped)
	})

	t.Run("MIN_VALUE / -1 wraps", func(t *testing.T) {
		inv, err := s.Invoke("modNormal", longs(domain.TypeLong.Min(), -1))
		require.NoError(t, err)
		assert.Equal(t, []int64{0}, inv.Result)
	})

	t.Run("argument count checked", func(t *testing.T) {
		_, err := s.Invoke("divFast", ints(1, 2))
		assert.Error(t, err)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := s.Invoke("nope", nil)
		assert.ErrorIs(t, err, ErrUnknownMethod)
	})
}

func TestSim_TieringFollowsLatency(t *testing.T) {
	s := newTestSim(t, SimConfig{C1Threshold: 2, C2Threshold: 4, CompileLatency: time.Second})
	clock := time.Unix(0, 0)
	s.now = func() time.Time { return clock }

	for range 4 {
		_, err := s.Invoke("divFast", ints(3))
		require.NoError(t, err)
	}
	tier, err := s.Tier("divFast")
	require.NoError(t, err)
	assert.Equal(t, domain.TierInterpreter, tier, "compile queued but not installed yet")

	clock = clock.Add(time.Second)
	tier, err = s.Tier("divFast")
	require.NoError(t, err)
	assert.Equal(t, domain.TierC1Full, tier)

	_, err = s.Invoke("divFast", ints(3))
	require.NoError(t, err)
	clock = clock.Add(time.Second)
	tier, err = s.Tier("divFast")
	require.NoError(t, err)
	assert.Equal(t, domain.TierC2, tier)
}

func TestSim_ExcludedNeverCompiles(t *testing.T) {
	s := newTestSim(t, SimConfig{C1Threshold: 1, C2Threshold: 1, Exclude: []string{"divFast"}})
	for range 100 {
		_, err := s.Invoke("divFast", ints(3))
		require.NoError(t, err)
	}
	tier, err := s.Tier("divFast")
	require.NoError(t, err)
	assert.Equal(t, domain.TierInterpreter, tier)
}

func TestSim_DeoptimizeRecompilesWithNewDumps(t *testing.T) {
	s := newTestSim(t, SimConfig{C1Threshold: 1, C2Threshold: 2})
	require.NoError(t, s.EnableDump("divFast", domain.PhaseAfterParsing))
	for range 3 {
		_, err := s.Invoke("divFast", ints(3))
		require.NoError(t, err)
	}
	tier, err := s.Tier("divFast")
	require.NoError(t, err)
	require.Equal(t, domain.TierC2, tier)

	require.NoError(t, s.EnableDump("divFast", domain.PhaseFinalCode))
	require.NoError(t, s.Deoptimize("divFast"))
	tier, err = s.Tier("divFast")
	require.NoError(t, err)
	assert.Equal(t, domain.TierInterpreter, tier)

	for range 3 {
		_, err := s.Invoke("divFast", ints(3))
		require.NoError(t, err)
	}
	tier, err = s.Tier("divFast")
	require.NoError(t, err)
	assert.Equal(t, domain.TierC2, tier)

	text, ok, err := s.Dump("divFast", domain.PhaseFinalCode)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, text, "divI_rReg_fast")

	assert.ErrorIs(t, s.Deoptimize("missing"), ErrUnknownMethod)
}

func TestSim_DumpsOnlyEnabledPhasesOfC2Compiles(t *testing.T) {
	s := newTestSim(t, SimConfig{C1Threshold: 1, C2Threshold: 1})
	require.NoError(t, s.EnableDump("divFast", domain.PhaseFinalCode))
	require.NoError(t, s.EnableDump("divFast", domain.PhaseIdealLoop1))

	_, ok, err := s.Dump("divFast", domain.PhaseFinalCode)
	require.NoError(t, err)
	assert.False(t, ok, "nothing compiled yet")

	_, err = s.Invoke("divFast", ints(3))
	require.NoError(t, err)
	tier, err := s.Tier("divFast")
	require.NoError(t, err)
	require.Equal(t, domain.TierC2, tier)

	text, ok, err := s.Dump("divFast", domain.PhaseFinalCode)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, text, "<compile method='divFast' tier='4' arch='amd64'>")
	assert.Contains(t, text, "<phase name='FINAL_CODE'>")
	assert.Contains(t, text, "divI_rReg_fast")

	_, ok, err = s.Dump("divFast", domain.PhaseIdealLoop1)
	require.NoError(t, err)
	assert.False(t, ok, "loop phases never run for loop-free methods")

	_, ok, err = s.Dump("divFast", domain.PhaseMatching)
	require.NoError(t, err)
	assert.False(t, ok, "phase was not enabled")
}

func TestEmit_FastAndGuardedShapes(t *testing.T) {
	fast := strings.Join(emit(domain.MethodBody{Op: domain.OpMod, Type: domain.TypeInt, Dividend: int64p(500)}, domain.ArchAMD64, domain.PhaseFinalCode), "\n")
	assert.Contains(t, fast, "modI_rReg_fast")
	assert.NotContains(t, fast, "jne")

	guarded := strings.Join(emit(domain.MethodBody{Op: domain.OpMod, Type: domain.TypeInt}, domain.ArchAMD64, domain.PhaseFinalCode), "\n")
	assert.Contains(t, guarded, "modI_rReg ")
	assert.Contains(t, guarded, "cmp rax, 0x80000000")

	minDividend := strings.Join(emit(domain.MethodBody{Op: domain.OpDiv, Type: domain.TypeLong, Dividend: int64p(domain.TypeLong.Min())}, domain.ArchAMD64, domain.PhaseFinalCode), "\n")
	assert.NotContains(t, minDividend, "_fast", "a MIN_VALUE dividend keeps the guard")

	fused := strings.Join(emit(domain.MethodBody{Op: domain.OpDivMod, Type: domain.TypeLong}, domain.ArchAMD64, domain.PhaseBeforeMatching), "\n")
	assert.Contains(t, fused, "DivModL")

	a64 := strings.Join(emit(domain.MethodBody{Op: domain.OpDiv, Type: domain.TypeInt}, domain.ArchAArch64, domain.PhaseFinalCode), "\n")
	assert.Contains(t, a64, "sdiv")
	assert.NotContains(t, a64, "rReg")
}

func TestSim_RegisterConflicts(t *testing.T) {
	s := newTestSim(t, DefaultSimConfig())
	assert.NoError(t, s.Register("divFast", domain.MethodBody{Op: domain.OpDiv, Type: domain.TypeInt, Dividend: int64p(500)}))
	assert.Error(t, s.Register("divFast", domain.MethodBody{Op: domain.OpMod, Type: domain.TypeInt}))
}
