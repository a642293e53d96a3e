package runtime

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irverify/internal/domain"
)

// connect serves rt on in-memory pipes and returns a client for it
func connect(t *testing.T, rt Runtime) (*Client, chan error) {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	done := make(chan error, 1)
	go func() {
		err := Serve(rt, reqR, respW)
		respW.Close()
		done <- err
	}()

	c, err := NewClient(respR, reqW)
	require.NoError(t, err)
	return c, done
}

func TestClient_RoundTrip(t *testing.T) {
	sim := NewSim(SimConfig{Arch: domain.ArchAArch64, C1Threshold: 1, C2Threshold: 1})
	c, done := connect(t, sim)

	assert.Equal(t, domain.ArchAArch64, c.Arch())
	require.NoError(t, c.Register("div", domain.MethodBody{Op: domain.OpDiv, Type: domain.TypeInt}))
	require.NoError(t, c.SetTargetTier("div", domain.TierC2))
	require.NoError(t, c.EnableDump("div", domain.PhaseFinalCode))

	inv, err := c.Invoke("div", ints(10, 3))
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, inv.Result)

	inv, err = c.Invoke("div", ints(10, 0))
	require.NoError(t, err)
	assert.True(t, inv.Trapped)

	tier, err := c.Tier("div")
	require.NoError(t, err)
	assert.Equal(t, domain.TierC2, tier)

	text, ok, err := c.Dump("div", domain.PhaseFinalCode)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, text, "sdiv")

	_, ok, err = c.Dump("div", domain.PhaseAfterParsing)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Deoptimize("div"))
	tier, err = c.Tier("div")
	require.NoError(t, err)
	assert.Equal(t, domain.TierInterpreter, tier)

	require.NoError(t, c.Close())
	require.NoError(t, <-done)
}

func TestClient_RemoteErrorsAreNotCrashes(t *testing.T) {
	c, done := connect(t, NewSim(DefaultSimConfig()))

	_, err := c.Invoke("missing", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRuntimeCrashed)

	// The connection stays usable after a remote error.
	assert.Equal(t, domain.ArchAMD64, c.Arch())
	require.NoError(t, c.Register("m", domain.MethodBody{Op: domain.OpMod, Type: domain.TypeLong}))

	require.NoError(t, c.Close())
	require.NoError(t, <-done)
}

func TestClient_PeerHangupIsCrash(t *testing.T) {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	go func() {
		// Drain the handshake and hang up without answering.
		go func() { _, _ = io.Copy(io.Discard, reqR) }()
		respW.Close()
	}()

	_, err := NewClient(respR, reqW)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRuntimeCrashed)
}
