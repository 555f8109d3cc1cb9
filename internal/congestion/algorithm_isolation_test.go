package congestion

import (
	"testing"

	"github.com/quic-go/qcc/internal/protocol"
	"github.com/stretchr/testify/require"
)

// TestAlgorithmIsolation verifies that two independently constructed
// algorithm instances never share mutable state: driving one must leave
// the other exactly as freshly constructed.
func TestAlgorithmIsolation(t *testing.T) {
	constructors := []struct {
		name string
		new  func() Algorithm
	}{
		{"NewReno", NewNewRenoSender},
		{"BBR", NewBBRSender},
	}

	for _, c := range constructors {
		t.Run(c.name, func(t *testing.T) {
			baseline := c.new()
			driven := c.new()

			driven.OnPacketSent(1, 1200, 0)
			driven.OnPacketAcked(1, 1200, 0, 0.1)
			driven.OnPacketSent(2, 1200, 0.1)
			driven.OnPacketLost(2, 1200, 0.1, 0.2)

			fresh := c.new()
			require.Equal(t, fresh.CongestionWindow(), baseline.CongestionWindow())
			require.Equal(t, fresh.Ssthresh(), baseline.Ssthresh())
			require.NotEqual(t, driven.CongestionWindow(), protocol.ByteCount(0))
		})
	}
}

// TestAlgorithmSwapDoesNotLeakState drives a NewReno sender into recovery,
// then constructs an unrelated BBR sender and checks it starts from its own
// clean initial state rather than anything derived from the NewReno run.
func TestAlgorithmSwapDoesNotLeakState(t *testing.T) {
	reno := NewNewRenoSender()
	reno.OnPacketSent(1, 1200, 0)
	reno.OnPacketLost(1, 1200, 0, 0.1)
	require.True(t, reno.(*newRenoSender).inRecovery)

	bbr := NewBBRSender().(*bbrSender)
	require.Equal(t, bbrStateStartup, bbr.state)
	require.Equal(t, InitialWindow, bbr.CongestionWindow())
	require.Equal(t, float64(0), bbr.maxBandwidth)
}

// TestControllerSwitchDoesNotTransferWindowState exercises the controller's
// switch path directly: the new algorithm must start from its own initial
// window, not the prior algorithm's reduced one.
func TestControllerSwitchDoesNotTransferWindowState(t *testing.T) {
	c := NewController(protocol.CongestionControlNewReno, nil, nil)
	c.OnPacketSent(1, 1200, 0)
	c.OnPacketLost(1, 1200, 0, 0.1)
	require.Less(t, c.algorithm.CongestionWindow(), InitialWindow)

	c.SwitchAlgorithm(protocol.CongestionControlBBR, 0.2)
	require.Equal(t, InitialWindow, c.algorithm.CongestionWindow())
}
