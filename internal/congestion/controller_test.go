package congestion

import (
	"testing"

	mockcongestion "github.com/quic-go/qcc/internal/congestion/mocks"
	"github.com/quic-go/qcc/internal/monotime"
	"github.com/quic-go/qcc/internal/protocol"
	"github.com/quic-go/qcc/internal/utils"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestController_BytesInFlight(t *testing.T) {
	c := NewController(protocol.CongestionControlNewReno, &utils.RTTStats{}, nil)

	c.OnPacketSent(1, 1200, 0)
	c.OnPacketSent(2, 1200, 0.01)
	c.OnPacketSent(3, 1200, 0.02)
	require.Equal(t, protocol.ByteCount(3600), c.BytesInFlight())

	c.OnPacketAcked(1, 1200, 0, 0.1)
	require.Equal(t, protocol.ByteCount(2400), c.BytesInFlight())

	c.OnPacketLost(2, 1200, 0.01, 0.1)
	require.Equal(t, protocol.ByteCount(1200), c.BytesInFlight())

	c.OnPacketAcked(3, 1200, 0.02, 0.1)
	require.Equal(t, protocol.ByteCount(0), c.BytesInFlight())

	// Duplicate ack of an already-acked packet is a no-op.
	c.OnPacketAcked(3, 1200, 0.02, 0.2)
	require.Equal(t, protocol.ByteCount(0), c.BytesInFlight())
}

func TestController_AlgorithmSwitchPreservesLedger(t *testing.T) {
	c := NewController(protocol.CongestionControlNewReno, &utils.RTTStats{}, nil)

	c.OnPacketSent(1, 1200, 0)
	c.OnPacketSent(2, 1200, 0.01)
	c.OnPacketAcked(1, 1200, 0, 0.1)

	before := c.Stats()["sent_packets_count"]

	c.SwitchAlgorithm(protocol.CongestionControlBBR, 0.2)

	stats := c.Stats()
	require.Equal(t, "BBR", stats["algorithm"])
	require.Equal(t, before, stats["sent_packets_count"])

	history := c.History()
	require.Len(t, history, 1)
	require.Equal(t, "algorithm_switch", history[0].Event)
	require.Equal(t, "NewReno", history[0].Data["old"])
	require.Equal(t, "BBR", history[0].Data["new"])
}

func TestController_UnknownAckIsNoop(t *testing.T) {
	c := NewController(protocol.CongestionControlNewReno, &utils.RTTStats{}, nil)
	c.OnPacketAcked(99, 1200, 0, 0.1)
	require.Equal(t, protocol.ByteCount(0), c.BytesInFlight())
}

func TestController_DuplicateLossIsNoop(t *testing.T) {
	c := NewController(protocol.CongestionControlNewReno, &utils.RTTStats{}, nil)
	c.OnPacketSent(1, 1200, 0)
	c.OnPacketLost(1, 1200, 0, 0.1)
	require.Equal(t, protocol.ByteCount(0), c.BytesInFlight())

	before := c.Stats()["lost_packets_total"]
	c.OnPacketLost(1, 1200, 0, 0.2)
	require.Equal(t, before, c.Stats()["lost_packets_total"])
}

func TestController_LossAfterAckDoesNotDoubleDecrement(t *testing.T) {
	c := NewController(protocol.CongestionControlNewReno, &utils.RTTStats{}, nil)
	c.OnPacketSent(1, 1200, 0)
	c.OnPacketAcked(1, 1200, 0, 0.1)
	require.Equal(t, protocol.ByteCount(0), c.BytesInFlight())

	// Already acked: OnPacketLost marks it lost for stats purposes but must
	// not subtract bytes-in-flight a second time.
	c.OnPacketLost(1, 1200, 0, 0.2)
	require.Equal(t, protocol.ByteCount(0), c.BytesInFlight())
}

func TestController_OnAckReceivedBatchesAndConsultsLossDetector(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewController(protocol.CongestionControlNewReno, &utils.RTTStats{}, nil)
	c.OnPacketSent(1, 1200, 0)
	c.OnPacketSent(2, 1200, 0)
	c.OnPacketSent(3, 1200, 0)

	det := mockcongestion.NewMockLossDetector(ctrl)
	det.EXPECT().DetectLostPackets(gomock.Any()).Return([]protocol.PacketNumber{2})
	c.SetLossDetector(det)

	c.OnAckReceived([]protocol.PacketNumber{1, 3}, 0.1)

	require.Equal(t, protocol.ByteCount(0), c.BytesInFlight())
	require.Equal(t, 1, c.Stats()["lost_packets_total"])
}

func TestController_CanSendAndAvailableWindow(t *testing.T) {
	c := NewController(protocol.CongestionControlNewReno, &utils.RTTStats{}, nil)
	cwnd := c.algorithm.CongestionWindow()

	require.True(t, c.CanSend(1200, nil))
	require.Equal(t, cwnd, c.AvailableWindow())

	c.OnPacketSent(1, cwnd, 0)
	require.Equal(t, protocol.ByteCount(0), c.AvailableWindow())
	require.False(t, c.CanSend(1, nil))
}

func TestController_CleanupPacketHistoryRemovesOldTerminalRecords(t *testing.T) {
	c := NewController(protocol.CongestionControlNewReno, &utils.RTTStats{}, nil)
	c.OnPacketSent(1, 1200, 0)
	c.OnPacketAcked(1, 1200, 0, 0.1)

	c.CleanupPacketHistory(30)
	require.Equal(t, 1, c.Stats()["sent_packets_count"])

	c.CleanupPacketHistory(100)
	require.Equal(t, 0, c.Stats()["sent_packets_count"])
}

func TestController_CollectPeriodicStatsRespectsPeriodAndCap(t *testing.T) {
	c := NewController(protocol.CongestionControlNewReno, &utils.RTTStats{}, nil)

	c.CollectPeriodicStats(0)
	c.CollectPeriodicStats(0.5) // too soon, dropped
	require.Len(t, c.History(), 1)

	c.CollectPeriodicStats(1.0)
	require.Len(t, c.History(), 2)

	for i := 2; i < statsHistoryCap+50; i++ {
		c.CollectPeriodicStats(monotime.Time(i))
	}
	require.Len(t, c.History(), statsHistoryCap)
}

func TestController_ResetClearsLedgerAndHistory(t *testing.T) {
	c := NewController(protocol.CongestionControlNewReno, &utils.RTTStats{}, nil)
	c.OnPacketSent(1, 1200, 0)
	c.SwitchAlgorithm(protocol.CongestionControlBBR, 0.1)
	c.Reset()

	require.Equal(t, protocol.ByteCount(0), c.BytesInFlight())
	require.Empty(t, c.History())
	require.Equal(t, 0, c.Stats()["sent_packets_count"])
}

func TestController_IsInSlowStartDelegatesToAlgorithm(t *testing.T) {
	c := NewController(protocol.CongestionControlNewReno, &utils.RTTStats{}, nil)
	require.True(t, c.IsInSlowStart())
}
