package congestion

import (
	"github.com/quic-go/qcc/internal/monotime"
	"github.com/quic-go/qcc/internal/protocol"
)

// newRenoSender implements the classic loss-based NewReno algorithm
// (RFC 5681 / RFC 9002): slow start, congestion avoidance, and a single
// congestion-window reduction per recovery episode.
type newRenoSender struct {
	window Window

	inRecovery           bool
	recoveryPacketNumber protocol.PacketNumber

	// reportSlowStart is the phase label State() reports outside recovery.
	// It is latched at the start of each growth-eligible ack from
	// cwnd <= ssthresh, before that ack's own growth runs, so the ack that
	// exits a recovery episode (cwnd == ssthresh exactly) is reported as
	// slow_start even though its own growth then pushes cwnd past ssthresh
	// via congestion-avoidance arithmetic.
	reportSlowStart bool

	ackedPackets int64
	lostPackets  int64
	totalSent    protocol.ByteCount
	totalAcked   protocol.ByteCount
	totalLost    protocol.ByteCount
}

var _ Algorithm = (*newRenoSender)(nil)

// NewNewRenoSender creates a NewReno sender with a freshly initialized
// congestion window.
func NewNewRenoSender() Algorithm {
	s := &newRenoSender{}
	s.Reset()
	return s
}

func (s *newRenoSender) OnPacketSent(_ protocol.PacketNumber, bytes protocol.ByteCount, _ monotime.Time) {
	s.totalSent += bytes
}

func (s *newRenoSender) OnPacketAcked(pn protocol.PacketNumber, bytes protocol.ByteCount, _, _ monotime.Time) {
	s.ackedPackets++
	s.totalAcked += bytes

	if s.inRecovery && pn > s.recoveryPacketNumber {
		s.inRecovery = false
	}

	if s.inRecovery {
		// Still within the episode that triggered the last reduction:
		// don't grow the window.
		return
	}

	s.reportSlowStart = s.window.Size() <= s.window.Ssthresh()

	if s.window.InSlowStart() {
		s.window.SlowStartIncrease(bytes)
	} else {
		s.window.CongestionAvoidanceIncrease(bytes)
	}
}

func (s *newRenoSender) OnPacketLost(pn protocol.PacketNumber, bytes protocol.ByteCount, _, _ monotime.Time) {
	s.lostPackets++
	s.totalLost += bytes

	if s.inRecovery && pn <= s.recoveryPacketNumber {
		// Same congestion event: reduce at most once per episode.
		return
	}

	s.inRecovery = true
	s.recoveryPacketNumber = pn
	// window.Reduce only fails for a factor outside (0, 1); ReductionFactor
	// is always in range, so the error is unreachable here.
	_ = s.window.Reduce(ReductionFactor)
}

func (s *newRenoSender) CongestionWindow() protocol.ByteCount { return s.window.Size() }
func (s *newRenoSender) Ssthresh() protocol.ByteCount         { return s.window.Ssthresh() }

func (s *newRenoSender) CanSend(bytes, inFlight protocol.ByteCount) bool {
	return s.window.CanSend(bytes, inFlight)
}

func (s *newRenoSender) SendingRate() (float64, bool) { return 0, false }

func (s *newRenoSender) InSlowStart() bool { return s.window.InSlowStart() }

func (s *newRenoSender) Reset() {
	s.window.Reset()
	s.inRecovery = false
	s.recoveryPacketNumber = protocol.InvalidPacketNumber
	s.reportSlowStart = true
	s.ackedPackets = 0
	s.lostPackets = 0
	s.totalSent = 0
	s.totalAcked = 0
	s.totalLost = 0
}

// State reports the NewReno congestion state as a string: "fast_recovery"
// while in a recovery episode, else "slow_start" / "congestion_avoidance"
// per reportSlowStart.
func (s *newRenoSender) State() string {
	switch {
	case s.inRecovery:
		return "fast_recovery"
	case s.reportSlowStart:
		return "slow_start"
	default:
		return "congestion_avoidance"
	}
}

func (s *newRenoSender) Stats() map[string]any {
	var lossRate float64
	if s.totalSent > 0 {
		lossRate = float64(s.totalLost) / float64(s.totalSent)
	}
	return map[string]any{
		"algorithm":              "NewReno",
		"congestion_window":      s.window.Size(),
		"slow_start_threshold":   s.window.Ssthresh(),
		"acked_packets":          s.ackedPackets,
		"lost_packets":           s.lostPackets,
		"total_bytes_sent":       s.totalSent,
		"total_bytes_acked":      s.totalAcked,
		"total_bytes_lost":       s.totalLost,
		"loss_rate":              lossRate,
		"in_recovery":            s.inRecovery,
		"state":                  s.State(),
	}
}

func (s *newRenoSender) Name() string { return "NewReno" }
