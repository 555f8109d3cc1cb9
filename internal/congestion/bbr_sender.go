package congestion

import (
	"math"

	"github.com/quic-go/qcc/internal/monotime"
	"github.com/quic-go/qcc/internal/protocol"
)

// bbrState is one of BBR's four operating states.
type bbrState int

const (
	bbrStateStartup bbrState = iota
	bbrStateDrain
	bbrStateProbeBw
	bbrStateProbeRtt
)

func (s bbrState) String() string {
	switch s {
	case bbrStateStartup:
		return "Startup"
	case bbrStateDrain:
		return "Drain"
	case bbrStateProbeBw:
		return "ProbeBw"
	case bbrStateProbeRtt:
		return "ProbeRtt"
	default:
		return "Unknown"
	}
}

// Gain constants and schedule for BBR v1's state machine.
const (
	bbrHighGain              = 2.885
	bbrStartupGrowthTarget   = 1.25
	bbrGainCycleLength       = 8
	bbrProbeRTTDuration      = 0.200 // seconds
	bbrMinPipeCwndPackets    = 4
	bbrBandwidthRingCapacity = 10
	bbrCycleDuration         = 1.0  // seconds
	bbrProbeEntryInterval    = 10.0 // seconds
)

var bbrGainCycle = [bbrGainCycleLength]float64{1.25, 0.75, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0}

// bandwidthRing is a fixed-capacity ring buffer of bandwidth samples
// (bytes/s), used to compute a windowed maximum.
type bandwidthRing struct {
	samples [bbrBandwidthRingCapacity]float64
	len     int
	next    int
}

func (r *bandwidthRing) add(sample float64) {
	r.samples[r.next] = sample
	r.next = (r.next + 1) % bbrBandwidthRingCapacity
	if r.len < bbrBandwidthRingCapacity {
		r.len++
	}
}

func (r *bandwidthRing) max() float64 {
	var m float64
	for i := 0; i < r.len; i++ {
		if r.samples[i] > m {
			m = r.samples[i]
		}
	}
	return m
}

// oldestOfLastThree returns the oldest of the three most recent samples,
// or false when fewer than three have been recorded. Used only by the
// Startup-exit heuristic.
func (r *bandwidthRing) oldestOfLastThree() (float64, bool) {
	n := r.len
	if n < 3 {
		return 0, false
	}
	// index of the sample 3 inserts ago.
	idx := (r.next - 3 + bbrBandwidthRingCapacity) % bbrBandwidthRingCapacity
	return r.samples[idx], true
}

func (r *bandwidthRing) newest() (float64, bool) {
	if r.len == 0 {
		return 0, false
	}
	idx := (r.next - 1 + bbrBandwidthRingCapacity) % bbrBandwidthRingCapacity
	return r.samples[idx], true
}

// bbrSender implements BBR v1: a model-based algorithm that cycles through
// Startup, Drain, ProbeBw, and ProbeRtt while sampling delivery rate and
// minimum RTT.
type bbrSender struct {
	window Window

	state bbrState

	bandwidthSamples bandwidthRing
	maxBandwidth     float64 // bytes/s
	minRTT           float64 // seconds; 0 means unset
	rtProp           float64 // seconds; +Inf means unset

	pacingRate float64 // bytes/s

	cycleIndex       int
	cycleStart       monotime.Time
	probeBwEnteredAt monotime.Time
	priorCwnd        protocol.ByteCount
	probeRTTStart    monotime.Time
	haveCycleStart   bool
	haveProbeRTT     bool

	ackedPackets int64
	lostPackets  int64
	totalSent    protocol.ByteCount
	totalAcked   protocol.ByteCount
	totalLost    protocol.ByteCount
}

var _ Algorithm = (*bbrSender)(nil)

// NewBBRSender creates a BBR sender starting in Startup with an
// unconditioned bandwidth/RTT model.
func NewBBRSender() Algorithm {
	s := &bbrSender{}
	s.Reset()
	return s
}

func (s *bbrSender) OnPacketSent(_ protocol.PacketNumber, bytes protocol.ByteCount, _ monotime.Time) {
	s.totalSent += bytes
}

func (s *bbrSender) OnPacketAcked(_ protocol.PacketNumber, bytes protocol.ByteCount, sentTime, ackTime monotime.Time) {
	s.ackedPackets++
	s.totalAcked += bytes

	rtt := ackTime.Sub(sentTime)
	if rtt > 0 {
		s.sampleBandwidth(float64(bytes), rtt)
		s.updateRTT(rtt)
	}

	s.updateState(ackTime)
	s.updateCwnd()
	s.updatePacingRate()
}

func (s *bbrSender) OnPacketLost(_ protocol.PacketNumber, bytes protocol.ByteCount, _, _ monotime.Time) {
	// BBR counts loss only for statistics; it never reduces cwnd on loss.
	s.lostPackets++
	s.totalLost += bytes
}

func (s *bbrSender) sampleBandwidth(bytes, rtt float64) {
	sample := bytes / rtt
	s.bandwidthSamples.add(sample)
	s.maxBandwidth = s.bandwidthSamples.max()
}

func (s *bbrSender) updateRTT(rtt float64) {
	if s.minRTT == 0 || rtt < s.minRTT {
		s.minRTT = rtt
	}
	if rtt < s.rtProp {
		s.rtProp = rtt
	}
}

func (s *bbrSender) bandwidthEstimate() float64 { return s.maxBandwidth }

func (s *bbrSender) targetCwnd(gain float64) protocol.ByteCount {
	bw := s.bandwidthEstimate()
	if bw == 0 || math.IsInf(s.rtProp, 1) {
		return 10 * MaxDatagramSize
	}
	bdp := bw * s.rtProp
	target := bdp * gain
	min := float64(4 * MaxDatagramSize)
	if target < min {
		target = min
	}
	return protocol.ByteCount(target)
}

func (s *bbrSender) cwndGain() float64 {
	switch s.state {
	case bbrStateStartup:
		return bbrHighGain
	case bbrStateDrain:
		return 1 / bbrHighGain
	case bbrStateProbeBw:
		return bbrGainCycle[s.cycleIndex]
	default: // ProbeRtt
		return 1.0
	}
}

func (s *bbrSender) pacingGain() float64 { return s.cwndGain() }

func (s *bbrSender) updateState(now monotime.Time) {
	switch s.state {
	case bbrStateStartup:
		newest, okNewest := s.bandwidthSamples.newest()
		oldest, okOldest := s.bandwidthSamples.oldestOfLastThree()
		if okNewest && okOldest && oldest > 0 && newest/oldest < bbrStartupGrowthTarget {
			s.state = bbrStateDrain
		}
	case bbrStateDrain:
		if s.window.Size() <= s.targetCwnd(1.0) {
			s.state = bbrStateProbeBw
			s.cycleStart = now
			s.haveCycleStart = true
			s.probeBwEnteredAt = now
		}
	case bbrStateProbeBw:
		if !s.haveCycleStart {
			s.cycleStart = now
			s.haveCycleStart = true
			s.probeBwEnteredAt = now
		}
		if now.Sub(s.cycleStart) >= bbrCycleDuration {
			s.cycleIndex = (s.cycleIndex + 1) % bbrGainCycleLength
			s.cycleStart = now
		}
		// The probe-rtt entry timer runs from when ProbeBw was last
		// entered, independent of the gain-cycle rotation above: tying
		// both to cycleStart would reset this check every second and it
		// would never fire.
		if now.Sub(s.probeBwEnteredAt) > bbrProbeEntryInterval {
			s.state = bbrStateProbeRtt
			s.priorCwnd = s.window.Size()
			s.probeRTTStart = now
			s.haveProbeRTT = true
		}
	case bbrStateProbeRtt:
		if !s.haveProbeRTT {
			s.probeRTTStart = now
			s.haveProbeRTT = true
		}
		if now.Sub(s.probeRTTStart) >= bbrProbeRTTDuration {
			s.window.SetSize(s.priorCwnd)
			s.state = bbrStateProbeBw
			s.cycleStart = now
			s.haveCycleStart = true
			s.probeBwEnteredAt = now
		}
	}
}

func (s *bbrSender) updateCwnd() {
	if s.state == bbrStateProbeRtt {
		target := s.targetCwnd(1.0)
		probe := protocol.ByteCount(float64(target) * 0.5)
		min := protocol.ByteCount(bbrMinPipeCwndPackets) * MaxDatagramSize
		if probe < min {
			probe = min
		}
		s.window.SetSize(probe)
		return
	}
	s.window.SetSize(s.targetCwnd(s.cwndGain()))
}

func (s *bbrSender) updatePacingRate() {
	bw := s.bandwidthEstimate()
	if bw <= 0 {
		s.pacingRate = 0
		return
	}
	s.pacingRate = bw * s.pacingGain()
}

func (s *bbrSender) CongestionWindow() protocol.ByteCount { return s.window.Size() }

// Ssthresh is effectively unbounded for BBR, which has no slow-start
// threshold concept of its own.
func (s *bbrSender) Ssthresh() protocol.ByteCount { return protocol.MaxByteCount }

func (s *bbrSender) CanSend(bytes, inFlight protocol.ByteCount) bool {
	return s.window.CanSend(bytes, inFlight)
}

func (s *bbrSender) SendingRate() (float64, bool) {
	if s.pacingRate > 0 {
		return s.pacingRate, true
	}
	return 0, false
}

func (s *bbrSender) InSlowStart() bool { return s.state == bbrStateStartup }

func (s *bbrSender) Reset() {
	s.window.Reset()
	s.state = bbrStateStartup
	s.bandwidthSamples = bandwidthRing{}
	s.maxBandwidth = 0
	s.minRTT = 0
	s.rtProp = math.Inf(1)
	s.pacingRate = 0
	s.cycleIndex = 0
	s.cycleStart = monotime.Zero
	s.probeBwEnteredAt = monotime.Zero
	s.priorCwnd = 0
	s.probeRTTStart = monotime.Zero
	s.haveCycleStart = false
	s.haveProbeRTT = false
	s.ackedPackets = 0
	s.lostPackets = 0
	s.totalSent = 0
	s.totalAcked = 0
	s.totalLost = 0
}

func (s *bbrSender) reportedMinRTT() float64 {
	return s.minRTT
}

func (s *bbrSender) reportedRTProp() float64 {
	if math.IsInf(s.rtProp, 1) {
		return 0
	}
	return s.rtProp
}

func (s *bbrSender) Stats() map[string]any {
	var lossRate float64
	if total := s.ackedPackets + s.lostPackets; total > 0 {
		lossRate = float64(s.lostPackets) / float64(total)
	}
	return map[string]any{
		"algorithm":              "BBR",
		"congestion_window":      s.window.Size(),
		"slow_start_threshold":   s.Ssthresh(),
		"acked_packets":          s.ackedPackets,
		"lost_packets":           s.lostPackets,
		"total_bytes_sent":       s.totalSent,
		"total_bytes_acked":      s.totalAcked,
		"total_bytes_lost":       s.totalLost,
		"loss_rate":              lossRate,
		"state":                  s.state.String(),
		"bandwidth_estimate":     s.bandwidthEstimate(),
		"max_bandwidth":          s.maxBandwidth,
		"min_rtt":                s.reportedMinRTT(),
		"rt_prop":                s.reportedRTProp(),
		"pacing_rate":            s.pacingRate,
		"cycle_index":            s.cycleIndex,
	}
}

func (s *bbrSender) Name() string { return "BBR" }
