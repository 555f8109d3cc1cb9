// Package qlog provides structured event callbacks for the congestion
// control core: a small set of optional hooks naming congestion state
// changes, periodic metrics, and algorithm switches. QUIC framing,
// crypto, and I/O tracing live elsewhere and are out of scope here.
package qlog

import "github.com/quic-go/qcc/internal/protocol"

// CongestionState mirrors logging.CongestionState so qlog consumers don't
// need to import the logging package just to read an event's state.
type CongestionState int

const (
	CongestionStateSlowStart CongestionState = iota
	CongestionStateCongestionAvoidance
	CongestionStateFastRecovery
	CongestionStateStartup
	CongestionStateDrain
	CongestionStateProbeBw
	CongestionStateProbeRtt
)

func (s CongestionState) String() string {
	names := [...]string{
		"SlowStart", "CongestionAvoidance", "FastRecovery",
		"Startup", "Drain", "ProbeBw", "ProbeRtt",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return "Unknown"
	}
	return names[s]
}

// Metrics is the payload of an UpdatedMetrics event: a snapshot of the
// congestion-relevant numbers at one point in time.
type Metrics struct {
	MinRTT           float64
	SmoothedRTT      float64
	RTTVariance      float64
	CongestionWindow protocol.ByteCount
	BytesInFlight    protocol.ByteCount
	AvailableWindow  protocol.ByteCount
}

// ConnectionTracer is a set of optional callbacks a caller can supply to
// observe congestion control events. Any field left nil is simply never
// called, so callers subscribe only to what they need.
type ConnectionTracer struct {
	UpdatedCongestionState func(state CongestionState)
	UpdatedMetrics         func(m Metrics)
	AlgorithmSwitched      func(old, new protocol.CongestionControlAlgorithm)
}

// EmitCongestionState calls t's UpdatedCongestionState callback if set. A
// nil tracer is a safe no-op.
func (t *ConnectionTracer) EmitCongestionState(state CongestionState) {
	if t == nil || t.UpdatedCongestionState == nil {
		return
	}
	t.UpdatedCongestionState(state)
}

// EmitMetrics calls t's UpdatedMetrics callback if set. A nil tracer is a
// safe no-op.
func (t *ConnectionTracer) EmitMetrics(m Metrics) {
	if t == nil || t.UpdatedMetrics == nil {
		return
	}
	t.UpdatedMetrics(m)
}

// EmitAlgorithmSwitch calls t's AlgorithmSwitched callback if set. A nil
// tracer is a safe no-op.
func (t *ConnectionTracer) EmitAlgorithmSwitch(old, new protocol.CongestionControlAlgorithm) {
	if t == nil || t.AlgorithmSwitched == nil {
		return
	}
	t.AlgorithmSwitched(old, new)
}
