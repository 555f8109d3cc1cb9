package congestion

import (
	"github.com/quic-go/qcc/internal/monotime"
	"github.com/quic-go/qcc/internal/protocol"
	"github.com/quic-go/qcc/internal/utils"
	"github.com/quic-go/qcc/qlog"
)

// ledgerRetention bounds how long a terminal (acked or lost) packet record
// is kept before CleanupPacketHistory sweeps it away.
const ledgerRetention = 60.0 // seconds

// statsPeriod is the minimum spacing between entries CollectPeriodicStats
// appends to the history.
const statsPeriod = 1.0 // seconds

// statsHistoryCap bounds the number of periodic snapshots retained.
const statsHistoryCap = 300

// packetRecord is the ledger entry for one sent packet.
type packetRecord struct {
	size     protocol.ByteCount
	sentTime monotime.Time
	acked    bool
	lost     bool
}

func (r *packetRecord) terminal() bool { return r.acked || r.lost }

// LossDetector is the external collaborator that turns "it is now time T"
// into a set of packet numbers judged lost. It is optional: a controller
// with none attached relies entirely on explicit OnPacketLost/BatchLoss
// calls from the embedder.
type LossDetector interface {
	DetectLostPackets(now monotime.Time) []protocol.PacketNumber
}

// RTTEstimator is the external collaborator the controller feeds sampled
// RTTs into. *utils.RTTStats satisfies it.
type RTTEstimator interface {
	UpdateRTT(sample float64)
	Stats() map[string]float64
	Reset()
}

// HistoryEntry records a discrete controller-level event, such as an
// algorithm hot-swap, or a periodic stats snapshot.
type HistoryEntry struct {
	Event     string
	Timestamp monotime.Time
	Data      map[string]any
}

// Controller owns the packet ledger and bytes-in-flight counter, drives
// RTT estimation, dispatches normalized events to the active Algorithm,
// and answers admission queries.
type Controller struct {
	ledger        map[protocol.PacketNumber]*packetRecord
	bytesInFlight protocol.ByteCount

	algorithm    Algorithm
	algorithmKind protocol.CongestionControlAlgorithm
	rtt          RTTEstimator
	lossDetector LossDetector
	logger       utils.Logger
	tracer       *qlog.ConnectionTracer

	connStats utils.ConnectionStats

	history      []HistoryEntry
	lastStatsAt  monotime.Time
	haveLastStat bool
}

// NewController returns a controller running the given algorithm kind,
// with no loss detector attached (the embedder must report loss
// explicitly via OnPacketLost/BatchLoss, or attach one with
// SetLossDetector).
func NewController(kind protocol.CongestionControlAlgorithm, rtt RTTEstimator, logger utils.Logger) *Controller {
	if logger == nil {
		logger = utils.NopLogger
	}
	c := &Controller{
		ledger: make(map[protocol.PacketNumber]*packetRecord),
		rtt:    rtt,
		logger: logger,
	}
	c.algorithm = newAlgorithm(kind)
	c.algorithmKind = kind
	return c
}

func newAlgorithm(kind protocol.CongestionControlAlgorithm) Algorithm {
	switch kind {
	case protocol.CongestionControlBBR:
		return NewBBRSender()
	default:
		return NewNewRenoSender()
	}
}

// SetLossDetector attaches (or clears, with nil) the optional loss
// detector consulted by OnAckReceived.
func (c *Controller) SetLossDetector(d LossDetector) { c.lossDetector = d }

// SetTracer attaches (or clears, with nil) the optional event tracer that
// observes algorithm switches and periodic stats snapshots.
func (c *Controller) SetTracer(t *qlog.ConnectionTracer) { c.tracer = t }

// OnPacketSent records a newly sent packet and forwards the event to the
// algorithm. Re-sending the same packet number overwrites the prior
// record, mirroring the ledger's "keyed by packet number" data model.
func (c *Controller) OnPacketSent(pn protocol.PacketNumber, bytes protocol.ByteCount, sentTime monotime.Time) {
	c.ledger[pn] = &packetRecord{size: bytes, sentTime: sentTime}
	c.bytesInFlight += bytes
	c.connStats.PacketsSent++
	c.connStats.BytesSent += int64(bytes)
	c.algorithm.OnPacketSent(pn, bytes, sentTime)
}

// OnPacketAcked marks pn acked if it exists and isn't already acked,
// decrements bytes-in-flight if it hadn't already been declared lost,
// feeds the RTT estimator, and forwards the event to the algorithm.
// Unknown or duplicate acks are silent no-ops.
func (c *Controller) OnPacketAcked(pn protocol.PacketNumber, bytes protocol.ByteCount, sentTime, ackTime monotime.Time) {
	rec, ok := c.ledger[pn]
	if !ok || rec.acked {
		return
	}
	rec.acked = true
	if !rec.lost {
		c.bytesInFlight -= rec.size
	}

	if sample := ackTime.Sub(sentTime); sample > 0 && c.rtt != nil {
		c.rtt.UpdateRTT(sample)
	}

	c.algorithm.OnPacketAcked(pn, bytes, sentTime, ackTime)
}

// OnAckReceived processes a batch of acked packet numbers using each
// record's stored size and send time, then, if a loss detector is
// attached, asks it for newly lost packets and reports them.
func (c *Controller) OnAckReceived(pns []protocol.PacketNumber, ackTime monotime.Time) {
	for _, pn := range pns {
		rec, ok := c.ledger[pn]
		if !ok {
			continue
		}
		c.OnPacketAcked(pn, rec.size, rec.sentTime, ackTime)
	}
	if c.lossDetector == nil {
		return
	}
	lost := c.lossDetector.DetectLostPackets(ackTime)
	c.handleLostPackets(lost, ackTime)
}

func (c *Controller) handleLostPackets(pns []protocol.PacketNumber, lossTime monotime.Time) {
	for _, pn := range pns {
		rec, ok := c.ledger[pn]
		if !ok {
			continue
		}
		c.OnPacketLost(pn, rec.size, rec.sentTime, lossTime)
	}
}

// OnPacketLost marks pn lost if it exists and isn't already lost,
// decrements bytes-in-flight if it hadn't already been acked, and
// forwards the event to the algorithm. Unknown or duplicate losses are
// silent no-ops.
func (c *Controller) OnPacketLost(pn protocol.PacketNumber, bytes protocol.ByteCount, sentTime, lossTime monotime.Time) {
	rec, ok := c.ledger[pn]
	if !ok || rec.lost {
		return
	}
	rec.lost = true
	if !rec.acked {
		c.bytesInFlight -= rec.size
	}
	c.connStats.PacketsLost++
	c.connStats.BytesLost += int64(bytes)

	c.algorithm.OnPacketLost(pn, bytes, sentTime, lossTime)
}

// BatchAck is a convenience wrapper equivalent to OnAckReceived without a
// loss-detector pass.
func (c *Controller) BatchAck(pns []protocol.PacketNumber, ackTime monotime.Time) {
	for _, pn := range pns {
		rec, ok := c.ledger[pn]
		if !ok {
			continue
		}
		c.OnPacketAcked(pn, rec.size, rec.sentTime, ackTime)
	}
}

// BatchLoss is a convenience wrapper that reports pns lost at the given
// time, using each record's stored size and send time.
func (c *Controller) BatchLoss(pns []protocol.PacketNumber, now monotime.Time) {
	c.handleLostPackets(pns, now)
}

// CanSend reports whether bytes more may be sent. If inFlight is nil, the
// controller's own bytes-in-flight counter is used.
func (c *Controller) CanSend(bytes protocol.ByteCount, inFlight *protocol.ByteCount) bool {
	inFl := c.bytesInFlight
	if inFlight != nil {
		inFl = *inFlight
	}
	return c.algorithm.CanSend(bytes, inFl)
}

// AvailableWindow returns max(0, cwnd - bytesInFlight).
func (c *Controller) AvailableWindow() protocol.ByteCount {
	cwnd := c.algorithm.CongestionWindow()
	if c.bytesInFlight >= cwnd {
		return 0
	}
	return cwnd - c.bytesInFlight
}

// BytesInFlight returns the controller's bytes-in-flight counter.
func (c *Controller) BytesInFlight() protocol.ByteCount { return c.bytesInFlight }

// SendingRate delegates to the active algorithm.
func (c *Controller) SendingRate() (float64, bool) { return c.algorithm.SendingRate() }

// IsInSlowStart delegates to the active algorithm.
func (c *Controller) IsInSlowStart() bool { return c.algorithm.InSlowStart() }

// SwitchAlgorithm atomically replaces the active algorithm. The packet
// ledger and bytes-in-flight persist; the new algorithm starts from its
// own initial window, the prior algorithm's window state is not
// transferred.
func (c *Controller) SwitchAlgorithm(kind protocol.CongestionControlAlgorithm, now monotime.Time) {
	oldStats := c.algorithm.Stats()
	oldKind := c.algorithmKind

	c.algorithm = newAlgorithm(kind)
	c.algorithmKind = kind

	c.logger.Debugf("congestion: switched algorithm %s -> %s", oldKind, kind)
	c.tracer.EmitAlgorithmSwitch(oldKind, kind)
	c.history = append(c.history, HistoryEntry{
		Event:     "algorithm_switch",
		Timestamp: now,
		Data: map[string]any{
			"old":       oldKind.String(),
			"new":       kind.String(),
			"old_stats": oldStats,
		},
	})
}

// Reset clears the algorithm, RTT estimator, ledger, bytes-in-flight, and
// history back to a freshly constructed state.
func (c *Controller) Reset() {
	c.algorithm.Reset()
	if c.rtt != nil {
		c.rtt.Reset()
	}
	c.ledger = make(map[protocol.PacketNumber]*packetRecord)
	c.bytesInFlight = 0
	c.history = nil
	c.connStats = utils.ConnectionStats{}
	c.lastStatsAt = monotime.Zero
	c.haveLastStat = false
}

// CleanupPacketHistory removes terminal records older than the 60s
// retention horizon, bounding ledger memory.
func (c *Controller) CleanupPacketHistory(now monotime.Time) {
	horizon := now.Add(-ledgerRetention)
	for pn, rec := range c.ledger {
		if rec.terminal() && rec.sentTime.Sub(horizon) < 0 {
			delete(c.ledger, pn)
		}
	}
}

// CollectPeriodicStats appends a Stats() snapshot (with a timestamp) to
// the rolling history if at least statsPeriod seconds have elapsed since
// the last snapshot, capping history at statsHistoryCap entries.
func (c *Controller) CollectPeriodicStats(now monotime.Time) {
	if c.haveLastStat && now.Sub(c.lastStatsAt) < statsPeriod {
		return
	}
	c.lastStatsAt = now
	c.haveLastStat = true

	snapshot := c.Stats()
	snapshot["timestamp"] = now
	c.history = append(c.history, HistoryEntry{Event: "stats", Timestamp: now, Data: snapshot})
	if len(c.history) > statsHistoryCap {
		c.history = c.history[len(c.history)-statsHistoryCap:]
	}

	if c.tracer != nil {
		var minRTT, smoothedRTT, rttVar float64
		if c.rtt != nil {
			stats := c.rtt.Stats()
			minRTT, smoothedRTT, rttVar = stats["min_rtt"], stats["smoothed_rtt"], stats["rtt_var"]
		}
		c.tracer.EmitMetrics(qlog.Metrics{
			MinRTT:           minRTT,
			SmoothedRTT:      smoothedRTT,
			RTTVariance:      rttVar,
			CongestionWindow: c.algorithm.CongestionWindow(),
			BytesInFlight:    c.bytesInFlight,
			AvailableWindow:  c.AvailableWindow(),
		})
	}
}

// History returns the accumulated history of algorithm switches and
// periodic stats snapshots.
func (c *Controller) History() []HistoryEntry { return c.history }

// Stats returns a flat map merging algorithm stats, RTT stats, and
// controller-owned counters.
func (c *Controller) Stats() map[string]any {
	out := map[string]any{}
	for k, v := range c.algorithm.Stats() {
		out[k] = v
	}
	if c.rtt != nil {
		for k, v := range c.rtt.Stats() {
			out[k] = v
		}
	}

	var unacked, lostTotal, sentCount int
	for _, rec := range c.ledger {
		sentCount++
		if rec.lost {
			lostTotal++
		}
		if !rec.terminal() {
			unacked++
		}
	}

	cwnd := c.algorithm.CongestionWindow()
	var utilization float64
	if cwnd > 0 {
		utilization = float64(c.bytesInFlight) / float64(cwnd)
	}

	out["bytes_in_flight"] = c.bytesInFlight
	out["available_window"] = c.AvailableWindow()
	out["sent_packets_count"] = sentCount
	out["unacked_packets"] = unacked
	out["lost_packets_total"] = lostTotal
	out["utilization"] = utilization
	return out
}
