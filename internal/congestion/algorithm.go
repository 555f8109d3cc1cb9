package congestion

import (
	"github.com/quic-go/qcc/internal/monotime"
	"github.com/quic-go/qcc/internal/protocol"
)

// Algorithm is the uniform contract every congestion control variant
// implements. The controller drives an Algorithm exclusively through this
// interface; an Algorithm never reads the controller's packet ledger.
//
// Every method is total: duplicate or unknown packet numbers must never
// cause a panic or an invalid state transition. The controller
// deduplicates before calling, but an Algorithm must not rely on that for
// safety, only for correctness of its own counters.
type Algorithm interface {
	OnPacketSent(pn protocol.PacketNumber, bytes protocol.ByteCount, sentTime monotime.Time)
	OnPacketAcked(pn protocol.PacketNumber, bytes protocol.ByteCount, sentTime, ackTime monotime.Time)
	OnPacketLost(pn protocol.PacketNumber, bytes protocol.ByteCount, sentTime, lossTime monotime.Time)

	CongestionWindow() protocol.ByteCount
	Ssthresh() protocol.ByteCount
	CanSend(bytes, inFlight protocol.ByteCount) bool

	// SendingRate returns the algorithm's target send rate in bytes/s and
	// true, or (0, false) for window-only algorithms that don't produce
	// one.
	SendingRate() (float64, bool)

	InSlowStart() bool
	Reset()

	// Stats returns a flat map of algorithm-specific statistics. Every
	// implementation includes at least "algorithm" plus counters for
	// acked/lost packets and bytes, and a loss_rate.
	Stats() map[string]any

	Name() string
}
