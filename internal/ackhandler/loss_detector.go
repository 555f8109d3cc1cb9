// Package ackhandler implements the loss-detection collaborator the
// congestion control core treats as external: turning "it is now time T"
// plus a view of outstanding packets into a set of packet numbers judged
// lost.
package ackhandler

import (
	"github.com/quic-go/qcc/internal/monotime"
	"github.com/quic-go/qcc/internal/protocol"
)

// lossThreshold is the fraction of the smoothed RTT a packet may remain
// unacknowledged before it is declared lost by time, following the
// time-threshold scheme from RFC 9002 section 6.1.2.
const lossThreshold = 9.0 / 8.0

// packetOrderingThreshold is how far below the largest acked packet
// number an unacked packet must be before it is declared lost by
// reordering, following RFC 9002 section 6.1.1.
const packetOrderingThreshold = 3

// SentPacket is the minimal view of an outstanding packet the detector
// needs: its number, send time, and whether it has already been acked.
type SentPacket struct {
	Number   protocol.PacketNumber
	SentTime monotime.Time
	Acked    bool
}

// PacketSource supplies the detector with the sent packets it should
// consider. Entries with Acked set are skipped by the detector.
type PacketSource interface {
	OutstandingPackets() []SentPacket
}

// SliceSource is a PacketSource backed by a plain slice, convenient for
// tests and for embedders that keep their own list of sent packets.
type SliceSource []SentPacket

func (s SliceSource) OutstandingPackets() []SentPacket { return []SentPacket(s) }

// ThresholdDetector implements congestion.LossDetector using RFC 9002's
// combined time- and reordering-threshold scheme: a packet sent before
// the largest acked packet is declared lost once either enough higher
// packet numbers have been acked around it, or enough time (a multiple
// of smoothed RTT) has passed since it was sent.
type ThresholdDetector struct {
	source      PacketSource
	smoothedRTT func() float64

	largestAcked protocol.PacketNumber
}

// NewThresholdDetector returns a detector that reads outstanding packets
// from source and the current smoothed RTT (seconds) from smoothedRTT.
func NewThresholdDetector(source PacketSource, smoothedRTT func() float64) *ThresholdDetector {
	return &ThresholdDetector{source: source, smoothedRTT: smoothedRTT, largestAcked: protocol.InvalidPacketNumber}
}

// NotifyAcked updates the largest acked packet number the reordering
// threshold is measured against. The embedder calls this whenever new
// acks arrive, before DetectLostPackets.
func (d *ThresholdDetector) NotifyAcked(pn protocol.PacketNumber) {
	if pn > d.largestAcked {
		d.largestAcked = pn
	}
}

// DetectLostPackets implements congestion.LossDetector.
func (d *ThresholdDetector) DetectLostPackets(now monotime.Time) []protocol.PacketNumber {
	if d.largestAcked == protocol.InvalidPacketNumber {
		return nil
	}
	lossDelay := lossThreshold * d.smoothedRTT()

	var lost []protocol.PacketNumber
	for _, pkt := range d.source.OutstandingPackets() {
		if pkt.Acked || pkt.Number > d.largestAcked {
			continue
		}
		byReorder := d.largestAcked-pkt.Number >= packetOrderingThreshold
		byTime := lossDelay > 0 && now.Sub(pkt.SentTime) > lossDelay
		if byReorder || byTime {
			lost = append(lost, pkt.Number)
		}
	}
	return lost
}
