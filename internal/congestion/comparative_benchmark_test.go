package congestion

import (
	"testing"

	"github.com/quic-go/qcc/internal/monotime"
	"github.com/quic-go/qcc/internal/protocol"
)

// BenchmarkAlgorithmComparison compares NewReno vs BBR ack-processing cost
// across scenarios of increasing window size and RTT.
func BenchmarkAlgorithmComparison(b *testing.B) {
	scenarios := []struct {
		name       string
		packetSize protocol.ByteCount
		rtt        float64
	}{
		{"SmallWindowLowRTT", 1200, 0.010},
		{"MediumWindowMediumRTT", 1200, 0.050},
		{"LargeWindowHighRTT", 1400, 0.100},
		{"HighBandwidth", 1400, 0.020},
	}

	for _, scenario := range scenarios {
		b.Run(scenario.name, func(b *testing.B) {
			b.Run("NewReno", func(b *testing.B) {
				benchmarkAlgorithmAcks(b, NewNewRenoSender(), scenario.packetSize, scenario.rtt)
			})
			b.Run("BBR", func(b *testing.B) {
				benchmarkAlgorithmAcks(b, NewBBRSender(), scenario.packetSize, scenario.rtt)
			})
		})
	}
}

func benchmarkAlgorithmAcks(b *testing.B, sender Algorithm, packetSize protocol.ByteCount, rtt float64) {
	b.ReportAllocs()
	var sent monotime.Time
	for i := 0; b.Loop(); i++ {
		pn := protocol.PacketNumber(i)
		sender.OnPacketSent(pn, packetSize, sent)
		sender.OnPacketAcked(pn, packetSize, sent, sent.Add(rtt))
		sent = sent.Add(rtt)
	}
}

// BenchmarkLossResponse isolates the cost of a single loss event for each
// algorithm's OnPacketLost path.
func BenchmarkLossResponse(b *testing.B) {
	b.Run("NewReno", func(b *testing.B) {
		b.ReportAllocs()
		sender := NewNewRenoSender()
		for i := 0; b.Loop(); i++ {
			pn := protocol.PacketNumber(i)
			sender.OnPacketSent(pn, 1200, 0)
			sender.OnPacketLost(pn, 1200, 0, 0.05)
		}
	})

	b.Run("BBR", func(b *testing.B) {
		b.ReportAllocs()
		sender := NewBBRSender()
		for i := 0; b.Loop(); i++ {
			pn := protocol.PacketNumber(i)
			sender.OnPacketSent(pn, 1200, 0)
			sender.OnPacketLost(pn, 1200, 0, 0.05)
		}
	})
}

// BenchmarkControllerThroughput drives a full Controller (ledger + RTT +
// algorithm dispatch) through a send/ack loop, to measure the combined
// bookkeeping cost rather than the algorithm in isolation.
func BenchmarkControllerThroughput(b *testing.B) {
	for _, kind := range []protocol.CongestionControlAlgorithm{
		protocol.CongestionControlNewReno,
		protocol.CongestionControlBBR,
	} {
		b.Run(kind.String(), func(b *testing.B) {
			b.ReportAllocs()
			c := NewController(kind, nil, nil)
			var now monotime.Time
			for i := 0; b.Loop(); i++ {
				pn := protocol.PacketNumber(i)
				c.OnPacketSent(pn, 1200, now)
				c.OnPacketAcked(pn, 1200, now, now+0.02)
				now += 0.02
			}
		})
	}
}
