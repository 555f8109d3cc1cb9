// Package protocol defines the primitive value types shared by the
// congestion control core: byte counts and packet numbers.
package protocol

import "math"

// ByteCount is a count of bytes.
type ByteCount int64

// MaxByteCount is the largest representable ByteCount, used by algorithms
// that report an effectively unbounded slow-start threshold.
const MaxByteCount ByteCount = math.MaxInt64

// PacketNumber is a QUIC packet number: a non-negative integer assigned
// monotonically per send direction.
type PacketNumber int64

// InvalidPacketNumber is a sentinel "no packet yet" value.
const InvalidPacketNumber PacketNumber = -1

// CongestionControlAlgorithm identifies a pluggable congestion control
// variant.
type CongestionControlAlgorithm uint8

const (
	// CongestionControlNewReno is the classic loss-based algorithm from
	// RFC 5681 / RFC 9002.
	CongestionControlNewReno CongestionControlAlgorithm = iota
	// CongestionControlBBR is the model-based, bandwidth- and RTT-probing
	// algorithm (BBR v1).
	CongestionControlBBR
)

func (a CongestionControlAlgorithm) String() string {
	switch a {
	case CongestionControlNewReno:
		return "NewReno"
	case CongestionControlBBR:
		return "BBR"
	default:
		return "Unknown"
	}
}
