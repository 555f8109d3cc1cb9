package congestion

import "github.com/quic-go/qcc/internal/protocol"

// Numeric constants shared by every congestion control algorithm.
const (
	// MaxDatagramSize (MSS) is the maximum segment size assumed by the
	// congestion control core.
	MaxDatagramSize = protocol.ByteCount(1200)

	// MinWindow is the smallest a congestion window may ever clamp to.
	MinWindow = 2 * MaxDatagramSize

	// MaxWindow is the largest a congestion window may ever clamp to.
	MaxWindow = protocol.ByteCount(64 * 1024 * 1024)

	// InitialWindow is the congestion window a fresh CongestionWindow
	// starts at.
	InitialWindow = 10 * MaxDatagramSize

	// ReductionFactor is the multiplicative-decrease factor every caller
	// in this repo passes to CongestionWindow.Reduce.
	ReductionFactor = 0.5
)

// InvalidReductionFactorError is returned by Reduce when called with a
// factor outside (0, 1). Every in-core caller passes ReductionFactor, so
// this is unreachable in normal operation; it exists because Reduce's
// contract requires it to be total and safe against misuse.
type InvalidReductionFactorError struct {
	Factor float64
}

func (e InvalidReductionFactorError) Error() string {
	return "congestion: invalid reduction factor (must be in (0, 1))"
}

// Window is a byte-sized congestion window with a slow-start threshold,
// clamped to [MinWindow, MaxWindow]. It is a pure value object: it knows
// nothing about packets, time, or RTT, only the window arithmetic from
// RFC 5681.
type Window struct {
	size     protocol.ByteCount
	ssthresh protocol.ByteCount
}

// NewWindow returns a Window at its initial size and slow-start threshold.
func NewWindow() *Window {
	w := &Window{}
	w.Reset()
	return w
}

// Size returns the current window size in bytes.
func (w *Window) Size() protocol.ByteCount { return w.size }

// Ssthresh returns the current slow-start threshold in bytes.
func (w *Window) Ssthresh() protocol.ByteCount { return w.ssthresh }

// InSlowStart reports whether the window is below its slow-start
// threshold.
func (w *Window) InSlowStart() bool { return w.size < w.ssthresh }

// SlowStartIncrease grows the window by ackedBytes while in slow start; a
// no-op outside slow start.
func (w *Window) SlowStartIncrease(ackedBytes protocol.ByteCount) {
	if !w.InSlowStart() {
		return
	}
	w.size = clamp(w.size + ackedBytes)
}

// CongestionAvoidanceIncrease grows the window by at least one byte per
// RTT-worth of acks while outside slow start; a no-op in slow start.
func (w *Window) CongestionAvoidanceIncrease(ackedBytes protocol.ByteCount) {
	if w.InSlowStart() {
		return
	}
	increase := protocol.ByteCount(int64(MaxDatagramSize) * int64(ackedBytes) / int64(w.size))
	if increase < 1 {
		increase = 1
	}
	w.size = clamp(w.size + increase)
}

// Reduce applies a multiplicative decrease: ssthresh becomes
// floor(size*factor) clamped to >= MinWindow, and size is set to the new
// ssthresh. factor must be in (0, 1).
func (w *Window) Reduce(factor float64) error {
	if factor <= 0 || factor >= 1 {
		return InvalidReductionFactorError{Factor: factor}
	}
	reduced := protocol.ByteCount(float64(w.size) * factor)
	if reduced < MinWindow {
		reduced = MinWindow
	}
	w.ssthresh = clamp(reduced)
	w.size = w.ssthresh
	return nil
}

// CanSend reports whether bytes more may be sent given inFlight bytes
// already outstanding.
func (w *Window) CanSend(bytes, inFlight protocol.ByteCount) bool {
	return inFlight+bytes <= w.size
}

// Available returns how many more bytes may be sent given inFlight bytes
// already outstanding, never negative.
func (w *Window) Available(inFlight protocol.ByteCount) protocol.ByteCount {
	if inFlight >= w.size {
		return 0
	}
	return w.size - inFlight
}

// SetSize forcibly sets the window size, clamping into range. Used by BBR,
// which computes its target cwnd directly rather than growing
// incrementally.
func (w *Window) SetSize(size protocol.ByteCount) {
	w.size = clamp(size)
}

// SetSsthresh forcibly sets the slow-start threshold, clamping to >=
// MinWindow.
func (w *Window) SetSsthresh(ssthresh protocol.ByteCount) {
	if ssthresh < MinWindow {
		ssthresh = MinWindow
	}
	w.ssthresh = ssthresh
}

// Reset restores the window to its initial size and threshold.
func (w *Window) Reset() {
	w.size = InitialWindow
	w.ssthresh = MaxWindow
}

func clamp(size protocol.ByteCount) protocol.ByteCount {
	if size < MinWindow {
		return MinWindow
	}
	if size > MaxWindow {
		return MaxWindow
	}
	return size
}
