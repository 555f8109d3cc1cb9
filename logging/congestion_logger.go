// Package logging provides a per-connection debug logger for congestion
// control events, in the style of the teacher's algorithm-specific
// loggers but generalized across NewReno and BBR.
package logging

import (
	"fmt"
	"log"
	"os"

	"github.com/quic-go/qcc/internal/protocol"
)

// CongestionState is a logging-friendly label for the current state of
// whichever algorithm is active, spanning both NewReno's and BBR's state
// machines.
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
	switch s {
	case CongestionStateSlowStart:
		return "SlowStart"
	case CongestionStateCongestionAvoidance:
		return "CongestionAvoidance"
	case CongestionStateFastRecovery:
		return "FastRecovery"
	case CongestionStateStartup:
		return "Startup"
	case CongestionStateDrain:
		return "Drain"
	case CongestionStateProbeBw:
		return "ProbeBw"
	case CongestionStateProbeRtt:
		return "ProbeRtt"
	default:
		return "Unknown"
	}
}

// Logger provides debugging output for the congestion control core,
// independent of which algorithm is active.
type Logger struct {
	logger     *log.Logger
	enabled    bool
	connection string
}

// NewLogger creates a connection-scoped congestion logger.
func NewLogger(connectionID string, enabled bool) *Logger {
	return &Logger{
		logger:     log.New(os.Stderr, fmt.Sprintf("[congestion:%s] ", connectionID), log.LstdFlags|log.Lmicroseconds),
		enabled:    enabled,
		connection: connectionID,
	}
}

// LogWindowChange logs a congestion window change and the reason for it.
func (l *Logger) LogWindowChange(reason string, oldCwnd, newCwnd protocol.ByteCount) {
	if !l.enabled {
		return
	}
	change := float64(newCwnd) / float64(oldCwnd)
	l.logger.Printf("cwnd change (%s): %d -> %d (%.3fx)", reason, oldCwnd, newCwnd, change)
}

// LogStateChange logs a transition between congestion states.
func (l *Logger) LogStateChange(algorithm string, from, to CongestionState) {
	if !l.enabled {
		return
	}
	l.logger.Printf("%s state: %s -> %s", algorithm, from, to)
}

// LogPacketLoss logs a packet loss event.
func (l *Logger) LogPacketLoss(lostBytes, cwnd protocol.ByteCount) {
	if !l.enabled {
		return
	}
	l.logger.Printf("packet loss: lost_bytes=%d cwnd=%d", lostBytes, cwnd)
}

// LogAlgorithmSwitch logs a hot-swap between algorithms.
func (l *Logger) LogAlgorithmSwitch(old, new protocol.CongestionControlAlgorithm) {
	if !l.enabled {
		return
	}
	l.logger.Printf("algorithm switch: %s -> %s", old, new)
}
