package utils

import (
	"log"
	"os"
)

// Logger is the minimal leveled logging interface the congestion control
// core logs through, so embedding code can redirect or silence it instead
// of this package writing to stderr directly.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type defaultLogger struct {
	debug *log.Logger
	err   *log.Logger
}

// DefaultLogger writes debug and error lines to stderr with a
// microsecond-precision timestamp, matching the format the teacher's
// per-connection loggers use.
var DefaultLogger Logger = &defaultLogger{
	debug: log.New(os.Stderr, "[debug] ", log.LstdFlags|log.Lmicroseconds),
	err:   log.New(os.Stderr, "[error] ", log.LstdFlags|log.Lmicroseconds),
}

func (l *defaultLogger) Debugf(format string, args ...interface{}) { l.debug.Printf(format, args...) }
func (l *defaultLogger) Errorf(format string, args ...interface{}) { l.err.Printf(format, args...) }

// NopLogger discards everything; useful in tests that don't want log noise.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Errorf(string, ...interface{}) {}
