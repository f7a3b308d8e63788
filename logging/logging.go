// Package logging is the leveled, appender based logger used throughout motion sequence planning.
package logging

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewLogger returns a logger that writes Info and above to stdout, timestamped in UTC.
func NewLogger(name string) Logger {
	return newImpl(name, INFO, utcNow, NewStdoutAppender())
}

// NewBlankLogger returns a Debug level logger in UTC without any appender. Nothing is written until
// one is added with AddAppender.
func NewBlankLogger(name string) Logger {
	return newImpl(name, DEBUG, utcNow)
}

// NewTestLogger returns a Debug level logger writing to the test's log in local time.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is NewTestLogger that also records every entry, so tests can assert on
// what was logged.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	observerCore, observedLogs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	return newImpl("", DEBUG, time.Now, NewTestAppender(tb), observerCore), observedLogs
}
