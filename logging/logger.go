package logging

import (
	"context"
)

// Logger logs messages at leveled severities. Each method family comes in three flavors: the plain
// version forwards to `fmt.Sprint`, the `f` version forwards to `fmt.Sprintf` and the `w` version
// takes a message followed by key/value pairs.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})

	// The C* variants log at debug level whenever the context has debug mode enabled, regardless
	// of the logger's own level.
	CDebug(ctx context.Context, args ...interface{})
	CDebugf(ctx context.Context, template string, args ...interface{})
	CDebugw(ctx context.Context, msg string, keysAndValues ...interface{})

	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})

	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	SetLevel(level Level)
	GetLevel() Level

	// Sublogger returns a logger named "<parent>.<subname>" that writes to the parent's appenders.
	// It starts at the parent's level but its level is set independently.
	Sublogger(subname string) Logger
	AddAppender(appender Appender)
	// Sync flushes every appender.
	Sync() error
}
