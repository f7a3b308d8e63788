package logging

import (
	"context"

	"github.com/google/uuid"
)

type debugModeKey struct{}

// EnableDebugMode returns a context under which every CDebug* call is logged. The key shows up in
// DebugKey and is generated when empty, so the calls of one request can be told apart.
func EnableDebugMode(ctx context.Context, key string) context.Context {
	if key == "" {
		key = uuid.NewString()[:8]
	}
	return context.WithValue(ctx, debugModeKey{}, key)
}

// IsDebugMode reports whether ctx was returned by EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	return DebugKey(ctx) != ""
}

// DebugKey returns the key debug mode was enabled with, or "" when it is not enabled.
func DebugKey(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	key, _ := ctx.Value(debugModeKey{}).(string)
	return key
}
