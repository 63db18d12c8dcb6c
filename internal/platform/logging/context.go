package logging

import (
	"context"

	"go.uber.org/zap"
)

type scopeKey struct{}

// requestScope is the per-request logging state stored in the context.
type requestScope struct {
	logger        *zap.Logger
	correlationID string
}

func scopeFrom(ctx context.Context) requestScope {
	if ctx == nil {
		return requestScope{}
	}
	s, _ := ctx.Value(scopeKey{}).(requestScope)
	return s
}

func withScope(ctx context.Context, s requestScope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeKey{}, s)
}

// LoggerFromContext returns the request-scoped logger if present, otherwise the process logger.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if l := scopeFrom(ctx).logger; l != nil {
		return l
	}
	return Logger()
}

// WithLogger returns a copy of ctx carrying logger. Any correlation ID is kept.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	s := scopeFrom(ctx)
	s.logger = logger
	return withScope(ctx, s)
}

// CorrelationID returns the Cloud Trace resource or request ID of the current request, or "".
func CorrelationID(ctx context.Context) string {
	return scopeFrom(ctx).correlationID
}

// LogInfo writes an informational message using the request-aware logger.
func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	helperLogger(ctx).Info(msg, fields...)
}

// LogWarn writes a warning message using the request-aware logger.
func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	helperLogger(ctx).Warn(msg, fields...)
}

// LogError writes an error message and appends the error field when provided.
func LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	helperLogger(ctx).Error(msg, fields...)
}

// helperLogger reports the caller of the Log* helper, not the helper itself.
func helperLogger(ctx context.Context) *zap.Logger {
	return LoggerFromContext(ctx).WithOptions(zap.AddCallerSkip(1))
}
