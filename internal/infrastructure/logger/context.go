package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type scopeKey struct{}

// scope is what one request knows about itself. It is copied on every
// change so contexts handed to goroutines never see later updates.
type scope struct {
	log       *zap.Logger
	requestID string
	userID    string
	role      string
}

func scopeOf(ctx context.Context) scope {
	if s, ok := ctx.Value(scopeKey{}).(scope); ok {
		return s
	}
	return scope{}
}

func withScope(ctx context.Context, s scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithContext attaches log to ctx
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	s := scopeOf(ctx)
	s.log = log
	return withScope(ctx, s)
}

// FromContext returns the request logger, or a no-op logger outside a request
func FromContext(ctx context.Context) *zap.Logger {
	if s := scopeOf(ctx); s.log != nil {
		return s.log
	}
	return zap.NewNop()
}

// WithRequestID tags ctx and log with the request id
func WithRequestID(ctx context.Context, log *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	s := scopeOf(ctx)
	s.requestID = requestID
	s.log = log.With(zap.String("request_id", requestID))
	return withScope(ctx, s), s.log
}

// WithActor records who is acting on the request
func WithActor(ctx context.Context, log *zap.Logger, userID, role string) (context.Context, *zap.Logger) {
	s := scopeOf(ctx)
	s.userID, s.role = userID, role
	s.log = log.With(zap.String("user_id", userID), zap.String("role", role))
	return withScope(ctx, s), s.log
}

func GetRequestID(ctx context.Context) string { return scopeOf(ctx).requestID }
func GetUserID(ctx context.Context) string    { return scopeOf(ctx).userID }
func GetRole(ctx context.Context) string      { return scopeOf(ctx).role }

// GetTraceID returns the id of the span in ctx, or "" without one
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// L returns the request logger with the current span attached.
//
//	logger.L(ctx).Info("PO sent", zap.String("po_code", po.Code))
func L(ctx context.Context) *zap.Logger {
	log := FromContext(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return log
	}
	return log.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
