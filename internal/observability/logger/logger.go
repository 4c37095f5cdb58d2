package logger

import (
	"context"
	"fmt"
	"strings"

	"boardstack-api/internal/observability/requestid"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	loggerContextKey      contextKey = "logger"
	workspaceIDContextKey contextKey = "workspace_id"
	userIDContextKey      contextKey = "user_id"
	rootErrorContextKey   contextKey = "root_err"
)

type rootErrorContainer struct {
	err error
}

// Logger wraps zap.Logger to enforce structured logging standards: JSON
// output, RFC3339Nano timestamps, request/user/workspace context enrichment
// and secret redaction.
type Logger struct {
	zap         *zap.Logger
	serviceName string
}

// Field is a structured log field.
type Field = zapcore.Field

// New creates a Logger. level is one of "debug", "info", "warn", "error".
func New(serviceName string, level string) (*Logger, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("serviceName is required")
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(level)),
		Encoding:         "json",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}

	z, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	z = z.With(zap.String("service", serviceName))

	return &Logger{zap: z, serviceName: serviceName}, nil
}

// Module returns a field naming the emitting component.
func Module(name string) Field {
	return zap.String("module", name)
}

// Action returns a field naming the operation being performed.
func Action(name string) Field {
	return zap.String("action", name)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields ...Field) {
	all := make([]Field, 0, len(fields)+3)

	if requestID := GetRequestIDFromContext(ctx); requestID != "" {
		all = append(all, zap.String("request_id", requestID))
	}
	if workspaceID := GetWorkspaceIDFromContext(ctx); workspaceID != "" {
		all = append(all, zap.String("workspace_id", workspaceID))
	}
	if userID := GetUserIDFromContext(ctx); userID != "" {
		all = append(all, zap.String("user_id", userID))
	}

	all = append(all, sanitizeFields(fields)...)

	// module/action are enforced by convention; a missing one degrades to
	// "unknown" rather than crashing the service.
	hasModule, hasAction := false, false
	for _, f := range all {
		switch f.Key {
		case "module":
			hasModule = true
		case "action":
			hasAction = true
		}
	}
	if !hasModule {
		all = append(all, zap.String("module", "unknown"))
	}
	if !hasAction {
		all = append(all, zap.String("action", "unknown"))
	}

	switch level {
	case zapcore.DebugLevel:
		l.zap.Debug(msg, all...)
	case zapcore.InfoLevel:
		l.zap.Info(msg, all...)
	case zapcore.WarnLevel:
		l.zap.Warn(msg, all...)
	case zapcore.ErrorLevel:
		l.zap.Error(msg, all...)
	}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// sanitizeFields redacts keys that must never reach the logs: credentials
// and direct PII.
func sanitizeFields(fields []Field) []Field {
	forbidden := map[string]bool{
		"authorization": true,
		"token":         true,
		"password":      true,
		"secret":        true,
		"api_key":       true,
		"database_url":  true,
		"jwt":           true,
		"bearer":        true,
		"credential":    true,
		"email":         true,
		"phone":         true,
		"full_name":     true,
	}

	sanitized := make([]Field, 0, len(fields))
	for _, field := range fields {
		if forbidden[strings.ToLower(field.Key)] {
			sanitized = append(sanitized, zap.String(field.Key, "[REDACTED]"))
		} else {
			sanitized = append(sanitized, field)
		}
	}
	return sanitized
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Context value accessors

func GetRequestIDFromContext(ctx context.Context) string {
	return requestid.GetRequestID(ctx)
}

func GetWorkspaceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(workspaceIDContextKey).(string); ok {
		return id
	}
	return ""
}

func GetUserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDContextKey).(string); ok {
		return id
	}
	return ""
}

func SetRequestIDInContext(ctx context.Context, requestID string) context.Context {
	return requestid.SetRequestID(ctx, requestID)
}

func SetWorkspaceIDInContext(ctx context.Context, workspaceID string) context.Context {
	return context.WithValue(ctx, workspaceIDContextKey, workspaceID)
}

func SetUserIDInContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetLogger retrieves the logger from context, falling back to a fresh
// default logger when absent (tests, early startup).
func GetLogger(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return l
	}
	l, _ := New("boardstack-api", "info")
	return l
}

// SetLoggerInContext stores the logger in context.
func SetLoggerInContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// InitRootErrorContext seeds the context with a container for the request's
// root cause error, so the access-log middleware can report it for 5xx.
func InitRootErrorContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, rootErrorContextKey, &rootErrorContainer{})
}

// SetRootError records the root cause error for the current request.
func SetRootError(ctx context.Context, err error) {
	if container, ok := ctx.Value(rootErrorContextKey).(*rootErrorContainer); ok {
		container.err = err
	}
}

// GetRootError retrieves the root cause error for the current request.
func GetRootError(ctx context.Context) error {
	if container, ok := ctx.Value(rootErrorContextKey).(*rootErrorContainer); ok {
		return container.err
	}
	return nil
}
