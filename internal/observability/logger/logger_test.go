package logger_test

import (
	"context"
	"testing"

	"boardstack-api/internal/observability/logger"
)

func TestLogger_New(t *testing.T) {
	log, err := logger.New("test-service", "info")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer log.Sync()

	ctx := context.Background()

	// Methods must not panic with or without module/action fields.
	log.Info(ctx, "test info message", logger.Module("test"), logger.Action("test_action"))
	log.Warn(ctx, "test warn message", logger.Module("test"), logger.Action("test_action"))
	log.Error(ctx, "test error message")
	log.Debug(ctx, "debug below configured level is dropped")
}

func TestLogger_RequiresServiceName(t *testing.T) {
	if _, err := logger.New("", "info"); err == nil {
		t.Fatal("expected error for empty service name")
	}
}

func TestLogger_ContextFields(t *testing.T) {
	log, err := logger.New("test-service", "info")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer log.Sync()

	ctx := context.Background()
	ctx = logger.SetRequestIDInContext(ctx, "test-req-123")
	ctx = logger.SetWorkspaceIDInContext(ctx, "W1")
	ctx = logger.SetUserIDInContext(ctx, "u-789")

	log.Info(ctx, "test with context", logger.Module("test"), logger.Action("test_context"))

	if got := logger.GetRequestIDFromContext(ctx); got != "test-req-123" {
		t.Errorf("GetRequestIDFromContext() = %q, want %q", got, "test-req-123")
	}
	if got := logger.GetWorkspaceIDFromContext(ctx); got != "W1" {
		t.Errorf("GetWorkspaceIDFromContext() = %q, want %q", got, "W1")
	}
	if got := logger.GetUserIDFromContext(ctx); got != "u-789" {
		t.Errorf("GetUserIDFromContext() = %q, want %q", got, "u-789")
	}
}

func TestLogger_GetLoggerFallback(t *testing.T) {
	// An unseeded context yields a usable default logger instead of nil.
	log := logger.GetLogger(context.Background())
	if log == nil {
		t.Fatal("expected fallback logger, got nil")
	}
}

func TestLogger_RootErrorContainer(t *testing.T) {
	ctx := logger.InitRootErrorContext(context.Background())

	if err := logger.GetRootError(ctx); err != nil {
		t.Fatalf("expected no root error initially, got %v", err)
	}

	wantErr := context.DeadlineExceeded
	logger.SetRootError(ctx, wantErr)

	if got := logger.GetRootError(ctx); got != wantErr {
		t.Errorf("GetRootError() = %v, want %v", got, wantErr)
	}
}
