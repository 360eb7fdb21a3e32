package ctxutil

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestActorFromContext(t *testing.T) {
	ctx := context.Background()
	if got := ActorFromContext(ctx); got != "" {
		t.Errorf("expected empty actor, got %q", got)
	}

	ctx = WithActorID(ctx, "cli")
	if got := ActorFromContext(ctx); got != "cli" {
		t.Errorf("expected actor cli, got %q", got)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if LoggerFromContext(context.Background()) == nil {
		t.Fatal("expected a fallback logger")
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)

	LoggerFromContext(ctx).Info("hello", "block", "b1")
	if !strings.Contains(buf.String(), "block=b1") {
		t.Errorf("expected log output to contain block=b1, got %q", buf.String())
	}
}
