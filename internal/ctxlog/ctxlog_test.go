package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger for empty context")
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatal("expected logger from context")
	}
	FromContext(ctx).Info("decoded", "path", "a.edm")
	if !strings.Contains(buf.String(), "path=a.edm") {
		t.Errorf("unexpected log output %q", buf.String())
	}

	ctx = WithLogger(context.Background(), nil)
	if FromContext(ctx) != slog.Default() {
		t.Error("expected default logger for nil logger")
	}
}
