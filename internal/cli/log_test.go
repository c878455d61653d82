package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, charmlog.InfoLevel)

	logger.Debug("hidden")
	logger.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("info message missing")
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, charmlog.DebugLevel)

	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext should return the attached logger")
	}

	// Without an attached logger, fall back to the default
	if got := loggerFromContext(context.Background()); got == nil {
		t.Error("loggerFromContext should never return nil")
	}
}
