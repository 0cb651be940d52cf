package testhelpers

import (
	"io"
	"log/slog"

	"github.com/mkallio/fitplan/internal/logging"
)

// NewLogger creates a debug-level logger writing to the given sink, typically
// a bytes.Buffer or testhelpers.NewWriter(t).
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{ //nolint:exhaustruct
		AddSource: false,
		Level:     slog.LevelDebug,
	}))
	return slog.New(handler)
}
