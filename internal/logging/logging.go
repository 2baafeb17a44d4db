// =============================================================================
// flat2tab - Logging
// =============================================================================
//
// Two sinks are used by the CLI:
//
//   1. The console logger: slog text output on stderr, level set by
//      --log-level / --verbose.
//   2. The error log: an append-only file that receives one line per
//      ERROR record, in the format operators already grep for:
//
//        ERROR 2024-05-01 09:30:12,345 converter.Run 0 export error: ...
//        LEVEL DATE       TIME         OP            LINE MESSAGE
//
//   The CLI fans progress records out to both with slogmulti.Fanout; a
//   failed run is written through LogError to the error log alone.
//
// =============================================================================

package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ginjaninja78/flat2tab/internal/types"
)

// Attribute keys read by ErrorLogHandler.
const (
	KeyOp   = "op"
	KeyLine = "line"
)

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewConsoleHandler returns the text handler for progress output on w.
func NewConsoleHandler(level string, w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
}

// OpenErrorLog opens path for appending, creating it if needed.
func OpenErrorLog(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log %s: %w", path, err)
	}
	return f, nil
}

// LogError logs err at ERROR level. When err carries a *types.Error its
// operation and line number are attached as attributes.
func LogError(logger *slog.Logger, err error) {
	if err == nil {
		return
	}

	var args []any
	var te *types.Error
	if errors.As(err, &te) {
		args = append(args, KeyOp, te.Op)
		if te.Line > 0 {
			args = append(args, KeyLine, te.Line)
		}
	}
	logger.Error(err.Error(), args...)
}

// =============================================================================
// ERROR LOG HANDLER
// =============================================================================

// ErrorLogHandler writes ERROR records as single lines. Records below ERROR
// are dropped.
type ErrorLogHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	attrs []slog.Attr
}

// NewErrorLogHandler returns a handler writing to w.
func NewErrorLogHandler(w io.Writer) *ErrorLogHandler {
	return &ErrorLogHandler{mu: &sync.Mutex{}, w: w}
}

// Enabled implements slog.Handler.
func (h *ErrorLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

// Handle implements slog.Handler.
func (h *ErrorLogHandler) Handle(_ context.Context, r slog.Record) error {
	op, line := "-", "-"
	visit := func(a slog.Attr) bool {
		switch a.Key {
		case KeyOp:
			if s := a.Value.String(); s != "" {
				op = s
			}
		case KeyLine:
			line = a.Value.String()
		}
		return true
	}
	for _, a := range h.attrs {
		visit(a)
	}
	r.Attrs(visit)

	msg := strings.ReplaceAll(r.Message, "\n", " ")
	out := fmt.Sprintf("%s %s %s %s %s\n", r.Level.String(), r.Time.Format("2006-01-02 15:04:05,000"), op, line, msg)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, out)
	return err
}

// WithAttrs implements slog.Handler.
func (h *ErrorLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ErrorLogHandler{mu: h.mu, w: h.w, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *ErrorLogHandler) WithGroup(string) slog.Handler {
	return h
}
