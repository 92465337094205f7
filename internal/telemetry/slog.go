// slog.go wires the logging section of the configuration into the
// process-wide slog default, so handlers and services log through plain
// slog.Info/Warn/Error calls without carrying a logger around.
package telemetry

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// SetupLogger installs the global slog default logger from the logging
// configuration. format selects the handler ("json" for machine-readable
// records, anything else for text), level sets the threshold ("debug",
// "info", "warn", "error"; unknown values mean info), and output names the
// destination stream. Debug level also records source file and line.
func SetupLogger(format, level, output string) {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	slog.SetDefault(slog.New(newHandler(format, logDestination(output), opts)))
	slog.Info("logger initialised", "format", format, "level", lvl.String(), "output", output)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// logDestination maps the configured output name to a stream. Anything other
// than "stderr" falls back to stdout so a typo cannot swallow log records.
func logDestination(output string) io.Writer {
	if strings.ToLower(output) == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

func newHandler(format string, w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
