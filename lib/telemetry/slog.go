package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog sets the process-wide logger. Verbose mode enables debug
// output which includes per-step scraping detail.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
