// Package cli implements the watermarker command-line interface.
//
// # Commands
//
//   - run: Watermark one image or every image in a directory
//   - plan: Print the scale factor and placement for one image without writing
//   - serve: Run the MCP server on stdin/stdout
//   - version: Print build information
//
// # Configuration
//
// Settings are resolved from three layers, lowest precedence first: built-in
// defaults, a TOML file given with --config, and flags set explicitly on the
// command line.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, as does
// WATERMARKER_LOG_LEVEL=debug. Loggers write to stderr and are passed
// through context.Context.
package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logLevelEnv overrides the log level when set to "debug".
const logLevelEnv = "WATERMARKER_LOG_LEVEL"

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logLevel picks Debug when verbose is set or the environment asks for it.
func logLevel(verbose bool) log.Level {
	if verbose || strings.EqualFold(os.Getenv(logLevelEnv), "debug") {
		return log.DebugLevel
	}
	return log.InfoLevel
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
