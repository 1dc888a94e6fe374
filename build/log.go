// Package build carries the daemon's ambient logging plumbing: a
// process-wide rotating log writer and the per-subsystem sub-logger
// factory every other package in this module uses.
package build

import (
	"fmt"
	"os"

	"github.com/decred/slog"
	"github.com/jrick/logrotate"
)

// LogTypeStdOut is the default logging type, writing only to stdout.
const LogTypeStdOut = "stdout"

// LogWriter is a stdout multiplexer that also feeds a rotating log file
// once InitLogRotator has been called. Until then, writes simply go to
// stdout.
type LogWriter struct {
	RotatorPipe *logrotate.Rotator
}

// Write implements io.Writer, duplicating output to stdout and, if
// configured, to the rotator.
func (w *LogWriter) Write(b []byte) (int, error) {
	os.Stdout.Write(b)
	if w.RotatorPipe != nil {
		w.RotatorPipe.Write(b)
	}
	return len(b), nil
}

// RotatingLogWriter is the root of the logging backend. It owns the
// slog.Backend every sub-logger is minted from, and the registry of
// sub-loggers so they can be adjusted (e.g. by a `debuglevel` config
// option) once the daemon has parsed its configuration.
type RotatingLogWriter struct {
	backend     *slog.Backend
	subLoggers  map[string]slog.Logger
	logWriter   *LogWriter
}

// NewRotatingLogWriter instantiates a new log writer that writes to stdout
// and, once initialized, a rotated log file.
func NewRotatingLogWriter() *RotatingLogWriter {
	logWriter := &LogWriter{}
	return &RotatingLogWriter{
		backend:    slog.NewBackend(logWriter),
		subLoggers: make(map[string]slog.Logger),
		logWriter:  logWriter,
	}
}

// InitLogRotator initializes the log rotator to write to logFile and begins
// rotation once the file exceeds maxLogFileSize, keeping at most maxLogFiles
// rotated copies around.
func (r *RotatingLogWriter) InitLogRotator(logFile string, maxLogFileSize int64, maxLogFiles int) error {
	rotator, err := logrotate.New(logFile, maxLogFileSize, maxLogFiles)
	if err != nil {
		return fmt.Errorf("failed to create log rotator: %v", err)
	}
	r.logWriter.RotatorPipe = rotator
	return nil
}

// GenSubLogger creates a new sub-logger for the given subsystem off of the
// root backend. It is the function handed to NewSubLogger once the root
// logger is ready, matching build.NewSubLogger(subsystem, root.GenSubLogger)
// in the daemon's startup path.
func (r *RotatingLogWriter) GenSubLogger(subsystem string) slog.Logger {
	return r.backend.Logger(subsystem)
}

// RegisterSubLogger tracks a sub-logger under its subsystem tag so its level
// can later be changed in bulk (e.g. via a `--debuglevel` flag).
func (r *RotatingLogWriter) RegisterSubLogger(subsystem string, logger slog.Logger) {
	r.subLoggers[subsystem] = logger
}

// SetLogLevels applies the given level string (e.g. "info", "debug", "trace")
// to every registered sub-logger.
func (r *RotatingLogWriter) SetLogLevels(levelStr string) {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return
	}
	for _, logger := range r.subLoggers {
		logger.SetLevel(level)
	}
}

// NewSubLogger returns a logger for subsystem. Before the root rotating
// writer exists, genLogger is nil and the returned logger is disabled; this
// lets package-level loggers be declared and used safely before
// SetupLoggers runs.
func NewSubLogger(subsystem string, genLogger func(string) slog.Logger) slog.Logger {
	if genLogger == nil {
		return slog.Disabled
	}
	return genLogger(subsystem)
}
