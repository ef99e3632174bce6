package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that appends to a file
func NewFileLogger(path string) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		f.Close()
	}

	return New(f), cleanup, nil
}

// NewMultiLogger creates a logger that writes to multiple outputs
func NewMultiLogger(writers ...io.Writer) *Logger {
	return New(io.MultiWriter(writers...))
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// BatchStarted logs the start of a batch run
func (l *Logger) BatchStarted(runID, srcDir, outDir string, workers int) {
	l.Info("batch started",
		"run_id", runID,
		"src_dir", srcDir,
		"out_dir", outDir,
		"workers", workers)
}

// BatchCompleted logs the completion of a batch run
func (l *Logger) BatchCompleted(runID string, converted, skipped, errors int, duration time.Duration) {
	l.Info("batch completed",
		"run_id", runID,
		"files_converted", converted,
		"skipped", skipped,
		"errors", errors,
		"duration", duration.Round(time.Millisecond))
}

// FileConverted logs a successful conversion
func (l *Logger) FileConverted(source, dest string) {
	l.Info("file converted",
		"source", source,
		"dest", dest)
}

// FileError logs an error for a specific file
func (l *Logger) FileError(file string, err error) {
	l.Error("file error",
		"file", file,
		"error", err)
}

// StateError logs a state-related error
func (l *Logger) StateError(operation string, err error) {
	l.Error("state error",
		"operation", operation,
		"error", err)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(inputExt, outputExt string, workers int) {
	l.Debug("config loaded",
		"input_ext", inputExt,
		"output_ext", outputExt,
		"workers", workers)
}

// Skipped logs when a file is skipped
func (l *Logger) Skipped(file, reason string) {
	l.Debug("file skipped",
		"file", file,
		"reason", reason)
}
