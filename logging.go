package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// reporter fans progress events out to stderr and, when --log is set, to
// an append-only log file. The file always receives debug events with
// timestamps; stderr only shows warnings unless --verbose is given.
type reporter struct {
	loggers []*log.Logger
	file    *os.File
}

func newReporter(stderr io.Writer, verbose bool, logPath string) (*reporter, error) {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	r := &reporter{
		loggers: []*log.Logger{log.NewWithOptions(stderr, log.Options{
			Level:  level,
			Prefix: "fastats",
		})},
	}
	if logPath == "" {
		return r, nil
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}
	r.file = f
	r.loggers = append(r.loggers, log.NewWithOptions(f, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.LogfmtFormatter,
	}))
	return r, nil
}

func (r *reporter) Debug(msg string, keyvals ...interface{}) {
	for _, l := range r.loggers {
		l.Debug(msg, keyvals...)
	}
}

func (r *reporter) Info(msg string, keyvals ...interface{}) {
	for _, l := range r.loggers {
		l.Info(msg, keyvals...)
	}
}

func (r *reporter) Warn(msg string, keyvals ...interface{}) {
	for _, l := range r.loggers {
		l.Warn(msg, keyvals...)
	}
}

func (r *reporter) Error(msg string, keyvals ...interface{}) {
	for _, l := range r.loggers {
		l.Error(msg, keyvals...)
	}
}

func (r *reporter) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
