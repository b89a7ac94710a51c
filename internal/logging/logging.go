// Package logging configures the logrus logger shared by autogen packages.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/syssam/autogen/internal/logging/logfields"
)

// LogFormat selects a logrus formatter.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"

	// DefaultLogFormat is the format used when none is configured.
	DefaultLogFormat = LogFormatText

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = logrus.InfoLevel
)

// DefaultLogger is the base logrus logger. It is different from the logrus
// default to avoid external dependencies from writing out unexpectedly
var DefaultLogger = initializeDefaultLogger()

func initializeDefaultLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(GetFormatter(DefaultLogFormat))
	logger.SetLevel(DefaultLogLevel)
	return logger
}

// Options holds the user supplied logging settings.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// Setup applies opts to DefaultLogger.
func Setup(opts Options) error {
	level := DefaultLogLevel
	if opts.Level != "" {
		var err error
		if level, err = logrus.ParseLevel(opts.Level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}
	format := DefaultLogFormat
	if opts.Format != "" {
		format = LogFormat(strings.ToLower(opts.Format))
	}
	formatter := GetFormatter(format)
	if formatter == nil {
		return fmt.Errorf("invalid log format %q, expected 'text' or 'json'", opts.Format)
	}
	DefaultLogger.SetLevel(level)
	DefaultLogger.SetFormatter(formatter)
	if opts.Output != nil {
		DefaultLogger.SetOutput(opts.Output)
	}
	// always suppress the default logger so libraries don't print things
	logrus.SetLevel(logrus.PanicLevel)
	return nil
}

// GetFormatter returns a configured logrus.Formatter, or nil for an unknown
// format.
func GetFormatter(format LogFormat) logrus.Formatter {
	switch format {
	case LogFormatText:
		return &logrus.TextFormatter{
			DisableTimestamp: true,
			DisableColors:    true,
		}
	case LogFormatJSON:
		return &logrus.JSONFormatter{
			DisableTimestamp: true,
		}
	}
	return nil
}

// Subsys returns a logger tagged with the given subsystem.
func Subsys(name string) *logrus.Entry {
	return DefaultLogger.WithField(logfields.LogSubsys, name)
}

// Discard returns a logger that drops every entry, for tests and library
// callers that do not want output.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
