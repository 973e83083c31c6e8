package logging

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var Logger *log.Logger

// LogLevel represents available log levels
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Output formats accepted by Configure.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// InitLogger initializes the global logger with configuration from environment variables
func InitLogger() {
	Logger = log.New(os.Stderr)

	logLevel := ParseLevel(os.Getenv("LOG_LEVEL"))
	setLogLevel(Logger, logLevel)

	Logger.SetReportTimestamp(true)
	Logger.SetPrefix("noisemap")

	Logger.Debug("Logger initialized successfully", "level", logLevel)
}

// Configure applies an explicit level and output format to the global logger,
// initializing it first if needed. Unknown formats fall back to text.
func Configure(level, format string) {
	logger := GetLogger()
	setLogLevel(logger, ParseLevel(level))

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		logger.SetFormatter(log.JSONFormatter)
	case FormatLogfmt:
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
		logger.SetReportCaller(logger.GetLevel() == log.DebugLevel)
	}
}

// ParseLevel maps a case-insensitive level name to a LogLevel. Unknown or
// empty names default to debug for maximum visibility.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return DebugLevel
	}
}

// ValidLevel reports whether s names a known log level.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// setLogLevel configures the logger with the specified level
func setLogLevel(logger *log.Logger, level LogLevel) {
	switch level {
	case DebugLevel:
		logger.SetLevel(log.DebugLevel)
	case InfoLevel:
		logger.SetLevel(log.InfoLevel)
	case WarnLevel:
		logger.SetLevel(log.WarnLevel)
	case ErrorLevel:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.DebugLevel)
	}
}

// GetLogger returns the global logger instance
func GetLogger() *log.Logger {
	if Logger == nil {
		InitLogger()
	}
	return Logger
}

// WithFields creates a logger with contextual fields
func WithFields(fields ...interface{}) *log.Logger {
	return GetLogger().With(fields...)
}

// WithSeed creates a logger with seed context
func WithSeed(seed uint64) *log.Logger {
	return WithFields("seed", seed)
}

// WithDimensions creates a logger with image size context
func WithDimensions(width, height, octaves int) *log.Logger {
	return WithFields("width", width, "height", height, "octaves", octaves)
}

// WithDuration creates a logger with duration context (for performance logging)
func WithDuration(operation string, duration time.Duration) *log.Logger {
	return WithFields("operation", operation, "duration", duration)
}
