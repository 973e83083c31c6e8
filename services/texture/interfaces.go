package texture

import (
	"github.com/VoidMesh/noisemap/internal/logging"
)

//go:generate go tool mockgen -source=interfaces.go -destination=../../internal/testmocks/texture/mock_interfaces.go -package=mocktexture

// ImageSink persists a finished row-major RGBA buffer.
type ImageSink interface {
	Write(pixels []byte, width, height int) error
}

// LoggerInterface abstracts logging operations for dependency injection.
type LoggerInterface interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) LoggerInterface
}

// DefaultLoggerWrapper wraps the internal logging package.
type DefaultLoggerWrapper struct {
	fields []interface{}
}

// NewDefaultLoggerWrapper creates a new default logger wrapper.
func NewDefaultLoggerWrapper() LoggerInterface {
	return &DefaultLoggerWrapper{}
}

func (l *DefaultLoggerWrapper) Debug(msg string, keysAndValues ...interface{}) {
	logging.WithFields(l.fields...).Debug(msg, keysAndValues...)
}

func (l *DefaultLoggerWrapper) Info(msg string, keysAndValues ...interface{}) {
	logging.WithFields(l.fields...).Info(msg, keysAndValues...)
}

func (l *DefaultLoggerWrapper) Warn(msg string, keysAndValues ...interface{}) {
	logging.WithFields(l.fields...).Warn(msg, keysAndValues...)
}

func (l *DefaultLoggerWrapper) Error(msg string, keysAndValues ...interface{}) {
	logging.WithFields(l.fields...).Error(msg, keysAndValues...)
}

func (l *DefaultLoggerWrapper) With(keysAndValues ...interface{}) LoggerInterface {
	fields := append(append([]interface{}(nil), l.fields...), keysAndValues...)
	return &DefaultLoggerWrapper{fields: fields}
}
