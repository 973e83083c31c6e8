// Package sink persists rendered pixel buffers as encoded image files or streams.
package sink

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/VoidMesh/noisemap/internal/logging"
)

var (
	ErrEncode            = errors.New("encode failure")
	ErrWrite             = errors.New("write failure")
	ErrInvalidBuffer     = errors.New("invalid pixel buffer")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// FileSink encodes a buffer and writes it to Path. The file is written to a
// temporary sibling first and renamed into place, so a failed run never
// leaves a truncated image behind.
type FileSink struct {
	Path   string
	Format Format
}

// NewFileSink returns a sink for path. An empty format is inferred from the
// path's extension.
func NewFileSink(path string, format Format) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty output path", ErrWrite)
	}
	if format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		format = f
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	return &FileSink{Path: path, Format: format}, nil
}

// Write encodes pixels and replaces the file at s.Path, creating the parent
// directory if needed.
func (s *FileSink) Write(pixels []byte, width, height int) error {
	logger := logging.WithFields("path", s.Path, "format", s.Format)

	var buf bytes.Buffer
	if err := encodeBuffer(&buf, pixels, width, height, s.Format); err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create output directory: %w", ErrWrite, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrWrite, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := buf.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %w", ErrWrite, err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("%w: rename into place: %w", ErrWrite, err)
	}

	logger.Debug("Image written", "width", width, "height", height)
	return nil
}

// StreamSink encodes a buffer to an io.Writer, such as an HTTP response.
type StreamSink struct {
	W      io.Writer
	Format Format
}

// NewStreamSink returns a sink writing format-encoded images to w.
func NewStreamSink(w io.Writer, format Format) *StreamSink {
	return &StreamSink{W: w, Format: format}
}

// Write encodes pixels into s.W. Encoder failures wrap ErrEncode; failures of
// the underlying writer wrap ErrWrite.
func (s *StreamSink) Write(pixels []byte, width, height int) error {
	var buf bytes.Buffer
	if err := encodeBuffer(&buf, pixels, width, height, s.Format); err != nil {
		return err
	}
	if _, err := buf.WriteTo(s.W); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func encodeBuffer(buf *bytes.Buffer, pixels []byte, width, height int, format Format) error {
	img, err := ToImage(pixels, width, height)
	if err != nil {
		return err
	}
	if err := Encode(buf, img, format); err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrEncode, format, err)
	}
	return nil
}
