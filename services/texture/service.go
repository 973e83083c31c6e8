package texture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VoidMesh/noisemap/services/raster"
)

var ErrInvalidParams = errors.New("invalid texture parameters")

// Params describes one generation run.
type Params struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Octaves int    `json:"octaves"`
	Seed    uint64 `json:"seed"`
}

// Validate rejects negative dimensions and octave counts.
func (p Params) Validate() error {
	switch {
	case p.Width < 0:
		return fmt.Errorf("%w: width %d is negative", ErrInvalidParams, p.Width)
	case p.Height < 0:
		return fmt.Errorf("%w: height %d is negative", ErrInvalidParams, p.Height)
	case p.Octaves < 0:
		return fmt.Errorf("%w: octaves %d is negative", ErrInvalidParams, p.Octaves)
	}
	return nil
}

// Result summarises a completed generation run.
type Result struct {
	Params
	Bytes    int           `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

// Service renders noise textures and hands them to an ImageSink.
type Service struct {
	logger     LoggerInterface
	rasterizer *raster.Rasterizer
}

// NewService creates a new texture service with dependency injection.
func NewService(rasterizer *raster.Rasterizer, logger LoggerInterface) *Service {
	if rasterizer == nil {
		rasterizer = raster.New()
	}
	componentLogger := logger.With("component", "texture-service")
	componentLogger.Debug("Creating new texture service",
		"workers", rasterizer.Workers(), "intensity", rasterizer.Mode().String())
	return &Service{
		logger:     componentLogger,
		rasterizer: rasterizer,
	}
}

// NewServiceWithDefaultLogger creates a service with the default logger (convenience constructor for production use).
func NewServiceWithDefaultLogger(rasterizer *raster.Rasterizer) *Service {
	return NewService(rasterizer, NewDefaultLoggerWrapper())
}

// Rasterizer returns the rasterizer the service renders with.
func (s *Service) Rasterizer() *raster.Rasterizer {
	return s.rasterizer
}

// Render validates p and returns the raw pixel buffer. Zero dimensions yield
// an empty buffer.
func (s *Service) Render(ctx context.Context, p Params) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	logger := s.logger.With("seed", p.Seed, "width", p.Width, "height", p.Height, "octaves", p.Octaves)
	logger.Debug("Rendering noise field")

	pixels, err := s.rasterizer.RenderContext(ctx, p.Width, p.Height, p.Octaves, p.Seed)
	if err != nil {
		logger.Warn("Render aborted", "error", err)
		return nil, fmt.Errorf("render aborted: %w", err)
	}
	return pixels, nil
}

// Generate renders p and writes the result to sink. A sink can only persist
// a non-empty image, so zero dimensions are rejected here.
func (s *Service) Generate(ctx context.Context, p Params, sink ImageSink) (*Result, error) {
	if p.Width == 0 || p.Height == 0 {
		return nil, fmt.Errorf("%w: image must be at least 1x1, got %dx%d", ErrInvalidParams, p.Width, p.Height)
	}

	start := time.Now()
	pixels, err := s.Render(ctx, p)
	if err != nil {
		return nil, err
	}
	renderTime := time.Since(start)

	logger := s.logger.With("seed", p.Seed)
	if err := sink.Write(pixels, p.Width, p.Height); err != nil {
		logger.Error("Failed to write texture", "error", err)
		return nil, fmt.Errorf("failed to write texture: %w", err)
	}

	result := &Result{
		Params:   p,
		Bytes:    len(pixels),
		Duration: time.Since(start),
	}
	logger.Info("Texture generated",
		"width", p.Width, "height", p.Height, "octaves", p.Octaves,
		"render_duration", renderTime, "duration", result.Duration)
	return result, nil
}
