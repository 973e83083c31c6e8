package raster

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/VoidMesh/noisemap/services/noise"
)

// BytesPerPixel is the size of one RGBA pixel in a rendered buffer.
const BytesPerPixel = 4

// Field is a scalar field sampled at pixel coordinates.
type Field interface {
	Value(x, y float64) float64
}

// FieldFunc adapts an ordinary function to Field.
type FieldFunc func(x, y float64) float64

func (f FieldFunc) Value(x, y float64) float64 {
	return f(x, y)
}

// Rasterizer turns a scalar field into a row-major RGBA pixel buffer.
// It holds no per-render state and is safe for concurrent use.
type Rasterizer struct {
	palette *Palette
	mode    IntensityMode
	workers int
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithPalette replaces the default terrain palette.
func WithPalette(p *Palette) Option {
	return func(r *Rasterizer) {
		if p != nil {
			r.palette = p
		}
	}
}

// WithIntensityMode selects the intensity quantization.
func WithIntensityMode(m IntensityMode) Option {
	return func(r *Rasterizer) {
		r.mode = m
	}
}

// WithWorkers sets how many goroutines RenderContext may use. Values <= 1
// render sequentially.
func WithWorkers(n int) Option {
	return func(r *Rasterizer) {
		r.workers = n
	}
}

// New returns a Rasterizer using the default palette and rounding mode.
func New(opts ...Option) *Rasterizer {
	r := &Rasterizer{
		palette: DefaultPalette(),
		mode:    IntensityRound,
		workers: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Palette returns the palette in use.
func (r *Rasterizer) Palette() *Palette {
	return r.palette
}

// Mode returns the intensity mode in use.
func (r *Rasterizer) Mode() IntensityMode {
	return r.mode
}

// Workers returns the configured worker count.
func (r *Rasterizer) Workers() int {
	return r.workers
}

// Render builds the permutation table for seed and rasterizes the fractal
// noise field into a width*height*4 byte buffer. Non-positive dimensions
// yield an empty buffer.
func (r *Rasterizer) Render(width, height, octaves int, seed uint64) []byte {
	return r.RenderField(width, height, noise.NewGenerator(seed, octaves))
}

// RenderField rasterizes f sequentially in row-major order.
func (r *Rasterizer) RenderField(width, height int, f Field) []byte {
	if width <= 0 || height <= 0 {
		return []byte{}
	}

	pixels := make([]byte, 0, width*height*BytesPerPixel)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels = r.palette.AppendPixel(pixels, r.mode.Quantize(f.Value(float64(x), float64(y))))
		}
	}
	return pixels
}

// RenderContext is Render spread across the configured workers. The output
// is byte-identical to Render. Cancellation is checked between rows.
func (r *Rasterizer) RenderContext(ctx context.Context, width, height, octaves int, seed uint64) ([]byte, error) {
	return r.RenderFieldContext(ctx, width, height, noise.NewGenerator(seed, octaves))
}

// RenderFieldContext rasterizes f with up to Workers goroutines, each
// filling whole rows of a preallocated buffer.
func (r *Rasterizer) RenderFieldContext(ctx context.Context, width, height int, f Field) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return []byte{}, nil
	}

	pixels := make([]byte, width*height*BytesPerPixel)
	stride := width * BytesPerPixel

	renderRow := func(y int) {
		row := pixels[y*stride : y*stride : (y+1)*stride]
		for x := 0; x < width; x++ {
			row = r.palette.AppendPixel(row, r.mode.Quantize(f.Value(float64(x), float64(y))))
		}
	}

	if r.workers <= 1 {
		for y := 0; y < height; y++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			renderRow(y)
		}
		return pixels, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for y := 0; y < height; y++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			renderRow(y)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pixels, nil
}
