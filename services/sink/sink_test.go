package sink

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/noisemap/internal/testutil"
)

// testPixels returns a small buffer with distinct, fully opaque pixels.
func testPixels(width, height int) []byte {
	pixels := make([]byte, 0, width*height*4)
	for i := 0; i < width*height; i++ {
		pixels = append(pixels, uint8(i*13), uint8(i*29), uint8(255-i), 255)
	}
	return pixels
}

func assertImageMatches(t *testing.T, img image.Image, pixels []byte, width, height int) {
	t.Helper()

	require.Equal(t, image.Rect(0, 0, width, height), img.Bounds())
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			want := color.RGBA{pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]}
			got := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			require.Equal(t, want, got, "pixel (%d, %d)", x, y)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
		wantErr  bool
	}{
		{in: "png", expected: FormatPNG},
		{in: ".PNG", expected: FormatPNG},
		{in: "bmp", expected: FormatBMP},
		{in: "tif", expected: FormatTIFF},
		{in: " tiff ", expected: FormatTIFF},
		{in: "jpeg", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestFormat_Metadata(t *testing.T) {
	assert.Equal(t, "image/png", FormatPNG.ContentType())
	assert.Equal(t, "image/bmp", FormatBMP.ContentType())
	assert.Equal(t, "image/tiff", FormatTIFF.ContentType())
	assert.Equal(t, ".png", FormatPNG.Extension())
	assert.Equal(t, ".tiff", FormatTIFF.Extension())
	assert.Len(t, Formats(), 3)

	f, err := FormatFromPath("outputs/test.TIF")
	require.NoError(t, err)
	assert.Equal(t, FormatTIFF, f)
}

func TestToImage_Validation(t *testing.T) {
	tests := []struct {
		name          string
		pixels        []byte
		width, height int
	}{
		{name: "zero width", pixels: nil, width: 0, height: 4},
		{name: "short buffer", pixels: make([]byte, 15), width: 2, height: 2},
		{name: "long buffer", pixels: make([]byte, 17), width: 2, height: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ToImage(tt.pixels, tt.width, tt.height)
			assert.Nil(t, img)
			assert.ErrorIs(t, err, ErrInvalidBuffer)
		})
	}
}

func TestToImage_SharesBuffer(t *testing.T) {
	pixels := testPixels(3, 2)
	img, err := ToImage(pixels, 3, 2)
	require.NoError(t, err)

	assert.Equal(t, 12, img.Stride)
	assert.Equal(t, color.RGBA{pixels[4], pixels[5], pixels[6], 255}, img.RGBAAt(1, 0))
}

func TestFileSink_RoundTrip(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	width, height := 7, 5
	pixels := testPixels(width, height)

	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out"+format.Extension())

			s, err := NewFileSink(path, "")
			require.NoError(t, err)
			assert.Equal(t, format, s.Format)

			require.NoError(t, s.Write(pixels, width, height))

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()

			img, name, err := image.Decode(f)
			require.NoError(t, err)
			assert.Equal(t, string(format), name)
			assertImageMatches(t, img, pixels, width, height)

			leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
			require.NoError(t, err)
			assert.Empty(t, leftovers, "temporary files should be cleaned up")
		})
	}
}

func TestFileSink_OverwritesExisting(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	s, err := NewFileSink(path, FormatPNG)
	require.NoError(t, err)
	require.NoError(t, s.Write(testPixels(2, 2), 2, 2))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestFileSink_Errors(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	t.Run("invalid buffer", func(t *testing.T) {
		s, err := NewFileSink(filepath.Join(t.TempDir(), "out.png"), "")
		require.NoError(t, err)
		assert.ErrorIs(t, s.Write(make([]byte, 3), 1, 1), ErrInvalidBuffer)
	})

	t.Run("parent is a file", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0o644))

		s, err := NewFileSink(filepath.Join(blocker, "out.png"), "")
		require.NoError(t, err)

		err = s.Write(testPixels(1, 1), 1, 1)
		assert.ErrorIs(t, err, ErrWrite)
		assert.NotErrorIs(t, err, ErrEncode)
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := NewFileSink("out.webp", "")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("unknown explicit format", func(t *testing.T) {
		_, err := NewFileSink("out.png", Format("gif"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewFileSink("", FormatPNG)
		assert.ErrorIs(t, err, ErrWrite)
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestStreamSink(t *testing.T) {
	pixels := testPixels(4, 3)

	t.Run("encodes to writer", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewStreamSink(&buf, FormatBMP).Write(pixels, 4, 3))

		img, name, err := image.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, "bmp", name)
		assertImageMatches(t, img, pixels, 4, 3)
	})

	t.Run("writer failure", func(t *testing.T) {
		err := NewStreamSink(failingWriter{}, FormatPNG).Write(pixels, 4, 3)
		assert.ErrorIs(t, err, ErrWrite)
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("unsupported format", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewStreamSink(&buf, Format("gif")).Write(pixels, 4, 3)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.Zero(t, buf.Len())
	})
}
