package config

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/VoidMesh/noisemap/internal/logging"
	"github.com/VoidMesh/noisemap/services/raster"
	"github.com/VoidMesh/noisemap/services/sink"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Generation GenerationConfig
	Server     ServerConfig
	Logging    LoggingConfig
}

// GenerationConfig holds the CLI render settings. Seed is kept as text so
// that "unset" can be told apart from zero.
type GenerationConfig struct {
	Width     int
	Height    int
	Octaves   int
	Seed      string
	Output    string
	Format    string
	Workers   int
	Intensity string
}

// ServerConfig holds the HTTP preview settings. MaxConcurrentRenders bounds
// in-flight texture requests.
type ServerConfig struct {
	Port                 string
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	ShutdownTimeout      time.Duration
	MaxDimension         int
	MaxOctaves           int
	MaxConcurrentRenders int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	return &Config{
		Generation: GenerationConfig{
			Width:     getEnvInt("NOISEMAP_WIDTH", 1024),
			Height:    getEnvInt("NOISEMAP_HEIGHT", 1024),
			Octaves:   getEnvInt("NOISEMAP_OCTAVES", 8),
			Seed:      getEnvStr("NOISEMAP_SEED", ""),
			Output:    getEnvStr("NOISEMAP_OUTPUT", "outputs/test.png"),
			Format:    getEnvStr("NOISEMAP_FORMAT", ""),
			Workers:   getEnvInt("NOISEMAP_WORKERS", runtime.NumCPU()),
			Intensity: getEnvStr("NOISEMAP_INTENSITY", raster.IntensityRound.String()),
		},
		Server: ServerConfig{
			Port:                 getEnvStr("PORT", "8080"),
			ReadTimeout:          getEnvDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:         getEnvDuration("WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:          getEnvDuration("IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:      getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			MaxDimension:         getEnvInt("MAX_DIMENSION", 4096),
			MaxOctaves:           getEnvInt("MAX_OCTAVES", 16),
			MaxConcurrentRenders: getEnvInt("MAX_CONCURRENT_RENDERS", runtime.NumCPU()),
		},
		Logging: LoggingConfig{
			Level:  getEnvStr("LOG_LEVEL", "info"),
			Format: getEnvStr("LOG_FORMAT", logging.FormatText),
		},
	}
}

// Validate reports the first setting that cannot be used. Every error wraps
// ErrInvalidConfig.
func (c *Config) Validate() error {
	g := c.Generation
	switch {
	case g.Width < 0:
		return fmt.Errorf("%w: width %d is negative", ErrInvalidConfig, g.Width)
	case g.Height < 0:
		return fmt.Errorf("%w: height %d is negative", ErrInvalidConfig, g.Height)
	case g.Octaves < 0:
		return fmt.Errorf("%w: octaves %d is negative", ErrInvalidConfig, g.Octaves)
	case g.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidConfig, g.Workers)
	}
	if _, _, err := ParseSeed(g.Seed); err != nil {
		return err
	}
	if _, err := c.OutputFormat(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := raster.ParseIntensityMode(g.Intensity); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	s := c.Server
	if s.MaxDimension <= 0 || s.MaxOctaves < 0 || s.MaxConcurrentRenders <= 0 {
		return fmt.Errorf("%w: server limits must be positive (dimension %d, octaves %d, renders %d)",
			ErrInvalidConfig, s.MaxDimension, s.MaxOctaves, s.MaxConcurrentRenders)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case logging.FormatText, logging.FormatJSON, logging.FormatLogfmt:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// OutputFormat resolves the image format. An empty Format falls back to the
// output path's extension.
func (c *Config) OutputFormat() (sink.Format, error) {
	if c.Generation.Format != "" {
		return sink.ParseFormat(c.Generation.Format)
	}
	return sink.FormatFromPath(c.Generation.Output)
}

// RandomSeed draws a seed from the operating system's entropy source.
func RandomSeed() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// ParseSeed parses a decimal seed. ok is false when s is empty, meaning the
// caller should pick a random seed.
func ParseSeed(s string) (seed uint64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	seed, err = strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: seed %q is not an unsigned 64-bit integer", ErrInvalidConfig, s)
	}
	return seed, true, nil
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
