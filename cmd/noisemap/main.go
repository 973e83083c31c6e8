package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VoidMesh/noisemap/internal/config"
	"github.com/VoidMesh/noisemap/internal/logging"
	"github.com/VoidMesh/noisemap/services/raster"
	"github.com/VoidMesh/noisemap/services/sink"
	"github.com/VoidMesh/noisemap/services/texture"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run renders one texture. Randomly chosen seeds go to stdout so a run can be
// repeated; the summary and errors go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	gen := &cfg.Generation

	fs := flag.NewFlagSet("noisemap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&gen.Width, "width", gen.Width, "Image width in pixels")
	fs.IntVar(&gen.Height, "height", gen.Height, "Image height in pixels")
	fs.IntVar(&gen.Octaves, "octaves", gen.Octaves, "Number of fBm octaves")
	fs.StringVar(&gen.Seed, "seed", gen.Seed, "Permutation seed (unsigned 64-bit, random when empty)")
	fs.StringVar(&gen.Output, "output", gen.Output, "Output image path")
	fs.StringVar(&gen.Format, "format", gen.Format, "Image format (png, bmp, tiff); inferred from -output when empty")
	fs.IntVar(&gen.Workers, "workers", gen.Workers, "Rows rendered in parallel")
	fs.StringVar(&gen.Intensity, "intensity", gen.Intensity, "Intensity quantization (round, truncate)")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Logging.Format, "log-format", cfg.Logging.Format, "Log format (text, json, logfmt)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "noisemap:", err)
		return 2
	}
	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)
	logging.GetLogger().Debug("Configuration loaded",
		"width", gen.Width, "height", gen.Height, "octaves", gen.Octaves,
		"output", gen.Output, "workers", gen.Workers, "intensity", gen.Intensity)

	seed, ok, _ := config.ParseSeed(gen.Seed)
	if !ok {
		var err error
		if seed, err = config.RandomSeed(); err != nil {
			fmt.Fprintln(stderr, "noisemap:", err)
			return 1
		}
		fmt.Fprintf(stdout, "Seed: %d\n", seed)
	}

	// Validate has already accepted both of these.
	format, _ := cfg.OutputFormat()
	mode, _ := raster.ParseIntensityMode(gen.Intensity)

	fileSink, err := sink.NewFileSink(gen.Output, format)
	if err != nil {
		fmt.Fprintln(stderr, "noisemap:", err)
		return 1
	}

	service := texture.NewServiceWithDefaultLogger(raster.New(
		raster.WithIntensityMode(mode),
		raster.WithWorkers(gen.Workers),
	))

	result, err := service.Generate(ctx, texture.Params{
		Width:   gen.Width,
		Height:  gen.Height,
		Octaves: gen.Octaves,
		Seed:    seed,
	}, fileSink)
	if err != nil {
		logging.WithSeed(seed).Error("Generation failed", "error", err)
		fmt.Fprintln(stderr, "noisemap:", err)
		return 1
	}

	logging.WithDuration("generate", result.Duration).Debug("Run complete", "bytes", result.Bytes)
	fmt.Fprintf(stderr, "Wrote %s (%dx%d, %d octaves, seed %d, %s) in %s\n",
		fileSink.Path, result.Width, result.Height, result.Octaves, result.Seed, format, result.Duration.Round(time.Microsecond))
	return 0
}
