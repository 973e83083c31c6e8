package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"github.com/VoidMesh/noisemap/internal/config"
	"github.com/VoidMesh/noisemap/internal/logging"
	"github.com/VoidMesh/noisemap/services/raster"
	"github.com/VoidMesh/noisemap/services/sink"
	"github.com/VoidMesh/noisemap/services/texture"
)

const (
	// SeedHeader carries the seed a texture was rendered from.
	SeedHeader = "X-Noisemap-Seed"

	defaultTextureSize = 256
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// Limits bound what a single request may ask for.
type Limits struct {
	MaxDimension         int
	MaxOctaves           int
	MaxConcurrentRenders int
	RequestTimeout       time.Duration
}

type Handler struct {
	// One service per intensity mode; the rasterizer fixes its mode.
	services map[raster.IntensityMode]*texture.Service
	palette  *raster.Palette
	limits   Limits
	octaves  int
}

func NewHandler(cfg *config.Config) *Handler {
	limits := Limits{
		MaxDimension:         cfg.Server.MaxDimension,
		MaxOctaves:           cfg.Server.MaxOctaves,
		MaxConcurrentRenders: max(cfg.Server.MaxConcurrentRenders, 1),
		RequestTimeout:       cfg.Server.WriteTimeout,
	}
	if limits.RequestTimeout <= 0 {
		limits.RequestTimeout = 30 * time.Second
	}

	palette := raster.DefaultPalette()
	services := make(map[raster.IntensityMode]*texture.Service, 2)
	for _, mode := range []raster.IntensityMode{raster.IntensityRound, raster.IntensityTruncate} {
		rasterizer := raster.New(
			raster.WithPalette(palette),
			raster.WithIntensityMode(mode),
			raster.WithWorkers(cfg.Generation.Workers),
		)
		services[mode] = texture.NewServiceWithDefaultLogger(rasterizer)
	}

	return &Handler{
		services: services,
		palette:  palette,
		limits:   limits,
		octaves:  min(cfg.Generation.Octaves, cfg.Server.MaxOctaves),
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "noisemap",
		"version":   "1.0.0",
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

func (h *Handler) GetPalette(w http.ResponseWriter, r *http.Request) {
	formats := make([]string, 0, len(sink.Formats()))
	for _, f := range sink.Formats() {
		formats = append(formats, string(f))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"bands":           h.palette.Bands(),
		"formats":         formats,
		"intensity_modes": []string{raster.IntensityRound.String(), raster.IntensityTruncate.String()},
		"limits": map[string]int{
			"max_dimension": h.limits.MaxDimension,
			"max_octaves":   h.limits.MaxOctaves,
		},
	})
}

// GetTexture renders and encodes one texture. Without a seed parameter a
// random seed is drawn and the response is marked uncacheable.
func (h *Handler) GetTexture(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	seed, seeded, err := config.ParseSeed(q.Get("seed"))
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "seed must be an unsigned 64-bit integer", nil)
		return
	}
	if !seeded {
		if seed, err = config.RandomSeed(); err != nil {
			h.renderError(w, r, http.StatusInternalServerError, "failed to pick a seed", err)
			return
		}
	}

	params := texture.Params{Seed: seed}
	if params.Width, err = h.dimension(q, "width"); err != nil {
		h.renderError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if params.Height, err = h.dimension(q, "height"); err != nil {
		h.renderError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if params.Octaves, err = queryInt(q, "octaves", h.octaves); err != nil ||
		params.Octaves < 0 || params.Octaves > h.limits.MaxOctaves {
		h.renderError(w, r, http.StatusBadRequest,
			fmt.Sprintf("octaves must be an integer between 0 and %d", h.limits.MaxOctaves), nil)
		return
	}

	format := sink.FormatPNG
	if v := q.Get("format"); v != "" {
		if format, err = sink.ParseFormat(v); err != nil {
			h.renderError(w, r, http.StatusBadRequest, "unsupported format", nil)
			return
		}
	}

	mode, err := raster.ParseIntensityMode(q.Get("intensity"))
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "unknown intensity mode", nil)
		return
	}

	var buf bytes.Buffer
	if _, err := h.services[mode].Generate(r.Context(), params, sink.NewStreamSink(&buf, format)); err != nil {
		switch {
		case errors.Is(err, texture.ErrInvalidParams):
			h.renderError(w, r, http.StatusBadRequest, "invalid texture parameters", nil)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.renderError(w, r, http.StatusServiceUnavailable, "render did not finish in time", nil)
		default:
			logging.WithSeed(seed).Error("failed to generate texture", "error", err)
			h.renderError(w, r, http.StatusInternalServerError, "failed to generate texture", err)
		}
		return
	}

	header := w.Header()
	header.Set("Content-Type", format.ContentType())
	header.Set("Content-Length", strconv.Itoa(buf.Len()))
	header.Set(SeedHeader, strconv.FormatUint(seed, 10))
	if seeded {
		// Output depends only on the query, so an explicit seed is cacheable forever.
		header.Set("Cache-Control", "public, max-age=31536000, immutable")
	} else {
		header.Set("Cache-Control", "no-store")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.WithSeed(seed).Warn("failed to send texture", "error", err)
	}
}

func (h *Handler) dimension(q url.Values, key string) (int, error) {
	v, err := queryInt(q, key, defaultTextureSize)
	if err != nil || v < 1 || v > h.limits.MaxDimension {
		return 0, fmt.Errorf("%s must be an integer between 1 and %d", key, h.limits.MaxDimension)
	}
	return v, nil
}

func queryInt(q url.Values, key string, defaultValue int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	errorResponse := ErrorResponse{
		Error:   message,
		Code:    status,
		Message: message,
	}

	if err != nil {
		logging.WithFields("status", status).Error("API error", "error", err, "message", message)
		// Don't expose internal errors to the client
		if status >= 500 {
			errorResponse.Error = "Internal server error"
		}
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse)
}
