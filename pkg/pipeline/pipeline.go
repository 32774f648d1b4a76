// Package pipeline provides the decode → carve → encode pipeline for seamcarve.
//
// The CLI and the HTTP API both run images through a [Runner] so that
// validation, defaults, caching and logging behave the same on every entry
// point.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Carve(ctx, imageBytes, pipeline.Options{
//	    Columns: 10,
//	    Format:  "png",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.png", result.Artifact, 0644)
//
// Results are cached by a hash of the input bytes plus every option that
// changes the output, so repeating a request is served without carving.
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seamcarve/pkg/cache"
	errs "github.com/matzehuels/seamcarve/pkg/errors"
	"github.com/matzehuels/seamcarve/pkg/imageio"
	"github.com/matzehuels/seamcarve/pkg/seam"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultColumns is the number of seams removed when the caller does not
	// say otherwise.
	DefaultColumns = 10

	// DefaultDirection is the default seam sweep direction.
	DefaultDirection = string(seam.DefaultDirection)

	// DefaultLuma is the default grayscale conversion.
	DefaultLuma = string(seam.DefaultLuma)

	// DefaultMaxPixels caps width×height of decoded inputs (50 megapixels).
	// Decoding and carving allocate several buffers of that size.
	DefaultMaxPixels = 50_000_000

	// FallbackFormat is used when the input format cannot be written back,
	// e.g. for WebP inputs.
	FallbackFormat = imageio.FormatPNG
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Columns     int    `json:"columns"`
	Direction   string `json:"direction,omitempty"`
	Luma        string `json:"luma,omitempty"`
	Format      string `json:"format,omitempty"` // empty keeps the input format
	JPEGQuality int    `json:"jpeg_quality,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"` // skip cache reads

	// Runtime options (not serialized)
	MaxPixels int               `json:"-"` // zero selects DefaultMaxPixels
	Workers   int               `json:"-"`
	Logger    *log.Logger       `json:"-"`
	Progress  seam.ProgressFunc `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// Artifact is the encoded output image.
	Artifact []byte

	// Format is the output format of Artifact.
	Format string

	// Width and Height are the output dimensions.
	Width, Height int

	// OrigWidth is the width of the decoded input.
	OrigWidth int

	// Removed is the number of seams actually removed.
	Removed int

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the artifact came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
// Timings are zero for stages skipped by a cache hit.
type Stats struct {
	InputBytes  int
	OutputBytes int
	DecodeTime  time.Duration
	CarveTime   time.Duration
	EncodeTime  time.Duration
}

// CacheInfo tracks the cache lookup of a run.
type CacheInfo struct {
	Key string // Cache key of the artifact
	Hit bool   // Whether the artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateDirection checks that a seam direction is valid.
func ValidateDirection(direction string) error {
	if _, err := seam.ParseDirection(direction); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidDirection, err, "invalid direction")
	}
	return nil
}

// ValidateLuma checks that a luma mode is valid.
func ValidateLuma(luma string) error {
	if _, err := seam.ParseLuma(luma); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidLuma, err, "invalid luma")
	}
	return nil
}

// ValidateJPEGQuality checks a JPEG quality setting. Zero selects the default.
func ValidateJPEGQuality(q int) error {
	if q < 0 || q > 100 {
		return errs.New(errs.ErrCodeInvalidInput, "jpeg quality must be between 1 and 100: %d", q)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errs.ValidateColumns(o.Columns); err != nil {
		return err
	}
	if err := ValidateDirection(o.Direction); err != nil {
		return err
	}
	if err := ValidateLuma(o.Luma); err != nil {
		return err
	}
	if err := ValidateJPEGQuality(o.JPEGQuality); err != nil {
		return err
	}
	if o.Format != "" {
		f, err := imageio.ParseFormat(o.Format)
		if err != nil {
			return err
		}
		o.Format = f
	}
	if o.Workers < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "workers must not be negative: %d", o.Workers)
	}
	if o.MaxPixels < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max pixels must not be negative: %d", o.MaxPixels)
	}
	o.SetDefaults()
	o.validated = true
	return nil
}

// SetDefaults fills in zero-valued fields. Columns is left alone since zero
// is a valid request.
func (o *Options) SetDefaults() {
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if o.Luma == "" {
		o.Luma = DefaultLuma
	}
	if o.JPEGQuality == 0 {
		o.JPEGQuality = imageio.DefaultJPEGQuality
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MaxPixels == 0 {
		o.MaxPixels = DefaultMaxPixels
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// OutputFormat resolves the output format for an input stored as inputFormat.
func (o *Options) OutputFormat(inputFormat string) string {
	if o.Format != "" {
		return o.Format
	}
	if f, err := imageio.ParseFormat(inputFormat); err == nil {
		return f
	}
	return FallbackFormat
}

// Carver returns a seam carver configured from the options.
func (o *Options) Carver() seam.Carver {
	return seam.Carver{
		Direction: seam.Direction(o.Direction),
		Luma:      seam.Luma(o.Luma),
		Workers:   o.Workers,
		Progress:  o.Progress,
	}
}

// CarveKeyOpts returns cache key options for a carved image.
func (o *Options) CarveKeyOpts(format string) cache.CarveKeyOpts {
	opts := cache.CarveKeyOpts{
		Columns:   o.Columns,
		Direction: o.Direction,
		Luma:      o.Luma,
		Format:    format,
	}
	if format == imageio.FormatJPEG {
		opts.JPEGQuality = o.JPEGQuality
	}
	return opts
}

// EnergyKeyOpts returns cache key options for an energy map.
func (o *Options) EnergyKeyOpts(format string) cache.EnergyKeyOpts {
	opts := cache.EnergyKeyOpts{
		Luma:   o.Luma,
		Format: format,
	}
	if format == imageio.FormatJPEG {
		opts.JPEGQuality = o.JPEGQuality
	}
	return opts
}
