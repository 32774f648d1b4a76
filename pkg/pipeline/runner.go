package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/seamcarve/pkg/cache"
	errs "github.com/matzehuels/seamcarve/pkg/errors"
	"github.com/matzehuels/seamcarve/pkg/imageio"
	"github.com/matzehuels/seamcarve/pkg/observability"
	"github.com/matzehuels/seamcarve/pkg/seam"
)

// Artifact kinds, used in cache hook events and log lines.
const (
	KindCarve  = "carve"
	KindEnergy = "energy"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// entry is the cached form of an artifact. Dimensions are stored alongside
// the encoded bytes so a hit does not need to decode anything.
type entry struct {
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	OrigWidth int    `json:"orig_width"`
	Data      []byte `json:"data"`
}

// Carve removes opts.Columns vertical seams from the encoded image in input
// and returns the re-encoded result. Requests for more seams than the image
// allows are clamped so at least one column survives.
func (r *Runner) Carve(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := newResult(input)
	logger := opts.Logger.With("run", result.RunID)

	inputFormat, err := sniffFormat(input, opts.MaxPixels)
	if err != nil {
		return nil, err
	}
	format := opts.OutputFormat(inputFormat)
	result.CacheInfo.Key = r.Keyer.CarveKey(cache.Hash(input), opts.CarveKeyOpts(format))

	if e, ok := r.lookup(ctx, logger, result.CacheInfo.Key, KindCarve, opts.Refresh); ok {
		result.fromEntry(e)
		logger.Info("carved image (cached)", "width", result.Width, "removed", result.Removed)
		return result, nil
	}

	src, err := r.decode(input, result)
	if err != nil {
		return nil, err
	}
	result.OrigWidth = src.Width
	result.Removed = seam.Columns(src.Width, opts.Columns)
	if result.Removed < opts.Columns {
		logger.Warn("clamped column count", "requested", opts.Columns, "width", src.Width, "removed", result.Removed)
	}

	observability.Pipeline().OnCarveStart(ctx, src.Width, src.Height, opts.Columns)
	carveStart := time.Now()
	carver := opts.Carver()
	out, err := carver.Carve(ctx, src, opts.Columns)
	result.Stats.CarveTime = time.Since(carveStart)
	observability.Pipeline().OnCarveComplete(ctx, result.Removed, result.Stats.CarveTime, err)
	if err != nil {
		return nil, err
	}

	logger.Debug("removed seams",
		"seams", result.Removed,
		"direction", opts.Direction,
		"luma", opts.Luma,
		"workers", opts.Workers,
		"duration", result.Stats.CarveTime)

	if err := r.encode(seam.ToImage(out), format, opts, result); err != nil {
		return nil, err
	}

	r.store(ctx, logger, result, KindCarve, cache.TTLCarve)

	logger.Info("carved image",
		"from", src.Width,
		"to", result.Width,
		"height", result.Height,
		"format", result.Format,
		"duration", result.Stats.CarveTime)

	return result, nil
}

// Energy renders the normalised energy map of the encoded image in input as
// a grayscale image.
func (r *Runner) Energy(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := newResult(input)
	logger := opts.Logger.With("run", result.RunID)

	inputFormat, err := sniffFormat(input, opts.MaxPixels)
	if err != nil {
		return nil, err
	}
	format := opts.OutputFormat(inputFormat)
	result.CacheInfo.Key = r.Keyer.EnergyKey(cache.Hash(input), opts.EnergyKeyOpts(format))

	if e, ok := r.lookup(ctx, logger, result.CacheInfo.Key, KindEnergy, opts.Refresh); ok {
		result.fromEntry(e)
		logger.Info("energy map (cached)", "width", result.Width, "height", result.Height)
		return result, nil
	}

	src, err := r.decode(input, result)
	if err != nil {
		return nil, err
	}
	result.OrigWidth = src.Width

	observability.Pipeline().OnEnergyStart(ctx, src.Width, src.Height)
	start := time.Now()
	energy := seam.Energy(src, seam.EnergyOptions{Luma: seam.Luma(opts.Luma), Workers: opts.Workers})
	result.Stats.CarveTime = time.Since(start)
	observability.Pipeline().OnEnergyComplete(ctx, result.Stats.CarveTime, nil)

	if err := r.encode(seam.GrayImage(energy), format, opts, result); err != nil {
		return nil, err
	}

	r.store(ctx, logger, result, KindEnergy, cache.TTLEnergy)

	logger.Info("energy map",
		"width", result.Width,
		"height", result.Height,
		"format", result.Format,
		"duration", result.Stats.CarveTime)

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// lookup reads an artifact from cache. Backend errors and undecodable
// entries are logged and treated as misses.
func (r *Runner) lookup(ctx context.Context, logger *log.Logger, key, kind string, refresh bool) (entry, bool) {
	if refresh {
		logger.Debug("cache bypassed", "kind", kind)
		return entry{}, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "kind", kind, "err", err)
		return entry{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, kind)
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil || len(e.Data) == 0 {
		logger.Debug("discarding corrupt cache entry", "kind", kind)
		observability.Cache().OnCacheMiss(ctx, kind)
		return entry{}, false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return e, true
}

// store writes the artifact of result to cache. Failures only cost a
// recompute next time, so they are logged and dropped.
func (r *Runner) store(ctx context.Context, logger *log.Logger, result *Result, kind string, ttl time.Duration) {
	data, err := json.Marshal(entry{
		Format:    result.Format,
		Width:     result.Width,
		Height:    result.Height,
		OrigWidth: result.OrigWidth,
		Data:      result.Artifact,
	})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, result.CacheInfo.Key, data, ttl); err != nil {
		logger.Warn("cache write failed", "kind", kind, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

func (r *Runner) decode(input []byte, result *Result) (*seam.ColorImage, error) {
	start := time.Now()
	img, _, err := imageio.DecodeBytes(input)
	if err != nil {
		return nil, err
	}
	src := seam.FromImage(img)
	result.Stats.DecodeTime = time.Since(start)
	if src.Empty() {
		return nil, errs.New(errs.ErrCodeDecode, "image has no pixels (%s)", src)
	}
	return src, nil
}

func (r *Runner) encode(img image.Image, format string, opts Options, result *Result) error {
	start := time.Now()
	data, err := imageio.EncodeBytes(img, format, imageio.Options{JPEGQuality: opts.JPEGQuality})
	if err != nil {
		return err
	}
	b := img.Bounds()
	result.Artifact = data
	result.Format = format
	result.Width = b.Dx()
	result.Height = b.Dy()
	result.Stats.EncodeTime = time.Since(start)
	result.Stats.OutputBytes = len(data)
	return nil
}

func newResult(input []byte) *Result {
	return &Result{
		RunID: uuid.NewString(),
		Stats: Stats{InputBytes: len(input)},
	}
}

func (res *Result) fromEntry(e entry) {
	res.Artifact = e.Data
	res.Format = e.Format
	res.Width = e.Width
	res.Height = e.Height
	res.OrigWidth = e.OrigWidth
	res.Removed = e.OrigWidth - e.Width
	res.Stats.OutputBytes = len(e.Data)
	res.CacheInfo.Hit = true
}

// sniffFormat reports the registered format name of an encoded image
// without decoding its pixels. Images larger than maxPixels are rejected
// before any pixel buffer is allocated.
func sniffFormat(input []byte, maxPixels int) (string, error) {
	if len(input) == 0 {
		return "", errs.New(errs.ErrCodeDecode, "empty image data")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(input))
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeDecode, err, "unrecognised image data")
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(maxPixels) {
		return "", errs.New(errs.ErrCodeInvalidInput, "image is %d×%d (%d pixels), limit is %d pixels",
			cfg.Width, cfg.Height, pixels, maxPixels)
	}
	return format, nil
}
