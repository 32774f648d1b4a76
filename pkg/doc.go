// Package pkg provides the core libraries for seamcarve content-aware image
// resizing.
//
// # Overview
//
// Seamcarve narrows an image by repeatedly removing the connected vertical
// path of pixels with the least visual energy. The pkg directory is organized
// into three areas:
//
//  1. [seam] - Domain logic (energy, cumulative cost, seam tracing, removal)
//  2. [pipeline] - Orchestration (decode → carve → encode, with caching)
//  3. Infrastructure ([imageio], [cache], [httputil], [errors],
//     [observability], [buildinfo])
//
// # Architecture
//
// The typical data flow through seamcarve:
//
//	Image bytes (file, URL, stdin, HTTP body)
//	         ↓
//	    [imageio] package (decode, EXIF orientation)
//	         ↓
//	    [seam] package (energy → accumulate → trace → remove, N times)
//	         ↓
//	    [imageio] package (encode PNG/JPEG/GIF/BMP/TIFF)
//
// [pipeline.Runner] wraps these steps and consults a [cache.Cache] keyed by
// the input hash and the carving options.
//
// # Quick Start
//
// Carve ten seams from an image in memory:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/seamcarve/pkg/cache"
//	    "github.com/matzehuels/seamcarve/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	defer runner.Close()
//
//	res, err := runner.Carve(context.Background(), data, pipeline.Options{Columns: 10})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("narrow.png", res.Artifact, 0644)
//
// Or drive the stages directly:
//
//	img := seam.FromImage(decoded)
//	var c seam.Carver
//	out, err := c.Carve(ctx, img, 10)
//
// # Main Packages
//
// [seam] - The carving algorithm. Pure functions over [seam.Grid] values plus
// the [seam.Carver] driver, which clamps the seam count and honours
// cancellation between seams.
//
// [pipeline] - Option validation, cache lookup, decoding, carving and
// encoding. Used by both the CLI and the HTTP API so they behave the same.
//
// [imageio] - Image decoding and encoding on top of disintegration/imaging.
//
// [cache] - Artifact caches: file (CLI), Redis and MongoDB (shared API
// deployments), and a null cache.
//
// [httputil] - Fetching input images over HTTP with retry and size limits.
//
// [errors] - Structured error codes shared by every entry point.
//
// [observability] - Hooks for carve, cache and HTTP events.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/seam/...     # Specific package
//	go test -run Example       # Examples only
//
// [seam]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/seam
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/pipeline
// [imageio]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/imageio
// [cache]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/buildinfo
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/pipeline#Runner
// [cache.Cache]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/cache#Cache
// [seam.Grid]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/seam#Grid
// [seam.Carver]: https://pkg.go.dev/github.com/matzehuels/seamcarve/pkg/seam#Carver
package pkg
