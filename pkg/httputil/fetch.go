package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/seamcarve/pkg/buildinfo"
	errs "github.com/matzehuels/seamcarve/pkg/errors"
)

const (
	httpTimeout = 30 * time.Second

	// DefaultMaxBytes caps the size of a downloaded image.
	DefaultMaxBytes = 64 << 20
)

// Fetcher downloads images over HTTP.
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
	Backoff  Backoff
}

// NewFetcher creates a Fetcher with a standard timeout and the default
// size limit and backoff.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: httpTimeout},
		MaxBytes: DefaultMaxBytes,
		Backoff:  DefaultBackoff,
	}
}

// IsURL reports whether s names a remote http or https resource.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// Fetch downloads the body at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if !IsURL(rawURL) {
		return nil, errs.New(errs.ErrCodeInvalidPath, "not an http(s) URL: %q", rawURL)
	}

	var data []byte
	err := Retry(ctx, f.Backoff, func() error {
		var err error
		data, err = f.get(ctx, rawURL)
		return err
	})
	if err != nil {
		if errs.GetCode(err) != "" || err == ctx.Err() {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "fetch %s", rawURL)
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "bad URL %q", rawURL)
	}
	req.Header.Set("User-Agent", "seamcarve/"+buildinfo.Version)
	req.Header.Set("Accept", "image/*")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Retryable(err)
	}
	defer resp.Body.Close()

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		return nil, err
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, Retryable(err)
	}
	if int64(len(data)) > limit {
		return nil, errs.New(errs.ErrCodeInvalidInput, "image at %s exceeds %d bytes", rawURL, limit)
	}
	return data, nil
}

func checkStatus(rawURL string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodeFileNotFound, "image not found: %s", rawURL)
	case code >= 500:
		return Retryable(fmt.Errorf("status %d", code))
	default:
		return errs.New(errs.ErrCodeNetwork, "fetch %s: status %d", rawURL, code)
	}
}
