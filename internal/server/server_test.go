package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/seamcarve/pkg/cache"
	"github.com/matzehuels/seamcarve/pkg/imageio"
	"github.com/matzehuels/seamcarve/pkg/observability"
	"github.com/matzehuels/seamcarve/pkg/pipeline"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 29), G: uint8(y * 41), B: uint8(x ^ y), A: 255})
		}
	}
	data, err := imageio.EncodeBytes(img, imageio.FormatPNG, imageio.Options{})
	require.NoError(t, err)
	return data
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	require.NoError(t, err)

	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(fc, nil, logger)
	srv := httptest.NewServer(New(runner, logger, opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/octet-stream", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var e errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Version)

	_, err = uuid.Parse(resp.Header.Get(HeaderRequestID))
	assert.NoError(t, err, "request id should be a UUID")
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, Options{})
	id := uuid.NewString()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderRequestID, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(HeaderRequestID))

	req.Header.Set(HeaderRequestID, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(HeaderRequestID))
}

func TestCarve(t *testing.T) {
	srv := newTestServer(t, Options{})
	input := testPNG(t, 16, 9)

	resp := post(t, srv.URL+"/v1/carve?columns=5", input)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "11", resp.Header.Get(HeaderWidth))
	assert.Equal(t, "9", resp.Header.Get(HeaderHeight))
	assert.Equal(t, "5", resp.Header.Get(HeaderRemoved))
	assert.Equal(t, "miss", resp.Header.Get(HeaderCache))
	assert.NotEmpty(t, resp.Header.Get(HeaderRunID))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 11, cfg.Width)
	assert.Equal(t, 9, cfg.Height)

	again := post(t, srv.URL+"/v1/carve?columns=5", input)
	require.Equal(t, http.StatusOK, again.StatusCode)
	assert.Equal(t, "hit", again.Header.Get(HeaderCache))

	fresh := post(t, srv.URL+"/v1/carve?columns=5&refresh=true", input)
	require.Equal(t, http.StatusOK, fresh.StatusCode)
	assert.Equal(t, "miss", fresh.Header.Get(HeaderCache))
}

func TestCarveDefaults(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp := post(t, srv.URL+"/v1/carve", testPNG(t, 20, 4))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, strconv.Itoa(20-pipeline.DefaultColumns), resp.Header.Get(HeaderWidth))
}

func TestCarveOptions(t *testing.T) {
	srv := newTestServer(t, Options{Workers: 2})

	resp := post(t, srv.URL+"/v1/carve?columns=100&direction=bottom-up&luma=lab&format=jpeg&quality=80", testPNG(t, 8, 6))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "1", resp.Header.Get(HeaderWidth), "columns are clamped to width-1")
	assert.Equal(t, "7", resp.Header.Get(HeaderRemoved))
}

func TestEnergy(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp := post(t, srv.URL+"/v1/energy?format=png", testPNG(t, 10, 7))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "10", resp.Header.Get(HeaderWidth))
	assert.Equal(t, "7", resp.Header.Get(HeaderHeight))
	assert.Equal(t, "0", resp.Header.Get(HeaderRemoved))

	img, _, err := image.Decode(resp.Body)
	require.NoError(t, err)
	_, gray := img.(*image.Gray)
	assert.True(t, gray, "energy map should decode as grayscale, got %T", img)
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t, Options{})
	png := testPNG(t, 6, 4)

	tests := []struct {
		name string
		path string
		body []byte
		code string
	}{
		{"garbage body", "/v1/carve", []byte("hello"), "DECODE_FAILED"},
		{"empty body", "/v1/carve", nil, "INVALID_INPUT"},
		{"negative columns", "/v1/carve?columns=-1", png, "INVALID_COLUMNS"},
		{"non-numeric columns", "/v1/carve?columns=abc", png, "INVALID_COLUMNS"},
		{"bad direction", "/v1/carve?direction=sideways", png, "INVALID_DIRECTION"},
		{"bad luma", "/v1/energy?luma=hsv", png, "INVALID_LUMA"},
		{"bad format", "/v1/carve?format=svg", png, "INVALID_FORMAT"},
		{"bad quality", "/v1/carve?format=jpeg&quality=abc", png, "INVALID_INPUT"},
		{"bad refresh", "/v1/energy?refresh=maybe", png, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			e := decodeError(t, resp)
			assert.Equal(t, tt.code, string(e.Code))
			assert.NotEmpty(t, e.Message)
			assert.Equal(t, resp.Header.Get(HeaderRequestID), e.RequestID)
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	srv := newTestServer(t, Options{MaxBodyBytes: 64})

	resp := post(t, srv.URL+"/v1/carve", testPNG(t, 32, 32))
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", string(decodeError(t, resp).Code))
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/v1/carve")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks

	mu       sync.Mutex
	routes   []string
	statuses []int
	errors   int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route)
	h.statuses = append(h.statuses, status)
}

func (h *recordingHTTPHooks) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestHTTPHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)

	srv := newTestServer(t, Options{})
	post(t, srv.URL+"/v1/carve?columns=1", testPNG(t, 4, 4))
	post(t, srv.URL+"/v1/carve?columns=x", nil)

	// Hooks run after the response is flushed.
	require.Eventually(t, func() bool {
		hooks.mu.Lock()
		defer hooks.mu.Unlock()
		return len(hooks.statuses) == 2
	}, 2*time.Second, 10*time.Millisecond)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	assert.Equal(t, []string{"/v1/carve", "/v1/carve"}, hooks.routes)
	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusBadRequest}, hooks.statuses)
	assert.Equal(t, 1, hooks.errors)
}

func TestListenAndServeShutdown(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger), logger, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
