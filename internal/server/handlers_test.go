package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/seamcarve/pkg/errors"
	"github.com/matzehuels/seamcarve/pkg/pipeline"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid columns", errs.New(errs.ErrCodeInvalidColumns, "bad"), http.StatusBadRequest},
		{"decode", errs.New(errs.ErrCodeDecode, "bad"), http.StatusBadRequest},
		{"wrapped invalid", fmt.Errorf("carve: %w", errs.New(errs.ErrCodeInvalidLuma, "bad")), http.StatusBadRequest},
		{"too large", errs.Wrap(errs.ErrCodeInvalidInput, &http.MaxBytesError{Limit: 10}, "big"), http.StatusRequestEntityTooLarge},
		{"contract", errs.New(errs.ErrCodeContract, "seam"), http.StatusInternalServerError},
		{"encode", errs.New(errs.ErrCodeEncode, "png"), http.StatusInternalServerError},
		{"timeout", fmt.Errorf("carve: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"cancelled", context.Canceled, 499},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestImageDimensionLimit(t *testing.T) {
	srv := newTestServer(t, Options{MaxPixels: 20 * 20})

	for _, route := range []string{"/v1/carve?columns=1", "/v1/energy"} {
		t.Run(route, func(t *testing.T) {
			resp := post(t, srv.URL+route, testPNG(t, 30, 20))
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			e := decodeError(t, resp)
			assert.Equal(t, errs.ErrCodeInvalidInput, e.Code)
			assert.Contains(t, e.Message, "limit")

			ok := post(t, srv.URL+route, testPNG(t, 20, 20))
			assert.Equal(t, http.StatusOK, ok.StatusCode)
		})
	}
}

func TestImageDimensionLimitDefault(t *testing.T) {
	s := New(pipeline.NewRunner(nil, nil, nil), nil, Options{})
	assert.Equal(t, pipeline.DefaultMaxPixels, s.opts.MaxPixels)

	opts, err := s.options(url.Values{}, true)
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultMaxPixels, opts.MaxPixels)
}

// headerCounter counts WriteHeader calls reaching the underlying writer.
type headerCounter struct {
	*httptest.ResponseRecorder
	calls int
}

func (h *headerCounter) WriteHeader(code int) {
	h.calls++
	h.ResponseRecorder.WriteHeader(code)
}

func TestTimeoutWritesStatusOnce(t *testing.T) {
	s := New(pipeline.NewRunner(nil, nil, nil), log.NewWithOptions(io.Discard, log.Options{}), Options{})

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode int
	}{
		{
			name: "handler reports deadline",
			handler: func(w http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
				s.writeError(w, r, fmt.Errorf("carve: %w", r.Context().Err()))
			},
			wantCode: http.StatusGatewayTimeout,
		},
		{
			name: "handler writes nothing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
			},
			wantCode: http.StatusGatewayTimeout,
		},
		{
			name: "handler finishes late",
			handler: func(w http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
				w.WriteHeader(http.StatusOK)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "handler finishes in time",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
			wantCode: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &headerCounter{ResponseRecorder: httptest.NewRecorder()}
			req := httptest.NewRequest(http.MethodPost, "/v1/carve", nil)

			s.timeout(10*time.Millisecond)(tt.handler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, 1, rec.calls, "WriteHeader calls")
			if tt.wantCode == http.StatusGatewayTimeout {
				var e errorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
				assert.Equal(t, errs.ErrCodeInternal, e.Code)
				assert.Equal(t, "request timed out", e.Message)
			}
		})
	}
}

func TestCarveTimeout(t *testing.T) {
	srv := newTestServer(t, Options{Timeout: time.Nanosecond})

	resp := post(t, srv.URL+"/v1/carve?columns=3", testPNG(t, 12, 8))
	require.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	e := decodeError(t, resp)
	assert.Equal(t, "request timed out", e.Message)
}
