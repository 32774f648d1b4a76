package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/seamcarve/pkg/buildinfo"
	errs "github.com/matzehuels/seamcarve/pkg/errors"
	"github.com/matzehuels/seamcarve/pkg/imageio"
	"github.com/matzehuels/seamcarve/pkg/observability"
	"github.com/matzehuels/seamcarve/pkg/pipeline"
)

// Response headers describing the returned image.
const (
	HeaderWidth   = "X-Seamcarve-Width"
	HeaderHeight  = "X-Seamcarve-Height"
	HeaderRemoved = "X-Seamcarve-Removed"
	HeaderCache   = "X-Seamcarve-Cache"
	HeaderRunID   = "X-Seamcarve-Run"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Code      errs.Code `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Short()})
}

func (s *Server) handleCarve(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r.URL.Query(), true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	input, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Carve(r.Context(), input, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeImage(w, res)
}

func (s *Server) handleEnergy(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r.URL.Query(), false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	input, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Energy(r.Context(), input, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeImage(w, res)
}

// options parses query parameters into pipeline options. Validation of
// the values themselves is left to the pipeline.
func (s *Server) options(q url.Values, carving bool) (pipeline.Options, error) {
	opts := pipeline.Options{
		Luma:      q.Get("luma"),
		Format:    q.Get("format"),
		Workers:   s.opts.Workers,
		MaxPixels: s.opts.MaxPixels,
		Logger:    s.runner.Logger.With("component", "api"),
	}

	if v := q.Get("quality"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "quality must be an integer: %q", v)
		}
		opts.JPEGQuality = n
	}
	if v := q.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "refresh must be a boolean: %q", v)
		}
		opts.Refresh = b
	}

	if !carving {
		return opts, nil
	}
	opts.Direction = q.Get("direction")
	opts.Columns = pipeline.DefaultColumns
	if v := q.Get("columns"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidColumns, "columns must be an integer: %q", v)
		}
		opts.Columns = n
	}
	return opts, nil
}

// readBody reads the uploaded image, enforcing the body size limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "image exceeds %d bytes", s.opts.MaxBodyBytes)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "request body must contain an image")
	}
	return data, nil
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errs.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errs.GetCode(err)
	msg := errs.UserMessage(err)
	if code == "" {
		code = errs.ErrCodeInternal
		switch status {
		case http.StatusInternalServerError:
			msg = "internal error"
		case http.StatusGatewayTimeout:
			msg = "request timed out"
		}
	}

	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	if status >= 500 {
		s.logger.Error("request failed", "id", requestIDFrom(r.Context()), "route", route, "err", err)
	} else {
		s.logger.Debug("request rejected", "id", requestIDFrom(r.Context()), "route", route, "err", err)
	}

	writeJSON(w, status, errorResponse{
		Code:      code,
		Message:   msg,
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeImage(w http.ResponseWriter, res *pipeline.Result) {
	h := w.Header()
	h.Set("Content-Type", imageio.ContentType(res.Format))
	h.Set("Content-Length", strconv.Itoa(len(res.Artifact)))
	h.Set(HeaderWidth, strconv.Itoa(res.Width))
	h.Set(HeaderHeight, strconv.Itoa(res.Height))
	h.Set(HeaderRemoved, strconv.Itoa(res.Removed))
	h.Set(HeaderRunID, res.RunID)
	if res.CacheInfo.Hit {
		h.Set(HeaderCache, "hit")
	} else {
		h.Set(HeaderCache, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
