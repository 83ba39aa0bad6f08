// Package api serves Scribe over HTTP.
//
// Handler is a plain net/http handler carrying the webhook endpoint and the
// admin routes. ForgeAPI registers the admin routes on a Forge router with
// OpenAPI metadata. All routes are mounted under a configurable base path
// (default: /notion).
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/xraph/scribe"
	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/id"
	"github.com/xraph/scribe/signature"
)

// DefaultBasePath is the route prefix used when none is given.
const DefaultBasePath = "/notion"

// RequestIDHeader carries the request id. One is generated when absent.
const RequestIDHeader = "X-Request-Id"

// Handler is the root HTTP handler for Scribe.
type Handler struct {
	scribe   *scribe.Scribe
	basePath string
	maxBody  int64
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewHandler creates a handler serving s under basePath.
func NewHandler(s *scribe.Scribe, basePath string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if basePath == "" {
		basePath = DefaultBasePath
	}

	h := &Handler{
		scribe:   s,
		basePath: "/" + strings.Trim(basePath, "/"),
		maxBody:  s.Config().MaxBodyBytes,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	if h.basePath == "/" {
		h.basePath = ""
	}
	if h.maxBody <= 0 {
		h.maxBody = scribe.DefaultConfig().MaxBodyBytes
	}

	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("POST "+h.basePath+"/webhook", h.receiveWebhook)

	h.mux.HandleFunc("GET "+h.basePath+"/processors", h.listProcessors)
	h.mux.HandleFunc("POST "+h.basePath+"/match", h.matchEvent)
	h.mux.HandleFunc("GET "+h.basePath+"/healthz", h.health)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.withMiddleware(h.mux).ServeHTTP(w, r)
}

func (h *Handler) withMiddleware(next http.Handler) http.Handler {
	return h.panicRecovery(h.logging(next))
}

func (h *Handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID, err := id.ParseRequestID(r.Header.Get(RequestIDHeader))
		if err != nil {
			reqID = id.NewRequestID()
		}
		w.Header().Set(RequestIDHeader, reqID.String())

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.logger.Info("api request",
			"request_id", reqID.String(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (h *Handler) panicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic recovered",
					"error", rec,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// JSON helpers.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best effort
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readBody reads at most limit bytes. A larger body is an error.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	return body, nil
}

var errBodyTooLarge = errors.New("request body too large")

// statusFor maps Scribe errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scribe.ErrMissingSignature), errors.Is(err, scribe.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, scribe.ErrReplayedRequest):
		return http.StatusConflict
	case errors.Is(err, scribe.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, scribe.ErrUnknownEventType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// decodeEnvelope reads and decodes an envelope body for the dry-run route.
func (h *Handler) decodeEnvelope(r *http.Request) (*event.Envelope, error) {
	body, err := readBody(r, h.maxBody)
	if err != nil {
		return nil, err
	}
	return event.Decode(body)
}

// signatureHeader returns the inbound signature value.
func signatureHeader(r *http.Request) string {
	return r.Header.Get(signature.Header)
}
