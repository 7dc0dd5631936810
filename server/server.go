// Package server exposes a mounted widget over HTTP: the rendered surface,
// token state, pointer events, viewport changes and image export.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hypecycle"
	"github.com/flanksource/hypecycle/capture"
	"github.com/flanksource/hypecycle/drag"
	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/placement"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// Server routes HTTP requests to one widget.
type Server struct {
	widget *hypecycle.Widget
	router chi.Router
}

// New builds the routes for w.
func New(w *hypecycle.Widget) *Server {
	s := &Server{widget: w, router: chi.NewRouter()}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)

	s.router.Get("/healthz", s.health)
	s.router.Get("/surface.svg", s.surfaceSVG)
	s.router.Get("/tier", s.tier)
	s.router.Post("/viewport", s.viewport)
	s.router.Route("/tokens", func(r chi.Router) {
		r.Get("/", s.tokens)
		r.Get("/{id}", s.token)
		r.Post("/{id}/pointer", s.pointer)
	})
	s.router.Post("/export", s.export)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()
	logger.Infof("Serving %s on http://%s", s.widget, ln.Addr())

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Infof("Shutting down server on %s", ln.Addr())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debugf("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(started), middleware.GetReqID(r.Context()))
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func tokenID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid token id %q", raw)
	}
	return id, nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	if s.widget.Closed() {
		writeError(w, http.StatusServiceUnavailable, capture.ErrDetached)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) surfaceSVG(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := s.widget.RenderSVG(&buf); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

type tierResponse struct {
	Width float64 `json:"width"`
	Name  string  `json:"name"`
	Scale float64 `json:"scale"`
	Font  float64 `json:"font_size"`
	Box   float64 `json:"box_height"`
}

func (s *Server) tierResponse() tierResponse {
	t := s.widget.Tier()
	return tierResponse{Width: s.widget.ViewportWidth(), Name: t.Name, Scale: t.Scale, Font: t.FontSize, Box: t.BoxHeight}
}

func (s *Server) tier(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tierResponse())
}

type viewportRequest struct {
	Width float64 `json:"width"`
}

type viewportResponse struct {
	tierResponse
	Changed bool `json:"changed"`
}

func (s *Server) viewport(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	changed := s.widget.Resize(req.Width)
	writeJSON(w, http.StatusOK, viewportResponse{tierResponse: s.tierResponse(), Changed: changed})
}

func (s *Server) tokens(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.widget.Tokens())
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	id, err := tokenID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tok, err := s.widget.Token(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

func (s *Server) pointer(w http.ResponseWriter, r *http.Request) {
	id, err := tokenID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var ev drag.Event
	if err := decode(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.widget.Dispatch(id, ev); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.widget.Flush()
	tok, err := s.widget.Token(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

type exportRequest struct {
	Region *geometry.Rect `json:"region,omitempty"`
	Format string         `json:"format,omitempty"`
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if f := r.URL.Query().Get("format"); f != "" {
		req.Format = f
	}
	if req.Format != "" && req.Format != "png" && req.Format != "pdf" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", req.Format))
		return
	}

	var job *capture.Job
	if req.Region != nil {
		job = s.widget.ExportRegion(r.Context(), *req.Region, nil)
	} else {
		job = s.widget.Export(r.Context(), nil)
	}

	select {
	case <-job.Done():
	case <-r.Context().Done():
		logger.Warnf("client went away before capture %s finished", job.ID)
		return
	}
	result := job.Wait()
	if result.Err != nil {
		writeError(w, statusFor(result.Err), result.Err)
		return
	}

	data, name, contentType := result.PNG, s.widget.Filename(), "image/png"
	if req.Format == "pdf" {
		pdf, err := capture.EncodePDF(result.PNG)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		data, name, contentType = pdf, capture.PDFFilename(), "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Capture-Id", result.JobID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func statusFor(err error) int {
	var unknown *placement.UnknownTokenError
	switch {
	case errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.Is(err, drag.ErrUnknownEvent):
		return http.StatusBadRequest
	case errors.Is(err, capture.ErrZeroRegion), errors.Is(err, capture.ErrOutsideSurface), errors.Is(err, capture.ErrInvalidScale),
		errors.Is(err, capture.ErrRegionTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, capture.ErrDetached):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
