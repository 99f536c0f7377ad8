// Package httpapi serves the conversion endpoint, health check, metrics and
// the browser front page.
package httpapi

import (
	"context"
	_ "embed"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"

	appconv "yt2mp3/application/conversion"
	"yt2mp3/infrastructure/logfields"
)

//go:embed static/index.html
var fallbackIndex []byte

// Converter runs one conversion. *conversion.Service satisfies it.
type Converter interface {
	Convert(ctx context.Context, input appconv.ConvertInput) (*appconv.Result, error)
}

// Server holds the HTTP handlers
type Server struct {
	converter Converter
	indexFile string
	metrics   http.Handler
	logger    *slog.Logger
}

// Option is a functional option for configuring Server
type Option func(*Server)

// WithIndexFile serves path at / when it exists, instead of the built-in page
func WithIndexFile(path string) Option {
	return func(s *Server) {
		s.indexFile = path
	}
}

// WithMetricsHandler mounts h at /metrics
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new Server
func NewServer(converter Converter, opts ...Option) *Server {
	s := &Server{
		converter: converter,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in logging and recovery middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/download", s.handleDownload)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return Chain(s.logger, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if strings.TrimSpace(rawURL) == "" {
		writeDetail(w, http.StatusBadRequest, MsgInvalidURL)
		return
	}

	result, err := s.converter.Convert(r.Context(), appconv.ConvertInput{URL: rawURL})
	if err != nil {
		s.logger.Warn("Conversion request failed", logfields.URL(rawURL), logfields.Error(err))
		writeError(w, err)
		return
	}

	f, err := os.Open(result.Path)
	if err != nil {
		s.logger.Error("Delivered file vanished", logfields.Path(result.Path), logfields.Error(err))
		writeDetail(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	defer f.Close()

	size := result.Size
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	h := w.Header()
	h.Set("Content-Type", result.MediaType)
	h.Set("Cache-Control", "no-store")
	h.Set("Content-Disposition", ContentDisposition(result.Name))
	h.Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f); err != nil {
		s.logger.Warn("Client stopped reading", logfields.File(result.Name), logfields.Error(err))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.indexFile != "" {
		if info, err := os.Stat(s.indexFile); err == nil && info.Mode().IsRegular() {
			http.ServeFile(w, r, s.indexFile)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(fallbackIndex)
}

// ContentDisposition builds an attachment header for name. Non-ASCII names get
// an ASCII fallback plus the RFC 5987 filename* form.
func ContentDisposition(name string) string {
	if isPlainASCII(name) {
		return `attachment; filename="` + name + `"`
	}

	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)

	extended := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if extended == "" {
		return `attachment; filename="` + fallback + `"`
	}
	return `attachment; filename="` + fallback + `"; ` + strings.TrimPrefix(extended, "attachment; ")
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c > 0x7e || c == '"' || c == '\\' {
			return false
		}
	}
	return true
}
