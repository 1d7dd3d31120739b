// Package server exposes the JSON-RPC endpoint and the thumbnail cache over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/lydakis/pcli2-mcp/internal/logging"
	"github.com/lydakis/pcli2-mcp/internal/rpc"
	"github.com/lydakis/pcli2-mcp/internal/thumbnail"
)

const (
	DefaultRequestTimeout  = 30 * time.Minute
	DefaultMaxRequestBytes = 1 << 20

	thumbnailCacheControl = "public, max-age=3600"
	readHeaderTimeout     = 10 * time.Second
)

// RPC answers one JSON-RPC request body; nil means nothing to send back.
type RPC interface {
	Handle(ctx context.Context, body []byte) *rpc.Response
}

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	Addr            string
	RequestTimeout  time.Duration
	MaxRequestBytes int64
}

// Server owns the HTTP listener.
type Server struct {
	addr     string
	timeout  time.Duration
	maxBody  int64
	rpc      RPC
	cache    *thumbnail.Cache
	httpSrv  *http.Server
	listener net.Listener
	wg       sync.WaitGroup
}

// New builds a server. cache may be nil; /thumbnail then answers 503.
func New(opts Options, handler RPC, cache *thumbnail.Cache) *Server {
	s := &Server{
		addr:    opts.Addr,
		timeout: opts.RequestTimeout,
		maxBody: opts.MaxRequestBytes,
		rpc:     handler,
		cache:   cache,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultRequestTimeout
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxRequestBytes
	}
	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the routed handler, wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /mcp", s.handleMCP)
	mux.HandleFunc("GET /thumbnail/{key}", s.handleThumbnail)
	mux.HandleFunc("GET /health", s.handleHealth)
	return withRequestID(mux)
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.listener = ln

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Error().Err(err).Msg("http server stopped")
		}
	}()
	return nil
}

// Addr is the bound address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpSrv.Shutdown(ctx)
	s.wg.Wait()
	return err
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	// The subprocess must not die with the client connection; the runner
	// enforces its own deadline.
	ctx := context.WithoutCancel(r.Context())
	done := make(chan *rpc.Response, 1)
	go func() { done <- s.rpc.Handle(ctx, body) }()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case resp := <-done:
		writeRPC(w, resp)
	case <-timer.C:
		logging.Ctx(r.Context()).Warn().Dur("timeout", s.timeout).Msg("request timed out")
		http.Error(w, "Request timed out", http.StatusRequestTimeout)
	case <-r.Context().Done():
		logging.Ctx(r.Context()).Debug().Msg("client went away before response")
	}
}

func writeRPC(w http.ResponseWriter, resp *rpc.Response) {
	if resp == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		logging.L().Error().Err(err).Msg("encoding rpc response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		http.Error(w, "Thumbnail cache not available", http.StatusServiceUnavailable)
		return
	}
	key := r.PathValue("key")
	data, err := s.cache.Load(key)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Str("key", key).Msg("thumbnail lookup failed")
		http.Error(w, "Thumbnail not found: "+err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", thumbnailCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}
