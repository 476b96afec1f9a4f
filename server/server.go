// Package server is the live preview: it hosts visualization instances, each
// on its own loop goroutine, and speaks a small WebSocket protocol with the
// browser. Browsers send pointer, wheel, touch, filter and mode events; the
// server answers with render patches.
package server

import (
	"context"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teranos/folio/am"
	"github.com/teranos/folio/anim"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/logger"
	"github.com/teranos/folio/viz"
	"go.uber.org/zap"
)

// MaxClients bounds concurrent preview connections per server.
const MaxClients = 64

// Server hosts instances for live preview.
type Server struct {
	cfg    *am.Config
	logger *zap.SugaredLogger

	mu     sync.RWMutex
	hosted map[string]*hosted
	order  []string
	nconns int

	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server. A nil cfg uses the defaults.
func New(cfg *am.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = am.Defaults()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		logger: logger.ComponentLogger("server"),
		hosted: make(map[string]*hosted),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     s.checkOrigin,
	}
	s.setupRoutes()
	return s
}

// Host adds an instance under its builder name, starts its loop and opens it.
// The instance must not be touched outside its loop afterwards.
func (s *Server) Host(inst *viz.Instance) error {
	name := inst.Name()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return errors.Wrap(errors.ErrClosed, "server is shut down")
	}
	if _, dup := s.hosted[name]; dup {
		return errors.Wrapf(errors.ErrInvalidRequest, "visualization %q is already hosted", name)
	}
	h := newHosted(s, inst)
	s.hosted[name] = h
	s.order = append(s.order, name)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := h.loop.Run(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			h.logger.Warnw("Loop stopped", logger.FieldError, err)
		}
	}()
	go func() {
		defer s.wg.Done()
		h.flushEvery(s.ctx, anim.FrameInterval)
	}()
	h.loop.Post(inst.Open)
	s.logger.Infow("Hosting visualization", logger.FieldViz, name, logger.FieldInstanceID, inst.ID())
	return nil
}

// Names lists the hosted visualizations in the order they were added.
func (s *Server) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Each runs fn on every hosted instance, on that instance's loop.
func (s *Server) Each(fn func(*viz.Instance)) {
	s.mu.RLock()
	hs := make([]*hosted, 0, len(s.hosted))
	for _, name := range s.order {
		hs = append(hs, s.hosted[name])
	}
	s.mu.RUnlock()
	for _, h := range hs {
		inst := h.inst
		h.loop.Post(func() { fn(inst) })
	}
}

// lookup returns the named instance, or the first one for "".
func (s *Server) lookup(name string) (*hosted, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name == "" {
		if len(s.order) == 0 {
			return nil, errors.Wrap(errors.ErrNotFound, "no visualization is hosted")
		}
		name = s.order[0]
	}
	h, ok := s.hosted[name]
	if !ok {
		known := append([]string(nil), s.order...)
		sort.Strings(known)
		return nil, errors.WithHintf(errors.Wrapf(errors.ErrNotFound, "visualization %q", name), "hosted: %v", known)
	}
	return h, nil
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Infow("Live preview listening", logger.FieldAddress, ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// Shutdown stops the HTTP server, every loop and every client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "shutdown timed out")
	}
	s.logger.Infow("Live preview stopped")
	return err
}

func (s *Server) acquireConn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nconns >= MaxClients {
		return false
	}
	s.nconns++
	return true
}

func (s *Server) releaseConn() {
	s.mu.Lock()
	s.nconns--
	s.mu.Unlock()
}
