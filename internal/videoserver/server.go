package videoserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/ajsmith595/videoedit/internal/logger"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/ajsmith595/videoedit/internal/renderpool"
)

// Config holds the knobs needed to start a Server: a plain struct with an
// applyDefaults step rather than a builder.
type Config struct {
	ListenAddr string // default ":3001", spec.md §6.2 server_port
	DataRoot   string // root directory spec.md §6.1 lays out
	NumWorkers int    // render-process pool size, spec.md §4.7
	WorkerPath string // render-worker executable
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":3001"
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = 2
	}
}

// Server accepts connections and dispatches each to its own goroutine,
// sharing one State across all of them: a listener, a conn tracking map,
// an accept loop, and a graceful Stop.
type Server struct {
	cfg   Config
	log   *slog.Logger
	state *State

	mu          sync.RWMutex
	l           net.Listener
	conns       map[string]net.Conn
	acceptingWg sync.WaitGroup
	closing     bool
}

// New constructs an unstarted Server. If cfg.DataRoot is set, it calls
// project.Init for the caller (a no-op if already initialized); otherwise
// it assumes the caller already did. The Store is loaded from the data
// root's checkpoint if present, else a fresh empty Store is used,
// mirroring original_source's `Store::from_file(...).unwrap_or_else(...)`.
func New(cfg Config) (*Server, error) {
	cfg.applyDefaults()

	if cfg.DataRoot != "" {
		if err := project.Init(cfg.DataRoot, true); err != nil {
			return nil, fmt.Errorf("videoserver.New: initializing data root: %w", err)
		}
	}

	store, err := project.FromFile(project.StoreJSONLocation())
	if err != nil {
		store = project.New()
	}

	pool, err := renderpool.New(context.Background(), cfg.NumWorkers, cfg.WorkerPath)
	if err != nil {
		return nil, fmt.Errorf("videoserver.New: starting render pool: %w", err)
	}

	return &Server{
		cfg:   cfg,
		log:   logger.Logger().With("component", "videoserver"),
		state: NewState(store, pool),
		conns: map[string]net.Conn{},
	}, nil
}

// Start begins listening and launches the accept loop. Safe to call only
// once.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.l != nil {
		s.mu.Unlock()
		return errors.New("videoserver: already started")
	}
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("videoserver: listen %s: %w", s.cfg.ListenAddr, err)
	}
	s.l = ln
	s.mu.Unlock()

	s.log.Info("video server listening", "addr", ln.Addr().String())
	s.acceptingWg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.acceptingWg.Done()
	for {
		s.mu.RLock()
		l := s.l
		s.mu.RUnlock()
		if l == nil {
			return
		}
		c, err := l.Accept()
		if err != nil {
			s.mu.RLock()
			closing := s.closing
			s.mu.RUnlock()
			if closing || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("accept error", "error", err)
			return
		}

		s.mu.Lock()
		s.conns[c.RemoteAddr().String()] = c
		s.mu.Unlock()
		s.log.Info("connection accepted", "remote", c.RemoteAddr().String())

		go func() {
			defer func() {
				s.mu.Lock()
				delete(s.conns, c.RemoteAddr().String())
				s.mu.Unlock()
				_ = c.Close()
			}()
			handleConn(c, s.state, s.log)
		}()
	}
}

// Stop closes the listener and every tracked connection, then waits for
// the accept loop to exit.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.l == nil {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	l := s.l
	s.l = nil
	s.mu.Unlock()
	_ = l.Close()

	s.mu.Lock()
	for addr, c := range s.conns {
		_ = c.Close()
		delete(s.conns, addr)
	}
	s.mu.Unlock()

	s.acceptingWg.Wait()

	if err := s.state.Pool.Shutdown(); err != nil {
		s.log.Warn("render pool shutdown error", "error", err)
	}
	s.log.Info("video server stopped")
	return nil
}

// Addr returns the bound listener address, or nil if not started.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.l == nil {
		return nil
	}
	return s.l.Addr()
}

// ConnectionCount returns the number of currently tracked connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}
