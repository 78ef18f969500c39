package chat

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ServerConfig struct {
	Addr           string
	OutboundBuffer int
	Hub            HubConfig
	Session        SessionOptions
}

type Server struct {
	cfg      ServerConfig
	logger   *slog.Logger
	hub      *Hub
	listener net.Listener

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
	wg      sync.WaitGroup
}

func NewServer(cfg ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		hub:    NewHub(cfg.Hub, logger),
		conns:  make(map[net.Conn]struct{}),
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// Addr is the bound listener address, valid after Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go s.hub.Run()
	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", ln.Addr().String(), "default_room", s.hub.DefaultRoom())
	return nil
}

// Stop closes the listener and every live connection, waits for their
// teardown (bounded by ctx) and then stops the hub.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down")

	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.mu.Lock()
	s.closing = true
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()

	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		err = ctx.Err()
	}

	s.hub.Stop()
	s.hub.Wait()

	s.logger.Info("shutdown complete")
	return err
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", "error", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}

		s.logger.Info("client connected", "addr", conn.RemoteAddr().String())

		if !s.track(conn) {
			continue
		}
		c := NewClient(uuid.NewString(), conn, s.cfg.OutboundBuffer)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			HandleSession(c, s.hub, s.cfg.Session, s.logger)
		}()
	}
}

// track registers a new connection and reserves its session slot in wg. It
// closes conn and reports false once Stop has begun.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		_ = conn.Close()
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}
