// Package resp serves the command dispatcher over the Redis protocol (RESP2).
package resp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/redcon"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/command"
)

// ErrNotStarted is returned by Addr and Shutdown before Start.
var ErrNotStarted = errors.New("resp server not started")

// Server accepts RESP connections and hands every command to a dispatcher.
type Server struct {
	addr       string
	dispatcher *command.Dispatcher
	logger     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu  sync.Mutex
	srv *redcon.Server
}

// NewServer creates a server listening on addr once started.
func NewServer(addr string, d *command.Dispatcher, logger *zap.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:       addr,
		dispatcher: d,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start binds the listener and serves in the background. It returns once
// the listener is bound or binding failed.
func (s *Server) Start() error {
	srv := redcon.NewServerNetwork("tcp", s.addr, s.handle, s.accept, s.closed)

	signal := make(chan error, 1)
	go func() {
		if err := srv.ListenServeAndSignal(signal); err != nil {
			s.logger.Error("resp server stopped", zap.Error(err))
		}
	}()
	if err := <-signal; err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()
	s.logger.Info("RESP server listening", zap.String("addr", srv.Addr().String()))
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return "", ErrNotStarted
	}
	return s.srv.Addr().String(), nil
}

// Shutdown closes the listener and every open connection.
func (s *Server) Shutdown() error {
	s.cancel()

	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return ErrNotStarted
	}
	if err := srv.Close(); err != nil {
		return fmt.Errorf("close resp server: %w", err)
	}
	return nil
}

func (s *Server) accept(conn redcon.Conn) bool {
	seq := s.dispatcher.Stats().ClientConnected()
	id := uuid.NewString()
	conn.SetContext(&command.Conn{
		ID:   id,
		Seq:  seq,
		Addr: conn.RemoteAddr(),
		Logger: s.logger.With(
			zap.String("conn_id", id),
			zap.String("remote_addr", conn.RemoteAddr()),
		),
	})
	s.logger.Debug("client connected", zap.String("conn_id", id), zap.String("remote_addr", conn.RemoteAddr()))
	return true
}

func (s *Server) closed(conn redcon.Conn, err error) {
	s.dispatcher.Stats().ClientDisconnected()
	cc, _ := conn.Context().(*command.Conn)
	if cc == nil {
		return
	}
	if err != nil {
		cc.Logger.Debug("client disconnected", zap.Error(err))
		return
	}
	cc.Logger.Debug("client disconnected")
}

func (s *Server) handle(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) == 0 {
		return
	}
	argv := make([]string, len(cmd.Args))
	for i, a := range cmd.Args {
		argv[i] = string(a)
	}

	cc, _ := conn.Context().(*command.Conn)
	if reply := s.dispatcher.Dispatch(s.ctx, cc, argv); reply != nil {
		reply.WriteTo(conn)
	}
	if strings.EqualFold(argv[0], "QUIT") {
		_ = conn.Close()
	}
}
