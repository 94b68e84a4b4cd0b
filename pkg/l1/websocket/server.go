// Package websocket serves the echo engine over websocket connections.
// Each connection is a separate byte stream with its own engine.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/uartecho/pkg/framework"
	"github.com/robotalks/uartecho/pkg/l0/echo"
	"github.com/robotalks/uartecho/pkg/l0/uart"
)

// DefaultPath is the URL path of the echo endpoint.
const DefaultPath = "/echo"

// Server accepts websocket connections and echoes lines on each of them.
type Server struct {
	Addr     string
	Path     string
	Observer echo.Observer

	ctx     context.Context
	lock    sync.Mutex
	closing bool
	conns   sync.WaitGroup
}

// NewServer creates a Server listening on addr.
func NewServer(addr string) *Server {
	return &Server{Addr: addr, Path: DefaultPath}
}

// Name implements Named.
func (s *Server) Name() string {
	return "websocket:" + s.Addr
}

// Handler returns the http.Handler serving echo connections until ctx is done.
func (s *Server) Handler(ctx context.Context) http.Handler {
	s.ctx = ctx
	return websocket.Handler(s.serveConn)
}

// acquire registers a connection unless the server is stopping.
func (s *Server) acquire() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closing {
		return false
	}
	s.conns.Add(1)
	return true
}

func (s *Server) serveConn(conn *websocket.Conn) {
	if !s.acquire() {
		conn.Close()
		return
	}
	defer s.conns.Done()
	conn.PayloadType = websocket.BinaryFrame
	remote := conn.Request().RemoteAddr
	glog.V(1).Infof("websocket %s connected", remote)

	stream := uart.NewStream(conn)
	defer stream.Close()
	loop := echo.NewLoop(stream)
	loop.Engine.Observer = s.Observer
	err := loop.Run(s.ctx)
	stats := loop.Stats()
	glog.V(1).Infof("websocket %s disconnected: %v (%d lines, %d overflows)",
		remote, err, stats.Lines, stats.Overflows)
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	path := s.Path
	if path == "" {
		path = DefaultPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, s.Handler(ctx))
	srv := &http.Server{Addr: s.Addr, Handler: mux}
	glog.Infof("websocket echo on %s%s", s.Addr, path)
	err := fx.RunWithContextCancel(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}, srv.ListenAndServe)
	// hijacked connections are not tracked by Shutdown.
	s.lock.Lock()
	s.closing = true
	s.lock.Unlock()
	s.conns.Wait()
	return err
}
