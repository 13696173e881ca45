// Package debugsrv serves the streaming state over HTTP and lets a websocket
// client change the runtime controls.
package debugsrv

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Faultbox/tristream/internal/debug"
	"github.com/Faultbox/tristream/internal/stream"
)

// SnapshotSource provides the latest published streaming state.
// *stream.Scheduler implements it.
type SnapshotSource interface {
	Snapshot() *stream.Snapshot
}

// State is the document served at /state and pushed over /ws.
type State struct {
	Snapshot *stream.Snapshot   `json:"snapshot"`
	Outlines []debug.Outline    `json:"outlines"`
	Lines    []debug.LineVertex `json:"lines,omitempty"`
}

// Message is the envelope of every websocket message sent to clients.
type Message struct {
	Type    string                `json:"type"`
	State   *State                `json:"state,omitempty"`
	Control *stream.ControlValues `json:"control,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Config holds server settings.
type Config struct {
	Addr         string
	PushInterval time.Duration
	// ControlBurst bounds how many control messages a client may send at once
	// before being throttled to one per PushInterval.
	ControlBurst int
}

// Server is the debug HTTP and websocket server.
type Server struct {
	cfg      Config
	source   SnapshotSource
	control  *stream.Control
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(m)
}

// New creates a server reading state from source and applying client updates
// to control.
func New(cfg Config, source SnapshotSource, control *stream.Control, log *zap.Logger) *Server {
	if cfg.PushInterval <= 0 {
		cfg.PushInterval = 250 * time.Millisecond
	}
	if cfg.ControlBurst <= 0 {
		cfg.ControlBurst = 8
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		source:  source,
		control: control,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("debug server listening", zap.String("addr", ln.Addr().String()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.closeClients()
		err := srv.Shutdown(shutdownCtx)
		<-errCh
		return err
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) currentState() *State {
	snap := s.source.Snapshot()
	outlines := debug.Outlines(snap)
	return &State{Snapshot: snap, Outlines: outlines, Lines: debug.Lines(snap, outlines)}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.currentState()); err != nil {
		s.log.Warn("write state failed", zap.Error(err))
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn}
	s.addClient(c)
	defer s.removeClient(c)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.pushLoop(ctx, c)

	log := s.log.With(zap.String("remote", r.RemoteAddr))
	log.Debug("debug client connected")

	limiter := rate.NewLimiter(rate.Every(s.cfg.PushInterval), s.cfg.ControlBurst)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Debug("debug client disconnected", zap.Error(err))
			return
		}
		if !limiter.Allow() {
			_ = c.send(Message{Type: "error", Error: "too many control messages"})
			continue
		}

		u, err := decodeControl(msg)
		if err != nil {
			log.Debug("rejected control message", zap.Error(err))
			_ = c.send(Message{Type: "error", Error: err.Error()})
			continue
		}
		v := s.control.Apply(u)
		log.Info("control updated",
			zap.Float32("radius", v.Radius),
			zap.Bool("active", v.Active),
			zap.String("material", v.Material),
			zap.Bool("origin_gizmo", v.OriginGizmo),
			zap.Bool("chunk_gizmo", v.ChunkGizmo))
		if err := c.send(Message{Type: "ack", Control: &v}); err != nil {
			return
		}
	}
}

// pushLoop sends the current state once per PushInterval.
func (s *Server) pushLoop(ctx context.Context, c *client) {
	limiter := rate.NewLimiter(rate.Every(s.cfg.PushInterval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		if err := c.send(Message{Type: "state", State: s.currentState()}); err != nil {
			return
		}
	}
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	_ = c.conn.Close()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		_ = c.conn.Close()
	}
}
