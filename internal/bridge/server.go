// Package bridge exposes the host's native operations to the
// dashboard shell. The shell dials a loopback websocket and invokes
// named commands; each command is handled synchronously and answered
// with a string result or a string error, never retried or swallowed.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pulsedeck/host/internal/power"
	"github.com/pulsedeck/host/internal/protocol"
	"github.com/pulsedeck/host/internal/vault"
)

const (
	writeTimeout  = 10 * time.Second
	writeChanSize = 64
)

var errNoWindowController = errors.New("no window controller registered")

// WindowController is implemented by the embedding GUI shell. The
// window veneer commands forward to it and reflect nothing back
// beyond success or the controller's error.
type WindowController interface {
	ToggleVisibility() error
	SetIgnoreMouseEvents(ignore bool) error
	SetAlwaysOnTop(onTop bool) error
}

// Config wires the bridge's collaborators.
type Config struct {
	Addr    string
	Token   string // when set, connections must present it
	Version string

	KeepAlive *power.Manager
	Vault     *vault.Vault
	Window    WindowController // optional
	Log       *logrus.Entry
}

// Server accepts shell connections and dispatches their commands.
type Server struct {
	cfg      Config
	log      *logrus.Entry
	upgrader websocket.Upgrader
	http     *http.Server
}

// New creates a Server; call Start to begin listening.
func New(cfg Config) *Server {
	s := &Server{cfg: cfg, log: cfg.Log}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.http = &http.Server{Handler: mux}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Loopback-only listener; the shell's webview origin varies.
		CheckOrigin: func(*http.Request) bool { return true },
	}

	return s
}

// Start listens on the configured address and serves in background.
// It returns the bound address so callers can print it (the default
// config uses a fixed port, but tests bind :0).
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return "", fmt.Errorf("listen failed: %w", err)
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("bridge server stopped")
		}
	}()

	return ln.Addr().String(), nil
}

// Shutdown stops accepting connections and waits for the listener to
// close. Live websocket connections end when the process exits.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Token != "" && r.URL.Query().Get("token") != s.cfg.Token {
		s.log.Warn("rejected connection: bad token")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	go s.serveConn(conn)
}

// serveConn runs the per-connection read loop. Commands are handled
// inline: every operation is a short, blocking OS call and the shell
// expects request/response ordering.
func (s *Server) serveConn(conn *websocket.Conn) {
	connID := uuid.NewString()
	log := s.log.WithField("conn", connID[:8])
	log.Info("shell connected")

	// Single writer goroutine; handlers and heartbeats enqueue.
	writeCh := make(chan interface{}, writeChanSize)
	writeDone := make(chan struct{})
	go s.writeLoop(conn, writeCh, writeDone, log)

	defer func() {
		close(writeDone)
		conn.Close()
		log.Info("shell disconnected")
	}()

	send := func(v interface{}) {
		select {
		case writeCh <- v:
		default:
			// Buffer full — drop rather than block the read loop.
		}
	}

	send(map[string]string{"type": "connected", "host_id": connID})
	send(protocol.Response{
		Type:    "info",
		Success: true,
		Payload: protocol.InfoPayload{
			OS:        fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
			Version:   s.cfg.Version,
			Service:   s.cfg.Vault.Service(),
			KeepAlive: s.cfg.KeepAlive.Active(),
		},
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req protocol.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			log.WithError(err).Warn("invalid message")
			continue
		}

		switch req.Type {
		case "ping":
			send(map[string]string{"type": "pong"})
		case "pong":
			// Heartbeat ack — no action
		default:
			send(s.handleRequest(req))
		}
	}
}

func (s *Server) writeLoop(conn *websocket.Conn, ch <-chan interface{}, done <-chan struct{}, log *logrus.Entry) {
	for {
		select {
		case <-done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("write error")
				return
			}
		}
	}
}

func (s *Server) handleRequest(req protocol.Request) protocol.Response {
	switch req.Type {
	case "enable_keep_alive":
		msg, err := s.cfg.KeepAlive.Enable()
		return messageResponse(req, msg, err)
	case "disable_keep_alive":
		msg, err := s.cfg.KeepAlive.Disable()
		return messageResponse(req, msg, err)
	case "store_key":
		return s.handleStoreKey(req)
	case "get_key":
		return s.handleGetKey(req)
	case "delete_key":
		return s.handleDeleteKey(req)
	case "toggle_window":
		return s.handleWindow(req, func(w WindowController, _ protocol.WindowPayload) error {
			return w.ToggleVisibility()
		})
	case "set_ignore_mouse_events":
		return s.handleWindow(req, func(w WindowController, p protocol.WindowPayload) error {
			return w.SetIgnoreMouseEvents(p.Ignore)
		})
	case "set_always_on_top":
		return s.handleWindow(req, func(w WindowController, p protocol.WindowPayload) error {
			return w.SetAlwaysOnTop(p.State)
		})
	default:
		return failure(req, fmt.Errorf("unknown request type: %s", req.Type))
	}
}

func (s *Server) handleStoreKey(req protocol.Request) protocol.Response {
	var p protocol.KeyPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil {
		return failure(req, err)
	}
	msg, err := s.cfg.Vault.Store(p.KeyName, p.KeyValue)
	return messageResponse(req, msg, err)
}

func (s *Server) handleGetKey(req protocol.Request) protocol.Response {
	var p protocol.KeyPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil {
		return failure(req, err)
	}
	secret, err := s.cfg.Vault.Get(p.KeyName)
	if err != nil {
		return failure(req, err)
	}
	return success(req, protocol.SecretResult{Value: secret})
}

func (s *Server) handleDeleteKey(req protocol.Request) protocol.Response {
	var p protocol.KeyPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil {
		return failure(req, err)
	}
	msg, err := s.cfg.Vault.Delete(p.KeyName)
	return messageResponse(req, msg, err)
}

func (s *Server) handleWindow(req protocol.Request, apply func(WindowController, protocol.WindowPayload) error) protocol.Response {
	if s.cfg.Window == nil {
		return failure(req, errNoWindowController)
	}
	var p protocol.WindowPayload
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return failure(req, err)
		}
	}
	if err := apply(s.cfg.Window, p); err != nil {
		return failure(req, err)
	}
	return success(req, struct{}{})
}

func resultType(req protocol.Request) string {
	return req.Type + "_result"
}

func success(req protocol.Request, payload interface{}) protocol.Response {
	return protocol.Response{ID: req.ID, Type: resultType(req), Success: true, Payload: payload}
}

func failure(req protocol.Request, err error) protocol.Response {
	return protocol.Response{ID: req.ID, Type: resultType(req), Success: false, Payload: protocol.ErrorPayload{Error: err.Error()}}
}

func messageResponse(req protocol.Request, msg string, err error) protocol.Response {
	if err != nil {
		return failure(req, err)
	}
	return success(req, protocol.MessageResult{Message: msg})
}
