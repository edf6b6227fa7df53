package transport

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Config holds WebSocket transport configuration
type Config struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	WriteTimeout time.Duration
	MaxPayload   int64
}

// DefaultConfig returns default transport configuration
func DefaultConfig() *Config {
	return &Config{
		PingInterval: 54 * time.Second,
		PongTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		MaxPayload:   1 << 20, // 1MB
	}
}

// Server accepts WebSocket connections and attaches them to namespaces.
// Clients select a namespace with the `ns` query parameter; the default
// namespace is "/".
type Server struct {
	config     *Config
	upgrader   websocket.Upgrader
	namespaces map[string]*Namespace
	nsMu       sync.RWMutex
	sessions   sync.Map
	logger     *slog.Logger
}

// NewServer creates a new transport server
func NewServer(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	server := &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // TODO: Make configurable
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		namespaces: make(map[string]*Namespace),
		logger:     slog.Default(),
	}

	// Create default namespace
	server.Of("/")

	return server
}

// SetLogger replaces the server's logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Of returns a namespace, creating it if it doesn't exist
func (s *Server) Of(name string) *Namespace {
	if name == "" {
		name = "/"
	}

	s.nsMu.RLock()
	ns, ok := s.namespaces[name]
	s.nsMu.RUnlock()

	if ok {
		return ns
	}

	s.nsMu.Lock()
	defer s.nsMu.Unlock()

	if ns, ok := s.namespaces[name]; ok {
		return ns
	}

	ns = NewNamespace(name)
	s.namespaces[name] = ns
	return ns
}

// ServeHTTP handles HTTP requests and upgrades them to WebSocket sessions
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("ns")

	s.nsMu.RLock()
	ns, ok := s.namespaces[name]
	if name == "" {
		ns, ok = s.namespaces["/"]
	}
	s.nsMu.RUnlock()

	if !ok {
		http.Error(w, "unknown namespace", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sid := uuid.NewString()
	session := newWSSession(sid, conn, s.config)

	s.sessions.Store(sid, session)
	session.OnClose(func(reason string) {
		s.sessions.Delete(sid)
		s.logger.Info("client disconnected", "sid", sid, "reason", reason)
	})

	// Attach before starting the loops so no inbound frame is missed.
	ns.Connect(session)
	session.Start()

	s.logger.Info("client connected", "sid", sid, "namespace", ns.Name())
}

// Close closes all sessions
func (s *Server) Close() {
	s.sessions.Range(func(key, value any) bool {
		value.(*wsSession).Close("server shutdown")
		return true
	})
}
