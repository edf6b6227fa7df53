package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsSession is the WebSocket-backed Session implementation.
type wsSession struct {
	id       string
	conn     *websocket.Conn
	config   *Config
	outgoing chan *Frame

	closeOnce sync.Once
	closed    chan struct{}

	mu        sync.RWMutex
	onMessage func(*Frame)
	onClose   []func(string)
}

func newWSSession(id string, conn *websocket.Conn, config *Config) *wsSession {
	return &wsSession{
		id:       id,
		conn:     conn,
		config:   config,
		outgoing: make(chan *Frame, 256),
		closed:   make(chan struct{}),
	}
}

// ID returns the session ID
func (s *wsSession) ID() string {
	return s.id
}

// Start starts the read and write loops
func (s *wsSession) Start() {
	go s.writeLoop()
	go s.readLoop()
}

// Send queues a frame for delivery to the client
func (s *wsSession) Send(frame *Frame) error {
	select {
	case s.outgoing <- frame:
		return nil
	case <-s.closed:
		return ErrSessionClosed
	default:
		// Channel full, connection might be slow
		return ErrSlowClient
	}
}

// OnMessage sets the message handler
func (s *wsSession) OnMessage(fn func(*Frame)) {
	s.mu.Lock()
	s.onMessage = fn
	s.mu.Unlock()
}

// OnClose registers a close handler
func (s *wsSession) OnClose(fn func(string)) {
	s.mu.Lock()
	s.onClose = append(s.onClose, fn)
	s.mu.Unlock()
}

// Close closes the session
func (s *wsSession) Close(reason string) {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.conn.Close()

		s.mu.RLock()
		handlers := append(([]func(string))(nil), s.onClose...)
		s.mu.RUnlock()

		for _, handler := range handlers {
			handler(reason)
		}
	})
}

// readLoop delivers inbound frames one at a time, preserving the client's
// send order.
func (s *wsSession) readLoop() {
	defer s.Close("read error")

	s.conn.SetReadLimit(s.config.MaxPayload)
	s.conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			continue
		}

		s.mu.RLock()
		handler := s.onMessage
		s.mu.RUnlock()

		if handler != nil {
			handler(frame)
		}
	}
}

func (s *wsSession) writeLoop() {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-s.outgoing:
			encoded, err := frame.Encode()
			if err != nil {
				continue
			}
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, encoded); err != nil {
				s.Close("write error")
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close("ping failed")
				return
			}
		case <-s.closed:
			return
		}
	}
}
