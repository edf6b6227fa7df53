package transport

import (
	"sync"
	"sync/atomic"
)

// Ack acknowledges an inbound event. Handlers receive a nil Ack when the
// client did not request an acknowledgment.
type Ack func(result any)

// Handler handles a named event arriving from the client.
type Handler func(data any, ack Ack)

// AckHandler handles an acknowledgment response from the client.
type AckHandler func(data any)

// Socket represents a client connection attached to a namespace.
type Socket struct {
	id        string
	session   Session
	namespace *Namespace

	rooms   map[string]bool
	roomsMu sync.RWMutex

	handlers   map[string][]Handler
	handlersMu sync.RWMutex

	ackID       atomic.Int64
	ackHandlers sync.Map

	data sync.Map

	onDisconnect []func(string)
	disconnectMu sync.RWMutex
}

func newSocket(session Session, namespace *Namespace) *Socket {
	socket := &Socket{
		id:        session.ID(),
		session:   session,
		namespace: namespace,
		rooms:     make(map[string]bool),
		handlers:  make(map[string][]Handler),
	}

	session.OnMessage(socket.handleFrame)
	session.OnClose(socket.handleClose)

	return socket
}

// ID returns the socket ID
func (s *Socket) ID() string {
	return s.id
}

// Emit sends an event to the client
func (s *Socket) Emit(event string, data any) error {
	return s.session.Send(&Frame{
		Type:  FrameEvent,
		Event: event,
		Data:  data,
	})
}

// EmitWithAck sends an event and expects an acknowledgment
func (s *Socket) EmitWithAck(event string, ack AckHandler, data any) error {
	id := int(s.ackID.Add(1))
	s.ackHandlers.Store(id, ack)

	return s.session.Send(&Frame{
		Type:  FrameEvent,
		Event: event,
		Data:  data,
		ID:    &id,
	})
}

// On registers an event handler
func (s *Socket) On(event string, handler Handler) {
	s.handlersMu.Lock()
	s.handlers[event] = append(s.handlers[event], handler)
	s.handlersMu.Unlock()
}

// Off removes event handlers
func (s *Socket) Off(event string) {
	s.handlersMu.Lock()
	delete(s.handlers, event)
	s.handlersMu.Unlock()
}

// Join adds the socket to a room
func (s *Socket) Join(room string) {
	s.roomsMu.Lock()
	s.rooms[room] = true
	s.roomsMu.Unlock()

	s.namespace.adapter.Add(s.id, room)
}

// Leave removes the socket from a room
func (s *Socket) Leave(room string) {
	s.roomsMu.Lock()
	delete(s.rooms, room)
	s.roomsMu.Unlock()

	s.namespace.adapter.Remove(s.id, room)
}

// Rooms returns all rooms the socket is in
func (s *Socket) Rooms() []string {
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()

	rooms := make([]string, 0, len(s.rooms))
	for room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Set stores arbitrary data on the socket
func (s *Socket) Set(key string, value any) {
	s.data.Store(key, value)
}

// Get retrieves data from the socket
func (s *Socket) Get(key string) (any, bool) {
	return s.data.Load(key)
}

// OnDisconnect registers a disconnect handler
func (s *Socket) OnDisconnect(handler func(string)) {
	s.disconnectMu.Lock()
	s.onDisconnect = append(s.onDisconnect, handler)
	s.disconnectMu.Unlock()
}

// Disconnect disconnects the socket
func (s *Socket) Disconnect() {
	s.session.Close("server disconnect")
}

func (s *Socket) handleFrame(frame *Frame) {
	switch frame.Type {
	case FrameEvent:
		s.handleEvent(frame)
	case FrameAck:
		s.handleAck(frame)
	}
}

// handleEvent runs handlers synchronously on the session's delivery
// goroutine, so events from one client are observed in arrival order.
func (s *Socket) handleEvent(frame *Frame) {
	var ack Ack
	if frame.ID != nil {
		id := *frame.ID
		var once sync.Once
		ack = func(result any) {
			once.Do(func() {
				s.session.Send(&Frame{Type: FrameAck, Data: result, ID: &id})
			})
		}
	}

	s.handlersMu.RLock()
	handlers := append([]Handler(nil), s.handlers[frame.Event]...)
	s.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(frame.Data, ack)
	}
}

func (s *Socket) handleAck(frame *Frame) {
	if frame.ID == nil {
		return
	}

	val, ok := s.ackHandlers.LoadAndDelete(*frame.ID)
	if !ok {
		return
	}

	if handler := val.(AckHandler); handler != nil {
		handler(frame.Data)
	}
}

func (s *Socket) handleClose(reason string) {
	// Leave all rooms
	for _, room := range s.Rooms() {
		s.Leave(room)
	}

	s.disconnectMu.RLock()
	handlers := append(([]func(string))(nil), s.onDisconnect...)
	s.disconnectMu.RUnlock()

	for _, handler := range handlers {
		handler(reason)
	}

	s.namespace.removeSocket(s.id)
}
