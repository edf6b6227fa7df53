package transport

import "sync"

// LocalSession is an in-process Session implementation. It is used as the
// test double for the WebSocket transport and by hosts that embed a
// namespace directly without network I/O.
type LocalSession struct {
	id string

	mu        sync.Mutex
	onMessage func(*Frame)
	onClose   []func(string)
	closed    bool
	sent      []*Frame
	acks      map[int]func(any)
	nextAck   int
}

// NewLocalSession creates a local session with the given ID.
func NewLocalSession(id string) *LocalSession {
	return &LocalSession{
		id:   id,
		acks: make(map[int]func(any)),
	}
}

// ID returns the session ID
func (s *LocalSession) ID() string {
	return s.id
}

// Send records a frame pushed by the server. Ack frames resolve the pending
// client-side callback instead of being recorded.
func (s *LocalSession) Send(frame *Frame) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	if frame.Type == FrameAck && frame.ID != nil {
		fn := s.acks[*frame.ID]
		delete(s.acks, *frame.ID)
		s.mu.Unlock()
		if fn != nil {
			fn(frame.Data)
		}
		return nil
	}

	s.sent = append(s.sent, frame)
	s.mu.Unlock()
	return nil
}

// OnMessage sets the handler for frames arriving from the client
func (s *LocalSession) OnMessage(fn func(*Frame)) {
	s.mu.Lock()
	s.onMessage = fn
	s.mu.Unlock()
}

// OnClose registers a close handler
func (s *LocalSession) OnClose(fn func(string)) {
	s.mu.Lock()
	s.onClose = append(s.onClose, fn)
	s.mu.Unlock()
}

// Close closes the session
func (s *LocalSession) Close(reason string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	handlers := append(([]func(string))(nil), s.onClose...)
	s.mu.Unlock()

	for _, handler := range handlers {
		handler(reason)
	}
}

// Emit delivers an event to the server as if sent by the connected client.
// A non-nil ack is invoked when the server acknowledges the event.
func (s *LocalSession) Emit(event string, data any, ack func(any)) {
	frame := &Frame{Type: FrameEvent, Event: event, Data: data}

	s.mu.Lock()
	if ack != nil {
		s.nextAck++
		id := s.nextAck
		s.acks[id] = ack
		frame.ID = &id
	}
	s.mu.Unlock()

	s.Deliver(frame)
}

// Deliver pushes a raw frame to the server side of the session.
func (s *LocalSession) Deliver(frame *Frame) {
	s.mu.Lock()
	handler := s.onMessage
	s.mu.Unlock()

	if handler != nil {
		handler(frame)
	}
}

// Sent returns all frames the server pushed to this client so far.
func (s *LocalSession) Sent() []*Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Frame(nil), s.sent...)
}

// Events returns the payloads of pushed event frames with the given name.
func (s *LocalSession) Events(event string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []any
	for _, frame := range s.sent {
		if frame.Type == FrameEvent && frame.Event == event {
			result = append(result, frame.Data)
		}
	}
	return result
}
