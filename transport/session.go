package transport

import "errors"

var (
	ErrSessionClosed = errors.New("session closed")
	ErrSlowClient    = errors.New("slow client")
)

// Session is the low-level bidirectional link a Socket speaks over. The
// package ships two implementations: wsSession over a WebSocket connection
// and LocalSession for in-process use.
type Session interface {
	// ID returns the session ID.
	ID() string

	// Send delivers a frame to the client.
	Send(frame *Frame) error

	// OnMessage sets the handler for frames arriving from the client.
	// Frames from one session are delivered one at a time, in arrival order.
	OnMessage(fn func(*Frame))

	// OnClose registers a handler called once when the session closes.
	OnClose(fn func(reason string))

	// Close tears the session down.
	Close(reason string)
}
