package transport

import (
	"encoding/json"
	"fmt"
)

// Frame types exchanged between a client and the server.
const (
	// FrameConnect is sent to the client once after its socket is attached
	// to a namespace. Data carries {"sid": <socket id>}.
	FrameConnect = "connect"

	// FrameEvent carries a named event in either direction. ID is set when
	// the sender requests an acknowledgment.
	FrameEvent = "event"

	// FrameAck answers an event frame that carried an ID.
	FrameAck = "ack"
)

// Frame is the unit of exchange on a session.
type Frame struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	ID    *int   `json:"id,omitempty"`
}

// Encode encodes a frame to its JSON wire form.
func (f *Frame) Encode() ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return data, nil
}

// DecodeFrame decodes a frame from its JSON wire form.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	switch f.Type {
	case FrameConnect, FrameEvent, FrameAck:
	default:
		return nil, fmt.Errorf("unknown frame type: %q", f.Type)
	}

	if f.Type == FrameEvent && f.Event == "" {
		return nil, fmt.Errorf("event frame without event name")
	}

	return &f, nil
}
