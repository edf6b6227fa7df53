package chachan

import (
	"errors"

	"github.com/DataShades/chachan/transport"
)

// eventDesc binds a wire event name to its logical operation name and
// built-in handler. The table is fixed for the lifetime of a Chat.
type eventDesc struct {
	logical string
	wire    string
	op      Hook
}

// descriptors returns the built-in operation table. Events bound beyond
// this table get a pass-through default On.
func (c *Chat) descriptors() []eventDesc {
	return []eventDesc{
		{"userLogin", EventUserLogin, c.opUserLogin},
		{"userLogout", EventUserLogout, c.opUserLogout},
		{"roomList", EventRoomList, c.opRoomList},
		{"roomDetails", EventRoomDetails, c.opRoomDetails},
		{"roomVisit", EventRoomVisit, c.opRoomVisit},
		{"roomCreate", EventRoomCreate, c.opRoomJoin},
		{"roomJoin", EventRoomJoin, c.opRoomJoin},
		{"roomLeave", EventRoomLeave, c.opRoomLeave},
		{"roomInvite", EventRoomInvite, c.opRoomInvite},
		{"roomExpel", EventRoomExpel, c.opRoomExpel},
		{"message", EventMessage, c.opMessage},
	}
}

// bind installs the hook pipeline on every hooked event of a newly
// connected socket. Events outside the hooked list get no listener at all,
// so they are never observed.
func (c *Chat) bind(s *transport.Socket) {
	builtin := make(map[string]eventDesc, len(c.table))
	for _, desc := range c.table {
		builtin[desc.wire] = desc
	}

	for _, event := range c.hookedEvents {
		desc, ok := builtin[event]
		if !ok {
			desc = eventDesc{logical: LogicalName(event), wire: event}
		}
		s.On(event, c.pipeline(s, desc))
	}
}

// pipeline returns the handler that runs before -> on -> after for a single
// wire event. Stages run strictly in sequence; the ack, when requested,
// fires exactly once with the post-after result.
func (c *Chat) pipeline(s *transport.Socket, desc eventDesc) transport.Handler {
	return func(data any, ack transport.Ack) {
		hooks := c.registry.Lookup(desc.logical)

		if hooks.Before != nil {
			transformed, err := hooks.Before(s, data)
			if errors.Is(err, ErrCancelled) {
				c.logger.Debug("invocation cancelled", "event", desc.wire)
				return
			}
			if err != nil {
				c.fault(s, &StageError{Event: desc.wire, Stage: StageBefore, Err: err})
				return
			}
			data = transformed
		}

		on := hooks.On
		if on == nil {
			on = desc.op
		}

		result := data
		if on != nil {
			var err error
			result, err = on(s, data)
			if err != nil {
				c.fault(s, &StageError{Event: desc.wire, Stage: StageOn, Err: err})
				return
			}
		}

		if hooks.After != nil {
			var err error
			result, err = hooks.After(s, result)
			if err != nil {
				c.fault(s, &StageError{Event: desc.wire, Stage: StageAfter, Err: err})
				return
			}
		}

		if ack != nil {
			ack(result)
		}
	}
}

// fault hands a stage error to the host's error handler. Faults are never
// retried and never get a structured wire representation.
func (c *Chat) fault(s *transport.Socket, err *StageError) {
	if handler := c.onError; handler != nil {
		handler(s, err)
		return
	}
	c.logger.Error("hook pipeline fault",
		"event", err.Event, "stage", string(err.Stage), "error", err.Err)
}
