package chachan

import (
	"sort"

	"github.com/DataShades/chachan/transport"
)

// field extracts a non-empty string value from a map payload.
func field(data any, key string) (string, bool) {
	m, ok := data.(map[string]any)
	if !ok {
		return "", false
	}
	v, ok := m[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// mustExist reports whether a required field is present, emitting a
// validation error to the acting connection when it is not. Validation
// failures are part of the protocol, never error returns.
func (c *Chat) mustExist(s *transport.Socket, data any, key string) (string, bool) {
	v, ok := field(data, key)
	if !ok {
		if err := s.Emit(EventValidationError, map[string]any{
			"error": "<" + key + "> must be specified",
		}); err != nil {
			c.logger.Warn("validation error delivery failed", "error", err)
		}
		return "", false
	}
	return v, true
}

// broadcast emits an event to a room's members, excluding the acting socket.
func (c *Chat) broadcast(s *transport.Socket, room, event string, data any) {
	if err := c.ns.To(room).Except(s.ID()).Emit(event, data); err != nil {
		c.logger.Warn("room broadcast failed", "event", event, "room", room, "error", err)
	}
}

func (c *Chat) opUserLogin(s *transport.Socket, data any) (any, error) {
	user, ok := c.mustExist(s, data, "user")
	if !ok {
		return nil, nil
	}

	c.identities.bind(s, user)
	return map[string]any{"user": user}, nil
}

// opUserLogout clears the socket's identity and answers with the prior user
// name.
func (c *Chat) opUserLogout(s *transport.Socket, data any) (any, error) {
	return c.identities.clear(s), nil
}

// opRoomList lists the rooms the socket belongs to, excluding the private
// room every socket holds under its own ID.
func (c *Chat) opRoomList(s *transport.Socket, data any) (any, error) {
	rooms := make([]string, 0)
	for _, room := range s.Rooms() {
		if room != s.ID() {
			rooms = append(rooms, room)
		}
	}
	sort.Strings(rooms)
	return rooms, nil
}

// opRoomDetails echoes the payload verbatim. It exists as a hook point:
// hosts attach an On hook to serve real room metadata.
func (c *Chat) opRoomDetails(s *transport.Socket, data any) (any, error) {
	return data, nil
}

func (c *Chat) opRoomVisit(s *transport.Socket, data any) (any, error) {
	room, ok := c.mustExist(s, data, "room")
	if !ok {
		return nil, nil
	}

	payload := map[string]any{"room": room, "user": c.identities.name(s.ID())}
	c.broadcast(s, room, EventRoomVisited, payload)
	return payload, nil
}

// opRoomJoin joins every connection sharing the acting identity, so a user
// logged in from several devices ends up in the room on all of them. Both
// room:create and room:join dispatch here.
func (c *Chat) opRoomJoin(s *transport.Socket, data any) (any, error) {
	room, ok := c.mustExist(s, data, "room")
	if !ok {
		return nil, nil
	}

	user := c.identities.name(s.ID())
	for _, peer := range c.fanout(s, user) {
		peer.Join(room)
	}

	payload := map[string]any{"room": room, "user": user}
	c.broadcast(s, room, EventRoomJoined, payload)
	return payload, nil
}

func (c *Chat) opRoomLeave(s *transport.Socket, data any) (any, error) {
	room, ok := c.mustExist(s, data, "room")
	if !ok {
		return nil, nil
	}

	user := c.identities.name(s.ID())
	for _, peer := range c.fanout(s, user) {
		peer.Leave(room)
	}

	payload := map[string]any{"room": room, "user": user}
	c.broadcast(s, room, EventRoomJoined, payload)
	return payload, nil
}

// opRoomInvite joins every connection of the target user to the room. When
// the target holds no connection the operation is a no-op: the response
// carries no "by" key and nothing is broadcast.
func (c *Chat) opRoomInvite(s *transport.Socket, data any) (any, error) {
	user, ok := c.mustExist(s, data, "user")
	if !ok {
		return nil, nil
	}
	room, ok := c.mustExist(s, data, "room")
	if !ok {
		return nil, nil
	}

	targets := c.identities.lookup(user)
	if len(targets) == 0 {
		return map[string]any{"room": room, "user": user}, nil
	}

	for _, target := range targets {
		target.Join(room)
	}

	payload := map[string]any{"room": room, "user": user, "by": c.identities.name(s.ID())}
	c.broadcast(s, room, EventRoomInvited, payload)
	return payload, nil
}

func (c *Chat) opRoomExpel(s *transport.Socket, data any) (any, error) {
	user, ok := c.mustExist(s, data, "user")
	if !ok {
		return nil, nil
	}
	room, ok := c.mustExist(s, data, "room")
	if !ok {
		return nil, nil
	}

	targets := c.identities.lookup(user)
	if len(targets) == 0 {
		return map[string]any{"room": room, "user": user}, nil
	}

	for _, target := range targets {
		target.Leave(room)
	}

	payload := map[string]any{"room": room, "user": user, "by": c.identities.name(s.ID())}
	c.broadcast(s, room, EventRoomInvited, payload)
	return payload, nil
}

// opMessage relays the raw payload to the room, excluding the sender.
func (c *Chat) opMessage(s *transport.Socket, data any) (any, error) {
	room, ok := c.mustExist(s, data, "room")
	if !ok {
		return nil, nil
	}

	c.broadcast(s, room, EventMessage, data)
	return data, nil
}

// fanout returns the sockets an identity-scoped mutation applies to: every
// connection bound to the user, or just the acting socket when it holds no
// identity.
func (c *Chat) fanout(s *transport.Socket, user string) []*transport.Socket {
	if user == "" {
		return []*transport.Socket{s}
	}

	peers := c.identities.lookup(user)
	if len(peers) == 0 {
		return []*transport.Socket{s}
	}
	return peers
}
