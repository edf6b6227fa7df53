package chachan

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Wire events handled by the chat overlay.
const (
	EventUserLogin   = "user:login"
	EventUserLogout  = "user:logout"
	EventRoomList    = "room:list"
	EventRoomDetails = "room:details"
	EventRoomVisit   = "room:visit"
	EventRoomCreate  = "room:create"
	EventRoomJoin    = "room:join"
	EventRoomLeave   = "room:leave"
	EventRoomInvite  = "room:invite"
	EventRoomExpel   = "room:expel"
	EventMessage     = "message"
)

// Events broadcast to other room members.
//
// room:leave broadcasts EventRoomJoined and room:expel broadcasts
// EventRoomInvited. The shared names are a wire-protocol wart that clients
// already depend on, so they are kept rather than split into distinct
// left/expelled events.
const (
	EventRoomVisited = "room:visited"
	EventRoomJoined  = "room:joined"
	EventRoomInvited = "room:invited"
)

// EventValidationError is emitted to the acting connection when a required
// payload field is missing. Its payload is {"error": "<field> must be
// specified"}.
const EventValidationError = "error:validation"

// DefaultEvents returns the wire events bound by default.
func DefaultEvents() []string {
	return []string{
		EventUserLogin,
		EventUserLogout,
		EventRoomList,
		EventRoomDetails,
		EventRoomVisit,
		EventRoomCreate,
		EventRoomJoin,
		EventRoomLeave,
		EventRoomInvite,
		EventRoomExpel,
		EventMessage,
	}
}

// logicalNames is the static wire-to-logical mapping for the built-in
// events. Custom events fall back to LogicalName.
var logicalNames = map[string]string{
	EventUserLogin:   "userLogin",
	EventUserLogout:  "userLogout",
	EventRoomList:    "roomList",
	EventRoomDetails: "roomDetails",
	EventRoomVisit:   "roomVisit",
	EventRoomCreate:  "roomCreate",
	EventRoomJoin:    "roomJoin",
	EventRoomLeave:   "roomLeave",
	EventRoomInvite:  "roomInvite",
	EventRoomExpel:   "roomExpel",
	EventMessage:     "message",
}

// LogicalName derives the hook registry key for a wire event name: colon
// separators are dropped and every segment after the first is capitalized,
// so "room:join" becomes "roomJoin".
func LogicalName(event string) string {
	if name, ok := logicalNames[event]; ok {
		return name
	}

	var b strings.Builder
	for i, segment := range strings.Split(event, ":") {
		if i == 0 || segment == "" {
			b.WriteString(segment)
			continue
		}
		r, size := utf8.DecodeRuneInString(segment)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(segment[size:])
	}
	return b.String()
}
