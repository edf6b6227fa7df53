package transport

// Adapter is the interface for managing room membership and broadcasting.
// Rooms come into existence on first Add and disappear when their last
// member is removed.
type Adapter interface {
	// Add adds a socket to a room
	Add(socketID, room string)

	// Remove removes a socket from a room
	Remove(socketID, room string)

	// RemoveAll removes a socket from all rooms
	RemoveAll(socketID string)

	// Sockets returns all socket IDs in a room
	Sockets(room string) []string

	// SocketRooms returns all rooms a socket is in
	SocketRooms(socketID string) []string

	// Rooms returns the names of all rooms with at least one member
	Rooms() []string

	// Broadcast emits an event to all sockets in the given rooms except the
	// excluded ones. An empty room list targets the whole namespace.
	Broadcast(event string, data any, rooms []string, except []string) error

	// Close cleans up the adapter
	Close() error
}
