package transport

import (
	"errors"
	"sync"
)

// MemoryAdapter is an in-memory implementation of the Adapter interface
type MemoryAdapter struct {
	rooms       map[string]map[string]bool // room -> socketIDs
	socketRooms map[string]map[string]bool // socketID -> rooms
	mu          sync.RWMutex
	namespace   *Namespace
}

// NewMemoryAdapter creates a new in-memory adapter
func NewMemoryAdapter(namespace *Namespace) *MemoryAdapter {
	return &MemoryAdapter{
		rooms:       make(map[string]map[string]bool),
		socketRooms: make(map[string]map[string]bool),
		namespace:   namespace,
	}
}

// Add adds a socket to a room
func (a *MemoryAdapter) Add(socketID, room string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.rooms[room] == nil {
		a.rooms[room] = make(map[string]bool)
	}
	a.rooms[room][socketID] = true

	if a.socketRooms[socketID] == nil {
		a.socketRooms[socketID] = make(map[string]bool)
	}
	a.socketRooms[socketID][room] = true
}

// Remove removes a socket from a room
func (a *MemoryAdapter) Remove(socketID, room string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.rooms[room] != nil {
		delete(a.rooms[room], socketID)
		if len(a.rooms[room]) == 0 {
			delete(a.rooms, room)
		}
	}

	if a.socketRooms[socketID] != nil {
		delete(a.socketRooms[socketID], room)
		if len(a.socketRooms[socketID]) == 0 {
			delete(a.socketRooms, socketID)
		}
	}
}

// RemoveAll removes a socket from all rooms
func (a *MemoryAdapter) RemoveAll(socketID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rooms := a.socketRooms[socketID]
	for room := range rooms {
		if a.rooms[room] != nil {
			delete(a.rooms[room], socketID)
			if len(a.rooms[room]) == 0 {
				delete(a.rooms, room)
			}
		}
	}

	delete(a.socketRooms, socketID)
}

// Sockets returns all socket IDs in a room
func (a *MemoryAdapter) Sockets(room string) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	sockets := a.rooms[room]
	result := make([]string, 0, len(sockets))
	for socketID := range sockets {
		result = append(result, socketID)
	}
	return result
}

// SocketRooms returns all rooms a socket is in
func (a *MemoryAdapter) SocketRooms(socketID string) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rooms := a.socketRooms[socketID]
	result := make([]string, 0, len(rooms))
	for room := range rooms {
		result = append(result, room)
	}
	return result
}

// Rooms returns the names of all rooms with at least one member
func (a *MemoryAdapter) Rooms() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]string, 0, len(a.rooms))
	for room := range a.rooms {
		result = append(result, room)
	}
	return result
}

// Broadcast emits an event to all sockets in the specified rooms except
// excluded ones
func (a *MemoryAdapter) Broadcast(event string, data any, rooms []string, except []string) error {
	// Build exclusion map
	excludeMap := make(map[string]bool)
	for _, sid := range except {
		excludeMap[sid] = true
	}

	// Collect target socket IDs. Membership is snapshotted before delivery
	// so sends never run under the adapter lock.
	targets := make(map[string]bool)

	if len(rooms) == 0 {
		for _, socket := range a.namespace.Sockets() {
			if !excludeMap[socket.ID()] {
				targets[socket.ID()] = true
			}
		}
	} else {
		a.mu.RLock()
		for _, room := range rooms {
			for socketID := range a.rooms[room] {
				if !excludeMap[socketID] {
					targets[socketID] = true
				}
			}
		}
		a.mu.RUnlock()
	}

	var errs []error
	for socketID := range targets {
		if socket, ok := a.namespace.Socket(socketID); ok {
			if err := socket.Emit(event, data); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// Close cleans up the adapter
func (a *MemoryAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.rooms = make(map[string]map[string]bool)
	a.socketRooms = make(map[string]map[string]bool)

	return nil
}
