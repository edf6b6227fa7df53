package transport

import "sync"

// Namespace groups sockets under a logical entrypoint. Each namespace has
// its own adapter, rooms and connection handlers.
type Namespace struct {
	name      string
	adapter   Adapter
	sockets   map[string]*Socket
	mu        sync.RWMutex
	onConnect []func(*Socket)
	connectMu sync.RWMutex
}

// NewNamespace creates a new namespace
func NewNamespace(name string) *Namespace {
	ns := &Namespace{
		name:    name,
		sockets: make(map[string]*Socket),
	}

	ns.adapter = NewMemoryAdapter(ns)

	return ns
}

// Name returns the namespace name
func (ns *Namespace) Name() string {
	return ns.name
}

// OnConnect registers a handler called for every socket attached to this
// namespace
func (ns *Namespace) OnConnect(handler func(*Socket)) {
	ns.connectMu.Lock()
	ns.onConnect = append(ns.onConnect, handler)
	ns.connectMu.Unlock()
}

// Connect attaches a session to the namespace and returns its socket. The
// socket auto-joins a private room named by its own ID and receives a
// connect frame before any connect handlers run.
func (ns *Namespace) Connect(session Session) *Socket {
	socket := newSocket(session, ns)

	ns.mu.Lock()
	ns.sockets[socket.ID()] = socket
	ns.mu.Unlock()

	socket.Join(socket.ID())

	session.Send(&Frame{
		Type: FrameConnect,
		Data: map[string]any{"sid": socket.ID()},
	})

	ns.connectMu.RLock()
	handlers := append(([]func(*Socket))(nil), ns.onConnect...)
	ns.connectMu.RUnlock()

	for _, handler := range handlers {
		handler(socket)
	}

	return socket
}

// To returns a BroadcastOperator for emitting to specific rooms
func (ns *Namespace) To(rooms ...string) *BroadcastOperator {
	return &BroadcastOperator{
		namespace: ns,
		rooms:     rooms,
	}
}

// Emit broadcasts an event to all sockets in the namespace
func (ns *Namespace) Emit(event string, data any) error {
	return ns.To().Emit(event, data)
}

// Sockets returns all connected sockets
func (ns *Namespace) Sockets() []*Socket {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	sockets := make([]*Socket, 0, len(ns.sockets))
	for _, socket := range ns.sockets {
		sockets = append(sockets, socket)
	}
	return sockets
}

// Socket retrieves a socket by ID
func (ns *Namespace) Socket(id string) (*Socket, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	socket, ok := ns.sockets[id]
	return socket, ok
}

// RoomMembers returns the socket IDs currently in a room
func (ns *Namespace) RoomMembers(room string) []string {
	return ns.adapter.Sockets(room)
}

// Rooms returns the names of all rooms with at least one member
func (ns *Namespace) Rooms() []string {
	return ns.adapter.Rooms()
}

// SetAdapter sets a custom adapter
func (ns *Namespace) SetAdapter(adapter Adapter) {
	ns.adapter = adapter
}

// Adapter returns the namespace's adapter
func (ns *Namespace) Adapter() Adapter {
	return ns.adapter
}

func (ns *Namespace) removeSocket(id string) {
	ns.mu.Lock()
	delete(ns.sockets, id)
	ns.mu.Unlock()

	ns.adapter.RemoveAll(id)
}

// BroadcastOperator provides methods for broadcasting to specific rooms
type BroadcastOperator struct {
	namespace *Namespace
	rooms     []string
	except    []string
}

// To adds rooms to broadcast to
func (b *BroadcastOperator) To(rooms ...string) *BroadcastOperator {
	b.rooms = append(b.rooms, rooms...)
	return b
}

// Except excludes specific socket IDs from the broadcast
func (b *BroadcastOperator) Except(socketIDs ...string) *BroadcastOperator {
	b.except = append(b.except, socketIDs...)
	return b
}

// Emit broadcasts an event
func (b *BroadcastOperator) Emit(event string, data any) error {
	return b.namespace.adapter.Broadcast(event, data, b.rooms, b.except)
}
