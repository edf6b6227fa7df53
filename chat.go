package chachan

import (
	"log/slog"
	"sort"

	"github.com/DataShades/chachan/transport"
)

// Middleware runs for every new connection before event listeners are
// installed. Call next to continue with the rest of the chain; returning
// without calling it rejects the connection setup.
type Middleware func(s *transport.Socket, next func())

// ErrorHandler receives stage faults. The host decides whether a fault
// terminates the connection or is merely recorded.
type ErrorHandler func(s *transport.Socket, err error)

// Options configure a Chat.
type Options struct {
	// HookedEvents lists wire events bound in addition to the default set.
	HookedEvents []string

	// ReplaceHookedEvents binds HookedEvents instead of extending the
	// default set.
	ReplaceHookedEvents bool

	// Hooks seeds the registry, keyed by logical operation name.
	Hooks map[string]Hooks

	// Logger replaces slog.Default().
	Logger *slog.Logger
}

// Chat binds the hook pipeline and the room operations to a namespace.
type Chat struct {
	ns           *transport.Namespace
	registry     *Registry
	identities   *identityIndex
	table        []eventDesc
	hookedEvents []string
	middlewares  []Middleware
	onConnect    []func(*transport.Socket)
	onError      ErrorHandler
	logger       *slog.Logger
}

// NewChat creates a chat overlay on the given namespace. Nothing happens
// until Start is called.
func NewChat(ns *transport.Namespace, opts *Options) *Chat {
	if opts == nil {
		opts = &Options{}
	}

	c := &Chat{
		ns:         ns,
		registry:   NewRegistry(),
		identities: newIdentityIndex(),
		logger:     opts.Logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	c.table = c.descriptors()
	c.AddClientHooks(opts.Hooks)

	if opts.ReplaceHookedEvents {
		c.hookedEvents = append([]string(nil), opts.HookedEvents...)
	} else {
		c.hookedEvents = append(DefaultEvents(), opts.HookedEvents...)
	}

	return c
}

// Use appends connection middlewares. Each middleware is called with the
// new socket and a next function that continues the chain.
func (c *Chat) Use(middlewares ...Middleware) *Chat {
	c.middlewares = append(c.middlewares, middlewares...)
	return c
}

// OnConnect registers a handler called for every prepared connection, after
// middlewares have run and listeners are installed.
func (c *Chat) OnConnect(handler func(*transport.Socket)) *Chat {
	c.onConnect = append(c.onConnect, handler)
	return c
}

// OnError sets the handler for stage faults. Without one, faults are logged.
func (c *Chat) OnError(handler ErrorHandler) *Chat {
	c.onError = handler
	return c
}

// AddClientHooks merges hooks into the registry, keyed by logical operation
// name. Merging is field-wise per entry.
func (c *Chat) AddClientHooks(hooks map[string]Hooks) *Chat {
	for name, entry := range hooks {
		c.registry.Register(name, entry)
	}
	return c
}

// ReplaceClientHooks replaces all existing hooks.
func (c *Chat) ReplaceClientHooks(hooks map[string]Hooks) *Chat {
	c.registry.ReplaceAll(hooks)
	return c
}

// DropClientHook drops all handlers for the named logical operation.
func (c *Chat) DropClientHook(name string) *Chat {
	c.registry.Remove(name)
	return c
}

// HookedEvents lists the wire events this chat binds on each connection.
func (c *Chat) HookedEvents() []string {
	return append([]string(nil), c.hookedEvents...)
}

// Registry exposes the hook registry for direct manipulation.
func (c *Chat) Registry() *Registry {
	return c.registry
}

// Namespace returns the underlying namespace. Rarely needed.
func (c *Chat) Namespace() *transport.Namespace {
	return c.ns
}

// Start begins preparing new connections. Call once, after configuration.
func (c *Chat) Start() *Chat {
	c.ns.OnConnect(c.prepare)
	return c
}

// prepare runs the middleware chain and installs listeners on a new socket.
func (c *Chat) prepare(s *transport.Socket) {
	chain := append([]Middleware(nil), c.middlewares...)

	var run func(i int)
	run = func(i int) {
		if i == len(chain) {
			s.OnDisconnect(func(string) {
				c.identities.clear(s)
			})
			c.bind(s)
			for _, handler := range c.onConnect {
				handler(s)
			}
			return
		}
		chain[i](s, func() { run(i + 1) })
	}
	run(0)
}

// SetRooms subscribes every connection held by a user to each of the given
// rooms.
func (c *Chat) SetRooms(user string, rooms []string) {
	for _, s := range c.identities.lookup(user) {
		for _, room := range rooms {
			s.Join(room)
		}
	}
}

// ListMembers maps room names to the sorted, deduplicated user names of
// their members. Sockets without an identity are skipped. A nil or empty
// filter lists every room.
func (c *Chat) ListMembers(rooms []string) map[string][]string {
	names := rooms
	if len(names) == 0 {
		names = c.ns.Rooms()
	}

	result := make(map[string][]string, len(names))
	for _, room := range names {
		seen := make(map[string]bool)
		members := make([]string, 0)
		for _, id := range c.ns.RoomMembers(room) {
			user := c.identities.name(id)
			if user == "" || seen[user] {
				continue
			}
			seen[user] = true
			members = append(members, user)
		}
		sort.Strings(members)
		result[room] = members
	}
	return result
}
