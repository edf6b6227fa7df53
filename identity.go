package chachan

import (
	"sync"

	"github.com/DataShades/chachan/transport"
)

// identityIndex tracks which sockets hold which user name. It is kept as an
// explicit two-way index so join/invite/expel fan-out is a map lookup, not
// a scan over every socket in the namespace.
type identityIndex struct {
	mu     sync.RWMutex
	byName map[string]map[string]*transport.Socket // user -> socketID -> socket
	byID   map[string]string                       // socketID -> user
}

func newIdentityIndex() *identityIndex {
	return &identityIndex{
		byName: make(map[string]map[string]*transport.Socket),
		byID:   make(map[string]string),
	}
}

// bind associates a socket with a user name, replacing any prior binding
// for that socket. Last write wins per connection.
func (ix *identityIndex) bind(s *transport.Socket, user string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.unbind(s.ID())

	if ix.byName[user] == nil {
		ix.byName[user] = make(map[string]*transport.Socket)
	}
	ix.byName[user][s.ID()] = s
	ix.byID[s.ID()] = user
}

// clear drops the socket's binding and returns the prior user name, or the
// empty string if the socket was never bound.
func (ix *identityIndex) clear(s *transport.Socket) string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	prior := ix.byID[s.ID()]
	ix.unbind(s.ID())
	return prior
}

// unbind removes a socket from both maps. Caller holds ix.mu.
func (ix *identityIndex) unbind(id string) {
	user, ok := ix.byID[id]
	if !ok {
		return
	}

	delete(ix.byID, id)

	set := ix.byName[user]
	delete(set, id)
	if len(set) == 0 {
		delete(ix.byName, user)
	}
}

// lookup returns every socket currently bound to a user name.
func (ix *identityIndex) lookup(user string) []*transport.Socket {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	set := ix.byName[user]
	result := make([]*transport.Socket, 0, len(set))
	for _, s := range set {
		result = append(result, s)
	}
	return result
}

// name returns the user bound to a socket ID, or the empty string.
func (ix *identityIndex) name(id string) string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return ix.byID[id]
}
