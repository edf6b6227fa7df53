package chachan

import (
	"sync"

	"github.com/DataShades/chachan/transport"
)

// Hook transforms an event payload at one stage of the pipeline. The value
// it returns is passed to the next stage. A before hook may return
// ErrCancelled to abort the invocation; any other error is a stage fault.
type Hook func(s *transport.Socket, data any) (any, error)

// Hooks groups the pipeline stages for one logical operation. Nil fields
// keep the default behavior: pass-through for Before and After, the
// built-in domain operation for On.
type Hooks struct {
	Before Hook
	On     Hook
	After  Hook
}

// Registry maps logical operation names to their hooks. It is sparse by
// design: operations without an entry run entirely on defaults.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]Hooks
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]Hooks)}
}

// Register merges hooks field-by-field into the named entry, so registering
// a Before does not erase a previously registered After. Unknown names
// create a fresh entry.
func (r *Registry) Register(name string, hooks Hooks) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.hooks[name]
	if hooks.Before != nil {
		entry.Before = hooks.Before
	}
	if hooks.On != nil {
		entry.On = hooks.On
	}
	if hooks.After != nil {
		entry.After = hooks.After
	}
	r.hooks[name] = entry
}

// ReplaceAll discards every registered hook and installs the given set
// verbatim.
func (r *Registry) ReplaceAll(hooks map[string]Hooks) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks = make(map[string]Hooks, len(hooks))
	for name, entry := range hooks {
		r.hooks[name] = entry
	}
}

// Remove deletes the named entry. Subsequent dispatches for that operation
// fall back fully to defaults.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.hooks, name)
}

// Lookup returns the hooks registered for a logical operation name. The
// zero value is returned for unknown names.
func (r *Registry) Lookup(name string) Hooks {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.hooks[name]
}
