package library

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/corey/cfk/internal/errs"
)

// Action is a lifecycle transition reported to observers.
type Action string

const (
	ActionRegister  Action = "register"
	ActionInitiate  Action = "initiate"
	ActionTerminate Action = "terminate"
)

// Event describes one lifecycle transition. Err is set when the hook failed.
type Event struct {
	Library string
	Action  Action
	Scope   Scope
	At      time.Time
	Err     error
}

// Registry holds the libraries known to one kernel. It is not a process
// global: the kernel creates and owns it.
type Registry struct {
	lifecycle sync.Mutex // serializes Initiate/Terminate; hooks must not re-enter the registry
	mu        sync.RWMutex
	items     map[string]Library
	order     []string
	initiated []string // initiation order, for reverse teardown
	observers []func(Event)
	now       func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		items: make(map[string]Library),
		now:   time.Now,
	}
}

// OnEvent adds an observer called synchronously for every transition.
func (r *Registry) OnEvent(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Register adds lib. Each name may be registered exactly once.
func (r *Registry) Register(lib Library) error {
	if lib == nil {
		return errs.New(errs.BadValue, "nil library")
	}
	name := lib.Name()
	if !ValidName(name) {
		return errs.New(errs.BadValue, "invalid library name %q", name)
	}

	r.mu.Lock()
	if _, exists := r.items[name]; exists {
		r.mu.Unlock()
		return errs.New(errs.ValueExists, "library %q already registered", name)
	}
	r.items[name] = lib
	r.order = append(r.order, name)
	r.mu.Unlock()

	r.emit(Event{Library: name, Action: ActionRegister, Scope: lib.Scope()})
	return nil
}

// Get returns the library registered under name.
func (r *Registry) Get(name string) (Library, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lib, ok := r.items[name]
	return lib, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns libraries in registration order.
func (r *Registry) List() []Library {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Library, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.items[name])
	}
	return out
}

// Names returns registered names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	sort.Strings(out)
	return out
}

// Len returns the number of registered libraries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Initiate initiates the named library. Initiating an initiated library is a no-op.
func (r *Registry) Initiate(ctx context.Context, name string) error {
	lib, ok := r.Get(name)
	if !ok {
		return errs.New(errs.ValueNotFound, "library %q not registered", name)
	}
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	if lib.State() == StateInitiated {
		return nil
	}
	err := lib.Initiate(ctx)
	if err == nil {
		r.markInitiated(name)
	}
	r.emit(Event{Library: name, Action: ActionInitiate, Scope: lib.Scope(), Err: err})
	return err
}

// Terminate terminates the named library. Terminating a library that is not
// initiated is a no-op.
func (r *Registry) Terminate(ctx context.Context, name string) error {
	lib, ok := r.Get(name)
	if !ok {
		return errs.New(errs.ValueNotFound, "library %q not registered", name)
	}
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	if lib.State() != StateInitiated {
		return nil
	}
	err := lib.Terminate(ctx)
	if err == nil {
		r.unmarkInitiated(name)
	}
	r.emit(Event{Library: name, Action: ActionTerminate, Scope: lib.Scope(), Err: err})
	return err
}

// InitiateAll initiates every library in registration order, stopping at the
// first failure.
func (r *Registry) InitiateAll(ctx context.Context) error {
	for _, lib := range r.List() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Initiate(ctx, lib.Name()); err != nil {
			return err
		}
	}
	return nil
}

// TerminateAll terminates initiated libraries in reverse initiation order.
// It keeps going past failures and returns them joined.
func (r *Registry) TerminateAll(ctx context.Context) error {
	r.mu.RLock()
	names := make([]string, len(r.initiated))
	copy(names, r.initiated)
	r.mu.RUnlock()

	var errList []error
	for i := len(names) - 1; i >= 0; i-- {
		if err := r.Terminate(ctx, names[i]); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

// Initiated returns names of initiated libraries in initiation order.
func (r *Registry) Initiated() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.initiated))
	copy(out, r.initiated)
	return out
}

func (r *Registry) markInitiated(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.initiated {
		if n == name {
			return
		}
	}
	r.initiated = append(r.initiated, name)
}

func (r *Registry) unmarkInitiated(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.initiated {
		if n == name {
			r.initiated = append(r.initiated[:i], r.initiated[i+1:]...)
			return
		}
	}
}

func (r *Registry) emit(ev Event) {
	ev.At = r.now()
	r.mu.RLock()
	observers := make([]func(Event), len(r.observers))
	copy(observers, r.observers)
	r.mu.RUnlock()
	for _, fn := range observers {
		fn(ev)
	}
}
