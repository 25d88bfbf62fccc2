// Package library owns plugin library handles and their lifecycle.
//
// A library is registered once under a dotted name (cf3.mesh), then moves
// between the registered, initiated and terminated states through Initiate
// and Terminate. Hooks run at most once per transition: repeated Initiate
// calls on an initiated library are no-ops, as are Terminate calls on a
// library that was never initiated.
package library

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/corey/cfk/internal/errs"
)

// State is a library's lifecycle position.
type State int

const (
	StateRegistered State = iota
	StateInitiated
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateInitiated:
		return "initiated"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Scope tells where a library's code lives.
type Scope int

const (
	ScopeBuiltin Scope = iota
	ScopeDynamic
)

func (s Scope) String() string {
	if s == ScopeDynamic {
		return "dynamic"
	}
	return "builtin"
}

// Library is a named plugin with lifecycle hooks.
type Library interface {
	Name() string
	Description() string
	Scope() Scope
	Path() string // shared library path; "" for builtin
	State() State
	Initiate(ctx context.Context) error
	Terminate(ctx context.Context) error
}

// Hooks are the callbacks run on lifecycle transitions. Nil hooks are no-ops.
type Hooks struct {
	Initiate  func(ctx context.Context) error
	Terminate func(ctx context.Context) error
}

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)

// ValidName reports whether name is a well-formed library name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Handle is the standard Library implementation.
type Handle struct {
	name        string
	description string
	scope       Scope
	path        string
	hooks       Hooks

	mu    sync.Mutex
	state State
}

// Option configures a Handle.
type Option func(*Handle)

// WithDescription sets the human readable description.
func WithDescription(desc string) Option {
	return func(h *Handle) { h.description = desc }
}

// WithHooks sets the lifecycle hooks.
func WithHooks(hooks Hooks) Option {
	return func(h *Handle) { h.hooks = hooks }
}

// WithDynamicPath marks the handle as loaded from the shared library at path.
func WithDynamicPath(path string) Option {
	return func(h *Handle) {
		h.scope = ScopeDynamic
		h.path = path
	}
}

// NewHandle creates a library handle in the registered state.
func NewHandle(name string, opts ...Option) *Handle {
	h := &Handle{name: name}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handle) Name() string        { return h.name }
func (h *Handle) Description() string { return h.description }
func (h *Handle) Scope() Scope        { return h.scope }
func (h *Handle) Path() string        { return h.path }

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Initiate runs the initiate hook unless the library is already initiated.
// On hook failure the state is left unchanged.
func (h *Handle) Initiate(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateInitiated {
		return nil
	}
	if h.hooks.Initiate != nil {
		if err := h.hooks.Initiate(ctx); err != nil {
			return errs.Wrap(errs.SetupError, err, "initiate library %q", h.name)
		}
	}
	h.state = StateInitiated
	return nil
}

// Terminate runs the terminate hook if the library is initiated.
func (h *Handle) Terminate(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateInitiated {
		return nil
	}
	if h.hooks.Terminate != nil {
		if err := h.hooks.Terminate(ctx); err != nil {
			return errs.Wrap(errs.SetupError, err, "terminate library %q", h.name)
		}
	}
	h.state = StateTerminated
	return nil
}
