package builder

import (
	"context"
	"sort"
	"sync"

	"github.com/corey/cfk/internal/domain/component"
	"github.com/corey/cfk/internal/domain/library"
	"github.com/corey/cfk/internal/errs"
)

// Registry stores builders by full name. Every builder belongs to a library
// registered in the library registry it was created with.
type Registry struct {
	libs *library.Registry

	// AutoInitiate initiates a builder's library on first Build instead of failing.
	AutoInitiate bool

	mu    sync.RWMutex
	items map[string]Builder
}

// NewRegistry creates an empty builder registry bound to libs.
func NewRegistry(libs *library.Registry) *Registry {
	return &Registry{libs: libs, items: make(map[string]Builder)}
}

// Register adds b. Each full name may be registered exactly once.
func (r *Registry) Register(b Builder) error {
	if err := b.validate(); err != nil {
		return err
	}
	if !r.libs.Has(b.Library) {
		return errs.New(errs.ValueNotFound, "builder %q: library %q not registered", b.FullName(), b.Library)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := b.FullName()
	if _, exists := r.items[key]; exists {
		return errs.New(errs.ValueExists, "builder %q already registered", key)
	}
	r.items[key] = b
	return nil
}

// Get returns the builder registered under fullName.
func (r *Registry) Get(fullName string) (Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[fullName]
	return b, ok
}

// Build instantiates the named builder's product as instanceName.
func (r *Registry) Build(ctx context.Context, fullName, instanceName string) (component.Component, error) {
	b, ok := r.Get(fullName)
	if !ok {
		return nil, errs.New(errs.ValueNotFound, "no builder %q", fullName)
	}
	return r.build(ctx, b, instanceName)
}

// BuildAs is Build restricted to builders of the given base type.
func (r *Registry) BuildAs(ctx context.Context, baseType, fullName, instanceName string) (component.Component, error) {
	b, ok := r.Get(fullName)
	if !ok {
		return nil, errs.New(errs.ValueNotFound, "no builder %q", fullName)
	}
	if b.BaseType != baseType {
		return nil, errs.New(errs.CastingFailed, "builder %q builds %s, not %s", fullName, b.BaseType, baseType)
	}
	return r.build(ctx, b, instanceName)
}

func (r *Registry) build(ctx context.Context, b Builder, instanceName string) (component.Component, error) {
	lib, ok := r.libs.Get(b.Library)
	if !ok {
		return nil, errs.New(errs.ShouldNotBeHere, "library %q of builder %q vanished", b.Library, b.FullName())
	}
	if lib.State() != library.StateInitiated {
		if !r.AutoInitiate {
			return nil, errs.New(errs.SetupError, "library %q is not initiated (builder %q)", b.Library, b.FullName())
		}
		if err := r.libs.Initiate(ctx, b.Library); err != nil {
			return nil, err
		}
	}

	c, err := b.New(instanceName)
	if err != nil {
		return nil, errs.Wrap(errs.SetupError, err, "builder %q", b.FullName())
	}
	if c == nil {
		return nil, errs.New(errs.ShouldNotBeHere, "builder %q returned nil", b.FullName())
	}
	if c.BaseType() != b.BaseType {
		return nil, errs.New(errs.CastingFailed, "builder %q produced %s, registered as %s", b.FullName(), c.BaseType(), b.BaseType)
	}
	return c, nil
}

// List returns all builders sorted by full name.
func (r *Registry) List() []Builder {
	return r.filter(func(Builder) bool { return true })
}

// ByBase returns builders for baseType sorted by full name.
func (r *Registry) ByBase(baseType string) []Builder {
	return r.filter(func(b Builder) bool { return b.BaseType == baseType })
}

// ByLibrary returns builders owned by lib sorted by full name.
func (r *Registry) ByLibrary(lib string) []Builder {
	return r.filter(func(b Builder) bool { return b.Library == lib })
}

// BaseTypes returns the distinct base types, sorted.
func (r *Registry) BaseTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, b := range r.items {
		if !seen[b.BaseType] {
			seen[b.BaseType] = true
			out = append(out, b.BaseType)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered builders.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *Registry) filter(keep func(Builder) bool) []Builder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Builder
	for _, b := range r.items {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out
}
