// Package builder registers component factories by name so the kernel can
// instantiate concrete types from a string, grouped by the abstract base type
// they implement and the library that owns them.
package builder

import (
	"strings"

	"github.com/corey/cfk/internal/domain/component"
	"github.com/corey/cfk/internal/errs"
)

// Factory constructs a component with the given instance name.
type Factory func(name string) (component.Component, error)

// Builder associates a concrete type name with its factory.
type Builder struct {
	Name        string // concrete type name within the library, e.g. "Mesh"
	BaseType    string // abstract type the product implements, e.g. "Mesh"
	Library     string // owning library, e.g. "cf3.mesh"
	Description string
	New         Factory
}

// FullName is the registry key: <library>.<name>.
func (b Builder) FullName() string {
	return b.Library + "." + b.Name
}

// validate checks everything that does not need the registries.
func (b Builder) validate() error {
	if b.Name == "" || strings.ContainsAny(b.Name, " /") {
		return errs.New(errs.BadValue, "invalid builder name %q", b.Name)
	}
	if b.Library == "" {
		return errs.New(errs.BadValue, "builder %q has no owning library", b.Name)
	}
	if b.BaseType == "" {
		return errs.New(errs.BadValue, "builder %q has no base type", b.FullName())
	}
	if b.New == nil {
		return errs.New(errs.BadValue, "builder %q has no factory", b.FullName())
	}
	return nil
}
