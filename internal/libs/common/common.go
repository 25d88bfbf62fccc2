// Package common is the cf3.common library: generic containers every other
// library builds on.
package common

import (
	"github.com/corey/cfk/internal/domain/builder"
	"github.com/corey/cfk/internal/domain/component"
	"github.com/corey/cfk/internal/domain/library"
	"github.com/corey/cfk/internal/errs"
)

// LibraryName is the registered name of this library.
const LibraryName = "cf3.common"

const (
	BaseComponent = "Component"
	BaseLink      = "Link"
)

// Module registers cf3.common.
type Module struct{}

func (Module) Library() library.Library {
	return library.NewHandle(LibraryName, library.WithDescription("Generic components: groups and links"))
}

func (Module) Builders() []builder.Builder {
	return []builder.Builder{
		{
			Name:        "Group",
			BaseType:    BaseComponent,
			Library:     LibraryName,
			Description: "Container for other components",
			New: func(name string) (component.Component, error) {
				return component.NewGroup(name, LibraryName+".Group", BaseComponent), nil
			},
		},
		{
			Name:        "Link",
			BaseType:    BaseLink,
			Library:     LibraryName,
			Description: "Named reference to another component by path",
			New: func(name string) (component.Component, error) {
				return NewLink(name), nil
			},
		},
	}
}

// Link points at another component by path. The target is stored in the
// "target" property so it survives without holding a reference.
type Link struct {
	*component.Node
}

// NewLink creates an unbound link.
func NewLink(name string) *Link {
	l := &Link{Node: component.NewNode(name, LibraryName+".Link", BaseLink)}
	l.Bind(l)
	return l
}

// LinkTo records target's path.
func (l *Link) LinkTo(target component.Component) {
	l.SetProperty("target", target.URI())
}

// Configure binds the link when key is "target", resolving value from the
// link's position. Other keys become properties.
func (l *Link) Configure(key, value string) error {
	if key != "target" {
		l.SetProperty(key, value)
		return nil
	}
	target, err := component.Resolve(l, value)
	if err != nil {
		return err
	}
	l.LinkTo(target)
	return nil
}

// Follow resolves the link from its own position in the tree.
func (l *Link) Follow() (component.Component, error) {
	target, ok := l.Property("target")
	if !ok || target == "" {
		return nil, errs.New(errs.ValueNotFound, "link %s is not bound", l.URI())
	}
	return component.Resolve(l, target)
}
