package app

import (
	"context"

	"github.com/corey/cfk/internal/domain/component"
	"github.com/corey/cfk/internal/domain/library"
	"github.com/corey/cfk/internal/domain/tags"
	"github.com/corey/cfk/internal/errs"
)

const (
	rootName      = "Root"
	groupTypeName = "cf3.common.Group"
	groupBase     = "Component"
	libTypeName   = "cf3.common.Library"
	libBase       = "Library"
)

// initTree builds the fixed skeleton: Root with libraries and tools.
func (k *Kernel) initTree() {
	k.root = component.NewGroup(rootName, groupTypeName, groupBase)
	k.root.SetProperty("tag", tags.Root)
	k.libDir = component.NewGroup(tags.Libraries, groupTypeName, groupBase)
	tools := component.NewGroup(tags.Tools, groupTypeName, groupBase)
	// Fresh groups with distinct names cannot fail to attach.
	_ = k.root.AddChild(k.libDir)
	_ = k.root.AddChild(tools)
}

// mirror keeps Root/libraries in step with the library registry.
func (k *Kernel) mirror(ev library.Event) {
	lib, ok := k.Libraries.Get(ev.Library)
	if !ok {
		return
	}
	// libMu, not treeMu: events also fire from Build inside CreateAt.
	k.libMu.Lock()
	defer k.libMu.Unlock()

	c, ok := k.libDir.Child(ev.Library)
	if !ok {
		g := component.NewGroup(ev.Library, libTypeName, libBase)
		g.SetProperty("scope", lib.Scope().String())
		if h, ok := lib.(*library.Handle); ok {
			if h.Description() != "" {
				g.SetProperty("description", h.Description())
			}
			if h.Path() != "" {
				g.SetProperty("path", h.Path())
			}
		}
		if err := k.libDir.AddChild(g); err != nil {
			k.log.Error().Err(err).Str("library", ev.Library).Msg("library tree entry")
			return
		}
		c = g
	}
	c.SetProperty("state", lib.State().String())
}

// Root returns the top of the component tree.
func (k *Kernel) Root() component.Component { return k.root }

// Resolve looks up a component by path from Root.
func (k *Kernel) Resolve(path string) (component.Component, error) {
	k.treeMu.Lock()
	defer k.treeMu.Unlock()
	return component.Resolve(k.root, path)
}

// Create builds a component with the named builder and attaches it under Root.
// An empty instanceName takes the next free name from the builder's generator.
func (k *Kernel) Create(ctx context.Context, builderName, instanceName string) (component.Component, error) {
	return k.CreateAt(ctx, "", builderName, instanceName)
}

// CreateAt is Create with an explicit parent path; "" means Root.
func (k *Kernel) CreateAt(ctx context.Context, parentPath, builderName, instanceName string) (component.Component, error) {
	b, ok := k.Builders.Get(builderName)
	if !ok {
		return nil, errs.New(errs.ValueNotFound, "builder %q not registered", builderName)
	}

	k.treeMu.Lock()
	defer k.treeMu.Unlock()

	var parent component.Component = k.root
	if parentPath != "" {
		p, err := component.Resolve(k.root, parentPath)
		if err != nil {
			return nil, err
		}
		parent = p
	}

	name := instanceName
	if name == "" {
		name = k.freeName(parent, b.Name)
	}
	if _, taken := parent.Child(name); taken {
		return nil, errs.New(errs.ValueExists, "%s already has a child named %q", parent.URI(), name)
	}

	c, err := k.Builders.Build(ctx, builderName, name)
	if err != nil {
		return nil, err
	}
	if err := parent.AddChild(c); err != nil {
		return nil, err
	}
	k.log.Debug().Str("builder", builderName).Str("uri", c.URI()).Msg("created")
	return c, nil
}

// Set configures option key on the component at path.
func (k *Kernel) Set(path, key, value string) error {
	k.treeMu.Lock()
	defer k.treeMu.Unlock()

	c, err := component.Resolve(k.root, path)
	if err != nil {
		return err
	}
	return component.Configure(c, key, value)
}

// freeName draws from the pool until the name is unused under parent.
func (k *Kernel) freeName(parent component.Component, prefix string) string {
	for {
		name := k.Names.Next(prefix)
		if _, taken := parent.Child(name); !taken {
			return name
		}
	}
}

// Remove detaches the component at path. Root and its fixed children stay.
func (k *Kernel) Remove(path string) error {
	k.treeMu.Lock()
	defer k.treeMu.Unlock()

	c, err := component.Resolve(k.root, path)
	if err != nil {
		return err
	}
	parent := c.Parent()
	fixed := parent == component.Component(k.root) && (c.Name() == tags.Libraries || c.Name() == tags.Tools)
	if parent == nil || fixed {
		return errs.New(errs.BadValue, "cannot remove %s", c.URI())
	}
	return parent.RemoveChild(c.Name())
}
