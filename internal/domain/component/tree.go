package component

import (
	"strings"

	"github.com/corey/cfk/internal/errs"
)

// Root returns the topmost ancestor of c.
func Root(c Component) Component {
	for {
		p := c.Parent()
		if p == nil {
			return c
		}
		c = p
	}
}

// Resolve walks path starting at from. Absolute paths (cpath:/a/b) start at the
// root of from's tree; relative paths accept "." and "..".
func Resolve(from Component, path string) (Component, error) {
	cur := from
	rest := path
	if strings.HasPrefix(rest, Scheme) {
		rest = strings.TrimPrefix(rest, Scheme)
		if !strings.HasPrefix(rest, "/") {
			return nil, errs.New(errs.BadValue, "malformed path %q", path)
		}
		cur = Root(from)
	} else if strings.HasPrefix(rest, "/") {
		cur = Root(from)
	}

	for _, part := range strings.Split(rest, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			p := cur.Parent()
			if p == nil {
				return nil, errs.New(errs.ValueNotFound, "path %q escapes the root", path)
			}
			cur = p
		default:
			next, ok := cur.Child(part)
			if !ok {
				return nil, errs.New(errs.ValueNotFound, "no component %q under %s", part, cur.URI())
			}
			cur = next
		}
	}
	return cur, nil
}

// Walk visits c and its descendants depth-first in insertion order. depth is 0
// for c. Returning false from fn skips the visited component's children.
func Walk(c Component, fn func(c Component, depth int) bool) {
	walk(c, 0, fn)
}

func walk(c Component, depth int, fn func(Component, int) bool) {
	if !fn(c, depth) {
		return
	}
	for _, child := range c.Children() {
		walk(child, depth+1, fn)
	}
}

// Group is a plain container component.
type Group struct {
	*Node
}

// NewGroup creates a group with the given base type.
func NewGroup(name, typeName, baseType string) *Group {
	g := &Group{Node: NewNode(name, typeName, baseType)}
	g.Bind(g)
	return g
}
