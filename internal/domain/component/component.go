// Package component implements the named component tree that builders populate.
//
// Every component has a name unique among its siblings, a concrete type name
// and the abstract base type it was built as. Paths are written as
// cpath:/a/b/c from the root.
package component

import (
	"sort"
	"strings"
	"sync"

	"github.com/corey/cfk/internal/errs"
)

// Scheme prefixes absolute component paths.
const Scheme = "cpath:"

// Component is a node in the tree. Concrete components embed *Node.
type Component interface {
	Name() string
	TypeName() string
	BaseType() string
	Parent() Component
	Children() []Component
	Child(name string) (Component, bool)
	AddChild(c Component) error
	RemoveChild(name string) error
	URI() string
	Property(key string) (string, bool)
	SetProperty(key, value string)
	Properties() []Property

	node() *Node
}

// Property is one key/value pair attached to a component.
type Property struct {
	Key   string
	Value string
}

// Configurable is a component that validates some of its options. Keys it
// does not own are stored as plain properties.
type Configurable interface {
	Component
	Configure(key, value string) error
}

// Configure sets option key on c, through c's own Configure when it has one.
func Configure(c Component, key, value string) error {
	if key == "" {
		return errs.New(errs.BadValue, "empty option name for %s", c.URI())
	}
	if cf, ok := c.(Configurable); ok {
		return cf.Configure(key, value)
	}
	c.SetProperty(key, value)
	return nil
}

// structure serializes AddChild and RemoveChild across all trees, so the
// ancestor check and the attach happen as one step and parent/child locks
// are never held by two writers in opposite orders.
var structure sync.Mutex

// Node is the base implementation of Component.
type Node struct {
	mu       sync.RWMutex
	name     string
	typeName string
	baseType string
	self     Component
	parent   *Node
	children []Component
	index    map[string]int
	props    map[string]string
}

// NewNode creates a detached node.
func NewNode(name, typeName, baseType string) *Node {
	n := &Node{
		name:     name,
		typeName: typeName,
		baseType: baseType,
		index:    make(map[string]int),
		props:    make(map[string]string),
	}
	n.self = n
	return n
}

// Bind records the outer value embedding n so Parent and Children return it
// instead of the bare node. Concrete constructors call it once.
func (n *Node) Bind(self Component) { n.self = self }

func (n *Node) node() *Node { return n }

func (n *Node) Name() string     { return n.name }
func (n *Node) TypeName() string { return n.typeName }
func (n *Node) BaseType() string { return n.baseType }

// Parent returns the parent component, or nil for a detached or root node.
func (n *Node) Parent() Component {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.parent == nil {
		return nil
	}
	return n.parent.self
}

// Children returns the children in insertion order.
func (n *Node) Children() []Component {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Component, len(n.children))
	copy(out, n.children)
	return out
}

// Child returns the direct child with the given name.
func (n *Node) Child(name string) (Component, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	i, ok := n.index[name]
	if !ok {
		return nil, false
	}
	return n.children[i], true
}

// AddChild attaches c under n. Names must be non-empty, free of '/', and unique
// among siblings; c must not already have a parent.
func (n *Node) AddChild(c Component) error {
	if c == nil {
		return errs.New(errs.BadValue, "nil child added to %q", n.name)
	}
	name := c.Name()
	if name == "" || strings.Contains(name, "/") {
		return errs.New(errs.BadValue, "invalid component name %q", name)
	}
	structure.Lock()
	defer structure.Unlock()

	cn := c.node()
	if cn.isAncestorOf(n) {
		return errs.New(errs.BadValue, "component %q cannot be attached under its own subtree", name)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.index[name]; exists {
		return errs.New(errs.ValueExists, "component %q already has a child named %q", n.name, name)
	}
	cn.mu.Lock()
	if cn.parent != nil {
		cn.mu.Unlock()
		return errs.New(errs.SetupError, "component %q is already attached", name)
	}
	cn.parent = n
	cn.mu.Unlock()

	n.index[name] = len(n.children)
	n.children = append(n.children, c)
	return nil
}

func (n *Node) isAncestorOf(other *Node) bool {
	for cur := other; cur != nil; {
		if cur == n {
			return true
		}
		cur.mu.RLock()
		p := cur.parent
		cur.mu.RUnlock()
		cur = p
	}
	return false
}

// RemoveChild detaches the named child.
func (n *Node) RemoveChild(name string) error {
	structure.Lock()
	defer structure.Unlock()

	n.mu.Lock()
	defer n.mu.Unlock()
	i, ok := n.index[name]
	if !ok {
		return errs.New(errs.ValueNotFound, "component %q has no child %q", n.name, name)
	}
	c := n.children[i]
	n.children = append(n.children[:i], n.children[i+1:]...)
	delete(n.index, name)
	for j := i; j < len(n.children); j++ {
		n.index[n.children[j].Name()] = j
	}
	cn := c.node()
	cn.mu.Lock()
	cn.parent = nil
	cn.mu.Unlock()
	return nil
}

// URI returns the absolute path of n, e.g. cpath:/Domain_0/mesh.
func (n *Node) URI() string {
	var parts []string
	for cur := n; cur != nil; {
		cur.mu.RLock()
		p := cur.parent
		if p != nil {
			parts = append(parts, cur.name)
		}
		cur.mu.RUnlock()
		cur = p
	}
	if len(parts) == 0 {
		return Scheme + "/"
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return Scheme + "/" + strings.Join(parts, "/")
}

func (n *Node) Property(key string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.props[key]
	return v, ok
}

func (n *Node) SetProperty(key, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.props[key] = value
}

// Properties returns all properties sorted by key.
func (n *Node) Properties() []Property {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Property, 0, len(n.props))
	for k, v := range n.props {
		out = append(out, Property{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
