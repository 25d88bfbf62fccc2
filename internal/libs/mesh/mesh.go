// Package mesh is the cf3.mesh library: the structural containers a mesh is
// stored in. It holds no mesh algorithms; readers and element types live in
// plugins.
package mesh

import (
	"github.com/corey/cfk/internal/domain/builder"
	"github.com/corey/cfk/internal/domain/component"
	"github.com/corey/cfk/internal/domain/library"
	"github.com/corey/cfk/internal/domain/tags"
	"github.com/corey/cfk/internal/errs"
)

// LibraryName is the registered name of this library.
const LibraryName = "cf3.mesh"

const (
	BaseDomain   = "Domain"
	BaseMesh     = "Mesh"
	BaseRegion   = "Region"
	BaseEntities = "Entities"
)

// ElementTypes lists the element shape names Elements accepts.
var ElementTypes = []string{
	"Line1D", "Line2D", "Triag2D", "Quad2D", "Tetra3D", "Hexa3D", "Prism3D",
}

// Module registers cf3.mesh.
type Module struct{}

func (Module) Library() library.Library {
	return library.NewHandle(LibraryName, library.WithDescription("Mesh containers: domain, mesh, regions, elements"))
}

func (Module) Builders() []builder.Builder {
	return []builder.Builder{
		{
			Name: "Domain", BaseType: BaseDomain, Library: LibraryName,
			Description: "Top-level holder of meshes",
			New: func(name string) (component.Component, error) {
				return NewDomain(name), nil
			},
		},
		{
			Name: "Mesh", BaseType: BaseMesh, Library: LibraryName,
			Description: "Mesh with topology and geometry",
			New: func(name string) (component.Component, error) {
				return NewMesh(name)
			},
		},
		{
			Name: "Region", BaseType: BaseRegion, Library: LibraryName,
			Description: "Named group of element sets",
			New: func(name string) (component.Component, error) {
				return NewRegion(name), nil
			},
		},
		{
			Name: "Elements", BaseType: BaseEntities, Library: LibraryName,
			Description: "Set of elements sharing one shape",
			New: func(name string) (component.Component, error) {
				return NewElements(name), nil
			},
		},
	}
}

// NewDomain creates an empty domain.
func NewDomain(name string) *component.Group {
	d := component.NewGroup(name, LibraryName+".Domain", BaseDomain)
	d.SetProperty("tag", tags.Domain)
	return d
}

// NewMesh creates a mesh with its topology region and geometry group.
func NewMesh(name string) (*component.Group, error) {
	m := component.NewGroup(name, LibraryName+".Mesh", BaseMesh)
	m.SetProperty("tag", tags.Mesh)
	m.SetProperty("dimension", "0")

	topo := NewRegion(tags.Topology)
	if err := m.AddChild(topo); err != nil {
		return nil, err
	}
	geom := component.NewGroup(tags.Geometry, "cf3.common.Group", "Component")
	geom.SetProperty("tag", tags.Coordinates)
	if err := m.AddChild(geom); err != nil {
		return nil, err
	}
	return m, nil
}

// NewRegion creates an empty region.
func NewRegion(name string) *component.Group {
	r := component.NewGroup(name, LibraryName+".Region", BaseRegion)
	r.SetProperty("tag", tags.Regions)
	return r
}

// Elements is a set of elements of one shape.
type Elements struct {
	*component.Node
}

// NewElements creates an element set with no shape assigned.
func NewElements(name string) *Elements {
	e := &Elements{Node: component.NewNode(name, LibraryName+".Elements", BaseEntities)}
	e.Bind(e)
	e.SetProperty("tag", tags.Connectivity)
	return e
}

// SetElementType assigns the shape; unknown shapes are refused.
func (e *Elements) SetElementType(shape string) error {
	for _, s := range ElementTypes {
		if s == shape {
			e.SetProperty("element_type", shape)
			return nil
		}
	}
	return errs.New(errs.BadValue, "%s: unknown element type %q", e.URI(), shape)
}

// Configure handles element_type; other keys become properties.
func (e *Elements) Configure(key, value string) error {
	if key == "element_type" {
		return e.SetElementType(value)
	}
	e.SetProperty(key, value)
	return nil
}

// ElementType returns the assigned shape, or "".
func (e *Elements) ElementType() string {
	v, _ := e.Property("element_type")
	return v
}
