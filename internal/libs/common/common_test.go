package common

import (
	"errors"
	"testing"

	"github.com/corey/cfk/internal/domain/component"
	"github.com/corey/cfk/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_Builders(t *testing.T) {
	m := Module{}
	assert.Equal(t, LibraryName, m.Library().Name())

	var names []string
	for _, b := range m.Builders() {
		names = append(names, b.FullName())
		c, err := b.New("x")
		require.NoError(t, err)
		assert.Equal(t, b.BaseType, c.BaseType())
		assert.Equal(t, b.FullName(), c.TypeName())
	}
	assert.Equal(t, []string{"cf3.common.Group", "cf3.common.Link"}, names)
}

func TestLink_Follow(t *testing.T) {
	root := component.NewGroup("Root", "cf3.common.Group", BaseComponent)
	target := component.NewGroup("mesh", "cf3.mesh.Mesh", "Mesh")
	link := NewLink("current_mesh")
	require.NoError(t, root.AddChild(target))
	require.NoError(t, root.AddChild(link))

	_, err := link.Follow()
	assert.True(t, errors.Is(err, errs.ValueNotFound))

	link.LinkTo(target)
	got, err := link.Follow()
	require.NoError(t, err)
	assert.Same(t, target, got.(*component.Group))

	require.NoError(t, root.RemoveChild("mesh"))
	_, err = link.Follow()
	assert.True(t, errors.Is(err, errs.ValueNotFound))
}

func TestLink_ConfigureTarget(t *testing.T) {
	root := component.NewGroup("Root", "cf3.common.Group", BaseComponent)
	domain := component.NewGroup("Domain_0", "cf3.mesh.Domain", "Domain")
	mesh := component.NewGroup("mesh", "cf3.mesh.Mesh", "Mesh")
	link := NewLink("current_mesh")
	require.NoError(t, root.AddChild(domain))
	require.NoError(t, domain.AddChild(mesh))
	require.NoError(t, root.AddChild(link))

	require.NoError(t, component.Configure(link, "target", "../Domain_0/mesh"))
	v, _ := link.Property("target")
	assert.Equal(t, "cpath:/Domain_0/mesh", v)
	got, err := link.Follow()
	require.NoError(t, err)
	assert.Same(t, mesh, got.(*component.Group))

	err = component.Configure(link, "target", "cpath:/nowhere")
	assert.True(t, errors.Is(err, errs.ValueNotFound))
	v, _ = link.Property("target")
	assert.Equal(t, "cpath:/Domain_0/mesh", v)

	require.NoError(t, component.Configure(link, "note", "primary"))
	v, _ = link.Property("note")
	assert.Equal(t, "primary", v)
}
