package physics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_Builders(t *testing.T) {
	builders := Module{}.Builders()
	require.Len(t, builders, len(Definitions))

	var names []string
	for _, b := range builders {
		names = append(names, b.FullName())
		assert.Equal(t, BaseVariables, b.BaseType)
	}
	assert.Equal(t, []string{"cf3.physics.Scalar", "cf3.physics.Euler2D", "cf3.physics.NavierStokes2D"}, names)
}

func TestModule_LibraryInitiates(t *testing.T) {
	lib := Module{}.Library()
	require.NoError(t, lib.Initiate(context.Background()))
	assert.Equal(t, "initiated", lib.State().String())
}

func TestVariables_Properties(t *testing.T) {
	tests := []struct {
		builder   string
		variables string
		viscous   string
		dimension string
	}{
		{"Scalar", "U", "false", "1"},
		{"Euler2D", "rho,rhoU,rhoV,rhoE", "false", "2"},
		{"NavierStokes2D", "rho,rhoU,rhoV,rhoE", "true", "2"},
	}
	byName := map[string]int{}
	builders := Module{}.Builders()
	for i, b := range builders {
		byName[b.Name] = i
	}

	for _, tt := range tests {
		t.Run(tt.builder, func(t *testing.T) {
			c, err := builders[byName[tt.builder]].New("vars")
			require.NoError(t, err)

			got, _ := c.Property("variables")
			assert.Equal(t, tt.variables, got)
			got, _ = c.Property("viscous")
			assert.Equal(t, tt.viscous, got)
			got, _ = c.Property("dimension")
			assert.Equal(t, tt.dimension, got)
		})
	}
}
