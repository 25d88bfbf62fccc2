// Package physics is the cf3.physics library. It only describes the
// variable sets a solver would operate on; it carries no numerics.
package physics

import (
	"context"
	"strconv"
	"strings"

	"github.com/corey/cfk/internal/domain/builder"
	"github.com/corey/cfk/internal/domain/component"
	"github.com/corey/cfk/internal/domain/library"
	"github.com/corey/cfk/internal/domain/tags"
	"github.com/corey/cfk/internal/errs"
)

// LibraryName is the registered name of this library.
const LibraryName = "cf3.physics"

// BaseVariables is the base type every variable set reports.
const BaseVariables = "Variables"

// Definition describes one variable set.
type Definition struct {
	Name      string
	Dimension int
	Variables []string
	Viscous   bool
}

// Definitions lists the variable sets this library provides.
var Definitions = []Definition{
	{Name: "Scalar", Dimension: 1, Variables: []string{"U"}},
	{Name: "Euler2D", Dimension: 2, Variables: []string{"rho", "rhoU", "rhoV", "rhoE"}},
	{Name: "NavierStokes2D", Dimension: 2, Variables: []string{"rho", "rhoU", "rhoV", "rhoE"}, Viscous: true},
}

// Module registers cf3.physics.
type Module struct{}

func (Module) Library() library.Library {
	return library.NewHandle(LibraryName,
		library.WithDescription("Physical models: variable sets"),
		library.WithHooks(library.Hooks{Initiate: checkDefinitions}),
	)
}

func (Module) Builders() []builder.Builder {
	out := make([]builder.Builder, 0, len(Definitions))
	for _, def := range Definitions {
		def := def
		out = append(out, builder.Builder{
			Name:        def.Name,
			BaseType:    BaseVariables,
			Library:     LibraryName,
			Description: strconv.Itoa(len(def.Variables)) + " variables, " + strconv.Itoa(def.Dimension) + "D",
			New: func(name string) (component.Component, error) {
				return NewVariables(name, def), nil
			},
		})
	}
	return out
}

func checkDefinitions(_ context.Context) error {
	for _, def := range Definitions {
		if def.Dimension < 1 || def.Dimension > 3 {
			return errs.New(errs.BadValue, "%s: dimension %d out of range", def.Name, def.Dimension)
		}
		seen := make(map[string]bool, len(def.Variables))
		for _, v := range def.Variables {
			if v == "" || seen[v] {
				return errs.New(errs.BadValue, "%s: bad or repeated variable %q", def.Name, v)
			}
			seen[v] = true
		}
	}
	return nil
}

// Variables is a built variable set.
type Variables struct {
	*component.Node
}

// NewVariables builds the component for def.
func NewVariables(name string, def Definition) *Variables {
	v := &Variables{Node: component.NewNode(name, LibraryName+"."+def.Name, BaseVariables)}
	v.Bind(v)
	v.SetProperty("tag", tags.Physics)
	v.SetProperty("dimension", strconv.Itoa(def.Dimension))
	v.SetProperty("nb_eqs", strconv.Itoa(len(def.Variables)))
	v.SetProperty("variables", strings.Join(def.Variables, ","))
	v.SetProperty("viscous", strconv.FormatBool(def.Viscous))
	return v
}
