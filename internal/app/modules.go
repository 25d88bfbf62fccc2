package app

import (
	"github.com/corey/cfk/internal/domain/builder"
	"github.com/corey/cfk/internal/domain/library"
	"github.com/corey/cfk/internal/libs/common"
	"github.com/corey/cfk/internal/libs/mesh"
	"github.com/corey/cfk/internal/libs/physics"
)

// Module is a builtin library: one handle plus the builders it owns.
// Modules are listed explicitly and registered in order at startup.
type Module interface {
	Library() library.Library
	Builders() []builder.Builder
}

// CoreModules returns the builtin libraries in registration order.
// cf3.common comes first because the others build on its containers.
func CoreModules() []Module {
	return []Module{
		common.Module{},
		mesh.Module{},
		physics.Module{},
	}
}

func (k *Kernel) registerModule(m Module) error {
	lib := m.Library()
	if err := k.Libraries.Register(lib); err != nil {
		return err
	}
	for _, b := range m.Builders() {
		if b.Library == "" {
			b.Library = lib.Name()
		}
		if err := k.Builders.Register(b); err != nil {
			return err
		}
	}
	return nil
}
