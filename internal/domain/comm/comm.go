// Package comm answers the two questions the kernel asks of a parallel
// launch: how many processes share the run, and which one is this.
// Message passing is out of scope.
package comm

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/corey/cfk/internal/errs"
)

// Communicator reports the size of the process group and this process's rank.
type Communicator interface {
	Size() int
	Rank() int
	IsRoot() bool
}

// Static is a fixed size/rank communicator.
type Static struct {
	size int
	rank int
}

// New validates size and rank and returns a Static communicator.
func New(size, rank int) (*Static, error) {
	if size < 1 {
		return nil, errs.New(errs.BadValue, "communicator size %d < 1", size)
	}
	if rank < 0 || rank >= size {
		return nil, errs.New(errs.BadValue, "rank %d outside [0,%d)", rank, size)
	}
	return &Static{size: size, rank: rank}, nil
}

// Serial returns the single-process communicator (size 1, rank 0).
func Serial() *Static {
	return &Static{size: 1, rank: 0}
}

func (s *Static) Size() int    { return s.size }
func (s *Static) Rank() int    { return s.rank }
func (s *Static) IsRoot() bool { return s.rank == 0 }

func (s *Static) String() string {
	return fmt.Sprintf("rank %d of %d", s.rank, s.size)
}

// launcherEnv is what common MPI launchers export into each process.
// Explicit CFK_* values win over launcher-provided ones.
type launcherEnv struct {
	CFKSize  *int `env:"CFK_COMM_SIZE"`
	CFKRank  *int `env:"CFK_COMM_RANK"`
	OMPISize *int `env:"OMPI_COMM_WORLD_SIZE"`
	OMPIRank *int `env:"OMPI_COMM_WORLD_RANK"`
	PMISize  *int `env:"PMI_SIZE"`
	PMIRank  *int `env:"PMI_RANK"`
}

// pick returns the first launcher that set a size. A rank without the size
// from the same launcher is rejected.
func (e launcherEnv) pick() (size, rank *int, err error) {
	launchers := []struct {
		prefix     string
		size, rank *int
	}{
		{"CFK_COMM", e.CFKSize, e.CFKRank},
		{"OMPI_COMM_WORLD", e.OMPISize, e.OMPIRank},
		{"PMI", e.PMISize, e.PMIRank},
	}
	for _, l := range launchers {
		if l.size == nil && l.rank != nil {
			return nil, nil, errs.New(errs.BadValue, "%s rank %d set without a size", l.prefix, *l.rank)
		}
	}
	for _, l := range launchers {
		if l.size != nil {
			return l.size, l.rank, nil
		}
	}
	return nil, nil, nil
}

// FromEnv builds a communicator from the process environment, falling back to
// Serial when no launcher variables are present.
func FromEnv() (*Static, error) {
	return parse(env.Options{})
}

// FromMap is FromEnv over an explicit environment.
func FromMap(environ map[string]string) (*Static, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Static, error) {
	var e launcherEnv
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return nil, errs.Wrap(errs.ParsingFailed, err, "communicator environment")
	}
	size, rank, err := e.pick()
	if err != nil {
		return nil, err
	}
	if size == nil {
		return Serial(), nil
	}
	r := 0
	if rank != nil {
		r = *rank
	}
	return New(*size, r)
}
