package library

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/corey/cfk/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingHooks returns hooks that count calls and an optional initiate failure.
func countingHooks(initiated, terminated *atomic.Int32, initErr error) Hooks {
	return Hooks{
		Initiate: func(context.Context) error {
			initiated.Add(1)
			return initErr
		},
		Terminate: func(context.Context) error {
			terminated.Add(1)
			return nil
		},
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"cf3", true},
		{"cf3.mesh", true},
		{"cf3.mesh.lagrange_p1", true},
		{"", false},
		{"Cf3", false},
		{"cf3..mesh", false},
		{".cf3", false},
		{"cf3.", false},
		{"cf3.1mesh", false},
		{"cf3-mesh", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidName(tt.name))
		})
	}
}

func TestHandle_InitiateIsIdempotent(t *testing.T) {
	var ini, term atomic.Int32
	h := NewHandle("cf3.mesh", WithHooks(countingHooks(&ini, &term, nil)))
	ctx := context.Background()

	assert.Equal(t, StateRegistered, h.State())
	require.NoError(t, h.Initiate(ctx))
	require.NoError(t, h.Initiate(ctx))
	assert.Equal(t, int32(1), ini.Load())
	assert.Equal(t, StateInitiated, h.State())

	require.NoError(t, h.Terminate(ctx))
	require.NoError(t, h.Terminate(ctx))
	assert.Equal(t, int32(1), term.Load())
	assert.Equal(t, StateTerminated, h.State())

	// A terminated library can be initiated again.
	require.NoError(t, h.Initiate(ctx))
	assert.Equal(t, int32(2), ini.Load())
}

func TestHandle_TerminateWithoutInitiateIsNoop(t *testing.T) {
	var ini, term atomic.Int32
	h := NewHandle("cf3.mesh", WithHooks(countingHooks(&ini, &term, nil)))
	require.NoError(t, h.Terminate(context.Background()))
	assert.Equal(t, int32(0), term.Load())
	assert.Equal(t, StateRegistered, h.State())
}

func TestHandle_InitiateFailureLeavesState(t *testing.T) {
	var ini, term atomic.Int32
	boom := errors.New("boom")
	h := NewHandle("cf3.physics", WithHooks(countingHooks(&ini, &term, boom)))

	err := h.Initiate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, errors.Is(err, errs.SetupError))
	assert.Contains(t, err.Error(), `"cf3.physics"`)
	assert.Equal(t, StateRegistered, h.State())
}

func TestHandle_Options(t *testing.T) {
	h := NewHandle("cf3.gmsh", WithDescription("gmsh reader"), WithDynamicPath("/opt/libcfk_gmsh.so"))
	assert.Equal(t, "gmsh reader", h.Description())
	assert.Equal(t, ScopeDynamic, h.Scope())
	assert.Equal(t, "/opt/libcfk_gmsh.so", h.Path())
	assert.Equal(t, "dynamic", h.Scope().String())

	b := NewHandle("cf3.common")
	assert.Equal(t, ScopeBuiltin, b.Scope())
	assert.Equal(t, "", b.Path())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "registered", StateRegistered.String())
	assert.Equal(t, "initiated", StateInitiated.String())
	assert.Equal(t, "terminated", StateTerminated.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestHandle_ConcurrentInitiateRunsHookOnce(t *testing.T) {
	var ini, term atomic.Int32
	h := NewHandle("cf3.mesh", WithHooks(countingHooks(&ini, &term, nil)))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Initiate(context.Background())
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ini.Load())
}
