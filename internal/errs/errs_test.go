package errs

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RecordsLocation(t *testing.T) {
	err := New(ValueNotFound, "library %q", "cf3.mesh")

	assert.Equal(t, ValueNotFound, err.Kind)
	assert.Equal(t, "errs_test.go", err.Where.File)
	assert.Greater(t, err.Where.Line, 0)
	assert.Contains(t, err.Where.Func, "TestNew_RecordsLocation")
	assert.True(t, strings.HasPrefix(err.Error(), `ValueNotFound: library "cf3.mesh" [errs_test.go:`))
}

func TestIs_MatchesKindThroughWrapping(t *testing.T) {
	inner := New(SignalError, "signal %s not found", "create_component")
	outer := fmt.Errorf("dispatch: %w", inner)

	assert.True(t, errors.Is(outer, SignalError))
	assert.False(t, errors.Is(outer, NetworkError))
	assert.Equal(t, SignalError, KindOf(outer))
}

func TestWrap_UnwrapsCause(t *testing.T) {
	err := Wrap(NetworkError, io.ErrUnexpectedEOF, "read frame")

	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.True(t, errors.Is(err, NetworkError))
	assert.Contains(t, err.Error(), "NetworkError: read frame: unexpected EOF [")
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	_, ok := LocationOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestLocationOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(BadValue, "x"))
	loc, ok := LocationOf(err)
	require.True(t, ok)
	assert.Equal(t, "errs_test.go", loc.File)
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "unknown", Location{}.String())
	assert.Equal(t, "a.go:3", Location{File: "a.go", Line: 3}.String())
	assert.Equal(t, "a.go:3 pkg.F", Location{File: "a.go", Line: 3, Func: "pkg.F"}.String())
}
