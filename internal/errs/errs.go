// Package errs provides located errors: every error records the source location
// where it was raised, plus a Kind that callers match with errors.Is.
package errs

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Kind classifies an error. Kinds are comparable with errors.Is against any *Error.
type Kind string

const (
	ValueNotFound   Kind = "ValueNotFound"
	ValueExists     Kind = "ValueExists"
	BadValue        Kind = "BadValue"
	SetupError      Kind = "SetupError"
	CastingFailed   Kind = "CastingFailed"
	NotImplemented  Kind = "NotImplemented"
	ParsingFailed   Kind = "ParsingFailed"
	FileSystem      Kind = "FileSystem"
	SignalError     Kind = "SignalError"
	NetworkError    Kind = "NetworkError"
	ProtocolError   Kind = "ProtocolError"
	ShouldNotBeHere Kind = "ShouldNotBeHere"
)

// Error implements error so a bare Kind can be used as an errors.Is target.
func (k Kind) Error() string { return string(k) }

// Location is the point in the source where an error was constructed.
type Location struct {
	File string
	Line int
	Func string
}

func (l Location) String() string {
	if l.File == "" {
		return "unknown"
	}
	if l.Func == "" {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d %s", l.File, l.Line, l.Func)
}

// Error is a located error.
type Error struct {
	Kind  Kind
	Where Location
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	sb.WriteString(" [")
	sb.WriteString(e.Where.String())
	sb.WriteString("]")
	return sb.String()
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches a Kind target against this error's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New builds a located error of the given kind. The location is the caller of New.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Where: caller(2), Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a located error of the given kind around err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Where: caller(2), Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// LocationOf returns where the outermost *Error in err's chain was raised.
func LocationOf(err error) (Location, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Where, true
	}
	return Location{}, false
}

func caller(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{}
	}
	loc := Location{File: filepath.Base(file), Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		loc.Func = name
	}
	return loc
}
