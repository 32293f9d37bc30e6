package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every *Error belongs to exactly one class.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrStructural    = errors.New("structural error")
	ErrFormat        = errors.New("format error")
	ErrProjection    = errors.New("projection error")
	ErrExport        = errors.New("export error")
)

// Error codes.
var (
	ErrMissingField            = errors.New("missing field")
	ErrUnsupportedPolicy       = errors.New("unsupported id_generation")
	ErrMissingName             = errors.New("missing name")
	ErrMissingIdentifier       = errors.New("missing identifier")
	ErrDuplicateIdentifier     = errors.New("duplicate identifier")
	ErrReservedIdentifier      = errors.New("reserved identifier")
	ErrUnknownParent           = errors.New("unknown parent")
	ErrInvalidIdentifierFormat = errors.New("invalid identifier format")
	ErrDuplicateLeafKey        = errors.New("duplicate leaf key")
	ErrNullParent              = errors.New("null parent")
	ErrNullChild               = errors.New("null child")
	ErrOutOfRange              = errors.New("level out of range")
	ErrDestinationExists       = errors.New("destination exists")
	ErrNotFound                = errors.New("node not found")
	ErrInvalidSetting          = errors.New("invalid setting")
)

// Error carries enough context to locate a problem in the source description.
// errors.Is matches both Class and Code.
type Error struct {
	Class  error
	Code   error
	ID     string // offending identifier, if any
	Name   string // offending node name, if any
	Other  string // second node involved (duplicates)
	Parent string // parent display name, if any
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.Error())
	if e.ID != "" {
		fmt.Fprintf(&b, ": id %q", e.ID)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " name %q", e.Name)
	}
	if e.Other != "" {
		fmt.Fprintf(&b, " conflicts with %q", e.Other)
	}
	if e.Parent != "" {
		fmt.Fprintf(&b, " under parent %q", e.Parent)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	return target == e.Class || target == e.Code
}

// Unwrap exposes the code so errors.As/Is chains keep working through fmt wrapping.
func (e *Error) Unwrap() error { return e.Code }

func newError(class, code error, id ID, detail string) *Error {
	e := &Error{Class: class, Code: code, Detail: detail}
	if !id.IsZero() {
		e.ID = id.String()
	}
	return e
}

// Structural builds a StructuralError for the given code.
func Structural(code error, id ID, detail string) *Error {
	return newError(ErrStructural, code, id, detail)
}

// Configuration builds a ConfigurationError for the given code.
func Configuration(code error, detail string) *Error {
	return newError(ErrConfiguration, code, ID{}, detail)
}

// Format builds a FormatError for the given code.
func Format(code error, raw any, detail string) *Error {
	e := newError(ErrFormat, code, ID{}, detail)
	if raw != nil {
		e.ID = fmt.Sprint(raw)
	}
	return e
}

// Projection builds a ProjectionError for the given code.
func Projection(code error, detail string) *Error {
	return newError(ErrProjection, code, ID{}, detail)
}

// DestinationExists reports an export target that is already present.
func DestinationExists(path string) *Error {
	return newError(ErrExport, ErrDestinationExists, ID{}, fmt.Sprintf("file %s already exists", path))
}
