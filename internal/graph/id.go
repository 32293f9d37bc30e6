package graph

import (
	"math"
	"strconv"

	"github.com/spf13/cast"
)

// ID identifies a node. It is either an integer or an opaque string;
// the integer 7 and the string "7" are different identifiers.
// IDs are comparable and used directly as map keys.
type ID struct {
	key     string
	numeric bool
}

// RootID is reserved for the tree root.
var RootID = IntID(0)

// IntID returns the integer identifier n.
func IntID(n uint64) ID {
	return ID{key: strconv.FormatUint(n, 10), numeric: true}
}

// TextID returns the string identifier s.
func TextID(s string) ID {
	return ID{key: s}
}

// IsZero reports whether id is the zero value (no identifier).
func (id ID) IsZero() bool { return id == ID{} }

// Numeric reports whether id is an integer identifier.
func (id ID) Numeric() bool { return id.numeric }

func (id ID) String() string { return id.key }

// Int returns the integer value of a numeric id.
func (id ID) Int() (uint64, bool) {
	if !id.numeric {
		return 0, false
	}
	n, err := strconv.ParseUint(id.key, 10, 64)
	return n, err == nil
}

// Value returns the id as a plain Go value for encoders:
// uint64 for integer ids, string otherwise.
func (id ID) Value() any {
	if n, ok := id.Int(); ok {
		return n
	}
	return id.key
}

// ParseID converts a declared id value decoded from YAML or JSON.
// Integers (and integral floats, as produced by JSON decoders) become
// numeric ids; strings are kept verbatim; other scalars are stringified.
func ParseID(v any) (ID, error) {
	switch x := v.(type) {
	case nil:
		return ID{}, Format(ErrInvalidIdentifierFormat, nil, "identifier is null")
	case string:
		if x == "" {
			return ID{}, Format(ErrInvalidIdentifierFormat, x, "identifier is empty")
		}
		return TextID(x), nil
	case int:
		return signedID(int64(x))
	case int8:
		return signedID(int64(x))
	case int16:
		return signedID(int64(x))
	case int32:
		return signedID(int64(x))
	case int64:
		return signedID(x)
	case uint:
		return IntID(uint64(x)), nil
	case uint8:
		return IntID(uint64(x)), nil
	case uint16:
		return IntID(uint64(x)), nil
	case uint32:
		return IntID(uint64(x)), nil
	case uint64:
		return IntID(x), nil
	case float32:
		return floatID(float64(x))
	case float64:
		return floatID(x)
	}
	s, err := cast.ToStringE(v)
	if err != nil || s == "" {
		return ID{}, Format(ErrInvalidIdentifierFormat, v, "identifier must be a scalar")
	}
	return TextID(s), nil
}

func signedID(n int64) (ID, error) {
	if n < 0 {
		return ID{}, Format(ErrInvalidIdentifierFormat, n, "identifier must not be negative")
	}
	return IntID(uint64(n)), nil
}

func floatID(f float64) (ID, error) {
	if f >= 0 && f == math.Trunc(f) && f < math.MaxUint64 {
		return IntID(uint64(f)), nil
	}
	return TextID(cast.ToString(f)), nil
}
