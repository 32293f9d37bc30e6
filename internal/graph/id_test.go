package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    ID
		wantErr error
	}{
		{"int", 7, IntID(7), nil},
		{"int64 from json", int64(12), IntID(12), nil},
		{"uint64", uint64(3), IntID(3), nil},
		{"integral float", float64(4), IntID(4), nil},
		{"fractional float", 1.5, TextID("1.5"), nil},
		{"string kept verbatim", "7", TextID("7"), nil},
		{"bool stringified", true, TextID("true"), nil},
		{"negative", -1, ID{}, ErrInvalidIdentifierFormat},
		{"empty string", "", ID{}, ErrInvalidIdentifierFormat},
		{"nil", nil, ID{}, ErrInvalidIdentifierFormat},
		{"map", map[string]any{"a": 1}, ID{}, ErrInvalidIdentifierFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseID(tt.in)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v", err)
				assert.True(t, errors.Is(err, ErrFormat), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestID_IntAndTextAreDistinct(t *testing.T) {
	assert.NotEqual(t, IntID(7), TextID("7"))
	assert.Equal(t, "7", IntID(7).String())
	assert.Equal(t, "7", TextID("7").String())

	n, ok := IntID(7).Int()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), n)

	_, ok = TextID("7").Int()
	assert.False(t, ok)
}

func TestID_Value(t *testing.T) {
	assert.Equal(t, uint64(42), IntID(42).Value())
	assert.Equal(t, "abc", TextID("abc").Value())
	assert.True(t, ID{}.IsZero())
	assert.False(t, RootID.IsZero())
}

func TestError_MessageCarriesContext(t *testing.T) {
	e := Structural(ErrDuplicateIdentifier, TextID("FR"), "node identifier is not unique")
	e.Name = "France"
	e.Other = "FR"

	msg := e.Error()
	assert.Contains(t, msg, `"FR"`)
	assert.Contains(t, msg, `"France"`)
	assert.True(t, errors.Is(e, ErrStructural))
	assert.True(t, errors.Is(e, ErrDuplicateIdentifier))
	assert.False(t, errors.Is(e, ErrFormat))
}
