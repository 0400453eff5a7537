package binding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Key
		wantErr bool
	}{
		{"empty is no key", "", NoKey, false},
		{"letter", "w", "w", false},
		{"digit", "7", "7", false},
		{"punctuation", ";", ";", false},
		{"non ascii rune", "ñ", "ñ", false},
		{"arrow", "up", "up", false},
		{"function key", "f12", "f12", false},
		{"f20", "f20", "f20", false},
		{"page down", "page_down", "page_down", false},
		{"media", "media_volume_up", "media_volume_up", false},
		{"unknown name", "foo", NoKey, true},
		{"f21", "f21", NoKey, true},
		{"case sensitive", "Up", NoKey, true},
		{"space character", " ", NoKey, true},
		{"control character", "\t", NoKey, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidKey))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKey_IsNamed(t *testing.T) {
	assert.True(t, Key("space").IsNamed())
	assert.False(t, Key("w").IsNamed())
	assert.True(t, NoKey.IsNone())
	assert.False(t, Key("w").IsNone())
}

func TestNamedKeys(t *testing.T) {
	names := NamedKeys()
	assert.Contains(t, names, "left")
	assert.Contains(t, names, "f1")
	assert.IsIncreasing(t, names)
}
