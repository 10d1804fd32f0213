package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefinition(t *testing.T) {
	tests := []struct {
		def     string
		desc    string
		choices []string
		err     bool
	}{
		{"Region; Auto|NTSC|PAL", "Region", []string{"Auto", "NTSC", "PAL"}, false},
		{"Blend mode; per game|always|never", "Blend mode", []string{"per game", "always", "never"}, false},
		{"on|off", "", []string{"on", "off"}, false},
		{"Frameskip; 0", "", nil, true},
		{"Nothing at all", "", nil, true},
		{"Empty; |", "", nil, true},
	}
	for _, tt := range tests {
		desc, choices, err := ParseDefinition(tt.def)
		if tt.err {
			assert.ErrorIs(t, err, ErrNoChoices, tt.def)
			continue
		}
		require.NoError(t, err, tt.def)
		assert.Equal(t, tt.desc, desc)
		assert.Equal(t, tt.choices, choices)
	}
}

func TestVariablesRegisterAndSet(t *testing.T) {
	vs := NewVariables(map[string]string{"snes9x_region": "PAL", "snes9x_blend": "bogus"})
	require.NoError(t, vs.Register("snes9x_region", "Region; Auto|NTSC|PAL"))
	require.NoError(t, vs.Register("snes9x_blend", "Blend; off|on"))
	assert.Error(t, vs.Register("snes9x_broken", "Broken"))

	r, ok := vs.Get("snes9x_region")
	require.True(t, ok)
	assert.Equal(t, "PAL", r.Value(), "valid override wins")
	assert.Equal(t, "Auto", r.Default())

	b, _ := vs.Get("snes9x_blend")
	assert.Equal(t, "off", b.Value(), "invalid override falls back to the default")

	assert.True(t, vs.TakeUpdated())
	assert.False(t, vs.TakeUpdated())

	require.NoError(t, vs.Set("snes9x_blend", "off"))
	assert.False(t, vs.TakeUpdated(), "setting the current value is no update")
	require.NoError(t, vs.Set("snes9x_blend", "on"))
	assert.True(t, vs.TakeUpdated())

	assert.ErrorIs(t, vs.Set("snes9x_blend", "maybe"), ErrInvalidChoice)
	assert.ErrorIs(t, vs.Set("nope", "on"), ErrUnknownOption)

	var keys []string
	for _, v := range vs.List() {
		keys = append(keys, v.Key)
	}
	assert.Equal(t, []string{"snes9x_region", "snes9x_blend"}, keys)
}

func TestVariablesReRegisterKeepsOrder(t *testing.T) {
	vs := NewVariables(nil)
	require.NoError(t, vs.Register("a", "A; 1|2"))
	require.NoError(t, vs.Register("b", "B; 1|2"))
	require.NoError(t, vs.Register("a", "A; 3|4"))
	assert.Equal(t, 2, vs.Len())
	a, _ := vs.Get("a")
	assert.Equal(t, "3", a.Value())
	assert.Equal(t, "a", vs.List()[0].Key)
}
