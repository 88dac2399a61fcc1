package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
	assert.NotEmpty(t, km.Quit.Keys())
	assert.NotEmpty(t, km.Help.Keys())
	assert.NotEmpty(t, km.Toggle.Keys())
	assert.NotEmpty(t, km.Consent.Keys())
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name     string
		key      string
		expected bool
	}{
		{name: "enter toggles", key: "enter", expected: true},
		{name: "space toggles", key: " ", expected: true},
		{name: "letter does not toggle", key: "t", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Matches(tt.key, km.Toggle))
		})
	}
}

func TestMatches_QuitKeys(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("ctrl+s", km.Quit))
	assert.False(t, Matches("q", km.Quit))
}

func TestKeyMap_HelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 3)
	assert.Len(t, km.ResultsHelp(), 4)
	assert.Len(t, km.FullHelp(), 4)
}
