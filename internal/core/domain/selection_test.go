package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionSet_Add(t *testing.T) {
	t.Run("multi selection keeps insertion order", func(t *testing.T) {
		s := NewSelectionSet(false)
		assert.True(t, s.Add("@a:x"))
		assert.True(t, s.Add("@c:x"))
		assert.True(t, s.Add("@b:x"))
		assert.Equal(t, []string{"@a:x", "@c:x", "@b:x"}, s.IDs())
	})

	t.Run("duplicate add is a no-op", func(t *testing.T) {
		s := NewSelectionSet(false)
		s.Add("@a:x")
		assert.False(t, s.Add("@a:x"))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("empty id is ignored", func(t *testing.T) {
		s := NewSelectionSet(false)
		assert.False(t, s.Add(""))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("single selection replaces", func(t *testing.T) {
		s := NewSelectionSet(true)
		s.Add("@a:x")
		assert.True(t, s.Add("@b:x"))
		assert.Equal(t, []string{"@b:x"}, s.IDs())
	})
}

func TestSelectionSet_Remove(t *testing.T) {
	s := NewSelectionSet(false)
	s.Add("@a:x")
	s.Add("@b:x")
	s.Add("@c:x")

	assert.True(t, s.Remove("@b:x"))
	assert.Equal(t, []string{"@a:x", "@c:x"}, s.IDs())

	// Idempotent
	assert.False(t, s.Remove("@b:x"))
	assert.Equal(t, []string{"@a:x", "@c:x"}, s.IDs())
}

func TestSelectionSet_Toggle(t *testing.T) {
	t.Run("adds when absent and removes when present", func(t *testing.T) {
		s := NewSelectionSet(false)
		assert.True(t, s.Toggle("@a:x"))
		assert.True(t, s.Contains("@a:x"))
		assert.False(t, s.Toggle("@a:x"))
		assert.False(t, s.Contains("@a:x"))
	})

	t.Run("is self-inverse", func(t *testing.T) {
		s := NewSelectionSet(false)
		s.Add("@a:x")
		s.Add("@b:x")
		before := s.IDs()

		s.Toggle("@z:x")
		s.Toggle("@z:x")
		assert.Equal(t, before, s.IDs())

		s.Toggle("@a:x")
		s.Toggle("@a:x")
		assert.ElementsMatch(t, before, s.IDs())
	})

	t.Run("single mode replacement is not undone by a second toggle", func(t *testing.T) {
		s := NewSelectionSet(true)
		s.Add("@a:x")
		s.Toggle("@z:x")
		assert.Equal(t, []string{"@z:x"}, s.IDs())
		s.Toggle("@z:x")
		assert.Empty(t, s.IDs())
	})

	t.Run("toggle of a selected id is self-inverse in single mode", func(t *testing.T) {
		s := NewSelectionSet(true)
		s.Add("@a:x")
		s.Toggle("@a:x")
		s.Toggle("@a:x")
		assert.Equal(t, []string{"@a:x"}, s.IDs())
	})
}

func TestSelectionSet_SingleSelectionNeverExceedsOne(t *testing.T) {
	s := NewSelectionSet(true)
	ops := []struct {
		toggle bool
		id     string
	}{
		{false, "@a:x"}, {true, "@b:x"}, {true, "@c:x"}, {false, "@a:x"},
		{true, "@a:x"}, {true, "@a:x"}, {false, "@d:x"}, {true, "@e:x"},
	}
	for _, op := range ops {
		if op.toggle {
			s.Toggle(op.id)
		} else {
			s.Add(op.id)
		}
		assert.LessOrEqual(t, s.Len(), 1)
	}
	assert.True(t, s.SingleSelection())
}

func TestSelectionSet_IDsReturnsCopy(t *testing.T) {
	s := NewSelectionSet(false)
	s.Add("@a:x")
	ids := s.IDs()
	ids[0] = "@mutated:x"
	assert.Equal(t, []string{"@a:x"}, s.IDs())
}

func TestSelectionSet_Clear(t *testing.T) {
	s := NewSelectionSet(false)
	s.Add("@a:x")
	s.Add("@b:x")
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.IDs())
}
