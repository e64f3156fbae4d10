package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelection_ToggleInvolution(t *testing.T) {
	t.Parallel()

	s := NewSelection()

	assert.False(t, s.IsActive("Kids"))

	active := s.Toggle("Kids")
	assert.True(t, active)
	assert.True(t, s.IsActive("Kids"))

	active = s.Toggle("Kids")
	assert.False(t, active)
	assert.False(t, s.IsActive("Kids"))
	assert.Equal(t, 0, s.Len())
}

func TestSelection_ToggleAlternates(t *testing.T) {
	t.Parallel()

	s := NewSelection()

	for i := 0; i < 6; i++ {
		active := s.Toggle("Individual")
		expected := i%2 == 0
		assert.Equal(t, expected, active, "toggle %d", i)
		assert.Equal(t, expected, s.IsActive("Individual"), "toggle %d", i)
	}

	// No duplicate insertion ever happens
	assert.LessOrEqual(t, s.Len(), 1)
}

func TestSelection_ActivePreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	s := NewSelection()
	s.Toggle("Kids")
	s.Toggle("Individual")
	s.Toggle("Couples")
	s.Toggle("Individual") // removed

	assert.Equal(t, []string{"Kids", "Couples"}, s.Active())

	s.Toggle("Individual") // re-added at the end
	assert.Equal(t, []string{"Kids", "Couples", "Individual"}, s.Active())
}

func TestSelection_Clear(t *testing.T) {
	t.Parallel()

	s := NewSelection()
	s.Toggle("Kids")
	s.Toggle("Individual")

	removed := s.Clear()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Active())
	assert.False(t, s.IsActive("Kids"))

	// Clearing an empty selection is a no-op
	assert.Equal(t, 0, s.Clear())
}

func TestSelection_ActiveReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewSelection()
	s.Toggle("Kids")

	active := s.Active()
	active[0] = "mutated"

	assert.Equal(t, []string{"Kids"}, s.Active())
}

func TestSelection_ToggleAcceptsAnyString(t *testing.T) {
	t.Parallel()

	s := NewSelection()

	// Unknown tags and even the empty string are valid selection members
	assert.True(t, s.Toggle(""))
	assert.True(t, s.Toggle("No Provider Has This"))
	assert.True(t, s.IsActive(""))
	assert.Equal(t, 2, s.Len())
}
