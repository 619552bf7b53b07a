package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkersToggle(t *testing.T) {
	var m Markers

	placed, ok := m.Toggle(4)
	assert.True(t, placed)
	assert.True(t, ok)

	placed, ok = m.Toggle(4)
	assert.False(t, placed, "second toggle on the same slot removes")
	assert.True(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMarkersCapacity(t *testing.T) {
	var m Markers
	assert.True(t, m.Add(1))
	assert.True(t, m.Add(2))
	assert.False(t, m.Add(2), "duplicate slot")
	assert.True(t, m.Add(3))
	assert.True(t, m.Full())

	placed, ok := m.Toggle(9)
	assert.False(t, placed)
	assert.False(t, ok, "fourth token is rejected")
	assert.Equal(t, []int{1, 2, 3}, m.Slots())

	// Removing one makes room again, order of the rest is kept.
	assert.True(t, m.Remove(2))
	assert.False(t, m.Remove(2))
	assert.True(t, m.Add(9))
	assert.Equal(t, []int{1, 3, 9}, m.Slots())

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Slots())
}
