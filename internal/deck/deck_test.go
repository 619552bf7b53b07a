package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setforbots/internal/card"
	"github.com/lox/setforbots/internal/randutil"
)

func TestDealInOrder(t *testing.T) {
	d := New([]card.Card{4, 2, 9}, randutil.New(1))

	for _, want := range []card.Card{4, 2, 9} {
		c, ok := d.Deal()
		require.True(t, ok)
		assert.Equal(t, want, c)
	}

	c, ok := d.Deal()
	assert.False(t, ok)
	assert.Equal(t, card.None, c)
	assert.True(t, d.IsEmpty())
}

func TestNewCopiesInput(t *testing.T) {
	src := []card.Card{1, 2, 3}
	d := New(src, randutil.New(1))
	src[0] = 99

	c, _ := d.Deal()
	assert.Equal(t, card.Card(1), c)
}

func TestShuffleKeepsCards(t *testing.T) {
	u := card.DefaultUniverse()
	d := New(u.Cards(), randutil.New(42))
	d.Shuffle()

	assert.ElementsMatch(t, u.Cards(), d.Cards())
	assert.NotEqual(t, u.Cards(), d.Cards(), "81 cards should not shuffle into id order")
}

func TestShuffleIsReproducible(t *testing.T) {
	u := card.DefaultUniverse()
	a := New(u.Cards(), randutil.New(5))
	b := New(u.Cards(), randutil.New(5))
	a.Shuffle()
	b.Shuffle()
	assert.Equal(t, a.Cards(), b.Cards())
}

func TestReturnAppends(t *testing.T) {
	d := New([]card.Card{1}, randutil.New(1))
	d.Return(7, 8)
	assert.Equal(t, []card.Card{1, 7, 8}, d.Cards())
	assert.Equal(t, 3, d.Len())
}
