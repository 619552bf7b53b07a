// Package deck holds the ordered pile of cards not currently on the table.
// A Deck is owned by a single goroutine (the dealer) and is not safe for
// concurrent use.
package deck

import (
	rand "math/rand/v2"

	"github.com/lox/setforbots/internal/card"
)

// Deck represents the undealt cards
type Deck struct {
	cards []card.Card
	rng   *rand.Rand
}

// New creates a deck holding a copy of cards in the given order
func New(cards []card.Card, rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]card.Card, len(cards)),
		rng:   rng,
	}
	copy(d.cards, cards)
	return d
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the top card from the deck
func (d *Deck) Deal() (card.Card, bool) {
	if len(d.cards) == 0 {
		return card.None, false
	}

	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, true
}

// Return puts cards back at the bottom of the deck
func (d *Deck) Return(cards ...card.Card) {
	d.cards = append(d.cards, cards...)
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining cards, top first
func (d *Deck) Cards() []card.Card {
	out := make([]card.Card, len(d.cards))
	copy(out, d.cards)
	return out
}
