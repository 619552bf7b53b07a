// Package card defines Set card identifiers and the rule deciding whether
// three cards form a set.
//
// A card is a small integer. Its features are the base-FeatureSize digits of
// that integer, least significant digit first, so the classic 81 card deck is
// the universe with FeatureSize 3 and FeatureCount 4.
package card

import (
	"errors"
	"fmt"
	"strings"
)

// Card identifies one card of a Universe.
type Card int

// None marks the absence of a card, e.g. an empty table slot.
const None Card = -1

// Classic universe dimensions.
const (
	DefaultFeatureSize  = 3
	DefaultFeatureCount = 4
	DefaultSize         = 81
)

var (
	ErrFeatureSize  = errors.New("feature size must be at least 2")
	ErrFeatureCount = errors.New("feature count must be at least 1")
	ErrUniverseSize = errors.New("universe size out of range")
)

// Universe describes the encoding shared by every card of a game.
type Universe struct {
	FeatureSize  int
	FeatureCount int
	Size         int
}

// DefaultUniverse returns the classic 81 card universe.
func DefaultUniverse() Universe {
	return Universe{
		FeatureSize:  DefaultFeatureSize,
		FeatureCount: DefaultFeatureCount,
		Size:         DefaultSize,
	}
}

// NewUniverse validates the dimensions and returns the universe holding the
// first size cards of the encoding.
func NewUniverse(featureSize, featureCount, size int) (Universe, error) {
	u := Universe{FeatureSize: featureSize, FeatureCount: featureCount, Size: size}
	return u, u.Validate()
}

// Validate checks that the universe dimensions are usable.
func (u Universe) Validate() error {
	if u.FeatureSize < 2 {
		return ErrFeatureSize
	}
	if u.FeatureCount < 1 {
		return ErrFeatureCount
	}
	if u.Size < 3 || u.Size > u.Capacity() {
		return fmt.Errorf("%w: %d not in [3, %d]", ErrUniverseSize, u.Size, u.Capacity())
	}
	return nil
}

// Capacity is the number of distinct cards the encoding can express.
func (u Universe) Capacity() int {
	n := 1
	for i := 0; i < u.FeatureCount; i++ {
		n *= u.FeatureSize
	}
	return n
}

// Contains reports whether c belongs to the universe.
func (u Universe) Contains(c Card) bool {
	return c >= 0 && int(c) < u.Size
}

// Cards returns every card of the universe in id order.
func (u Universe) Cards() []Card {
	cards := make([]Card, u.Size)
	for i := range cards {
		cards[i] = Card(i)
	}
	return cards
}

// Feature returns the value of feature i of card c.
func (u Universe) Feature(c Card, i int) int {
	v := int(c)
	for ; i > 0; i-- {
		v /= u.FeatureSize
	}
	return v % u.FeatureSize
}

// Features returns every feature value of c.
func (u Universe) Features(c Card) []int {
	features := make([]int, u.FeatureCount)
	v := int(c)
	for i := range features {
		features[i] = v % u.FeatureSize
		v /= u.FeatureSize
	}
	return features
}

// Format renders the feature digits of c, e.g. "0211".
func (u Universe) Format(c Card) string {
	if !u.Contains(c) {
		return "--"
	}
	var b strings.Builder
	for _, f := range u.Features(c) {
		fmt.Fprintf(&b, "%d", f)
	}
	return b.String()
}
