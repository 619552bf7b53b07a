// Package display defines the notifications the game core publishes for
// rendering. Sinks must return quickly: the table calls them while holding
// its lock so observers see changes in the order they were applied.
package display

import (
	"time"

	"github.com/lox/setforbots/internal/card"
)

// Display receives game notifications.
type Display interface {
	PlaceCard(c card.Card, slot int)
	RemoveCard(slot int)
	PlaceToken(player, slot int)
	RemoveToken(player, slot int)
	// Countdown reports the time left in the turn; warn is set once the
	// remaining time drops under the warning threshold.
	Countdown(remaining time.Duration, warn bool)
	// Elapsed reports the time since the last set when the game runs
	// without a turn timeout.
	Elapsed(elapsed time.Duration)
	Score(player, score int)
	Freeze(player int, remaining time.Duration)
	// Hint lists the slots of every set currently on the table.
	Hint(sets [][3]int)
	Winners(players []int)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) PlaceCard(card.Card, int)      {}
func (Nop) RemoveCard(int)                {}
func (Nop) PlaceToken(int, int)           {}
func (Nop) RemoveToken(int, int)          {}
func (Nop) Countdown(time.Duration, bool) {}
func (Nop) Elapsed(time.Duration)         {}
func (Nop) Score(int, int)                {}
func (Nop) Freeze(int, time.Duration)     {}
func (Nop) Hint([][3]int)                 {}
func (Nop) Winners([]int)                 {}

// Multi fans every notification out to several sinks in order.
type Multi []Display

// NewMulti drops nil sinks and returns the combined display.
func NewMulti(sinks ...Display) Multi {
	out := make(Multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m Multi) PlaceCard(c card.Card, slot int) {
	for _, d := range m {
		d.PlaceCard(c, slot)
	}
}

func (m Multi) RemoveCard(slot int) {
	for _, d := range m {
		d.RemoveCard(slot)
	}
}

func (m Multi) PlaceToken(player, slot int) {
	for _, d := range m {
		d.PlaceToken(player, slot)
	}
}

func (m Multi) RemoveToken(player, slot int) {
	for _, d := range m {
		d.RemoveToken(player, slot)
	}
}

func (m Multi) Countdown(remaining time.Duration, warn bool) {
	for _, d := range m {
		d.Countdown(remaining, warn)
	}
}

func (m Multi) Elapsed(elapsed time.Duration) {
	for _, d := range m {
		d.Elapsed(elapsed)
	}
}

func (m Multi) Score(player, score int) {
	for _, d := range m {
		d.Score(player, score)
	}
}

func (m Multi) Freeze(player int, remaining time.Duration) {
	for _, d := range m {
		d.Freeze(player, remaining)
	}
}

func (m Multi) Hint(sets [][3]int) {
	for _, d := range m {
		d.Hint(sets)
	}
}

func (m Multi) Winners(players []int) {
	for _, d := range m {
		d.Winners(players)
	}
}
