package table

import "github.com/lox/setforbots/internal/card"

// Pick is one marked slot and the card it held when the request was made.
type Pick struct {
	Slot int
	Card card.Card
}

// Request asks the dealer to verify a player's three marked cards. The picks
// are a snapshot; the dealer must check them against the live table.
type Request struct {
	Player int
	Picks  [MaxTokens]Pick
}

// Cards returns the snapshot cards.
func (r Request) Cards() [MaxTokens]card.Card {
	var out [MaxTokens]card.Card
	for i, p := range r.Picks {
		out[i] = p.Card
	}
	return out
}

// Slots returns the snapshot slots.
func (r Request) Slots() [MaxTokens]int {
	var out [MaxTokens]int
	for i, p := range r.Picks {
		out[i] = p.Slot
	}
	return out
}

// Verdict is the dealer's answer to a Request.
type Verdict int

const (
	// VerdictStale means the table changed under the request; it was
	// discarded without reward or penalty.
	VerdictStale Verdict = iota
	// VerdictPoint means the cards formed a set and the player scored.
	VerdictPoint
	// VerdictPenalty means the cards did not form a set.
	VerdictPenalty
)

// String returns the string representation of a verdict
func (v Verdict) String() string {
	switch v {
	case VerdictStale:
		return "stale"
	case VerdictPoint:
		return "point"
	case VerdictPenalty:
		return "penalty"
	default:
		return "unknown"
	}
}
