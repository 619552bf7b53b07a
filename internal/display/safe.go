package display

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/setforbots/internal/card"
)

// Safe wraps a sink so a panicking renderer is logged and ignored instead
// of unwinding through the table lock or the dealer loop.
func Safe(d Display, logger *log.Logger) Display {
	if d == nil {
		return Nop{}
	}
	if s, ok := d.(*safeDisplay); ok {
		return s
	}
	return &safeDisplay{next: d, logger: logger.WithPrefix("display")}
}

type safeDisplay struct {
	next   Display
	logger *log.Logger
}

func (s *safeDisplay) guard(op string) {
	if r := recover(); r != nil {
		s.logger.Error("Display sink failed", "op", op, "panic", r)
	}
}

func (s *safeDisplay) PlaceCard(c card.Card, slot int) {
	defer s.guard("place_card")
	s.next.PlaceCard(c, slot)
}

func (s *safeDisplay) RemoveCard(slot int) {
	defer s.guard("remove_card")
	s.next.RemoveCard(slot)
}

func (s *safeDisplay) PlaceToken(player, slot int) {
	defer s.guard("place_token")
	s.next.PlaceToken(player, slot)
}

func (s *safeDisplay) RemoveToken(player, slot int) {
	defer s.guard("remove_token")
	s.next.RemoveToken(player, slot)
}

func (s *safeDisplay) Countdown(remaining time.Duration, warn bool) {
	defer s.guard("countdown")
	s.next.Countdown(remaining, warn)
}

func (s *safeDisplay) Elapsed(elapsed time.Duration) {
	defer s.guard("elapsed")
	s.next.Elapsed(elapsed)
}

func (s *safeDisplay) Score(player, score int) {
	defer s.guard("score")
	s.next.Score(player, score)
}

func (s *safeDisplay) Freeze(player int, remaining time.Duration) {
	defer s.guard("freeze")
	s.next.Freeze(player, remaining)
}

func (s *safeDisplay) Hint(sets [][3]int) {
	defer s.guard("hint")
	s.next.Hint(sets)
}

func (s *safeDisplay) Winners(players []int) {
	defer s.guard("winners")
	s.next.Winners(players)
}
