package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/setforbots/internal/card"
)

// EventBuffer is the number of notifications a Bridge holds for the model
// before it starts dropping them.
const EventBuffer = 1024

// Notification messages delivered to the model.
type (
	CardMsg struct {
		Slot int
		Card card.Card // card.None when removed
	}
	TokenMsg struct {
		Player int
		Slot   int
		Placed bool
	}
	TimerMsg struct {
		Remaining time.Duration
		Warn      bool
		Elapsed   bool
	}
	ScoreMsg struct {
		Player int
		Score  int
	}
	FreezeMsg struct {
		Player    int
		Remaining time.Duration
	}
	HintMsg struct {
		Sets [][3]int
	}
	WinnersMsg struct {
		Players []int
	}
)

// GameOverMsg is sent once the game goroutines have exited.
type GameOverMsg struct {
	Err error
}

// Bridge is a display sink that forwards notifications to the model. It
// never blocks the caller, which may hold the table lock: when the buffer is
// full the notification is dropped and counted.
type Bridge struct {
	events  chan tea.Msg
	dropped atomic.Int64
}

// NewBridge creates a bridge with an EventBuffer sized queue.
func NewBridge() *Bridge {
	return &Bridge{events: make(chan tea.Msg, EventBuffer)}
}

// Dropped returns the number of notifications lost to a full buffer.
func (b *Bridge) Dropped() int64 {
	return b.dropped.Load()
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	default:
		b.dropped.Add(1)
	}
}

// Listen returns a command that waits for the next notification.
func (b *Bridge) Listen() tea.Cmd {
	return func() tea.Msg {
		return <-b.events
	}
}

func (b *Bridge) PlaceCard(c card.Card, slot int) {
	b.send(CardMsg{Slot: slot, Card: c})
}

func (b *Bridge) RemoveCard(slot int) {
	b.send(CardMsg{Slot: slot, Card: card.None})
}

func (b *Bridge) PlaceToken(player, slot int) {
	b.send(TokenMsg{Player: player, Slot: slot, Placed: true})
}

func (b *Bridge) RemoveToken(player, slot int) {
	b.send(TokenMsg{Player: player, Slot: slot})
}

func (b *Bridge) Countdown(remaining time.Duration, warn bool) {
	b.send(TimerMsg{Remaining: remaining, Warn: warn})
}

func (b *Bridge) Elapsed(elapsed time.Duration) {
	b.send(TimerMsg{Remaining: elapsed, Elapsed: true})
}

func (b *Bridge) Score(player, score int) {
	b.send(ScoreMsg{Player: player, Score: score})
}

func (b *Bridge) Freeze(player int, remaining time.Duration) {
	b.send(FreezeMsg{Player: player, Remaining: remaining})
}

func (b *Bridge) Hint(sets [][3]int) {
	b.send(HintMsg{Sets: append([][3]int(nil), sets...)})
}

func (b *Bridge) Winners(players []int) {
	b.send(WinnersMsg{Players: append([]int(nil), players...)})
}
