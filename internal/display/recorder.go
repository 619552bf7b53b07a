package display

import (
	"sync"
	"time"

	"github.com/lox/setforbots/internal/card"
)

// Event is one notification captured by a Recorder.
type Event struct {
	Kind      string
	Player    int
	Slot      int
	Card      card.Card
	Value     int
	Duration  time.Duration
	Warn      bool
	Players   []int
	Sets      [][3]int
	Timestamp time.Time
}

// Recorder keeps every notification in memory. It is safe for concurrent use
// and is meant for tests and headless runs that inspect the event stream.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Event) {
	e.Timestamp = time.Now()
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the captured events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kind returns the captured events of one kind.
func (r *Recorder) Kind(kind string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) PlaceCard(c card.Card, slot int) {
	r.add(Event{Kind: "place_card", Card: c, Slot: slot})
}

func (r *Recorder) RemoveCard(slot int) {
	r.add(Event{Kind: "remove_card", Slot: slot})
}

func (r *Recorder) PlaceToken(player, slot int) {
	r.add(Event{Kind: "place_token", Player: player, Slot: slot})
}

func (r *Recorder) RemoveToken(player, slot int) {
	r.add(Event{Kind: "remove_token", Player: player, Slot: slot})
}

func (r *Recorder) Countdown(remaining time.Duration, warn bool) {
	r.add(Event{Kind: "countdown", Duration: remaining, Warn: warn})
}

func (r *Recorder) Elapsed(elapsed time.Duration) {
	r.add(Event{Kind: "elapsed", Duration: elapsed})
}

func (r *Recorder) Score(player, score int) {
	r.add(Event{Kind: "score", Player: player, Value: score})
}

func (r *Recorder) Freeze(player int, remaining time.Duration) {
	r.add(Event{Kind: "freeze", Player: player, Duration: remaining})
}

func (r *Recorder) Hint(sets [][3]int) {
	r.add(Event{Kind: "hint", Sets: sets})
}

func (r *Recorder) Winners(players []int) {
	r.add(Event{Kind: "winners", Players: append([]int(nil), players...)})
}
