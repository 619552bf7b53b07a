// Package table implements the shared Set table: a fixed row of slots, the
// tokens each player has placed on them, and the queue of triples waiting
// for the dealer.
//
// Every exported method runs under a single table-wide mutex, so a card
// removal and a token placement on the same slot can never interleave. The
// lock is held for one operation at a time, never across a game step.
package table

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/setforbots/internal/card"
	"github.com/lox/setforbots/internal/display"
)

// NoSlot is returned by FindFirstEmptySlot when every slot is occupied.
const NoSlot = -1

var (
	ErrInvalidSlot    = errors.New("slot out of range")
	ErrInvalidPlayer  = errors.New("player out of range")
	ErrSlotOccupied   = errors.New("slot already holds a card")
	ErrSlotEmpty      = errors.New("slot holds no card")
	ErrTooManyTokens  = errors.New("player already holds the maximum number of tokens")
	ErrAlreadyMarked  = errors.New("player already has a token on this slot")
	ErrNoToken        = errors.New("player has no token on this slot")
	ErrIncomplete     = errors.New("player does not hold a full triple")
	ErrAlreadyPending = errors.New("player already has a verification pending")
)

// Table is the single shared mutation point between the dealer and the
// players.
type Table struct {
	mu      sync.Mutex
	slots   []card.Card
	markers []Markers
	pending []bool
	queue   []Request
	ready   chan struct{}
	display display.Display
	logger  *log.Logger
}

// New creates an empty table with size slots for players seats.
func New(size, players int, disp display.Display, logger *log.Logger) *Table {
	if disp == nil {
		disp = display.Nop{}
	}
	slots := make([]card.Card, size)
	for i := range slots {
		slots[i] = card.None
	}
	return &Table{
		slots:   slots,
		markers: make([]Markers, players),
		pending: make([]bool, players),
		ready:   make(chan struct{}, 1),
		display: disp,
		logger:  logger.WithPrefix("table"),
	}
}

// Size returns the number of slots.
func (t *Table) Size() int { return len(t.slots) }

// Players returns the number of seats.
func (t *Table) Players() int { return len(t.markers) }

func (t *Table) checkSlot(slot int) error {
	if slot < 0 || slot >= len(t.slots) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	return nil
}

func (t *Table) checkPlayer(player int) error {
	if player < 0 || player >= len(t.markers) {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	return nil
}

// PlaceCard puts c on an empty slot.
func (t *Table) PlaceCard(c card.Card, slot int) error {
	if err := t.checkSlot(slot); err != nil {
		return err
	}
	if c == card.None {
		return fmt.Errorf("cannot place the empty card on slot %d", slot)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.slots[slot] != card.None {
		return fmt.Errorf("%w: %d", ErrSlotOccupied, slot)
	}
	t.slots[slot] = c
	t.display.PlaceCard(c, slot)
	return nil
}

// RemoveCard clears slot and every token any player held on it. It returns
// the removed card, or false when the slot was already empty.
func (t *Table) RemoveCard(slot int) (card.Card, bool) {
	if t.checkSlot(slot) != nil {
		return card.None, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.slots[slot]
	if c == card.None {
		return card.None, false
	}
	for player := range t.markers {
		if t.markers[player].Remove(slot) {
			t.display.RemoveToken(player, slot)
		}
	}
	t.slots[slot] = card.None
	t.display.RemoveCard(slot)
	return c, true
}

// PlaceToken marks slot for player.
func (t *Table) PlaceToken(player, slot int) error {
	if err := t.checkPlayer(player); err != nil {
		return err
	}
	if err := t.checkSlot(slot); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.placeTokenLocked(player, slot)
}

func (t *Table) placeTokenLocked(player, slot int) error {
	if t.slots[slot] == card.None {
		return fmt.Errorf("%w: %d", ErrSlotEmpty, slot)
	}
	m := &t.markers[player]
	if m.Has(slot) {
		return fmt.Errorf("%w: %d", ErrAlreadyMarked, slot)
	}
	if !m.Add(slot) {
		return ErrTooManyTokens
	}
	t.display.PlaceToken(player, slot)
	return nil
}

// RemoveToken unmarks slot for player.
func (t *Table) RemoveToken(player, slot int) error {
	if err := t.checkPlayer(player); err != nil {
		return err
	}
	if err := t.checkSlot(slot); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.markers[player].Remove(slot) {
		return fmt.Errorf("%w: %d", ErrNoToken, slot)
	}
	t.display.RemoveToken(player, slot)
	return nil
}

// ToggleToken removes player's token from slot if present and places one
// otherwise. It returns whether a token was placed and how many tokens the
// player holds afterwards.
func (t *Table) ToggleToken(player, slot int) (placed bool, count int, err error) {
	if err := t.checkPlayer(player); err != nil {
		return false, 0, err
	}
	if err := t.checkSlot(slot); err != nil {
		return false, 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	m := &t.markers[player]
	if m.Remove(slot) {
		t.display.RemoveToken(player, slot)
		return false, m.Len(), nil
	}
	if err := t.placeTokenLocked(player, slot); err != nil {
		return false, m.Len(), err
	}
	return true, m.Len(), nil
}

// HasTokenInSlot reports whether player has a token on slot.
func (t *Table) HasTokenInSlot(player, slot int) bool {
	if t.checkPlayer(player) != nil || t.checkSlot(slot) != nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.markers[player].Has(slot)
}

// TokenCount returns the number of tokens player holds.
func (t *Table) TokenCount(player int) int {
	if t.checkPlayer(player) != nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.markers[player].Len()
}

// Tokens returns the slots player has marked, oldest first.
func (t *Table) Tokens(player int) []int {
	if t.checkPlayer(player) != nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.markers[player].Slots()
}

// ClearPlayerTokens removes every token of player.
func (t *Table) ClearPlayerTokens(player int) {
	if t.checkPlayer(player) != nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearPlayerLocked(player)
}

func (t *Table) clearPlayerLocked(player int) {
	for _, slot := range t.markers[player].Slots() {
		t.display.RemoveToken(player, slot)
	}
	t.markers[player].Clear()
}

// ClearTokens removes every token of every player.
func (t *Table) ClearTokens() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for player := range t.markers {
		t.clearPlayerLocked(player)
	}
}

// Card returns the card on slot, or card.None.
func (t *Table) Card(slot int) card.Card {
	if t.checkSlot(slot) != nil {
		return card.None
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slots[slot]
}

// CountCards returns the number of occupied slots.
func (t *Table) CountCards() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.slots {
		if c != card.None {
			n++
		}
	}
	return n
}

// FindFirstEmptySlot returns the lowest empty slot, or NoSlot.
func (t *Table) FindFirstEmptySlot() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, c := range t.slots {
		if c == card.None {
			return i
		}
	}
	return NoSlot
}

// Cards returns the cards on the table in slot order, skipping empty slots.
func (t *Table) Cards() []card.Card {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]card.Card, 0, len(t.slots))
	for _, c := range t.slots {
		if c != card.None {
			out = append(out, c)
		}
	}
	return out
}

// Slots returns a copy of every slot, card.None for empty ones.
func (t *Table) Slots() []card.Card {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]card.Card, len(t.slots))
	copy(out, t.slots)
	return out
}

// Snapshot is a consistent copy of the table taken under one lock.
type Snapshot struct {
	Slots  []card.Card
	Tokens [][]int
	Queue  []Request
}

// Snapshot copies the whole table state.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Snapshot{
		Slots:  make([]card.Card, len(t.slots)),
		Tokens: make([][]int, len(t.markers)),
		Queue:  make([]Request, len(t.queue)),
	}
	copy(s.Slots, t.slots)
	copy(s.Queue, t.queue)
	for i := range t.markers {
		s.Tokens[i] = t.markers[i].Slots()
	}
	return s
}
