package table

import (
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setforbots/internal/card"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// newTestTable creates a table with cards 0..filled-1 on the first slots.
func newTestTable(t *testing.T, size, players, filled int) (*Table, *display.Recorder) {
	t.Helper()
	rec := display.NewRecorder()
	tbl := New(size, players, rec, testLogger())
	for i := 0; i < filled; i++ {
		require.NoError(t, tbl.PlaceCard(card.Card(i), i))
	}
	return tbl, rec
}

func TestPlaceCard(t *testing.T) {
	tbl, rec := newTestTable(t, 3, 1, 0)

	require.NoError(t, tbl.PlaceCard(7, 1))
	assert.Equal(t, card.Card(7), tbl.Card(1))
	assert.Equal(t, 1, tbl.CountCards())

	err := tbl.PlaceCard(8, 1)
	assert.ErrorIs(t, err, ErrSlotOccupied)
	assert.Equal(t, card.Card(7), tbl.Card(1), "occupied slot keeps its card")

	assert.ErrorIs(t, tbl.PlaceCard(8, 3), ErrInvalidSlot)
	assert.Error(t, tbl.PlaceCard(card.None, 0))

	placed := rec.Kind("place_card")
	require.Len(t, placed, 1)
	assert.Equal(t, 1, placed[0].Slot)
}

func TestRemoveCardIsIdempotent(t *testing.T) {
	tbl, rec := newTestTable(t, 3, 1, 1)

	c, ok := tbl.RemoveCard(0)
	assert.True(t, ok)
	assert.Equal(t, card.Card(0), c)

	c, ok = tbl.RemoveCard(0)
	assert.False(t, ok)
	assert.Equal(t, card.None, c)

	_, ok = tbl.RemoveCard(42)
	assert.False(t, ok)
	assert.Len(t, rec.Kind("remove_card"), 1)
}

func TestRemoveCardClearsEveryPlayersToken(t *testing.T) {
	tbl, rec := newTestTable(t, 3, 3, 3)

	require.NoError(t, tbl.PlaceToken(0, 1))
	require.NoError(t, tbl.PlaceToken(1, 1))
	require.NoError(t, tbl.PlaceToken(2, 2))

	_, ok := tbl.RemoveCard(1)
	require.True(t, ok)

	assert.False(t, tbl.HasTokenInSlot(0, 1))
	assert.False(t, tbl.HasTokenInSlot(1, 1))
	assert.True(t, tbl.HasTokenInSlot(2, 2))
	assert.Len(t, rec.Kind("remove_token"), 2)
}

func TestPlaceTokenRules(t *testing.T) {
	tbl, _ := newTestTable(t, 6, 2, 5)

	assert.ErrorIs(t, tbl.PlaceToken(0, 5), ErrSlotEmpty, "cannot mark an empty slot")
	assert.ErrorIs(t, tbl.PlaceToken(2, 0), ErrInvalidPlayer)
	assert.ErrorIs(t, tbl.PlaceToken(0, -1), ErrInvalidSlot)

	require.NoError(t, tbl.PlaceToken(0, 0))
	assert.ErrorIs(t, tbl.PlaceToken(0, 0), ErrAlreadyMarked)
	require.NoError(t, tbl.PlaceToken(0, 1))
	require.NoError(t, tbl.PlaceToken(0, 2))
	assert.ErrorIs(t, tbl.PlaceToken(0, 3), ErrTooManyTokens)
	assert.Equal(t, 3, tbl.TokenCount(0))

	// Another player is unaffected by the first player's tokens.
	require.NoError(t, tbl.PlaceToken(1, 0))
	assert.Equal(t, []int{0}, tbl.Tokens(1))
}

func TestRemoveToken(t *testing.T) {
	tbl, _ := newTestTable(t, 3, 1, 3)

	assert.ErrorIs(t, tbl.RemoveToken(0, 1), ErrNoToken, "removing a missing token is a no-op")
	require.NoError(t, tbl.PlaceToken(0, 1))
	require.NoError(t, tbl.RemoveToken(0, 1))
	assert.Equal(t, 0, tbl.TokenCount(0))
}

func TestToggleToken(t *testing.T) {
	tbl, _ := newTestTable(t, 4, 1, 4)

	for i, slot := range []int{0, 1, 2} {
		placed, count, err := tbl.ToggleToken(0, slot)
		require.NoError(t, err)
		assert.True(t, placed)
		assert.Equal(t, i+1, count)
	}

	placed, count, err := tbl.ToggleToken(0, 3)
	assert.ErrorIs(t, err, ErrTooManyTokens)
	assert.False(t, placed)
	assert.Equal(t, 3, count)

	placed, count, err = tbl.ToggleToken(0, 1)
	require.NoError(t, err)
	assert.False(t, placed)
	assert.Equal(t, 2, count)
	assert.Equal(t, []int{0, 2}, tbl.Tokens(0))
}

func TestFindFirstEmptySlot(t *testing.T) {
	tbl, _ := newTestTable(t, 3, 1, 3)
	assert.Equal(t, NoSlot, tbl.FindFirstEmptySlot())

	tbl.RemoveCard(2)
	tbl.RemoveCard(1)
	assert.Equal(t, 1, tbl.FindFirstEmptySlot(), "lowest empty slot first")
	assert.Equal(t, []card.Card{0}, tbl.Cards())
	assert.Equal(t, []card.Card{0, card.None, card.None}, tbl.Slots())
}

func TestClearTokens(t *testing.T) {
	tbl, rec := newTestTable(t, 3, 2, 3)
	require.NoError(t, tbl.PlaceToken(0, 0))
	require.NoError(t, tbl.PlaceToken(1, 0))
	require.NoError(t, tbl.PlaceToken(1, 2))

	tbl.ClearPlayerTokens(1)
	assert.Equal(t, 1, tbl.TokenCount(0))
	assert.Equal(t, 0, tbl.TokenCount(1))

	tbl.ClearTokens()
	assert.Equal(t, 0, tbl.TokenCount(0))
	assert.Len(t, rec.Kind("remove_token"), 3)
}

// TestConcurrentInvariants hammers the table from several player goroutines
// while a dealer goroutine swaps cards in and out, then checks after every
// dealer step that no token points at an empty slot and nobody holds more
// than MaxTokens tokens.
func TestConcurrentInvariants(t *testing.T) {
	const (
		size    = 12
		players = 4
		rounds  = 2000
	)
	tbl, _ := newTestTable(t, size, players, size)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for p := 0; p < players; p++ {
		wg.Add(1)
		go func(player int) {
			defer wg.Done()
			rng := randutil.New(int64(player + 1))
			for {
				select {
				case <-stop:
					return
				default:
				}
				placed, count, err := tbl.ToggleToken(player, rng.IntN(size))
				if err == nil && placed && count == MaxTokens {
					if _, err := tbl.Submit(player); err == nil {
						tbl.DrainVerifications()
					}
				}
			}
		}(p)
	}

	rng := randutil.New(99)
	next := card.Card(size)
	for i := 0; i < rounds; i++ {
		slot := rng.IntN(size)
		tbl.RemoveCard(slot)
		checkInvariants(t, tbl.Snapshot())
		require.NoError(t, tbl.PlaceCard(next, slot))
		next++
	}
	close(stop)
	wg.Wait()
	checkInvariants(t, tbl.Snapshot())
}

func checkInvariants(t *testing.T, s Snapshot) {
	t.Helper()
	for player, slots := range s.Tokens {
		require.LessOrEqual(t, len(slots), MaxTokens, "player %d", player)
		seen := map[int]bool{}
		for _, slot := range slots {
			require.False(t, seen[slot], "player %d marked slot %d twice", player, slot)
			seen[slot] = true
			require.NotEqual(t, card.None, s.Slots[slot], "player %d token on empty slot %d", player, slot)
		}
	}
}
