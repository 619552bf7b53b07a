package display

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setforbots/internal/card"
)

type panicky struct{ Nop }

func (panicky) PlaceCard(card.Card, int) { panic("renderer exploded") }
func (panicky) Winners([]int)            { panic("renderer exploded") }

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func TestSafeRecoversPanics(t *testing.T) {
	rec := NewRecorder()
	d := Safe(NewMulti(panicky{}, rec), testLogger())

	assert.NotPanics(t, func() {
		d.PlaceCard(3, 1)
		d.Winners([]int{0})
	})

	// The panic stops the fan-out for that call, but later calls still
	// reach every sink.
	d.Score(1, 2)
	scores := rec.Kind("score")
	require.Len(t, scores, 1)
	assert.Equal(t, 1, scores[0].Player)
	assert.Equal(t, 2, scores[0].Value)
}

func TestSafeIsIdempotent(t *testing.T) {
	d := Safe(Nop{}, testLogger())
	assert.Same(t, d, Safe(d, testLogger()))
	assert.IsType(t, Nop{}, Safe(nil, testLogger()))
}

func TestMultiSkipsNil(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := NewMulti(a, nil, b)
	require.Len(t, m, 2)

	m.Countdown(5*time.Second, true)
	m.RemoveToken(2, 4)
	for _, r := range []*Recorder{a, b} {
		events := r.Events()
		require.Len(t, events, 2)
		assert.Equal(t, "countdown", events[0].Kind)
		assert.True(t, events[0].Warn)
		assert.Equal(t, Event{Kind: "remove_token", Player: 2, Slot: 4}, withoutTime(events[1]))
	}
}

func TestLoggerSink(t *testing.T) {
	l := NewLogger(testLogger(), card.DefaultUniverse(), []string{"alice"})
	assert.NotPanics(t, func() {
		l.PlaceCard(5, 0)
		l.Score(0, 1)
		l.Winners([]int{0, 7})
	})
	assert.Equal(t, "alice", l.name(0))
	assert.Equal(t, "unknown", l.name(7))
}

func withoutTime(e Event) Event {
	e.Timestamp = time.Time{}
	return e
}
