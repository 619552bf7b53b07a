package player

import (
	"context"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Source produces the slot selections of one seat. Next blocks until a
// selection is available or ctx is done.
type Source interface {
	Next(ctx context.Context) (int, error)
}

// Flusher is implemented by sources that buffer input; the agent flushes
// them after a freeze so presses made while frozen are dropped.
type Flusher interface {
	Flush()
}

// KeyBuffer is the number of presses a KeyboardSource holds before new ones
// are dropped.
const KeyBuffer = 3

// KeyboardSource relays key presses from an input adapter such as the TUI.
type KeyboardSource struct {
	presses chan int
}

// NewKeyboardSource creates an empty keyboard source.
func NewKeyboardSource() *KeyboardSource {
	return &KeyboardSource{presses: make(chan int, KeyBuffer)}
}

// Press queues a slot selection without blocking the caller. It returns
// false when the buffer is full and the press was dropped.
func (k *KeyboardSource) Press(slot int) bool {
	select {
	case k.presses <- slot:
		return true
	default:
		return false
	}
}

// Next implements Source.
func (k *KeyboardSource) Next(ctx context.Context) (int, error) {
	select {
	case slot := <-k.presses:
		return slot, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Len returns the number of buffered presses.
func (k *KeyboardSource) Len() int {
	return len(k.presses)
}

// Flush implements Flusher.
func (k *KeyboardSource) Flush() {
	for {
		select {
		case <-k.presses:
		default:
			return
		}
	}
}

// RandomSource picks uniformly among all slot indices, empty or not, after
// an optional think delay.
type RandomSource struct {
	slots int
	think time.Duration
	clock quartz.Clock

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource creates a random source over slots indices.
func NewRandomSource(slots int, rng *rand.Rand, think time.Duration, clock quartz.Clock) *RandomSource {
	return &RandomSource{
		slots: slots,
		think: think,
		clock: clock,
		rng:   rng,
	}
}

// Next implements Source.
func (r *RandomSource) Next(ctx context.Context) (int, error) {
	if err := sleep(ctx, r.clock, r.think, "random", "think"); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(r.slots), nil
}

// ScriptedSource replays a fixed list of selections and then blocks until
// ctx is done. Tests use it to drive agents deterministically.
type ScriptedSource struct {
	slots chan int
}

// NewScriptedSource creates a source that yields slots in order.
func NewScriptedSource(slots ...int) *ScriptedSource {
	s := &ScriptedSource{slots: make(chan int, len(slots))}
	for _, slot := range slots {
		s.slots <- slot
	}
	return s
}

// Next implements Source.
func (s *ScriptedSource) Next(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	select {
	case slot := <-s.slots:
		return slot, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Remaining returns the number of selections not yet consumed.
func (s *ScriptedSource) Remaining() int {
	return len(s.slots)
}

// sleep waits d on clock, returning early with ctx's error.
func sleep(ctx context.Context, clock quartz.Clock, d time.Duration, tags ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := clock.NewTimer(d, tags...)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
