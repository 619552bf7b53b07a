// Package dealer runs the single coordinating goroutine of a Set game. The
// dealer owns the deck, the turn timer and every score; it deals cards onto
// the shared table, serves verification requests one at a time in arrival
// order, reshuffles on timeout and announces the winners.
package dealer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/setforbots/internal/card"
	"github.com/lox/setforbots/internal/deck"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/table"
)

// warningRefresh is the timer refresh interval once the countdown is under
// the warning threshold.
const warningRefresh = 100 * time.Millisecond

// Seat is the dealer's view of a player.
type Seat interface {
	ID() int
	Freeze(until time.Time)
	Deliver(v table.Verdict)
	Terminate()
}

// Config holds the dealer's timing and rule settings.
type Config struct {
	Universe card.Universe
	// TurnTimeout > 0 reshuffles after that long without a set, 0 shows
	// elapsed time instead, < 0 disables the timer. Without a countdown the
	// table is reshuffled only when it holds no set.
	TurnTimeout        time.Duration
	TurnTimeoutWarning time.Duration
	PointFreeze        time.Duration
	PenaltyFreeze      time.Duration
	// TableDelay pauses between individual card placements and removals.
	TableDelay time.Duration
	// DisplayRefresh is how often the timer display is refreshed while
	// counting; 0 refreshes only on resets.
	DisplayRefresh time.Duration
	// Hints publishes every set on the table after each deal.
	Hints bool
}

// Stats counts what happened during a game.
type Stats struct {
	Verifications int
	Sets          int
	Penalties     int
	Stale         int
	Reshuffles    int
}

// Result is the outcome of a game.
type Result struct {
	Winners []int
	Scores  []int
	Stats   Stats
	// Retired holds the cards removed as sets, in claim order.
	Retired []card.Card
	// Remaining holds the cards left in the deck.
	Remaining []card.Card
}

// Option configures a Dealer.
type Option func(*Dealer)

// WithClock sets the clock used for the turn timer, freezes and delays.
func WithClock(clock quartz.Clock) Option {
	return func(d *Dealer) { d.clock = clock }
}

// WithDisplay sets the notification sink.
func WithDisplay(disp display.Display) Option {
	return func(d *Dealer) { d.display = disp }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(d *Dealer) { d.logger = logger }
}

// Dealer coordinates one game.
type Dealer struct {
	cfg     Config
	mode    TimerMode
	table   *table.Table
	deck    *deck.Deck
	seats   []Seat
	display display.Display
	clock   quartz.Clock
	logger  *log.Logger

	// Only the dealer goroutine touches the fields below.
	scores    []int
	retired   []card.Card
	stats     Stats
	deadline  time.Time
	lastReset time.Time

	state      atomic.Int32
	finishOnce sync.Once
	result     Result
}

// New creates a dealer. seats must be indexed by their ID and match the
// table's player count.
func New(cfg Config, t *table.Table, d *deck.Deck, seats []Seat, opts ...Option) (*Dealer, error) {
	if err := cfg.Universe.Validate(); err != nil {
		return nil, fmt.Errorf("invalid card universe: %w", err)
	}
	if len(seats) != t.Players() {
		return nil, fmt.Errorf("table has %d player slots, got %d seats", t.Players(), len(seats))
	}
	for i, s := range seats {
		if s.ID() != i {
			return nil, fmt.Errorf("seat %d reports id %d", i, s.ID())
		}
	}
	if cfg.PointFreeze < 0 || cfg.PenaltyFreeze < 0 || cfg.TableDelay < 0 {
		return nil, errors.New("freezes and table delay must not be negative")
	}

	dl := &Dealer{
		cfg:     cfg,
		mode:    timerMode(cfg.TurnTimeout),
		table:   t,
		deck:    d,
		seats:   seats,
		display: display.Nop{},
		clock:   quartz.NewReal(),
		logger:  log.Default(),
		scores:  make([]int, len(seats)),
	}
	for _, opt := range opts {
		opt(dl)
	}
	if dl.display == nil {
		dl.display = display.Nop{}
	}
	dl.logger = dl.logger.WithPrefix("dealer")
	return dl, nil
}

// State returns the dealer's current state. It is safe to call from any
// goroutine.
func (d *Dealer) State() State {
	return State(d.state.Load())
}

func (d *Dealer) setState(s State) {
	d.state.Store(int32(s))
}

// Run plays the game until no set is left or ctx is cancelled, then
// terminates every seat and announces the winners. A cancelled context is a
// normal way to end the game and is not reported as an error.
func (d *Dealer) Run(ctx context.Context) (Result, error) {
	d.logger.Info("Dealer starting",
		"players", len(d.seats),
		"slots", d.table.Size(),
		"deck", d.deck.Len(),
		"turnTimeout", d.cfg.TurnTimeout)

	for !d.shouldFinish(ctx) {
		d.placeCardsOnTable(ctx)
		if d.timerLoop(ctx) {
			break
		}
		d.removeAllCardsFromTable(ctx)
	}

	result := d.finish()
	d.logger.Info("Dealer terminated", "winners", result.Winners, "sets", result.Stats.Sets)
	return result, nil
}

// shouldFinish reports whether the game is over: shutdown was requested or
// no set exists among the deck and the table.
func (d *Dealer) shouldFinish(ctx context.Context) bool {
	return ctx.Err() != nil || !d.setsRemain()
}

func (d *Dealer) setsRemain() bool {
	cards := append(d.deck.Cards(), d.table.Cards()...)
	return d.cfg.Universe.HasSet(cards)
}

// timerLoop counts down the turn, serving verification requests as they
// arrive. It returns true when the game is over and false when the table
// must be reshuffled.
func (d *Dealer) timerLoop(ctx context.Context) bool {
	d.updateTimerDisplay(true)
	for {
		if d.mode != TimerCountdown && !d.cfg.Universe.HasSet(d.table.Cards()) {
			return false
		}

		d.setState(Counting)
		switch d.sleepUntilWokenOrTimeout(ctx) {
		case WakeShutdown:
			return true
		case WakeTimeout:
			d.updateTimerDisplay(false)
			d.logger.Debug("Turn timed out")
			return false
		case WakeTick:
			d.updateTimerDisplay(false)
		case WakeVerify:
			if d.verifyNext(ctx) && !d.setsRemain() {
				return true
			}
		}
	}
}

// sleepUntilWokenOrTimeout blocks until the first of: shutdown, a queued
// verification request, the turn deadline, or a display refresh.
func (d *Dealer) sleepUntilWokenOrTimeout(ctx context.Context) WakeReason {
	if ctx.Err() != nil {
		return WakeShutdown
	}

	var timeout <-chan time.Time
	remaining := time.Duration(-1)
	if d.mode == TimerCountdown {
		remaining = d.deadline.Sub(d.clock.Now())
		if remaining <= 0 {
			return WakeTimeout
		}
		timer := d.clock.NewTimer(remaining, "dealer", "turn")
		defer timer.Stop()
		timeout = timer.C
	}

	var tick <-chan time.Time
	if every := d.refreshInterval(remaining); every > 0 {
		refresh := d.clock.NewTimer(every, "dealer", "refresh")
		defer refresh.Stop()
		tick = refresh.C
	}

	select {
	case <-ctx.Done():
		return WakeShutdown
	case <-d.table.Ready():
		return WakeVerify
	case <-timeout:
		return WakeTimeout
	case <-tick:
		return WakeTick
	}
}

func (d *Dealer) refreshInterval(remaining time.Duration) time.Duration {
	if d.cfg.DisplayRefresh <= 0 || d.mode == TimerNone {
		return 0
	}
	if d.mode == TimerCountdown && remaining <= d.cfg.TurnTimeoutWarning {
		return min(d.cfg.DisplayRefresh, warningRefresh)
	}
	return d.cfg.DisplayRefresh
}

// updateTimerDisplay publishes the timer, restarting it first when reset
// is set.
func (d *Dealer) updateTimerDisplay(reset bool) {
	now := d.clock.Now()
	switch d.mode {
	case TimerCountdown:
		if reset {
			d.deadline = now.Add(d.cfg.TurnTimeout)
		}
		remaining := max(d.deadline.Sub(now), 0)
		d.display.Countdown(remaining, remaining <= d.cfg.TurnTimeoutWarning)
	case TimerElapsed:
		if reset {
			d.lastReset = now
		}
		d.display.Elapsed(now.Sub(d.lastReset))
	}
}

// placeCardsOnTable deals into the lowest empty slots until the table is
// full or the deck is empty.
func (d *Dealer) placeCardsOnTable(ctx context.Context) {
	d.setState(Filling)
	placed := 0
	for !d.deck.IsEmpty() {
		slot := d.table.FindFirstEmptySlot()
		if slot == table.NoSlot {
			break
		}
		c, _ := d.deck.Deal()
		if err := d.table.PlaceCard(c, slot); err != nil {
			d.deck.Return(c)
			d.logger.Warn("Failed to place card", "slot", slot, "error", err)
			break
		}
		placed++
		d.tableDelay(ctx)
	}
	if placed > 0 {
		d.logger.Debug("Dealt cards", "count", placed, "deck", d.deck.Len())
		d.showHints()
	}
}

// removeAllCardsFromTable returns every table card to the deck, clears all
// tokens, answers queued requests as stale and shuffles.
func (d *Dealer) removeAllCardsFromTable(ctx context.Context) {
	d.setState(Reshuffling)
	for _, req := range d.table.DrainVerifications() {
		d.stats.Stale++
		d.seats[req.Player].Deliver(table.VerdictStale)
	}
	d.table.ClearTokens()

	returned := 0
	for slot := 0; slot < d.table.Size(); slot++ {
		if c, ok := d.table.RemoveCard(slot); ok {
			d.deck.Return(c)
			returned++
			d.tableDelay(ctx)
		}
	}
	d.deck.Shuffle()
	d.stats.Reshuffles++
	d.logger.Debug("Reshuffled table into deck", "returned", returned, "deck", d.deck.Len())
}

// verifyNext serves the oldest verification request. It returns true when
// the request was a valid set and cards left the table.
func (d *Dealer) verifyNext(ctx context.Context) bool {
	req, ok := d.table.DequeueVerification()
	if !ok {
		return false
	}
	d.setState(Verifying)
	d.stats.Verifications++
	seat := d.seats[req.Player]

	if !d.table.StillHolds(req) {
		d.stats.Stale++
		d.logger.Debug("Discarding stale request", "player", req.Player, "slots", req.Slots())
		seat.Deliver(table.VerdictStale)
		return false
	}

	if !d.cfg.Universe.IsSetOf(req.Cards()) {
		d.stats.Penalties++
		d.freeze(seat, d.cfg.PenaltyFreeze)
		d.logger.Debug("Not a set", "player", req.Player, "cards", req.Cards())
		seat.Deliver(table.VerdictPenalty)
		return false
	}

	for _, slot := range req.Slots() {
		if c, ok := d.table.RemoveCard(slot); ok {
			d.retired = append(d.retired, c)
		}
		d.tableDelay(ctx)
	}
	d.scores[req.Player]++
	d.stats.Sets++
	d.display.Score(req.Player, d.scores[req.Player])
	d.freeze(seat, d.cfg.PointFreeze)
	d.logger.Debug("Set claimed", "player", req.Player, "cards", req.Cards(), "score", d.scores[req.Player])
	seat.Deliver(table.VerdictPoint)

	d.placeCardsOnTable(ctx)
	d.updateTimerDisplay(true)
	return true
}

func (d *Dealer) freeze(seat Seat, duration time.Duration) {
	seat.Freeze(d.clock.Now().Add(duration))
	if duration > 0 {
		d.display.Freeze(seat.ID(), duration)
	}
}

// tableDelay pauses between card movements. Shutdown cuts the pause short
// but never the movement itself.
func (d *Dealer) tableDelay(ctx context.Context) {
	if d.cfg.TableDelay <= 0 || ctx.Err() != nil {
		return
	}
	timer := d.clock.NewTimer(d.cfg.TableDelay, "dealer", "delay")
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (d *Dealer) showHints() {
	if !d.cfg.Hints {
		return
	}
	slots := d.table.Slots()
	at := make(map[card.Card]int, len(slots))
	cards := make([]card.Card, 0, len(slots))
	for i, c := range slots {
		if c != card.None {
			at[c] = i
			cards = append(cards, c)
		}
	}
	sets := d.cfg.Universe.FindSets(cards, 0)
	hints := make([][3]int, len(sets))
	for i, s := range sets {
		hints[i] = [3]int{at[s[0]], at[s[1]], at[s[2]]}
	}
	d.display.Hint(hints)
}

// finish terminates every seat, then computes and announces the winners.
// It runs at most once per dealer.
func (d *Dealer) finish() Result {
	d.finishOnce.Do(func() {
		d.setState(Finished)
		for i := len(d.seats) - 1; i >= 0; i-- {
			d.seats[i].Terminate()
		}
		winners := d.winners()
		d.display.Winners(winners)
		d.result = Result{
			Winners:   winners,
			Scores:    slices.Clone(d.scores),
			Stats:     d.stats,
			Retired:   slices.Clone(d.retired),
			Remaining: d.deck.Cards(),
		}
	})
	return d.result
}

// winners returns every seat holding the top score.
func (d *Dealer) winners() []int {
	if len(d.scores) == 0 {
		return []int{}
	}
	best := slices.Max(d.scores)
	var out []int
	for id, s := range d.scores {
		if s == best {
			out = append(out, id)
		}
	}
	return out
}
