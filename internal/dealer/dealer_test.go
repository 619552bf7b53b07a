package dealer

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setforbots/internal/card"
	"github.com/lox/setforbots/internal/deck"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/randutil"
	"github.com/lox/setforbots/internal/table"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// fakeSeat records what the dealer tells a player.
type fakeSeat struct {
	id         int
	mu         sync.Mutex
	until      time.Time
	verdicts   chan table.Verdict
	terminated atomic.Bool
}

func newFakeSeat(id int) *fakeSeat {
	return &fakeSeat{id: id, verdicts: make(chan table.Verdict, 16)}
}

func (s *fakeSeat) ID() int { return s.id }

func (s *fakeSeat) Freeze(until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.until = until
}

func (s *fakeSeat) frozenUntil() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.until
}

func (s *fakeSeat) Deliver(v table.Verdict) { s.verdicts <- v }
func (s *fakeSeat) Terminate()              { s.terminated.Store(true) }

func (s *fakeSeat) verdict(t *testing.T) table.Verdict {
	t.Helper()
	select {
	case v := <-s.verdicts:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("seat %d got no verdict", s.id)
		return 0
	}
}

type harness struct {
	dealer *Dealer
	table  *table.Table
	seats  []*fakeSeat
	rec    *display.Recorder
	clock  *quartz.Mock
}

func testConfig() Config {
	return Config{
		Universe:           card.DefaultUniverse(),
		TurnTimeout:        60 * time.Second,
		TurnTimeoutWarning: 5 * time.Second,
		PointFreeze:        time.Second,
		PenaltyFreeze:      3 * time.Second,
	}
}

func newHarness(t *testing.T, cfg Config, slots, players int, cards ...card.Card) *harness {
	t.Helper()
	rec := display.NewRecorder()
	clock := quartz.NewMock(t)
	tbl := table.New(slots, players, rec, testLogger())

	fakes := make([]*fakeSeat, players)
	seats := make([]Seat, players)
	for i := range fakes {
		fakes[i] = newFakeSeat(i)
		seats[i] = fakes[i]
	}

	d, err := New(cfg, tbl, deck.New(cards, randutil.New(1)), seats,
		WithClock(clock), WithDisplay(rec), WithLogger(testLogger()))
	require.NoError(t, err)
	return &harness{dealer: d, table: tbl, seats: fakes, rec: rec, clock: clock}
}

// run starts the dealer and returns a function waiting for its result.
func (h *harness) run(t *testing.T, ctx context.Context) func() Result {
	t.Helper()
	done := make(chan Result, 1)
	go func() {
		r, err := h.dealer.Run(ctx)
		assert.NoError(t, err)
		done <- r
	}()
	return func() Result {
		t.Helper()
		select {
		case r := <-done:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("dealer did not finish")
			return Result{}
		}
	}
}

func (h *harness) mark(t *testing.T, player int, slots ...int) table.Request {
	t.Helper()
	for _, s := range slots {
		require.NoError(t, h.table.PlaceToken(player, s))
	}
	req, err := h.table.Submit(player)
	require.NoError(t, err)
	return req
}

func TestScenarioSingleSetEndsGame(t *testing.T) {
	h := newHarness(t, testConfig(), 3, 1, 0, 1, 2)
	wait := h.run(t, context.Background())

	require.Eventually(t, func() bool { return h.table.CountCards() == 3 }, time.Second, time.Millisecond)
	h.mark(t, 0, 0, 1, 2)

	result := wait()
	assert.Equal(t, []int{0}, result.Winners)
	assert.Equal(t, []int{1}, result.Scores)
	assert.Equal(t, 1, result.Stats.Sets)
	assert.ElementsMatch(t, []card.Card{0, 1, 2}, result.Retired)
	assert.Empty(t, result.Remaining)
	assert.Equal(t, 0, h.table.CountCards())
	assert.Equal(t, 0, h.table.TokenCount(0))

	assert.Equal(t, table.VerdictPoint, h.seats[0].verdict(t))
	assert.True(t, h.seats[0].terminated.Load())
	assert.Equal(t, Finished, h.dealer.State())
	assert.Len(t, h.rec.Kind("winners"), 1)
}

func TestVerifyServesRequestsInArrivalOrder(t *testing.T) {
	h := newHarness(t, testConfig(), 6, 2, 0, 1, 2, 3, 4, 5)
	ctx := context.Background()
	h.dealer.placeCardsOnTable(ctx)
	h.dealer.updateTimerDisplay(true)

	h.mark(t, 1, 3, 4, 5)
	h.mark(t, 0, 0, 1, 2)

	assert.True(t, h.dealer.verifyNext(ctx))
	assert.True(t, h.dealer.verifyNext(ctx))
	assert.False(t, h.dealer.verifyNext(ctx), "queue is empty")

	scores := h.rec.Kind("score")
	require.Len(t, scores, 2)
	assert.Equal(t, 1, scores[0].Player, "first submitted, first served")
	assert.Equal(t, 0, scores[1].Player)
	assert.Equal(t, []int{1, 1}, h.dealer.scores)
	assert.Equal(t, table.VerdictPoint, h.seats[0].verdict(t))
	assert.Equal(t, table.VerdictPoint, h.seats[1].verdict(t))
}

func TestValidSetRewardsAndRefills(t *testing.T) {
	cfg := testConfig()
	h := newHarness(t, cfg, 3, 2, 0, 1, 2, 9, 10, 11)
	ctx := context.Background()
	h.dealer.placeCardsOnTable(ctx)
	h.dealer.updateTimerDisplay(true)

	// The other player shares one of the slots; the set clears it too.
	require.NoError(t, h.table.PlaceToken(1, 2))
	h.mark(t, 0, 0, 1, 2)
	h.clock.Advance(10 * time.Second)

	require.True(t, h.dealer.verifyNext(ctx))
	assert.Equal(t, []card.Card{9, 10, 11}, h.table.Slots())
	assert.Equal(t, 0, h.table.TokenCount(1))
	assert.Equal(t, h.clock.Now().Add(cfg.PointFreeze), h.seats[0].frozenUntil())
	assert.Equal(t, h.clock.Now().Add(cfg.TurnTimeout), h.dealer.deadline, "countdown reset")
}

func TestInvalidTriplePenalisesWithoutTouchingCountdown(t *testing.T) {
	cfg := testConfig()
	h := newHarness(t, cfg, 3, 1, 0, 1, 3)
	ctx := context.Background()
	h.dealer.placeCardsOnTable(ctx)
	h.dealer.updateTimerDisplay(true)
	deadline := h.dealer.deadline

	h.mark(t, 0, 0, 1, 2)
	h.clock.Advance(10 * time.Second)

	assert.False(t, h.dealer.verifyNext(ctx))
	assert.Equal(t, table.VerdictPenalty, h.seats[0].verdict(t))
	assert.Equal(t, []int{0}, h.dealer.scores)
	assert.Equal(t, 1, h.dealer.stats.Penalties)
	assert.Equal(t, deadline, h.dealer.deadline)
	assert.Equal(t, h.clock.Now().Add(cfg.PenaltyFreeze), h.seats[0].frozenUntil())
	assert.Equal(t, []card.Card{0, 1, 3}, h.table.Slots(), "cards stay")
	assert.Equal(t, 3, h.table.TokenCount(0), "tokens stay")

	freezes := h.rec.Kind("freeze")
	require.Len(t, freezes, 1)
	assert.Equal(t, cfg.PenaltyFreeze, freezes[0].Duration)
}

func TestStaleRequestIsDiscarded(t *testing.T) {
	h := newHarness(t, testConfig(), 3, 1, 0, 1, 2, 50)
	ctx := context.Background()
	h.dealer.placeCardsOnTable(ctx)

	h.mark(t, 0, 0, 1, 2)
	// The card under slot 1 changes before the dealer looks at it.
	h.table.RemoveCard(1)
	require.NoError(t, h.table.PlaceCard(50, 1))

	assert.False(t, h.dealer.verifyNext(ctx))
	assert.Equal(t, table.VerdictStale, h.seats[0].verdict(t))
	assert.Equal(t, 1, h.dealer.stats.Stale)
	assert.Zero(t, h.dealer.stats.Penalties)
	assert.Equal(t, []int{0}, h.dealer.scores)
	assert.True(t, h.seats[0].frozenUntil().IsZero(), "no freeze for stale requests")
}

func TestScenarioTimeoutReshuffles(t *testing.T) {
	u := card.DefaultUniverse()
	h := newHarness(t, testConfig(), 3, 1, u.Cards()...)
	ctx, cancel := context.WithCancel(context.Background())
	wait := h.run(t, ctx)

	require.Eventually(t, func() bool {
		_, ok := h.clock.Peek()
		return ok && h.table.CountCards() == 3
	}, time.Second, time.Millisecond)
	require.NoError(t, h.table.PlaceToken(0, 1))

	advance, w := h.clock.AdvanceNext()
	assert.Equal(t, 60*time.Second, advance)
	w.MustWait(ctx)

	require.Eventually(t, func() bool {
		return len(h.rec.Kind("remove_card")) == 3 && h.table.CountCards() == 3
	}, time.Second, time.Millisecond)
	assert.Equal(t, 0, h.table.TokenCount(0), "reshuffle clears tokens")

	cancel()
	result := wait()
	assert.GreaterOrEqual(t, result.Stats.Reshuffles, 1)

	all := append(append(result.Remaining, result.Retired...), h.table.Cards()...)
	assert.ElementsMatch(t, u.Cards(), all, "deck, table and retired cards add up to the universe")

	var expired bool
	for _, e := range h.rec.Kind("countdown") {
		if e.Duration == 0 && e.Warn {
			expired = true
		}
	}
	assert.True(t, expired, "timeout is shown as an expired countdown")
}

func TestReshuffleAnswersQueuedRequestsAsStale(t *testing.T) {
	h := newHarness(t, testConfig(), 3, 1, 0, 1, 3, 7)
	ctx := context.Background()
	h.dealer.placeCardsOnTable(ctx)
	h.mark(t, 0, 0, 1, 2)

	h.dealer.removeAllCardsFromTable(ctx)
	assert.Equal(t, table.VerdictStale, h.seats[0].verdict(t))
	assert.Equal(t, 0, h.table.PendingVerifications())
	assert.Equal(t, 0, h.table.CountCards())
	assert.Equal(t, 4, h.dealer.deck.Len())
	assert.Equal(t, Reshuffling, h.dealer.State())
}

func TestRunEndsWhenNoSetExists(t *testing.T) {
	h := newHarness(t, testConfig(), 3, 2, 0, 1, 3)
	result := h.run(t, context.Background())()

	assert.Equal(t, []int{0, 1}, result.Winners, "ties are all winners")
	assert.Equal(t, []int{0, 0}, result.Scores)
	assert.Empty(t, h.rec.Kind("place_card"))
	assert.Len(t, h.rec.Kind("winners"), 1)
	for _, s := range h.seats {
		assert.True(t, s.terminated.Load())
	}
}

func TestShutdownAnnouncesWinnersOnce(t *testing.T) {
	u := card.DefaultUniverse()
	h := newHarness(t, testConfig(), 12, 2, u.Cards()...)
	ctx, cancel := context.WithCancel(context.Background())
	wait := h.run(t, ctx)

	require.Eventually(t, func() bool { return h.dealer.State() == Counting }, time.Second, time.Millisecond)
	cancel()
	result := wait()

	assert.Equal(t, []int{0, 1}, result.Winners)
	assert.Equal(t, result, h.dealer.finish(), "finish is idempotent")
	assert.Len(t, h.rec.Kind("winners"), 1)
}

func TestElapsedModeReshufflesWhenTableHasNoSet(t *testing.T) {
	cfg := testConfig()
	cfg.TurnTimeout = 0
	// The first deal is 0, 1, 3 which holds no set; the deck keeps 2.
	h := newHarness(t, cfg, 3, 1, 0, 1, 3, 2)
	ctx, cancel := context.WithCancel(context.Background())
	wait := h.run(t, ctx)

	require.Eventually(t, func() bool {
		return h.dealer.State() == Counting && h.table.CountCards() == 3
	}, time.Second, time.Millisecond)
	assert.ElementsMatch(t, []card.Card{0, 1, 2}, h.table.Cards(), "dealer only waits on a table holding a set")

	cancel()
	result := wait()
	assert.GreaterOrEqual(t, result.Stats.Reshuffles, 1)
	assert.NotEmpty(t, h.rec.Kind("elapsed"))
	assert.Empty(t, h.rec.Kind("countdown"))
}

func TestHintsListSetsOnTable(t *testing.T) {
	cfg := testConfig()
	cfg.Hints = true
	h := newHarness(t, cfg, 4, 1, 0, 9, 1, 2)
	h.dealer.placeCardsOnTable(context.Background())

	hints := h.rec.Kind("hint")
	require.Len(t, hints, 1)
	assert.Equal(t, [][3]int{{0, 2, 3}}, hints[0].Sets)
}

func TestSleepWakeReasons(t *testing.T) {
	h := newHarness(t, testConfig(), 3, 1, 0, 1, 2)
	ctx, cancel := context.WithCancel(context.Background())
	h.dealer.placeCardsOnTable(ctx)
	h.dealer.updateTimerDisplay(true)

	h.mark(t, 0, 0, 1, 2)
	assert.Equal(t, WakeVerify, h.dealer.sleepUntilWokenOrTimeout(ctx))

	h.clock.Set(h.dealer.deadline)
	assert.Equal(t, WakeTimeout, h.dealer.sleepUntilWokenOrTimeout(ctx))

	cancel()
	assert.Equal(t, WakeShutdown, h.dealer.sleepUntilWokenOrTimeout(ctx))
}

func TestNewValidatesSeats(t *testing.T) {
	tbl := table.New(3, 2, nil, testLogger())
	d := deck.New(nil, randutil.New(1))

	_, err := New(testConfig(), tbl, d, []Seat{newFakeSeat(0)})
	assert.Error(t, err)

	_, err = New(testConfig(), tbl, d, []Seat{newFakeSeat(0), newFakeSeat(0)})
	assert.Error(t, err)

	cfg := testConfig()
	cfg.PenaltyFreeze = -time.Second
	_, err = New(cfg, tbl, d, []Seat{newFakeSeat(0), newFakeSeat(1)})
	assert.Error(t, err)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "verifying", Verifying.String())
	assert.Equal(t, "shutdown", WakeShutdown.String())
	assert.Equal(t, TimerNone, timerMode(-time.Second))
}
