package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/setforbots/internal/card"
	"github.com/lox/setforbots/internal/config"
	"github.com/lox/setforbots/internal/dealer"
	"github.com/lox/setforbots/internal/deck"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/player"
	"github.com/lox/setforbots/internal/randutil"
	"github.com/lox/setforbots/internal/table"
)

var ErrNoConfig = errors.New("game: configuration is required")

// Options configures a Game.
type Options struct {
	Config *config.Config
	// Display receives every notification in addition to the log sink.
	Display display.Display
	Clock   quartz.Clock
	Logger  *log.Logger
	// Sources overrides the input of individual seats by index.
	Sources map[int]player.Source
}

// Game is one configured, not yet started, Set game.
type Game struct {
	ID       uuid.UUID
	seed     int64
	universe card.Universe
	names    []string

	table     *table.Table
	dealer    *dealer.Dealer
	agents    []*player.Agent
	keyboards map[int]*player.KeyboardSource
	logger    *log.Logger
}

// New validates the configuration and builds the table, deck, dealer and
// agents. Nothing runs until Run is called.
func New(opts Options) (*Game, error) {
	if opts.Config == nil {
		return nil, ErrNoConfig
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	dcfg, err := cfg.DealerConfig()
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate game id: %w", err)
	}
	seed := randutil.Resolve(cfg.Game.Seed)
	logger := opts.Logger.With("game", id.String())

	g := &Game{
		ID:        id,
		seed:      seed,
		universe:  dcfg.Universe,
		names:     cfg.Names(),
		keyboards: make(map[int]*player.KeyboardSource),
		logger:    logger.WithPrefix("game"),
	}

	sink := display.Safe(display.NewMulti(
		display.NewLogger(logger, dcfg.Universe, g.names),
		opts.Display,
	), logger)

	g.table = table.New(cfg.Game.TableSize, len(cfg.Players), sink, logger)

	d := deck.New(dcfg.Universe.Cards(), randutil.New(seed))
	d.Shuffle()

	seats := make([]dealer.Seat, len(cfg.Players))
	for i, p := range cfg.Players {
		source, err := g.source(opts, i, p, seed)
		if err != nil {
			return nil, err
		}
		agent := player.NewAgent(player.Config{ID: i, Name: p.Name, Human: p.Human},
			g.table, source, sink, opts.Clock, logger)
		g.agents = append(g.agents, agent)
		seats[i] = agent
	}

	g.dealer, err = dealer.New(dcfg, g.table, d, seats,
		dealer.WithClock(opts.Clock),
		dealer.WithDisplay(sink),
		dealer.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) source(opts Options, seat int, p config.PlayerConfig, seed int64) (player.Source, error) {
	if s, ok := opts.Sources[seat]; ok {
		return s, nil
	}
	if p.Human {
		k := player.NewKeyboardSource()
		g.keyboards[seat] = k
		return k, nil
	}
	think, err := p.Think()
	if err != nil {
		return nil, err
	}
	return player.NewRandomSource(opts.Config.Game.TableSize, randutil.New(randutil.Derive(seed, seat)), think, opts.Clock), nil
}

// Seed returns the seed the deck and bots were derived from.
func (g *Game) Seed() int64 { return g.seed }

// Universe returns the card universe in play.
func (g *Game) Universe() card.Universe { return g.universe }

// Names returns the player names in seat order.
func (g *Game) Names() []string { return g.names }

// Table returns the shared table.
func (g *Game) Table() *table.Table { return g.table }

// Agents returns the seats in order.
func (g *Game) Agents() []*player.Agent { return g.agents }

// Keyboard returns the key press source of a human seat.
func (g *Game) Keyboard(seat int) (*player.KeyboardSource, bool) {
	k, ok := g.keyboards[seat]
	return k, ok
}

// Run plays the game to the end and waits for every goroutine to exit.
// Cancelling ctx ends the game early; the result then holds the scores at
// that point.
func (g *Game) Run(ctx context.Context) (dealer.Result, error) {
	g.logger.Info("Game starting", "seed", g.seed, "players", len(g.agents), "deck", g.universe.Size)

	eg, ctx := errgroup.WithContext(ctx)
	for _, a := range g.agents {
		eg.Go(func() error {
			return a.Run(ctx)
		})
	}

	var result dealer.Result
	eg.Go(func() error {
		var err error
		result, err = g.dealer.Run(ctx)
		return err
	})

	if err := eg.Wait(); err != nil {
		return result, fmt.Errorf("game %s: %w", g.ID, err)
	}
	g.logger.Info("Game over", "winners", result.Winners, "scores", result.Scores)
	return result, nil
}
