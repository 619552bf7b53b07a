// Package simulator plays many headless bot games and aggregates the
// results.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/setforbots/internal/config"
	"github.com/lox/setforbots/internal/game"
	"github.com/lox/setforbots/internal/randutil"
	"github.com/lox/setforbots/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Games    int
	Parallel int
	Seed     int64
	// Timeout bounds each game; zero means no limit.
	Timeout time.Duration
	// Base is the game configuration every run starts from. Human seats are
	// played by bots.
	Base   *config.Config
	Clock  quartz.Clock
	Logger *log.Logger
}

// Simulator runs Set game simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(cfg Config) *Simulator {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.Base == nil {
		cfg.Base = config.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Simulator{config: cfg}
}

// Seed returns the seed game seeds are derived from.
func (s *Simulator) Seed() int64 { return s.config.Seed }

// Run plays every game and returns the aggregated statistics. The first
// failing game cancels the others.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Games < 1 {
		return nil, errors.New("simulator: at least one game is required")
	}
	s.config.Seed = randutil.Resolve(s.config.Seed)
	logger := s.config.Logger.WithPrefix("simulator")
	logger.Info("Starting simulation", "games", s.config.Games, "parallel", s.config.Parallel, "seed", s.config.Seed)

	results := make([]statistics.GameResult, s.config.Games)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Parallel)
	for i := range s.config.Games {
		eg.Go(func() error {
			result, err := s.playGameWithTimeout(ctx, i)
			if err != nil {
				return err
			}
			results[i] = result
			logger.Debug("Game finished", "game", i+1, "seed", result.Seed, "winners", result.Winners)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// playGameWithTimeout runs a single game with timeout protection
func (s *Simulator) playGameWithTimeout(ctx context.Context, n int) (statistics.GameResult, error) {
	cfg := s.gameConfig(n)
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	g, err := game.New(game.Options{
		Config: cfg,
		Clock:  s.config.Clock,
		Logger: s.config.Logger,
	})
	if err != nil {
		return statistics.GameResult{}, fmt.Errorf("game %d: %w", n+1, err)
	}

	start := s.config.Clock.Now()
	result, err := g.Run(ctx)
	if err != nil {
		return statistics.GameResult{}, err
	}
	if ctx.Err() != nil {
		return statistics.GameResult{}, fmt.Errorf("game %d stopped after %v (seed: %d): %w",
			n+1, s.config.Clock.Now().Sub(start), g.Seed(), ctx.Err())
	}

	return statistics.GameResult{
		Seed:       g.Seed(),
		Scores:     result.Scores,
		Winners:    result.Winners,
		Penalties:  result.Stats.Penalties,
		Stale:      result.Stats.Stale,
		Reshuffles: result.Stats.Reshuffles,
		Duration:   s.config.Clock.Now().Sub(start),
	}, nil
}

// gameConfig derives the configuration of the n-th game: its own seed and
// bots in every seat.
func (s *Simulator) gameConfig(n int) *config.Config {
	cfg := s.config.Base.Clone()
	cfg.Game.Seed = randutil.Derive(s.config.Seed, n)
	for i := range cfg.Players {
		if cfg.Players[i].Human {
			cfg.Players[i].Human = false
			cfg.Players[i].Keys = nil
			if cfg.Players[i].ThinkTime == "" {
				cfg.Players[i].ThinkTime = config.DefaultThinkTime
			}
		}
	}
	return cfg
}
