// Package game wires one Set game together from its configuration.
//
// A Game owns the shared table, one dealer goroutine and one agent goroutine
// per seat. Humans are driven through a KeyboardSource that a front end feeds
// with key presses; every other seat is a random bot.
//
// # Basic Usage
//
//	cfg, _ := config.Load("setforbots.hcl")
//	g, err := game.New(game.Options{Config: cfg, Logger: logger})
//	if err != nil {
//	    return err
//	}
//	result, err := g.Run(ctx)
//
// # Deterministic Runs
//
// The deck order and every bot's choices derive from a single seed. A game
// configured with seed 0 picks a time based seed; Seed reports the one in
// use so the run can be replayed:
//
//	cfg.Game.Seed = g.Seed()
//
// Pass a quartz.Mock clock in Options to drive timers from tests.
//
// # Architecture
//
// Game delegates to the packages that implement the concurrency model:
//   - table.Table: slots, tokens and the verification queue behind one mutex
//   - dealer.Dealer: deals, verifies requests in arrival order, reshuffles
//   - player.Agent: turns slot selections into token toggles and submissions
//   - display.Display: notifications, fanned out to a log and a front end
package game
