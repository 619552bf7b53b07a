// Package player runs one goroutine per seat. An agent turns slot
// selections from its Source into token toggles on the shared table and,
// once it holds three tokens, asks the dealer for a verdict and waits for it.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/table"
)

// freezeRefresh is how often a frozen agent refreshes its freeze display.
const freezeRefresh = time.Second

// Config identifies a seat.
type Config struct {
	ID    int
	Name  string
	Human bool
}

// Agent is a seat at the table.
type Agent struct {
	cfg     Config
	table   *table.Table
	source  Source
	display display.Display
	clock   quartz.Clock
	logger  *log.Logger

	// frozenUntil is written by the dealer and read by the agent.
	frozenUntil atomic.Int64
	verdicts    chan table.Verdict
	done        chan struct{}
	stopOnce    sync.Once
}

// NewAgent creates an agent for the seat described by cfg.
func NewAgent(cfg Config, t *table.Table, source Source, disp display.Display, clock quartz.Clock, logger *log.Logger) *Agent {
	if disp == nil {
		disp = display.Nop{}
	}
	if cfg.Name == "" {
		cfg.Name = fmt.Sprintf("player-%d", cfg.ID+1)
	}
	return &Agent{
		cfg:      cfg,
		table:    t,
		source:   source,
		display:  disp,
		clock:    clock,
		logger:   logger.WithPrefix("player").With("id", cfg.ID, "name", cfg.Name),
		verdicts: make(chan table.Verdict, 1),
		done:     make(chan struct{}),
	}
}

// ID returns the seat index.
func (a *Agent) ID() int { return a.cfg.ID }

// Name returns the display name.
func (a *Agent) Name() string { return a.cfg.Name }

// Human reports whether the seat is driven by a person.
func (a *Agent) Human() bool { return a.cfg.Human }

// Freeze blocks new token placement until the given instant.
func (a *Agent) Freeze(until time.Time) {
	a.frozenUntil.Store(until.UnixNano())
}

// FrozenUntil returns the end of the current freeze.
func (a *Agent) FrozenUntil() time.Time {
	return time.Unix(0, a.frozenUntil.Load())
}

// Frozen reports whether the agent is currently frozen.
func (a *Agent) Frozen() bool {
	return a.clock.Now().UnixNano() < a.frozenUntil.Load()
}

// Deliver hands the dealer's verdict to the agent. It never blocks: a player
// has at most one outstanding request, so the single slot buffer is free.
func (a *Agent) Deliver(v table.Verdict) {
	select {
	case a.verdicts <- v:
	default:
		a.logger.Warn("Dropping verdict, previous one not consumed", "verdict", v)
	}
}

// Terminate asks the agent to stop, waking it if it is waiting for a
// verdict or sitting out a freeze. It is safe to call more than once.
func (a *Agent) Terminate() {
	a.stopOnce.Do(func() { close(a.done) })
}

// Done is closed once Terminate has been called.
func (a *Agent) Done() <-chan struct{} {
	return a.done
}

// Run is the agent's main loop. It returns nil when the context is
// cancelled or the agent is terminated.
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-a.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	a.logger.Debug("Agent starting", "human", a.cfg.Human)
	defer a.logger.Debug("Agent terminated")

	for {
		slot, err := a.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("player %d input: %w", a.cfg.ID, err)
		}
		if a.Frozen() {
			continue
		}
		if err := a.keyPressed(ctx, slot); err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// keyPressed toggles a token and, when that completes a triple, submits it
// and waits for the verdict.
func (a *Agent) keyPressed(ctx context.Context, slot int) error {
	placed, count, err := a.table.ToggleToken(a.cfg.ID, slot)
	if err != nil {
		// Empty slot, full hand or bad slot: nothing to do.
		a.logger.Debug("Ignoring selection", "slot", slot, "reason", err)
		return nil
	}
	if !placed || count < table.MaxTokens {
		return nil
	}

	req, err := a.table.Submit(a.cfg.ID)
	if err != nil {
		a.logger.Debug("Triple not submitted", "reason", err)
		return nil
	}
	a.logger.Debug("Submitted triple", "slots", req.Slots())

	var verdict table.Verdict
	select {
	case verdict = <-a.verdicts:
	case <-ctx.Done():
		return ctx.Err()
	}
	a.logger.Debug("Received verdict", "verdict", verdict)

	if verdict != table.VerdictStale {
		if err := a.serveFreeze(ctx); err != nil {
			return err
		}
	}
	if f, ok := a.source.(Flusher); ok {
		f.Flush()
	}
	return nil
}

// serveFreeze sleeps until the freeze set by the dealer expires, refreshing
// the freeze display once per second.
func (a *Agent) serveFreeze(ctx context.Context) error {
	for {
		remaining := a.FrozenUntil().Sub(a.clock.Now())
		if remaining <= 0 {
			a.display.Freeze(a.cfg.ID, 0)
			return nil
		}
		a.display.Freeze(a.cfg.ID, remaining)
		if err := sleep(ctx, a.clock, min(remaining, freezeRefresh), "player", "freeze"); err != nil {
			return err
		}
	}
}
