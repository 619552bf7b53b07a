package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/setforbots/internal/config"
	"github.com/lox/setforbots/internal/fileutil"
	"github.com/lox/setforbots/internal/simulator"
)

type SimulateCmd struct {
	Games    int           `short:"n" help:"Number of games to play" default:"100"`
	Parallel int           `short:"p" help:"Games played concurrently (0 uses every CPU)" default:"0"`
	Seed     int64         `help:"Seed games are derived from (0 picks one)"`
	Timeout  time.Duration `help:"Time limit per game" default:"1m"`
	Think    time.Duration `help:"Bot delay between selections unless --realtime is set" default:"1ms"`
	Realtime bool          `help:"Keep the configured timers, freezes and think times"`
	Out      string        `short:"o" help:"Also write the report to this file" type:"path"`
}

func (c *SimulateCmd) Run(globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	level, err := globals.level(cfg)
	if err != nil {
		return err
	}
	if !c.Realtime {
		fastForward(cfg, c.Think)
	}
	if c.Parallel == 0 {
		c.Parallel = runtime.NumCPU()
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           max(level, log.WarnLevel),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := simulator.New(simulator.Config{
		Games:    c.Games,
		Parallel: c.Parallel,
		Seed:     c.Seed,
		Timeout:  c.Timeout,
		Base:     cfg,
		Logger:   logger,
	})
	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed (seed %d): %w", sim.Seed(), err)
	}

	report := simulator.Report(stats, cfg.Names())
	fmt.Println(report)
	fmt.Printf("Seed: %d  Wall time: %s\n", sim.Seed(), time.Since(start).Round(time.Millisecond))

	if c.Out != "" {
		err := fileutil.WriteAtomic(c.Out, 0o644, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%s\nSeed: %d\n", report, sim.Seed())
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// fastForward removes every wait from the configuration so games run as
// fast as the bots can pick cards.
func fastForward(cfg *config.Config, think time.Duration) {
	cfg.Game.TurnTimeout = "-1s"
	cfg.Game.PointFreeze = "0s"
	cfg.Game.PenaltyFreeze = "0s"
	cfg.Game.TableDelay = "0s"
	for i := range cfg.Players {
		cfg.Players[i].ThinkTime = think.String()
	}
}
