package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/setforbots/internal/dealer"
	"github.com/lox/setforbots/internal/game"
	"github.com/lox/setforbots/internal/tui"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)
	winnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)
)

type PlayCmd struct {
	Seed  int64 `help:"Seed for the deck and bots (0 picks one)"`
	Hints bool  `help:"Highlight the sets on the table"`
}

func (c *PlayCmd) Run(globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	if c.Seed != 0 {
		cfg.Game.Seed = c.Seed
	}
	if c.Hints {
		cfg.Game.Hints = true
	}
	level, err := globals.level(cfg)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so the log goes to a file.
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			log.Error("Failed to close log file", "error", err)
		}
	}()
	logger := log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           level,
	})

	bridge := tui.NewBridge()
	g, err := game.New(game.Options{
		Config:  cfg,
		Display: bridge,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	keys := make([][]string, len(cfg.Players))
	keyboards := make(map[int]tui.Presser)
	for i, p := range cfg.Players {
		keys[i] = p.Keys
		if k, ok := g.Keyboard(i); ok {
			keyboards[i] = k
		}
	}
	model := tui.New(tui.Options{
		Universe:  g.Universe(),
		Slots:     cfg.Game.TableSize,
		Names:     g.Names(),
		Keys:      keys,
		Keyboards: keyboards,
		Bridge:    bridge,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	var (
		result  dealer.Result
		gameErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, gameErr = g.Run(ctx)
		program.Send(tui.GameOverMsg{Err: gameErr})
	}()

	_, uiErr := program.Run()
	cancel()
	<-done

	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", uiErr)
	}
	if gameErr != nil && !errors.Is(gameErr, context.Canceled) {
		return gameErr
	}
	if dropped := bridge.Dropped(); dropped > 0 {
		logger.Warn("UI dropped notifications", "count", dropped)
	}

	fmt.Println(summary(g.Names(), result, g.Seed()))
	return nil
}

// summary renders the final scores, marking the winners.
func summary(names []string, result dealer.Result, seed int64) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SET"))
	fmt.Fprintf(&b, " seed %d\n\n", seed)
	for seat, name := range names {
		score := 0
		if seat < len(result.Scores) {
			score = result.Scores[seat]
		}
		line := fmt.Sprintf("  %-12s %3d", name, score)
		for _, w := range result.Winners {
			if w == seat {
				line = winnerStyle.Render(line + "  winner")
				break
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
