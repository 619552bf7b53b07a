package display

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/setforbots/internal/card"
)

// Logger renders notifications as structured log lines. Table churn is
// logged at debug level, scores and the result at info.
type Logger struct {
	logger   *log.Logger
	universe card.Universe
	names    []string
}

// NewLogger creates a log sink; names label players by seat.
func NewLogger(logger *log.Logger, universe card.Universe, names []string) *Logger {
	return &Logger{
		logger:   logger.WithPrefix("table"),
		universe: universe,
		names:    names,
	}
}

func (l *Logger) name(player int) string {
	if player >= 0 && player < len(l.names) {
		return l.names[player]
	}
	return "unknown"
}

func (l *Logger) PlaceCard(c card.Card, slot int) {
	l.logger.Debug("Card placed", "slot", slot, "card", int(c), "features", l.universe.Format(c))
}

func (l *Logger) RemoveCard(slot int) {
	l.logger.Debug("Card removed", "slot", slot)
}

func (l *Logger) PlaceToken(player, slot int) {
	l.logger.Debug("Token placed", "player", l.name(player), "slot", slot)
}

func (l *Logger) RemoveToken(player, slot int) {
	l.logger.Debug("Token removed", "player", l.name(player), "slot", slot)
}

func (l *Logger) Countdown(remaining time.Duration, warn bool) {
	if warn {
		l.logger.Debug("Countdown", "remaining", remaining.Round(time.Millisecond), "warn", warn)
	}
}

func (l *Logger) Elapsed(time.Duration) {}

func (l *Logger) Score(player, score int) {
	l.logger.Info("Score", "player", l.name(player), "score", score)
}

func (l *Logger) Freeze(player int, remaining time.Duration) {
	l.logger.Debug("Freeze", "player", l.name(player), "remaining", remaining.Round(time.Millisecond))
}

func (l *Logger) Hint(sets [][3]int) {
	l.logger.Info("Sets on table", "count", len(sets), "slots", sets)
}

func (l *Logger) Winners(players []int) {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = l.name(p)
	}
	l.logger.Info("Winners", "players", names)
}
