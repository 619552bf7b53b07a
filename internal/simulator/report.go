package simulator

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/setforbots/internal/statistics"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	bestStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("10"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// Report renders a summary of simulation results; names label the seats.
func Report(stats *statistics.Statistics, names []string) string {
	var b strings.Builder

	low, high := stats.ConfidenceInterval95()
	fmt.Fprintf(&b, "%s\n", headerStyle.Render("=== SIMULATION RESULTS ==="))
	fmt.Fprintf(&b, "Games played: %d\n", stats.Games)
	fmt.Fprintf(&b, "Sets per game: mean %.2f, median %.1f, std dev %.2f\n", stats.Mean(), stats.Median(), stats.StdDev())
	fmt.Fprintf(&b, "95%% CI: [%.2f, %.2f] sets/game\n", low, high)
	fmt.Fprintf(&b, "Percentiles: P5=%.1f, P25=%.1f, P75=%.1f, P95=%.1f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))
	fmt.Fprintf(&b, "Penalties: %d, stale requests: %d, reshuffles: %d\n", stats.Penalties, stats.Stale, stats.Reshuffles)
	if stats.Games > 0 {
		fmt.Fprintf(&b, "Average game time: %v\n\n", (stats.Duration / time.Duration(stats.Games)).Round(time.Millisecond))
	}

	best := 0
	for seat := range stats.Seats {
		if stats.Seats[seat].Wins > stats.Seats[best].Wins {
			best = seat
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("SEAT", "WINS", "TIES", "WIN RATE", "SETS/GAME").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case row == best:
				return bestStyle
			default:
				return cellStyle
			}
		})
	for seat, ss := range stats.Seats {
		name := fmt.Sprintf("seat %d", seat+1)
		if seat < len(names) {
			name = names[seat]
		}
		t.Row(
			name,
			fmt.Sprintf("%d", ss.Wins),
			fmt.Sprintf("%d", ss.Ties),
			fmt.Sprintf("%.1f%%", stats.WinRate(seat)*100),
			fmt.Sprintf("%.2f", stats.SeatMean(seat)),
		)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}
