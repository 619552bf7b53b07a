// Package tui is the terminal front end of a local game: a Bubble Tea model
// that renders the table from display notifications and turns key presses
// into slot selections for the human seats.
package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/setforbots/internal/card"
)

// columns is the number of slots per row on the board.
const columns = 4

// Presser accepts slot selections for one seat.
type Presser interface {
	Press(slot int) bool
}

type binding struct {
	seat int
	slot int
}

// Options configures a Model.
type Options struct {
	Universe card.Universe
	Slots    int
	Names    []string
	// Keys holds the per-slot key of each seat; bots have none.
	Keys      [][]string
	Keyboards map[int]Presser
	Bridge    *Bridge
	Logger    *log.Logger
	TestMode  bool
}

// Model represents the Bubble Tea model for a game
type Model struct {
	universe  card.Universe
	names     []string
	keys      [][]string
	bindings  map[string]binding
	keyboards map[int]Presser
	bridge    *Bridge
	logger    *log.Logger

	// Board state, rebuilt from notifications
	slots   []card.Card
	tokens  [][]int // seats holding a token, per slot
	scores  []int
	freezes []time.Duration
	timer   TimerMsg
	hasTime bool
	hints   [][3]int
	winners []int
	over    bool

	logViewport viewport.Model
	gameLog     []string

	width    int
	height   int
	quitting bool

	testMode    bool
	capturedLog []string
}

// New creates a model. Keys of human seats are bound immediately.
func New(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	m := &Model{
		universe:    opts.Universe,
		names:       opts.Names,
		keys:        opts.Keys,
		bindings:    make(map[string]binding),
		keyboards:   opts.Keyboards,
		bridge:      opts.Bridge,
		logger:      opts.Logger.WithPrefix("tui"),
		slots:       make([]card.Card, opts.Slots),
		tokens:      make([][]int, opts.Slots),
		scores:      make([]int, len(opts.Names)),
		freezes:     make([]time.Duration, len(opts.Names)),
		logViewport: viewport.New(10, 5),
		testMode:    opts.TestMode,
	}
	for i := range m.slots {
		m.slots[i] = card.None
	}
	for seat, keys := range opts.Keys {
		for slot, k := range keys {
			m.bindings[k] = binding{seat: seat, slot: slot}
		}
	}
	return m
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	if m.bridge == nil {
		return nil
	}
	return m.bridge.Listen()
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case GameOverMsg:
		m.over = true
		if msg.Err != nil {
			m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Game failed: %v", msg.Err)))
		}
		m.AddLogEntry(InfoStyle.Render("Press any key to exit"))
		return m, nil
	}

	if m.apply(msg) {
		return m, m.listen()
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m *Model) listen() tea.Cmd {
	if m.bridge == nil {
		return nil
	}
	return m.bridge.Listen()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.over || key == "ctrl+c" || key == "esc" {
		m.quitting = true
		return m, tea.Quit
	}

	switch key {
	case "pgup":
		m.logViewport.HalfPageUp()
		return m, nil
	case "pgdown":
		m.logViewport.HalfPageDown()
		return m, nil
	}

	b, ok := m.bindings[key]
	if !ok {
		return m, nil
	}
	k, ok := m.keyboards[b.seat]
	if !ok {
		return m, nil
	}
	if !k.Press(b.slot) {
		m.logger.Debug("Key press dropped", "seat", b.seat, "slot", b.slot)
	}
	return m, nil
}

// apply folds a notification into the board state. It reports whether msg
// was a notification.
func (m *Model) apply(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case CardMsg:
		if !m.validSlot(msg.Slot) {
			return true
		}
		m.slots[msg.Slot] = msg.Card
		if msg.Card == card.None {
			m.tokens[msg.Slot] = nil
		}
		m.hints = nil

	case TokenMsg:
		if !m.validSlot(msg.Slot) {
			return true
		}
		holders := slices.DeleteFunc(m.tokens[msg.Slot], func(p int) bool { return p == msg.Player })
		if msg.Placed {
			holders = append(holders, msg.Player)
			slices.Sort(holders)
		}
		m.tokens[msg.Slot] = holders

	case TimerMsg:
		m.timer = msg
		m.hasTime = true

	case ScoreMsg:
		if m.validSeat(msg.Player) {
			m.scores[msg.Player] = msg.Score
			m.AddLogEntry(SuccessStyle.Render(fmt.Sprintf("%s found a set (%d)", m.name(msg.Player), msg.Score)))
		}

	case FreezeMsg:
		if m.validSeat(msg.Player) {
			m.freezes[msg.Player] = msg.Remaining
		}

	case HintMsg:
		m.hints = msg.Sets
		if len(msg.Sets) > 0 {
			m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("Hint: %d set(s) on the table", len(msg.Sets))))
		}

	case WinnersMsg:
		m.winners = msg.Players
		names := make([]string, len(msg.Players))
		for i, p := range msg.Players {
			names[i] = m.name(p)
		}
		m.AddLogEntry(WarningStyle.Render("Winners: " + strings.Join(names, ", ")))

	default:
		return false
	}
	return true
}

func (m *Model) validSlot(slot int) bool { return slot >= 0 && slot < len(m.slots) }
func (m *Model) validSeat(seat int) bool { return seat >= 0 && seat < len(m.scores) }

func (m *Model) name(seat int) string {
	if seat >= 0 && seat < len(m.names) {
		return m.names[seat]
	}
	return fmt.Sprintf("player-%d", seat+1)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	board := m.renderBoard()
	sidebar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Padding(0, 1).
		Render(m.renderSidebar())
	top := lipgloss.JoinHorizontal(lipgloss.Top, board, sidebar)

	logWidth := max(lipgloss.Width(top)-2, 10)
	logHeight := 6
	if m.height > 0 {
		logHeight = max(m.height-lipgloss.Height(top)-3, 3)
	}
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, HeaderStyle.Render("SET")+"  "+m.renderTimer(), top, logPane, m.renderHelp())
}

func (m *Model) renderBoard() string {
	hinted := make(map[int]bool)
	for _, set := range m.hints {
		for _, slot := range set {
			hinted[slot] = true
		}
	}

	var rows []string
	for start := 0; start < len(m.slots); start += columns {
		var cells []string
		for slot := start; slot < min(start+columns, len(m.slots)); slot++ {
			style := SlotStyle
			if hinted[slot] {
				style = HintSlotStyle
			}
			cells = append(cells, style.Render(m.renderSlot(slot)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderSlot(slot int) string {
	face := InfoStyle.Render("·")
	if c := m.slots[slot]; c != card.None {
		face = renderCard(m.universe, c)
	}

	var marks []string
	for _, p := range m.tokens[slot] {
		marks = append(marks, playerStyle(p).Render(fmt.Sprintf("%d", p+1)))
	}

	var keys []string
	for seat, ks := range m.keys {
		if slot < len(ks) {
			keys = append(keys, playerStyle(seat).Faint(true).Render(ks[slot]))
		}
	}
	return face + "\n" + strings.Join(marks, " ") + "\n" + KeyStyle.Render(strings.Join(keys, " "))
}

func (m *Model) renderTimer() string {
	if !m.hasTime {
		return ""
	}
	d := m.timer.Remaining.Round(time.Second)
	if m.timer.Elapsed {
		return InfoStyle.Render(fmt.Sprintf("elapsed %s", d))
	}
	if m.timer.Warn {
		return ErrorStyle.Render(fmt.Sprintf("%.1fs", m.timer.Remaining.Seconds()))
	}
	return WarningStyle.Render(d.String())
}

func (m *Model) renderSidebar() string {
	var content strings.Builder
	content.WriteString(InfoStyle.Render("Players"))
	content.WriteString("\n")
	for seat := range m.scores {
		line := fmt.Sprintf("%s %-10s %3d", playerStyle(seat).Render(fmt.Sprintf("%d", seat+1)), m.name(seat), m.scores[seat])
		if f := m.freezes[seat]; f > 0 {
			line += " " + ErrorStyle.Render(fmt.Sprintf("frozen %s", f.Round(time.Second)))
		}
		if slices.Contains(m.winners, seat) {
			line += " " + SuccessStyle.Render("winner")
		}
		content.WriteString(PlayerInfoStyle.Render(line))
		content.WriteString("\n")
	}
	return content.String()
}

func (m *Model) renderHelp() string {
	if m.over {
		return InfoStyle.Render("Game over • any key to exit")
	}
	return InfoStyle.Render("Slot keys select cards • PgUp/PgDn scroll log • Esc/Ctrl+C to quit")
}

// AddLogEntry appends a line to the event log.
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(GameLogStyle.Render(strings.Join(m.gameLog, "\n")))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// IsTestMode returns whether the model is in test mode
func (m *Model) IsTestMode() bool {
	return m.testMode
}

// GetCapturedLog returns the captured log entries in test mode
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	return slices.Clone(m.capturedLog)
}

// Slots returns the cards shown on the board.
func (m *Model) Slots() []card.Card {
	return slices.Clone(m.slots)
}

// TokensAt returns the seats shown holding a token on slot.
func (m *Model) TokensAt(slot int) []int {
	if !m.validSlot(slot) {
		return nil
	}
	return slices.Clone(m.tokens[slot])
}

// Scores returns the scores shown on the board.
func (m *Model) Scores() []int {
	return slices.Clone(m.scores)
}

// Over reports whether the game has ended.
func (m *Model) Over() bool {
	return m.over
}
