// Package tui renders an interactive table view for a high-card game and
// turns key presses into game actions.
package tui

import (
	"fmt"
	"strings"

	"highcard-server/pkg/room"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// SendFunc delivers an action to the server.
type SendFunc func(action string, data map[string]interface{}) error

// Messages pumped into the program by the connection's read loop.
type (
	// GameMsg carries a fresh view of the game
	GameMsg struct {
		State *room.GameState
	}

	// LogsMsg carries the table log. The server always sends the whole
	// log, trimmed to its most recent entries.
	LogsMsg struct {
		Logs []*room.LogMessage
	}

	// SeatsMsg reports who holds each seat
	SeatsMsg struct {
		Seats []*room.SeatState
	}

	// AckMsg reports the server accepted an action
	AckMsg struct {
		Context string
	}

	// ErrorMsg reports the server rejected an action
	ErrorMsg struct {
		Value string
	}

	// DisconnectedMsg reports the connection dropped
	DisconnectedMsg struct {
		Err error
	}
)

type inputMode int

const (
	modeNone inputMode = iota
	modeRename
	modeSave
)

const sidebarWidth = 36

// Model drives the table view. Create one with New.
type Model struct {
	logger   *log.Logger
	send     SendFunc
	seat     int
	joinCode string

	logView viewport.Model
	input   textinput.Model
	mode    inputMode

	game  *room.GameState
	seats []*room.SeatState
	logs  []*room.LogMessage

	status   string
	err      error
	quitting bool

	width  int
	height int
	ready  bool
}

// New returns a model for the player in the given seat. The join code may be
// empty when the player didn't create the game.
func New(logger *log.Logger, seat int, joinCode string, send SendFunc) *Model {
	input := textinput.New()
	input.CharLimit = 40
	input.Prompt = "> "
	input.PromptStyle = promptStyle

	return &Model{
		logger:   logger.WithPrefix("tui"),
		send:     send,
		seat:     seat,
		joinCode: joinCode,
		logView:  viewport.New(0, 0),
		input:    input,
	}
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case GameMsg:
		m.game = msg.State
		return m, nil
	case LogsMsg:
		m.logs = msg.Logs
		m.logView.SetContent(m.renderLog())
		m.logView.GotoBottom()
		return m, nil
	case SeatsMsg:
		m.seats = msg.Seats
		return m, nil
	case AckMsg:
		// a state broadcast follows on its own
		return m, nil
	case ErrorMsg:
		m.status = msg.Value
		return m, nil
	case DisconnectedMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if m.mode != modeNone {
			return m.updateInput(msg)
		}

		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

// updateKeys handles key presses outside of text entry.
func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "p", "enter":
		if m.game != nil && !m.game.CanAdvance {
			m.status = "the game is over"
			return m, nil
		}

		m.submit("playRound", nil)
		return m, nil
	case "u":
		if m.game != nil && !m.game.CanUndo {
			m.status = "there is nothing to undo"
			return m, nil
		}

		m.submit("undo", nil)
		return m, nil
	case "f":
		if m.game != nil && !m.game.CanAdvance {
			m.status = "the game is over"
			return m, nil
		}

		m.submit("runToCompletion", nil)
		return m, nil
	case "x":
		m.submit("reset", nil)
		return m, nil
	case "r":
		m.mode = modeRename
		m.input.Placeholder = "new name for your seat"
		m.input.Focus()
		return m, textinput.Blink
	case "s":
		m.mode = modeSave
		m.input.Placeholder = "name to save the game under"
		m.input.Focus()
		return m, textinput.Blink
	}

	// the log pane handles scrolling keys
	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

// updateInput handles key presses while the text prompt is open.
func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.closeInput()

		if value == "" {
			return m, nil
		}

		switch mode {
		case modeRename:
			m.submit("rename", map[string]interface{}{
				"index": m.seat,
				"name":  value,
			})
		case modeSave:
			m.submit("save", map[string]interface{}{
				"name": value,
			})
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = modeNone
	m.input.Blur()
	m.input.SetValue("")
}

// submit forwards an action to the server and surfaces transport failures.
func (m *Model) submit(action string, data map[string]interface{}) {
	if err := m.send(action, data); err != nil {
		m.logger.Error("could not send action", "action", action, "err", err)
		m.status = "could not reach the server"
		return
	}

	m.status = ""
}

func (m *Model) layout() {
	logWidth := m.width - sidebarWidth - 6
	if logWidth < 20 {
		logWidth = 20
	}

	logHeight := m.height - 7
	if logHeight < 3 {
		logHeight = 3
	}

	m.logView.Width = logWidth
	m.logView.Height = logHeight
	m.logView.SetContent(m.renderLog())
	m.logView.GotoBottom()
	m.ready = true
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready || m.game == nil {
		return "connecting..."
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		logPaneStyle.Render(m.logView.View()),
		sidebarStyle.Width(sidebarWidth).Render(m.renderSidebar()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m *Model) renderHeader() string {
	title := fmt.Sprintf("%s: round %d of %d", m.game.Name, m.game.CurrentRound, m.game.TotalRounds)
	if m.game.Complete {
		title = fmt.Sprintf("%s: final", m.game.Name)
	}

	return headerStyle.Render(title)
}

func (m *Model) renderSidebar() string {
	var b strings.Builder

	if m.joinCode != "" {
		b.WriteString(infoStyle.Render(fmt.Sprintf("join code: %s", m.joinCode)))
		b.WriteString("\n\n")
	}

	for i, player := range m.game.Players {
		marker := " "
		if i == m.seat {
			marker = ">"
		}

		card := "--"
		if player.CardHeld != nil {
			card = fmt.Sprintf("%2d", *player.CardHeld)
		}

		line := fmt.Sprintf("%s %-14s %s %4d", marker, truncate(player.Name, 14), card, player.Score)
		if m.isConnected(i) {
			b.WriteString(line)
		} else {
			b.WriteString(mutedStyle.Render(line))
		}

		b.WriteString("\n")
	}

	if m.game.Complete && len(m.game.Scoreboard) > 0 {
		b.WriteString("\n")
		b.WriteString(winnerStyle.Render("final standings"))
		b.WriteString("\n")

		for _, standing := range m.game.Scoreboard {
			b.WriteString(fmt.Sprintf("%d. %s (%d)\n", standing.Place, truncate(standing.Name, 20), standing.Score))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderFooter() string {
	if m.mode != modeNone {
		return m.input.View() + "\n" + helpStyle.Render("enter to submit, esc to cancel")
	}

	var b strings.Builder
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("p: play round  u: undo  f: finish  x: reset  r: rename  s: save  q: quit"))
	return b.String()
}

func (m *Model) renderLog() string {
	lines := make([]string, len(m.logs))
	for i, entry := range m.logs {
		line := fmt.Sprintf("%s %s", entry.Time.Format("15:04:05"), entry.Message)
		if m.involvesMe(entry) {
			line = highlightStyle.Render(line)
		}

		lines[i] = line
	}

	return strings.Join(lines, "\n")
}

// isConnected reports whether the player in the seat has a live connection.
func (m *Model) isConnected(seat int) bool {
	for _, s := range m.seats {
		if s.Seat == seat {
			return s.IsConnected
		}
	}

	return false
}

// involvesMe reports whether the log entry mentions my seat.
func (m *Model) involvesMe(entry *room.LogMessage) bool {
	for _, seat := range entry.Seats {
		if seat == m.seat {
			return true
		}
	}

	return false
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max-1]) + "…"
}
