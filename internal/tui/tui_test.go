package tui

import (
	"errors"
	"io"
	"testing"
	"time"

	"highcard-server/pkg/highcard"
	"highcard-server/pkg/room"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

type sentAction struct {
	action string
	data   map[string]interface{}
}

type sendRecorder struct {
	sent []sentAction
	err  error
}

func (r *sendRecorder) send(action string, data map[string]interface{}) error {
	if r.err != nil {
		return r.err
	}

	r.sent = append(r.sent, sentAction{action: action, data: data})
	return nil
}

func testModel(recorder *sendRecorder) *Model {
	m := New(log.New(io.Discard), 1, "ABC234", recorder.send)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// testGameState returns a three-round, two-player game after the given
// number of rounds
func testGameState(currentRound int) *room.GameState {
	card := 7
	state := &room.GameState{
		UUID: "a650cbc8-93d8-4382-aba9-5577a4659b9c",
		Name: "friday night",
		Players: []*highcard.Player{
			{Name: "Alice", CardHeld: &card, Score: 1},
			{Name: "Bob", Score: 0},
		},
		CurrentRound: currentRound,
		TotalRounds:  3,
		CanAdvance:   currentRound < 3,
		CanUndo:      currentRound > 0,
		Complete:     currentRound == 3,
	}

	if state.Complete {
		state.Scoreboard = []highcard.Standing{
			{Place: 1, Seat: 0, Name: "Alice", Score: 1},
			{Place: 2, Seat: 1, Name: "Bob", Score: 0},
		}
	}

	return state
}

func press(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}

	_, cmd := m.Update(msg)
	return cmd
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestModel_actions(t *testing.T) {
	recorder := &sendRecorder{}
	m := testModel(recorder)
	m.Update(GameMsg{State: testGameState(1)})

	press(m, "p")
	press(m, "u")
	press(m, "f")
	press(m, "x")

	assert.Equal(t, []sentAction{
		{action: "playRound"},
		{action: "undo"},
		{action: "runToCompletion"},
		{action: "reset"},
	}, recorder.sent)
}

func TestModel_guards(t *testing.T) {
	recorder := &sendRecorder{}
	m := testModel(recorder)

	m.Update(GameMsg{State: testGameState(3)})
	press(m, "p")
	assert.Equal(t, "the game is over", m.status)

	press(m, "f")
	assert.Empty(t, recorder.sent)

	m.Update(GameMsg{State: testGameState(0)})
	press(m, "u")
	assert.Equal(t, "there is nothing to undo", m.status)
	assert.Empty(t, recorder.sent)
}

func TestModel_rename(t *testing.T) {
	recorder := &sendRecorder{}
	m := testModel(recorder)
	m.Update(GameMsg{State: testGameState(1)})

	press(m, "r")
	assert.Equal(t, modeRename, m.mode)

	// while the prompt is open, action keys are just text
	typeText(m, "Fred p")
	assert.Empty(t, recorder.sent)

	press(m, "enter")
	assert.Equal(t, modeNone, m.mode)
	assert.Equal(t, []sentAction{{
		action: "rename",
		data:   map[string]interface{}{"index": 1, "name": "Fred p"},
	}}, recorder.sent)
}

func TestModel_renameCancelled(t *testing.T) {
	recorder := &sendRecorder{}
	m := testModel(recorder)
	m.Update(GameMsg{State: testGameState(1)})

	press(m, "r")
	typeText(m, "Fred")
	press(m, "esc")

	assert.Equal(t, modeNone, m.mode)
	assert.Empty(t, recorder.sent)

	// the prompt starts empty the next time around
	press(m, "r")
	assert.Equal(t, "", m.input.Value())
}

func TestModel_save(t *testing.T) {
	recorder := &sendRecorder{}
	m := testModel(recorder)
	m.Update(GameMsg{State: testGameState(2)})

	press(m, "s")
	assert.Equal(t, modeSave, m.mode)

	typeText(m, "before the finale")
	press(m, "enter")

	assert.Equal(t, []sentAction{{
		action: "save",
		data:   map[string]interface{}{"name": "before the finale"},
	}}, recorder.sent)
}

func TestModel_emptyInput(t *testing.T) {
	recorder := &sendRecorder{}
	m := testModel(recorder)
	m.Update(GameMsg{State: testGameState(1)})

	press(m, "s")
	typeText(m, "   ")
	press(m, "enter")

	assert.Equal(t, modeNone, m.mode)
	assert.Empty(t, recorder.sent)
}

func TestModel_sendFailure(t *testing.T) {
	recorder := &sendRecorder{err: errors.New("broken pipe")}
	m := testModel(recorder)
	m.Update(GameMsg{State: testGameState(1)})

	press(m, "p")
	assert.Equal(t, "could not reach the server", m.status)
}

func TestModel_serverError(t *testing.T) {
	recorder := &sendRecorder{}
	m := testModel(recorder)
	m.Update(GameMsg{State: testGameState(1)})

	m.Update(ErrorMsg{Value: `unknown action "deal"`})
	assert.Equal(t, `unknown action "deal"`, m.status)
	assert.Contains(t, m.View(), `unknown action "deal"`)

	// the next successful action clears it
	press(m, "p")
	assert.Equal(t, "", m.status)
}

func TestModel_view(t *testing.T) {
	recorder := &sendRecorder{}
	m := testModel(recorder)

	assert.Contains(t, m.View(), "connecting")

	m.Update(GameMsg{State: testGameState(1)})
	m.Update(LogsMsg{Logs: []*room.LogMessage{
		{Message: "Alice claimed seat 1", Seats: []int{1}, Time: time.Now()},
	}})

	view := m.View()
	assert.Contains(t, view, "friday night: round 1 of 3")
	assert.Contains(t, view, "join code: ABC234")
	assert.Contains(t, view, "Alice")
	assert.Contains(t, view, "Bob")
	assert.Contains(t, view, "Alice claimed seat 1")
	assert.NotContains(t, view, "final standings")

	m.Update(GameMsg{State: testGameState(3)})
	view = m.View()
	assert.Contains(t, view, "friday night: final")
	assert.Contains(t, view, "final standings")
	assert.Contains(t, view, "1. Alice (1)")
}

func TestModel_disconnect(t *testing.T) {
	recorder := &sendRecorder{}
	m := testModel(recorder)
	m.Update(GameMsg{State: testGameState(1)})

	_, cmd := m.Update(DisconnectedMsg{Err: errors.New("connection reset")})
	assert.NotNil(t, cmd)
	assert.Equal(t, "connection reset", m.Err().Error())
	assert.Equal(t, "", m.View())
}

func TestModel_quitKey(t *testing.T) {
	recorder := &sendRecorder{}
	m := testModel(recorder)
	m.Update(GameMsg{State: testGameState(1)})

	cmd := press(m, "q")
	assert.NotNil(t, cmd)
	assert.NoError(t, m.Err())
}
