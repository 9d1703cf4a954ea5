// Command highcard-client is a terminal client for a high-card server. It
// creates a new game or joins an existing one, claims a seat, and drives the
// game from an interactive table view.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"highcard-server/internal/tui"
	"highcard-server/pkg/room"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

var cli struct {
	Server   string `short:"s" default:"http://localhost:5000" help:"Base URL of the server."`
	Game     string `short:"g" help:"UUID of the game to join. Creates a new game when empty."`
	JoinCode string `short:"j" help:"Join code of the game. Not needed when creating one."`
	Seat     int    `default:"0" help:"Seat to claim."`
	Name     string `short:"n" help:"Display name for your seat."`
	LogFile  string `default:"highcard-client.log" help:"Log file path."`
	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level."`
}

// createdGame is the part of the create-game response the client needs
type createdGame struct {
	UUID     string `json:"uuid"`
	JoinCode string `json:"joinCode"`
	Name     string `json:"name"`
}

// claimedSeat is the response from claiming a seat
type claimedSeat struct {
	Token string `json:"token"`
	Seat  int    `json:"seat"`
}

// serverMessage mirrors the envelope the server sends over the websocket
type serverMessage struct {
	Key     string          `json:"key"`
	Value   string          `json:"value"`
	Data    json.RawMessage `json:"data"`
	Context string          `json:"context"`
}

func main() {
	ctx := kong.Parse(&cli)

	logFile, err := os.OpenFile(cli.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Printf("could not open log file: %v\n", err)
		ctx.Exit(1)
	}
	defer func() { _ = logFile.Close() }()

	logger := log.New(logFile)
	switch cli.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("starting client", "server", cli.Server)

	gameUUID := cli.Game
	joinCode := cli.JoinCode
	if gameUUID == "" {
		var game createdGame
		if err := postJSON(cli.Server+"/game", struct{}{}, &game); err != nil {
			fmt.Printf("could not create game: %v\n", err)
			ctx.Exit(1)
		}

		gameUUID = game.UUID
		joinCode = game.JoinCode
		logger.Info("created game", "uuid", gameUUID, "name", game.Name, "joinCode", joinCode)
	}

	var seat claimedSeat
	err = postJSON(fmt.Sprintf("%s/game/%s/seat", cli.Server, gameUUID), map[string]interface{}{
		"seat":     cli.Seat,
		"name":     cli.Name,
		"joinCode": joinCode,
	}, &seat)
	if err != nil {
		fmt.Printf("could not claim seat %d: %v\n", cli.Seat, err)
		ctx.Exit(1)
	}

	logger.Info("claimed seat", "game", gameUUID, "seat", seat.Seat)

	conn, err := dial(cli.Server, gameUUID, seat.Token)
	if err != nil {
		fmt.Printf("could not connect: %v\n", err)
		ctx.Exit(1)
	}
	defer func() {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	// the model is the only writer: Update runs on a single goroutine
	send := func(action string, data map[string]interface{}) error {
		return conn.WriteJSON(room.PayloadIn{
			Action:         action,
			AdditionalData: data,
		})
	}

	model := tui.New(logger, seat.Seat, joinCode, send)
	program := tea.NewProgram(model, tea.WithAltScreen())

	go readLoop(conn, program, logger)

	final, err := program.Run()
	if err != nil {
		fmt.Printf("error running program: %v\n", err)
		ctx.Exit(1)
	}

	if m, ok := final.(*tui.Model); ok && m.Err() != nil {
		fmt.Printf("connection lost: %v\n", m.Err())
		ctx.Exit(1)
	}
}

// readLoop decodes server messages and feeds them to the program. It owns
// the read side of the connection; the model owns the write side.
func readLoop(conn *websocket.Conn, program *tea.Program, logger *log.Logger) {
	for {
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok && closeErr.Code == websocket.CloseNormalClosure {
				// the server says why it hung up, e.g. an idle game was closed
				var reason error
				if closeErr.Text != "" {
					reason = errors.New(closeErr.Text)
				}

				program.Send(tui.DisconnectedMsg{Err: reason})
				return
			}

			program.Send(tui.DisconnectedMsg{Err: err})
			return
		}

		logger.Debug("received message", "key", msg.Key, "context", msg.Context)

		switch msg.Key {
		case "game":
			var state room.GameState
			if err := json.Unmarshal(msg.Data, &state); err != nil {
				logger.Error("could not decode game state", "err", err)
				continue
			}

			program.Send(tui.GameMsg{State: &state})
		case "logs":
			var logs []*room.LogMessage
			if err := json.Unmarshal(msg.Data, &logs); err != nil {
				logger.Error("could not decode logs", "err", err)
				continue
			}

			program.Send(tui.LogsMsg{Logs: logs})
		case "clients":
			var seats []*room.SeatState
			if err := json.Unmarshal(msg.Data, &seats); err != nil {
				logger.Error("could not decode seats", "err", err)
				continue
			}

			program.Send(tui.SeatsMsg{Seats: seats})
		case "status":
			program.Send(tui.AckMsg{Context: msg.Context})
		case "error":
			program.Send(tui.ErrorMsg{Value: msg.Value})
		default:
			logger.Warn("unhandled message", "key", msg.Key)
		}
	}
}

// postJSON posts a JSON payload and decodes the JSON response, turning the
// server's error envelope into an error
func postJSON(url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body)) // nolint:gosec
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return errors.New(errResp.Message)
		}

		return fmt.Errorf("server returned %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// dial opens the game's websocket. The token rides in a query parameter,
// which the server accepts in place of an Authorization header.
func dial(server, gameUUID, token string) (*websocket.Conn, error) {
	u, err := url.Parse(server)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	u.Path = fmt.Sprintf("/game/%s/ws", gameUUID)
	u.RawQuery = url.Values{"access_token": {token}}.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	return conn, err
}
