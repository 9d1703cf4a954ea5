package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"highcard-server/pkg/highcard"
	"highcard-server/pkg/model"

	"github.com/sirupsen/logrus"
)

type state int

const (
	stateClientEvent state = iota
	stateGameEvent
)

// ErrSeatTaken happens when a seat has already been claimed
var ErrSeatTaken = errors.New("seat is already claimed")

// ErrSessionClosed happens when the session's run loop has terminated
var ErrSessionClosed = errors.New("the game is closed")

// Session owns a single high card game. The game itself is not safe for
// concurrent use, so every read and write goes through the run loop.
type Session struct {
	uuid     string
	name     string
	joinCode string
	created  time.Time
	game     *highcard.Game
	logger   logrus.FieldLogger

	clients map[*Client]bool
	lock    sync.RWMutex

	// run-loop state
	logMessages  []*LogMessage
	claimedSeats map[int]bool

	execInRunLoop chan func()
	stateChanged  chan state
	close         chan bool
}

// GameState is the game as clients see it
type GameState struct {
	UUID             string              `json:"uuid"`
	Name             string              `json:"name"`
	Players          []*highcard.Player  `json:"players"`
	Scoreboard       []highcard.Standing `json:"scoreboard"`
	CurrentRound     int                 `json:"currentRound"`
	TotalRounds      int                 `json:"totalRounds"`
	SeatsClaimed     int                 `json:"seatsClaimed"`
	ConnectedClients int                 `json:"connectedClients"`
	CanAdvance       bool                `json:"canAdvance"`
	CanUndo          bool                `json:"canUndo"`
	Complete         bool                `json:"complete"`
}

// SeatState tells clients who holds each seat and whether they're online
type SeatState struct {
	Seat        int    `json:"seat"`
	Name        string `json:"name"`
	IsClaimed   bool   `json:"isClaimed"`
	IsConnected bool   `json:"isConnected"`
}

// newSession returns a new session
// Callers must call Start before using it.
func newSession(logger logrus.FieldLogger, uuid, name, joinCode string, game *highcard.Game) *Session {
	return &Session{
		uuid:          uuid,
		name:          name,
		joinCode:      joinCode,
		created:       time.Now(),
		game:          game,
		logger:        logger,
		clients:       make(map[*Client]bool),
		claimedSeats:  make(map[int]bool),
		execInRunLoop: make(chan func(), 256),
		stateChanged:  make(chan state, 256),
		close:         make(chan bool),
	}
}

// UUID returns the session identifier
func (s *Session) UUID() string {
	return s.uuid
}

// Name returns the display name of the session
func (s *Session) Name() string {
	return s.name
}

// JoinCode returns the code players must present to claim a seat
func (s *Session) JoinCode() string {
	return s.joinCode
}

// Created returns when the session was created
func (s *Session) Created() time.Time {
	return s.created
}

// Start starts the run loop
func (s *Session) Start() {
	go s.runLoop()
}

// Stop terminates the run loop. A stopped session must not be reused.
func (s *Session) Stop() {
	close(s.close)
}

func (s *Session) runLoop() {
	log := s.logger.WithFields(logrus.Fields{
		"uuid": s.uuid,
		"name": s.name,
	})

	log.Debug("starting session run loop")
	for {
		select {
		case st := <-s.stateChanged:
			switch st {
			case stateClientEvent:
				s.sendClientData()
			case stateGameEvent:
				s.sendGameData()
			}
		case fn := <-s.execInRunLoop:
			fn()
		case <-s.close:
			log.Debug("terminating session run loop")
			return
		}
	}
}

// Clients will return a slice of connected (at the time) clients
func (s *Session) Clients() []*Client {
	s.lock.RLock()
	defer s.lock.RUnlock()

	clients := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}

	return clients
}

// ClientCount returns the number of connected clients
func (s *Session) ClientCount() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.clients)
}

// AddClient adds a client to the session
// This method must return quickly
func (s *Session) AddClient(client *Client) {
	s.lock.Lock()
	client.session = s
	s.clients[client] = true
	s.lock.Unlock()

	s.stateChanged <- stateClientEvent
	s.execInRunLoop <- func() {
		client.Send <- &Response{Key: "game", Data: s.gameState()}
		if len(s.logMessages) > 0 {
			client.Send <- &Response{Key: "logs", Data: s.logMessages}
		}
	}
}

// RemoveClient removes a client from the session
// This method must return quickly
func (s *Session) RemoveClient(client *Client) (lastClient bool) {
	s.lock.Lock()
	delete(s.clients, client)
	nClients := len(s.clients)
	s.lock.Unlock()

	if nClients > 0 {
		s.stateChanged <- stateClientEvent
		return false
	}

	return true
}

// ClaimSeat marks the seat as claimed and applies an optional display
// name. It is safe to call from any goroutine.
func (s *Session) ClaimSeat(seat int, name string) error {
	reply := make(chan error, 1)
	fn := func() {
		if seat < 0 || seat >= len(s.game.Players()) {
			reply <- fmt.Errorf("seat %d does not exist", seat)
			return
		}

		if s.claimedSeats[seat] {
			reply <- ErrSeatTaken
			return
		}

		s.claimedSeats[seat] = true
		if name != "" {
			s.game.RenamePlayer(seat, name)
			s.addLogMessage(newLogMessage([]int{seat}, "%s claimed seat %d", s.game.Players()[seat].Name, seat+1))
		}

		s.stateChanged <- stateGameEvent
		s.stateChanged <- stateClientEvent
		reply <- nil
	}

	select {
	case s.execInRunLoop <- fn:
	case <-s.close:
		return ErrSessionClosed
	}

	select {
	case err := <-reply:
		return err
	case <-s.close:
		select {
		case err := <-reply:
			return err
		default:
			return ErrSessionClosed
		}
	}
}

// CurrentState returns the client view of the game. It is safe to call
// from any goroutine. ok is false if the session has been stopped.
func (s *Session) CurrentState() (data *GameState, ok bool) {
	reply := make(chan *GameState, 1)
	fn := func() {
		reply <- s.gameState()
	}

	select {
	case s.execInRunLoop <- fn:
	case <-s.close:
		return nil, false
	}

	select {
	case data := <-reply:
		return data, true
	case <-s.close:
		select {
		case data := <-reply:
			return data, true
		default:
			return nil, false
		}
	}
}

// ReceivedMessage is called when a client sends a message to the server
func (s *Session) ReceivedMessage(c *Client, msg *PayloadIn) {
	switch msg.Action {
	case "state":
		s.execInRunLoop <- func() {
			c.Send <- &Response{Key: "game", Data: s.gameState(), Context: msg.Context}
		}
	case "rename":
		s.execInRunLoop <- func() { s.handleRename(c, msg) }
	case "playRound":
		s.execInRunLoop <- func() { s.handlePlayRound(c, msg) }
	case "undo":
		s.execInRunLoop <- func() { s.handleUndo(c, msg) }
	case "runToCompletion":
		s.execInRunLoop <- func() { s.handleRunToCompletion(c, msg) }
	case "reset":
		s.execInRunLoop <- func() { s.handleReset(c, msg) }
	case "save":
		s.execInRunLoop <- func() { s.handleSave(c, msg) }
	default:
		s.logger.WithField("msg", msg).Warn("unknown message")
		c.Send <- newErrorResponse(msg.Context, fmt.Errorf("unknown action %q", msg.Action))
	}
}

// NOTE: must only be called from the run loop
func (s *Session) handleRename(c *Client, msg *PayloadIn) {
	index, ok := msg.AdditionalData.GetInt("index")
	if !ok {
		c.Send <- newErrorResponse(msg.Context, errors.New("could not obtain index"))
		return
	}

	name, ok := msg.AdditionalData.GetString("name")
	if !ok || name == "" {
		c.Send <- newErrorResponse(msg.Context, errors.New("name is required"))
		return
	}

	if index < 0 || index >= len(s.game.Players()) {
		c.Send <- newErrorResponse(msg.Context, fmt.Errorf("seat %d does not exist", index))
		return
	}

	prevName := s.game.Players()[index].Name
	s.game.RenamePlayer(index, name)

	c.Send <- OK(msg.Context)
	s.addLogMessage(newLogMessage([]int{index}, "%s is now known as %s", prevName, name))
	s.stateChanged <- stateGameEvent
	s.stateChanged <- stateClientEvent
}

// NOTE: must only be called from the run loop
func (s *Session) handlePlayRound(c *Client, msg *PayloadIn) {
	before := scores(s.game.Players())
	if !s.game.PlayRound() {
		c.Send <- newErrorResponse(msg.Context, errors.New("the game is over"))
		return
	}

	c.Send <- OK(msg.Context)
	s.addLogMessage(roundLogMessage(s.game, before))
	s.stateChanged <- stateGameEvent
}

// NOTE: must only be called from the run loop
func (s *Session) handleUndo(c *Client, msg *PayloadIn) {
	if !s.game.UndoLastRound() {
		c.Send <- newErrorResponse(msg.Context, errors.New("there is nothing to undo"))
		return
	}

	c.Send <- OK(msg.Context)
	s.addLogMessage(newLogMessage(nil, "round %d was undone", s.game.CurrentRound()+1))
	s.stateChanged <- stateGameEvent
}

// NOTE: must only be called from the run loop
func (s *Session) handleRunToCompletion(c *Client, msg *PayloadIn) {
	remaining := s.game.TotalRounds() - s.game.CurrentRound()
	if remaining <= 0 {
		c.Send <- newErrorResponse(msg.Context, errors.New("the game is over"))
		return
	}

	s.game.RunToCompletion()

	c.Send <- OK(msg.Context)
	if remaining == 1 {
		s.addLogMessage(newLogMessage(nil, "played the last round"))
	} else {
		s.addLogMessage(newLogMessage(nil, "played the last %d rounds", remaining))
	}

	s.stateChanged <- stateGameEvent
}

// NOTE: must only be called from the run loop
func (s *Session) handleReset(c *Client, msg *PayloadIn) {
	s.game.ResetToInitial()

	c.Send <- OK(msg.Context)
	s.addLogMessage(newLogMessage(nil, "the game was reset"))
	s.stateChanged <- stateGameEvent
	s.stateChanged <- stateClientEvent
}

// NOTE: must only be called from the run loop
func (s *Session) handleSave(c *Client, msg *PayloadIn) {
	name, ok := msg.AdditionalData.GetString("name")
	if !ok || name == "" {
		c.Send <- newErrorResponse(msg.Context, errors.New("name is required"))
		return
	}

	record, err := model.CreateSavedGame(context.Background(), name, s.game.Options(), s.game.ExportState())
	if err != nil {
		s.logger.WithError(err).Error("could not save game")
		c.Send <- newErrorResponse(msg.Context, err)
		return
	}

	c.Send <- OK(msg.Context)
	s.addLogMessage(newLogMessage(nil, "game saved as %q", record.Name))
}

// gameState builds the client view of the game
// Note: this must only be called from within the run loop
func (s *Session) gameState() *GameState {
	snapshot := s.game.ExportState()

	return &GameState{
		UUID:             s.uuid,
		Name:             s.name,
		Players:          snapshot.Players,
		Scoreboard:       s.game.Scoreboard(),
		CurrentRound:     snapshot.CurrentRound,
		TotalRounds:      snapshot.TotalRounds,
		SeatsClaimed:     len(s.claimedSeats),
		ConnectedClients: s.ClientCount(),
		CanAdvance:       !s.game.Complete(),
		CanUndo:          s.game.HistoryDepth() > 0,
		Complete:         s.game.Complete(),
	}
}

// NOTE: must only be called from the run loop
func (s *Session) sendGameData() {
	data := s.gameState()
	for _, client := range s.Clients() {
		client.Send <- &Response{Key: "game", Data: data}
	}
}

// NOTE: must only be called from the run loop
func (s *Session) sendClientData() {
	seats := s.seatStates()
	for _, client := range s.Clients() {
		client.Send <- &Response{Key: "clients", Data: seats}
	}
}

// NOTE: must only be called from the run loop
func (s *Session) sendLogs() {
	for _, client := range s.Clients() {
		client.Send <- &Response{Key: "logs", Data: s.logMessages}
	}
}

// NOTE: must only be called from the run loop
func (s *Session) seatStates() []*SeatState {
	connected := make(map[int]bool)
	for _, client := range s.Clients() {
		connected[client.seat] = true
	}

	players := s.game.Players()
	seats := make([]*SeatState, len(players))
	for i, p := range players {
		seats[i] = &SeatState{
			Seat:        i,
			Name:        p.Name,
			IsClaimed:   s.claimedSeats[i],
			IsConnected: connected[i],
		}
	}

	return seats
}

func scores(players []*highcard.Player) []int {
	values := make([]int, len(players))
	for i, p := range players {
		values[i] = p.Score
	}

	return values
}

// roundLogMessage describes who took the round just played
func roundLogMessage(game *highcard.Game, before []int) *LogMessage {
	seats := make([]int, 0, 1)
	names := make([]string, 0, 1)
	for i, p := range game.Players() {
		if p.Score > before[i] {
			seats = append(seats, i)
			names = append(names, p.Name)
		}
	}

	round := game.CurrentRound()
	if len(seats) == 1 {
		return newLogMessage(seats, "round %d: %s takes the round", round, names[0])
	}

	return newLogMessage(seats, "round %d: %s split the round", round, strings.Join(names, ", "))
}
