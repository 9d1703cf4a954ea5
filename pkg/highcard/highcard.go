package highcard

import (
	"errors"
	"fmt"

	"highcard-server/internal/rng"

	"github.com/sirupsen/logrus"
)

// Game is a fixed-length high card drawing game. Every round each seat
// draws one card and the highest card or cards score. Mutation happens
// only through the methods below; a single Game is not safe for
// concurrent callers.
type Game struct {
	options      Options
	players      []*Player
	currentRound int
	history      []*State

	rand   rng.Generator
	logger logrus.FieldLogger
}

// New returns a fresh game: default roster, round zero, empty history.
// A nil generator falls back to the crypto-backed source.
func New(logger logrus.FieldLogger, opts Options, gen rng.Generator) (*Game, error) {
	if opts.NumPlayers < 1 {
		return nil, errors.New("need at least one player")
	}

	if opts.MaxCardValue < 1 {
		return nil, errors.New("max card value must be at least 1")
	}

	if opts.PointsPerScore < 1 {
		return nil, errors.New("points per score must be at least 1")
	}

	if opts.DeckSize < opts.NumPlayers {
		return nil, fmt.Errorf("deck of %d cannot deal a round to %d players", opts.DeckSize, opts.NumPlayers)
	}

	if gen == nil {
		gen = rng.Crypto{}
	}

	return &Game{
		options: opts,
		players: defaultPlayers(opts.NumPlayers),
		rand:    gen,
		logger:  logger,
	}, nil
}

// NewFromState returns a game primed with a previously exported state
// instead of the default roster. History starts empty.
func NewFromState(logger logrus.FieldLogger, opts Options, gen rng.Generator, state *State) (*Game, error) {
	g, err := New(logger, opts, gen)
	if err != nil {
		return nil, err
	}

	if !g.ImportState(state) {
		return nil, ErrMalformedState
	}

	return g, nil
}

// Name returns "high-card"
func (g *Game) Name() string {
	return "high-card"
}

// RenamePlayer gives the seat at index a new display name. An index that
// addresses no seat, or an empty name, is silently ignored.
func (g *Game) RenamePlayer(index int, name string) {
	if index < 0 || index >= len(g.players) || name == "" {
		return
	}

	g.players[index].Name = name
}

// PlayRound plays the next round: the pre-round state is pushed onto the
// history stack, every seat draws a fresh card, and each holder of the
// highest card scores. Returns false, with no mutation, once the game is
// complete.
func (g *Game) PlayRound() bool {
	if g.currentRound >= g.TotalRounds() {
		return false
	}

	g.history = append(g.history, g.snapshot())

	maxCard := 0
	for _, p := range g.players {
		card := g.rand.Intn(g.options.MaxCardValue) + 1
		p.CardHeld = &card

		if card > maxCard {
			maxCard = card
		}
	}

	winners := 0
	for _, p := range g.players {
		if *p.CardHeld == maxCard {
			p.Score += g.options.PointsPerScore
			winners++
		}
	}

	g.currentRound++
	g.logger.WithFields(logrus.Fields{
		"round":    g.currentRound,
		"highCard": maxCard,
		"winners":  winners,
	}).Debug("round played")

	return true
}

// UndoLastRound rewinds the game to the snapshot taken before the most
// recent round, card values included. Returns false, with no mutation,
// when there is nothing left to undo.
func (g *Game) UndoLastRound() bool {
	if len(g.history) == 0 {
		return false
	}

	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	g.players = last.Players
	g.currentRound = last.CurrentRound
	return true
}

// RunToCompletion plays every remaining round and returns the final
// roster. Each round pushes its own history entry, so a completed run can
// still be rewound one round at a time.
func (g *Game) RunToCompletion() []*Player {
	for g.PlayRound() {
	}

	return g.players
}

// ExportState returns a deep, independent snapshot of the game. Mutating
// the returned value never affects the game.
func (g *Game) ExportState() *State {
	return g.snapshot()
}

// ImportState replaces the roster and round counter with deep copies of
// the supplied state and clears the history stack. The state must carry a
// players array; beyond that the fields are adopted verbatim, so further
// validation (roster length, round bounds) is the caller's concern.
// Returns false, with no mutation, when the state fails validation.
func (g *Game) ImportState(state *State) bool {
	if state == nil || state.Players == nil {
		return false
	}

	g.players = copyPlayers(state.Players)
	g.currentRound = state.CurrentRound
	g.history = nil

	g.logger.WithFields(logrus.Fields{
		"players": len(g.players),
		"round":   g.currentRound,
	}).Debug("state imported")

	return true
}

// ResetToInitial restores the untouched starting point: default names, no
// cards, zero scores, round zero, empty history.
func (g *Game) ResetToInitial() {
	g.players = defaultPlayers(g.options.NumPlayers)
	g.currentRound = 0
	g.history = nil
}

// Players returns the roster in seat order. The slice is shared with the
// game; callers must treat it as read-only.
func (g *Game) Players() []*Player {
	return g.players
}

// CurrentRound returns the number of rounds played so far
func (g *Game) CurrentRound() int {
	return g.currentRound
}

// TotalRounds returns the fixed number of rounds in the game
func (g *Game) TotalRounds() int {
	return g.options.TotalRounds()
}

// Options returns the options the game was built with
func (g *Game) Options() Options {
	return g.options
}

// HistoryDepth returns how many rounds can currently be undone
func (g *Game) HistoryDepth() int {
	return len(g.history)
}

// Complete reports whether every round has been played
func (g *Game) Complete() bool {
	return g.currentRound >= g.TotalRounds()
}

// snapshot captures the full game state as an independent copy
func (g *Game) snapshot() *State {
	return &State{
		Players:      copyPlayers(g.players),
		CurrentRound: g.currentRound,
		TotalRounds:  g.TotalRounds(),
	}
}
