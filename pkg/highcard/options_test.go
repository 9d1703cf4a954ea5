package highcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	a := assert.New(t)

	opts := DefaultOptions()
	a.Equal(40, opts.DeckSize)
	a.Equal(4, opts.NumPlayers)
	a.Equal(12, opts.MaxCardValue)
	a.Equal(1, opts.PointsPerScore)
	a.Equal(10, opts.TotalRounds())
}

func TestOptions_TotalRounds(t *testing.T) {
	a := assert.New(t)

	// integer division; leftover cards are never dealt
	a.Equal(10, Options{DeckSize: 40, NumPlayers: 4}.TotalRounds())
	a.Equal(13, Options{DeckSize: 52, NumPlayers: 4}.TotalRounds())
	a.Equal(8, Options{DeckSize: 26, NumPlayers: 3}.TotalRounds())
	a.Equal(1, Options{DeckSize: 5, NumPlayers: 4}.TotalRounds())
}
