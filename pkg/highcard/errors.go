package highcard

import "errors"

// ErrMissingPlayers is returned when a persisted state has no players array
var ErrMissingPlayers = errors.New("state does not contain a players array")

// ErrMissingCurrentRound is returned when a persisted state has no numeric currentRound
var ErrMissingCurrentRound = errors.New("state does not contain a numeric currentRound")

// ErrMalformedState is returned when a game cannot be constructed from a supplied state
var ErrMalformedState = errors.New("malformed game state")
