package highcard

import "encoding/json"

// State is a full snapshot of a game at a point in time. It is the unit
// of the undo history and the only shape the game persists or exchanges.
type State struct {
	Players      []*Player `json:"players"`
	CurrentRound int       `json:"currentRound"`
	TotalRounds  int       `json:"totalRounds"`
}

// UnmarshalJSON decodes a persisted state, enforcing the snapshot
// contract: a players array and a numeric currentRound must both be
// present. A JSON null, an empty object, or a currentRound of the wrong
// type are all rejected here rather than surfacing later as a zero value.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw struct {
		Players      []*Player `json:"players"`
		CurrentRound *int      `json:"currentRound"`
		TotalRounds  int       `json:"totalRounds"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Players == nil {
		return ErrMissingPlayers
	}

	if raw.CurrentRound == nil {
		return ErrMissingCurrentRound
	}

	s.Players = raw.Players
	s.CurrentRound = *raw.CurrentRound
	s.TotalRounds = raw.TotalRounds
	return nil
}
