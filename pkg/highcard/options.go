package highcard

// Options are options for creating a new high card game
type Options struct {
	DeckSize       int `json:"deckSize"`       // Default: 40
	NumPlayers     int `json:"numPlayers"`     // Default: 4
	MaxCardValue   int `json:"maxCardValue"`   // Default: 12, draws are uniform over [1, MaxCardValue]
	PointsPerScore int `json:"pointsPerScore"` // Default: 1, points each round winner receives
}

// DefaultOptions returns the default options for a high card game
func DefaultOptions() Options {
	return Options{
		DeckSize:       40,
		NumPlayers:     4,
		MaxCardValue:   12,
		PointsPerScore: 1,
	}
}

// TotalRounds returns how many rounds the options allow. Each round deals
// one card per seat, so the deck size caps the round count.
func (o Options) TotalRounds() int {
	return o.DeckSize / o.NumPlayers
}
