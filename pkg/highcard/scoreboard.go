package highcard

import "sort"

// Standing is a single row of the ranked scoreboard.
type Standing struct {
	Place int    `json:"place"`
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Scoreboard returns the roster ranked by score, highest first. Seats with
// equal scores share a place and keep their roster order; the place after a
// tie is skipped (1, 1, 3, ...). The board is computed on demand and never
// cached.
func (g *Game) Scoreboard() []Standing {
	standings := make([]Standing, len(g.players))
	for i, p := range g.players {
		standings[i] = Standing{
			Seat:  i,
			Name:  p.Name,
			Score: p.Score,
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})

	for i := range standings {
		if i > 0 && standings[i].Score == standings[i-1].Score {
			standings[i].Place = standings[i-1].Place
			continue
		}

		standings[i].Place = i + 1
	}

	return standings
}
