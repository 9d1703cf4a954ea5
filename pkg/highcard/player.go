package highcard

import "fmt"

// Player is a single seat in a high card game. Seats are identified by
// roster position, not by name; names are display-only and may collide.
type Player struct {
	Name     string `json:"name"`
	CardHeld *int   `json:"cardHeld"`
	Score    int    `json:"score"`
}

// copy returns an independent copy of the player
func (p *Player) copy() *Player {
	if p == nil {
		return nil
	}

	c := &Player{
		Name:  p.Name,
		Score: p.Score,
	}

	if p.CardHeld != nil {
		card := *p.CardHeld
		c.CardHeld = &card
	}

	return c
}

// copyPlayers returns an independent copy of a roster
func copyPlayers(players []*Player) []*Player {
	c := make([]*Player, len(players))
	for i, p := range players {
		c[i] = p.copy()
	}

	return c
}

// defaultPlayers returns a fresh starting roster of n seats
func defaultPlayers(n int) []*Player {
	players := make([]*Player, n)
	for i := range players {
		players[i] = &Player{Name: fmt.Sprintf("Player %d", i+1)}
	}

	return players
}
