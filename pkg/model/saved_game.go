package model

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"highcard-server/pkg/db"
	"highcard-server/pkg/highcard"

	"github.com/lib/pq"
)

const savedGameColumns = `
saved_games.id,
saved_games.name,
saved_games.options,
saved_games.state,
saved_games.created,
saved_games.updated`

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// ErrDuplicateName happens if a game was already saved under the requested name
var ErrDuplicateName = UserError("a game with that name has already been saved")

// SavedGame is a record in the `saved_games` table
// The state column holds a point-in-time export of a game that can be
// loaded back into a new game later.
type SavedGame struct {
	ID      int64            `json:"id"`
	Name    string           `json:"name"`
	Options highcard.Options `json:"options"`
	State   *highcard.State  `json:"state"`
	Created time.Time        `json:"created"`
	Updated time.Time        `json:"updated"`
}

func getSavedGameByRow(row db.Scanner) (*SavedGame, error) {
	var record SavedGame
	var options, state []byte
	if err := row.Scan(&record.ID, &record.Name, &options, &state, &record.Created, &record.Updated); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(options, &record.Options); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(state, &record.State); err != nil {
		return nil, err
	}

	return &record, nil
}

// CreateSavedGame persists a point-in-time copy of a game under a unique name
func CreateSavedGame(ctx context.Context, name string, options highcard.Options, state *highcard.State) (*SavedGame, error) {
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}

	const query = `
INSERT INTO saved_games (name, options, state)
VALUES ($1, $2, $3)
RETURNING ` + savedGameColumns

	row := db.Instance().QueryRowContext(ctx, query, name, optionsJSON, stateJSON)
	record, err := getSavedGameByRow(row)
	if err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == pqDuplicateKeyErrorCode {
			return nil, ErrDuplicateName
		}

		return nil, err
	}

	return record, nil
}

// SavedGameByID returns a saved game based on the ID
func SavedGameByID(ctx context.Context, id int64) (*SavedGame, error) {
	const query = `
SELECT ` + savedGameColumns + `
FROM saved_games
WHERE id = $1`

	row := db.Instance().QueryRowContext(ctx, query, id)
	return getSavedGameByRow(row)
}

// SavedGames returns a list of saved games, most recently created first
func SavedGames(ctx context.Context, offset int64, limit int) ([]*SavedGame, error) {
	const query = `
SELECT ` + savedGameColumns + `
FROM saved_games
ORDER BY id DESC
OFFSET $1
LIMIT $2`

	return getSavedGames(db.Instance().QueryContext(ctx, query, offset, limit))
}

func getSavedGames(rows *sql.Rows, err error) ([]*SavedGame, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*SavedGame, 0)
	for rows.Next() {
		record, err := getSavedGameByRow(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

// Delete removes the saved game
func (s *SavedGame) Delete(ctx context.Context) error {
	const query = `
DELETE FROM saved_games
WHERE id = $1`

	_, err := db.Instance().ExecContext(ctx, query, s.ID)
	return err
}
