package commands

import (
	"context"
	"database/sql"
	"errors"

	"github.com/akrezic/guesswho/internal/modules/core"
	"github.com/akrezic/guesswho/internal/modules/room/domain"

	"github.com/eskrenkovic/tql"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// roomForUpdate loads a room row with a row lock so the read-merge-write of
// each command is atomic against the other player's concurrent commands.
func roomForUpdate(ctx context.Context, tx *sql.Tx, code string) (domain.Room, bool, error) {
	const query = `
		SELECT
			id, created_at, players, is_game_started,
			player_picks, player_picks_state, player_guesses, winner
		FROM
			rooms
		WHERE
			id = $1
		FOR UPDATE;`

	room, err := tql.QueryFirst[domain.Room](ctx, tx, query, code)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.Room{}, false, nil
	case err != nil:
		return domain.Room{}, false, err
	}

	return room, true, nil
}

// persistRoom writes back every mutable room field in one statement.
func persistRoom(ctx context.Context, tx *sql.Tx, room domain.Room) error {
	const stmt = `
		UPDATE
			rooms
		SET
			players = $2,
			is_game_started = $3,
			player_picks = $4,
			player_picks_state = $5,
			player_guesses = $6,
			winner = $7
		WHERE
			id = $1;`

	_, err := tql.Exec(
		ctx,
		tx,
		stmt,
		room.ID,
		room.Players,
		room.IsGameStarted,
		room.PlayerPicks,
		room.PlayerPicksState,
		room.PlayerGuesses,
		room.Winner,
	)
	return err
}

func isPqError(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

func pqConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	return ""
}

// asCommandError passes through structured rejections and converts transport
// failures into the generic 500 shape so callers have one handling path.
func asCommandError(err error) error {
	if _, ok := err.(core.CommandError); ok {
		return err
	}

	return core.NewCommandError(500, err)
}
