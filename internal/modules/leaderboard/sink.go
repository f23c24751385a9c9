package leaderboard

import (
	"context"
	"database/sql"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
)

// Sink records completed match results. The room commands call it exactly
// once per terminal room (win or forfeit), after the winner is already
// durably set - a sink failure is logged by the caller and never rolls back
// or blocks the game result.
type Sink interface {
	RecordMatchResult(ctx context.Context, winnerID, loserID uuid.UUID, roomID string) error
}

type PostgresSink struct {
	db *sql.DB
}

var _ Sink = (*PostgresSink)(nil)

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db}
}

// RecordMatchResult bumps games-played for both users and wins for the
// winner through the update_leaderboard function, so both counters move in
// one atomic statement.
func (s *PostgresSink) RecordMatchResult(
	ctx context.Context,
	winnerID uuid.UUID,
	loserID uuid.UUID,
	roomID string,
) error {
	const stmt = `SELECT update_leaderboard($1, $2);`
	_, err := tql.Exec(ctx, s.db, stmt, winnerID, loserID)
	return err
}
