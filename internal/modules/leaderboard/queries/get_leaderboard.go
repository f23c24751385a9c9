package queries

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/akrezic/guesswho/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
)

type Entry struct {
	UserID      uuid.UUID `db:"user_id" json:"userId"`
	GamesPlayed int       `db:"games_played" json:"gamesPlayed"`
	Wins        int       `db:"wins" json:"wins"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type GetLeaderboardQuery struct{}

func HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetLeaderboardQuery, []Entry](r.Context(), GetLeaderboardQuery{})
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetLeaderboardQueryHandler struct {
	db *sql.DB
}

func NewGetLeaderboardQueryHandler(db *sql.DB) *GetLeaderboardQueryHandler {
	return &GetLeaderboardQueryHandler{db}
}

func (h *GetLeaderboardQueryHandler) Handle(
	ctx context.Context,
	request GetLeaderboardQuery,
) ([]Entry, error) {
	const query = `
		SELECT
			user_id, games_played, wins, updated_at
		FROM
			leaderboard
		ORDER BY
			wins DESC, games_played ASC;`
	return tql.Query[Entry](ctx, h.db, query)
}
