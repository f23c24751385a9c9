package queries

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/akrezic/guesswho/internal/modules/core"
	"github.com/akrezic/guesswho/internal/modules/room/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
)

type ListRoomsQuery struct{}

// RoomSummary is the lobby listing shape. Pick and guess state stays out of
// the listing so browsing rooms reveals nothing about games in progress.
type RoomSummary struct {
	Code          string    `json:"code"`
	PlayerCount   int       `json:"playerCount"`
	IsGameStarted bool      `json:"isGameStarted"`
	CreatedAt     time.Time `json:"createdAt"`
}

func HandleListRooms(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[ListRoomsQuery, []RoomSummary](r.Context(), ListRoomsQuery{})
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type ListRoomsQueryHandler struct {
	db *sql.DB
}

func NewListRoomsQueryHandler(db *sql.DB) *ListRoomsQueryHandler {
	return &ListRoomsQueryHandler{db}
}

func (h *ListRoomsQueryHandler) Handle(
	ctx context.Context,
	request ListRoomsQuery,
) ([]RoomSummary, error) {
	const query = `
		SELECT
			id, created_at, players, is_game_started,
			player_picks, player_picks_state, player_guesses, winner
		FROM
			rooms
		ORDER BY
			created_at DESC;`
	rooms, err := tql.Query[domain.Room](ctx, h.db, query)
	if err != nil {
		return nil, err
	}

	summaries := core.Map(rooms, func(r domain.Room) RoomSummary {
		return RoomSummary{
			Code:          r.ID,
			PlayerCount:   len(r.Players),
			IsGameStarted: r.IsGameStarted,
			CreatedAt:     r.CreatedAt,
		}
	})

	return summaries, nil
}
