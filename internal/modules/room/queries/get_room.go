package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/akrezic/guesswho/internal/modules/core"
	"github.com/akrezic/guesswho/internal/modules/room/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
)

type GetRoomQuery struct {
	Code string
}

func (q GetRoomQuery) Validate() error {
	if q.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", q.Code)
	}

	return nil
}

func HandleGetRoom(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetRoomQuery, domain.Room](
		r.Context(),
		GetRoomQuery{Code: chi.URLParam(r, "code")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetRoomQueryHandler struct {
	db *sql.DB
}

func NewGetRoomQueryHandler(db *sql.DB) *GetRoomQueryHandler {
	return &GetRoomQueryHandler{db}
}

func (h *GetRoomQueryHandler) Handle(
	ctx context.Context,
	request GetRoomQuery,
) (domain.Room, error) {
	const query = `
		SELECT
			id, created_at, players, is_game_started,
			player_picks, player_picks_state, player_guesses, winner
		FROM
			rooms
		WHERE
			id = $1;`
	room, err := tql.QueryFirst[domain.Room](ctx, h.db, query, request.Code)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.Room{}, core.NewCommandError(
			404,
			fmt.Errorf("room '%s' does not exist", request.Code),
			core.WithReason(domain.ReasonRoomNotFound),
		)
	case err != nil:
		return domain.Room{}, core.NewCommandError(500, err)
	}

	return room, nil
}
