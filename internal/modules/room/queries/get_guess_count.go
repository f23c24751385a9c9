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
	"github.com/google/uuid"
)

type GetGuessCountQuery struct {
	Code   string
	UserID uuid.UUID
}

func (q GetGuessCountQuery) Validate() error {
	if q.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", q.Code)
	}

	if q.UserID == uuid.Nil {
		return fmt.Errorf("invalid UserID - '%s'", q.UserID)
	}

	return nil
}

type GetGuessCountResponse struct {
	GuessCount int `json:"guessCount"`
	Remaining  int `json:"remaining"`
}

func HandleGetGuessCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := GetGuessCountQuery{
		Code:   chi.URLParam(r, "code"),
		UserID: core.Session(ctx).UserID,
	}

	response, err := mediator.Send[GetGuessCountQuery, GetGuessCountResponse](ctx, query)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetGuessCountQueryHandler struct {
	db *sql.DB
}

func NewGetGuessCountQueryHandler(db *sql.DB) *GetGuessCountQueryHandler {
	return &GetGuessCountQueryHandler{db}
}

func (h *GetGuessCountQueryHandler) Handle(
	ctx context.Context,
	request GetGuessCountQuery,
) (GetGuessCountResponse, error) {
	const query = `SELECT player_guesses FROM rooms WHERE id = $1;`
	guesses, err := tql.QueryFirst[domain.GuessMap](ctx, h.db, query, request.Code)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return GetGuessCountResponse{}, core.NewCommandError(
			404,
			fmt.Errorf("room '%s' does not exist", request.Code),
			core.WithReason(domain.ReasonRoomNotFound),
		)
	case err != nil:
		return GetGuessCountResponse{}, core.NewCommandError(500, err)
	}

	count := len(guesses[request.UserID])
	return GetGuessCountResponse{
		GuessCount: count,
		Remaining:  domain.MaxGuesses - count,
	}, nil
}
