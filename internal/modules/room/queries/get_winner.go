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

type GetWinnerQuery struct {
	Code string
}

func (q GetWinnerQuery) Validate() error {
	if q.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", q.Code)
	}

	return nil
}

type GetWinnerResponse struct {
	Winner uuid.NullUUID `json:"winner"`
}

func HandleGetWinner(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetWinnerQuery, GetWinnerResponse](
		r.Context(),
		GetWinnerQuery{Code: chi.URLParam(r, "code")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetWinnerQueryHandler struct {
	db *sql.DB
}

func NewGetWinnerQueryHandler(db *sql.DB) *GetWinnerQueryHandler {
	return &GetWinnerQueryHandler{db}
}

func (h *GetWinnerQueryHandler) Handle(
	ctx context.Context,
	request GetWinnerQuery,
) (GetWinnerResponse, error) {
	const query = `SELECT winner FROM rooms WHERE id = $1;`
	winner, err := tql.QueryFirst[uuid.NullUUID](ctx, h.db, query, request.Code)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return GetWinnerResponse{}, core.NewCommandError(
			404,
			fmt.Errorf("room '%s' does not exist", request.Code),
			core.WithReason(domain.ReasonRoomNotFound),
		)
	case err != nil:
		return GetWinnerResponse{}, core.NewCommandError(500, err)
	}

	return GetWinnerResponse{Winner: winner}, nil
}
