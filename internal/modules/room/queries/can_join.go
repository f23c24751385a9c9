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

type CanJoinQuery struct {
	Code   string
	UserID uuid.UUID
}

func (q CanJoinQuery) Validate() error {
	if q.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", q.Code)
	}

	if q.UserID == uuid.Nil {
		return fmt.Errorf("invalid UserID - '%s'", q.UserID)
	}

	return nil
}

type CanJoinResponse struct {
	CanJoin bool   `json:"canJoin"`
	Reason  string `json:"reason,omitempty"`
}

func HandleCanJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := CanJoinQuery{
		Code:   chi.URLParam(r, "code"),
		UserID: core.Session(ctx).UserID,
	}

	response, err := mediator.Send[CanJoinQuery, CanJoinResponse](ctx, query)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type CanJoinQueryHandler struct {
	db *sql.DB
}

func NewCanJoinQueryHandler(db *sql.DB) *CanJoinQueryHandler {
	return &CanJoinQueryHandler{db}
}

// Handle is the read-only pre-submit probe. It answers from a plain
// snapshot, so a positive answer can still go stale before the join itself;
// JoinRoom re-runs the same guards under the row lock.
func (h *CanJoinQueryHandler) Handle(
	ctx context.Context,
	request CanJoinQuery,
) (CanJoinResponse, error) {
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
		return CanJoinResponse{CanJoin: false, Reason: domain.ReasonRoomNotFound}, nil
	case err != nil:
		return CanJoinResponse{}, core.NewCommandError(500, err)
	}

	if reason := room.JoinGuard(request.UserID); reason != "" {
		return CanJoinResponse{CanJoin: false, Reason: reason}, nil
	}

	return CanJoinResponse{CanJoin: true}, nil
}
