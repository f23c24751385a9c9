package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/akrezic/guesswho/internal/modules/core"
	"github.com/akrezic/guesswho/internal/modules/leaderboard"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LeaveRoomCommand struct {
	Code   string
	UserID uuid.UUID
}

func (c LeaveRoomCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.UserID == uuid.Nil {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	return nil
}

func HandleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command := LeaveRoomCommand{
		Code:   chi.URLParam(r, "code"),
		UserID: core.Session(ctx).UserID,
	}

	_, err := mediator.Send[LeaveRoomCommand, core.Unit](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type LeaveRoomCommandHandler struct {
	db     *sql.DB
	sink   leaderboard.Sink
	logger *zap.Logger
}

func NewLeaveRoomCommandHandler(
	db *sql.DB,
	sink leaderboard.Sink,
	logger *zap.Logger,
) *LeaveRoomCommandHandler {
	return &LeaveRoomCommandHandler{db, sink, logger}
}

// Handle removes the player from the room. Leaving a running, undecided game
// forfeits it to the remaining player. The last player out deletes the room.
// Leaving a room that is already gone is a successful no-op.
func (h *LeaveRoomCommandHandler) Handle(
	ctx context.Context,
	request LeaveRoomCommand,
) (core.Unit, error) {
	var (
		forfeitWinner uuid.UUID
		forfeited     bool
	)

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		room, found, err := roomForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if !found || !room.HasPlayer(request.UserID) {
			return nil
		}

		forfeitWinner, forfeited = room.Forfeit(request.UserID)

		room.RemovePlayer(request.UserID)

		if len(room.Players) == 0 {
			const stmt = `DELETE FROM rooms WHERE id = $1;`
			_, err := tql.Exec(ctx, tx, stmt, room.ID)
			return err
		}

		return persistRoom(ctx, tx, room)
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		return core.Unit{}, asCommandError(err)
	}

	// The winner is already committed; the leaderboard is an eventually
	// updated read model, so a failure here is logged, not surfaced.
	if forfeited {
		if err := h.sink.RecordMatchResult(ctx, forfeitWinner, request.UserID, request.Code); err != nil {
			h.logger.Warn(
				"failed to record forfeit result",
				zap.String("room", request.Code),
				zap.Stringer("winner", forfeitWinner),
				zap.Stringer("loser", request.UserID),
				zap.Error(err),
			)
		}
	}

	return core.Unit{}, nil
}
