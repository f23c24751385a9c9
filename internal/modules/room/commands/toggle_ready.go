package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/akrezic/guesswho/internal/modules/core"
	"github.com/akrezic/guesswho/internal/modules/room/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type ToggleReadyCommand struct {
	Code   string
	UserID uuid.UUID
}

func (c ToggleReadyCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.UserID == uuid.Nil {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	return nil
}

func HandleToggleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command := ToggleReadyCommand{
		Code:   chi.URLParam(r, "code"),
		UserID: core.Session(ctx).UserID,
	}

	_, err := mediator.Send[ToggleReadyCommand, core.Unit](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type ToggleReadyCommandHandler struct {
	db *sql.DB
}

func NewToggleReadyCommandHandler(db *sql.DB) *ToggleReadyCommandHandler {
	return &ToggleReadyCommandHandler{db}
}

// Handle flips the player's lobby ready flag. This is the pre-game
// readiness shown in the room list, separate from the pick-phase handshake.
func (h *ToggleReadyCommandHandler) Handle(
	ctx context.Context,
	request ToggleReadyCommand,
) (core.Unit, error) {
	txFn := func(ctx context.Context, tx *sql.Tx) error {
		room, found, err := roomForUpdate(ctx, tx, request.Code)
		if err != nil {
			return err
		}

		if !found {
			return core.NewCommandError(
				404,
				fmt.Errorf("room '%s' does not exist", request.Code),
				core.WithReason(domain.ReasonRoomNotFound),
			)
		}

		if !room.ToggleReady(request.UserID) {
			return core.NewCommandError(
				409,
				fmt.Errorf("user '%s' is not in room '%s'", request.UserID, request.Code),
				core.WithReason(domain.ReasonNotInRoom),
			)
		}

		return persistRoom(ctx, tx, room)
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		return core.Unit{}, asCommandError(err)
	}

	return core.Unit{}, nil
}
