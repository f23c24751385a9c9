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

type JoinRoomCommand struct {
	Code        string
	UserID      uuid.UUID
	DisplayName string
}

func (c JoinRoomCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.UserID == uuid.Nil {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	if c.DisplayName == "" {
		return fmt.Errorf("invalid DisplayName - '%s'", c.DisplayName)
	}

	return nil
}

func HandleJoinRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := core.Session(ctx)

	command := JoinRoomCommand{
		Code:        chi.URLParam(r, "code"),
		UserID:      session.UserID,
		DisplayName: session.DisplayName,
	}

	_, err := mediator.Send[JoinRoomCommand, core.Unit](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type JoinRoomCommandHandler struct {
	db *sql.DB
}

func NewJoinRoomCommandHandler(db *sql.DB) *JoinRoomCommandHandler {
	return &JoinRoomCommandHandler{db}
}

// Handle admits the player under the room row lock. The guard and the write
// happen against the same locked snapshot, so two racing joins can never
// admit a third player.
func (h *JoinRoomCommandHandler) Handle(
	ctx context.Context,
	request JoinRoomCommand,
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

		if reason := room.Admit(request.UserID, request.DisplayName); reason != "" {
			return core.NewCommandError(
				409,
				fmt.Errorf("user '%s' cannot join room '%s'", request.UserID, request.Code),
				core.WithReason(reason),
			)
		}

		return persistRoom(ctx, tx, room)
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		return core.Unit{}, asCommandError(err)
	}

	return core.Unit{}, nil
}
