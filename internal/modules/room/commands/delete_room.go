package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/akrezic/guesswho/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
)

type DeleteRoomCommand struct {
	Code string
}

func (c DeleteRoomCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	return nil
}

func HandleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command := DeleteRoomCommand{Code: chi.URLParam(r, "code")}

	_, err := mediator.Send[DeleteRoomCommand, core.Unit](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type DeleteRoomCommandHandler struct {
	db *sql.DB
}

func NewDeleteRoomCommandHandler(db *sql.DB) *DeleteRoomCommandHandler {
	return &DeleteRoomCommandHandler{db}
}

// Handle deletes the room record. Idempotent - deleting an absent room
// succeeds.
func (h *DeleteRoomCommandHandler) Handle(
	ctx context.Context,
	request DeleteRoomCommand,
) (core.Unit, error) {
	const stmt = `DELETE FROM rooms WHERE id = $1;`
	if _, err := tql.Exec(ctx, h.db, stmt, request.Code); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
