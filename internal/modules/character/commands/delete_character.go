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
	"github.com/google/uuid"
)

type DeleteCharacterCommand struct {
	ID uuid.UUID
}

func (c DeleteCharacterCommand) Validate() error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("invalid ID - '%s'", c.ID)
	}

	return nil
}

func HandleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		core.WriteBadRequest(w, r, fmt.Errorf("invalid format for path param 'id'"))
		return
	}

	_, err = mediator.Send[DeleteCharacterCommand, core.Unit](ctx, DeleteCharacterCommand{ID: id})
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type DeleteCharacterCommandHandler struct {
	db *sql.DB
}

func NewDeleteCharacterCommandHandler(db *sql.DB) *DeleteCharacterCommandHandler {
	return &DeleteCharacterCommandHandler{db}
}

// Handle removes a catalog entry. Pool rows referencing it go with it via
// the cascading foreign key. Idempotent.
func (h *DeleteCharacterCommandHandler) Handle(
	ctx context.Context,
	request DeleteCharacterCommand,
) (core.Unit, error) {
	const stmt = `DELETE FROM characters WHERE id = $1;`
	if _, err := tql.Exec(ctx, h.db, stmt, request.ID); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
