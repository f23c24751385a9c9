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

type RemovePoolCharacterCommand struct {
	Code        string
	CharacterID uuid.UUID
}

func (c RemovePoolCharacterCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.CharacterID == uuid.Nil {
		return fmt.Errorf("invalid CharacterID - '%s'", c.CharacterID)
	}

	return nil
}

func HandleRemovePoolCharacter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	characterID, err := uuid.Parse(chi.URLParam(r, "characterId"))
	if err != nil {
		core.WriteBadRequest(w, r, fmt.Errorf("invalid format for path param 'characterId'"))
		return
	}

	command := RemovePoolCharacterCommand{
		Code:        chi.URLParam(r, "code"),
		CharacterID: characterID,
	}

	_, err = mediator.Send[RemovePoolCharacterCommand, core.Unit](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type RemovePoolCharacterCommandHandler struct {
	db *sql.DB
}

func NewRemovePoolCharacterCommandHandler(db *sql.DB) *RemovePoolCharacterCommandHandler {
	return &RemovePoolCharacterCommandHandler{db}
}

// Handle deletes the pool entry. Removing an absent entry is a no-op.
func (h *RemovePoolCharacterCommandHandler) Handle(
	ctx context.Context,
	request RemovePoolCharacterCommand,
) (core.Unit, error) {
	const stmt = `
		DELETE FROM
			room_character_pools
		WHERE
			room_id = $1 AND character_id = $2;`
	if _, err := tql.Exec(ctx, h.db, stmt, request.Code, request.CharacterID); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
