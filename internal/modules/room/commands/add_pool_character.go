package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/akrezic/guesswho/internal/modules/core"
	"github.com/akrezic/guesswho/internal/modules/room/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

const ReasonCharacterAlreadyInPool = "character-already-in-pool"
const ReasonCharacterNotFound = "character-not-found"

type AddPoolCharacterCommand struct {
	Code        string
	CharacterID uuid.UUID
	AddedBy     uuid.UUID
}

func (c AddPoolCharacterCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.CharacterID == uuid.Nil {
		return fmt.Errorf("invalid CharacterID - '%s'", c.CharacterID)
	}

	if c.AddedBy == uuid.Nil {
		return fmt.Errorf("invalid AddedBy - '%s'", c.AddedBy)
	}

	return nil
}

func HandleAddPoolCharacter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command, err := core.RequestBody[AddPoolCharacterCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}
	command.Code = chi.URLParam(r, "code")
	command.AddedBy = core.Session(ctx).UserID

	_, err = mediator.Send[AddPoolCharacterCommand, core.Unit](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type AddPoolCharacterCommandHandler struct {
	db *sql.DB
}

func NewAddPoolCharacterCommandHandler(db *sql.DB) *AddPoolCharacterCommandHandler {
	return &AddPoolCharacterCommandHandler{db}
}

// Handle inserts one pool entry. Concurrent additions are independent
// inserts, so they commute; duplicates and dangling references are rejected
// by the store's constraints rather than re-checked here.
func (h *AddPoolCharacterCommandHandler) Handle(
	ctx context.Context,
	request AddPoolCharacterCommand,
) (core.Unit, error) {
	const stmt = `
		INSERT INTO
			room_character_pools (room_id, character_id, added_by, added_at)
		VALUES
			($1, $2, $3, $4);`
	_, err := tql.Exec(ctx, h.db, stmt, request.Code, request.CharacterID, request.AddedBy, time.Now().UTC())
	switch {
	case isPqError(err, pgUniqueViolation):
		// Already present - harmless for the caller to ignore.
		return core.Unit{}, core.NewCommandError(
			409, err, core.WithReason(ReasonCharacterAlreadyInPool),
		)
	case isPqError(err, pgForeignKeyViolation):
		reason := domain.ReasonRoomNotFound
		if pqConstraint(err) == "room_character_pools_character_id_fkey" {
			reason = ReasonCharacterNotFound
		}

		return core.Unit{}, core.NewCommandError(404, err, core.WithReason(reason))
	case err != nil:
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
