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

type PickCharacterCommand struct {
	Code        string
	UserID      uuid.UUID
	CharacterID uuid.UUID
	IsReady     bool
}

func (c PickCharacterCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.UserID == uuid.Nil {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	return nil
}

// PickCharacterResponse reports the centralized handshake evaluation:
// BothReady is computed in the same transaction that records the pick, so
// the lobby-to-play transition is decided once, not re-derived by every
// watching client.
type PickCharacterResponse struct {
	BothReady bool
}

func HandlePickCharacter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command, err := core.RequestBody[PickCharacterCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}
	command.Code = chi.URLParam(r, "code")
	command.UserID = core.Session(ctx).UserID

	response, err := mediator.Send[PickCharacterCommand, PickCharacterResponse](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type PickCharacterCommandHandler struct {
	db *sql.DB
}

func NewPickCharacterCommandHandler(db *sql.DB) *PickCharacterCommandHandler {
	return &PickCharacterCommandHandler{db}
}

// Handle merges the player's secret pick and readiness flag. An empty
// CharacterID keeps any earlier pick and only updates readiness; whether
// ready-without-pick is sensible is left to the client.
func (h *PickCharacterCommandHandler) Handle(
	ctx context.Context,
	request PickCharacterCommand,
) (PickCharacterResponse, error) {
	var bothReady bool

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

		if !room.IsGameStarted {
			return core.NewCommandError(
				409,
				fmt.Errorf("room '%s' has not started picking yet", request.Code),
				core.WithReason(domain.ReasonGameNotStarted),
			)
		}

		room.RecordPick(request.UserID, request.CharacterID, request.IsReady)
		bothReady = room.AllPicksReady()

		return persistRoom(ctx, tx, room)
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		return PickCharacterResponse{}, asCommandError(err)
	}

	return PickCharacterResponse{BothReady: bothReady}, nil
}
