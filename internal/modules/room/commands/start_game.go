package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/akrezic/guesswho/internal/modules/core"
	"github.com/akrezic/guesswho/internal/modules/room/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
)

type StartGameCommand struct {
	Code string
}

func (c StartGameCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	return nil
}

func HandleStartGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command := StartGameCommand{Code: chi.URLParam(r, "code")}

	_, err := mediator.Send[StartGameCommand, core.Unit](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, nil)
}

type StartGameCommandHandler struct {
	db *sql.DB
}

func NewStartGameCommandHandler(db *sql.DB) *StartGameCommandHandler {
	return &StartGameCommandHandler{db}
}

// Handle flips is_game_started, the single transition into the pick phase.
// Requires a full room and a big-enough pool; re-invoking on a started room
// is a harmless no-op, and the flag never transitions back.
func (h *StartGameCommandHandler) Handle(
	ctx context.Context,
	request StartGameCommand,
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

		if room.IsGameStarted {
			return nil
		}

		const poolQuery = `SELECT count(*) FROM room_character_pools WHERE room_id = $1;`
		poolSize, err := tql.QueryFirst[int](ctx, tx, poolQuery, room.ID)
		if err != nil {
			return err
		}

		if reason := room.StartGuard(poolSize); reason != "" {
			return core.NewCommandError(
				409,
				fmt.Errorf("room '%s' is not startable", request.Code),
				core.WithReason(reason),
			)
		}

		room.IsGameStarted = true
		return persistRoom(ctx, tx, room)
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		return core.Unit{}, asCommandError(err)
	}

	return core.Unit{}, nil
}
