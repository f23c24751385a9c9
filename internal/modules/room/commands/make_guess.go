package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/akrezic/guesswho/internal/modules/core"
	"github.com/akrezic/guesswho/internal/modules/leaderboard"
	"github.com/akrezic/guesswho/internal/modules/room/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MakeGuessCommand struct {
	Code        string
	UserID      uuid.UUID
	CharacterID uuid.UUID
}

func (c MakeGuessCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	if c.UserID == uuid.Nil {
		return fmt.Errorf("invalid UserID - '%s'", c.UserID)
	}

	if c.CharacterID == uuid.Nil {
		return fmt.Errorf("invalid CharacterID - '%s'", c.CharacterID)
	}

	return nil
}

type MakeGuessResponse struct {
	Correct bool
	Winner  uuid.NullUUID
}

func HandleMakeGuess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command, err := core.RequestBody[MakeGuessCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}
	command.Code = chi.URLParam(r, "code")
	command.UserID = core.Session(ctx).UserID

	response, err := mediator.Send[MakeGuessCommand, MakeGuessResponse](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type MakeGuessCommandHandler struct {
	db     *sql.DB
	sink   leaderboard.Sink
	logger *zap.Logger
}

func NewMakeGuessCommandHandler(
	db *sql.DB,
	sink leaderboard.Sink,
	logger *zap.Logger,
) *MakeGuessCommandHandler {
	return &MakeGuessCommandHandler{db, sink, logger}
}

// Handle runs one turn of the guess state machine under the room row lock:
// a correct guess wins, a second wrong guess loses, a first wrong guess just
// burns a try. When the match becomes terminal the result is committed first
// and the leaderboard updated after, best effort.
func (h *MakeGuessCommandHandler) Handle(
	ctx context.Context,
	request MakeGuessCommand,
) (MakeGuessResponse, error) {
	var (
		outcome domain.GuessOutcome
		winner  uuid.NullUUID
		loser   uuid.UUID
	)

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

		var (
			opponentID uuid.UUID
			reason     string
		)
		outcome, opponentID, reason = room.ResolveGuess(request.UserID, request.CharacterID, time.Now().UTC())
		if reason != "" {
			return core.NewCommandError(
				409,
				fmt.Errorf("guess by '%s' rejected in room '%s'", request.UserID, request.Code),
				core.WithReason(reason),
			)
		}

		// The loser comes from the same opponent the guess was resolved
		// against, never re-derived from the membership list.
		winner = room.Winner
		if winner.Valid {
			if winner.UUID == request.UserID {
				loser = opponentID
			} else {
				loser = request.UserID
			}
		}

		return persistRoom(ctx, tx, room)
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		return MakeGuessResponse{}, asCommandError(err)
	}

	if winner.Valid {
		if err := h.sink.RecordMatchResult(ctx, winner.UUID, loser, request.Code); err != nil {
			h.logger.Warn(
				"failed to record match result",
				zap.String("room", request.Code),
				zap.Stringer("winner", winner.UUID),
				zap.Stringer("loser", loser),
				zap.Error(err),
			)
		}
	}

	return MakeGuessResponse{
		Correct: outcome == domain.GuessCorrect,
		Winner:  winner,
	}, nil
}
