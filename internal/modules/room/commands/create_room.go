package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/akrezic/guesswho/internal/modules/core"
	"github.com/akrezic/guesswho/internal/modules/room/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
)

type CreateRoomCommand struct {
	Code string
}

func (c CreateRoomCommand) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", c.Code)
	}

	return nil
}

type CreateRoomResponse struct {
	Code string
}

func HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[CreateRoomCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	response, err := mediator.Send[CreateRoomCommand, CreateRoomResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	location := path.Join(r.Host, "rooms", response.Code)
	core.WriteCreated(w, r, location)
}

type CreateRoomCommandHandler struct {
	db *sql.DB
}

func NewCreateRoomCommandHandler(db *sql.DB) *CreateRoomCommandHandler {
	return &CreateRoomCommandHandler{db}
}

func (h *CreateRoomCommandHandler) Handle(
	ctx context.Context,
	request CreateRoomCommand,
) (CreateRoomResponse, error) {
	if !domain.ValidRoomCode(request.Code) {
		return CreateRoomResponse{}, core.NewCommandError(
			400,
			fmt.Errorf("room code must be 6 uppercase alphanumeric characters"),
			core.WithReason(domain.ReasonInvalidRoomCode),
		)
	}

	room := domain.NewRoom(request.Code, time.Now().UTC())

	const stmt = `
		INSERT INTO
			rooms (id, created_at, players, is_game_started, player_picks, player_picks_state, player_guesses)
		VALUES
			(:id, :created_at, :players, :is_game_started, :player_picks, :player_picks_state, :player_guesses);`
	_, err := tql.Exec(ctx, h.db, stmt, room)
	switch {
	case isPqError(err, pgUniqueViolation):
		// Codes are caller-generated - the caller retries with a fresh one.
		return CreateRoomResponse{}, core.NewCommandError(
			409, err, core.WithReason(domain.ReasonRoomCodeTaken),
		)
	case err != nil:
		return CreateRoomResponse{}, core.NewCommandError(500, err)
	}

	return CreateRoomResponse{Code: room.ID}, nil
}
