package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/akrezic/guesswho/internal/modules/character/domain"
	"github.com/akrezic/guesswho/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
)

const ReasonCharacterLimitReached = "character-limit-reached"

type CreateCharacterCommand struct {
	Name      string
	Type      string
	ImageURL  *string
	CreatedBy uuid.UUID
}

func (c CreateCharacterCommand) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("invalid Name - '%s'", c.Name)
	}

	if !domain.ValidCharacterType(c.Type) {
		return fmt.Errorf("invalid Type - '%s'", c.Type)
	}

	if c.CreatedBy == uuid.Nil {
		return fmt.Errorf("invalid CreatedBy - '%s'", c.CreatedBy)
	}

	return nil
}

type CreateCharacterResponse struct {
	Character domain.Character
}

func HandleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	command, err := core.RequestBody[CreateCharacterCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}
	command.CreatedBy = core.Session(ctx).UserID

	response, err := mediator.Send[CreateCharacterCommand, CreateCharacterResponse](ctx, command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	location := path.Join(r.Host, "characters", response.Character.ID.String())
	core.WriteCreated(w, r, location)
}

type CreateCharacterCommandHandler struct {
	db *sql.DB
}

func NewCreateCharacterCommandHandler(db *sql.DB) *CreateCharacterCommandHandler {
	return &CreateCharacterCommandHandler{db}
}

// Handle inserts a catalog entry, enforcing the per-user authoring cap
// inside the same transaction as the insert.
func (h *CreateCharacterCommandHandler) Handle(
	ctx context.Context,
	request CreateCharacterCommand,
) (CreateCharacterResponse, error) {
	character := domain.Character{
		ID:        uuid.New(),
		Name:      request.Name,
		Type:      request.Type,
		ImageURL:  request.ImageURL,
		CreatedBy: request.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}

	txFn := func(ctx context.Context, tx *sql.Tx) error {
		const countQuery = `SELECT count(*) FROM characters WHERE created_by = $1;`
		count, err := tql.QueryFirst[int](ctx, tx, countQuery, request.CreatedBy)
		if err != nil {
			return err
		}

		if count >= domain.MaxCharactersPerUser {
			return core.NewCommandError(
				409,
				fmt.Errorf("user '%s' reached the limit of %d characters", request.CreatedBy, domain.MaxCharactersPerUser),
				core.WithReason(ReasonCharacterLimitReached),
			)
		}

		const stmt = `
			INSERT INTO
				characters (id, name, type, image_url, created_by, created_at)
			VALUES
				(:id, :name, :type, :image_url, :created_by, :created_at);`
		_, err = tql.Exec(ctx, tx, stmt, character)
		return err
	}

	if err := core.Tx(ctx, h.db, txFn); err != nil {
		if _, ok := err.(core.CommandError); ok {
			return CreateCharacterResponse{}, err
		}

		return CreateCharacterResponse{}, core.NewCommandError(500, err)
	}

	return CreateCharacterResponse{Character: character}, nil
}
