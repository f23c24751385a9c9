package queries

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

type GetCharacterPoolQuery struct {
	Code string
}

func (q GetCharacterPoolQuery) Validate() error {
	if q.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", q.Code)
	}

	return nil
}

func HandleGetCharacterPool(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetCharacterPoolQuery, []domain.PoolCharacter](
		r.Context(),
		GetCharacterPoolQuery{Code: chi.URLParam(r, "code")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetCharacterPoolQueryHandler struct {
	db *sql.DB
}

func NewGetCharacterPoolQueryHandler(db *sql.DB) *GetCharacterPoolQueryHandler {
	return &GetCharacterPoolQueryHandler{db}
}

// Handle returns the room's pool entries hydrated with their catalog fields,
// annotated with who added each one and when.
func (h *GetCharacterPoolQueryHandler) Handle(
	ctx context.Context,
	request GetCharacterPoolQuery,
) ([]domain.PoolCharacter, error) {
	const query = `
		SELECT
			c.id AS character_id,
			c.name,
			c.type,
			c.image_url,
			c.created_by,
			c.created_at,
			p.added_by,
			p.added_at
		FROM
			room_character_pools p
			JOIN characters c ON c.id = p.character_id
		WHERE
			p.room_id = $1
		ORDER BY
			p.added_at ASC;`
	pool, err := tql.Query[domain.PoolCharacter](ctx, h.db, query, request.Code)
	if err != nil {
		return nil, core.NewCommandError(500, err)
	}

	return pool, nil
}
