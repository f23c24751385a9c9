package queries

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/akrezic/guesswho/internal/modules/character/domain"
	"github.com/akrezic/guesswho/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
)

type ListCharactersQuery struct{}

func HandleListCharacters(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[ListCharactersQuery, []domain.Character](
		r.Context(),
		ListCharactersQuery{},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type ListCharactersQueryHandler struct {
	db *sql.DB
}

func NewListCharactersQueryHandler(db *sql.DB) *ListCharactersQueryHandler {
	return &ListCharactersQueryHandler{db}
}

func (h *ListCharactersQueryHandler) Handle(
	ctx context.Context,
	request ListCharactersQuery,
) ([]domain.Character, error) {
	const query = `
		SELECT
			id, name, type, image_url, created_by, created_at
		FROM
			characters
		ORDER BY
			created_at DESC;`
	return tql.Query[domain.Character](ctx, h.db, query)
}
