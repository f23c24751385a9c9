package queries

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/akrezic/guesswho/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
	"github.com/go-chi/chi"
)

type RoomExistsQuery struct {
	Code string
}

func (q RoomExistsQuery) Validate() error {
	if q.Code == "" {
		return fmt.Errorf("invalid Code - '%s'", q.Code)
	}

	return nil
}

type RoomExistsResponse struct {
	Exists bool
}

func HandleRoomExists(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[RoomExistsQuery, RoomExistsResponse](
		r.Context(),
		RoomExistsQuery{Code: chi.URLParam(r, "code")},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type RoomExistsQueryHandler struct {
	db *sql.DB
}

func NewRoomExistsQueryHandler(db *sql.DB) *RoomExistsQueryHandler {
	return &RoomExistsQueryHandler{db}
}

// Handle probes for the room. An absent row is a false result, not an error.
func (h *RoomExistsQueryHandler) Handle(
	ctx context.Context,
	request RoomExistsQuery,
) (RoomExistsResponse, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1);`
	exists, err := tql.QueryFirst[bool](ctx, h.db, query, request.Code)
	if err != nil {
		return RoomExistsResponse{}, core.NewCommandError(500, err)
	}

	return RoomExistsResponse{Exists: exists}, nil
}
