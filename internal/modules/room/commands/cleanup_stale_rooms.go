package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/akrezic/guesswho/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/tql"
)

type CleanupStaleRoomsCommand struct {
	MaxAge time.Duration
}

func (c CleanupStaleRoomsCommand) Validate() error {
	if c.MaxAge <= 0 {
		return fmt.Errorf("invalid MaxAge - '%s'", c.MaxAge)
	}

	return nil
}

func HandleCleanupStaleRooms(maxAge time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		command := CleanupStaleRoomsCommand{MaxAge: maxAge}

		_, err := mediator.Send[CleanupStaleRoomsCommand, core.Unit](r.Context(), command)
		if err != nil {
			core.WriteCommandError(w, r, err)
			return
		}

		core.WriteOK(w, r, nil)
	}
}

type CleanupStaleRoomsCommandHandler struct {
	db *sql.DB
}

func NewCleanupStaleRoomsCommandHandler(db *sql.DB) *CleanupStaleRoomsCommandHandler {
	return &CleanupStaleRoomsCommandHandler{db}
}

// Handle sweeps rooms older than the retention window regardless of state.
// This is the only garbage collection for abandoned rooms that were never
// emptied through the leave path.
func (h *CleanupStaleRoomsCommandHandler) Handle(
	ctx context.Context,
	request CleanupStaleRoomsCommand,
) (core.Unit, error) {
	cutoff := time.Now().UTC().Add(-request.MaxAge)

	const stmt = `DELETE FROM rooms WHERE created_at < $1;`
	if _, err := tql.Exec(ctx, h.db, stmt, cutoff); err != nil {
		return core.Unit{}, core.NewCommandError(500, err)
	}

	return core.Unit{}, nil
}
