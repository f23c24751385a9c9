package core

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type ContextKey string

const SessionContextKey ContextKey = "session"

// ContextSession identifies the acting player. Authentication itself happens
// upstream; this service trusts the identity headers set by the auth proxy.
type ContextSession struct {
	UserID      uuid.UUID
	DisplayName string
}

const (
	UserIDHeader   = "X-User-Id"
	UserNameHeader = "X-User-Name"
)

func Session(ctx context.Context) ContextSession {
	session, ok := ctx.Value(SessionContextKey).(ContextSession)
	if !ok {
		return ContextSession{}
	}

	return session
}

func SessionHTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get(UserIDHeader))
		if err != nil || userID == uuid.Nil {
			WriteUnauthorized(w, r, fmt.Errorf("missing or invalid %s header", UserIDHeader))
			return
		}

		session := ContextSession{
			UserID:      userID,
			DisplayName: r.Header.Get(UserNameHeader),
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
