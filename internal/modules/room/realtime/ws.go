package realtime

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleRoomEvents streams room snapshots for one room code over a
// websocket, one JSON message per change event.
func HandleRoomEvents(bridge *Bridge, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		events, cancel := bridge.SubscribeRoom(code)
		defer cancel()

		streamEvents(conn, events, logger)
	}
}

// HandlePoolEvents streams the full hydrated character pool on every pool
// change for one room code.
func HandlePoolEvents(bridge *Bridge, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		events, cancel := bridge.SubscribePool(code)
		defer cancel()

		streamEvents(conn, events, logger)
	}
}

// streamEvents pumps events to the peer until either side goes away. The
// read side only services control frames - clients never send data here.
func streamEvents[T any](conn *websocket.Conn, events <-chan T, logger *zap.Logger) {
	defer func() {
		_ = conn.Close()
	}()

	closed := make(chan struct{})

	go func() {
		defer close(closed)

		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return

		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case event := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug("dropping websocket subscriber", zap.Error(err))
				return
			}
		}
	}
}
