package realtime

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/akrezic/guesswho/internal/modules/room/domain"

	"github.com/eskrenkovic/tql"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Postgres channels fed by row-level triggers (see db/migrations). Payloads
// are {"op": ..., "room_id": ...}; the bridge always re-fetches the fresh
// state instead of trusting the event payload.
const (
	roomChannel = "room_changes"
	poolChannel = "pool_changes"

	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingPeriod   = 90 * time.Second
)

type notification struct {
	Op     string `json:"op"`
	RoomID string `json:"room_id"`
}

// RoomEvent carries a fresh room snapshot. Room is nil when the record was
// deleted. Consumers must re-derive state from the snapshot - rapid updates
// may coalesce, so intermediate states are not guaranteed.
type RoomEvent struct {
	Op   string       `json:"op"`
	Room *domain.Room `json:"room"`
}

// PoolEvent republishes the full hydrated pool on every pool change,
// trading bandwidth for consistency.
type PoolEvent struct {
	Op   string                 `json:"op"`
	Pool []domain.PoolCharacter `json:"pool"`
}

// Bridge subscribes to the store's row-level change feed and republishes
// per-room snapshots to interested subscribers. Events for one room are
// dispatched in the order the store emits them.
type Bridge struct {
	db       *sql.DB
	listener *pq.Listener
	logger   *zap.Logger

	mu       sync.RWMutex
	roomSubs map[string]map[chan RoomEvent]struct{}
	poolSubs map[string]map[chan PoolEvent]struct{}
}

func NewBridge(databaseURL string, db *sql.DB, logger *zap.Logger) *Bridge {
	listener := pq.NewListener(
		databaseURL,
		listenerMinReconnect,
		listenerMaxReconnect,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("change feed listener event", zap.Int("event", int(event)), zap.Error(err))
			}
		},
	)

	return &Bridge{
		db:       db,
		listener: listener,
		logger:   logger,
		roomSubs: map[string]map[chan RoomEvent]struct{}{},
		poolSubs: map[string]map[chan PoolEvent]struct{}{},
	}
}

func (b *Bridge) Start(ctx context.Context) error {
	if err := b.listener.Listen(roomChannel); err != nil {
		return err
	}

	if err := b.listener.Listen(poolChannel); err != nil {
		return err
	}

	go b.run(ctx)
	return nil
}

func (b *Bridge) Close() error {
	return b.listener.Close()
}

func (b *Bridge) run(ctx context.Context) {
	ping := time.NewTicker(listenerPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ping.C:
			if err := b.listener.Ping(); err != nil {
				b.logger.Warn("change feed ping failed", zap.Error(err))
			}

		case n := <-b.listener.Notify:
			// A nil notification signals a re-established connection.
			if n == nil {
				continue
			}

			var payload notification
			if err := json.Unmarshal([]byte(n.Extra), &payload); err != nil {
				b.logger.Warn("malformed change notification", zap.String("payload", n.Extra), zap.Error(err))
				continue
			}

			switch n.Channel {
			case roomChannel:
				b.dispatchRoom(ctx, payload)
			case poolChannel:
				b.dispatchPool(ctx, payload)
			}
		}
	}
}

// SubscribeRoom registers interest in one room's changes. The returned
// cancel function must be called to release the subscription.
func (b *Bridge) SubscribeRoom(code string) (<-chan RoomEvent, func()) {
	ch := make(chan RoomEvent, 16)

	b.mu.Lock()
	if b.roomSubs[code] == nil {
		b.roomSubs[code] = map[chan RoomEvent]struct{}{}
	}
	b.roomSubs[code][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.roomSubs[code], ch)
		if len(b.roomSubs[code]) == 0 {
			delete(b.roomSubs, code)
		}
		b.mu.Unlock()
	}

	return ch, cancel
}

func (b *Bridge) SubscribePool(code string) (<-chan PoolEvent, func()) {
	ch := make(chan PoolEvent, 16)

	b.mu.Lock()
	if b.poolSubs[code] == nil {
		b.poolSubs[code] = map[chan PoolEvent]struct{}{}
	}
	b.poolSubs[code][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.poolSubs[code], ch)
		if len(b.poolSubs[code]) == 0 {
			delete(b.poolSubs, code)
		}
		b.mu.Unlock()
	}

	return ch, cancel
}

func (b *Bridge) dispatchRoom(ctx context.Context, n notification) {
	b.mu.RLock()
	subscribed := len(b.roomSubs[n.RoomID]) > 0
	b.mu.RUnlock()

	if !subscribed {
		return
	}

	event := RoomEvent{Op: n.Op}

	if n.Op != "delete" {
		room, err := b.fetchRoom(ctx, n.RoomID)
		if err != nil {
			b.logger.Warn("failed to fetch room snapshot", zap.String("room", n.RoomID), zap.Error(err))
			return
		}

		// The row may already be gone by the time we re-fetch; surface
		// that as a delete so consumers converge on the same end state.
		if room == nil {
			event.Op = "delete"
		}

		event.Room = room
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.roomSubs[n.RoomID] {
		sendLatest(ch, event)
	}
}

func (b *Bridge) dispatchPool(ctx context.Context, n notification) {
	b.mu.RLock()
	subscribed := len(b.poolSubs[n.RoomID]) > 0
	b.mu.RUnlock()

	if !subscribed {
		return
	}

	pool, err := b.fetchPool(ctx, n.RoomID)
	if err != nil {
		b.logger.Warn("failed to fetch pool snapshot", zap.String("room", n.RoomID), zap.Error(err))
		return
	}

	event := PoolEvent{Op: n.Op, Pool: pool}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.poolSubs[n.RoomID] {
		sendLatest(ch, event)
	}
}

// sendLatest delivers without blocking the dispatch loop. When a subscriber
// lags, the oldest buffered event is dropped in its favor - consumers work
// off full snapshots, so only the latest state matters.
func sendLatest[T any](ch chan T, event T) {
	select {
	case ch <- event:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- event:
	default:
	}
}

func (b *Bridge) fetchRoom(ctx context.Context, code string) (*domain.Room, error) {
	const query = `
		SELECT
			id, created_at, players, is_game_started,
			player_picks, player_picks_state, player_guesses, winner
		FROM
			rooms
		WHERE
			id = $1;`
	room, err := tql.QueryFirst[domain.Room](ctx, b.db, query, code)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	}

	return &room, nil
}

func (b *Bridge) fetchPool(ctx context.Context, code string) ([]domain.PoolCharacter, error) {
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
	return tql.Query[domain.PoolCharacter](ctx, b.db, query, code)
}
