package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// The room aggregate's collection fields live in jsonb columns so the whole
// record stays one row and every mutation is a single-row write.

type PlayerList []Player

// PickMap maps a player to their secret character pick.
type PickMap map[uuid.UUID]uuid.UUID

// PickStateMap is the superset of PickMap driving the ready handshake.
type PickStateMap map[uuid.UUID]PickState

// GuessMap holds each player's guesses in submission order.
type GuessMap map[uuid.UUID][]Guess

func (p PlayerList) Value() (driver.Value, error)   { return json.Marshal(p) }
func (p PickMap) Value() (driver.Value, error)      { return json.Marshal(p) }
func (p PickStateMap) Value() (driver.Value, error) { return json.Marshal(p) }
func (g GuessMap) Value() (driver.Value, error)     { return json.Marshal(g) }

func (p *PlayerList) Scan(src interface{}) error   { return scanJSON(src, p) }
func (p *PickMap) Scan(src interface{}) error      { return scanJSON(src, p) }
func (p *PickStateMap) Scan(src interface{}) error { return scanJSON(src, p) }
func (g *GuessMap) Scan(src interface{}) error     { return scanJSON(src, g) }

func scanJSON(src, dest interface{}) error {
	if src == nil {
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into jsonb column", src)
	}
}

// PoolCharacter is a pool entry hydrated with its catalog fields.
type PoolCharacter struct {
	CharacterID uuid.UUID `db:"character_id" json:"characterId"`
	Name        string    `db:"name" json:"name"`
	Type        string    `db:"type" json:"type"`
	ImageURL    *string   `db:"image_url" json:"imageUrl,omitempty"`
	CreatedBy   uuid.UUID `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	AddedBy     uuid.UUID `db:"added_by" json:"addedBy"`
	AddedAt     time.Time `db:"added_at" json:"addedAt"`
}
