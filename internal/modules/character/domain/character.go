package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxCharactersPerUser caps how many catalog entries one user may author.
const MaxCharactersPerUser = 20

// Character is a user-authored catalog entry. Read-mostly: rooms reference
// characters through their pools but never mutate them.
type Character struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"`
	ImageURL  *string   `db:"image_url" json:"imageUrl,omitempty"`
	CreatedBy uuid.UUID `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

var characterTypes = map[string]struct{}{
	"human_male":   {},
	"human_female": {},
	"dog":          {},
	"cat":          {},
	"bird":         {},
	"fish":         {},
	"robot":        {},
	"alien":        {},
	"monster":      {},
	"superhero":    {},
	"villain":      {},
	"wizard":       {},
	"dragon":       {},
	"unicorn":      {},
	"other":        {},
}

func ValidCharacterType(t string) bool {
	_, ok := characterTypes[t]
	return ok
}
