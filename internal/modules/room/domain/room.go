package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxPlayers is the hard cap on room membership.
	MaxPlayers = 2

	// MaxGuesses is the per-player guess budget for one match.
	MaxGuesses = 2

	// MinPoolSize is the smallest character pool a game can start with.
	MinPoolSize = 2
)

// Rejection reasons surfaced to callers through core.CommandError. The UI
// relies on these exact strings to render specific messages.
const (
	ReasonRoomNotFound        = "room-not-found"
	ReasonRoomCodeTaken       = "room-code-taken"
	ReasonGameAlreadyStarted  = "game-already-started"
	ReasonRoomFull            = "room-full"
	ReasonAlreadyInRoom       = "already-in-room"
	ReasonNotInRoom           = "not-in-room"
	ReasonGameNotStarted      = "game-not-started"
	ReasonGuessLimitReached   = "guess-limit-reached"
	ReasonGameAlreadyDecided  = "game-already-decided"
	ReasonOpponentNotPicked   = "opponent-not-picked"
	ReasonNotEnoughPlayers    = "not-enough-players"
	ReasonNotEnoughCharacters = "not-enough-characters"
	ReasonInvalidRoomCode     = "invalid-room-code"
)

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ValidRoomCode reports whether code has the shareable short-code shape.
// Codes are generated by the caller; the service only vets the format.
func ValidRoomCode(code string) bool {
	return roomCodePattern.MatchString(code)
}

// Player is one entry in a room's membership list, in join order.
// IsReady is the lobby-level ready flag, distinct from the pick-phase
// readiness tracked in PlayerPicksState.
type Player struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	IsReady bool      `json:"isReady,omitempty"`
}

// PickState tracks one player's secret-pick handshake. A zero CharacterID
// means the player has not picked yet.
type PickState struct {
	CharacterID uuid.UUID `json:"characterId"`
	IsReady     bool      `json:"isReady"`
}

type Guess struct {
	CharacterID uuid.UUID `json:"characterId"`
	Timestamp   time.Time `json:"timestamp"`
}

// Room is the shared coordination record for one match. All mutation goes
// through the methods below; command handlers load the row under a row lock,
// apply a method, and persist the result, so the invariants here hold under
// concurrent requests from both players.
type Room struct {
	ID               string        `db:"id" json:"id"`
	CreatedAt        time.Time     `db:"created_at" json:"createdAt"`
	Players          PlayerList    `db:"players" json:"players"`
	IsGameStarted    bool          `db:"is_game_started" json:"isGameStarted"`
	PlayerPicks      PickMap       `db:"player_picks" json:"playerPicks"`
	PlayerPicksState PickStateMap  `db:"player_picks_state" json:"playerPicksState"`
	PlayerGuesses    GuessMap      `db:"player_guesses" json:"playerGuesses"`
	Winner           uuid.NullUUID `db:"winner" json:"winner"`
}

func NewRoom(code string, now time.Time) Room {
	return Room{
		ID:               code,
		CreatedAt:        now,
		Players:          PlayerList{},
		PlayerPicks:      PickMap{},
		PlayerPicksState: PickStateMap{},
		PlayerGuesses:    GuessMap{},
	}
}

func (r *Room) HasPlayer(userID uuid.UUID) bool {
	for _, p := range r.Players {
		if p.ID == userID {
			return true
		}
	}

	return false
}

// JoinGuard reports why userID cannot join, or "" when the join is allowed.
func (r *Room) JoinGuard(userID uuid.UUID) string {
	switch {
	case r.IsGameStarted:
		return ReasonGameAlreadyStarted
	case len(r.Players) >= MaxPlayers:
		return ReasonRoomFull
	case r.HasPlayer(userID):
		return ReasonAlreadyInRoom
	}

	return ""
}

// Admit re-evaluates JoinGuard and appends the player. Callers must hold the
// room row lock between the guard and the write for the player cap to hold.
func (r *Room) Admit(userID uuid.UUID, displayName string) string {
	if reason := r.JoinGuard(userID); reason != "" {
		return reason
	}

	r.Players = append(r.Players, Player{ID: userID, Name: displayName})
	return ""
}

// RemovePlayer deletes userID from the membership list and reports whether
// the player was present.
func (r *Room) RemovePlayer(userID uuid.UUID) bool {
	if !r.HasPlayer(userID) {
		return false
	}

	remaining := make(PlayerList, 0, len(r.Players))
	for _, p := range r.Players {
		if p.ID != userID {
			remaining = append(remaining, p)
		}
	}

	r.Players = remaining
	return true
}

// Opponent returns the other member of the room, if there is one.
func (r *Room) Opponent(userID uuid.UUID) (Player, bool) {
	for _, p := range r.Players {
		if p.ID != userID {
			return p, true
		}
	}

	return Player{}, false
}

// ToggleReady flips the lobby ready flag. Reports false when the player is
// not in the room.
func (r *Room) ToggleReady(userID uuid.UUID) bool {
	for i, p := range r.Players {
		if p.ID == userID {
			r.Players[i].IsReady = !p.IsReady
			return true
		}
	}

	return false
}

// StartGuard reports why the game cannot start yet, or "" when it can.
// A started room passes the guard so StartGame stays idempotent.
func (r *Room) StartGuard(poolSize int) string {
	if r.IsGameStarted {
		return ""
	}

	switch {
	case len(r.Players) < MaxPlayers:
		return ReasonNotEnoughPlayers
	case poolSize < MinPoolSize:
		return ReasonNotEnoughCharacters
	}

	return ""
}

// RecordPick merges a pick-phase update for one player. An empty characterID
// leaves any previous pick in place but still records the readiness flag.
// Whether a player may declare ready without a pick is a client-side
// precondition; the coordinator records what it is told.
func (r *Room) RecordPick(userID, characterID uuid.UUID, isReady bool) {
	if characterID != uuid.Nil {
		r.PlayerPicks[userID] = characterID
	}

	r.PlayerPicksState[userID] = PickState{CharacterID: characterID, IsReady: isReady}
}

// AllPicksReady reports whether every expected player has declared ready in
// the pick phase. Evaluated inside the same transaction as RecordPick so the
// lobby-to-play transition is decided in exactly one place.
func (r *Room) AllPicksReady() bool {
	if len(r.Players) < MaxPlayers {
		return false
	}

	for _, p := range r.Players {
		if !r.PlayerPicksState[p.ID].IsReady {
			return false
		}
	}

	return true
}

func (r *Room) GuessCount(userID uuid.UUID) int {
	return len(r.PlayerGuesses[userID])
}

// setWinner records the match result. Write-once: a decided room is never
// overwritten.
func (r *Room) setWinner(userID uuid.UUID) bool {
	if r.Winner.Valid {
		return false
	}

	r.Winner = uuid.NullUUID{UUID: userID, Valid: true}
	return true
}

// Forfeit awards the match to the remaining player when leaverID abandons a
// running game. Returns the awarded winner and whether a forfeit happened.
func (r *Room) Forfeit(leaverID uuid.UUID) (uuid.UUID, bool) {
	if !r.IsGameStarted || r.Winner.Valid {
		return uuid.Nil, false
	}

	opponent, ok := r.Opponent(leaverID)
	if !ok {
		return uuid.Nil, false
	}

	if !r.setWinner(opponent.ID) {
		return uuid.Nil, false
	}

	return opponent.ID, true
}

type GuessOutcome int

const (
	// GuessWrong: first miss, game continues.
	GuessWrong GuessOutcome = iota

	// GuessCorrect: the guess matched the opponent's pick; guesser wins.
	GuessCorrect

	// GuessExhausted: second miss; the opponent wins by default.
	GuessExhausted
)

// ResolveGuess applies one guess against the opponent's secret pick and
// advances the match state machine. The returned opponent id is the player
// whose pick the guess was resolved against, so callers settle win/loss
// bookkeeping against the same opponent the outcome was decided on. On
// rejection it returns a non-empty reason and mutates nothing.
func (r *Room) ResolveGuess(userID, characterID uuid.UUID, at time.Time) (GuessOutcome, uuid.UUID, string) {
	switch {
	case !r.IsGameStarted:
		return 0, uuid.Nil, ReasonGameNotStarted
	case r.Winner.Valid:
		return 0, uuid.Nil, ReasonGameAlreadyDecided
	case r.GuessCount(userID) >= MaxGuesses:
		return 0, uuid.Nil, ReasonGuessLimitReached
	}

	opponentID, opponentPick, found := r.opponentPick(userID)
	if !found {
		return 0, uuid.Nil, ReasonOpponentNotPicked
	}

	priorGuesses := r.GuessCount(userID)
	r.PlayerGuesses[userID] = append(r.PlayerGuesses[userID], Guess{
		CharacterID: characterID,
		Timestamp:   at,
	})

	if opponentPick == characterID {
		r.setWinner(userID)
		return GuessCorrect, opponentID, ""
	}

	if priorGuesses == MaxGuesses-1 {
		r.setWinner(opponentID)
		return GuessExhausted, opponentID, ""
	}

	return GuessWrong, opponentID, ""
}

// opponentPick finds the unique pick entry belonging to someone other than
// userID.
func (r *Room) opponentPick(userID uuid.UUID) (uuid.UUID, uuid.UUID, bool) {
	for id, pick := range r.PlayerPicks {
		if id != userID {
			return id, pick, true
		}
	}

	return uuid.Nil, uuid.Nil, false
}
