package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestRoom(t *testing.T) Room {
	t.Helper()
	return NewRoom("ABC123", time.Now().UTC())
}

func newStartedRoom(t *testing.T) (Room, Player, Player) {
	t.Helper()

	room := newTestRoom(t)
	p1 := Player{ID: uuid.New(), Name: "player-one"}
	p2 := Player{ID: uuid.New(), Name: "player-two"}

	require.Empty(t, room.Admit(p1.ID, p1.Name))
	require.Empty(t, room.Admit(p2.ID, p2.Name))

	room.IsGameStarted = true
	return room, p1, p2
}

func Test_ValidRoomCode_Accepts_Six_Uppercase_Alphanumerics(t *testing.T) {
	require.True(t, ValidRoomCode("ABC123"))
	require.True(t, ValidRoomCode("ZZZZZZ"))
	require.True(t, ValidRoomCode("000000"))

	require.False(t, ValidRoomCode(""))
	require.False(t, ValidRoomCode("abc123"))
	require.False(t, ValidRoomCode("ABC12"))
	require.False(t, ValidRoomCode("ABC1234"))
	require.False(t, ValidRoomCode("ABC 12"))
}

func Test_Admit_Appends_Players_In_Join_Order(t *testing.T) {
	// Arrange
	room := newTestRoom(t)
	first := uuid.New()
	second := uuid.New()

	// Act
	require.Empty(t, room.Admit(first, "first"))
	require.Empty(t, room.Admit(second, "second"))

	// Assert
	require.Len(t, room.Players, 2)
	require.Equal(t, first, room.Players[0].ID)
	require.Equal(t, second, room.Players[1].ID)
}

func Test_Admit_Rejects_Third_Player_With_Room_Full(t *testing.T) {
	// Arrange
	room, _, _ := newStartedRoom(t)
	room.IsGameStarted = false

	// Act
	reason := room.Admit(uuid.New(), "third")

	// Assert
	require.Equal(t, ReasonRoomFull, reason)
	require.Len(t, room.Players, 2)
}

func Test_Admit_Rejects_Duplicate_User(t *testing.T) {
	// Arrange
	room := newTestRoom(t)
	userID := uuid.New()
	require.Empty(t, room.Admit(userID, "someone"))

	// Act
	reason := room.Admit(userID, "someone")

	// Assert
	require.Equal(t, ReasonAlreadyInRoom, reason)
	require.Len(t, room.Players, 1)
}

func Test_Admit_Rejects_Join_After_Game_Start(t *testing.T) {
	// Arrange
	room := newTestRoom(t)
	require.Empty(t, room.Admit(uuid.New(), "someone"))
	room.IsGameStarted = true

	// Act
	reason := room.Admit(uuid.New(), "latecomer")

	// Assert
	require.Equal(t, ReasonGameAlreadyStarted, reason)
	require.Len(t, room.Players, 1)
}

func Test_RemovePlayer_Reports_False_For_Unknown_User(t *testing.T) {
	room := newTestRoom(t)
	require.Empty(t, room.Admit(uuid.New(), "someone"))

	require.False(t, room.RemovePlayer(uuid.New()))
	require.Len(t, room.Players, 1)
}

func Test_RemovePlayer_Keeps_The_Other_Player(t *testing.T) {
	// Arrange
	room, p1, p2 := newStartedRoom(t)

	// Act
	removed := room.RemovePlayer(p1.ID)

	// Assert
	require.True(t, removed)
	require.Len(t, room.Players, 1)
	require.Equal(t, p2.ID, room.Players[0].ID)
}

func Test_ToggleReady_Flips_Lobby_Flag(t *testing.T) {
	// Arrange
	room := newTestRoom(t)
	userID := uuid.New()
	require.Empty(t, room.Admit(userID, "someone"))

	// Act + Assert
	require.True(t, room.ToggleReady(userID))
	require.True(t, room.Players[0].IsReady)

	require.True(t, room.ToggleReady(userID))
	require.False(t, room.Players[0].IsReady)

	require.False(t, room.ToggleReady(uuid.New()))
}

func Test_StartGuard_Requires_Two_Players_And_Two_Pool_Characters(t *testing.T) {
	room := newTestRoom(t)
	require.Equal(t, ReasonNotEnoughPlayers, room.StartGuard(5))

	require.Empty(t, room.Admit(uuid.New(), "first"))
	require.Equal(t, ReasonNotEnoughPlayers, room.StartGuard(5))

	require.Empty(t, room.Admit(uuid.New(), "second"))
	require.Equal(t, ReasonNotEnoughCharacters, room.StartGuard(1))

	require.Empty(t, room.StartGuard(2))
}

func Test_StartGuard_Passes_On_Already_Started_Room(t *testing.T) {
	room, _, _ := newStartedRoom(t)

	// Re-invoking start on a running game must stay a no-op, whatever the
	// current pool size.
	require.Empty(t, room.StartGuard(0))
}

func Test_RecordPick_Keeps_Previous_Pick_When_CharacterID_Empty(t *testing.T) {
	// Arrange
	room, p1, _ := newStartedRoom(t)
	characterID := uuid.New()
	room.RecordPick(p1.ID, characterID, false)

	// Act - ready-up without re-sending the pick.
	room.RecordPick(p1.ID, uuid.Nil, true)

	// Assert
	require.Equal(t, characterID, room.PlayerPicks[p1.ID])
	require.True(t, room.PlayerPicksState[p1.ID].IsReady)
}

func Test_AllPicksReady_Requires_Both_Players_Ready(t *testing.T) {
	// Arrange
	room, p1, p2 := newStartedRoom(t)

	require.False(t, room.AllPicksReady())

	room.RecordPick(p1.ID, uuid.New(), true)
	require.False(t, room.AllPicksReady())

	room.RecordPick(p2.ID, uuid.New(), false)
	require.False(t, room.AllPicksReady())

	// Act
	room.RecordPick(p2.ID, uuid.Nil, true)

	// Assert
	require.True(t, room.AllPicksReady())
}

func Test_AllPicksReady_Is_False_With_A_Single_Player(t *testing.T) {
	room := newTestRoom(t)
	userID := uuid.New()
	require.Empty(t, room.Admit(userID, "alone"))
	room.IsGameStarted = true

	room.RecordPick(userID, uuid.New(), true)

	require.False(t, room.AllPicksReady())
}

func Test_ResolveGuess_Correct_Guess_Wins(t *testing.T) {
	// Arrange
	room, p1, p2 := newStartedRoom(t)
	secret := uuid.New()
	room.RecordPick(p1.ID, secret, true)
	room.RecordPick(p2.ID, uuid.New(), true)

	// Act
	outcome, opponentID, reason := room.ResolveGuess(p2.ID, secret, time.Now().UTC())

	// Assert
	require.Empty(t, reason)
	require.Equal(t, GuessCorrect, outcome)
	require.Equal(t, p1.ID, opponentID)
	require.True(t, room.Winner.Valid)
	require.Equal(t, p2.ID, room.Winner.UUID)
	require.Len(t, room.PlayerGuesses[p2.ID], 1)
}

func Test_ResolveGuess_First_Wrong_Guess_Continues_Play(t *testing.T) {
	// Arrange
	room, p1, p2 := newStartedRoom(t)
	room.RecordPick(p1.ID, uuid.New(), true)
	room.RecordPick(p2.ID, uuid.New(), true)

	// Act
	outcome, opponentID, reason := room.ResolveGuess(p2.ID, uuid.New(), time.Now().UTC())

	// Assert
	require.Empty(t, reason)
	require.Equal(t, GuessWrong, outcome)
	require.Equal(t, p1.ID, opponentID)
	require.False(t, room.Winner.Valid)
	require.Len(t, room.PlayerGuesses[p2.ID], 1)
}

func Test_ResolveGuess_Second_Wrong_Guess_Loses_To_Opponent(t *testing.T) {
	// Arrange
	room, p1, p2 := newStartedRoom(t)
	room.RecordPick(p1.ID, uuid.New(), true)
	room.RecordPick(p2.ID, uuid.New(), true)

	_, _, reason := room.ResolveGuess(p2.ID, uuid.New(), time.Now().UTC())
	require.Empty(t, reason)

	// Act - the opponent wins without ever guessing.
	outcome, opponentID, reason := room.ResolveGuess(p2.ID, uuid.New(), time.Now().UTC())

	// Assert
	require.Empty(t, reason)
	require.Equal(t, GuessExhausted, outcome)
	require.Equal(t, p1.ID, opponentID)
	require.True(t, room.Winner.Valid)
	require.Equal(t, p1.ID, room.Winner.UUID)
	require.Len(t, room.PlayerGuesses[p2.ID], 2)
}

func Test_ResolveGuess_Rejects_Third_Guess(t *testing.T) {
	// Arrange
	room, p1, p2 := newStartedRoom(t)
	room.RecordPick(p1.ID, uuid.New(), true)
	room.RecordPick(p2.ID, uuid.New(), true)

	// Burn p1's budget first so the room is not yet decided.
	_, _, reason := room.ResolveGuess(p1.ID, uuid.New(), time.Now().UTC())
	require.Empty(t, reason)

	room.PlayerGuesses[p1.ID] = append(room.PlayerGuesses[p1.ID], Guess{CharacterID: uuid.New()})
	room.Winner = uuid.NullUUID{}

	// Act
	_, _, reason = room.ResolveGuess(p1.ID, uuid.New(), time.Now().UTC())

	// Assert
	require.Equal(t, ReasonGuessLimitReached, reason)
	require.Len(t, room.PlayerGuesses[p1.ID], 2)
}

func Test_ResolveGuess_Rejects_Guess_Before_Game_Start(t *testing.T) {
	room := newTestRoom(t)
	userID := uuid.New()
	require.Empty(t, room.Admit(userID, "eager"))

	_, _, reason := room.ResolveGuess(userID, uuid.New(), time.Now().UTC())

	require.Equal(t, ReasonGameNotStarted, reason)
	require.Empty(t, room.PlayerGuesses[userID])
}

func Test_ResolveGuess_Rejects_Guess_After_Winner_Set(t *testing.T) {
	// Arrange
	room, p1, p2 := newStartedRoom(t)
	secret := uuid.New()
	room.RecordPick(p1.ID, secret, true)
	room.RecordPick(p2.ID, uuid.New(), true)

	outcome, _, reason := room.ResolveGuess(p2.ID, secret, time.Now().UTC())
	require.Empty(t, reason)
	require.Equal(t, GuessCorrect, outcome)

	// Act - a stray late guess must not touch the record.
	_, _, reason = room.ResolveGuess(p1.ID, uuid.New(), time.Now().UTC())

	// Assert
	require.Equal(t, ReasonGameAlreadyDecided, reason)
	require.Empty(t, room.PlayerGuesses[p1.ID])
	require.Equal(t, p2.ID, room.Winner.UUID)
}

func Test_ResolveGuess_Rejects_When_Opponent_Has_Not_Picked(t *testing.T) {
	room, _, p2 := newStartedRoom(t)
	room.RecordPick(p2.ID, uuid.New(), true)

	_, _, reason := room.ResolveGuess(p2.ID, uuid.New(), time.Now().UTC())

	require.Equal(t, ReasonOpponentNotPicked, reason)
}

func Test_Winner_Is_Write_Once(t *testing.T) {
	// Arrange
	room, p1, p2 := newStartedRoom(t)
	require.True(t, room.setWinner(p1.ID))

	// Act
	overwritten := room.setWinner(p2.ID)

	// Assert
	require.False(t, overwritten)
	require.Equal(t, p1.ID, room.Winner.UUID)
}

func Test_Forfeit_Awards_Remaining_Player(t *testing.T) {
	// Arrange
	room, p1, p2 := newStartedRoom(t)

	// Act
	winner, forfeited := room.Forfeit(p2.ID)

	// Assert
	require.True(t, forfeited)
	require.Equal(t, p1.ID, winner)
	require.Equal(t, p1.ID, room.Winner.UUID)
}

func Test_Forfeit_Is_A_NoOp_Before_Game_Start(t *testing.T) {
	room := newTestRoom(t)
	p1 := uuid.New()
	require.Empty(t, room.Admit(p1, "first"))
	require.Empty(t, room.Admit(uuid.New(), "second"))

	_, forfeited := room.Forfeit(p1)

	require.False(t, forfeited)
	require.False(t, room.Winner.Valid)
}

func Test_Forfeit_Is_A_NoOp_When_Already_Decided(t *testing.T) {
	// Arrange
	room, p1, _ := newStartedRoom(t)
	require.True(t, room.setWinner(p1.ID))

	// Act
	_, forfeited := room.Forfeit(p1.ID)

	// Assert
	require.False(t, forfeited)
	require.Equal(t, p1.ID, room.Winner.UUID)
}

func Test_Forfeit_Is_A_NoOp_With_No_Opponent(t *testing.T) {
	room := newTestRoom(t)
	userID := uuid.New()
	require.Empty(t, room.Admit(userID, "alone"))
	room.IsGameStarted = true

	_, forfeited := room.Forfeit(userID)

	require.False(t, forfeited)
}
