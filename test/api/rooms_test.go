package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/akrezic/guesswho/internal/modules/room/domain"

	"github.com/stretchr/testify/require"
)

type createRoomRequest struct {
	Code string
}

type emptyRequest struct{}

func createRoom(t *testing.T, owner *player) string {
	t.Helper()

	code := randomRoomCode()
	_, err := sendRequest[createRoomRequest, struct{}](
		fixture.client,
		fmt.Sprintf("%s/rooms", fixture.baseURL),
		http.MethodPost,
		owner,
		createRoomRequest{Code: code},
		expectStatus(t, http.StatusCreated),
	)
	require.NoError(t, err)

	return code
}

func joinRoom(t *testing.T, code string, p *player) {
	t.Helper()

	_, err := sendRequest[emptyRequest, struct{}](
		fixture.client,
		roomURL(code, "actions", "join"),
		http.MethodPut,
		p,
		emptyRequest{},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)
}

func getRoom(t *testing.T, code string) domain.Room {
	t.Helper()

	room, err := sendRequest[emptyRequest, domain.Room](
		fixture.client,
		roomURL(code),
		http.MethodGet,
		nil,
		emptyRequest{},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)

	return room
}

func Test_CreateRoom_Returns_201(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	code := randomRoomCode()

	// Act
	_, err := sendRequest[createRoomRequest, struct{}](
		fixture.client,
		fmt.Sprintf("%s/rooms", fixture.baseURL),
		http.MethodPost,
		&owner,
		createRoomRequest{Code: code},
		expectStatus(t, http.StatusCreated),
	)

	// Assert
	require.NoError(t, err)

	room := getRoom(t, code)
	require.Equal(t, code, room.ID)
	require.Empty(t, room.Players)
	require.False(t, room.IsGameStarted)
}

func Test_CreateRoom_Rejects_Taken_Code(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	code := createRoom(t, &owner)

	// Act
	response, err := sendRequest[createRoomRequest, errorResponse](
		fixture.client,
		fmt.Sprintf("%s/rooms", fixture.baseURL),
		http.MethodPost,
		&owner,
		createRoomRequest{Code: code},
		expectStatus(t, http.StatusConflict),
	)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "room-code-taken", response.Reason)
}

func Test_CreateRoom_Rejects_Malformed_Code(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")

	// Act
	response, err := sendRequest[createRoomRequest, errorResponse](
		fixture.client,
		fmt.Sprintf("%s/rooms", fixture.baseURL),
		http.MethodPost,
		&owner,
		createRoomRequest{Code: "abc"},
		expectStatus(t, http.StatusBadRequest),
	)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "invalid-room-code", response.Reason)
}

func Test_CreateRoom_Requires_Identity(t *testing.T) {
	_, err := sendRequest[createRoomRequest, struct{}](
		fixture.client,
		fmt.Sprintf("%s/rooms", fixture.baseURL),
		http.MethodPost,
		nil,
		createRoomRequest{Code: randomRoomCode()},
		expectStatus(t, http.StatusUnauthorized),
	)
	require.NoError(t, err)
}

func Test_JoinRoom_Adds_Player_To_Membership(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	code := createRoom(t, &owner)

	// Act
	joinRoom(t, code, &owner)

	// Assert
	room := getRoom(t, code)
	require.Len(t, room.Players, 1)
	require.Equal(t, owner.id, room.Players[0].ID)
	require.Equal(t, owner.name, room.Players[0].Name)
}

func Test_JoinRoom_Rejects_Duplicate_Join(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	code := createRoom(t, &owner)
	joinRoom(t, code, &owner)

	// Act
	response, err := sendRequest[emptyRequest, errorResponse](
		fixture.client,
		roomURL(code, "actions", "join"),
		http.MethodPut,
		&owner,
		emptyRequest{},
		expectStatus(t, http.StatusConflict),
	)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "already-in-room", response.Reason)
}

func Test_JoinRoom_Rejects_Third_Player(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	opponent := newPlayer("opponent")
	third := newPlayer("third")

	code := createRoom(t, &owner)
	joinRoom(t, code, &owner)
	joinRoom(t, code, &opponent)

	// Act
	response, err := sendRequest[emptyRequest, errorResponse](
		fixture.client,
		roomURL(code, "actions", "join"),
		http.MethodPut,
		&third,
		emptyRequest{},
		expectStatus(t, http.StatusConflict),
	)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "room-full", response.Reason)

	room := getRoom(t, code)
	require.Len(t, room.Players, 2)
}

func Test_JoinRoom_Rejects_Unknown_Room(t *testing.T) {
	p := newPlayer("lost")

	response, err := sendRequest[emptyRequest, errorResponse](
		fixture.client,
		roomURL(randomRoomCode(), "actions", "join"),
		http.MethodPut,
		&p,
		emptyRequest{},
		expectStatus(t, http.StatusNotFound),
	)

	require.NoError(t, err)
	require.Equal(t, "room-not-found", response.Reason)
}

func Test_CanJoin_Reports_Full_Room(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	opponent := newPlayer("opponent")
	third := newPlayer("third")

	code := createRoom(t, &owner)
	joinRoom(t, code, &owner)
	joinRoom(t, code, &opponent)

	type canJoinResponse struct {
		CanJoin bool   `json:"canJoin"`
		Reason  string `json:"reason"`
	}

	// Act
	response, err := sendRequest[emptyRequest, canJoinResponse](
		fixture.client,
		roomURL(code, "can-join"),
		http.MethodGet,
		&third,
		emptyRequest{},
		expectStatus(t, http.StatusOK),
	)

	// Assert
	require.NoError(t, err)
	require.False(t, response.CanJoin)
	require.Equal(t, "room-full", response.Reason)
}

func Test_RoomExists_Distinguishes_Known_And_Unknown_Codes(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	code := createRoom(t, &owner)

	type existsResponse struct {
		Exists bool
	}

	// Act + Assert
	response, err := sendRequest[emptyRequest, existsResponse](
		fixture.client,
		roomURL(code, "exists"),
		http.MethodGet,
		nil,
		emptyRequest{},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)
	require.True(t, response.Exists)

	response, err = sendRequest[emptyRequest, existsResponse](
		fixture.client,
		roomURL(randomRoomCode(), "exists"),
		http.MethodGet,
		nil,
		emptyRequest{},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)
	require.False(t, response.Exists)
}

func Test_LeaveRoom_Succeeds_For_Unknown_Room(t *testing.T) {
	p := newPlayer("drifter")

	_, err := sendRequest[emptyRequest, struct{}](
		fixture.client,
		roomURL(randomRoomCode(), "actions", "leave"),
		http.MethodPut,
		&p,
		emptyRequest{},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)
}

func Test_LeaveRoom_Last_Player_Removes_The_Room(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	code := createRoom(t, &owner)
	joinRoom(t, code, &owner)

	// Act
	_, err := sendRequest[emptyRequest, struct{}](
		fixture.client,
		roomURL(code, "actions", "leave"),
		http.MethodPut,
		&owner,
		emptyRequest{},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)

	// Assert
	type existsResponse struct {
		Exists bool
	}
	response, err := sendRequest[emptyRequest, existsResponse](
		fixture.client,
		roomURL(code, "exists"),
		http.MethodGet,
		nil,
		emptyRequest{},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)
	require.False(t, response.Exists)
}

func Test_DeleteRoom_Is_Idempotent(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	code := createRoom(t, &owner)

	// Act + Assert
	for i := 0; i < 2; i++ {
		_, err := sendRequest[emptyRequest, struct{}](
			fixture.client,
			roomURL(code),
			http.MethodDelete,
			nil,
			emptyRequest{},
			expectStatus(t, http.StatusOK),
		)
		require.NoError(t, err)
	}
}

func Test_ListRooms_Contains_Created_Room(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	code := createRoom(t, &owner)

	type roomSummary struct {
		Code          string `json:"code"`
		PlayerCount   int    `json:"playerCount"`
		IsGameStarted bool   `json:"isGameStarted"`
	}

	// Act
	rooms, err := sendRequest[emptyRequest, []roomSummary](
		fixture.client,
		fmt.Sprintf("%s/rooms", fixture.baseURL),
		http.MethodGet,
		nil,
		emptyRequest{},
		expectStatus(t, http.StatusOK),
	)

	// Assert
	require.NoError(t, err)

	var found bool
	for _, room := range rooms {
		if room.Code == code {
			found = true
			require.Zero(t, room.PlayerCount)
			require.False(t, room.IsGameStarted)
			break
		}
	}
	require.True(t, found)
}

func Test_ToggleReady_Flips_Lobby_Readiness(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	code := createRoom(t, &owner)
	joinRoom(t, code, &owner)

	// Act
	_, err := sendRequest[emptyRequest, struct{}](
		fixture.client,
		roomURL(code, "actions", "ready"),
		http.MethodPut,
		&owner,
		emptyRequest{},
		expectStatus(t, http.StatusOK),
	)
	require.NoError(t, err)

	// Assert
	room := getRoom(t, code)
	require.True(t, room.Players[0].IsReady)
}

func Test_ToggleReady_Rejects_Non_Member(t *testing.T) {
	// Arrange
	owner := newPlayer("owner")
	outsider := newPlayer("outsider")
	code := createRoom(t, &owner)
	joinRoom(t, code, &owner)

	// Act
	response, err := sendRequest[emptyRequest, errorResponse](
		fixture.client,
		roomURL(code, "actions", "ready"),
		http.MethodPut,
		&outsider,
		emptyRequest{},
		expectStatus(t, http.StatusConflict),
	)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "not-in-room", response.Reason)
}
