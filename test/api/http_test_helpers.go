package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"testing"

	"github.com/akrezic/guesswho/internal/modules/core"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// player is a fixture identity. The API trusts the gateway-issued identity
// headers, so tests mint identities locally.
type player struct {
	id   uuid.UUID
	name string
}

func newPlayer(name string) player {
	return player{id: uuid.New(), name: name}
}

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomRoomCode() string {
	code := make([]byte, 6)
	for i := range code {
		code[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

type responseAssertion func(*http.Response)

func expectStatus(t *testing.T, statusCode int) responseAssertion {
	t.Helper()
	return func(resp *http.Response) {
		require.Equal(t, statusCode, resp.StatusCode)
	}
}

func sendRequest[TReq any, TResp any](
	c *http.Client,
	url string,
	method string,
	as *player,
	req TReq,
	opts ...responseAssertion,
) (TResp, error) {
	var resp TResp

	payload, err := json.Marshal(req)
	if err != nil {
		return resp, err
	}

	httpReq, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		return resp, err
	}

	if as != nil {
		httpReq.Header.Set(core.UserIDHeader, as.id.String())
		httpReq.Header.Set(core.UserNameHeader, as.name)
	}

	httpResp, err := c.Do(httpReq)
	if err != nil {
		return resp, err
	}

	for _, opt := range opts {
		opt(httpResp)
	}

	if httpResp.ContentLength > 0 {
		defer func() {
			_ = httpResp.Body.Close()
		}()

		responsePayload, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return resp, err
		}

		if err := json.Unmarshal(responsePayload, &resp); err != nil {
			return resp, err
		}
	}

	return resp, err
}

func roomURL(code string, parts ...string) string {
	url := fmt.Sprintf("%s/rooms/%s", fixture.baseURL, code)
	for _, part := range parts {
		url += "/" + part
	}
	return url
}
