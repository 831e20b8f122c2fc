package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blackjack-server/internal/rng"
	"blackjack-server/pkg/playable/blackjack"
	"blackjack-server/pkg/room"
	"blackjack-server/pkg/roomstore"
	"blackjack-server/pkg/token"
	"github.com/coder/quartz"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer returns a server backed by an in-memory store
func newTestServer(t *testing.T) (*httptest.Server, *roomstore.Memory) {
	t.Helper()

	logger, _ := test.NewNullLogger()
	game, err := blackjack.NewGame(logger, blackjack.DefaultOptions(), rng.NewSeeded(1), quartz.NewMock(t))
	require.NoError(t, err)

	store := roomstore.NewMemory()
	manager := room.NewManager(logger, store, game, token.NewRoomCodes(rng.NewSeeded(2)))

	ctx, cancel := context.WithCancel(context.Background())
	ts := httptest.NewServer(NewMux(ctx, logger, manager, "v1.2.3"))
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})

	return ts, store
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int, playerID ...string) *http.Response {
	t.Helper()

	if len(playerID) > 0 {
		req.Header.Set(playerIDHeader, playerID[0])
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := ioutil.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGetWithResp(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, playerID ...string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return nil
	}

	return assertDo(t, req, respObj, statusCode, playerID...)
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, playerID ...string) {
	t.Helper()
	assertGetWithResp(t, ts, path, respObj, statusCode, playerID...)
}

func assertPostWithResp(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, playerID ...string) *http.Response {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return nil
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	return assertDo(t, req, respObj, statusCode, playerID...)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, playerID ...string) {
	t.Helper()
	assertPostWithResp(t, ts, path, payload, respObj, statusCode, playerID...)
}
