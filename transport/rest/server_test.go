package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxalis-games/tictactoe/internal/apperror"
	"github.com/oxalis-games/tictactoe/internal/entity"
)

var errStorageBroken = errors.New("storage broken")

// stubReader serves canned snapshots keyed by session id.
type stubReader struct {
	states map[string]entity.SessionState
	err    error
}

func (that *stubReader) State(_ context.Context, id string) (entity.SessionState, error) {
	if that.err != nil {
		return entity.SessionState{}, that.err
	}

	state, ok := that.states[id]
	if !ok {
		return entity.SessionState{}, apperror.ErrSessionNotFound
	}

	return state, nil
}

func newTestServer(reader *stubReader) *Server {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(logger, reader)
}

func TestHandlePing(t *testing.T) {
	server := newTestServer(&stubReader{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)

	server.Engine().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pong", recorder.Body.String())
}

func TestHandleSessionState(t *testing.T) {
	t.Run("returns the snapshot for a known id", func(t *testing.T) {
		// Given: a stored mid-game snapshot.
		stored := entity.SessionState{
			ID:           "abc",
			Board:        entity.Board{entity.MarkX, entity.EmptyCell, entity.EmptyCell, entity.EmptyCell, entity.MarkO},
			NextToMove:   entity.MarkX,
			Mode:         entity.ModePlayerVsComputer,
			ComputerMark: entity.MarkO,
			Status:       entity.StatusInProgress,
		}

		server := newTestServer(&stubReader{states: map[string]entity.SessionState{"abc": stored}})

		// When: the snapshot is requested.
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/api/sessions/abc", nil)

		server.Engine().ServeHTTP(recorder, request)

		// Then: the body is the JSON snapshot.
		require.Equal(t, http.StatusOK, recorder.Code)

		var got entity.SessionState
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
		assert.Equal(t, stored, got)
	})

	t.Run("answers 404 for an unknown id", func(t *testing.T) {
		server := newTestServer(&stubReader{states: map[string]entity.SessionState{}})

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/api/sessions/ghost", nil)

		server.Engine().ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "session not found")
	})

	t.Run("answers 500 when storage fails", func(t *testing.T) {
		server := newTestServer(&stubReader{err: errStorageBroken})

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/api/sessions/abc", nil)

		server.Engine().ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.NotContains(t, recorder.Body.String(), "storage broken")
	})
}
