package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
	"github.com/rocketscienceinc/infinitettt-backend/internal/repository"
	"github.com/rocketscienceinc/infinitettt-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGamePlay struct {
	game       *entity.Game
	powerupErr error
	cleared    []entity.Coordinate
}

func (that *fakeGamePlay) GetGameByID(_ context.Context, id string) (*entity.Game, error) {
	if that.game == nil || that.game.ID != id {
		return nil, repository.ErrGameNotFound
	}
	return that.game, nil
}

func (that *fakeGamePlay) ApplyPowerup(_ context.Context, id string) (*entity.Game, []entity.Coordinate, error) {
	if that.powerupErr != nil {
		return nil, nil, that.powerupErr
	}
	if that.game == nil || that.game.ID != id {
		return nil, nil, repository.ErrGameNotFound
	}
	return that.game, that.cleared, nil
}

func newTestServer(gamePlay gamePlay) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, gamePlay)
}

func perform(t *testing.T, server *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	recorder := httptest.NewRecorder()
	server.Routes().ServeHTTP(recorder, httptest.NewRequest(method, target, nil))

	return recorder
}

func TestServer_Ping(t *testing.T) {
	// Given: a server without any game
	server := newTestServer(&fakeGamePlay{})

	// When: the liveness endpoint is hit
	recorder := perform(t, server, http.MethodGet, "/ping")

	// Then: it answers pong
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pong", recorder.Body.String())
}

func TestServer_GetGame(t *testing.T) {
	t.Run("Returns the stored game as JSON", func(t *testing.T) {
		// Given: an ongoing game with one mark
		game := entity.NewGame("game-1", entity.WithBotType, "medium")
		game.Status = entity.StatusOngoing
		require.NoError(t, game.Board.Place(entity.Coordinate{X: 2, Y: -7}, entity.PlayerX))

		server := newTestServer(&fakeGamePlay{game: game})

		// When: fetching the game
		recorder := perform(t, server, http.MethodGet, "/games/game-1")

		// Then: the payload carries the id, status and board
		require.Equal(t, http.StatusOK, recorder.Code)

		var payload entity.Game
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
		assert.Equal(t, "game-1", payload.ID)
		assert.Equal(t, entity.StatusOngoing, payload.Status)
		assert.Equal(t, entity.PlayerX, payload.Board.Get(entity.Coordinate{X: 2, Y: -7}))
	})

	t.Run("Answers 404 for an unknown game", func(t *testing.T) {
		// Given: a server without any game
		server := newTestServer(&fakeGamePlay{})

		// When: fetching a missing game
		recorder := perform(t, server, http.MethodGet, "/games/missing")

		// Then: the lookup fails with not found
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestServer_Snapshot(t *testing.T) {
	// Given: a game with marks inside and outside the window
	game := entity.NewGame("game-1", entity.WithBotType, "medium")
	require.NoError(t, game.Board.Place(entity.Coordinate{X: 1, Y: 2}, entity.PlayerX))
	require.NoError(t, game.Board.Place(entity.Coordinate{X: 50, Y: 50}, entity.PlayerO))
	game.Scores[entity.PlayerX] = 2

	server := newTestServer(&fakeGamePlay{game: game})

	// When: requesting a radius-3 window around (1,2)
	recorder := perform(t, server, http.MethodGet, "/games/game-1/snapshot?x=1&y=2&radius=3")

	// Then: only the cell inside the window is returned, with the scores
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload struct {
		Center entity.Coordinate `json:"center"`
		Radius int               `json:"radius"`
		Cells  []entity.Cell     `json:"cells"`
		Scores map[string]int    `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, entity.Coordinate{X: 1, Y: 2}, payload.Center)
	assert.Equal(t, 3, payload.Radius)
	require.Len(t, payload.Cells, 1)
	assert.Equal(t, entity.Coordinate{X: 1, Y: 2}, payload.Cells[0].Pos)
	assert.Equal(t, 2, payload.Scores[entity.PlayerX])
}

func TestServer_Powerup(t *testing.T) {
	t.Run("Fires the power-up and reports cleared cells", func(t *testing.T) {
		// Given: a game and a power-up that clears two cells
		game := entity.NewGame("game-1", entity.WithBotType, "medium")
		cleared := []entity.Coordinate{{X: 0, Y: 0}, {X: 1, Y: 0}}

		server := newTestServer(&fakeGamePlay{game: game, cleared: cleared})

		// When: triggering the power-up
		recorder := perform(t, server, http.MethodPost, "/games/game-1/powerup")

		// Then: the cleared cells come back with the game
		require.Equal(t, http.StatusOK, recorder.Code)

		var payload struct {
			Game    *entity.Game        `json:"game"`
			Cleared []entity.Coordinate `json:"cleared"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
		assert.Equal(t, "game-1", payload.Game.ID)
		assert.Equal(t, cleared, payload.Cleared)
	})

	t.Run("Answers 403 when power-ups are disabled", func(t *testing.T) {
		// Given: a deployment without power-ups
		server := newTestServer(&fakeGamePlay{powerupErr: service.ErrPowerupsDisabled})

		// When: triggering the power-up
		recorder := perform(t, server, http.MethodPost, "/games/game-1/powerup")

		// Then: the request is forbidden
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}
