package tcp

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
	"github.com/rocketscienceinc/infinitettt-backend/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type turnCall struct {
	playerID string
	pos      entity.Coordinate
}

type fakeGamePlay struct {
	mu    sync.Mutex
	game  *entity.Game
	turns []turnCall

	computerMoves int
}

func newFakeGamePlay() *fakeGamePlay {
	game := entity.NewGame("game-1", entity.WithBotType, "easy")
	game.Status = entity.StatusOngoing

	return &fakeGamePlay{game: game}
}

func (that *fakeGamePlay) GetOrCreatePlayer(_ context.Context, _ string) (*entity.Player, error) {
	return &entity.Player{ID: "player-1"}, nil
}

func (that *fakeGamePlay) GetOrCreateGame(_ context.Context, player *entity.Player, _ string) (*entity.Game, error) {
	player.GameID = that.game.ID
	return that.game, nil
}

func (that *fakeGamePlay) JoinGameByID(_ context.Context, _, _ string) (*entity.Game, error) {
	return that.game, nil
}

func (that *fakeGamePlay) GetGameByID(_ context.Context, _ string) (*entity.Game, error) {
	return that.game, nil
}

func (that *fakeGamePlay) MakeTurn(_ context.Context, playerID string, pos entity.Coordinate) (*entity.Game, *tictactoe.TurnResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.turns = append(that.turns, turnCall{playerID: playerID, pos: pos})

	return that.game, &tictactoe.TurnResult{}, nil
}

func (that *fakeGamePlay) RequestComputerMove(_ context.Context, _ string) (*entity.Game, *tictactoe.TurnResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.computerMoves++

	return that.game, &tictactoe.TurnResult{}, nil
}

func (that *fakeGamePlay) QuitGame(_ context.Context, _ string) error {
	return nil
}

func (that *fakeGamePlay) recordedTurns() []turnCall {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]turnCall(nil), that.turns...)
}

func newTestServer(gamePlay gamePlay, moveTimeout time.Duration) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, gamePlay, entity.WithBotType, moveTimeout)
}

func TestServer_HandleLine(t *testing.T) {
	t.Run("Applies a well-formed move", func(t *testing.T) {
		// Given: a registered mark holder
		fake := newFakeGamePlay()
		server := newTestServer(fake, 0)
		cl := &client{player: &entity.Player{ID: "player-1"}}

		// When: a move line arrives
		server.handleLine(context.Background(), cl, "3,-4")

		// Then: the move reaches the engine with the parsed coordinate
		turns := fake.recordedTurns()
		require.Len(t, turns, 1)
		assert.Equal(t, "player-1", turns[0].playerID)
		assert.Equal(t, entity.Coordinate{X: 3, Y: -4}, turns[0].pos)
	})

	t.Run("Rejects malformed input at the boundary", func(t *testing.T) {
		// Given: a registered mark holder
		fake := newFakeGamePlay()
		server := newTestServer(fake, 0)
		cl := &client{player: &entity.Player{ID: "player-1"}}

		// When: garbage lines arrive
		for _, line := range []string{"nonsense", "1;2", "1,2,3", "1.5,2"} {
			server.handleLine(context.Background(), cl, line)
		}

		// Then: nothing reaches the engine
		assert.Empty(t, fake.recordedTurns())
	})

	t.Run("Ignores moves from spectators", func(t *testing.T) {
		// Given: a spectator connection
		fake := newFakeGamePlay()
		server := newTestServer(fake, 0)
		cl := &client{player: &entity.Player{ID: "player-3"}, spectator: true}

		// When: the spectator sends a valid move
		server.handleLine(context.Background(), cl, "0,0")

		// Then: the move is dropped
		assert.Empty(t, fake.recordedTurns())
	})
}

func TestServer_ReadLoop(t *testing.T) {
	t.Run("Parses newline-delimited moves from the stream", func(t *testing.T) {
		// Given: a connected mark holder
		fake := newFakeGamePlay()
		server := newTestServer(fake, 0)

		local, remote := net.Pipe()
		defer local.Close()

		cl := &client{conn: remote, player: &entity.Player{ID: "player-1"}}

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = server.readLoop(context.Background(), cl)
		}()

		// When: two moves and a blank line arrive, then the peer hangs up
		_, err := local.Write([]byte("1,2\n\n-3,0\n"))
		require.NoError(t, err)
		require.NoError(t, local.Close())

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("read loop did not finish")
		}

		// Then: exactly the two moves reached the engine
		turns := fake.recordedTurns()
		require.Len(t, turns, 2)
		assert.Equal(t, entity.Coordinate{X: 1, Y: 2}, turns[0].pos)
		assert.Equal(t, entity.Coordinate{X: -3, Y: 0}, turns[1].pos)
	})

	t.Run("A partial line survives the inactivity wakeup", func(t *testing.T) {
		// Given: a connected mark holder with a short move timeout
		fake := newFakeGamePlay()
		server := newTestServer(fake, 20*time.Millisecond)
		server.gameID = fake.game.ID

		local, remote := net.Pipe()
		defer local.Close()

		cl := &client{conn: remote, player: &entity.Player{ID: "player-1"}}

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = server.readLoop(context.Background(), cl)
		}()

		// When: a move is split across the idle window
		_, err := local.Write([]byte("7,"))
		require.NoError(t, err)
		time.Sleep(100 * time.Millisecond)
		_, err = local.Write([]byte("8\n"))
		require.NoError(t, err)
		require.NoError(t, local.Close())

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("read loop did not finish")
		}

		// Then: the fragments were reassembled into one move
		turns := fake.recordedTurns()
		require.Len(t, turns, 1)
		assert.Equal(t, entity.Coordinate{X: 7, Y: 8}, turns[0].pos)
	})
}

func TestBoardPayload(t *testing.T) {
	t.Run("Renders cells as x,y,mark lines with a blank terminator", func(t *testing.T) {
		// Given: a game with three marks
		game := entity.NewGame("game-1", entity.WithBotType, "easy")
		require.NoError(t, game.Board.Place(entity.Coordinate{X: 1, Y: 0}, entity.PlayerO))
		require.NoError(t, game.Board.Place(entity.Coordinate{X: 0, Y: 0}, entity.PlayerX))
		require.NoError(t, game.Board.Place(entity.Coordinate{X: -5, Y: 2}, entity.PlayerX))

		// When: rendering the broadcast payload
		payload := boardPayload(game)

		// Then: lines come in lexicographic cell order
		assert.Equal(t, "-5,2,X\n0,0,X\n1,0,O\n\n", payload)
	})

	t.Run("An empty board is just the terminator", func(t *testing.T) {
		// Given: a fresh game
		game := entity.NewGame("game-1", entity.WithBotType, "easy")

		// Then: the payload is a lone blank line
		assert.Equal(t, "\n", boardPayload(game))
	})
}
