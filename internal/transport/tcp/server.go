package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/infinitettt-backend/internal/apperror"
	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
	"github.com/rocketscienceinc/infinitettt-backend/internal/tictactoe"
)

const writeTimeout = 5 * time.Second

type gamePlay interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, pos entity.Coordinate) (*entity.Game, *tictactoe.TurnResult, error)
	RequestComputerMove(ctx context.Context, gameID string) (*entity.Game, *tictactoe.TurnResult, error)

	QuitGame(ctx context.Context, playerID string) error
}

type client struct {
	conn      net.Conn
	player    *entity.Player
	spectator bool
}

// Server relays moves for one shared game over plain TCP. The wire contract
// is one "x,y" line per move and, after every accepted move, a broadcast of
// "x,y,mark" lines terminated by a blank line. The first client opens the
// game, the second joins it in two-player mode; later clients spectate.
type Server struct {
	logger *slog.Logger

	gamePlay    gamePlay
	gameType    string
	moveTimeout time.Duration

	mu      sync.Mutex
	gameID  string
	clients map[net.Conn]*client
}

func New(logger *slog.Logger, gamePlay gamePlay, gameType string, moveTimeout time.Duration) *Server {
	return &Server{
		logger:      logger,
		gamePlay:    gamePlay,
		gameType:    gameType,
		moveTimeout: moveTimeout,
		clients:     make(map[net.Conn]*client),
	}
}

// Start - accepts relay connections until the context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	log := that.logger.With("component", "tcp")

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to accept connection: %w", err)
		}

		log.Info("client connected", "remote", conn.RemoteAddr().String())
		go that.handleConn(ctx, conn)
	}
}

func (that *Server) handleConn(ctx context.Context, conn net.Conn) {
	log := that.logger.With("method", "handleConn", "remote", conn.RemoteAddr().String())
	defer conn.Close()

	cl, err := that.register(ctx, conn)
	if err != nil {
		log.Error("failed to register client", "error", err)
		return
	}
	defer that.unregister(ctx, cl)

	if game, err := that.gamePlay.GetGameByID(ctx, cl.player.GameID); err == nil {
		that.send(cl, boardPayload(game))
	}

	if err = that.readLoop(ctx, cl); err != nil {
		log.Info("client disconnected", "error", err)
	}
}

// readLoop - reads newline-delimited moves. A partial line survives a read
// deadline wakeup: bytes are buffered until a delimiter arrives, so a message
// split across reads is never parsed early.
func (that *Server) readLoop(ctx context.Context, cl *client) error {
	reader := bufio.NewReader(cl.conn)

	var pending strings.Builder
	for {
		if ctx.Err() != nil {
			return nil
		}

		if that.moveTimeout > 0 {
			if err := cl.conn.SetReadDeadline(time.Now().Add(that.moveTimeout)); err != nil {
				return fmt.Errorf("failed to set read deadline: %w", err)
			}
		}

		chunk, err := reader.ReadString('\n')
		pending.WriteString(chunk)

		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				that.onIdle(ctx)
				continue
			}
			return fmt.Errorf("failed to read line: %w", err)
		}

		line := strings.TrimSpace(pending.String())
		pending.Reset()

		if line == "" {
			continue
		}

		that.handleLine(ctx, cl, line)
	}
}

// handleLine - parses and applies one move line. Malformed input is rejected
// here at the boundary and never reaches the engine.
func (that *Server) handleLine(ctx context.Context, cl *client, line string) {
	log := that.logger.With("method", "handleLine", "player", cl.player.ID)

	pos, err := entity.ParseCoordinate(line)
	if err != nil {
		log.Warn("rejected malformed move", "line", line)
		return
	}

	if cl.spectator {
		log.Debug("ignoring move from spectator", "cell", pos)
		return
	}

	game, _, err := that.gamePlay.MakeTurn(ctx, cl.player.ID, pos)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrCellOccupied), errors.Is(err, apperror.ErrNotYourTurn):
			log.Info("move rejected", "cell", pos, "error", err)
		default:
			log.Error("failed to make turn", "cell", pos, "error", err)
		}
		return
	}

	that.broadcast(game)
}

// onIdle - fires after the inactivity window. In a bot game with the bot's
// turn pending it asks the engine for a computer move; when it is not the
// bot's turn the request is simply declined.
func (that *Server) onIdle(ctx context.Context) {
	if that.gameType != entity.WithBotType {
		return
	}

	that.mu.Lock()
	gameID := that.gameID
	that.mu.Unlock()

	if gameID == "" {
		return
	}

	game, _, err := that.gamePlay.RequestComputerMove(ctx, gameID)
	if err != nil {
		that.logger.Debug("computer move not taken", "gameID", gameID, "error", err)
		return
	}

	that.broadcast(game)
}

func (that *Server) register(ctx context.Context, conn net.Conn) (*client, error) {
	player, err := that.gamePlay.GetOrCreatePlayer(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	cl := &client{conn: conn, player: player}

	if that.gameID == "" {
		game, err := that.gamePlay.GetOrCreateGame(ctx, player, that.gameType)
		if err != nil {
			return nil, fmt.Errorf("failed to open relay game: %w", err)
		}
		that.gameID = game.ID
	} else {
		if _, err = that.gamePlay.JoinGameByID(ctx, that.gameID, player.ID); err != nil {
			if !errors.Is(err, apperror.ErrGameFull) {
				return nil, fmt.Errorf("failed to join relay game: %w", err)
			}
			cl.spectator = true
		}
		cl.player.GameID = that.gameID
	}

	that.clients[conn] = cl

	return cl, nil
}

func (that *Server) unregister(ctx context.Context, cl *client) {
	log := that.logger.With("method", "unregister", "player", cl.player.ID)

	that.mu.Lock()
	delete(that.clients, cl.conn)
	active := that.gameID
	that.mu.Unlock()

	if cl.spectator {
		return
	}

	// A leaving mark holder ends the shared game; the next connection opens
	// a fresh one.
	if err := that.gamePlay.QuitGame(ctx, cl.player.ID); err != nil {
		log.Error("failed to quit game", "error", err)
	}

	that.mu.Lock()
	if that.gameID == active {
		that.gameID = ""
	}
	that.mu.Unlock()
}

func (that *Server) broadcast(game *entity.Game) {
	payload := boardPayload(game)

	that.mu.Lock()
	targets := make([]*client, 0, len(that.clients))
	for _, cl := range that.clients {
		targets = append(targets, cl)
	}
	that.mu.Unlock()

	for _, cl := range targets {
		that.send(cl, payload)
	}
}

func (that *Server) send(cl *client, payload string) {
	log := that.logger.With("method", "send", "player", cl.player.ID)

	if err := cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		log.Error("failed to set write deadline", "error", err)
		return
	}

	if _, err := cl.conn.Write([]byte(payload)); err != nil {
		log.Error("failed to write payload", "error", err)

		that.mu.Lock()
		delete(that.clients, cl.conn)
		that.mu.Unlock()

		_ = cl.conn.Close()
	}
}

// boardPayload - renders the board as "x,y,mark" lines terminated by a blank
// line, in lexicographic cell order so payloads are reproducible.
func boardPayload(game *entity.Game) string {
	var sb strings.Builder

	for _, cell := range game.Board.Cells() {
		sb.WriteString(cell.Pos.String())
		sb.WriteByte(',')
		sb.WriteString(cell.Mark)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	return sb.String()
}
