package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/rocketscienceinc/infinitettt-backend/internal/apperror"
	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
	"github.com/rocketscienceinc/infinitettt-backend/internal/tictactoe"
)

const powerupLineLength = 5

var ErrPowerupsDisabled = errors.New("power-ups are disabled")

type GamePlayService interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, pos entity.Coordinate) (*entity.Game, *tictactoe.TurnResult, error)
	RequestComputerMove(ctx context.Context, gameID string) (*entity.Game, *tictactoe.TurnResult, error)
	ApplyPowerup(ctx context.Context, gameID string) (*entity.Game, []entity.Coordinate, error)

	QuitGame(ctx context.Context, playerID string) error
}

type gamePlayService struct {
	logger *slog.Logger

	playerService PlayerService
	gameService   GameService
	botService    BotService

	difficulty     string
	enablePowerups bool
	rng            *rand.Rand
}

func NewGamePlayService(
	logger *slog.Logger,
	playerService PlayerService,
	gameService GameService,
	botService BotService,
	difficulty string,
	enablePowerups bool,
	rng *rand.Rand,
) GamePlayService {
	return &gamePlayService{
		logger:         logger,
		playerService:  playerService,
		gameService:    gameService,
		botService:     botService,
		difficulty:     difficulty,
		enablePowerups: enablePowerups,
		rng:            rng,
	}
}

func (that *gamePlayService) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerService.GetOrCreatePlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create player: %w", err)
	}

	return player, nil
}

func (that *gamePlayService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

// MakeTurn - resolves one human turn and, in a bot game, the immediate bot
// reply. Rejected placements leave the game untouched and are recoverable at
// the turn boundary.
func (that *gamePlayService) MakeTurn(ctx context.Context, playerID string, pos entity.Coordinate) (*entity.Game, *tictactoe.TurnResult, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, nil, fmt.Errorf("game is not playable: %w", err)
	}

	result, err := tictactoe.MakeTurn(game, player.Mark, pos)
	if err != nil {
		return game, nil, fmt.Errorf("failed to make turn: %w", err)
	}

	if game.IsWithBot() {
		that.makeBotTurn(ctx, game)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, result, nil
}

// RequestComputerMove - the pure "computer, please move now" entry point.
// The caller (a turn timer or the move pipeline) decides when to invoke it.
func (that *gamePlayService) RequestComputerMove(ctx context.Context, gameID string) (*entity.Game, *tictactoe.TurnResult, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, nil, fmt.Errorf("game is not playable: %w", err)
	}

	botPlayer := game.BotPlayer()
	if botPlayer == nil {
		return game, nil, ErrBotNotFound
	}

	if game.Turn != botPlayer.Mark {
		return game, nil, apperror.ErrNotYourTurn
	}

	result, err := that.botService.MakeTurn(ctx, game)
	if err != nil {
		return game, nil, fmt.Errorf("bot failed to make turn: %w", err)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, result, nil
}

// ApplyPowerup - clears a random line near the origin when power-ups are
// enabled for this deployment.
func (that *gamePlayService) ApplyPowerup(ctx context.Context, gameID string) (*entity.Game, []entity.Coordinate, error) {
	if !that.enablePowerups {
		return nil, nil, ErrPowerupsDisabled
	}

	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, nil, fmt.Errorf("game is not playable: %w", err)
	}

	cleared, err := tictactoe.ClearRandomLine(game.Board, powerupLineLength, that.rng)
	if err != nil {
		return game, nil, fmt.Errorf("failed to apply power-up: %w", err)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, cleared, nil
}

func (that *gamePlayService) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == game.ID {
		return game, nil
	}

	if len(game.Players) >= 2 {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameFull, gameID)
	}

	player.GameID = game.ID
	player.Mark = entity.PlayerO
	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	game.Status = entity.StatusOngoing
	game.Players = append(game.Players, player)
	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	if player.GameID == "" {
		game, err := that.createGame(ctx, player, gameType)
		if err != nil {
			return nil, fmt.Errorf("failed to create new game: %w", err)
		}

		return game, nil
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// QuitGame - the explicit quit signal: finishes the game and detaches its
// players.
func (that *gamePlayService) QuitGame(ctx context.Context, playerID string) error {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return fmt.Errorf("failed to get game by id: %w", err)
	}

	game.Finish()
	that.cleanupGame(ctx, game)

	return nil
}

func (that *gamePlayService) createGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	game, updatedPlayer, err := that.gameService.CreateGame(ctx, player, gameType, that.difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.playerService.UpdatePlayer(ctx, updatedPlayer); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if game.IsWithBot() {
		if err = that.addBotToGame(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}
	}

	return game, nil
}

func (that *gamePlayService) addBotToGame(ctx context.Context, game *entity.Game) error {
	botPlayer := entity.NewBotPlayer("bot:"+game.ID, game.ID)

	game.Players = append(game.Players, botPlayer)
	game.Status = entity.StatusOngoing

	playerMark, botMark := game.GetRandomMarks()
	botPlayer.Mark = botMark

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		player.Mark = playerMark
		if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
			return fmt.Errorf("failed to update player: %w", err)
		}
	}

	if botMark == entity.PlayerX {
		if _, err := that.botService.MakeTurn(ctx, game); err != nil {
			return fmt.Errorf("bot failed to make first turn: %w", err)
		}
	}

	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to update game with bot: %w", err)
	}

	return nil
}

// makeBotTurn - immediate bot reply after a human move. A bot that finds no
// candidate cell skips its turn instead of failing the human's move.
func (that *gamePlayService) makeBotTurn(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "makeBotTurn", "gameID", game.ID)

	botPlayer := game.BotPlayer()
	if botPlayer == nil || game.Turn != botPlayer.Mark {
		return
	}

	if _, err := that.botService.MakeTurn(ctx, game); err != nil {
		if errors.Is(err, apperror.ErrNoMoveAvailable) {
			log.Warn("bot has no move, skipping turn")
			game.Turn = opponentOf(botPlayer.Mark)
			return
		}

		log.Error("bot failed to make turn", "error", err)
	}
}

func (that *gamePlayService) cleanupGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "cleanupGame", "gameID", game.ID)

	if err := that.gameService.DeleteGame(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		player.GameID = ""
		player.Mark = ""
		if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
			log.Error("failed to update player", "player", player.ID, "error", err)
		}
	}
}
