package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/infinitettt-backend/internal/config"
	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
	"github.com/rocketscienceinc/infinitettt-backend/internal/repository"
	"github.com/rocketscienceinc/infinitettt-backend/internal/repository/storage"
	"github.com/rocketscienceinc/infinitettt-backend/internal/service"
	"github.com/rocketscienceinc/infinitettt-backend/internal/transport/tcp"
	"github.com/rocketscienceinc/infinitettt-backend/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLite(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
	gameRepo := repository.NewGameRepository(redisStorage.Connection)
	learningRepo := repository.NewLearningRepository(sqliteStorage.Connection)

	learningService := service.NewLearningService(learningRepo)
	if err = learningService.DecayScores(ctx); err != nil {
		return fmt.Errorf("could not decay learned scores: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // move selection is not security sensitive

	playerService := service.NewPlayerService(playerRepo)
	gameService := service.NewGameService(gameRepo)
	botService := service.NewBotService(logger, difficultyLevels(conf), learningService, rng)
	gamePlayService := service.NewGamePlayService(
		logger,
		playerService,
		gameService,
		botService,
		conf.Game.Difficulty,
		conf.Game.EnablePowerups,
		rng,
	)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, gamePlayService)
		if httpErr := restServer.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run TCP relay server
	tcpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting TCP relay server", "port", conf.SocketPort)
		tcpServer := tcp.New(logger, gamePlayService, relayGameType(conf), conf.Game.MoveTimeout)
		if tcpErr := tcpServer.Start(ctx, conf.SocketPort); tcpErr != nil {
			log.Error("TCP relay server error", "error", tcpErr)
			tcpErrCh <- tcpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-tcpErrCh:
		return fmt.Errorf("TCP relay server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func difficultyLevels(conf *config.Config) map[string]service.Level {
	return map[string]service.Level{
		service.DifficultyEasy: {
			ViewRadius: conf.Game.Levels.Easy.ViewRadius,
		},
		service.DifficultyMedium: {
			ViewRadius: conf.Game.Levels.Medium.ViewRadius,
		},
		service.DifficultyHard: {
			ViewRadius:  conf.Game.Levels.Hard.ViewRadius,
			SearchDepth: conf.Game.Levels.Hard.SearchDepth,
		},
	}
}

func relayGameType(conf *config.Config) string {
	if conf.Game.TwoPlayerMode {
		return entity.PrivateType
	}
	return entity.WithBotType
}
