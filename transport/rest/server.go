package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
	"github.com/rocketscienceinc/infinitettt-backend/internal/repository"
	"github.com/rocketscienceinc/infinitettt-backend/internal/service"
)

const defaultSnapshotRadius = 10

type gamePlay interface {
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	ApplyPowerup(ctx context.Context, gameID string) (*entity.Game, []entity.Coordinate, error)
}

type Server struct {
	logger   *slog.Logger
	gamePlay gamePlay
}

func New(logger *slog.Logger, gamePlay gamePlay) *Server {
	return &Server{
		logger:   logger,
		gamePlay: gamePlay,
	}
}

// Start - serves the read-only HTTP surface: liveness, game state, board
// snapshots and the power-up trigger.
func (that *Server) Start(port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/ping", that.handlePing)
	router.Get("/games/{id}", that.handleGetGame)
	router.Get("/games/{id}/snapshot", that.handleSnapshot)
	router.Post("/games/{id}/powerup", that.handlePowerup)

	return router
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) handleGetGame(w http.ResponseWriter, req *http.Request) {
	game, err := that.gamePlay.GetGameByID(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, game)
}

// handleSnapshot - ordered cells within a Chebyshev radius of a center, for
// rendering. Query params x, y and radius default to the origin window.
func (that *Server) handleSnapshot(w http.ResponseWriter, req *http.Request) {
	game, err := that.gamePlay.GetGameByID(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	center := entity.Coordinate{
		X: queryInt(req, "x", 0),
		Y: queryInt(req, "y", 0),
	}
	radius := queryInt(req, "radius", defaultSnapshotRadius)

	response := struct {
		Center entity.Coordinate `json:"center"`
		Radius int               `json:"radius"`
		Cells  []entity.Cell     `json:"cells"`
		Scores map[string]int    `json:"scores"`
	}{
		Center: center,
		Radius: radius,
		Cells:  game.Board.SnapshotNear(center, radius),
		Scores: game.Scores,
	}

	that.writeJSON(w, response)
}

func (that *Server) handlePowerup(w http.ResponseWriter, req *http.Request) {
	game, cleared, err := that.gamePlay.ApplyPowerup(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	response := struct {
		Game    *entity.Game        `json:"game"`
		Cleared []entity.Coordinate `json:"cleared"`
	}{
		Game:    game,
		Cleared: cleared,
	}

	that.writeJSON(w, response)
}

func (that *Server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrGameNotFound):
		http.Error(w, "game not found", http.StatusNotFound)
	case errors.Is(err, service.ErrPowerupsDisabled):
		http.Error(w, "power-ups are disabled", http.StatusForbidden)
	default:
		that.logger.Error("request failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func queryInt(req *http.Request, name string, fallback int) int {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return value
}
