package entity

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/infinitettt-backend/internal/apperror"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

const (
	PrivateType = "private"
	WithBotType = "bot"
)

// Game is one session on the unbounded board. Lines never fill the board, so
// a game only finishes on an explicit quit; scores accumulate one point per
// cleared triple.
type Game struct {
	ID         string         `json:"id"`
	Board      *Board         `json:"board"`
	Scores     map[string]int `json:"scores"`
	Turn       string         `json:"player_turn"`
	Status     string         `json:"status"`
	Difficulty string         `json:"difficulty,omitempty"`
	LastMove   *Coordinate    `json:"last_move,omitempty"`
	Players    []*Player      `json:"players,omitempty"`
	Type       string         `json:"type,omitempty"`
}

func NewGame(id, gameType, difficulty string) *Game {
	return &Game{
		ID:         id,
		Board:      NewBoard(),
		Scores:     map[string]int{PlayerX: 0, PlayerO: 0},
		Turn:       PlayerX,
		Status:     StatusWaiting,
		Difficulty: difficulty,
		Type:       gameType,
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsPrivate() bool {
	return that.Type == PrivateType
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

// BotPlayer - returns the bot participant, or nil in a human-only game.
func (that *Game) BotPlayer() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}

	return nil
}

// Finish - moves the game to its terminal state; called on an explicit quit
// signal from a collaborator.
func (that *Game) Finish() {
	that.Status = StatusFinished
	that.Turn = ""
}

func (that *Game) GetRandomMarks() (string, string) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return PlayerX, PlayerO
	}
	return PlayerO, PlayerX
}
