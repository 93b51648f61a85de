package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
)

// decayFactor shrinks every learned score by 10% at application start, so old
// experience fades and the bot adapts to new strategies.
const decayFactor = 0.9

type LearningService interface {
	RecordMove(ctx context.Context, pos entity.Coordinate, success bool) error
	MoveScore(ctx context.Context, pos entity.Coordinate) (int, error)
	DecayScores(ctx context.Context) error
}

type learningRepo interface {
	Adjust(ctx context.Context, cell string, delta int) error
	Score(ctx context.Context, cell string) (int, error)
	Decay(ctx context.Context, factor float64) error
}

type learningService struct {
	learningRepo learningRepo
}

func NewLearningService(learningRepo learningRepo) LearningService {
	return &learningService{
		learningRepo: learningRepo,
	}
}

// RecordMove - shifts the learned score of pos up when the move completed at
// least one line and down otherwise.
func (that *learningService) RecordMove(ctx context.Context, pos entity.Coordinate, success bool) error {
	delta := -1
	if success {
		delta = 1
	}

	if err := that.learningRepo.Adjust(ctx, pos.String(), delta); err != nil {
		return fmt.Errorf("failed to adjust learned score: %w", err)
	}

	return nil
}

func (that *learningService) MoveScore(ctx context.Context, pos entity.Coordinate) (int, error) {
	score, err := that.learningRepo.Score(ctx, pos.String())
	if err != nil {
		return 0, fmt.Errorf("failed to get learned score: %w", err)
	}

	return score, nil
}

func (that *learningService) DecayScores(ctx context.Context) error {
	if err := that.learningRepo.Decay(ctx, decayFactor); err != nil {
		return fmt.Errorf("failed to decay learned scores: %w", err)
	}

	return nil
}
