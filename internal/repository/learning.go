package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LearningRepository persists the bot's learned per-cell scores across
// sessions. Positive scores mark cells whose moves historically completed
// triples for the bot, negative the opposite.
type LearningRepository interface {
	Adjust(ctx context.Context, cell string, delta int) error
	Score(ctx context.Context, cell string) (int, error)
	Decay(ctx context.Context, factor float64) error
}

type dbLearning struct {
	conn *sql.DB
}

func NewLearningRepository(conn *sql.DB) LearningRepository {
	return &dbLearning{
		conn: conn,
	}
}

func (that *dbLearning) Adjust(ctx context.Context, cell string, delta int) error {
	query := `INSERT INTO ai_moves (cell, score) VALUES (?, ?)
		ON CONFLICT(cell) DO UPDATE SET score = score + excluded.score`

	if _, err := that.conn.ExecContext(ctx, query, cell, delta); err != nil {
		return fmt.Errorf("can't adjust score for cell %s: %w", cell, err)
	}

	return nil
}

func (that *dbLearning) Score(ctx context.Context, cell string) (int, error) {
	query := `SELECT score FROM ai_moves WHERE cell = ?`

	var score int
	err := that.conn.QueryRowContext(ctx, query, cell).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("can't get score for cell %s: %w", cell, err)
	}

	return score, nil
}

// Decay - multiplies every score by factor, truncating toward zero, and drops
// entries that reach zero so the table only holds cells with live experience.
func (that *dbLearning) Decay(ctx context.Context, factor float64) error {
	updateQuery := `UPDATE ai_moves SET score = CAST(score * ? AS INTEGER)`
	if _, err := that.conn.ExecContext(ctx, updateQuery, factor); err != nil {
		return fmt.Errorf("can't decay scores: %w", err)
	}

	pruneQuery := `DELETE FROM ai_moves WHERE score = 0`
	if _, err := that.conn.ExecContext(ctx, pruneQuery); err != nil {
		return fmt.Errorf("can't prune decayed scores: %w", err)
	}

	return nil
}
