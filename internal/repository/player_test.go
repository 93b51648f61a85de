package repository_test

import (
	"testing"

	"github.com/rocketscienceinc/infinitettt-backend/internal/entity"
	"github.com/rocketscienceinc/infinitettt-backend/internal/repository"
	"github.com/rocketscienceinc/infinitettt-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository(t *testing.T) {
	ctx, s := suite.New(t)
	repo := repository.NewPlayerRepository(s.Storage)

	t.Run("Stores and restores a player", func(t *testing.T) {
		// Given: a player attached to a game
		player := &entity.Player{ID: "player-1", Mark: entity.PlayerX, GameID: "game-1"}

		// When: the player makes a storage round trip
		require.NoError(t, repo.CreateOrUpdate(ctx, player))
		restored, err := repo.GetByID(ctx, player.ID)

		// Then: all fields survive
		require.NoError(t, err)
		assert.Equal(t, player, restored)
	})

	t.Run("Updates an existing player in place", func(t *testing.T) {
		// Given: a stored player
		player := &entity.Player{ID: "player-2", Mark: entity.PlayerO, GameID: "game-1"}
		require.NoError(t, repo.CreateOrUpdate(ctx, player))

		// When: the player is detached and stored again
		player.GameID = ""
		player.Mark = ""
		require.NoError(t, repo.CreateOrUpdate(ctx, player))

		// Then: the stored copy reflects the detachment
		restored, err := repo.GetByID(ctx, player.ID)
		require.NoError(t, err)
		assert.Equal(t, "", restored.GameID)
		assert.Equal(t, "", restored.Mark)
	})

	t.Run("Returns ErrPlayerNotFound for an unknown id", func(t *testing.T) {
		// When: fetching a player that was never stored
		_, err := repo.GetByID(ctx, "missing")

		// Then: the sentinel comes back
		assert.ErrorIs(t, err, repository.ErrPlayerNotFound)
	})
}
