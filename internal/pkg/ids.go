package pkg

import "github.com/google/uuid"

// GeneratePlayerID - generates a unique identifier for a player session.
func GeneratePlayerID() string {
	return uuid.NewString()
}

// GenerateGameID - generates a unique identifier for a game.
func GenerateGameID() string {
	return uuid.NewString()
}
