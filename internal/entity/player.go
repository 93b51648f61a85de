package entity

type Player struct {
	ID     string `json:"id"`
	Mark   string `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`
	Bot    bool   `json:"bot,omitempty"`
}

func (that *Player) IsBot() bool {
	return that.Bot
}

func NewBotPlayer(id, gameID string) *Player {
	return &Player{
		ID:     id,
		GameID: gameID,
		Bot:    true,
	}
}
