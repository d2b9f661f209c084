package response

import (
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Game is the wire view of a session shared by the REST and WebSocket transports.
type Game struct {
	ID        string            `json:"id"`
	Board     entity.Board      `json:"board"`
	Turn      entity.Cell       `json:"turn"`
	Result    entity.GameResult `json:"result"`
	HumanMark entity.Cell       `json:"human_mark"`
	BotMark   entity.Cell       `json:"bot_mark"`
	Message   string            `json:"message,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func NewGame(game *entity.Game) *Game {
	if game == nil {
		return nil
	}

	return &Game{
		ID:        game.ID,
		Board:     game.Board,
		Turn:      game.Turn,
		Result:    game.Result,
		HumanMark: game.HumanMark,
		BotMark:   game.BotMark,
		Message:   game.Message(),
		CreatedAt: game.CreatedAt,
		UpdatedAt: game.UpdatedAt,
	}
}

// Error is the body of every failed request.
type Error struct {
	Error string `json:"error"`
}
