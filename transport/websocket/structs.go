package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/transport/response"
)

const (
	actionGameNew   = "game:new"
	actionGameGet   = "game:get"
	actionGameTurn  = "game:turn"
	actionGameLeave = "game:leave"
	actionError     = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	GameID string      `json:"game_id,omitempty"`
	Mark   entity.Cell `json:"mark,omitempty"`
	Row    *int        `json:"row,omitempty"`
	Col    *int        `json:"col,omitempty"`
}

type ResponsePayload struct {
	GameID string         `json:"game_id,omitempty"`
	Game   *response.Game `json:"game,omitempty"`
	Error  string         `json:"error,omitempty"`
}
