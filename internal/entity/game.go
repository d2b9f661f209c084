package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

var ErrUnknownGameResult = errors.New("unknown game result")

// Game is a single human-versus-bot session.
type Game struct {
	ID        string     `json:"id"`
	Board     Board      `json:"board"`
	Turn      Cell       `json:"turn"`
	Result    GameResult `json:"result"`
	HumanMark Cell       `json:"human_mark"`
	BotMark   Cell       `json:"bot_mark"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewGame creates an empty session. X always moves first.
func NewGame(id string, humanMark Cell) (*Game, error) {
	if !humanMark.IsPlayer() {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, humanMark)
	}

	now := time.Now().UTC()

	return &Game{
		ID:        id,
		Turn:      PlayerX,
		Result:    InProgress,
		HumanMark: humanMark,
		BotMark:   humanMark.Opponent(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (that *Game) IsFinished() bool {
	return that.Result.IsTerminal()
}

func (that *Game) IsBotTurn() bool {
	return !that.IsFinished() && that.Turn == that.BotMark
}

func (that *Game) ConfirmOngoingState() error {
	switch that.Result {
	case InProgress:
		return nil
	case XWins, OWins, Draw:
		return apperror.ErrGameFinished
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameResult, that.Result)
	}
}

// Winner returns the winning mark, or Empty for draws and unfinished games.
func (that *Game) Winner() Cell {
	switch that.Result {
	case XWins:
		return PlayerX
	case OWins:
		return PlayerO
	default:
		return Empty
	}
}

// Message is the end-of-game text shown to the player.
func (that *Game) Message() string {
	switch that.Result {
	case XWins, OWins:
		return fmt.Sprintf("Player %s wins!", that.Winner())
	case Draw:
		return "It's a draw!"
	default:
		return ""
	}
}
