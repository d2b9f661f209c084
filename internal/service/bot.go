package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/observability"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

var ErrNoAvailableMoves = errors.New("no available moves")

type BotService interface {
	MakeTurn(game *entity.Game) (entity.Move, error)
}

type botService struct {
	logger  *slog.Logger
	engines map[entity.Cell]*tictactoe.Engine
}

func NewBotService(logger *slog.Logger) (BotService, error) {
	engines := make(map[entity.Cell]*tictactoe.Engine, 2)
	for _, mark := range []entity.Cell{entity.PlayerX, entity.PlayerO} {
		engine, err := tictactoe.NewEngine(mark)
		if err != nil {
			return nil, fmt.Errorf("failed to create engine for %s: %w", mark, err)
		}
		engines[mark] = engine
	}

	return &botService{
		logger:  logger.With("component", "bot"),
		engines: engines,
	}, nil
}

// MakeTurn searches the bot's best reply and plays it.
func (that *botService) MakeTurn(game *entity.Game) (entity.Move, error) {
	engine, ok := that.engines[game.BotMark]
	if !ok {
		return entity.Move{}, fmt.Errorf("%w: bot mark %q", tictactoe.ErrInvalidPlayer, game.BotMark)
	}

	start := time.Now()
	move, ok := engine.BestMove(&game.Board)
	elapsed := time.Since(start)

	if !ok {
		return entity.Move{}, ErrNoAvailableMoves
	}

	observability.BotThinkDuration.Observe(elapsed.Seconds())

	if err := tictactoe.MakeTurn(game, game.BotMark, move.Row, move.Col); err != nil {
		return entity.Move{}, fmt.Errorf("bot failed to make turn: %w", err)
	}

	observability.MovesTotal.WithLabelValues(observability.ActorBot).Inc()

	that.logger.Debug("bot moved", "gameID", game.ID, "row", move.Row, "col", move.Col, "elapsed", elapsed)

	return move, nil
}
