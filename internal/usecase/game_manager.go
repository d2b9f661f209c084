package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/observability"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type gameRepoDep interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type botDep interface {
	MakeTurn(game *entity.Game) (entity.Move, error)
}

// GameManager drives human-versus-bot sessions: the human moves, the bot answers,
// and finished sessions are dropped from storage.
// Turns on one session are serialized within a process; one process owns a session at a time.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepoDep
	bot      botDep

	sessionLocks sync.Map // game id -> *sync.Mutex
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepoDep, bot botDep) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo: gameRepo,
		bot:      bot,
	}
}

// NewGame starts a session. The human plays X unless humanMark says otherwise;
// when the bot holds X it makes the opening move before the game is returned.
func (that *GameManager) NewGame(ctx context.Context, humanMark entity.Cell) (*entity.Game, error) {
	if humanMark == entity.Empty {
		humanMark = entity.PlayerX
	}

	game, err := entity.NewGame(uuid.NewString(), humanMark)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if game.IsBotTurn() {
		if _, err = that.bot.MakeTurn(game); err != nil {
			return nil, fmt.Errorf("bot failed to make first turn: %w", err)
		}
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	observability.GamesStartedTotal.WithLabelValues(string(humanMark)).Inc()

	that.logger.Info("game started", "gameID", game.ID, "humanMark", humanMark)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// MakeTurn plays the human's move and, if the game goes on, the bot's reply.
func (that *GameManager) MakeTurn(ctx context.Context, id string, row, col int) (*entity.Game, error) {
	unlock := that.lockSession(id)
	defer unlock()

	game, err := that.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = tictactoe.MakeTurn(game, game.HumanMark, row, col); err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	observability.MovesTotal.WithLabelValues(observability.ActorHuman).Inc()

	if !game.IsFinished() {
		if _, err = that.bot.MakeTurn(game); err != nil {
			return nil, fmt.Errorf("bot failed to make turn: %w", err)
		}
	}

	if game.IsFinished() {
		that.finishGame(ctx, game)

		return game, nil
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// AbandonGame drops a session without finishing it.
func (that *GameManager) AbandonGame(ctx context.Context, id string) error {
	unlock := that.lockSession(id)
	defer unlock()

	defer that.sessionLocks.Delete(id)

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game abandoned", "gameID", id)

	return nil
}

// finishGame removes a finished session; its final state only lives in the returned value.
func (that *GameManager) finishGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "finishGame", "gameID", game.ID)

	observability.GamesFinishedTotal.WithLabelValues(string(game.Result)).Inc()

	that.sessionLocks.Delete(game.ID)

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
		log.Error("failed to delete game", "error", err)
	}

	log.Info("game finished", "result", game.Result)
}

// lockSession holds the session's mutex until the returned func is called.
func (that *GameManager) lockSession(id string) func() {
	value, _ := that.sessionLocks.LoadOrStore(id, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
