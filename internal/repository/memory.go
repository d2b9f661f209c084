package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type memoryGame struct {
	mu    sync.RWMutex
	games map[string]entity.Game
}

// NewMemoryGameRepository keeps sessions in process memory. Games are stored by value,
// so callers never share a *entity.Game with the store.
func NewMemoryGameRepository() GameRepository {
	return &memoryGame{
		games: make(map[string]entity.Game),
	}
}

func (that *memoryGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = *game

	return nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	game, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return &game, nil
}

func (that *memoryGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return apperror.ErrGameNotFound
	}

	delete(that.games, id)

	return nil
}
