package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	mockedUseCase "github.com/rocketscienceinc/tictactoe-engine/mocks/usecase"
)

var errRedisDown = errors.New("redis down")

const (
	x = entity.PlayerX
	o = entity.PlayerO
	e = entity.Empty
)

func newTestManager(t *testing.T) (*GameManager, *mockedUseCase.MockgameRepoDep, *mockedUseCase.MockbotDep) {
	t.Helper()

	mockGameRepo := mockedUseCase.NewMockgameRepoDep(t)
	mockBot := mockedUseCase.NewMockbotDep(t)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return NewGameManager(logger, mockGameRepo, mockBot), mockGameRepo, mockBot
}

// botPlays returns a bot stub that plays the given cell for the game's bot mark.
func botPlays(row, col int) func(*entity.Game) (entity.Move, error) {
	return func(game *entity.Game) (entity.Move, error) {
		if err := tictactoe.MakeTurn(game, game.BotMark, row, col); err != nil {
			return entity.Move{}, err
		}

		return entity.Move{Row: row, Col: col}, nil
	}
}

func TestGameManager_NewGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults the human to X", func(t *testing.T) {
		// Given: a manager whose repository accepts the game
		manager, mockGameRepo, _ := newTestManager(t)

		mockGameRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Game")).
			Return(nil).
			Once()

		// When: a game is started without a mark
		game, err := manager.NewGame(ctx, entity.Empty)

		// Then: the human holds X, moves first and the board is empty
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, x, game.HumanMark)
		assert.Equal(t, o, game.BotMark)
		assert.Equal(t, x, game.Turn)
		assert.Equal(t, entity.Board{}, game.Board)
	})

	t.Run("Bot opens when the human picks O", func(t *testing.T) {
		// Given: a bot that takes the corner
		manager, mockGameRepo, mockBot := newTestManager(t)

		mockBot.EXPECT().
			MakeTurn(mock.AnythingOfType("*entity.Game")).
			RunAndReturn(botPlays(0, 0)).
			Once()
		mockGameRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Game")).
			Return(nil).
			Once()

		// When: the human starts a game as O
		game, err := manager.NewGame(ctx, o)

		// Then: the bot has moved and it is the human's turn
		require.NoError(t, err)
		assert.Equal(t, x, game.BotMark)
		assert.Equal(t, entity.Board{{x, e, e}, {e, e, e}, {e, e, e}}, game.Board)
		assert.Equal(t, o, game.Turn)
	})

	t.Run("Rejects an unknown mark", func(t *testing.T) {
		// Given: a manager with no expectations
		manager, _, _ := newTestManager(t)

		// When: a game is started with a bogus mark
		game, err := manager.NewGame(ctx, entity.Cell("Z"))

		// Then: ErrInvalidMark is returned and nothing is stored
		require.ErrorIs(t, err, apperror.ErrInvalidMark)
		assert.Nil(t, game)
	})

	t.Run("Returns error if the repository fails", func(t *testing.T) {
		// Given: a repository that is down
		manager, mockGameRepo, _ := newTestManager(t)

		mockGameRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Game")).
			Return(errRedisDown).
			Once()

		// When: a game is started
		game, err := manager.NewGame(ctx, x)

		// Then: the storage error surfaces
		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
	})
}

func TestGameManager_GetGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the stored game", func(t *testing.T) {
		manager, mockGameRepo, _ := newTestManager(t)

		stored, err := entity.NewGame("g1", x)
		require.NoError(t, err)

		mockGameRepo.EXPECT().
			GetByID(mock.Anything, "g1").
			Return(stored, nil).
			Once()

		game, err := manager.GetGame(ctx, "g1")

		require.NoError(t, err)
		assert.Equal(t, stored, game)
	})

	t.Run("Returns ErrGameNotFound", func(t *testing.T) {
		manager, mockGameRepo, _ := newTestManager(t)

		mockGameRepo.EXPECT().
			GetByID(mock.Anything, "missing").
			Return((*entity.Game)(nil), apperror.ErrGameNotFound).
			Once()

		game, err := manager.GetGame(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, game)
	})
}

func TestGameManager_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves the game after the bot replies", func(t *testing.T) {
		// Given: a fresh game and a bot that answers in the centre
		manager, mockGameRepo, mockBot := newTestManager(t)

		stored, err := entity.NewGame("g1", x)
		require.NoError(t, err)

		mockGameRepo.EXPECT().
			GetByID(mock.Anything, "g1").
			Return(stored, nil).
			Once()
		mockBot.EXPECT().
			MakeTurn(stored).
			RunAndReturn(botPlays(1, 1)).
			Once()
		mockGameRepo.EXPECT().
			CreateOrUpdate(mock.Anything, stored).
			Return(nil).
			Once()

		// When: the human takes the corner
		game, err := manager.MakeTurn(ctx, "g1", 0, 0)

		// Then: both moves are on the board and it is the human's turn again
		require.NoError(t, err)
		assert.Equal(t, entity.Board{{x, e, e}, {e, o, e}, {e, e, e}}, game.Board)
		assert.Equal(t, x, game.Turn)
		assert.Equal(t, entity.InProgress, game.Result)
	})

	t.Run("Human win finishes and deletes the game", func(t *testing.T) {
		// Given: X has two in the top row
		manager, mockGameRepo, _ := newTestManager(t)

		stored, err := entity.NewGame("g1", x)
		require.NoError(t, err)
		stored.Board = entity.Board{{x, x, e}, {o, o, e}, {e, e, e}}

		mockGameRepo.EXPECT().
			GetByID(mock.Anything, "g1").
			Return(stored, nil).
			Once()
		mockGameRepo.EXPECT().
			DeleteByID(mock.Anything, "g1").
			Return(nil).
			Once()

		// When: the human completes the row
		game, err := manager.MakeTurn(ctx, "g1", 0, 2)

		// Then: X wins, the bot is never asked and the session is dropped
		require.NoError(t, err)
		assert.Equal(t, entity.XWins, game.Result)
		assert.Equal(t, "Player X wins!", game.Message())
	})

	t.Run("Bot win finishes the game even if it was already deleted", func(t *testing.T) {
		// Given: O threatens the middle row
		manager, mockGameRepo, mockBot := newTestManager(t)

		stored, err := entity.NewGame("g1", x)
		require.NoError(t, err)
		stored.Board = entity.Board{{x, e, e}, {o, o, e}, {x, e, e}}

		mockGameRepo.EXPECT().
			GetByID(mock.Anything, "g1").
			Return(stored, nil).
			Once()
		mockBot.EXPECT().
			MakeTurn(stored).
			RunAndReturn(botPlays(1, 2)).
			Once()
		mockGameRepo.EXPECT().
			DeleteByID(mock.Anything, "g1").
			Return(apperror.ErrGameNotFound).
			Once()

		// When: the human ignores the threat
		game, err := manager.MakeTurn(ctx, "g1", 0, 1)

		// Then: O wins and no error is reported
		require.NoError(t, err)
		assert.Equal(t, entity.OWins, game.Result)
		assert.Equal(t, o, game.Winner())
	})

	t.Run("Rejects a move on an occupied cell", func(t *testing.T) {
		// Given: the corner is taken
		manager, mockGameRepo, _ := newTestManager(t)

		stored, err := entity.NewGame("g1", x)
		require.NoError(t, err)
		stored.Board = entity.Board{{o, e, e}, {e, x, e}, {e, e, e}}

		mockGameRepo.EXPECT().
			GetByID(mock.Anything, "g1").
			Return(stored, nil).
			Once()

		// When: the human plays there
		game, err := manager.MakeTurn(ctx, "g1", 0, 0)

		// Then: ErrInvalidMove is returned and nothing is saved
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Nil(t, game)
	})

	t.Run("Returns ErrGameNotFound for unknown ids", func(t *testing.T) {
		manager, mockGameRepo, _ := newTestManager(t)

		mockGameRepo.EXPECT().
			GetByID(mock.Anything, "missing").
			Return((*entity.Game)(nil), apperror.ErrGameNotFound).
			Once()

		_, err := manager.MakeTurn(ctx, "missing", 0, 0)

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Returns error if the bot fails", func(t *testing.T) {
		manager, mockGameRepo, mockBot := newTestManager(t)

		stored, err := entity.NewGame("g1", x)
		require.NoError(t, err)

		mockGameRepo.EXPECT().
			GetByID(mock.Anything, "g1").
			Return(stored, nil).
			Once()
		mockBot.EXPECT().
			MakeTurn(stored).
			Return(entity.Move{}, tictactoe.ErrInvalidPlayer).
			Once()

		_, err = manager.MakeTurn(ctx, "g1", 2, 2)

		require.ErrorIs(t, err, tictactoe.ErrInvalidPlayer)
	})
}

func TestGameManager_MakeTurn_ConcurrentMoves(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	bot, err := service.NewBotService(logger)
	require.NoError(t, err)

	gameRepo := repository.NewMemoryGameRepository()
	manager := NewGameManager(logger, gameRepo, bot)

	for range 10 {
		// Given: a fresh game
		game, err := manager.NewGame(ctx, x)
		require.NoError(t, err)

		// When: two opposite corners are played at the same time
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, move := range []entity.Move{{Row: 0, Col: 0}, {Row: 2, Col: 2}} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = manager.MakeTurn(ctx, game.ID, move.Row, move.Col)
			}()
		}
		wg.Wait()

		// Then: both turns and both bot replies are stored
		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		stored, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, x, stored.Board[0][0])
		assert.Equal(t, x, stored.Board[2][2])

		marks := 0
		for _, row := range stored.Board {
			for _, mark := range row {
				if mark == o {
					marks++
				}
			}
		}
		assert.Equal(t, 2, marks)
	}
}

func TestGameManager_AbandonGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the game", func(t *testing.T) {
		manager, mockGameRepo, _ := newTestManager(t)

		mockGameRepo.EXPECT().
			DeleteByID(mock.Anything, "g1").
			Return(nil).
			Once()

		require.NoError(t, manager.AbandonGame(ctx, "g1"))
	})

	t.Run("Returns ErrGameNotFound", func(t *testing.T) {
		manager, mockGameRepo, _ := newTestManager(t)

		mockGameRepo.EXPECT().
			DeleteByID(mock.Anything, "missing").
			Return(apperror.ErrGameNotFound).
			Once()

		err := manager.AbandonGame(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}
