package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T) *entity.Game {
	t.Helper()

	game, err := entity.NewGame("123", entity.PlayerX)
	require.NoError(t, err)

	return game
}

func TestMakeTurn(t *testing.T) {
	t.Run("MakeTurn", func(t *testing.T) {
		// Given: a new game
		game := newGame(t)

		// When: player X makes a turn
		err := MakeTurn(game, x, 0, 0)
		require.NoError(t, err)

		// Then: the board holds the mark and the turn passes to O
		assert.Equal(t, entity.Board{{x, e, e}, {e, e, e}, {e, e, e}}, game.Board)
		assert.Equal(t, o, game.Turn)
		assert.Equal(t, entity.InProgress, game.Result)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: X already holds the corner
		game := newGame(t)
		require.NoError(t, MakeTurn(game, x, 0, 0))

		// When: player O tries to make a move to the same square
		err := MakeTurn(game, o, 0, 0)

		// Then: an invalid move error is returned and it is still O's turn
		require.ErrorIs(t, err, ErrCellOccupied)
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, entity.Board{{x, e, e}, {e, e, e}, {e, e, e}}, game.Board)
		assert.Equal(t, o, game.Turn)
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		// Given: a new game
		game := newGame(t)

		// When: player O tries to make a move when it is player X's turn
		err := MakeTurn(game, o, 0, 1)

		// Then: an error ErrNotYourTurn must be returned and the board is untouched
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, entity.Board{}, game.Board)
		assert.Equal(t, x, game.Turn)
	})

	t.Run("Invalid Cell", func(t *testing.T) {
		game := newGame(t)

		err := MakeTurn(game, x, 3, 0)

		assert.ErrorIs(t, err, ErrInvalidCell)
	})

	t.Run("Invalid Negative Cell", func(t *testing.T) {
		game := newGame(t)

		err := MakeTurn(game, x, 0, -1)

		assert.ErrorIs(t, err, ErrInvalidCell)
	})

	t.Run("Winning move finishes the game", func(t *testing.T) {
		// Given: X has two in the top row
		game := newGame(t)
		game.Board = entity.Board{{x, x, e}, {o, o, e}, {e, e, e}}

		// When: X completes the row
		err := MakeTurn(game, x, 0, 2)
		require.NoError(t, err)

		// Then: X wins and nobody is to move
		assert.Equal(t, entity.XWins, game.Result)
		assert.Equal(t, x, game.Winner())
		assert.Equal(t, e, game.Turn)
	})

	t.Run("Last move draws the game", func(t *testing.T) {
		// Given: one empty cell left and no line possible
		game := newGame(t)
		game.Board = entity.Board{{x, o, x}, {x, o, o}, {o, x, e}}

		// When: X fills it
		err := MakeTurn(game, x, 2, 2)
		require.NoError(t, err)

		// Then: the game is a draw
		assert.Equal(t, entity.Draw, game.Result)
		assert.Equal(t, "It's a draw!", game.Message())
	})

	t.Run("Move After Game Finished", func(t *testing.T) {
		// Given: a game where player X has already won
		game := newGame(t)
		game.Board = entity.Board{{x, x, x}, {e, o, e}, {e, o, e}}
		game.Result = entity.XWins
		game.Turn = o
		before := game.Board

		// When: player O tries to make a move after the game is over
		err := MakeTurn(game, o, 1, 0)

		// Then: ErrGameFinished is returned and the board is frozen
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, before, game.Board)
	})

	t.Run("Move After Tie", func(t *testing.T) {
		game := newGame(t)
		game.Result = entity.Draw

		err := MakeTurn(game, x, 1, 1)

		assert.ErrorIs(t, err, apperror.ErrGameFinished)
	})
}
