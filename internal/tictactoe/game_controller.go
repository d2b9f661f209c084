package tictactoe

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// MakeTurn plays player's mark at (row, col) in a session and advances it.
func MakeTurn(gameInstance *entity.Game, player entity.Cell, row, col int) error {
	if err := gameInstance.ConfirmOngoingState(); err != nil {
		return err
	}

	if gameInstance.Turn != player {
		return apperror.ErrNotYourTurn
	}

	if err := ApplyMove(&gameInstance.Board, row, col, player); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	updateGameStatus(gameInstance, player)

	return nil
}

// updateGameStatus - recomputes the result after a move and passes the turn.
func updateGameStatus(gameInstance *entity.Game, player entity.Cell) {
	gameInstance.Result = Result(&gameInstance.Board)
	gameInstance.UpdatedAt = time.Now().UTC()

	if gameInstance.Result.IsTerminal() {
		gameInstance.Turn = entity.Empty
		return
	}

	gameInstance.Turn = player.Opponent()
}
