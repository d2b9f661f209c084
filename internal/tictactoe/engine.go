package tictactoe

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var (
	ErrCellOccupied  = fmt.Errorf("%w: cell is already occupied", apperror.ErrInvalidMove)
	ErrInvalidCell   = fmt.Errorf("%w: invalid cell index", apperror.ErrInvalidMove)
	ErrInvalidPlayer = fmt.Errorf("%w: invalid player", apperror.ErrInvalidMove)

	errNoPlayer = errors.New("engine needs a player mark")
)

const (
	scoreWin  = 1
	scoreLoss = -1
	scoreDraw = 0
)

// Engine plays one side of the game with exhaustive minimax.
// It holds no board state, so a single value can serve any number of boards.
type Engine struct {
	ai       entity.Cell
	opponent entity.Cell
}

// NewEngine returns an engine that maximizes for the given mark.
func NewEngine(ai entity.Cell) (*Engine, error) {
	if !ai.IsPlayer() {
		return nil, fmt.Errorf("%w: %q", errNoPlayer, ai)
	}

	return &Engine{ai: ai, opponent: ai.Opponent()}, nil
}

// Mark returns the mark the engine plays.
func (that *Engine) Mark() entity.Cell {
	return that.ai
}

// ApplyMove places player at (row, col). A rejected move leaves the board untouched.
func ApplyMove(board *entity.Board, row, col int, player entity.Cell) error {
	if !player.IsPlayer() {
		return fmt.Errorf("%w: %q", ErrInvalidPlayer, player)
	}

	if !(entity.Move{Row: row, Col: col}).InBounds() {
		return fmt.Errorf("%w: (%d, %d)", ErrInvalidCell, row, col)
	}

	if board[row][col] != entity.Empty {
		return fmt.Errorf("%w: (%d, %d)", ErrCellOccupied, row, col)
	}

	board[row][col] = player

	return nil
}

// IsWinner reports whether player owns a full row, column or diagonal.
func IsWinner(board *entity.Board, player entity.Cell) bool {
	for _, line := range entity.Lines {
		a, b, c := line[0], line[1], line[2]
		if board[a.Row][a.Col] == player && board[b.Row][b.Col] == player && board[c.Row][c.Col] == player {
			return true
		}
	}

	return false
}

// IsFull reports whether no empty cells remain.
func IsFull(board *entity.Board) bool {
	for row := range entity.Size {
		for col := range entity.Size {
			if board[row][col] == entity.Empty {
				return false
			}
		}
	}

	return true
}

// Result classifies the board. A win takes precedence over a full board.
func Result(board *entity.Board) entity.GameResult {
	switch {
	case IsWinner(board, entity.PlayerX):
		return entity.XWins
	case IsWinner(board, entity.PlayerO):
		return entity.OWins
	case IsFull(board):
		return entity.Draw
	default:
		return entity.InProgress
	}
}

// LegalMoves returns the empty cells in row-major order.
func LegalMoves(board *entity.Board) []entity.Move {
	moves := make([]entity.Move, 0, entity.Size*entity.Size)
	for row := range entity.Size {
		for col := range entity.Size {
			if board[row][col] == entity.Empty {
				moves = append(moves, entity.Move{Row: row, Col: col})
			}
		}
	}

	return moves
}

// BestMove returns the first legal move, in row-major order, with the highest minimax score.
// ok is false when the board has no empty cells.
func (that *Engine) BestMove(board *entity.Board) (entity.Move, bool) {
	var (
		best      entity.Move
		bestScore int
		found     bool
	)

	for _, move := range LegalMoves(board) {
		board[move.Row][move.Col] = that.ai
		score := that.Minimax(board, false)
		board[move.Row][move.Col] = entity.Empty

		// strict comparison keeps the earliest move on ties
		if !found || score > bestScore {
			best, bestScore, found = move, score, true
		}
	}

	return best, found
}

// Minimax scores the board from the engine's point of view: +1 win, -1 loss, 0 draw.
// maximizing selects whose turn it is: the engine's when true, the opponent's otherwise.
// Every move tried during the search is retracted before returning.
func (that *Engine) Minimax(board *entity.Board, maximizing bool) int {
	if IsWinner(board, that.ai) {
		return scoreWin
	}

	if IsWinner(board, that.opponent) {
		return scoreLoss
	}

	if IsFull(board) {
		return scoreDraw
	}

	player, best := that.opponent, scoreWin+1
	if maximizing {
		player, best = that.ai, scoreLoss-1
	}

	for _, move := range LegalMoves(board) {
		board[move.Row][move.Col] = player
		score := that.Minimax(board, !maximizing)
		board[move.Row][move.Col] = entity.Empty

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}
