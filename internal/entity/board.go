package entity

import "strings"

// Size is the side length of the board.
const Size = 3

// Cell is the content of a single board square.
type Cell string

const (
	Empty   Cell = ""
	PlayerX Cell = "X"
	PlayerO Cell = "O"
)

// IsPlayer reports whether the cell holds one of the two player marks.
func (that Cell) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent returns the other player's mark. Empty has no opponent.
func (that Cell) Opponent() Cell {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return Empty
	}
}

// Board is a 3x3 grid addressed as [row][col].
type Board [Size][Size]Cell

// Move addresses a single square.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether both coordinates are on the board.
func (that Move) InBounds() bool {
	return that.Row >= 0 && that.Row < Size && that.Col >= 0 && that.Col < Size
}

// GameResult describes whether a board is terminal and who won.
type GameResult string

const (
	InProgress GameResult = "in_progress"
	XWins      GameResult = "x_wins"
	OWins      GameResult = "o_wins"
	Draw       GameResult = "draw"
)

// IsTerminal reports whether no further moves are accepted.
func (that GameResult) IsTerminal() bool {
	return that == XWins || that == OWins || that == Draw
}

// WinFor maps a winning mark to its result.
func WinFor(player Cell) GameResult {
	if player == PlayerX {
		return XWins
	}
	return OWins
}

// Lines lists the eight three-in-a-row combinations: rows, columns, then diagonals.
var Lines = [8][Size]Move{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// String renders the board as three lines, with '.' for empty squares.
func (that *Board) String() string {
	var sb strings.Builder
	for row := range Size {
		for col := range Size {
			cell := that[row][col]
			if cell == Empty {
				sb.WriteByte('.')
			} else {
				sb.WriteString(string(cell))
			}
		}
		if row < Size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
