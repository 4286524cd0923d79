package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-replay-backend/internal/apperror"
)

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""
)

// WinCombos - 3 rows, 3 columns, 2 diagonals. The order is the tie-break
// order: the first completed combo wins the scan.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is one snapshot of the 9 cells, row-major (0,1,2 / 3,4,5 / 6,7,8).
// It is an array, so assigning a Board copies it.
type Board [9]string

// Winner - returns the mark occupying the first completed combo, or
// EmptyCell if no combo is completed. A full board with no completed combo
// also returns EmptyCell: there is no separate draw result.
func Winner(board Board) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

// ApplyMove - returns a copy of board with mark placed at cell. The input
// board is never mutated; on rejection it is returned as-is.
func ApplyMove(board Board, cell int, mark string) (Board, error) {
	if cell < 0 || cell >= len(board) {
		return board, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if Winner(board) != EmptyCell {
		return board, apperror.ErrGameFinished
	}

	if board[cell] != EmptyCell {
		return board, apperror.ErrCellOccupied
	}

	// board is already a copy of the caller's value
	board[cell] = mark

	return board, nil
}
