package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-replay-backend/internal/apperror"
)

// Session holds the full move history of one game and a cursor selecting the
// active snapshot. History[0] is always the empty board, snapshot k holds
// exactly k marks, and 0 <= Cursor < len(History).
type Session struct {
	ID      string  `json:"id"`
	History []Board `json:"history"`
	Cursor  int     `json:"cursor"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		History: []Board{{}},
	}
}

// CurrentBoard - the snapshot the cursor points at.
func (that *Session) CurrentBoard() Board {
	return that.History[that.Cursor]
}

// Turn - derives whose move it is from cursor parity. The turn is never
// stored: an even number of placed marks means X moves next.
func (that *Session) Turn() string {
	if that.Cursor%2 == 0 {
		return PlayerX
	}

	return PlayerO
}

// Winner - the winning mark on the active snapshot, or EmptyCell.
func (that *Session) Winner() string {
	return Winner(that.CurrentBoard())
}

// Status - derived on every read, never cached.
func (that *Session) Status() string {
	if winner := that.Winner(); winner != EmptyCell {
		return "winner: " + winner
	}

	return "next to move: " + that.Turn()
}

// PlayMove - places the mark implied by cursor parity at cell. On success
// every snapshot beyond the cursor is discarded, the new board becomes the
// last entry and the cursor moves onto it. On rejection the session is left
// untouched and the sentinel is returned.
func (that *Session) PlayMove(cell int) error {
	board, err := ApplyMove(that.CurrentBoard(), cell, that.Turn())
	if err != nil {
		return err
	}

	that.History = append(that.History[:that.Cursor+1], board)
	that.Cursor++

	return nil
}

// JumpTo - moves the cursor to an existing snapshot. History contents are
// never altered; an out-of-range index is a caller bug, not a user flow.
func (that *Session) JumpTo(index int) error {
	if index < 0 || index >= len(that.History) {
		return fmt.Errorf("%w: index %d of %d", apperror.ErrInvalidHistoryIndex, index, len(that.History))
	}

	that.Cursor = index

	return nil
}
