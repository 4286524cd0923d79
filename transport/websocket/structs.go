package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-replay-backend/internal/entity"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload carries request fields from the client and the session state back
// to it. Cell and Index are pointers so a missing field is distinguishable
// from 0.
type Payload struct {
	SessionID string `json:"session_id,omitempty"`
	Cell      *int   `json:"cell,omitempty"`
	Index     *int   `json:"index,omitempty"`

	Session *SessionResponse `json:"session,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// SessionResponse is everything the presentation layer renders: the active
// board, the derived status string and one selectable entry per snapshot.
type SessionResponse struct {
	ID     string         `json:"id"`
	Board  entity.Board   `json:"board"`
	Status string         `json:"status"`
	Cursor int            `json:"cursor"`
	Moves  []HistoryEntry `json:"moves"`
}

type HistoryEntry struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

func newSessionResponse(session *entity.Session) *SessionResponse {
	moves := make([]HistoryEntry, len(session.History))
	for index := range session.History {
		label := "go to game start"
		if index > 0 {
			label = fmt.Sprintf("go to move #%d", index)
		}

		moves[index] = HistoryEntry{Index: index, Label: label}
	}

	return &SessionResponse{
		ID:     session.ID,
		Board:  session.CurrentBoard(),
		Status: session.Status(),
		Cursor: session.Cursor,
		Moves:  moves,
	}
}

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	length  uint64
	payload []byte
}
