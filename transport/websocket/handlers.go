package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-replay-backend/internal/apperror"
)

func (that *Server) handleConnect(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := unmarshalPayload(msg)
	if err != nil {
		return err
	}

	session, err := that.sessions.GetOrCreateSession(ctx, payloadReq.SessionID)
	if err != nil {
		log.Error("failed to get or create session", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to get or create session")
	}

	if err = that.sendMessage(bufrw, msg.Action, Payload{Session: newSessionResponse(session)}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected session", "session_id", session.ID)

	return nil
}

func (that *Server) handleNewSession(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleNewSession")

	session, err := that.sessions.CreateSession(ctx)
	if err != nil {
		log.Error("failed to create session", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to create session")
	}

	if err = that.sendMessage(bufrw, msg.Action, Payload{Session: newSessionResponse(session)}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("started new session", "session_id", session.ID)

	return nil
}

func (that *Server) handleMove(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleMove")

	payloadReq, err := unmarshalPayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.SessionID == "" || payloadReq.Cell == nil {
		log.Error("session_id or cell is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "session_id and cell are required")
	}

	session, err := that.sessions.PlayMove(ctx, payloadReq.SessionID, *payloadReq.Cell)

	// A rejected move is a silent no-op: the unchanged state is re-sent and
	// the click has no visible effect.
	if isMoveRejected(err) {
		log.Debug("move rejected", "session_id", payloadReq.SessionID, "cell", *payloadReq.Cell, "reason", err)
		return that.sendMessage(bufrw, msg.Action, Payload{Session: newSessionResponse(session)})
	}

	if err != nil {
		log.Error("failed to play move", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to play move")
	}

	return that.sendMessage(bufrw, msg.Action, Payload{Session: newSessionResponse(session)})
}

func (that *Server) handleJump(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleJump")

	payloadReq, err := unmarshalPayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.SessionID == "" || payloadReq.Index == nil {
		log.Error("session_id or index is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "session_id and index are required")
	}

	session, err := that.sessions.JumpTo(ctx, payloadReq.SessionID, *payloadReq.Index)
	if err != nil {
		// the client only ever offers indices it was handed, so this is a
		// client bug rather than a user flow
		log.Error("failed to jump", "session_id", payloadReq.SessionID, "index", *payloadReq.Index, "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to jump to history index")
	}

	return that.sendMessage(bufrw, msg.Action, Payload{Session: newSessionResponse(session)})
}

func unmarshalPayload(msg *Message) (*Payload, error) {
	var payload Payload

	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}

func isMoveRejected(err error) bool {
	return errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrInvalidCell)
}
