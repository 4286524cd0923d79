package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-replay-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe-replay-backend/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-replay-backend/internal/repository"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// SessionManager owns all session transitions. A single mutex serializes
// them: one user drives one session, so there is no finer-grained locking.
type SessionManager struct {
	logger *slog.Logger

	mu          sync.Mutex
	sessionRepo sessionRepo
}

func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepo) *SessionManager {
	return &SessionManager{
		logger: logger.With("component", "session_manager"),

		sessionRepo: sessionRepo,
	}
}

// GetOrCreateSession - returns the stored session for id, or a fresh one.
// An empty id always mints a new session.
func (that *SessionManager) GetOrCreateSession(ctx context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if id == "" {
		return that.createSession(ctx, pkg.GenerateNewSessionID())
	}

	session, err := that.sessionRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return that.createSession(ctx, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return session, nil
}

// CreateSession - always starts a fresh session with a generated ID.
func (that *SessionManager) CreateSession(ctx context.Context) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.createSession(ctx, pkg.GenerateNewSessionID())
}

// PlayMove - applies one move to the session's active snapshot. A rejected
// move returns the unchanged session together with the sentinel; nothing is
// persisted in that case.
func (that *SessionManager) PlayMove(ctx context.Context, sessionID string, cell int) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.getSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err = session.PlayMove(cell); err != nil {
		return session, err
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

// JumpTo - moves the session cursor to an existing snapshot and persists
// the new cursor position.
func (that *SessionManager) JumpTo(ctx context.Context, sessionID string, index int) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.getSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err = session.JumpTo(index); err != nil {
		return session, err
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

// DeleteSession - drops a session once the presentation layer is done with
// it. Finished games are kept: the cursor can still jump back in time.
func (that *SessionManager) DeleteSession(ctx context.Context, sessionID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (that *SessionManager) createSession(ctx context.Context, id string) (*entity.Session, error) {
	session := entity.NewSession(id)

	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("created new session", "session_id", session.ID)

	return session, nil
}

func (that *SessionManager) getSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return session, nil
}
