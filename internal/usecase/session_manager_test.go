package usecase

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-replay-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-replay-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe-replay-backend/internal/repository"
)

var errRedisDown = errors.New("redis down")

// fakeSessionRepo - in-memory stand-in for the Redis repository.
type fakeSessionRepo struct {
	sessions map[string]*entity.Session
	updates  int
	failNext error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (that *fakeSessionRepo) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	if that.failNext != nil {
		return that.failNext
	}

	// store a deep copy, like the JSON round-trip through Redis would
	stored := *session
	stored.History = append([]entity.Board(nil), session.History...)
	that.sessions[session.ID] = &stored
	that.updates++

	return nil
}

func (that *fakeSessionRepo) GetByID(_ context.Context, id string) (*entity.Session, error) {
	stored, ok := that.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}

	session := *stored
	session.History = append([]entity.Board(nil), stored.History...)

	return &session, nil
}

func (that *fakeSessionRepo) DeleteByID(_ context.Context, id string) error {
	delete(that.sessions, id)
	return nil
}

func newTestManager(repo sessionRepo) *SessionManager {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewSessionManager(logger, repo)
}

func TestSessionManager_GetOrCreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new session when id is empty", func(t *testing.T) {
		// Given: an empty repository
		repo := newFakeSessionRepo()
		manager := newTestManager(repo)

		// When: calling GetOrCreateSession with an empty id
		session, err := manager.GetOrCreateSession(ctx, "")

		// Then: a fresh session is minted and persisted
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.Len(t, session.History, 1)
		assert.Contains(t, repo.sessions, session.ID)
	})

	t.Run("Returns the stored session for a known id", func(t *testing.T) {
		// Given: a session with one move already stored
		repo := newFakeSessionRepo()
		manager := newTestManager(repo)

		existing := entity.NewSession("session123")
		require.NoError(t, existing.PlayMove(4))
		require.NoError(t, repo.CreateOrUpdate(ctx, existing))

		// When: calling GetOrCreateSession with that id
		session, err := manager.GetOrCreateSession(ctx, "session123")

		// Then: the stored history comes back
		require.NoError(t, err)
		assert.Equal(t, existing.History, session.History)
		assert.Equal(t, 1, session.Cursor)
	})

	t.Run("Creates a session under the requested id when unknown", func(t *testing.T) {
		repo := newFakeSessionRepo()
		manager := newTestManager(repo)

		// When: calling GetOrCreateSession with an id the repo has never seen
		session, err := manager.GetOrCreateSession(ctx, "brand-new")

		// Then: a fresh session is created under that id
		require.NoError(t, err)
		assert.Equal(t, "brand-new", session.ID)
		assert.Contains(t, repo.sessions, "brand-new")
	})

	t.Run("Propagates repository failures", func(t *testing.T) {
		repo := newFakeSessionRepo()
		repo.failNext = errRedisDown
		manager := newTestManager(repo)

		// When: the repository cannot persist the new session
		session, err := manager.GetOrCreateSession(ctx, "")

		// Then: the error is wrapped and no session is returned
		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, session)
	})
}

func TestSessionManager_PlayMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Persists an accepted move", func(t *testing.T) {
		// Given: a fresh stored session
		repo := newFakeSessionRepo()
		manager := newTestManager(repo)

		_, err := manager.GetOrCreateSession(ctx, "session123")
		require.NoError(t, err)

		// When: playing the first move
		session, err := manager.PlayMove(ctx, "session123", 0)

		// Then: the move is applied and written back
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, session.CurrentBoard()[0])
		assert.Len(t, repo.sessions["session123"].History, 2)
	})

	t.Run("Rejected move is not persisted", func(t *testing.T) {
		// Given: a session with cell 0 taken
		repo := newFakeSessionRepo()
		manager := newTestManager(repo)

		_, err := manager.GetOrCreateSession(ctx, "session123")
		require.NoError(t, err)
		_, err = manager.PlayMove(ctx, "session123", 0)
		require.NoError(t, err)

		updatesBefore := repo.updates

		// When: the occupied cell is played again
		session, err := manager.PlayMove(ctx, "session123", 0)

		// Then: the sentinel surfaces, the session is unchanged and no
		// write happened
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Len(t, session.History, 2)
		assert.Equal(t, updatesBefore, repo.updates)
	})

	t.Run("Fails for an unknown session", func(t *testing.T) {
		repo := newFakeSessionRepo()
		manager := newTestManager(repo)

		// When: playing a move against a session that does not exist
		session, err := manager.PlayMove(ctx, "ghost", 0)

		// Then: the not-found error is wrapped
		require.ErrorIs(t, err, repository.ErrSessionNotFound)
		assert.Nil(t, session)
	})
}

func TestSessionManager_JumpTo(t *testing.T) {
	ctx := context.Background()

	t.Run("Persists the cursor move", func(t *testing.T) {
		// Given: a session with two moves
		repo := newFakeSessionRepo()
		manager := newTestManager(repo)

		_, err := manager.GetOrCreateSession(ctx, "session123")
		require.NoError(t, err)
		_, err = manager.PlayMove(ctx, "session123", 0)
		require.NoError(t, err)
		_, err = manager.PlayMove(ctx, "session123", 4)
		require.NoError(t, err)

		// When: jumping back to the first snapshot
		session, err := manager.JumpTo(ctx, "session123", 0)

		// Then: the cursor moved, history is intact, and the state is stored
		require.NoError(t, err)
		assert.Equal(t, 0, session.Cursor)
		assert.Len(t, session.History, 3)
		assert.Equal(t, 0, repo.sessions["session123"].Cursor)
	})

	t.Run("Out-of-range index is rejected without a write", func(t *testing.T) {
		repo := newFakeSessionRepo()
		manager := newTestManager(repo)

		_, err := manager.GetOrCreateSession(ctx, "session123")
		require.NoError(t, err)

		updatesBefore := repo.updates

		// When: jumping past the end of history
		_, err = manager.JumpTo(ctx, "session123", 5)

		// Then: the contract violation surfaces and nothing is persisted
		require.ErrorIs(t, err, apperror.ErrInvalidHistoryIndex)
		assert.Equal(t, updatesBefore, repo.updates)
		assert.Equal(t, 0, repo.sessions["session123"].Cursor)
	})
}

func TestSessionManager_DeleteSession(t *testing.T) {
	ctx := context.Background()

	repo := newFakeSessionRepo()
	manager := newTestManager(repo)

	_, err := manager.GetOrCreateSession(ctx, "session123")
	require.NoError(t, err)

	// When: the session is deleted
	err = manager.DeleteSession(ctx, "session123")

	// Then: it is gone from the repository
	require.NoError(t, err)
	assert.NotContains(t, repo.sessions, "session123")
}
