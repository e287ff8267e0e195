package session

import (
	"context"
	"testing"

	"astromart/internal/models"
	"astromart/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProviderRepo struct {
	astrologers map[uint]models.Astrologer
	sessions    map[string]models.Session
}

func newFakeProviderRepo() *fakeProviderRepo {
	return &fakeProviderRepo{
		astrologers: map[uint]models.Astrologer{},
		sessions:    map[string]models.Session{},
	}
}

func (f *fakeProviderRepo) seedAstrologer(a models.Astrologer) {
	f.astrologers[a.ID] = a
}

func (f *fakeProviderRepo) CreateAstrologer(a *models.Astrologer) error {
	f.astrologers[a.ID] = *a
	return nil
}

func (f *fakeProviderRepo) GetAstrologer(id uint) (*models.Astrologer, error) {
	a, ok := f.astrologers[id]
	if !ok {
		return nil, repositories.ErrAstrologerNotFound
	}
	return &a, nil
}

func (f *fakeProviderRepo) GetAstrologerForUpdate(id uint) (*models.Astrologer, error) {
	return f.GetAstrologer(id)
}

func (f *fakeProviderRepo) UpdateAvailability(id uint, av models.Availability) error {
	a, ok := f.astrologers[id]
	if !ok {
		return repositories.ErrAstrologerNotFound
	}
	a.IsAvailable = av.IsAvailable
	a.IsChatAvailable = av.IsChatAvailable
	a.IsCallAvailable = av.IsCallAvailable
	a.IsVideoCallAvailable = av.IsVideoCallAvailable
	a.IsOffline = av.IsOffline
	f.astrologers[id] = a
	return nil
}

func (f *fakeProviderRepo) CreateSession(s *models.Session) error {
	f.sessions[s.SessionID] = *s
	return nil
}

func (f *fakeProviderRepo) GetSession(sessionID string) (*models.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	return &s, nil
}

func (f *fakeProviderRepo) GetSessionForUpdate(sessionID string) (*models.Session, error) {
	return f.GetSession(sessionID)
}

func (f *fakeProviderRepo) UpdateSession(s *models.Session) error {
	if _, ok := f.sessions[s.SessionID]; !ok {
		return repositories.ErrSessionNotFound
	}
	f.sessions[s.SessionID] = *s
	return nil
}

func (f *fakeProviderRepo) CountActiveSessions(astrologerID uint, kind string) (int64, error) {
	var count int64
	for _, s := range f.sessions {
		if s.AstrologerID == astrologerID && s.Kind == kind && s.Status == models.SessionStatusActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeProviderRepo) ExecuteInTransaction(fn func(repositories.ProviderRepository) error) error {
	astroSnap := make(map[uint]models.Astrologer, len(f.astrologers))
	for k, v := range f.astrologers {
		astroSnap[k] = v
	}
	sessSnap := make(map[string]models.Session, len(f.sessions))
	for k, v := range f.sessions {
		sessSnap[k] = v
	}
	if err := fn(f); err != nil {
		f.astrologers = astroSnap
		f.sessions = sessSnap
		return err
	}
	return nil
}

func onlineAstrologer(id uint) models.Astrologer {
	return models.Astrologer{
		ID:              id,
		Email:           "astro@example.com",
		Name:            "Meena",
		Phone:           "9000000000",
		ChatRatePaise:   1500,
		CallRatePaise:   2500,
		IsAvailable:     true,
		IsChatAvailable: true,
		IsCallAvailable: true,
	}
}

func TestRegistry_Begin(t *testing.T) {
	t.Run("creates a pending session at the kind's rate", func(t *testing.T) {
		repo := newFakeProviderRepo()
		repo.seedAstrologer(onlineAstrologer(1))
		reg := NewRegistry(repo)

		sess, err := reg.Begin(context.Background(), 1, 10, models.SessionKindCall)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusPending, sess.Status)
		assert.Equal(t, int64(2500), sess.RatePaise)
		assert.NotEmpty(t, sess.SessionID)
		assert.Nil(t, sess.StartedAt)
	})

	t.Run("refuses an offline astrologer", func(t *testing.T) {
		repo := newFakeProviderRepo()
		astro := onlineAstrologer(1)
		astro.IsOffline = true
		repo.seedAstrologer(astro)
		reg := NewRegistry(repo)

		_, err := reg.Begin(context.Background(), 1, 10, models.SessionKindChat)
		assert.ErrorIs(t, err, ErrProviderOffline)
	})

	t.Run("rejects an unknown kind", func(t *testing.T) {
		repo := newFakeProviderRepo()
		repo.seedAstrologer(onlineAstrologer(1))
		reg := NewRegistry(repo)

		_, err := reg.Begin(context.Background(), 1, 10, "video")
		assert.ErrorIs(t, err, ErrInvalidKind)
	})

	t.Run("reports an unknown astrologer", func(t *testing.T) {
		reg := NewRegistry(newFakeProviderRepo())
		_, err := reg.Begin(context.Background(), 99, 10, models.SessionKindChat)
		assert.ErrorIs(t, err, ErrProviderUnknown)
	})
}

func TestRegistry_Activate(t *testing.T) {
	t.Run("moves a pending session to active", func(t *testing.T) {
		repo := newFakeProviderRepo()
		repo.seedAstrologer(onlineAstrologer(1))
		reg := NewRegistry(repo)
		sess, err := reg.Begin(context.Background(), 1, 10, models.SessionKindChat)
		require.NoError(t, err)

		active, err := reg.Activate(context.Background(), sess.SessionID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusActive, active.Status)
		assert.NotNil(t, active.StartedAt)
	})

	t.Run("is idempotent on an already-active session", func(t *testing.T) {
		repo := newFakeProviderRepo()
		repo.seedAstrologer(onlineAstrologer(1))
		reg := NewRegistry(repo)
		sess, _ := reg.Begin(context.Background(), 1, 10, models.SessionKindChat)

		_, err := reg.Activate(context.Background(), sess.SessionID)
		require.NoError(t, err)
		again, err := reg.Activate(context.Background(), sess.SessionID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusActive, again.Status)
	})

	t.Run("refuses a second active session of the same kind", func(t *testing.T) {
		repo := newFakeProviderRepo()
		repo.seedAstrologer(onlineAstrologer(1))
		reg := NewRegistry(repo)

		first, _ := reg.Begin(context.Background(), 1, 10, models.SessionKindChat)
		_, err := reg.Activate(context.Background(), first.SessionID)
		require.NoError(t, err)

		second, _ := reg.Begin(context.Background(), 1, 11, models.SessionKindChat)
		_, err = reg.Activate(context.Background(), second.SessionID)
		assert.ErrorIs(t, err, ErrSessionExists)
	})

	t.Run("allows chat and call to run side by side", func(t *testing.T) {
		repo := newFakeProviderRepo()
		repo.seedAstrologer(onlineAstrologer(1))
		reg := NewRegistry(repo)

		chat, _ := reg.Begin(context.Background(), 1, 10, models.SessionKindChat)
		_, err := reg.Activate(context.Background(), chat.SessionID)
		require.NoError(t, err)

		call, _ := reg.Begin(context.Background(), 1, 11, models.SessionKindCall)
		_, err = reg.Activate(context.Background(), call.SessionID)
		assert.NoError(t, err)
	})

	t.Run("refuses a closed session", func(t *testing.T) {
		repo := newFakeProviderRepo()
		repo.seedAstrologer(onlineAstrologer(1))
		reg := NewRegistry(repo)

		sess, _ := reg.Begin(context.Background(), 1, 10, models.SessionKindChat)
		require.NoError(t, reg.End(context.Background(), sess.SessionID))

		_, err := reg.Activate(context.Background(), sess.SessionID)
		assert.ErrorIs(t, err, ErrSessionClosed)
	})

	t.Run("refuses when the astrologer went offline meanwhile", func(t *testing.T) {
		repo := newFakeProviderRepo()
		repo.seedAstrologer(onlineAstrologer(1))
		reg := NewRegistry(repo)
		sess, _ := reg.Begin(context.Background(), 1, 10, models.SessionKindChat)

		repo.UpdateAvailability(1, models.Availability{IsOffline: true})

		_, err := reg.Activate(context.Background(), sess.SessionID)
		assert.ErrorIs(t, err, ErrProviderOffline)
	})
}

func TestRegistry_End(t *testing.T) {
	repo := newFakeProviderRepo()
	repo.seedAstrologer(onlineAstrologer(1))
	reg := NewRegistry(repo)

	sess, _ := reg.Begin(context.Background(), 1, 10, models.SessionKindChat)
	_, err := reg.Activate(context.Background(), sess.SessionID)
	require.NoError(t, err)

	require.NoError(t, reg.End(context.Background(), sess.SessionID))
	ended, err := reg.Get(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusEnded, ended.Status)
	assert.NotNil(t, ended.EndedAt)

	// Either side may signal; the duplicate is a no-op.
	assert.NoError(t, reg.End(context.Background(), sess.SessionID))

	assert.ErrorIs(t, reg.End(context.Background(), "no-such-session"), ErrSessionNotFound)
}

func TestRegistry_Reject(t *testing.T) {
	repo := newFakeProviderRepo()
	repo.seedAstrologer(onlineAstrologer(1))
	reg := NewRegistry(repo)

	t.Run("declines a pending session", func(t *testing.T) {
		sess, _ := reg.Begin(context.Background(), 1, 10, models.SessionKindChat)
		require.NoError(t, reg.Reject(context.Background(), sess.SessionID))

		rejected, _ := reg.Get(context.Background(), sess.SessionID)
		assert.Equal(t, models.SessionStatusRejected, rejected.Status)

		// A repeated reject is tolerated.
		assert.NoError(t, reg.Reject(context.Background(), sess.SessionID))
	})

	t.Run("cannot reject an active session", func(t *testing.T) {
		sess, _ := reg.Begin(context.Background(), 1, 10, models.SessionKindChat)
		_, err := reg.Activate(context.Background(), sess.SessionID)
		require.NoError(t, err)

		assert.ErrorIs(t, reg.Reject(context.Background(), sess.SessionID), ErrSessionClosed)

		require.NoError(t, reg.End(context.Background(), sess.SessionID))
	})
}

func TestRegistry_HasActive(t *testing.T) {
	repo := newFakeProviderRepo()
	repo.seedAstrologer(onlineAstrologer(1))
	reg := NewRegistry(repo)

	has, err := reg.HasActive(context.Background(), 1, models.SessionKindChat)
	require.NoError(t, err)
	assert.False(t, has)

	sess, _ := reg.Begin(context.Background(), 1, 10, models.SessionKindChat)
	_, err = reg.Activate(context.Background(), sess.SessionID)
	require.NoError(t, err)

	has, err = reg.HasActive(context.Background(), 1, models.SessionKindChat)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = reg.HasActive(context.Background(), 1, models.SessionKindCall)
	require.NoError(t, err)
	assert.False(t, has)
}
