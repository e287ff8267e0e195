// Package session is the registry of billable chat/call sessions. It
// is the single source of truth for the "does this astrologer have an
// active session" question that gates the offline transition.
package session

import (
	"context"
	"errors"
	"time"

	"astromart/internal/models"
	"astromart/internal/repositories"

	"github.com/google/uuid"
)

// Registry tracks session lifecycle: pending on request, active once
// both parties join, ended on completion. Ending twice is a no-op.
type Registry interface {
	Begin(ctx context.Context, astrologerID, userID uint, kind string) (*models.Session, error)
	Activate(ctx context.Context, sessionID string) (*models.Session, error)
	End(ctx context.Context, sessionID string) error
	Reject(ctx context.Context, sessionID string) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	HasActive(ctx context.Context, astrologerID uint, kind string) (bool, error)
}

type registry struct {
	repo repositories.ProviderRepository
}

func NewRegistry(repo repositories.ProviderRepository) Registry {
	if repo == nil {
		panic("repo is required")
	}
	return &registry{repo: repo}
}

// Begin creates a pending session. The astrologer row is locked for
// the duration of the check so a concurrent offline transition cannot
// slip between the availability read and the session write.
func (r *registry) Begin(ctx context.Context, astrologerID, userID uint, kind string) (*models.Session, error) {
	if !models.ValidSessionKind(kind) {
		return nil, ErrInvalidKind
	}

	var created *models.Session
	err := r.repo.ExecuteInTransaction(func(tx repositories.ProviderRepository) error {
		astro, err := tx.GetAstrologerForUpdate(astrologerID)
		if err != nil {
			return err
		}
		if astro.IsOffline {
			return ErrProviderOffline
		}
		created = &models.Session{
			SessionID:    uuid.NewString(),
			AstrologerID: astrologerID,
			UserID:       userID,
			Kind:         kind,
			Status:       models.SessionStatusPending,
			RatePaise:    astro.RateFor(kind),
		}
		return tx.CreateSession(created)
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return created, nil
}

// Activate moves a pending session to active once both parties have
// joined. The astrologer row lock plus the uniqueness check enforce at
// most one active session of a kind per astrologer.
func (r *registry) Activate(ctx context.Context, sessionID string) (*models.Session, error) {
	var activated *models.Session
	err := r.repo.ExecuteInTransaction(func(tx repositories.ProviderRepository) error {
		sess, err := tx.GetSessionForUpdate(sessionID)
		if err != nil {
			return err
		}
		switch sess.Status {
		case models.SessionStatusActive:
			activated = sess
			return nil
		case models.SessionStatusEnded, models.SessionStatusRejected:
			return ErrSessionClosed
		}

		astro, err := tx.GetAstrologerForUpdate(sess.AstrologerID)
		if err != nil {
			return err
		}
		if astro.IsOffline {
			return ErrProviderOffline
		}
		count, err := tx.CountActiveSessions(sess.AstrologerID, sess.Kind)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSessionExists
		}

		now := time.Now()
		sess.Status = models.SessionStatusActive
		sess.StartedAt = &now
		if err := tx.UpdateSession(sess); err != nil {
			return err
		}
		activated = sess
		return nil
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return activated, nil
}

// End closes a session. Duplicate end signals are tolerated: ending an
// already-ended session reports success so either side can signal
// first.
func (r *registry) End(ctx context.Context, sessionID string) error {
	err := r.repo.ExecuteInTransaction(func(tx repositories.ProviderRepository) error {
		sess, err := tx.GetSessionForUpdate(sessionID)
		if err != nil {
			return err
		}
		if sess.Status == models.SessionStatusEnded || sess.Status == models.SessionStatusRejected {
			return nil
		}
		now := time.Now()
		sess.Status = models.SessionStatusEnded
		sess.EndedAt = &now
		return tx.UpdateSession(sess)
	})
	return mapRepoErr(err)
}

// Reject declines a pending session.
func (r *registry) Reject(ctx context.Context, sessionID string) error {
	err := r.repo.ExecuteInTransaction(func(tx repositories.ProviderRepository) error {
		sess, err := tx.GetSessionForUpdate(sessionID)
		if err != nil {
			return err
		}
		if sess.Status == models.SessionStatusRejected {
			return nil
		}
		if sess.Status != models.SessionStatusPending {
			return ErrSessionClosed
		}
		now := time.Now()
		sess.Status = models.SessionStatusRejected
		sess.EndedAt = &now
		return tx.UpdateSession(sess)
	})
	return mapRepoErr(err)
}

func (r *registry) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	sess, err := r.repo.GetSession(sessionID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return sess, nil
}

// HasActive reads committed session state; never cached.
func (r *registry) HasActive(ctx context.Context, astrologerID uint, kind string) (bool, error) {
	count, err := r.repo.CountActiveSessions(astrologerID, kind)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, repositories.ErrAstrologerNotFound):
		return ErrProviderUnknown
	default:
		return err
	}
}
