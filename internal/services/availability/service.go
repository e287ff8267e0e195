// Package availability owns the astrologer online/offline state
// machine. Online and Offline are the primary states; the capability
// flags (chat, call, video call) are attributes written together on
// every transition so they cannot drift apart. Nothing else in the
// codebase writes these flags.
package availability

import (
	"context"
	"errors"

	"astromart/internal/models"
	"astromart/internal/repositories"
)

// Status values accepted by SetStatus.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Capability names accepted by SetCapability.
const (
	CapabilityChat      = "chat"
	CapabilityCall      = "call"
	CapabilityVideoCall = "video_call"
)

type Service interface {
	// SetStatus transitions the astrologer between online and offline.
	// Going online is always permitted. Going offline is guarded: it
	// fails with ErrActiveSession while an active chat session exists.
	SetStatus(ctx context.Context, astrologerID uint, status string) (*models.Astrologer, error)

	// SetCapability toggles a single capability flag while online.
	SetCapability(ctx context.Context, astrologerID uint, capability string, enabled bool) (*models.Astrologer, error)

	Get(ctx context.Context, astrologerID uint) (*models.Astrologer, error)
}

type service struct {
	repo repositories.ProviderRepository
}

func NewService(repo repositories.ProviderRepository) Service {
	if repo == nil {
		panic("repo is required")
	}
	return &service{repo: repo}
}

func (s *service) SetStatus(ctx context.Context, astrologerID uint, status string) (*models.Astrologer, error) {
	if status != StatusOnline && status != StatusOffline {
		return nil, ErrInvalidStatus
	}

	var updated *models.Astrologer
	err := s.repo.ExecuteInTransaction(func(tx repositories.ProviderRepository) error {
		// The row lock serializes this transition against session
		// activation, which locks the same row before creating an
		// active session. The active-session check below therefore
		// cannot be invalidated before the flag write commits.
		astro, err := tx.GetAstrologerForUpdate(astrologerID)
		if err != nil {
			return err
		}

		var flags models.Availability
		if status == StatusOffline {
			active, err := tx.CountActiveSessions(astrologerID, models.SessionKindChat)
			if err != nil {
				return err
			}
			if active > 0 {
				return ErrActiveSession
			}
			flags = models.Availability{IsOffline: true}
		} else {
			flags = models.Availability{
				IsAvailable:          true,
				IsChatAvailable:      true,
				IsCallAvailable:      true,
				IsVideoCallAvailable: true,
			}
		}

		if err := tx.UpdateAvailability(astrologerID, flags); err != nil {
			return err
		}
		astro.IsAvailable = flags.IsAvailable
		astro.IsChatAvailable = flags.IsChatAvailable
		astro.IsCallAvailable = flags.IsCallAvailable
		astro.IsVideoCallAvailable = flags.IsVideoCallAvailable
		astro.IsOffline = flags.IsOffline
		updated = astro
		return nil
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return updated, nil
}

func (s *service) SetCapability(ctx context.Context, astrologerID uint, capability string, enabled bool) (*models.Astrologer, error) {
	var updated *models.Astrologer
	err := s.repo.ExecuteInTransaction(func(tx repositories.ProviderRepository) error {
		astro, err := tx.GetAstrologerForUpdate(astrologerID)
		if err != nil {
			return err
		}
		if astro.IsOffline {
			return ErrProviderOffline
		}

		flags := astro.Availability()
		switch capability {
		case CapabilityChat:
			flags.IsChatAvailable = enabled
		case CapabilityCall:
			flags.IsCallAvailable = enabled
		case CapabilityVideoCall:
			flags.IsVideoCallAvailable = enabled
		default:
			return ErrInvalidCapability
		}

		if err := tx.UpdateAvailability(astrologerID, flags); err != nil {
			return err
		}
		astro.IsChatAvailable = flags.IsChatAvailable
		astro.IsCallAvailable = flags.IsCallAvailable
		astro.IsVideoCallAvailable = flags.IsVideoCallAvailable
		updated = astro
		return nil
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, astrologerID uint) (*models.Astrologer, error) {
	astro, err := s.repo.GetAstrologer(astrologerID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return astro, nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repositories.ErrAstrologerNotFound) {
		return ErrProviderUnknown
	}
	return err
}
