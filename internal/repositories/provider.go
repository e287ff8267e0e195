package repositories

import (
	"astromart/internal/models"
)

// ProviderRepository persists astrologer availability flags and the
// session set they are gated on. Both live in one transactional scope:
// the offline guard and session activation each lock the astrologer
// row, so the two writers serialize and neither can slip past the
// other's check.
type ProviderRepository interface {
	CreateAstrologer(a *models.Astrologer) error
	GetAstrologer(id uint) (*models.Astrologer, error)
	// GetAstrologerForUpdate takes a row lock; only meaningful inside
	// ExecuteInTransaction.
	GetAstrologerForUpdate(id uint) (*models.Astrologer, error)
	UpdateAvailability(astrologerID uint, av models.Availability) error

	CreateSession(s *models.Session) error
	GetSession(sessionID string) (*models.Session, error)
	GetSessionForUpdate(sessionID string) (*models.Session, error)
	UpdateSession(s *models.Session) error
	// CountActiveSessions reads committed session state; it is never
	// served from cache.
	CountActiveSessions(astrologerID uint, kind string) (int64, error)

	ExecuteInTransaction(fn func(ProviderRepository) error) error
}
