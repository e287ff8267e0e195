package repositories

import (
	"fmt"
	"time"

	"astromart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type providerRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) CreateAstrologer(a *models.Astrologer) error {
	if err := r.db.Create(a).Error; err != nil {
		return fmt.Errorf("failed to create astrologer: %w", err)
	}
	return nil
}

func (r *providerRepository) GetAstrologer(id uint) (*models.Astrologer, error) {
	var a models.Astrologer
	if err := r.db.First(&a, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAstrologerNotFound
		}
		return nil, fmt.Errorf("failed to get astrologer: %w", err)
	}
	return &a, nil
}

func (r *providerRepository) GetAstrologerForUpdate(id uint) (*models.Astrologer, error) {
	var a models.Astrologer
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAstrologerNotFound
		}
		return nil, fmt.Errorf("failed to lock astrologer: %w", err)
	}
	return &a, nil
}

func (r *providerRepository) UpdateAvailability(astrologerID uint, av models.Availability) error {
	result := r.db.Model(&models.Astrologer{}).
		Where("id = ?", astrologerID).
		Updates(map[string]interface{}{
			"is_available":            av.IsAvailable,
			"is_chat_available":       av.IsChatAvailable,
			"is_call_available":       av.IsCallAvailable,
			"is_video_call_available": av.IsVideoCallAvailable,
			"is_offline":              av.IsOffline,
			"updated_at":              time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAstrologerNotFound
	}
	return nil
}

func (r *providerRepository) CreateSession(s *models.Session) error {
	if err := r.db.Create(s).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *providerRepository) GetSession(sessionID string) (*models.Session, error) {
	var s models.Session
	err := r.db.Where("session_id = ?", sessionID).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *providerRepository) GetSessionForUpdate(sessionID string) (*models.Session, error) {
	var s models.Session
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ?", sessionID).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	return &s, nil
}

func (r *providerRepository) UpdateSession(s *models.Session) error {
	if err := r.db.Save(s).Error; err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func (r *providerRepository) CountActiveSessions(astrologerID uint, kind string) (int64, error) {
	var count int64
	q := r.db.Model(&models.Session{}).
		Where("astrologer_id = ? AND status = ?", astrologerID, models.SessionStatusActive)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return count, nil
}

func (r *providerRepository) ExecuteInTransaction(fn func(ProviderRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&providerRepository{db: tx})
	})
}
