package models

import (
	"time"
)

// Availability is the astrologer's capability flag set. The flags are
// written together on every online/offline transition so they cannot
// drift apart; only the availability service mutates them.
type Availability struct {
	IsAvailable          bool `json:"is_available"`
	IsChatAvailable      bool `json:"is_chat_available"`
	IsCallAvailable      bool `json:"is_call_available"`
	IsVideoCallAvailable bool `json:"is_video_call_available"`
	IsOffline            bool `json:"is_offline"`
}

// Astrologer is a service provider on the platform. New astrologers
// start offline.
type Astrologer struct {
	ID            uint   `gorm:"primarykey"`
	Email         string `gorm:"uniqueIndex;not null"`
	Password      string `gorm:"not null"`
	Name          string `gorm:"not null"`
	Phone         string `gorm:"uniqueIndex;not null"`
	Specialities  string
	ChatRatePaise int64 `gorm:"not null;default:0"`
	CallRatePaise int64 `gorm:"not null;default:0"`

	IsAvailable          bool `gorm:"not null;default:false"`
	IsChatAvailable      bool `gorm:"not null;default:false"`
	IsCallAvailable      bool `gorm:"not null;default:false"`
	IsVideoCallAvailable bool `gorm:"not null;default:false"`
	IsOffline            bool `gorm:"not null;default:true"`

	TokenVersion int    `gorm:"default:1"`
	Status       string `gorm:"default:'active'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Availability returns the current flag set.
func (a *Astrologer) Availability() Availability {
	return Availability{
		IsAvailable:          a.IsAvailable,
		IsChatAvailable:      a.IsChatAvailable,
		IsCallAvailable:      a.IsCallAvailable,
		IsVideoCallAvailable: a.IsVideoCallAvailable,
		IsOffline:            a.IsOffline,
	}
}

// RateFor returns the per-minute rate for a session kind.
func (a *Astrologer) RateFor(kind string) int64 {
	if kind == SessionKindCall {
		return a.CallRatePaise
	}
	return a.ChatRatePaise
}
