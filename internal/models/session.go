package models

import (
	"time"
)

// Session kinds
const (
	SessionKindChat = "chat"
	SessionKindCall = "call"
)

// Session statuses
const (
	SessionStatusPending  = "pending"
	SessionStatusActive   = "active"
	SessionStatusEnded    = "ended"
	SessionStatusRejected = "rejected"
)

// Session is a billable chat or call between a user and an astrologer.
// Created pending, active once both parties join, ended on completion.
// An astrologer holds at most one active session of a kind at a time.
type Session struct {
	ID            uint   `gorm:"primarykey"`
	SessionID     string `gorm:"uniqueIndex;not null"`
	AstrologerID  uint   `gorm:"index;not null"`
	UserID        uint   `gorm:"index;not null"`
	Kind          string `gorm:"not null"`
	Status        string `gorm:"not null;default:'pending'"`
	RatePaise     int64  `gorm:"not null"`
	BilledMinutes int    `gorm:"not null;default:0"`
	StartedAt     *time.Time
	EndedAt       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidSessionKind reports whether k is a billable session kind.
func ValidSessionKind(k string) bool {
	return k == SessionKindChat || k == SessionKindCall
}
