package session

import "errors"

// Registry errors
var (
	ErrInvalidKind     = errors.New("invalid session kind")
	ErrSessionNotFound = errors.New("session not found")
	ErrProviderOffline = errors.New("astrologer is offline")
	ErrSessionExists   = errors.New("astrologer already has an active session of this kind")
	ErrSessionClosed   = errors.New("session is already closed")
	ErrProviderUnknown = errors.New("astrologer not found")
)
