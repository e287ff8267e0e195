package availability

import "errors"

// Service errors
var (
	ErrInvalidStatus     = errors.New("status must be online or offline")
	ErrInvalidCapability = errors.New("unknown capability")
	ErrActiveSession     = errors.New("cannot go offline with an active chat session, end it first")
	ErrProviderOffline   = errors.New("astrologer is offline")
	ErrProviderUnknown   = errors.New("astrologer not found")
)
