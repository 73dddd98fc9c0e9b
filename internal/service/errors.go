package service

import "errors"

// ── shared lookup errors ──

var (
	ErrGigNotFound       = errors.New("gig not found")
	ErrVenueNotFound     = errors.New("venue not found")
	ErrAgentNotFound     = errors.New("agent not found")
	ErrMusicianNotFound  = errors.New("musician not found")
	ErrSoundTechNotFound = errors.New("sound tech not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
)
