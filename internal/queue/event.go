// Package queue carries post-commit side effects (mail, calendar sync) from
// the API process to the worker over RabbitMQ.
package queue

import "time"

// Job types.
const (
	JobGigSaved       = "gig.saved"
	JobVenueConfirm   = "email.venue_confirm"
	JobPlayerConfirms = "email.player_confirms"
	JobStaffingDigest = "email.staffing_digest"
)

// headerAttempt AMQP header carrying the delivery attempt, starting at 1.
const headerAttempt = "x-attempt"

// Job one side effect. GigID is empty for gig-independent jobs.
type Job struct {
	Type        string `json:"type"`
	GigID       string `json:"gig_id,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
	Created     bool   `json:"created,omitempty"`
	// MusicianIDs limits player confirmations; empty means everyone staffed.
	MusicianIDs []string `json:"musician_ids,omitempty"`
	// Recipients limits a staffing digest resend to these subscriber emails.
	Recipients []string  `json:"recipients,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
