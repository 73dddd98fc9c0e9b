package dto

// SendResult outcome of one audited send.
type SendResult struct {
	Kind      string `json:"kind"`
	Recipient string `json:"recipient,omitempty"`
	Status    string `json:"status"`
	Token     string `json:"token"`
	// MusicianID set on player confirmations.
	MusicianID string `json:"musician_id,omitempty"`
	// AuditFailed the mail went out but no audit row exists for Token.
	AuditFailed bool `json:"audit_failed,omitempty"`
}

// ConfirmResponse venue or player confirmation. Queued means the sends were
// handed to the worker and Results is empty.
type ConfirmResponse struct {
	GigID   string       `json:"gig_id"`
	Queued  bool         `json:"queued"`
	Results []SendResult `json:"results,omitempty"`
}

// SubscriberRequest POST /admin/staffing-subscribers (upsert by email).
type SubscriberRequest struct {
	Email  string  `json:"email"  binding:"required,email"`
	Name   *string `json:"name"   binding:"omitempty,max=200"`
	Active *bool   `json:"active"`
}

// DigestResponse one staffing digest run.
type DigestResponse struct {
	Status      string       `json:"status"`
	Recipients  int          `json:"recipients"`
	GigsFlagged int          `json:"gigs_flagged"`
	Results     []SendResult `json:"results,omitempty"`
	Queued      bool         `json:"queued"`
}

// ConfirmRequest optional body of the confirmation endpoints. Async hands
// the sends to the worker; MusicianIDs narrows player confirmations.
type ConfirmRequest struct {
	Async       bool     `json:"async"`
	MusicianIDs []string `json:"musician_ids" binding:"omitempty,max=9,dive,uuid"`
}

// DigestRequest POST /admin/staffing-digest
type DigestRequest struct {
	Async bool `json:"async"`
}
