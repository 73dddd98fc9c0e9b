package model

import (
	"time"

	"gorm.io/datatypes"
)

// Email kinds.
const (
	EmailContract       = "contract_email"
	EmailVenueConfirm   = "venue_confirm"
	EmailPlayerConfirm  = "player_confirm"
	EmailAgentConfirm   = "agent_confirm"
	EmailSoundConfirm   = "soundtech_confirm"
	EmailStaffingDigest = "staffing_digest"
)

// Email statuses. Failures are stored as "error: <message>".
const (
	EmailStatusSent    = "sent"
	EmailStatusDryRun  = "dry-run"
	EmailStatusSkipped = "skipped-no-email"
	EmailStatusClicked = "clicked"
	EmailStatusError   = "error"
)

// EmailAudit maps email_audit, one row per outbound attempt.
type EmailAudit struct {
	ID             string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Token          string         `gorm:"type:text;not null;uniqueIndex"                 json:"token"`
	GigID          *string        `gorm:"type:uuid"                                      json:"gig_id,omitempty"`
	RecipientEmail *string        `gorm:"type:text"                                      json:"recipient_email,omitempty"`
	Kind           string         `gorm:"type:text;not null"                             json:"kind"`
	Status         string         `gorm:"type:text;not null"                             json:"status"`
	Ts             time.Time      `gorm:"not null;default:now()"                         json:"ts"`
	ClickedAt      *time.Time     `                                                      json:"clicked_at,omitempty"`
	Detail         datatypes.JSON `gorm:"type:jsonb"                                     json:"detail,omitempty"`
}

// TableName email_audit
func (EmailAudit) TableName() string { return "email_audit" }

// StaffingSubscriber maps notif_staffing_subscribers
type StaffingSubscriber struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email     string    `gorm:"type:text;not null;uniqueIndex"                 json:"email"`
	Name      *string   `gorm:"type:text"                                      json:"name,omitempty"`
	Active    bool      `gorm:"not null;default:true"                          json:"active"`
	CreatedAt time.Time `gorm:"not null;default:now()"                         json:"created_at"`
}

// TableName notif_staffing_subscribers
func (StaffingSubscriber) TableName() string { return "notif_staffing_subscribers" }

// StaffingLog maps notif_staffing_log, one row per digest run.
type StaffingLog struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RunAt       time.Time      `gorm:"not null;default:now()"                         json:"run_at"`
	Status      string         `gorm:"type:text;not null"                             json:"status"`
	Recipients  int            `gorm:"not null;default:0"                             json:"recipients"`
	GigsFlagged int            `gorm:"not null;default:0"                             json:"gigs_flagged"`
	Detail      datatypes.JSON `gorm:"type:jsonb"                                     json:"detail,omitempty"`
}

// TableName notif_staffing_log
func (StaffingLog) TableName() string { return "notif_staffing_log" }
