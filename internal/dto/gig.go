package dto

import (
	"github.com/shopspring/decimal"

	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/repository"
)

// ── gig requests ──

// GigRequest create and full update of a gig. Private carries the
// gigs_private row and is required when IsPrivate is set.
type GigRequest struct {
	Title             *string            `json:"title"               binding:"omitempty,max=200"`
	EventDate         string             `json:"event_date"          binding:"required,datetime=2006-01-02"`
	StartTime         string             `json:"start_time"          binding:"omitempty,hhmm"`
	EndTime           string             `json:"end_time"            binding:"omitempty,hhmm"`
	Overnight         bool               `json:"overnight"`
	Fee               *decimal.Decimal   `json:"fee"`
	ContractStatus    string             `json:"contract_status"     binding:"omitempty,oneof=draft pending hold confirmed sent signed canceled"`
	VenueID           *string            `json:"venue_id"            binding:"omitempty,uuid"`
	AgentID           *string            `json:"agent_id"            binding:"omitempty,uuid"`
	SoundTechID       *string            `json:"sound_tech_id"       binding:"omitempty,uuid"`
	IsPrivate         bool               `json:"is_private"`
	BandName          *string            `json:"band_name"           binding:"omitempty,max=200"`
	PackageName       *string            `json:"package_name"        binding:"omitempty,max=200"`
	Notes             *string            `json:"notes"               binding:"omitempty,max=5000"`
	SoundProvided     bool               `json:"sound_provided"`
	SoundByVenueName  *string            `json:"sound_by_venue_name" binding:"omitempty,max=200"`
	SoundByVenuePhone *string            `json:"sound_by_venue_phone" binding:"omitempty,max=50"`
	SoundFee          *decimal.Decimal   `json:"sound_fee"`
	OvertimeRate      *decimal.Decimal   `json:"overtime_rate"`
	StaffingTarget    *int               `json:"staffing_target"     binding:"omitempty,min=0,max=30"`
	Private           *GigPrivateRequest `json:"private"`
}

// GigPrivateRequest private-event details.
type GigPrivateRequest struct {
	Organizer            *string          `json:"organizer"              binding:"omitempty,max=200"`
	EventType            *string          `json:"event_type"             binding:"omitempty,max=100"`
	Honoree              *string          `json:"honoree"                binding:"omitempty,max=200"`
	ClientName           *string          `json:"client_name"            binding:"omitempty,max=200"`
	ClientEmail          *string          `json:"client_email"           binding:"omitempty,email"`
	ClientPhone          *string          `json:"client_phone"           binding:"omitempty,max=50"`
	ClientMailingAddress *string          `json:"client_mailing_address" binding:"omitempty,max=500"`
	BandSize             *int             `json:"band_size"              binding:"omitempty,min=1,max=30"`
	NumVocalists         *int             `json:"num_vocalists"          binding:"omitempty,min=0,max=10"`
	CeremonyCoverage     bool             `json:"ceremony_coverage"`
	CocktailCoverage     bool             `json:"cocktail_coverage"`
	ReceptionStartTime   string           `json:"reception_start_time"   binding:"omitempty,hhmm"`
	ReceptionEndTime     string           `json:"reception_end_time"     binding:"omitempty,hhmm"`
	ContractTotalAmount  *decimal.Decimal `json:"contract_total_amount"`
	FinalPaymentDueDate  string           `json:"final_payment_due_date" binding:"omitempty,datetime=2006-01-02"`
	PaymentMethodNotes   *string          `json:"payment_method_notes"   binding:"omitempty,max=1000"`
	SpecialInstructions  *string          `json:"special_instructions"   binding:"omitempty,max=5000"`
}

// GigListRequest GET /gigs
type GigListRequest struct {
	PaginationRequest
	From           string `form:"from"            binding:"omitempty,datetime=2006-01-02"`
	To             string `form:"to"              binding:"omitempty,datetime=2006-01-02"`
	ContractStatus string `form:"contract_status" binding:"omitempty,oneof=draft pending hold confirmed sent signed canceled"`
	CloseoutStatus string `form:"closeout_status" binding:"omitempty,oneof=open draft closed"`
	Private        *bool  `form:"private"`
	VenueID        string `form:"venue_id"        binding:"omitempty,uuid"`
}

// DepositItem one scheduled deposit. Amount is dollars, or a percentage of
// the fee when IsPercentage is set.
type DepositItem struct {
	DueDate      string          `json:"due_date"      binding:"omitempty,datetime=2006-01-02"`
	Amount       decimal.Decimal `json:"amount"`
	IsPercentage bool            `json:"is_percentage"`
}

// DepositsRequest PUT /gigs/:id/deposits, replaces the whole schedule.
type DepositsRequest struct {
	Deposits []DepositItem `json:"deposits" binding:"max=4,dive"`
}

// StaffingAssignment a nil MusicianID clears the role.
type StaffingAssignment struct {
	Role       string  `json:"role"        binding:"required,band_role"`
	MusicianID *string `json:"musician_id" binding:"omitempty,uuid"`
}

// StaffingRequest PUT /gigs/:id/staffing. Roles not listed are left alone.
type StaffingRequest struct {
	Assignments []StaffingAssignment `json:"assignments" binding:"required,min=1,max=9,dive"`
}

// DeleteGigRequest DELETE /admin/gigs/:id
type DeleteGigRequest struct {
	PurgePayments bool `form:"purge_payments"`
}

// ── gig responses ──

// StaffingSlot one band role and who holds it.
type StaffingSlot struct {
	Role       string  `json:"role"`
	MusicianID *string `json:"musician_id,omitempty"`
	Label      string  `json:"label,omitempty"`
	Email      *string `json:"email,omitempty"`
}

// MoneySummary resolved deposit schedule against the fee.
type MoneySummary struct {
	Fee           decimal.NullDecimal `json:"fee"`
	DepositsTotal decimal.Decimal     `json:"deposits_total"`
	FinalPayment  decimal.NullDecimal `json:"final_payment"`
}

// GigDetailResponse GET /gigs/:id
type GigDetailResponse struct {
	*model.Gig
	Deposits []model.GigDeposit `json:"deposits"`
	Staffing []StaffingSlot     `json:"staffing"`
	Money    MoneySummary       `json:"money"`
}

// DeletePreviewResponse GET /admin/gigs/:id/delete-preview
type DeletePreviewResponse struct {
	GigID         string                     `json:"gig_id"`
	Title         *string                    `json:"title,omitempty"`
	EventDate     string                     `json:"event_date"`
	Counts        *repository.GigChildCounts `json:"counts"`
	RequiresPurge bool                       `json:"requires_purge"`
}

// DeleteGigResponse DELETE /admin/gigs/:id
type DeleteGigResponse struct {
	GigID           string `json:"gig_id"`
	PaymentsDeleted int64  `json:"payments_deleted"`
}
