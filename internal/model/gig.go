package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Contract workflow of a gig.
const (
	ContractDraft     = "draft"
	ContractPending   = "pending"
	ContractHold      = "hold"
	ContractConfirmed = "confirmed"
	ContractSent      = "sent"
	ContractSigned    = "signed"
	ContractCanceled  = "canceled"
)

// ContractStatuses every allowed gigs.contract_status.
var ContractStatuses = []string{
	ContractDraft, ContractPending, ContractHold, ContractConfirmed,
	ContractSent, ContractSigned, ContractCanceled,
}

// Closeout workflow of a gig.
const (
	CloseoutOpen   = "open"
	CloseoutDraft  = "draft"
	CloseoutClosed = "closed"
)

// DefaultStaffingTarget one player per band role.
const DefaultStaffingTarget = 9

// Gig maps gigs, the aggregate root.
//
// fee and is_private are canonical. total_fee and private_flag are frozen
// legacy mirrors: GORM never writes them (`->`), and a trigger rejects any
// write that tries.
type Gig struct {
	ID                 string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title              *string             `gorm:"type:text"                                      json:"title,omitempty"`
	EventDate          time.Time           `gorm:"type:date;not null"                             json:"event_date"`
	StartTime          *string             `gorm:"type:time"                                      json:"start_time,omitempty"`
	EndTime            *string             `gorm:"type:time"                                      json:"end_time,omitempty"`
	Overnight          bool                `gorm:"not null;default:false"                         json:"overnight"`
	Fee                decimal.NullDecimal `gorm:"type:numeric(12,2)"                             json:"fee"`
	TotalFee           decimal.NullDecimal `gorm:"type:numeric(12,2);->"                          json:"-"`
	ContractStatus     string              `gorm:"type:text;not null;default:pending"             json:"contract_status"`
	CloseoutStatus     string              `gorm:"type:text;not null;default:open"                json:"closeout_status"`
	VenueID            *string             `gorm:"type:uuid"                                      json:"venue_id,omitempty"`
	AgentID            *string             `gorm:"type:uuid"                                      json:"agent_id,omitempty"`
	SoundTechID        *string             `gorm:"type:uuid"                                      json:"sound_tech_id,omitempty"`
	IsPrivate          bool                `gorm:"not null;default:false"                         json:"is_private"`
	PrivateFlag        *bool               `gorm:"->"                                             json:"-"`
	BandName           *string             `gorm:"type:text"                                      json:"band_name,omitempty"`
	PackageName        *string             `gorm:"type:text"                                      json:"package_name,omitempty"`
	Notes              *string             `gorm:"type:text"                                      json:"notes,omitempty"`
	SoundProvided      bool                `gorm:"not null;default:false"                         json:"sound_provided"`
	SoundByVenueName   *string             `gorm:"type:text"                                      json:"sound_by_venue_name,omitempty"`
	SoundByVenuePhone  *string             `gorm:"type:text"                                      json:"sound_by_venue_phone,omitempty"`
	SoundFee           decimal.NullDecimal `gorm:"type:numeric(12,2)"                             json:"sound_fee"`
	OvertimeRate       decimal.NullDecimal `gorm:"type:numeric(12,2)"                             json:"overtime_rate"`
	StaffingTarget     int                 `gorm:"type:smallint;not null;default:9"               json:"staffing_target"`
	FinalVenueGross    decimal.NullDecimal `gorm:"type:numeric(12,2)"                             json:"final_venue_gross"`
	FinalVenuePaidDate *time.Time          `gorm:"type:date"                                      json:"final_venue_paid_date,omitempty"`
	CloseoutNotes      *string             `gorm:"type:text"                                      json:"closeout_notes,omitempty"`
	CloseoutAt         *time.Time          `                                                      json:"closeout_at,omitempty"`
	Timestamps

	Venue     *Venue      `gorm:"foreignKey:VenueID"     json:"venue,omitempty"`
	Agent     *Agent      `gorm:"foreignKey:AgentID"     json:"agent,omitempty"`
	SoundTech *SoundTech  `gorm:"foreignKey:SoundTechID" json:"sound_tech,omitempty"`
	Private   *GigPrivate `gorm:"foreignKey:GigID"       json:"private,omitempty"`
}

// TableName gigs
func (Gig) TableName() string { return "gigs" }

// PrivateEvent reports whether the gig needs its gigs_private row. Migration
// 000004 copied private_flag into is_private, so is_private alone decides and
// a historical private gig can be made public.
func (g *Gig) PrivateEvent() bool {
	return g.IsPrivate
}

// TotalFeeValue the canonical fee, falling back to the legacy mirror.
func (g *Gig) TotalFeeValue() decimal.NullDecimal {
	if g.Fee.Valid {
		return g.Fee
	}
	return g.TotalFee
}

// HasSound sound is covered by a booked tech or the venue's own engineer.
func (g *Gig) HasSound() bool {
	return g.SoundTechID != nil ||
		FirstNonEmpty(StrVal(g.SoundByVenueName), StrVal(g.SoundByVenuePhone)) != ""
}

// ParseClock accepts "15:04" and "15:04:05".
func ParseClock(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Window the performance start and end in loc. An overnight gig, or one whose
// end is not after its start, ends on the following day. ok is false when
// either time is missing.
func (g *Gig) Window(loc *time.Location) (start, end time.Time, ok bool) {
	st, ok1 := ParseClock(StrVal(g.StartTime))
	et, ok2 := ParseClock(StrVal(g.EndTime))
	if !ok1 || !ok2 {
		return time.Time{}, time.Time{}, false
	}
	y, m, d := g.EventDate.Date()
	start = time.Date(y, m, d, st.Hour(), st.Minute(), st.Second(), 0, loc)
	end = time.Date(y, m, d, et.Hour(), et.Minute(), et.Second(), 0, loc)
	if g.Overnight || !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, true
}

// GigPrivate maps gigs_private, one-to-one extension keyed by gig id.
type GigPrivate struct {
	GigID                string              `gorm:"type:uuid;primaryKey"   json:"gig_id"`
	Organizer            *string             `gorm:"type:text"              json:"organizer,omitempty"`
	EventType            *string             `gorm:"type:text"              json:"event_type,omitempty"`
	Honoree              *string             `gorm:"type:text"              json:"honoree,omitempty"`
	ClientName           *string             `gorm:"type:text"              json:"client_name,omitempty"`
	ClientEmail          *string             `gorm:"type:text"              json:"client_email,omitempty"`
	ClientPhone          *string             `gorm:"type:text"              json:"client_phone,omitempty"`
	ClientMailingAddress *string             `gorm:"type:text"              json:"client_mailing_address,omitempty"`
	BandSize             *int                `gorm:"type:smallint"          json:"band_size,omitempty"`
	NumVocalists         *int                `gorm:"type:smallint"          json:"num_vocalists,omitempty"`
	CeremonyCoverage     bool                `gorm:"not null;default:false" json:"ceremony_coverage"`
	CocktailCoverage     bool                `gorm:"not null;default:false" json:"cocktail_coverage"`
	ReceptionStartTime   *string             `gorm:"type:time"              json:"reception_start_time,omitempty"`
	ReceptionEndTime     *string             `gorm:"type:time"              json:"reception_end_time,omitempty"`
	ContractTotalAmount  decimal.NullDecimal `gorm:"type:numeric(12,2)"     json:"contract_total_amount"`
	FinalPaymentDueDate  *time.Time          `gorm:"type:date"              json:"final_payment_due_date,omitempty"`
	PaymentMethodNotes   *string             `gorm:"type:text"              json:"payment_method_notes,omitempty"`
	SpecialInstructions  *string             `gorm:"type:text"              json:"special_instructions,omitempty"`

	// legacy, read-only
	LegacyPackageName        *string             `gorm:"column:package_name;->"                json:"-"`
	LegacyOvertimePerHalf    decimal.NullDecimal `gorm:"column:overtime_rate_per_half_hour;->" json:"-"`
	LegacyDeposit1Amount     decimal.NullDecimal `gorm:"column:deposit1_amount;->"             json:"-"`
	LegacyDeposit1DueDate    *time.Time          `gorm:"column:deposit1_due_date;->"           json:"-"`
	LegacyDeposit2Amount     decimal.NullDecimal `gorm:"column:deposit2_amount;->"             json:"-"`
	LegacyDeposit2DueDate    *time.Time          `gorm:"column:deposit2_due_date;->"           json:"-"`
	LegacyContractStatus     *string             `gorm:"column:contract_status;->"             json:"-"`
	LegacyContractVersion    *int                `gorm:"column:contract_version;->"            json:"-"`
	LegacyContractSignedAt   *time.Time          `gorm:"column:contract_signed_at;->"          json:"-"`
	LegacyContractSentAt     *time.Time          `gorm:"column:contract_sent_at;->"            json:"-"`
	LegacyContractLastSentAt *time.Time          `gorm:"column:contract_last_sent_at;->"       json:"-"`
	LegacyContractPDFPath    *string             `gorm:"column:contract_pdf_path;->"           json:"-"`

	Timestamps
}

// TableName gigs_private
func (GigPrivate) TableName() string { return "gigs_private" }
