package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Read-only view rows. GORM only ever selects from these.

// PayeeTotal1099 maps v_1099_payee_totals
type PayeeTotal1099 struct {
	PayeeKey         string          `json:"payee_key"`
	PayeeID          *string         `json:"payee_id,omitempty"`
	PayeeName        *string         `json:"payee_name,omitempty"`
	Kind             string          `json:"kind"`
	TaxYear          int             `json:"tax_year"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalFeeWithheld decimal.Decimal `json:"total_fee_withheld"`
	TotalNet         decimal.Decimal `json:"total_net"`
	PaymentCount     int             `json:"payment_count"`
}

// TableName v_1099_payee_totals
func (PayeeTotal1099) TableName() string { return "v_1099_payee_totals" }

// Rollup1099 maps vw_1099_rollup
type Rollup1099 struct {
	PayeeKey         string          `json:"payee_key"`
	PayeeID          *string         `json:"payee_id,omitempty"`
	DisplayName      *string         `json:"display_name,omitempty"`
	Email            *string         `json:"email,omitempty"`
	Address          *string         `json:"address,omitempty"`
	TaxYear          int             `json:"tax_year"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalFeeWithheld decimal.Decimal `json:"total_fee_withheld"`
	TotalNet         decimal.Decimal `json:"total_net"`
	PaymentCount     int             `json:"payment_count"`
	OverThreshold    bool            `json:"over_threshold"`
}

// TableName vw_1099_rollup
func (Rollup1099) TableName() string { return "vw_1099_rollup" }

// PersonOption maps vw_people_dropdown
type PersonOption struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// TableName vw_people_dropdown
func (PersonOption) TableName() string { return "vw_people_dropdown" }

// UnderstaffedGig maps vw_understaffed_gigs
type UnderstaffedGig struct {
	ID             string    `json:"id"`
	Title          *string   `json:"title,omitempty"`
	EventDate      time.Time `json:"event_date"`
	StartTime      *string   `json:"start_time,omitempty"`
	EndTime        *string   `json:"end_time,omitempty"`
	VenueID        *string   `json:"venue_id,omitempty"`
	VenueName      *string   `json:"venue_name,omitempty"`
	StaffingTarget int       `json:"staffing_target"`
	AssignedCount  int       `json:"assigned_count"`
	Shortfall      int       `json:"shortfall"`
	SoundOK        bool      `gorm:"column:sound_ok"   json:"sound_ok"`
	DetailsOK      bool      `gorm:"column:details_ok" json:"details_ok"`
}

// TableName vw_understaffed_gigs
func (UnderstaffedGig) TableName() string { return "vw_understaffed_gigs" }
