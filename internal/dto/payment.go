package dto

import (
	"github.com/shopspring/decimal"

	"github.com/rsaputelli/PRS/internal/model"
)

// PaymentRequest records one money movement for a gig.
type PaymentRequest struct {
	Kind         string           `json:"kind"          binding:"required,oneof=musician sound agent venue_receipt other"`
	PayeeID      *string          `json:"payee_id"      binding:"omitempty,uuid"`
	PayeeName    *string          `json:"payee_name"    binding:"omitempty,max=200"`
	Role         *string          `json:"role"          binding:"omitempty,max=100"`
	Amount       decimal.Decimal  `json:"amount"`
	FeeWithheld  *decimal.Decimal `json:"fee_withheld"`
	Method       *string          `json:"method"        binding:"omitempty,oneof=Check Zelle Cash Venmo Other"`
	Reference    *string          `json:"reference"     binding:"omitempty,max=200"`
	DueOn        string           `json:"due_on"        binding:"omitempty,datetime=2006-01-02"`
	PaidOn       string           `json:"paid_on"       binding:"omitempty,datetime=2006-01-02"`
	Eligible1099 bool             `json:"eligible_1099"`
	Notes        *string          `json:"notes"         binding:"omitempty,max=2000"`
}

// CloseoutRequest PUT /gigs/:id/closeout. Payments are appended in the same
// transaction as the closeout fields.
type CloseoutRequest struct {
	Status             string           `json:"status"                binding:"required,oneof=draft closed"`
	FinalVenueGross    *decimal.Decimal `json:"final_venue_gross"`
	FinalVenuePaidDate string           `json:"final_venue_paid_date" binding:"omitempty,datetime=2006-01-02"`
	CloseoutNotes      *string          `json:"closeout_notes"        binding:"omitempty,max=5000"`
	Payments           []PaymentRequest `json:"payments"              binding:"omitempty,max=50,dive"`
}

// CloseoutResponse gig closeout state plus every payment on the gig.
type CloseoutResponse struct {
	GigID              string              `json:"gig_id"`
	CloseoutStatus     string              `json:"closeout_status"`
	CloseoutAt         *string             `json:"closeout_at,omitempty"`
	FinalVenueGross    decimal.NullDecimal `json:"final_venue_gross"`
	FinalVenuePaidDate *string             `json:"final_venue_paid_date,omitempty"`
	Payments           []model.GigPayment  `json:"payments"`
	TotalPaidOut       decimal.Decimal     `json:"total_paid_out"`
}
