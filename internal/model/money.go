package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxDeposits a schedule holds at most four deposits.
const MaxDeposits = 4

// GigDeposit maps gig_deposits, ordered by seq.
type GigDeposit struct {
	ID           string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GigID        string          `gorm:"type:uuid;not null"                             json:"gig_id"`
	Seq          int             `gorm:"type:smallint;not null"                         json:"seq"`
	DueDate      *time.Time      `gorm:"type:date"                                      json:"due_date,omitempty"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null"                    json:"amount"`
	IsPercentage bool            `gorm:"not null;default:false"                         json:"is_percentage"`
	CreatedAt    time.Time       `gorm:"not null;default:now()"                         json:"created_at"`
}

// TableName gig_deposits
func (GigDeposit) TableName() string { return "gig_deposits" }

// Resolve the deposit in dollars against a total fee.
func (d *GigDeposit) Resolve(totalFee decimal.Decimal) decimal.Decimal {
	if d.IsPercentage {
		return totalFee.Mul(d.Amount).Div(decimal.NewFromInt(100)).Round(2)
	}
	return d.Amount
}

// Payment kinds.
const (
	PaymentMusician     = "musician"
	PaymentSound        = "sound"
	PaymentAgent        = "agent"
	PaymentVenueReceipt = "venue_receipt"
	PaymentOther        = "other"
)

// PaymentKinds allowed gig_payments.kind values.
var PaymentKinds = []string{PaymentMusician, PaymentSound, PaymentAgent, PaymentVenueReceipt, PaymentOther}

// PaymentMethods allowed gig_payments.method values.
var PaymentMethods = []string{"Check", "Zelle", "Cash", "Venmo", "Other"}

// GigPayment maps gig_payments. NetAmount is a generated column and read-only.
type GigPayment struct {
	ID           string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GigID        string              `gorm:"type:uuid;not null"                             json:"gig_id"`
	Kind         string              `gorm:"type:text;not null"                             json:"kind"`
	PayeeID      *string             `gorm:"type:uuid"                                      json:"payee_id,omitempty"`
	PayeeName    *string             `gorm:"type:text"                                      json:"payee_name,omitempty"`
	Role         *string             `gorm:"type:text"                                      json:"role,omitempty"`
	Amount       decimal.Decimal     `gorm:"type:numeric(12,2);not null"                    json:"amount"`
	FeeWithheld  decimal.NullDecimal `gorm:"type:numeric(12,2)"                             json:"fee_withheld"`
	NetAmount    decimal.Decimal     `gorm:"type:numeric(12,2);->"                          json:"net_amount"`
	Method       *string             `gorm:"type:text"                                      json:"method,omitempty"`
	Reference    *string             `gorm:"type:text"                                      json:"reference,omitempty"`
	DueOn        *time.Time          `gorm:"type:date"                                      json:"due_on,omitempty"`
	PaidOn       *time.Time          `gorm:"type:date"                                      json:"paid_on,omitempty"`
	Eligible1099 bool                `gorm:"column:eligible_1099;not null;default:false"    json:"eligible_1099"`
	Notes        *string             `gorm:"type:text"                                      json:"notes,omitempty"`
	Timestamps
}

// TableName gig_payments
func (GigPayment) TableName() string { return "gig_payments" }

// ExpectedNet the value the database computes for net_amount.
func (p *GigPayment) ExpectedNet() decimal.Decimal {
	if p.FeeWithheld.Valid {
		return p.Amount.Sub(p.FeeWithheld.Decimal)
	}
	return p.Amount
}
