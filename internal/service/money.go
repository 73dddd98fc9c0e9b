package service

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/rsaputelli/PRS/internal/model"
)

// ── deposit schedule errors ──

var (
	ErrTooManyDeposits    = errors.New("a gig has at most 4 deposits")
	ErrNegativeAmount     = errors.New("amounts must not be negative")
	ErrDepositsWithoutFee = errors.New("deposits require a total fee")
	ErrDepositsExceedFee  = errors.New("deposits exceed the total fee")
	ErrPercentOver100     = errors.New("percentage deposits exceed 100%")
)

var hundred = decimal.NewFromInt(100)

// DepositSchedule deposits resolved to dollars against a fee.
type DepositSchedule struct {
	Deposits []model.GigDeposit
	Resolved []decimal.Decimal
	Total    decimal.Decimal
	// Final is NULL when the gig has no fee.
	Final decimal.NullDecimal
}

// ResolveDeposits validates deposits against fee and computes the final
// payment. Deposits must be ordered by seq.
func ResolveDeposits(fee decimal.NullDecimal, deposits []model.GigDeposit) (*DepositSchedule, error) {
	if len(deposits) > model.MaxDeposits {
		return nil, ErrTooManyDeposits
	}
	if len(deposits) > 0 && !fee.Valid {
		return nil, ErrDepositsWithoutFee
	}
	if fee.Valid && fee.Decimal.IsNegative() {
		return nil, ErrNegativeAmount
	}

	s := &DepositSchedule{Deposits: deposits, Total: decimal.Zero}
	pct := decimal.Zero
	for i := range deposits {
		d := &deposits[i]
		if d.Amount.IsNegative() {
			return nil, ErrNegativeAmount
		}
		if d.IsPercentage {
			pct = pct.Add(d.Amount)
		}
		amt := d.Resolve(fee.Decimal)
		s.Resolved = append(s.Resolved, amt)
		s.Total = s.Total.Add(amt)
	}
	if pct.GreaterThan(hundred) {
		return nil, ErrPercentOver100
	}
	if fee.Valid {
		if s.Total.GreaterThan(fee.Decimal) {
			return nil, ErrDepositsExceedFee
		}
		s.Final = decimal.NewNullDecimal(fee.Decimal.Sub(s.Total))
	}
	return s, nil
}

// legacyDeposits rebuilds a schedule from the frozen deposit1/deposit2
// columns of historical private rows.
func legacyDeposits(p *model.GigPrivate) []model.GigDeposit {
	if p == nil {
		return nil
	}
	var out []model.GigDeposit
	if p.LegacyDeposit1Amount.Valid {
		out = append(out, model.GigDeposit{GigID: p.GigID, Seq: 1, Amount: p.LegacyDeposit1Amount.Decimal, DueDate: p.LegacyDeposit1DueDate})
	}
	if p.LegacyDeposit2Amount.Valid {
		out = append(out, model.GigDeposit{GigID: p.GigID, Seq: len(out) + 1, Amount: p.LegacyDeposit2Amount.Decimal, DueDate: p.LegacyDeposit2DueDate})
	}
	return out
}
