package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/repository"
)

// ── payment errors ──

var (
	ErrWithheldExceedsAmount = errors.New("fee withheld exceeds the payment amount")
	ErrGigClosed             = errors.New("gig is closed out; reopen it first")
)

// PaymentService gig payments and closeout.
type PaymentService interface {
	List(ctx context.Context, gigID string) ([]model.GigPayment, error)
	Record(ctx context.Context, gigID string, req *dto.PaymentRequest) (*model.GigPayment, error)
	Delete(ctx context.Context, id string) error
	Closeout(ctx context.Context, gigID string, req *dto.CloseoutRequest) (*dto.CloseoutResponse, error)
	Reopen(ctx context.Context, gigID string) (*dto.CloseoutResponse, error)
}

type paymentService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(repo *repository.Repository, logger *zap.Logger) PaymentService {
	return &paymentService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── List ──────────────────────

func (s *paymentService) List(ctx context.Context, gigID string) ([]model.GigPayment, error) {
	if _, err := s.repo.Gig.GetByID(ctx, gigID); err != nil {
		return nil, notFoundAs(err, ErrGigNotFound)
	}
	rows, err := s.repo.Payment.ListByGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.GigPayment{}
	}
	return rows, nil
}

// ────────────────────── Record ──────────────────────

func (s *paymentService) Record(ctx context.Context, gigID string, req *dto.PaymentRequest) (*model.GigPayment, error) {
	gig, err := s.repo.Gig.GetByID(ctx, gigID)
	if err != nil {
		return nil, notFoundAs(err, ErrGigNotFound)
	}
	if gig.CloseoutStatus == model.CloseoutClosed {
		return nil, ErrGigClosed
	}
	p, err := buildPayment(gigID, req)
	if err != nil {
		return nil, err
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.Payment.Create(ctx, p)
	})
	if err != nil {
		s.logger.Error("record payment failed", zap.String("gig_id", gigID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("payment recorded",
		zap.String("gig_id", gigID), zap.String("payment_id", p.ID), zap.String("kind", p.Kind))
	return p, nil
}

func buildPayment(gigID string, req *dto.PaymentRequest) (*model.GigPayment, error) {
	if req.Amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	due, err := parseDate(req.DueOn)
	if err != nil {
		return nil, ErrInvalidDate
	}
	paid, err := parseDate(req.PaidOn)
	if err != nil {
		return nil, ErrInvalidDate
	}
	p := &model.GigPayment{
		GigID:        gigID,
		Kind:         req.Kind,
		PayeeID:      trimPtr(req.PayeeID),
		PayeeName:    trimPtr(req.PayeeName),
		Role:         trimPtr(req.Role),
		Amount:       req.Amount,
		Method:       trimPtr(req.Method),
		Reference:    trimPtr(req.Reference),
		DueOn:        due,
		PaidOn:       paid,
		Eligible1099: req.Eligible1099,
		Notes:        trimPtr(req.Notes),
	}
	if req.FeeWithheld != nil {
		if req.FeeWithheld.IsNegative() {
			return nil, ErrNegativeAmount
		}
		if req.FeeWithheld.GreaterThan(req.Amount) {
			return nil, ErrWithheldExceedsAmount
		}
		p.FeeWithheld = decimal.NewNullDecimal(*req.FeeWithheld)
	}
	return p, nil
}

// ────────────────────── Delete ──────────────────────

func (s *paymentService) Delete(ctx context.Context, id string) error {
	p, err := s.repo.Payment.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, ErrPaymentNotFound)
	}
	gig, err := s.repo.Gig.GetByID(ctx, p.GigID)
	if err != nil {
		return notFoundAs(err, ErrGigNotFound)
	}
	if gig.CloseoutStatus == model.CloseoutClosed {
		return ErrGigClosed
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		n, err := tx.Payment.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrPaymentNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("payment deleted", zap.String("payment_id", id), zap.String("gig_id", p.GigID))
	return nil
}

// ────────────────────── Closeout ──────────────────────

func (s *paymentService) Closeout(ctx context.Context, gigID string, req *dto.CloseoutRequest) (*dto.CloseoutResponse, error) {
	gig, err := s.repo.Gig.GetByID(ctx, gigID)
	if err != nil {
		return nil, notFoundAs(err, ErrGigNotFound)
	}
	if gig.CloseoutStatus == model.CloseoutClosed {
		return nil, ErrGigClosed
	}

	paidDate, err := parseDate(req.FinalVenuePaidDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	gross := decimal.NullDecimal{}
	if req.FinalVenueGross != nil {
		if req.FinalVenueGross.IsNegative() {
			return nil, ErrNegativeAmount
		}
		gross = decimal.NewNullDecimal(*req.FinalVenueGross)
	}

	payments := make([]*model.GigPayment, 0, len(req.Payments))
	for i := range req.Payments {
		p, err := buildPayment(gigID, &req.Payments[i])
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	fields := map[string]interface{}{
		"closeout_status":       req.Status,
		"final_venue_gross":     gross,
		"final_venue_paid_date": paidDate,
		"closeout_notes":        trimPtr(req.CloseoutNotes),
		"closeout_at":           nil,
	}
	if req.Status == model.CloseoutClosed {
		fields["closeout_at"] = s.now().UTC()
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Gig.UpdateFields(ctx, gigID, fields); err != nil {
			return err
		}
		for _, p := range payments {
			if err := tx.Payment.Create(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("closeout failed", zap.String("gig_id", gigID), zap.Error(err))
		return nil, notFoundAs(err, ErrGigNotFound)
	}

	s.logger.Info("gig closeout saved",
		zap.String("gig_id", gigID), zap.String("status", req.Status), zap.Int("payments", len(payments)))
	return s.closeoutState(ctx, gigID)
}

func (s *paymentService) Reopen(ctx context.Context, gigID string) (*dto.CloseoutResponse, error) {
	err := s.repo.Gig.UpdateFields(ctx, gigID, map[string]interface{}{
		"closeout_status": model.CloseoutOpen,
		"closeout_at":     nil,
	})
	if err != nil {
		return nil, notFoundAs(err, ErrGigNotFound)
	}
	s.logger.Info("gig closeout reopened", zap.String("gig_id", gigID))
	return s.closeoutState(ctx, gigID)
}

func (s *paymentService) closeoutState(ctx context.Context, gigID string) (*dto.CloseoutResponse, error) {
	gig, err := s.repo.Gig.GetByID(ctx, gigID)
	if err != nil {
		return nil, notFoundAs(err, ErrGigNotFound)
	}
	payments, err := s.repo.Payment.ListByGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []model.GigPayment{}
	}

	resp := &dto.CloseoutResponse{
		GigID:           gigID,
		CloseoutStatus:  gig.CloseoutStatus,
		FinalVenueGross: gig.FinalVenueGross,
		Payments:        payments,
		TotalPaidOut:    decimal.Zero,
	}
	if gig.CloseoutAt != nil {
		at := gig.CloseoutAt.UTC().Format(time.RFC3339)
		resp.CloseoutAt = &at
	}
	if gig.FinalVenuePaidDate != nil {
		d := DateISO(gig.FinalVenuePaidDate)
		resp.FinalVenuePaidDate = &d
	}
	for _, p := range payments {
		if p.Kind != model.PaymentVenueReceipt {
			resp.TotalPaidOut = resp.TotalPaidOut.Add(p.Amount)
		}
	}
	return resp, nil
}
