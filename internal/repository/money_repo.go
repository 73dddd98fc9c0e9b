package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rsaputelli/PRS/internal/model"
	pkgerrors "github.com/rsaputelli/PRS/pkg/errors"
)

// DepositRepository gig_deposits.
type DepositRepository interface {
	ListByGig(ctx context.Context, gigID string) ([]model.GigDeposit, error)
	// ReplaceForGig swaps the whole schedule. Callers run it inside a transaction.
	ReplaceForGig(ctx context.Context, gigID string, deposits []model.GigDeposit) error
}

type depositRepo struct {
	db *gorm.DB
}

// NewDepositRepo creates a DepositRepository.
func NewDepositRepo(db *gorm.DB) DepositRepository {
	return &depositRepo{db: db}
}

func (r *depositRepo) ListByGig(ctx context.Context, gigID string) ([]model.GigDeposit, error) {
	var deposits []model.GigDeposit
	err := r.db.WithContext(ctx).
		Where("gig_id = ?", gigID).
		Order("seq ASC").
		Find(&deposits).Error
	return deposits, err
}

func (r *depositRepo) ReplaceForGig(ctx context.Context, gigID string, deposits []model.GigDeposit) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("gig_id = ?", gigID).Delete(&model.GigDeposit{}).Error; err != nil {
		return err
	}
	if len(deposits) == 0 {
		return nil
	}
	for i := range deposits {
		deposits[i].GigID = gigID
	}
	return pkgerrors.TranslateDB(db.Create(&deposits).Error)
}

// PaymentRepository gig_payments.
type PaymentRepository interface {
	Create(ctx context.Context, p *model.GigPayment) error
	GetByID(ctx context.Context, id string) (*model.GigPayment, error)
	ListByGig(ctx context.Context, gigID string) ([]model.GigPayment, error)
	Delete(ctx context.Context, id string) (int64, error)
	DeleteByGig(ctx context.Context, gigID string) (int64, error)
}

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo creates a PaymentRepository.
func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

// Create inserts the payment and reads back the generated net_amount.
func (r *paymentRepo) Create(ctx context.Context, p *model.GigPayment) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(p).Error; err != nil {
		return pkgerrors.TranslateDB(err)
	}
	return db.Model(&model.GigPayment{}).
		Select("net_amount").
		Where("id = ?", p.ID).
		Scan(&p.NetAmount).Error
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*model.GigPayment, error) {
	var p model.GigPayment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) ListByGig(ctx context.Context, gigID string) ([]model.GigPayment, error) {
	var payments []model.GigPayment
	err := r.db.WithContext(ctx).
		Where("gig_id = ?", gigID).
		Order("kind ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.GigPayment{})
	return res.RowsAffected, res.Error
}

func (r *paymentRepo) DeleteByGig(ctx context.Context, gigID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("gig_id = ?", gigID).Delete(&model.GigPayment{})
	return res.RowsAffected, res.Error
}
