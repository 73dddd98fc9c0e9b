package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rsaputelli/PRS/internal/model"
)

// ReportRepository read-only access to the reporting views.
type ReportRepository interface {
	ListUnderstaffed(ctx context.Context, through time.Time) ([]model.UnderstaffedGig, error)
	ListPayeeTotals(ctx context.Context, year int) ([]model.PayeeTotal1099, error)
	ListRollup(ctx context.Context, year int) ([]model.Rollup1099, error)
	ListPeople(ctx context.Context, kind string, activeOnly bool) ([]model.PersonOption, error)
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepo creates a ReportRepository.
func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) ListUnderstaffed(ctx context.Context, through time.Time) ([]model.UnderstaffedGig, error) {
	var rows []model.UnderstaffedGig
	err := r.db.WithContext(ctx).
		Where("event_date <= ?", through).
		Order("event_date ASC, start_time ASC NULLS LAST").
		Find(&rows).Error
	return rows, err
}

func (r *reportRepo) ListPayeeTotals(ctx context.Context, year int) ([]model.PayeeTotal1099, error) {
	var rows []model.PayeeTotal1099
	err := r.db.WithContext(ctx).
		Where("tax_year = ?", year).
		Order("payee_name ASC, kind ASC").
		Find(&rows).Error
	return rows, err
}

func (r *reportRepo) ListRollup(ctx context.Context, year int) ([]model.Rollup1099, error) {
	var rows []model.Rollup1099
	err := r.db.WithContext(ctx).
		Where("tax_year = ?", year).
		Order("total_net DESC, display_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *reportRepo) ListPeople(ctx context.Context, kind string, activeOnly bool) ([]model.PersonOption, error) {
	var rows []model.PersonOption
	db := r.db.WithContext(ctx)
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}
	if activeOnly {
		db = db.Where("active = ?", true)
	}
	err := db.Order("kind ASC, label ASC").Find(&rows).Error
	return rows, err
}
