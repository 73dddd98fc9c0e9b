package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rsaputelli/PRS/internal/model"
	pkgerrors "github.com/rsaputelli/PRS/pkg/errors"
)

// StaffingRepository gig_musicians.
type StaffingRepository interface {
	ListByGig(ctx context.Context, gigID string) ([]model.GigMusician, error)
	// ListByGigs assignments without the musician rows, for reporting.
	ListByGigs(ctx context.Context, gigIDs []string) ([]model.GigMusician, error)
	// Assign puts musicianID in role, replacing whoever held it.
	Assign(ctx context.Context, gm *model.GigMusician) error
	Unassign(ctx context.Context, gigID, role string) error
	CountByMusician(ctx context.Context, musicianID string) (int64, error)
}

type staffingRepo struct {
	db *gorm.DB
}

// NewStaffingRepo creates a StaffingRepository.
func NewStaffingRepo(db *gorm.DB) StaffingRepository {
	return &staffingRepo{db: db}
}

func (r *staffingRepo) ListByGig(ctx context.Context, gigID string) ([]model.GigMusician, error) {
	var rows []model.GigMusician
	err := r.db.WithContext(ctx).
		Preload("Musician").
		Where("gig_id = ?", gigID).
		Order("role ASC").
		Find(&rows).Error
	return rows, err
}

func (r *staffingRepo) ListByGigs(ctx context.Context, gigIDs []string) ([]model.GigMusician, error) {
	var rows []model.GigMusician
	if len(gigIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("gig_id IN ?", gigIDs).
		Find(&rows).Error
	return rows, err
}

func (r *staffingRepo) Assign(ctx context.Context, gm *model.GigMusician) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "gig_id"}, {Name: "role"}},
			DoUpdates: clause.AssignmentColumns([]string{"musician_id"}),
		}).
		Create(gm).Error
	return pkgerrors.TranslateDB(err)
}

func (r *staffingRepo) Unassign(ctx context.Context, gigID, role string) error {
	return r.db.WithContext(ctx).
		Where("gig_id = ? AND role = ?", gigID, role).
		Delete(&model.GigMusician{}).Error
}

func (r *staffingRepo) CountByMusician(ctx context.Context, musicianID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.GigMusician{}).
		Where("musician_id = ?", musicianID).
		Count(&n).Error
	return n, err
}
