package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rsaputelli/PRS/internal/model"
	pkgerrors "github.com/rsaputelli/PRS/pkg/errors"
)

// GigFilter list criteria. Zero values mean "any".
type GigFilter struct {
	From           *time.Time
	To             *time.Time
	ContractStatus string
	CloseoutStatus string
	Private        *bool
	VenueID        string
	Offset         int
	Limit          int
}

// GigChildCounts rows hanging off a gig, shown before an admin delete.
type GigChildCounts struct {
	Deposits  int64 `json:"deposits"`
	Payments  int64 `json:"payments"`
	Musicians int64 `json:"musicians"`
	Private   int64 `json:"private"`
}

// privateWritable canonical gigs_private columns; legacy ones are never written.
var privateWritable = []string{
	"organizer", "event_type", "honoree", "client_name", "client_email",
	"client_phone", "client_mailing_address", "band_size", "num_vocalists",
	"ceremony_coverage", "cocktail_coverage", "reception_start_time",
	"reception_end_time", "contract_total_amount", "final_payment_due_date",
	"payment_method_notes", "special_instructions", "updated_at",
}

// GigRepository gigs and gigs_private.
type GigRepository interface {
	Create(ctx context.Context, gig *model.Gig) error
	GetByID(ctx context.Context, id string) (*model.Gig, error)
	GetDetail(ctx context.Context, id string) (*model.Gig, error)
	List(ctx context.Context, f GigFilter) ([]model.Gig, int64, error)
	Update(ctx context.Context, gig *model.Gig) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) (int64, error)
	CountChildren(ctx context.Context, id string) (*GigChildCounts, error)

	GetPrivate(ctx context.Context, gigID string) (*model.GigPrivate, error)
	UpsertPrivate(ctx context.Context, p *model.GigPrivate) error
}

type gigRepo struct {
	db *gorm.DB
}

// NewGigRepo creates a GigRepository.
func NewGigRepo(db *gorm.DB) GigRepository {
	return &gigRepo{db: db}
}

func (r *gigRepo) Create(ctx context.Context, gig *model.Gig) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(gig).Error
	return pkgerrors.TranslateDB(err)
}

func (r *gigRepo) GetByID(ctx context.Context, id string) (*model.Gig, error) {
	var gig model.Gig
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&gig).Error; err != nil {
		return nil, err
	}
	return &gig, nil
}

func (r *gigRepo) GetDetail(ctx context.Context, id string) (*model.Gig, error) {
	var gig model.Gig
	err := r.db.WithContext(ctx).
		Preload("Venue").
		Preload("Agent").
		Preload("SoundTech").
		Preload("Private").
		Where("id = ?", id).
		First(&gig).Error
	if err != nil {
		return nil, err
	}
	return &gig, nil
}

func (r *gigRepo) List(ctx context.Context, f GigFilter) ([]model.Gig, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Gig{})

	if f.From != nil {
		db = db.Where("event_date >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("event_date <= ?", *f.To)
	}
	if f.ContractStatus != "" {
		db = db.Where("contract_status = ?", f.ContractStatus)
	}
	if f.CloseoutStatus != "" {
		db = db.Where("closeout_status = ?", f.CloseoutStatus)
	}
	if f.Private != nil {
		if *f.Private {
			db = db.Where("is_private OR COALESCE(private_flag, false)")
		} else {
			db = db.Where("NOT is_private AND NOT COALESCE(private_flag, false)")
		}
	}
	if f.VenueID != "" {
		db = db.Where("venue_id = ?", f.VenueID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		db = db.Offset(f.Offset).Limit(f.Limit)
	}

	var gigs []model.Gig
	err := db.Preload("Venue").
		Order("event_date ASC, start_time ASC NULLS LAST").
		Find(&gigs).Error
	return gigs, total, err
}

func (r *gigRepo) Update(ctx context.Context, gig *model.Gig) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(gig).Error
	return pkgerrors.TranslateDB(err)
}

func (r *gigRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = gorm.Expr("now()")
	res := r.db.WithContext(ctx).Model(&model.Gig{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return pkgerrors.TranslateDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the gig. Deposits, staffing and the private row cascade;
// payments restrict.
func (r *gigRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Gig{})
	return res.RowsAffected, pkgerrors.TranslateDB(res.Error)
}

func (r *gigRepo) CountChildren(ctx context.Context, id string) (*GigChildCounts, error) {
	var c GigChildCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.GigDeposit{}).Where("gig_id = ?", id).Count(&c.Deposits).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.GigPayment{}).Where("gig_id = ?", id).Count(&c.Payments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.GigMusician{}).Where("gig_id = ?", id).Count(&c.Musicians).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.GigPrivate{}).Where("gig_id = ?", id).Count(&c.Private).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gigRepo) GetPrivate(ctx context.Context, gigID string) (*model.GigPrivate, error) {
	var p model.GigPrivate
	if err := r.db.WithContext(ctx).Where("gig_id = ?", gigID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gigRepo) UpsertPrivate(ctx context.Context, p *model.GigPrivate) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "gig_id"}},
			DoUpdates: clause.AssignmentColumns(privateWritable),
		}).
		Create(p).Error
	return pkgerrors.TranslateDB(err)
}
