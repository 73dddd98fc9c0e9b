package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rsaputelli/PRS/internal/model"
	pkgerrors "github.com/rsaputelli/PRS/pkg/errors"
)

// ProfileRepository profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	// Ensure inserts the profile on first sight and leaves an existing row untouched.
	Ensure(ctx context.Context, p *model.Profile) error
	List(ctx context.Context) ([]model.Profile, error)
	UpdateRole(ctx context.Context, id, role string) error
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo creates a ProfileRepository.
func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) Ensure(ctx context.Context, p *model.Profile) error {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p).Error
	if err != nil {
		return pkgerrors.TranslateDB(err)
	}
	return db.Where("id = ?", p.ID).First(p).Error
}

func (r *profileRepo) List(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).Order("email ASC").Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) UpdateRole(ctx context.Context, id, role string) error {
	res := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"role": role, "updated_at": gorm.Expr("now()")})
	if res.Error != nil {
		return pkgerrors.TranslateDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
