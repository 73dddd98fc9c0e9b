package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/rsaputelli/PRS/internal/model"
	pkgerrors "github.com/rsaputelli/PRS/pkg/errors"
)

// DirectoryFilter list criteria for the people/places tables.
type DirectoryFilter struct {
	IncludeInactive bool
	Search          string
}

// DirectoryRepository CRUD over one of venues, agents, musicians, sound_techs.
type DirectoryRepository[T any] interface {
	Create(ctx context.Context, row *T) error
	GetByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, f DirectoryFilter) ([]T, error)
	Update(ctx context.Context, row *T) error
	SetActive(ctx context.Context, id string, active bool) error
	// Delete is a hard delete; rows still referenced under RESTRICT
	// come back as pkg/errors.ErrReferenced.
	Delete(ctx context.Context, id string) (int64, error)
}

type directoryRepo[T any] struct {
	db         *gorm.DB
	searchCols []string
	order      string
}

// NewVenueRepo venues, searched by name and city.
func NewVenueRepo(db *gorm.DB) DirectoryRepository[model.Venue] {
	return &directoryRepo[model.Venue]{db: db, searchCols: []string{"name", "city"}, order: "name ASC"}
}

// NewAgentRepo agents, searched by name and company.
func NewAgentRepo(db *gorm.DB) DirectoryRepository[model.Agent] {
	return &directoryRepo[model.Agent]{db: db, searchCols: []string{"display_name", "company"}, order: "display_name ASC"}
}

// NewMusicianRepo musicians, searched by every name column and instrument.
func NewMusicianRepo(db *gorm.DB) DirectoryRepository[model.Musician] {
	return &directoryRepo[model.Musician]{
		db:         db,
		searchCols: []string{"first_name", "last_name", "stage_name", "display_name", "instrument"},
		order:      "last_name ASC NULLS LAST, first_name ASC NULLS LAST",
	}
}

// NewSoundTechRepo sound_techs, searched by name and company.
func NewSoundTechRepo(db *gorm.DB) DirectoryRepository[model.SoundTech] {
	return &directoryRepo[model.SoundTech]{db: db, searchCols: []string{"display_name", "company"}, order: "display_name ASC"}
}

func (r *directoryRepo[T]) Create(ctx context.Context, row *T) error {
	return pkgerrors.TranslateDB(r.db.WithContext(ctx).Create(row).Error)
}

func (r *directoryRepo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var row T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *directoryRepo[T]) List(ctx context.Context, f DirectoryFilter) ([]T, error) {
	var rows []T
	db := r.db.WithContext(ctx)

	if !f.IncludeInactive {
		db = db.Where("active = ?", true)
	}
	if q := strings.TrimSpace(f.Search); q != "" && len(r.searchCols) > 0 {
		conds := make([]string, len(r.searchCols))
		args := make([]interface{}, len(r.searchCols))
		for i, col := range r.searchCols {
			conds[i] = col + " ILIKE ?"
			args[i] = "%" + q + "%"
		}
		db = db.Where(strings.Join(conds, " OR "), args...)
	}

	err := db.Order(r.order).Find(&rows).Error
	return rows, err
}

func (r *directoryRepo[T]) Update(ctx context.Context, row *T) error {
	return pkgerrors.TranslateDB(r.db.WithContext(ctx).Save(row).Error)
}

func (r *directoryRepo[T]) SetActive(ctx context.Context, id string, active bool) error {
	var zero T
	res := r.db.WithContext(ctx).Model(&zero).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":     active,
			"updated_at": gorm.Expr("now()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *directoryRepo[T]) Delete(ctx context.Context, id string) (int64, error) {
	var zero T
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&zero)
	return res.RowsAffected, pkgerrors.TranslateDB(res.Error)
}
