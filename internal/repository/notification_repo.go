package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rsaputelli/PRS/internal/model"
)

// NotificationRepository staffing digest subscribers and run log.
type NotificationRepository interface {
	ListSubscribers(ctx context.Context, activeOnly bool) ([]model.StaffingSubscriber, error)
	UpsertSubscriber(ctx context.Context, s *model.StaffingSubscriber) error
	CreateLog(ctx context.Context, l *model.StaffingLog) error
	ListLogs(ctx context.Context, limit int) ([]model.StaffingLog, error)
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo creates a NotificationRepository.
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) ListSubscribers(ctx context.Context, activeOnly bool) ([]model.StaffingSubscriber, error) {
	var subs []model.StaffingSubscriber
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("active = ?", true)
	}
	err := db.Order("email ASC").Find(&subs).Error
	return subs, err
}

func (r *notificationRepo) UpsertSubscriber(ctx context.Context, s *model.StaffingSubscriber) error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "active"}),
		}).
		Create(s).Error
}

func (r *notificationRepo) CreateLog(ctx context.Context, l *model.StaffingLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *notificationRepo) ListLogs(ctx context.Context, limit int) ([]model.StaffingLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []model.StaffingLog
	err := r.db.WithContext(ctx).Order("run_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
