package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rsaputelli/PRS/internal/model"
	pkgerrors "github.com/rsaputelli/PRS/pkg/errors"
)

// EmailAuditRepository email_audit. Rows are appended once and only
// status/clicked_at change afterwards.
type EmailAuditRepository interface {
	Create(ctx context.Context, row *model.EmailAudit) error
	GetByToken(ctx context.Context, token string) (*model.EmailAudit, error)
	// MarkClicked stamps the first click; later calls affect no rows.
	MarkClicked(ctx context.Context, token string, at time.Time) (bool, error)
	ListByGig(ctx context.Context, gigID string) ([]model.EmailAudit, error)
}

type emailAuditRepo struct {
	db *gorm.DB
}

// NewEmailAuditRepo creates an EmailAuditRepository.
func NewEmailAuditRepo(db *gorm.DB) EmailAuditRepository {
	return &emailAuditRepo{db: db}
}

func (r *emailAuditRepo) Create(ctx context.Context, row *model.EmailAudit) error {
	return pkgerrors.TranslateDB(r.db.WithContext(ctx).Create(row).Error)
}

func (r *emailAuditRepo) GetByToken(ctx context.Context, token string) (*model.EmailAudit, error) {
	var row model.EmailAudit
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *emailAuditRepo) MarkClicked(ctx context.Context, token string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.EmailAudit{}).
		Where("token = ? AND clicked_at IS NULL", token).
		Updates(map[string]interface{}{
			"clicked_at": at,
			"status":     model.EmailStatusClicked,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *emailAuditRepo) ListByGig(ctx context.Context, gigID string) ([]model.EmailAudit, error) {
	var rows []model.EmailAudit
	err := r.db.WithContext(ctx).
		Where("gig_id = ?", gigID).
		Order("ts DESC").
		Find(&rows).Error
	return rows, err
}
