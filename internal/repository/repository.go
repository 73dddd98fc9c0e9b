package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rsaputelli/PRS/internal/model"
)

// Repository bundles every repository over one *gorm.DB (or one transaction).
type Repository struct {
	Gig        GigRepository
	Deposit    DepositRepository
	Payment    PaymentRepository
	Staffing   StaffingRepository
	Venue      DirectoryRepository[model.Venue]
	Agent      DirectoryRepository[model.Agent]
	Musician   DirectoryRepository[model.Musician]
	SoundTech  DirectoryRepository[model.SoundTech]
	Profile    ProfileRepository
	EmailAudit EmailAuditRepository
	Notify     NotificationRepository
	Report     ReportRepository

	Tx Transactor
}

// Transactor runs fn against repositories bound to a single transaction.
// fn's error rolls the transaction back.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *Repository) error) error
}

// NewRepository wires every repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Gig:        NewGigRepo(db),
		Deposit:    NewDepositRepo(db),
		Payment:    NewPaymentRepo(db),
		Staffing:   NewStaffingRepo(db),
		Venue:      NewVenueRepo(db),
		Agent:      NewAgentRepo(db),
		Musician:   NewMusicianRepo(db),
		SoundTech:  NewSoundTechRepo(db),
		Profile:    NewProfileRepo(db),
		EmailAudit: NewEmailAuditRepo(db),
		Notify:     NewNotificationRepo(db),
		Report:     NewReportRepo(db),
		Tx:         &gormTransactor{db: db},
	}
}

type gormTransactor struct {
	db *gorm.DB
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
