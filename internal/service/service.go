package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/mail"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/queue"
	"github.com/rsaputelli/PRS/internal/repository"
)

// JobPublisher hands post-commit side effects to the worker.
type JobPublisher interface {
	Publish(ctx context.Context, job queue.Job) error
}

// CalendarSyncer mirrors a gig to its calendar.
type CalendarSyncer interface {
	UpsertGig(ctx context.Context, gig *model.Gig) error
}

// Cache short-lived byte cache. *redis.Client satisfies it.
type Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Deps optional collaborators. Leave a field nil to disable it; never assign
// a typed nil pointer.
type Deps struct {
	Mailer    mail.Sender
	Calendar  CalendarSyncer
	Publisher JobPublisher
	Cache     Cache
}

// Service aggregates every service.
type Service struct {
	Gig       GigService
	Venue     DirectoryService[model.Venue, dto.VenueRequest]
	Agent     DirectoryService[model.Agent, dto.AgentRequest]
	Musician  DirectoryService[model.Musician, dto.MusicianRequest]
	SoundTech DirectoryService[model.SoundTech, dto.SoundTechRequest]
	People    PeopleService
	Payment   PaymentService
	Contract  ContractService
	Email     EmailService
	Confirm   ConfirmService
	Staffing  StaffingService
	Report    ReportService
	Profile   ProfileService
	Jobs      *JobRunner
}

// NewService wires the services over repo.
func NewService(cfg *config.Config, repo *repository.Repository, deps Deps, logger *zap.Logger) *Service {
	people := NewPeopleService(repo, deps.Cache, cfg.Redis.PeopleTTL, logger)
	email := NewEmailService(cfg, repo, deps.Mailer, logger)
	confirm := NewConfirmService(cfg, repo, email, deps.Publisher, logger)
	staffing := NewStaffingService(cfg, repo, email, deps.Publisher, logger)

	return &Service{
		Gig:       NewGigService(repo, deps.Publisher, logger),
		Venue:     NewVenueService(repo, people, logger),
		Agent:     NewAgentService(repo, people, logger),
		Musician:  NewMusicianService(repo, people, logger),
		SoundTech: NewSoundTechService(repo, people, logger),
		People:    people,
		Payment:   NewPaymentService(repo, logger),
		Contract:  NewContractService(repo, logger),
		Email:     email,
		Confirm:   confirm,
		Staffing:  staffing,
		Report:    NewReportService(repo, logger),
		Profile:   NewProfileService(&cfg.Auth, repo, logger),
		Jobs:      NewJobRunner(repo, deps.Calendar, confirm, staffing, logger),
	}
}
