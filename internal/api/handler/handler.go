package handler

import (
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/service"
)

// Handler every HTTP handler, grouped by module.
type Handler struct {
	Gig       *GigHandler
	Contract  *ContractHandler
	Confirm   *ConfirmHandler
	Payment   *PaymentHandler
	Venue     *DirectoryHandler[model.Venue, dto.VenueRequest]
	Agent     *DirectoryHandler[model.Agent, dto.AgentRequest]
	Musician  *DirectoryHandler[model.Musician, dto.MusicianRequest]
	SoundTech *DirectoryHandler[model.SoundTech, dto.SoundTechRequest]
	People    *PeopleHandler
	Report    *ReportHandler
	Staffing  *StaffingHandler
	Profile   *ProfileHandler
	Email     *EmailHandler
}

// NewHandler wires handlers to their services.
func NewHandler(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Gig:       NewGigHandler(svc.Gig, logger),
		Contract:  NewContractHandler(svc.Contract, logger),
		Confirm:   NewConfirmHandler(svc.Confirm, logger),
		Payment:   NewPaymentHandler(svc.Payment, logger),
		Venue:     NewDirectoryHandler(svc.Venue, service.ErrVenueNotFound, logger),
		Agent:     NewDirectoryHandler(svc.Agent, service.ErrAgentNotFound, logger),
		Musician:  NewDirectoryHandler(svc.Musician, service.ErrMusicianNotFound, logger),
		SoundTech: NewDirectoryHandler(svc.SoundTech, service.ErrSoundTechNotFound, logger),
		People:    NewPeopleHandler(svc.People),
		Report:    NewReportHandler(svc.Report, svc.Staffing, logger),
		Staffing:  NewStaffingHandler(svc.Staffing, logger),
		Profile:   NewProfileHandler(svc.Profile),
		Email:     NewEmailHandler(svc.Email, cfg.Server.TrackRedirect, logger),
	}
}
