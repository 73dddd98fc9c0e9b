package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/queue"
	"github.com/rsaputelli/PRS/internal/repository"
)

// ── gig errors ──

var (
	ErrInvalidTimeWindow      = errors.New("end time must be after start time unless the gig runs overnight")
	ErrPrivateDetailsRequired = errors.New("private gigs require private event details")
	ErrGigHasPayments         = errors.New("gig has payments; pass purge_payments to delete them too")
)

// GigService gig lifecycle.
type GigService interface {
	Create(ctx context.Context, req *dto.GigRequest, actor string) (*dto.GigDetailResponse, error)
	Get(ctx context.Context, id string) (*dto.GigDetailResponse, error)
	List(ctx context.Context, req *dto.GigListRequest) ([]model.Gig, int64, error)
	Update(ctx context.Context, id string, req *dto.GigRequest, actor string) (*dto.GigDetailResponse, error)
	ReplaceDeposits(ctx context.Context, id string, req *dto.DepositsRequest) (*dto.GigDetailResponse, error)
	UpdateStaffing(ctx context.Context, id string, req *dto.StaffingRequest) (*dto.GigDetailResponse, error)
	DeletePreview(ctx context.Context, id string) (*dto.DeletePreviewResponse, error)
	Delete(ctx context.Context, id string, purgePayments bool) (*dto.DeleteGigResponse, error)
}

type gigService struct {
	repo      *repository.Repository
	publisher JobPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewGigService creates a GigService. publisher may be nil.
func NewGigService(repo *repository.Repository, publisher JobPublisher, logger *zap.Logger) GigService {
	return &gigService{repo: repo, publisher: publisher, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *gigService) Create(ctx context.Context, req *dto.GigRequest, actor string) (*dto.GigDetailResponse, error) {
	gig := &model.Gig{
		ContractStatus: model.ContractPending,
		CloseoutStatus: model.CloseoutOpen,
		StaffingTarget: model.DefaultStaffingTarget,
	}
	if err := applyGigRequest(gig, req); err != nil {
		return nil, err
	}
	if gig.IsPrivate && req.Private == nil {
		return nil, ErrPrivateDetailsRequired
	}
	if err := s.checkRefs(ctx, gig); err != nil {
		return nil, err
	}

	err := s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Gig.Create(ctx, gig); err != nil {
			return err
		}
		if req.Private != nil {
			return upsertPrivate(ctx, tx, gig.ID, req.Private)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("create gig failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("gig created", zap.String("gig_id", gig.ID), zap.String("actor", actor))
	s.publish(ctx, queue.Job{Type: queue.JobGigSaved, GigID: gig.ID, RequestedBy: actor, Created: true})
	return s.Get(ctx, gig.ID)
}

// ────────────────────── Get ──────────────────────

func (s *gigService) Get(ctx context.Context, id string) (*dto.GigDetailResponse, error) {
	gig, err := s.repo.Gig.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		return nil, err
	}

	deposits, err := s.repo.Deposit.ListByGig(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(deposits) == 0 {
		deposits = legacyDeposits(gig.Private)
	}

	staff, err := s.repo.Staffing.ListByGig(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.GigDetailResponse{
		Gig:      gig,
		Deposits: deposits,
		Staffing: staffingSlots(staff),
		Money:    dto.MoneySummary{Fee: gig.TotalFeeValue(), DepositsTotal: decimal.Zero},
	}
	if resp.Deposits == nil {
		resp.Deposits = []model.GigDeposit{}
	}
	if sched, err := ResolveDeposits(gig.TotalFeeValue(), deposits); err == nil {
		resp.Money.DepositsTotal = sched.Total
		resp.Money.FinalPayment = sched.Final
	} else {
		s.logger.Warn("stored deposit schedule is inconsistent", zap.String("gig_id", id), zap.Error(err))
	}
	return resp, nil
}

// staffingSlots one slot per band role in display order.
func staffingSlots(rows []model.GigMusician) []dto.StaffingSlot {
	byRole := make(map[string]model.GigMusician, len(rows))
	for _, r := range rows {
		byRole[r.Role] = r
	}
	slots := make([]dto.StaffingSlot, 0, len(model.BandRoles))
	for _, role := range model.BandRoles {
		slot := dto.StaffingSlot{Role: role}
		if r, ok := byRole[role]; ok {
			id := r.MusicianID
			slot.MusicianID = &id
			if r.Musician != nil {
				slot.Label = r.Musician.Label()
				slot.Email = r.Musician.Email
			}
		}
		slots = append(slots, slot)
	}
	return slots
}

// ────────────────────── List ──────────────────────

func (s *gigService) List(ctx context.Context, req *dto.GigListRequest) ([]model.Gig, int64, error) {
	from, err := parseDate(req.From)
	if err != nil {
		return nil, 0, ErrInvalidDate
	}
	to, err := parseDate(req.To)
	if err != nil {
		return nil, 0, ErrInvalidDate
	}
	return s.repo.Gig.List(ctx, repository.GigFilter{
		From:           from,
		To:             to,
		ContractStatus: req.ContractStatus,
		CloseoutStatus: req.CloseoutStatus,
		Private:        req.Private,
		VenueID:        req.VenueID,
		Offset:         req.GetOffset(),
		Limit:          req.GetPageSize(),
	})
}

// ────────────────────── Update ──────────────────────

func (s *gigService) Update(ctx context.Context, id string, req *dto.GigRequest, actor string) (*dto.GigDetailResponse, error) {
	gig, err := s.repo.Gig.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		return nil, err
	}
	if err := applyGigRequest(gig, req); err != nil {
		return nil, err
	}
	if gig.PrivateEvent() && req.Private == nil {
		if _, err := s.repo.Gig.GetPrivate(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPrivateDetailsRequired
			}
			return nil, err
		}
	}
	if err := s.checkRefs(ctx, gig); err != nil {
		return nil, err
	}

	// A new fee must still cover the stored schedule.
	deposits, err := s.repo.Deposit.ListByGig(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ResolveDeposits(gig.TotalFeeValue(), deposits); err != nil {
		return nil, err
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Gig.Update(ctx, gig); err != nil {
			return err
		}
		if req.Private != nil {
			return upsertPrivate(ctx, tx, gig.ID, req.Private)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("update gig failed", zap.String("gig_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("gig updated", zap.String("gig_id", id), zap.String("actor", actor))
	s.publish(ctx, queue.Job{Type: queue.JobGigSaved, GigID: id, RequestedBy: actor})
	return s.Get(ctx, id)
}

// ────────────────────── ReplaceDeposits ──────────────────────

func (s *gigService) ReplaceDeposits(ctx context.Context, id string, req *dto.DepositsRequest) (*dto.GigDetailResponse, error) {
	gig, err := s.repo.Gig.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		return nil, err
	}

	deposits := make([]model.GigDeposit, 0, len(req.Deposits))
	for i, item := range req.Deposits {
		due, err := parseDate(item.DueDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		deposits = append(deposits, model.GigDeposit{
			GigID:        id,
			Seq:          i + 1,
			DueDate:      due,
			Amount:       item.Amount,
			IsPercentage: item.IsPercentage,
		})
	}
	if _, err := ResolveDeposits(gig.TotalFeeValue(), deposits); err != nil {
		return nil, err
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.Deposit.ReplaceForGig(ctx, id, deposits)
	})
	if err != nil {
		s.logger.Error("replace deposits failed", zap.String("gig_id", id), zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, id)
}

// ────────────────────── UpdateStaffing ──────────────────────

func (s *gigService) UpdateStaffing(ctx context.Context, id string, req *dto.StaffingRequest) (*dto.GigDetailResponse, error) {
	if _, err := s.repo.Gig.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		return nil, err
	}
	for _, a := range req.Assignments {
		if a.MusicianID == nil {
			continue
		}
		if _, err := s.repo.Musician.GetByID(ctx, *a.MusicianID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMusicianNotFound
			}
			return nil, err
		}
	}

	err := s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		for _, a := range req.Assignments {
			if a.MusicianID == nil {
				if err := tx.Staffing.Unassign(ctx, id, a.Role); err != nil {
					return err
				}
				continue
			}
			if err := tx.Staffing.Assign(ctx, &model.GigMusician{GigID: id, MusicianID: *a.MusicianID, Role: a.Role}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("update staffing failed", zap.String("gig_id", id), zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *gigService) DeletePreview(ctx context.Context, id string) (*dto.DeletePreviewResponse, error) {
	gig, err := s.repo.Gig.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		return nil, err
	}
	counts, err := s.repo.Gig.CountChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.DeletePreviewResponse{
		GigID:         id,
		Title:         gig.Title,
		EventDate:     gig.EventDate.Format(layoutISO),
		Counts:        counts,
		RequiresPurge: counts.Payments > 0,
	}, nil
}

func (s *gigService) Delete(ctx context.Context, id string, purgePayments bool) (*dto.DeleteGigResponse, error) {
	resp := &dto.DeleteGigResponse{GigID: id}
	err := s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		counts, err := tx.Gig.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if counts.Payments > 0 {
			if !purgePayments {
				return ErrGigHasPayments
			}
			n, err := tx.Payment.DeleteByGig(ctx, id)
			if err != nil {
				return err
			}
			resp.PaymentsDeleted = n
		}
		n, err := tx.Gig.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrGigNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrGigHasPayments) && !errors.Is(err, ErrGigNotFound) {
			s.logger.Error("delete gig failed", zap.String("gig_id", id), zap.Error(err))
		}
		return nil, err
	}
	s.logger.Info("gig deleted", zap.String("gig_id", id), zap.Int64("payments_deleted", resp.PaymentsDeleted))
	return resp, nil
}

// ── helpers ──

func (s *gigService) publish(ctx context.Context, job queue.Job) {
	publishJob(ctx, s.publisher, s.logger, job, s.now())
}

// publishJob never fails the caller; the data is already committed.
func publishJob(ctx context.Context, p JobPublisher, logger *zap.Logger, job queue.Job, now time.Time) bool {
	if p == nil {
		logger.Debug("queue disabled, job skipped", zap.String("type", job.Type), zap.String("gig_id", job.GigID))
		return false
	}
	job.EnqueuedAt = now.UTC()
	if err := p.Publish(ctx, job); err != nil {
		logger.Warn("publish job failed", zap.String("type", job.Type), zap.String("gig_id", job.GigID), zap.Error(err))
		return false
	}
	return true
}

// checkRefs turns dangling foreign keys into not-found errors before writing.
func (s *gigService) checkRefs(ctx context.Context, g *model.Gig) error {
	if g.VenueID != nil {
		if _, err := s.repo.Venue.GetByID(ctx, *g.VenueID); err != nil {
			return notFoundAs(err, ErrVenueNotFound)
		}
	}
	if g.AgentID != nil {
		if _, err := s.repo.Agent.GetByID(ctx, *g.AgentID); err != nil {
			return notFoundAs(err, ErrAgentNotFound)
		}
	}
	if g.SoundTechID != nil {
		if _, err := s.repo.SoundTech.GetByID(ctx, *g.SoundTechID); err != nil {
			return notFoundAs(err, ErrSoundTechNotFound)
		}
	}
	return nil
}

func notFoundAs(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// applyGigRequest copies req onto g and validates the result.
func applyGigRequest(g *model.Gig, req *dto.GigRequest) error {
	date, err := parseDate(req.EventDate)
	if err != nil || date == nil {
		return ErrInvalidDate
	}
	g.EventDate = *date
	g.Title = trimPtr(req.Title)
	g.StartTime = model.StrPtr(req.StartTime)
	g.EndTime = model.StrPtr(req.EndTime)
	g.Overnight = req.Overnight
	if req.ContractStatus != "" {
		g.ContractStatus = req.ContractStatus
	}
	g.VenueID = trimPtr(req.VenueID)
	g.AgentID = trimPtr(req.AgentID)
	g.SoundTechID = trimPtr(req.SoundTechID)
	g.IsPrivate = req.IsPrivate
	g.BandName = trimPtr(req.BandName)
	g.PackageName = trimPtr(req.PackageName)
	g.Notes = trimPtr(req.Notes)
	g.SoundProvided = req.SoundProvided
	g.SoundByVenueName = trimPtr(req.SoundByVenueName)
	g.SoundByVenuePhone = trimPtr(req.SoundByVenuePhone)
	if req.StaffingTarget != nil {
		g.StaffingTarget = *req.StaffingTarget
	}

	for _, m := range []struct {
		dst *decimal.NullDecimal
		src *decimal.Decimal
	}{
		{&g.Fee, req.Fee},
		{&g.SoundFee, req.SoundFee},
		{&g.OvertimeRate, req.OvertimeRate},
	} {
		if m.src == nil {
			*m.dst = decimal.NullDecimal{}
			continue
		}
		if m.src.IsNegative() {
			return ErrNegativeAmount
		}
		*m.dst = decimal.NewNullDecimal(*m.src)
	}

	return validateWindow(g)
}

// validateWindow end must follow start on the same day unless overnight.
func validateWindow(g *model.Gig) error {
	if g.StartTime == nil || g.EndTime == nil || g.Overnight {
		return nil
	}
	st, ok1 := model.ParseClock(*g.StartTime)
	et, ok2 := model.ParseClock(*g.EndTime)
	if !ok1 || !ok2 || !et.After(st) {
		return ErrInvalidTimeWindow
	}
	return nil
}

func upsertPrivate(ctx context.Context, tx *repository.Repository, gigID string, req *dto.GigPrivateRequest) error {
	due, err := parseDate(req.FinalPaymentDueDate)
	if err != nil {
		return ErrInvalidDate
	}
	p := &model.GigPrivate{
		GigID:                gigID,
		Organizer:            trimPtr(req.Organizer),
		EventType:            trimPtr(req.EventType),
		Honoree:              trimPtr(req.Honoree),
		ClientName:           trimPtr(req.ClientName),
		ClientEmail:          trimPtr(req.ClientEmail),
		ClientPhone:          trimPtr(req.ClientPhone),
		ClientMailingAddress: trimPtr(req.ClientMailingAddress),
		BandSize:             req.BandSize,
		NumVocalists:         req.NumVocalists,
		CeremonyCoverage:     req.CeremonyCoverage,
		CocktailCoverage:     req.CocktailCoverage,
		ReceptionStartTime:   model.StrPtr(req.ReceptionStartTime),
		ReceptionEndTime:     model.StrPtr(req.ReceptionEndTime),
		FinalPaymentDueDate:  due,
		PaymentMethodNotes:   trimPtr(req.PaymentMethodNotes),
		SpecialInstructions:  trimPtr(req.SpecialInstructions),
	}
	if req.ContractTotalAmount != nil {
		if req.ContractTotalAmount.IsNegative() {
			return ErrNegativeAmount
		}
		p.ContractTotalAmount = decimal.NewNullDecimal(*req.ContractTotalAmount)
	}
	return tx.Gig.UpsertPrivate(ctx, p)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return model.StrPtr(strings.TrimSpace(*s))
}
