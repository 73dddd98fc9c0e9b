package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/queue"
	"github.com/rsaputelli/PRS/internal/repository"
)

// Digest run statuses written to notif_staffing_log.
const (
	DigestSent          = "sent"
	DigestPartial       = "partial"
	DigestFailed        = "failed"
	DigestNoSubscribers = "no-subscribers"
)

// StaffingService understaffed gigs and the subscriber digest.
type StaffingService interface {
	Understaffed(ctx context.Context, days int) ([]dto.UnderstaffedItem, error)
	SendDigest(ctx context.Context, actor string, async bool) (*dto.DigestResponse, error)
	// ResendDigest mails only the active subscribers among emails.
	ResendDigest(ctx context.Context, actor string, emails []string) (*dto.DigestResponse, error)
	ListSubscribers(ctx context.Context) ([]model.StaffingSubscriber, error)
	UpsertSubscriber(ctx context.Context, req *dto.SubscriberRequest) (*model.StaffingSubscriber, error)
	ListLogs(ctx context.Context, limit int) ([]model.StaffingLog, error)
}

type staffingService struct {
	cfg       *config.Config
	repo      *repository.Repository
	email     EmailService
	publisher JobPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewStaffingService creates a StaffingService. publisher may be nil.
func NewStaffingService(cfg *config.Config, repo *repository.Repository, email EmailService, publisher JobPublisher, logger *zap.Logger) StaffingService {
	return &staffingService{cfg: cfg, repo: repo, email: email, publisher: publisher, logger: logger, now: time.Now}
}

// ────────────────────── Understaffed ──────────────────────

func (s *staffingService) Understaffed(ctx context.Context, days int) ([]dto.UnderstaffedItem, error) {
	if days <= 0 {
		days = s.cfg.Staffing.LookaheadDays
	}
	through := s.now().AddDate(0, 0, days)
	gigs, err := s.repo.Report.ListUnderstaffed(ctx, through)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(gigs))
	for _, g := range gigs {
		ids = append(ids, g.ID)
	}
	assigned, err := s.repo.Staffing.ListByGigs(ctx, ids)
	if err != nil {
		return nil, err
	}
	have := make(map[string]map[string]bool, len(gigs))
	for _, a := range assigned {
		if have[a.GigID] == nil {
			have[a.GigID] = map[string]bool{}
		}
		have[a.GigID][a.Role] = true
	}

	items := make([]dto.UnderstaffedItem, 0, len(gigs))
	for _, g := range gigs {
		items = append(items, dto.UnderstaffedItem{UnderstaffedGig: g, MissingRoles: missingRoles(have[g.ID])})
	}
	return items, nil
}

// missingRoles band roles not in have, in display order.
func missingRoles(have map[string]bool) []string {
	out := []string{}
	for _, r := range model.BandRoles {
		if !have[r] {
			out = append(out, r)
		}
	}
	return out
}

// ────────────────────── Digest ──────────────────────

func (s *staffingService) SendDigest(ctx context.Context, actor string, async bool) (*dto.DigestResponse, error) {
	if async {
		if !publishJob(ctx, s.publisher, s.logger, queue.Job{Type: queue.JobStaffingDigest, RequestedBy: actor}, s.now()) {
			return nil, ErrQueueUnavailable
		}
		return &dto.DigestResponse{Status: "queued", Queued: true}, nil
	}
	return s.sendDigest(ctx, actor, nil)
}

func (s *staffingService) ResendDigest(ctx context.Context, actor string, emails []string) (*dto.DigestResponse, error) {
	only := make(map[string]bool, len(emails))
	for _, e := range emails {
		only[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return s.sendDigest(ctx, actor, only)
}

// sendDigest mails active subscribers, restricted to only when it is non-nil.
func (s *staffingService) sendDigest(ctx context.Context, actor string, only map[string]bool) (*dto.DigestResponse, error) {
	items, err := s.Understaffed(ctx, 0)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.Notify.ListSubscribers(ctx, true)
	if err != nil {
		return nil, err
	}
	subs := active
	if only != nil {
		subs = subs[:0:0]
		for _, sub := range active {
			if only[strings.ToLower(sub.Email)] {
				subs = append(subs, sub)
			}
		}
	}

	resp := &dto.DigestResponse{GigsFlagged: len(items), Recipients: len(subs)}
	if len(subs) == 0 {
		resp.Status = DigestNoSubscribers
		s.writeLog(ctx, resp, actor)
		return resp, nil
	}

	today := s.now()
	subject := fmt.Sprintf("%s - %s", s.cfg.Staffing.Subject, today.Format("Jan 02, 2006"))
	body := digestHTML(items, today)

	var failed int
	for _, sub := range subs {
		res, err := s.email.Send(ctx, &OutboundEmail{
			Kind:    model.EmailStaffingDigest,
			To:      sub.Email,
			Subject: subject,
			HTML:    body,
			Detail:  map[string]interface{}{"gigs_flagged": len(items)},
		})
		if err != nil {
			failed++
		}
		resp.Results = append(resp.Results, res)
	}

	switch {
	case failed == 0:
		resp.Status = DigestSent
	case failed == len(subs):
		resp.Status = DigestFailed
	default:
		resp.Status = DigestPartial
	}
	s.writeLog(ctx, resp, actor)

	if failed > 0 {
		return resp, ErrDeliveryFailed
	}
	return resp, nil
}

func (s *staffingService) writeLog(ctx context.Context, resp *dto.DigestResponse, actor string) {
	detail, _ := json.Marshal(map[string]interface{}{"requested_by": actor, "results": resp.Results})
	row := &model.StaffingLog{
		RunAt:       s.now().UTC(),
		Status:      resp.Status,
		Recipients:  resp.Recipients,
		GigsFlagged: resp.GigsFlagged,
		Detail:      datatypes.JSON(detail),
	}
	if err := s.repo.Notify.CreateLog(ctx, row); err != nil {
		s.logger.Error("write staffing log failed", zap.String("status", resp.Status), zap.Error(err))
	}
}

// digestHTML date, title, venue and what is missing per gig.
func digestHTML(items []dto.UnderstaffedItem, today time.Time) string {
	asOf := today.Format("Jan 02, 2006")
	if len(items) == 0 {
		return "<p>All upcoming gigs are fully staffed as of " + asOf + ".</p>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<p>Gigs not fully staffed as of %s:</p>", asOf)
	plural := "s"
	if len(items) == 1 {
		plural = ""
	}
	fmt.Fprintf(&b, "<p><b>%d gig%s need attention.</b></p>", len(items), plural)
	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0"><thead><tr><th>Date</th><th>Title</th><th>Venue</th><th>Missing</th></tr></thead><tbody>`)
	for _, it := range items {
		var missing []string
		if len(it.MissingRoles) > 0 {
			missing = append(missing, "Roles: "+strings.Join(it.MissingRoles, ", "))
		}
		if !it.SoundOK {
			missing = append(missing, "Sound")
		}
		if !it.DetailsOK {
			missing = append(missing, "Details")
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			it.EventDate.Format(layoutISO),
			html.EscapeString(model.FirstNonEmpty(model.StrVal(it.Title), "(untitled)")),
			html.EscapeString(model.FirstNonEmpty(model.StrVal(it.VenueName), "(venue not assigned)")),
			html.EscapeString(strings.Join(missing, ", ")),
		)
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

// ────────────────────── Subscribers ──────────────────────

func (s *staffingService) ListSubscribers(ctx context.Context) ([]model.StaffingSubscriber, error) {
	subs, err := s.repo.Notify.ListSubscribers(ctx, false)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []model.StaffingSubscriber{}
	}
	return subs, nil
}

func (s *staffingService) UpsertSubscriber(ctx context.Context, req *dto.SubscriberRequest) (*model.StaffingSubscriber, error) {
	sub := &model.StaffingSubscriber{
		Email:  req.Email,
		Name:   trimPtr(req.Name),
		Active: true,
	}
	if req.Active != nil {
		sub.Active = *req.Active
	}
	if err := s.repo.Notify.UpsertSubscriber(ctx, sub); err != nil {
		s.logger.Error("upsert staffing subscriber failed", zap.Error(err))
		return nil, err
	}
	return sub, nil
}

func (s *staffingService) ListLogs(ctx context.Context, limit int) ([]model.StaffingLog, error) {
	return s.repo.Notify.ListLogs(ctx, limit)
}
