package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/mail"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/queue"
	"github.com/rsaputelli/PRS/internal/repository"
)

// ── confirmation errors ──

var (
	ErrConfirmPrivateGig   = errors.New("venue confirmation is not allowed for private gigs")
	ErrConfirmAgentManaged = errors.New("agent-managed gig; venue confirmation is suppressed")
	ErrConfirmNoVenue      = errors.New("gig has no venue")
	ErrConfirmNoVenueEmail = errors.New("venue has no contact email on file")
	ErrConfirmNoAgent      = errors.New("gig has no agent")
	ErrConfirmNoSoundTech  = errors.New("gig has no sound tech")
	ErrConfirmNoStaffing   = errors.New("no musicians are assigned to the gig")
	ErrQueueUnavailable    = errors.New("background delivery is not available")
)

const venueConfirmHTML = `<p>Hello {{venue_name}},</p>
<p>Thank you for booking Philly Rock and Soul. We're excited to play for you.</p>
<p>Please confirm the details of our performance listed below. If anything needs correction, reply to this email.</p>
{{table_html}}
<p><a href="{{confirm_url}}"><b>Click here to confirm</b></a></p>
<p>{{sender}}</p>`

const playerConfirmHTML = `<p>Hi {{musician_name}},</p>
<p>You're confirmed as <b>{{role}}</b> for <b>{{title}}</b>. A calendar invite is attached.</p>
{{table_html}}
<p>Reply to this email if anything looks off.</p>`

const plainConfirmHTML = `<p>Hello {{name}},</p>
<p>This is a confirmation for <b>{{title}}</b>.</p>
{{table_html}}
<p>If anything looks off, please reply.</p>`

// ConfirmService confirmation mails for venues, players, agents and sound techs.
type ConfirmService interface {
	// VenueConfirm sends now, or queues when async is set.
	VenueConfirm(ctx context.Context, gigID, actor string, async bool) (*dto.ConfirmResponse, error)
	// PlayerConfirms one mail with an invite per assigned musician. An empty
	// musicianIDs means everyone staffed.
	PlayerConfirms(ctx context.Context, gigID string, musicianIDs []string, actor string, async bool) (*dto.ConfirmResponse, error)
	AgentConfirm(ctx context.Context, gigID string) (*dto.ConfirmResponse, error)
	SoundTechConfirm(ctx context.Context, gigID string) (*dto.ConfirmResponse, error)
}

type confirmService struct {
	cfg       *config.Config
	repo      *repository.Repository
	email     EmailService
	publisher JobPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewConfirmService creates a ConfirmService. publisher may be nil.
func NewConfirmService(cfg *config.Config, repo *repository.Repository, email EmailService, publisher JobPublisher, logger *zap.Logger) ConfirmService {
	return &confirmService{cfg: cfg, repo: repo, email: email, publisher: publisher, logger: logger, now: time.Now}
}

// ────────────────────── Venue ──────────────────────

func (s *confirmService) VenueConfirm(ctx context.Context, gigID, actor string, async bool) (*dto.ConfirmResponse, error) {
	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if err := venueConfirmable(gig); err != nil {
		return nil, err
	}
	if async {
		return s.enqueue(ctx, queue.Job{Type: queue.JobVenueConfirm, GigID: gigID, RequestedBy: actor})
	}

	token := s.email.NewToken()
	title := model.FirstNonEmpty(model.StrVal(gig.Title), "Live Performance")
	body := renderHTML(venueConfirmHTML, map[string]string{
		"venue_name":  gig.Venue.Name,
		"table_html":  htmlTable(gigRows(gig, false)),
		"confirm_url": s.email.TrackURL(token),
		"sender":      s.cfg.Mail.Gmail.Sender,
	})
	res, err := s.email.Send(ctx, &OutboundEmail{
		Kind:    model.EmailVenueConfirm,
		GigID:   gigID,
		To:      model.StrVal(gig.Venue.ContactEmail),
		Subject: fmt.Sprintf("[Venue Confirmation] %s - %s", title, DateISO(&gig.EventDate)),
		HTML:    body,
		Token:   token,
		Detail:  map[string]interface{}{"venue_id": gig.Venue.ID, "requested_by": actor},
	})
	return &dto.ConfirmResponse{GigID: gigID, Results: []dto.SendResult{res}}, err
}

// venueConfirmable blocks private, agent-managed and venue-less gigs.
func venueConfirmable(g *model.Gig) error {
	switch {
	case g.PrivateEvent():
		return ErrConfirmPrivateGig
	case g.AgentID != nil:
		return ErrConfirmAgentManaged
	case g.VenueID == nil || g.Venue == nil:
		return ErrConfirmNoVenue
	case strings.TrimSpace(model.StrVal(g.Venue.ContactEmail)) == "":
		return ErrConfirmNoVenueEmail
	}
	return nil
}

// ────────────────────── Players ──────────────────────

func (s *confirmService) PlayerConfirms(ctx context.Context, gigID string, musicianIDs []string, actor string, async bool) (*dto.ConfirmResponse, error) {
	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if _, _, ok := gig.Window(time.UTC); !ok {
		return nil, ErrGigTimesMissing
	}
	staff, err := s.repo.Staffing.ListByGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if len(staff) == 0 {
		return nil, ErrConfirmNoStaffing
	}
	if async {
		return s.enqueue(ctx, queue.Job{Type: queue.JobPlayerConfirms, GigID: gigID, RequestedBy: actor, MusicianIDs: musicianIDs})
	}

	wanted := make(map[string]bool, len(musicianIDs))
	for _, id := range musicianIDs {
		wanted[id] = true
	}

	players := make([]string, 0, len(staff))
	for _, slot := range staffingSlots(staff) {
		if slot.MusicianID != nil {
			players = append(players, slot.Role+": "+slot.Label)
		}
	}
	title := model.FirstNonEmpty(model.StrVal(gig.Title), "Gig")
	subject := fmt.Sprintf("Player Confirmation: %s (%s)", title, DateISO(&gig.EventDate))
	sound := soundContact(gig)

	resp := &dto.ConfirmResponse{GigID: gigID}
	var failed bool
	for _, gm := range staff {
		if len(wanted) > 0 && !wanted[gm.MusicianID] {
			continue
		}
		name := gm.MusicianID
		var to string
		if gm.Musician != nil {
			name = gm.Musician.Label()
			to = model.StrVal(gm.Musician.Email)
		}

		filename, invite, err := BuildPlayerInvite(PlayerInvite{
			Gig:        gig,
			MusicianID: gm.MusicianID,
			Players:    players,
			Sound:      sound,
			Organizer:  s.cfg.Mail.Gmail.Sender,
			Timezone:   s.cfg.Calendar.Timezone,
		}, s.now())
		if err != nil {
			return nil, err
		}

		body := renderHTML(playerConfirmHTML, map[string]string{
			"musician_name": name,
			"role":          gm.Role,
			"title":         title,
			"table_html":    htmlTable(gigRows(gig, false)),
		})
		res, err := s.email.Send(ctx, &OutboundEmail{
			Kind:    model.EmailPlayerConfirm,
			GigID:   gigID,
			To:      to,
			Subject: subject,
			HTML:    body,
			Attachments: []mail.Attachment{{
				Filename:    filename,
				ContentType: "text/calendar; method=REQUEST; charset=UTF-8",
				Data:        invite,
			}},
			Detail: map[string]interface{}{"musician_id": gm.MusicianID, "role": gm.Role, "requested_by": actor},
		})
		if err != nil {
			failed = true
		}
		res.MusicianID = gm.MusicianID
		resp.Results = append(resp.Results, res)
	}

	if failed {
		return resp, ErrDeliveryFailed
	}
	return resp, nil
}

func soundContact(g *model.Gig) string {
	if g.SoundTech != nil {
		return strings.TrimSpace(g.SoundTech.DisplayName + " " + model.StrVal(g.SoundTech.Phone))
	}
	if venue := model.FirstNonEmpty(model.StrVal(g.SoundByVenueName), model.StrVal(g.SoundByVenuePhone)); venue != "" {
		return strings.TrimSpace("Provided by venue: " + model.StrVal(g.SoundByVenueName) + " " + model.StrVal(g.SoundByVenuePhone))
	}
	return ""
}

// ────────────────────── Agent / Sound tech ──────────────────────

func (s *confirmService) AgentConfirm(ctx context.Context, gigID string) (*dto.ConfirmResponse, error) {
	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.Agent == nil {
		return nil, ErrConfirmNoAgent
	}
	return s.sendPlain(ctx, gig, model.EmailAgentConfirm, "Agent Confirmation",
		gig.Agent.DisplayName, model.StrVal(gig.Agent.Email), true)
}

func (s *confirmService) SoundTechConfirm(ctx context.Context, gigID string) (*dto.ConfirmResponse, error) {
	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.SoundTech == nil {
		return nil, ErrConfirmNoSoundTech
	}
	return s.sendPlain(ctx, gig, model.EmailSoundConfirm, "Sound Tech Confirmation",
		gig.SoundTech.DisplayName, model.StrVal(gig.SoundTech.Email), false)
}

func (s *confirmService) sendPlain(ctx context.Context, gig *model.Gig, kind, label, name, to string, withFee bool) (*dto.ConfirmResponse, error) {
	title := model.FirstNonEmpty(model.StrVal(gig.Title), "Gig")
	body := renderHTML(plainConfirmHTML, map[string]string{
		"name":       model.FirstNonEmpty(name, "there"),
		"title":      title,
		"table_html": htmlTable(gigRows(gig, withFee)),
	})
	res, err := s.email.Send(ctx, &OutboundEmail{
		Kind:    kind,
		GigID:   gig.ID,
		To:      to,
		Subject: fmt.Sprintf("%s: %s (%s)", label, title, DateISO(&gig.EventDate)),
		HTML:    body,
	})
	return &dto.ConfirmResponse{GigID: gig.ID, Results: []dto.SendResult{res}}, err
}

// ── helpers ──

func (s *confirmService) loadGig(ctx context.Context, gigID string) (*model.Gig, error) {
	gig, err := s.repo.Gig.GetDetail(ctx, gigID)
	if err != nil {
		return nil, notFoundAs(err, ErrGigNotFound)
	}
	return gig, nil
}

func (s *confirmService) enqueue(ctx context.Context, job queue.Job) (*dto.ConfirmResponse, error) {
	if s.publisher == nil {
		return nil, ErrQueueUnavailable
	}
	job.EnqueuedAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, job); err != nil {
		s.logger.Error("enqueue confirmation failed", zap.String("type", job.Type), zap.String("gig_id", job.GigID), zap.Error(err))
		return nil, err
	}
	return &dto.ConfirmResponse{GigID: job.GigID, Queued: true}, nil
}

// gigRows the summary table shared by the confirmation mails.
func gigRows(g *model.Gig, withFee bool) [][2]string {
	rows := [][2]string{
		{"Event", model.FirstNonEmpty(model.StrVal(g.Title), "Live Performance")},
		{"Date", DateLong(&g.EventDate)},
		{"Time", timeRange(g)},
	}
	if g.Venue != nil {
		rows = append(rows, [2]string{"Venue", g.Venue.Name})
		if addr := g.Venue.FullAddress(); addr != "" {
			rows = append(rows, [2]string{"Address", addr})
		}
	}
	if withFee {
		rows = append(rows,
			[2]string{"Contract Status", g.ContractStatus},
			[2]string{"Fee", model.FirstNonEmpty(FormatMoneyNull(g.TotalFeeValue()), "-")},
		)
	}
	return rows
}

func timeRange(g *model.Gig) string {
	start, end := Clock12(g.StartTime), Clock12(g.EndTime)
	if start == "" {
		return "-"
	}
	if end == "" {
		return start
	}
	return start + " - " + end
}
