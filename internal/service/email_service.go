package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/mail"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/repository"
	"github.com/rsaputelli/PRS/pkg/metrics"
)

// ── email errors ──

var (
	ErrDeliveryFailed     = errors.New("one or more emails failed to send")
	ErrTrackTokenNotFound = errors.New("tracking token not found")
)

// OutboundEmail one audited message. Token is generated when empty.
type OutboundEmail struct {
	Kind        string
	GigID       string
	To          string
	Subject     string
	HTML        string
	Attachments []mail.Attachment
	Detail      map[string]interface{}
	Token       string
}

// EmailService sends mail through the configured sender and records exactly
// one email_audit row per attempt.
type EmailService interface {
	Send(ctx context.Context, msg *OutboundEmail) (dto.SendResult, error)
	// NewToken an audit token for links embedded before sending.
	NewToken() string
	// TrackURL the public click-tracking link for token.
	TrackURL(token string) string
	// TrackClick records the first click; repeats are no-ops.
	TrackClick(ctx context.Context, token string) error
}

type emailService struct {
	cfg    *config.Config
	repo   *repository.Repository
	sender mail.Sender
	logger *zap.Logger
	now    func() time.Time
}

// NewEmailService creates an EmailService. sender may be nil when only
// dry-run mode is used.
func NewEmailService(cfg *config.Config, repo *repository.Repository, sender mail.Sender, logger *zap.Logger) EmailService {
	return &emailService{cfg: cfg, repo: repo, sender: sender, logger: logger, now: time.Now}
}

func (s *emailService) NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *emailService) TrackURL(token string) string {
	return strings.TrimRight(s.cfg.Server.BaseURL, "/") + "/api/v1/email/track/" + token
}

// ────────────────────── Send ──────────────────────

func (s *emailService) Send(ctx context.Context, msg *OutboundEmail) (dto.SendResult, error) {
	if msg.Token == "" {
		msg.Token = s.NewToken()
	}
	res := dto.SendResult{Kind: msg.Kind, Recipient: msg.To, Token: msg.Token}

	detail := map[string]interface{}{"subject": msg.Subject}
	for k, v := range msg.Detail {
		detail[k] = v
	}

	var sendErr error
	switch {
	case strings.TrimSpace(msg.To) == "":
		res.Status = model.EmailStatusSkipped
	case s.cfg.Mail.DryRun || s.sender == nil:
		res.Status = model.EmailStatusDryRun
	default:
		out := &mail.Message{
			To:          []string{msg.To},
			CC:          s.cfg.Mail.CC,
			ReplyTo:     s.cfg.Mail.ReplyTo,
			Subject:     msg.Subject,
			HTML:        msg.HTML,
			Attachments: msg.Attachments,
		}
		id, err := s.sender.Send(ctx, out)
		if err != nil {
			sendErr = err
			res.Status = model.EmailStatusError + ": " + err.Error()
			s.logger.Warn("email send failed",
				zap.String("kind", msg.Kind), zap.String("gig_id", msg.GigID), zap.String("to", msg.To), zap.Error(err))
		} else {
			res.Status = model.EmailStatusSent
			if id != "" {
				detail["message_id"] = id
			}
		}
	}

	if err := s.audit(ctx, msg, res.Status, detail); err != nil {
		res.AuditFailed = true
		metrics.IncMailAuditFailure(msg.Kind)
	}
	metrics.IncMail(msg.Kind, statusLabel(res.Status))

	if sendErr != nil {
		return res, fmt.Errorf("%w: %v", ErrDeliveryFailed, sendErr)
	}
	return res, nil
}

func (s *emailService) audit(ctx context.Context, msg *OutboundEmail, status string, detail map[string]interface{}) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		raw = []byte("{}")
	}
	row := &model.EmailAudit{
		Token:          msg.Token,
		GigID:          model.StrPtr(msg.GigID),
		RecipientEmail: model.StrPtr(msg.To),
		Kind:           msg.Kind,
		Status:         status,
		Ts:             s.now().UTC(),
		Detail:         datatypes.JSON(raw),
	}
	if err := s.repo.EmailAudit.Create(ctx, row); err != nil {
		s.logger.Error("write email audit failed",
			zap.String("token", msg.Token), zap.String("kind", msg.Kind), zap.String("status", status), zap.Error(err))
		return err
	}
	return nil
}

// statusLabel collapses "error: <msg>" for metric labels.
func statusLabel(status string) string {
	if strings.HasPrefix(status, model.EmailStatusError) {
		return model.EmailStatusError
	}
	return status
}

// ────────────────────── TrackClick ──────────────────────

func (s *emailService) TrackClick(ctx context.Context, token string) error {
	updated, err := s.repo.EmailAudit.MarkClicked(ctx, token, s.now().UTC())
	if err != nil {
		s.logger.Error("mark email clicked failed", zap.String("token", token), zap.Error(err))
		return err
	}
	if updated {
		return nil
	}
	if _, err := s.repo.EmailAudit.GetByToken(ctx, token); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTrackTokenNotFound
		}
		return err
	}
	return nil
}

// ── html bodies ──

// renderHTML fills a {{token}} body template. Values are HTML-escaped
// unless the key ends in "_html".
func renderHTML(tpl string, vals map[string]string) string {
	return fasttemplate.ExecuteStringStd(tpl, "{{", "}}", escapeValues(vals))
}

func escapeValues(vals map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(vals))
	for k, v := range vals {
		if strings.HasSuffix(k, "_html") {
			out[k] = v
		} else {
			out[k] = html.EscapeString(v)
		}
	}
	return out
}

// htmlTable a bordered two-column key/value table.
func htmlTable(rows [][2]string) string {
	var b strings.Builder
	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0" style="border-collapse:collapse">`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<tr><th align="left">%s</th><td>%s</td></tr>`, html.EscapeString(r[0]), html.EscapeString(r[1]))
	}
	b.WriteString(`</table>`)
	return b.String()
}
