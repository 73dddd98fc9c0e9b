package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/config"
)

// SMTPSender relays through a plain SMTP submission server.
type SMTPSender struct {
	cfg    *config.SMTPConfig
	logger *zap.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates an SMTPSender.
func NewSMTPSender(cfg *config.SMTPConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger, send: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if msg.From == "" {
		msg.From = s.cfg.From
	}
	raw, err := msg.Build(time.Now())
	if err != nil {
		return "", err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.send(addr, auth, s.cfg.From, msg.Recipients(), raw); err != nil {
		return "", fmt.Errorf("smtp: %w", err)
	}
	return "", nil
}

// FallbackSender tries Primary and, when it fails, Secondary.
type FallbackSender struct {
	Primary   Sender
	Secondary Sender
	Logger    *zap.Logger
}

func (f *FallbackSender) Send(ctx context.Context, msg *Message) (string, error) {
	id, err := f.Primary.Send(ctx, msg)
	if err == nil || f.Secondary == nil {
		return id, err
	}
	f.Logger.Warn("primary mail sender failed, using fallback", zap.Error(err))
	id, ferr := f.Secondary.Send(ctx, msg)
	if ferr != nil {
		return "", fmt.Errorf("%v; fallback: %w", err, ferr)
	}
	return id, nil
}

// NewSender Gmail, wrapped with the SMTP relay when one is configured.
func NewSender(cfg *config.MailConfig, logger *zap.Logger) Sender {
	gmail := NewGmailSender(&cfg.Gmail, nil, logger)
	if !cfg.SMTP.Enabled() {
		return gmail
	}
	return &FallbackSender{Primary: gmail, Secondary: NewSMTPSender(&cfg.SMTP, logger), Logger: logger}
}
