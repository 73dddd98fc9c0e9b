package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/rsaputelli/PRS/config"
)

// GmailSendScope the only scope the sender needs.
const GmailSendScope = "https://www.googleapis.com/auth/gmail.send"

// GmailSender sends through users.messages.send with refresh-token credentials.
type GmailSender struct {
	cfg    *config.GmailConfig
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewGmailSender builds the sender. A nil client means an OAuth2 client
// minted from cfg's refresh token.
func NewGmailSender(cfg *config.GmailConfig, client *http.Client, logger *zap.Logger) *GmailSender {
	if client == nil {
		client = OAuthClient(context.Background(), cfg.ClientID, cfg.ClientSecret, cfg.RefreshToken, GmailSendScope)
	}
	return &GmailSender{cfg: cfg, client: client, logger: logger, now: time.Now}
}

// OAuthClient an HTTP client that refreshes Google access tokens on demand.
func OAuthClient(ctx context.Context, clientID, clientSecret, refreshToken string, scopes ...string) *http.Client {
	oc := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoints.Google,
		Scopes:       scopes,
	}
	return oc.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})
}

type gmailSendResponse struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// StatusError a non-2xx reply from the Gmail API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gmail: HTTP %d: %s", e.Code, e.Body)
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Send posts the message, backing off exponentially on 429 and 5xx.
func (s *GmailSender) Send(ctx context.Context, msg *Message) (string, error) {
	if msg.From == "" {
		msg.From = s.cfg.Sender
	}
	raw, err := msg.Build(s.now())
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(map[string]string{"raw": base64.URLEncoding.EncodeToString(raw)})
	if err != nil {
		return "", err
	}
	url := strings.TrimRight(s.cfg.APIBase, "/") + "/gmail/v1/users/me/messages/send"

	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := s.cfg.RetryBase<<(attempt-1) + time.Duration(rand.Int63n(int64(250*time.Millisecond)))
			s.logger.Warn("gmail send retry", zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		id, err := s.post(ctx, url, payload)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if se, ok := err.(*StatusError); ok && !retryable(se.Code) {
			return "", err
		}
	}
	return "", lastErr
}

func (s *GmailSender) post(ctx context.Context, url string, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode/100 != 2 {
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	var out gmailSendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("gmail: decode response: %w", err)
	}
	return out.ID, nil
}
