// Package calendar keeps one Google Calendar event per gig in step with the
// database.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/pkg/metrics"
)

// CalendarScope read/write access to events.
const CalendarScope = "https://www.googleapis.com/auth/calendar.events"

// Calendar-id mapping keys.
const (
	KeyPublic  = "public"
	KeyPrivate = "private"
	KeyDefault = "default"
)

// ErrNoCalendar no calendar id is configured for the gig's kind.
var ErrNoCalendar = errors.New("calendar: no calendar configured")

// Client upserts gig events through the Calendar v3 REST API.
type Client struct {
	cfg    *config.CalendarConfig
	http   *http.Client
	loc    *time.Location
	logger *zap.Logger
}

// NewClient creates a Client. httpClient must carry OAuth credentials.
func NewClient(cfg *config.CalendarConfig, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("calendar timezone: %w", err)
	}
	return &Client{cfg: cfg, http: httpClient, loc: loc, logger: logger}, nil
}

// CalendarFor picks the calendar id for a gig: "private" or "public",
// falling back to "default".
func (c *Client) CalendarFor(g *model.Gig) (string, error) {
	key := KeyPublic
	if g.PrivateEvent() {
		key = KeyPrivate
	}
	if id := c.cfg.IDs[key]; id != "" {
		return id, nil
	}
	if id := c.cfg.IDs[KeyDefault]; id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w for %q", ErrNoCalendar, key)
}

// EventID deterministic Google event id for a gig (base32hex alphabet).
func EventID(gigID string) string {
	return "prs" + strings.ToLower(strings.ReplaceAll(gigID, "-", ""))
}

type eventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Event the subset of the Calendar event resource this service writes.
type Event struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

// BuildEvent maps a gig (with Venue preloaded) to its calendar event.
// Gigs without both times become all-day events.
func (c *Client) BuildEvent(g *model.Gig) *Event {
	ev := &Event{
		ID:      EventID(g.ID),
		Summary: model.FirstNonEmpty(model.StrVal(g.Title), model.StrVal(g.BandName), "Gig"),
		Status:  "confirmed",
	}
	if g.ContractStatus == model.ContractCanceled {
		ev.Status = "cancelled"
	}
	if g.Venue != nil {
		ev.Location = strings.Trim(g.Venue.Name+", "+g.Venue.FullAddress(), ", ")
	}

	var desc []string
	desc = append(desc, "Contract: "+g.ContractStatus)
	if g.PackageName != nil {
		desc = append(desc, "Package: "+*g.PackageName)
	}
	if g.Notes != nil {
		desc = append(desc, *g.Notes)
	}
	ev.Description = strings.Join(desc, "\n")

	if start, end, ok := g.Window(c.loc); ok {
		ev.Start = eventTime{DateTime: start.Format(time.RFC3339), TimeZone: c.cfg.Timezone}
		ev.End = eventTime{DateTime: end.Format(time.RFC3339), TimeZone: c.cfg.Timezone}
	} else {
		ev.Start = eventTime{Date: g.EventDate.Format("2006-01-02")}
		ev.End = eventTime{Date: g.EventDate.AddDate(0, 0, 1).Format("2006-01-02")}
	}
	return ev
}

// UpsertGig writes the gig's event, creating it on first sync.
func (c *Client) UpsertGig(ctx context.Context, g *model.Gig) error {
	calID, err := c.CalendarFor(g)
	if err != nil {
		return err
	}
	ev := c.BuildEvent(g)
	base := strings.TrimRight(c.cfg.APIBase, "/") + "/calendars/" + url.PathEscape(calID) + "/events"

	code, err := c.do(ctx, http.MethodPut, base+"/"+ev.ID, ev)
	if code == http.StatusNotFound {
		code, err = c.do(ctx, http.MethodPost, base, ev)
	}
	if err != nil {
		metrics.IncCalendar("error")
		return err
	}
	metrics.IncCalendar("ok")
	c.logger.Info("calendar event synced", zap.String("gig_id", g.ID), zap.String("event_id", ev.ID), zap.Int("status", code))
	return nil
}

func (c *Client) do(ctx context.Context, method, target string, ev *Event) (int, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 == 2 {
		return resp.StatusCode, nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	return resp.StatusCode, fmt.Errorf("calendar: %s %s: HTTP %d: %s", method, target, resp.StatusCode, strings.TrimSpace(string(msg)))
}
