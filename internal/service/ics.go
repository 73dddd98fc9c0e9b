package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/rsaputelli/PRS/internal/model"
)

// ── player invite (RFC 5545) ─────────────────────────────────
//
// One VEVENT per musician per gig, sent with METHOD:REQUEST so mail clients
// offer to add it. Times are local wall-clock with a TZID parameter and the
// UID is stable, so a re-send updates the event instead of duplicating it.
// ──────────────────────────────────────────────────────────────

const (
	icsProdID     = "-//PRS//Band Manager//EN"
	icsLocalStamp = "20060102T150405"
)

// ErrGigTimesMissing the gig has no start or end time to put on a calendar.
var ErrGigTimesMissing = errors.New("gig start and end times are required for an invite")

// PlayerInvite inputs for one invite.
type PlayerInvite struct {
	Gig        *model.Gig
	MusicianID string
	Players    []string
	Sound      string
	Organizer  string
	Timezone   string
}

// InviteUID stable UID for a musician's invite to a gig.
func InviteUID(gigID, musicianID string) string {
	return fmt.Sprintf("prs-%s-%s@prs", gigID, musicianID)
}

// BuildPlayerInvite returns the attachment file name and ICS bytes. The Gig
// must have its Venue preloaded when it has one.
func BuildPlayerInvite(in PlayerInvite, now time.Time) (string, []byte, error) {
	loc, err := time.LoadLocation(in.Timezone)
	if err != nil {
		return "", nil, fmt.Errorf("invite timezone: %w", err)
	}
	start, end, ok := in.Gig.Window(loc)
	if !ok {
		return "", nil, ErrGigTimesMissing
	}

	g := in.Gig
	title := model.FirstNonEmpty(model.StrVal(g.Title), "Gig")
	tzid := &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{in.Timezone}}

	cal := ics.NewCalendar()
	cal.SetProductId(icsProdID)
	cal.SetMethod(ics.MethodRequest)

	ev := cal.AddEvent(InviteUID(g.ID, in.MusicianID))
	ev.SetDtStampTime(now.UTC())
	ev.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsLocalStamp), tzid)
	ev.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsLocalStamp), tzid)
	ev.SetSummary(title)

	var venueName, venueAddr string
	if g.Venue != nil {
		venueName, venueAddr = g.Venue.Name, g.Venue.FullAddress()
	}
	if loc := strings.Trim(venueName+" - "+venueAddr, " -"); loc != "" {
		ev.SetLocation(loc)
	}

	var desc []string
	if venueName != "" {
		desc = append(desc, "Venue: "+venueName)
	}
	if venueAddr != "" {
		desc = append(desc, "Address: "+venueAddr)
	}
	desc = append(desc, "Start: "+Clock12(g.StartTime), "End: "+Clock12(g.EndTime))
	if len(in.Players) > 0 {
		desc = append(desc, "", "Players:")
		for _, p := range in.Players {
			desc = append(desc, "  - "+p)
		}
	}
	if in.Sound != "" {
		desc = append(desc, "Sound: "+in.Sound)
	}
	ev.SetDescription(strings.Join(desc, "\n"))

	if in.Organizer != "" {
		ev.SetOrganizer("mailto:" + in.Organizer)
	}
	ev.SetStatus(ics.ObjectStatusConfirmed)

	name := fmt.Sprintf("%s-%s.ics", strings.ReplaceAll(title, " ", "_"), start.Format("20060102"))
	return name, []byte(cal.Serialize()), nil
}
