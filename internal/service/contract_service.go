package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/repository"
	"github.com/rsaputelli/PRS/pkg/metrics"
)

// ── contract errors ──

var (
	ErrPrivateDetailsMissing = errors.New("private gig has no private event details")
	ErrUnknownMergeField     = errors.New("template references unknown merge fields")
	ErrMalformedTemplate     = errors.New("template has an unterminated {{ placeholder")
)

// UnknownFieldsError lists the tokens a template used outside the dictionary.
type UnknownFieldsError struct {
	Names []string
}

func (e *UnknownFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownMergeField, strings.Join(e.Names, ", "))
}

func (e *UnknownFieldsError) Is(target error) bool { return target == ErrUnknownMergeField }

// MergeFieldNames the merge-field dictionary. Every name always resolves,
// to "" when the gig has no value for it.
var MergeFieldNames = buildMergeFieldNames()

func buildMergeFieldNames() []string {
	names := []string{
		"gig_id", "gig_title", "band_name", "package_name",
		"event_date_iso", "event_date_long",
		"start_time_24h", "start_time_12h", "end_time_24h", "end_time_12h", "overnight",
		"total_fee_formatted", "sound_fee_formatted", "overtime_rate_formatted",
		"deposit_count",
	}
	for i := 1; i <= model.MaxDeposits; i++ {
		names = append(names,
			fmt.Sprintf("deposit%d_amount_formatted", i),
			fmt.Sprintf("deposit%d_due_date_iso", i),
			fmt.Sprintf("deposit%d_due_date_long", i),
		)
	}
	return append(names,
		"deposits_total_formatted", "deposits_summary", "final_payment_formatted",
		"final_payment_due_date_iso", "final_payment_due_date_long",
		"contract_status",
		"organizer", "event_type", "honoree",
		"client_name", "client_email", "client_phone", "client_mailing_address",
		"band_size", "num_vocalists", "ceremony_coverage", "cocktail_coverage",
		"reception_start_12h", "reception_end_12h",
		"payment_method_notes", "special_instructions",
		"venue_name", "venue_address_line1", "venue_address_line2",
		"venue_city", "venue_state", "venue_postal_code", "venue_country",
		"venue_address_full", "venue_contact_name", "venue_contact_phone", "venue_contact_email",
		"agent_name", "agent_email", "agent_phone",
		"sound_tech_name",
		"today_long",
	)
}

// ContractService resolves gigs into merge fields and merges templates.
type ContractService interface {
	// MergeFields every dictionary token for the gig.
	MergeFields(ctx context.Context, gigID string) (map[string]string, error)
	// Render merges template against the gig's fields.
	Render(ctx context.Context, gigID string, req *dto.RenderRequest) (*dto.RenderResponse, error)
}

type contractService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewContractService creates a ContractService.
func NewContractService(repo *repository.Repository, logger *zap.Logger) ContractService {
	return &contractService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── MergeFields ──────────────────────

func (s *contractService) MergeFields(ctx context.Context, gigID string) (map[string]string, error) {
	fields, err := s.resolve(ctx, gigID)
	if err != nil {
		metrics.IncRender("invalid")
		return nil, err
	}
	metrics.IncRender("ok")
	return fields, nil
}

// ────────────────────── Render ──────────────────────

func (s *contractService) Render(ctx context.Context, gigID string, req *dto.RenderRequest) (*dto.RenderResponse, error) {
	fields, err := s.MergeFields(ctx, gigID)
	if err != nil {
		return nil, err
	}
	out, err := Merge(req.Template, fields)
	if err != nil {
		return nil, err
	}
	return &dto.RenderResponse{GigID: gigID, Output: out, Fields: fields}, nil
}

// Merge replaces every {{token}} in tpl. Tokens outside fields fail the
// whole merge with an *UnknownFieldsError naming each of them.
func Merge(tpl string, fields map[string]string) (string, error) {
	t, err := fasttemplate.NewTemplate(tpl, "{{", "}}")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}

	unknown := map[string]struct{}{}
	out := t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		name := strings.TrimSpace(tag)
		v, ok := fields[name]
		if !ok {
			unknown[name] = struct{}{}
			return 0, nil
		}
		return io.WriteString(w, v)
	})
	if len(unknown) > 0 {
		names := make([]string, 0, len(unknown))
		for n := range unknown {
			names = append(names, n)
		}
		sort.Strings(names)
		return "", &UnknownFieldsError{Names: names}
	}
	return out, nil
}

// ── resolution ──

func (s *contractService) resolve(ctx context.Context, gigID string) (map[string]string, error) {
	gig, err := s.repo.Gig.GetDetail(ctx, gigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		s.logger.Error("load gig for merge fields failed", zap.String("gig_id", gigID), zap.Error(err))
		return nil, err
	}
	if gig.PrivateEvent() && gig.Private == nil {
		return nil, ErrPrivateDetailsMissing
	}

	deposits, err := s.repo.Deposit.ListByGig(ctx, gigID)
	if err != nil {
		s.logger.Error("load deposits failed", zap.String("gig_id", gigID), zap.Error(err))
		return nil, err
	}
	if len(deposits) == 0 {
		deposits = legacyDeposits(gig.Private)
	}
	schedule, err := ResolveDeposits(gig.TotalFeeValue(), deposits)
	if err != nil {
		return nil, err
	}

	today := s.now()
	return BuildMergeFields(gig, schedule, today), nil
}

// BuildMergeFields the dictionary for a gig loaded with its associations.
func BuildMergeFields(gig *model.Gig, schedule *DepositSchedule, today time.Time) map[string]string {
	f := make(map[string]string, len(MergeFieldNames))
	for _, n := range MergeFieldNames {
		f[n] = ""
	}

	p := gig.Private
	if p == nil {
		p = &model.GigPrivate{}
	}

	f["gig_id"] = gig.ID
	f["gig_title"] = model.StrVal(gig.Title)
	f["band_name"] = model.StrVal(gig.BandName)
	f["package_name"] = model.FirstNonEmpty(model.StrVal(gig.PackageName), model.StrVal(p.LegacyPackageName))
	f["event_date_iso"] = DateISO(&gig.EventDate)
	f["event_date_long"] = DateLong(&gig.EventDate)
	f["start_time_24h"] = Clock24(gig.StartTime)
	f["start_time_12h"] = Clock12(gig.StartTime)
	f["end_time_24h"] = Clock24(gig.EndTime)
	f["end_time_12h"] = Clock12(gig.EndTime)
	f["overnight"] = yesNo(gig.Overnight)
	f["total_fee_formatted"] = FormatMoneyNull(gig.TotalFeeValue())
	f["sound_fee_formatted"] = FormatMoneyNull(gig.SoundFee)
	overtime := gig.OvertimeRate
	if !overtime.Valid {
		overtime = p.LegacyOvertimePerHalf
	}
	f["overtime_rate_formatted"] = FormatMoneyNull(overtime)
	f["contract_status"] = gig.ContractStatus

	// deposits
	f["deposit_count"] = fmt.Sprintf("%d", len(schedule.Deposits))
	var summary []string
	for i, d := range schedule.Deposits {
		n := i + 1
		amt := FormatMoney(schedule.Resolved[i])
		f[fmt.Sprintf("deposit%d_amount_formatted", n)] = amt
		f[fmt.Sprintf("deposit%d_due_date_iso", n)] = DateISO(d.DueDate)
		f[fmt.Sprintf("deposit%d_due_date_long", n)] = DateLong(d.DueDate)

		line := fmt.Sprintf("Deposit %d: %s", n, amt)
		if d.IsPercentage {
			line += fmt.Sprintf(" (%s%%)", d.Amount.String())
		}
		if d.DueDate != nil {
			line += " due " + DateLong(d.DueDate)
		}
		summary = append(summary, line)
	}
	f["deposits_total_formatted"] = FormatMoney(schedule.Total)
	f["deposits_summary"] = strings.Join(summary, "; ")
	f["final_payment_formatted"] = FormatMoneyNull(schedule.Final)
	finalDue := p.FinalPaymentDueDate
	if finalDue == nil {
		finalDue = &gig.EventDate
	}
	f["final_payment_due_date_iso"] = DateISO(finalDue)
	f["final_payment_due_date_long"] = DateLong(finalDue)

	// private event
	f["organizer"] = model.StrVal(p.Organizer)
	f["event_type"] = model.StrVal(p.EventType)
	f["honoree"] = model.StrVal(p.Honoree)
	f["client_name"] = model.StrVal(p.ClientName)
	f["client_email"] = model.StrVal(p.ClientEmail)
	f["client_phone"] = model.StrVal(p.ClientPhone)
	f["client_mailing_address"] = model.StrVal(p.ClientMailingAddress)
	f["band_size"] = intString(p.BandSize)
	f["num_vocalists"] = intString(p.NumVocalists)
	if gig.Private != nil {
		f["ceremony_coverage"] = yesNo(p.CeremonyCoverage)
		f["cocktail_coverage"] = yesNo(p.CocktailCoverage)
	}
	f["reception_start_12h"] = Clock12(p.ReceptionStartTime)
	f["reception_end_12h"] = Clock12(p.ReceptionEndTime)
	f["payment_method_notes"] = model.StrVal(p.PaymentMethodNotes)
	f["special_instructions"] = model.StrVal(p.SpecialInstructions)

	// venue
	if v := gig.Venue; v != nil {
		f["venue_name"] = v.Name
		f["venue_address_line1"] = model.StrVal(v.AddressLine1)
		f["venue_address_line2"] = model.StrVal(v.AddressLine2)
		f["venue_city"] = model.StrVal(v.City)
		f["venue_state"] = model.StrVal(v.State)
		f["venue_postal_code"] = model.StrVal(v.PostalCode)
		f["venue_country"] = v.Country
		f["venue_address_full"] = v.FullAddress()
		f["venue_contact_name"] = model.StrVal(v.ContactName)
		f["venue_contact_phone"] = model.StrVal(v.ContactPhone)
		f["venue_contact_email"] = model.StrVal(v.ContactEmail)
	}

	// people
	if a := gig.Agent; a != nil {
		f["agent_name"] = a.DisplayName
		f["agent_email"] = model.StrVal(a.Email)
		f["agent_phone"] = model.StrVal(a.Phone)
	}
	if st := gig.SoundTech; st != nil {
		f["sound_tech_name"] = st.DisplayName
	} else {
		f["sound_tech_name"] = model.StrVal(gig.SoundByVenueName)
	}

	f["today_long"] = today.Format(layoutLong)
	return f
}
