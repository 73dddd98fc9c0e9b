package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/queue"
)

// ── test helpers ──

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BaseURL: "https://prs.example.com/"},
		Auth:   config.AuthConfig{Admins: []string{"boss@example.com"}},
		Mail: config.MailConfig{
			Gmail:   config.GmailConfig{Sender: "booking@example.com"},
			ReplyTo: "booking@example.com",
		},
		Calendar: config.CalendarConfig{Timezone: "America/New_York"},
		Staffing: config.StaffingConfig{LookaheadDays: 60, Subject: "PRS staffing"},
	}
}

func dec(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// seedGig stores a public evening gig at a venue with a contact email.
func seedGig(db *mockDB) *model.Gig {
	venue := &model.Venue{Name: "The Ballroom", City: model.StrPtr("Philadelphia"), ContactEmail: model.StrPtr("events@ballroom.example"), Active: true}
	_ = db.venues.Create(context.Background(), venue)

	g := &model.Gig{
		ID:             db.nextID("gig"),
		Title:          model.StrPtr("Spring Gala"),
		EventDate:      date("2031-06-14"),
		StartTime:      model.StrPtr("19:00:00"),
		EndTime:        model.StrPtr("23:00:00"),
		Fee:            decimal.NewNullDecimal(decimal.NewFromInt(2000)),
		ContractStatus: model.ContractConfirmed,
		CloseoutStatus: model.CloseoutOpen,
		VenueID:        &venue.ID,
		StaffingTarget: model.DefaultStaffingTarget,
	}
	db.gigs[g.ID] = g
	return g
}

func seedMusician(db *mockDB, first, email string) *model.Musician {
	m := &model.Musician{FirstName: model.StrPtr(first), Email: model.StrPtr(email), Active: true}
	_ = db.musicians.Create(context.Background(), m)
	return m
}

func setupTestGigService() (GigService, *mockDB, *mockPublisher) {
	repo, db := newTestRepo()
	pub := &mockPublisher{}
	return NewGigService(repo, pub, zap.NewNop()), db, pub
}

func baseGigRequest() *dto.GigRequest {
	return &dto.GigRequest{
		Title:     model.StrPtr("Wedding"),
		EventDate: "2031-09-20",
		StartTime: "18:00",
		EndTime:   "22:00",
		Fee:       dec(5000),
	}
}

// ── Create ──

func TestGigService_Create_PublishesAfterCommit(t *testing.T) {
	svc, db, pub := setupTestGigService()

	res, err := svc.Create(context.Background(), baseGigRequest(), "user-1")
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if _, ok := db.gigs[res.ID]; !ok {
		t.Fatal("gig should be stored")
	}
	if res.ContractStatus != model.ContractPending {
		t.Errorf("default contract status = %s", res.ContractStatus)
	}
	if len(res.Staffing) != len(model.BandRoles) {
		t.Errorf("staffing should list every band role, got %d", len(res.Staffing))
	}
	if len(pub.jobs) != 1 || pub.jobs[0].Type != queue.JobGigSaved || !pub.jobs[0].Created {
		t.Errorf("expected one gig.saved created job, got %+v", pub.jobs)
	}
}

func TestGigService_Create_PrivateNeedsDetails(t *testing.T) {
	svc, db, pub := setupTestGigService()

	req := baseGigRequest()
	req.IsPrivate = true
	if _, err := svc.Create(context.Background(), req, "u"); !errors.Is(err, ErrPrivateDetailsRequired) {
		t.Fatalf("want ErrPrivateDetailsRequired, got %v", err)
	}
	if len(db.gigs) != 0 || len(pub.jobs) != 0 {
		t.Error("nothing should be written or published")
	}

	req.Private = &dto.GigPrivateRequest{ClientName: model.StrPtr("Dana Client"), FinalPaymentDueDate: "2031-09-01"}
	res, err := svc.Create(context.Background(), req, "u")
	if err != nil {
		t.Fatalf("Create with details should succeed: %v", err)
	}
	if res.Private == nil || model.StrVal(res.Private.ClientName) != "Dana Client" {
		t.Errorf("private row should be written with the gig: %+v", res.Private)
	}
}

func TestGigService_Create_TimeWindow(t *testing.T) {
	svc, _, _ := setupTestGigService()

	req := baseGigRequest()
	req.StartTime, req.EndTime = "21:00", "01:00"
	if _, err := svc.Create(context.Background(), req, "u"); !errors.Is(err, ErrInvalidTimeWindow) {
		t.Fatalf("want ErrInvalidTimeWindow, got %v", err)
	}

	req.Overnight = true
	if _, err := svc.Create(context.Background(), req, "u"); err != nil {
		t.Fatalf("overnight gig should be accepted: %v", err)
	}
}

func TestGigService_Create_UnknownVenue(t *testing.T) {
	svc, _, _ := setupTestGigService()

	req := baseGigRequest()
	missing := "00000000-0000-0000-0000-000000000000"
	req.VenueID = &missing
	if _, err := svc.Create(context.Background(), req, "u"); !errors.Is(err, ErrVenueNotFound) {
		t.Errorf("want ErrVenueNotFound, got %v", err)
	}
}

func TestGigService_Create_WithoutPublisher(t *testing.T) {
	repo, _ := newTestRepo()
	svc := NewGigService(repo, nil, zap.NewNop())
	if _, err := svc.Create(context.Background(), baseGigRequest(), "u"); err != nil {
		t.Fatalf("a missing queue must not fail the write: %v", err)
	}
}

func TestGigService_Create_PublishFailureIsNotFatal(t *testing.T) {
	svc, db, pub := setupTestGigService()
	pub.err = errBoom

	if _, err := svc.Create(context.Background(), baseGigRequest(), "u"); err != nil {
		t.Fatalf("publish failure must not fail the write: %v", err)
	}
	if len(db.gigs) != 1 {
		t.Error("gig should still be committed")
	}
}

// ── Update ──

func TestGigService_Update_FeeMustCoverDeposits(t *testing.T) {
	svc, db, _ := setupTestGigService()
	g := seedGig(db)
	db.deposits[g.ID] = []model.GigDeposit{{GigID: g.ID, Seq: 1, Amount: decimal.NewFromInt(1500)}}

	req := baseGigRequest()
	req.Fee = dec(1000)
	if _, err := svc.Update(context.Background(), g.ID, req, "u"); !errors.Is(err, ErrDepositsExceedFee) {
		t.Fatalf("want ErrDepositsExceedFee, got %v", err)
	}

	req.Fee = dec(3000)
	res, err := svc.Update(context.Background(), g.ID, req, "u")
	if err != nil {
		t.Fatalf("Update should succeed: %v", err)
	}
	if !res.Money.FinalPayment.Decimal.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("final payment = %s", res.Money.FinalPayment.Decimal)
	}
	if res.ContractStatus != model.ContractConfirmed {
		t.Error("blank contract status should keep the stored one")
	}
}

func TestGigService_Update_NotFound(t *testing.T) {
	svc, _, _ := setupTestGigService()
	if _, err := svc.Update(context.Background(), "nope", baseGigRequest(), "u"); !errors.Is(err, ErrGigNotFound) {
		t.Errorf("want ErrGigNotFound, got %v", err)
	}
}

func TestGigService_Update_PrivateKeepsStoredDetails(t *testing.T) {
	svc, db, _ := setupTestGigService()
	g := seedGig(db)
	db.private[g.ID] = &model.GigPrivate{GigID: g.ID, Organizer: model.StrPtr("Sam")}

	req := baseGigRequest()
	req.IsPrivate = true
	if _, err := svc.Update(context.Background(), g.ID, req, "u"); err != nil {
		t.Fatalf("existing private row should satisfy the requirement: %v", err)
	}
}

// ── Deposits ──

func TestGigService_ReplaceDeposits(t *testing.T) {
	svc, db, _ := setupTestGigService()
	g := seedGig(db)

	res, err := svc.ReplaceDeposits(context.Background(), g.ID, &dto.DepositsRequest{Deposits: []dto.DepositItem{
		{Amount: decimal.NewFromInt(500), DueDate: "2031-01-15"},
		{Amount: decimal.NewFromInt(25), IsPercentage: true},
	}})
	if err != nil {
		t.Fatalf("ReplaceDeposits should succeed: %v", err)
	}
	stored := db.deposits[g.ID]
	if len(stored) != 2 || stored[0].Seq != 1 || stored[1].Seq != 2 {
		t.Errorf("seq should run from 1: %+v", stored)
	}
	if !res.Money.DepositsTotal.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("deposits total = %s", res.Money.DepositsTotal)
	}
}

func TestGigService_ReplaceDeposits_Invalid(t *testing.T) {
	svc, db, _ := setupTestGigService()
	g := seedGig(db)
	db.deposits[g.ID] = []model.GigDeposit{{GigID: g.ID, Seq: 1, Amount: decimal.NewFromInt(100)}}

	_, err := svc.ReplaceDeposits(context.Background(), g.ID, &dto.DepositsRequest{Deposits: []dto.DepositItem{
		{Amount: decimal.NewFromInt(2500)},
	}})
	if !errors.Is(err, ErrDepositsExceedFee) {
		t.Fatalf("want ErrDepositsExceedFee, got %v", err)
	}
	if len(db.deposits[g.ID]) != 1 {
		t.Error("stored schedule must be untouched")
	}
}

// ── Staffing ──

func TestGigService_UpdateStaffing(t *testing.T) {
	svc, db, _ := setupTestGigService()
	g := seedGig(db)
	m := seedMusician(db, "Alex", "alex@example.com")
	db.staffing[g.ID] = map[string]string{"Bass": m.ID}

	res, err := svc.UpdateStaffing(context.Background(), g.ID, &dto.StaffingRequest{Assignments: []dto.StaffingAssignment{
		{Role: "Drums", MusicianID: &m.ID},
		{Role: "Bass"},
	}})
	if err != nil {
		t.Fatalf("UpdateStaffing should succeed: %v", err)
	}
	if db.staffing[g.ID]["Drums"] != m.ID {
		t.Error("Drums should be assigned")
	}
	if _, ok := db.staffing[g.ID]["Bass"]; ok {
		t.Error("Bass should be cleared")
	}
	for _, slot := range res.Staffing {
		if slot.Role == "Drums" && slot.Label != "Alex" {
			t.Errorf("slot label = %q", slot.Label)
		}
	}
}

func TestGigService_UpdateStaffing_UnknownMusician(t *testing.T) {
	svc, db, _ := setupTestGigService()
	g := seedGig(db)
	ghost := "ghost"
	_, err := svc.UpdateStaffing(context.Background(), g.ID, &dto.StaffingRequest{Assignments: []dto.StaffingAssignment{
		{Role: "Drums", MusicianID: &ghost},
	}})
	if !errors.Is(err, ErrMusicianNotFound) {
		t.Errorf("want ErrMusicianNotFound, got %v", err)
	}
}

// ── Delete ──

func TestGigService_Delete_RefusesPaymentsWithoutPurge(t *testing.T) {
	svc, db, _ := setupTestGigService()
	g := seedGig(db)
	db.payments["p1"] = &model.GigPayment{ID: "p1", GigID: g.ID, Amount: decimal.NewFromInt(100)}

	preview, err := svc.DeletePreview(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("DeletePreview should succeed: %v", err)
	}
	if !preview.RequiresPurge || preview.Counts.Payments != 1 {
		t.Errorf("preview = %+v", preview)
	}

	if _, err := svc.Delete(context.Background(), g.ID, false); !errors.Is(err, ErrGigHasPayments) {
		t.Fatalf("want ErrGigHasPayments, got %v", err)
	}
	if _, ok := db.gigs[g.ID]; !ok {
		t.Fatal("gig must survive a refused delete")
	}

	res, err := svc.Delete(context.Background(), g.ID, true)
	if err != nil {
		t.Fatalf("purge delete should succeed: %v", err)
	}
	if res.PaymentsDeleted != 1 || len(db.payments) != 0 {
		t.Errorf("payments should be purged: %+v", res)
	}
	if _, ok := db.gigs[g.ID]; ok {
		t.Error("gig should be gone")
	}
}

func TestGigService_Delete_CascadesChildren(t *testing.T) {
	svc, db, _ := setupTestGigService()
	g := seedGig(db)
	m := seedMusician(db, "Jo", "jo@example.com")
	db.staffing[g.ID] = map[string]string{"Keyboard": m.ID}
	db.deposits[g.ID] = []model.GigDeposit{{GigID: g.ID, Seq: 1, Amount: decimal.NewFromInt(100)}}

	if _, err := svc.Delete(context.Background(), g.ID, false); err != nil {
		t.Fatalf("Delete should succeed: %v", err)
	}
	if len(db.staffing[g.ID]) != 0 || len(db.deposits[g.ID]) != 0 {
		t.Error("staffing and deposits cascade with the gig")
	}
	if _, err := db.musicians.GetByID(context.Background(), m.ID); err != nil {
		t.Error("the musician row itself must remain")
	}
}

func TestGigService_Delete_NotFound(t *testing.T) {
	svc, _, _ := setupTestGigService()
	if _, err := svc.Delete(context.Background(), "missing", false); !errors.Is(err, ErrGigNotFound) {
		t.Errorf("want ErrGigNotFound, got %v", err)
	}
}

// ── List ──

func TestGigService_List_BadDate(t *testing.T) {
	svc, _, _ := setupTestGigService()
	if _, _, err := svc.List(context.Background(), &dto.GigListRequest{From: "June 1"}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("want ErrInvalidDate, got %v", err)
	}
}
