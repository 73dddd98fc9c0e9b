package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
)

func setupTestDirectory() (*Service, *mockDB, *mockCache) {
	repo, db := newTestRepo()
	cache := newMockCache()
	people := NewPeopleService(repo, cache, 0, zap.NewNop())
	return &Service{
		Venue:    NewVenueService(repo, people, zap.NewNop()),
		Musician: NewMusicianService(repo, people, zap.NewNop()),
		People:   people,
	}, db, cache
}

// ── Venue ──

func TestVenueService_Create_DefaultsActive(t *testing.T) {
	svc, _, _ := setupTestDirectory()

	v, err := svc.Venue.Create(context.Background(), &dto.VenueRequest{Name: "The Ballroom", City: model.StrPtr("  Philadelphia ")})
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if v.ID == "" || !v.Active || v.Country != "USA" || model.StrVal(v.City) != "Philadelphia" {
		t.Errorf("venue = %+v", v)
	}
}

func TestVenueService_Update_NotFound(t *testing.T) {
	svc, _, _ := setupTestDirectory()
	_, err := svc.Venue.Update(context.Background(), "missing", &dto.VenueRequest{Name: "x"})
	if !errors.Is(err, ErrVenueNotFound) {
		t.Errorf("want ErrVenueNotFound, got %v", err)
	}
}

func TestVenueService_Update_KeepsActiveFlag(t *testing.T) {
	svc, db, _ := setupTestDirectory()
	v := &model.Venue{Name: "Old", Active: false}
	_ = db.venues.Create(context.Background(), v)

	got, err := svc.Venue.Update(context.Background(), v.ID, &dto.VenueRequest{Name: "New"})
	if err != nil {
		t.Fatalf("Update should succeed: %v", err)
	}
	if got.Active || got.Name != "New" {
		t.Errorf("venue = %+v", got)
	}
}

// ── Musician ──

func TestMusicianService_Create_NeedsLabel(t *testing.T) {
	svc, _, _ := setupTestDirectory()
	_, err := svc.Musician.Create(context.Background(), &dto.MusicianRequest{Instrument: model.StrPtr("Sax")})
	if !errors.Is(err, ErrMusicianNoName) {
		t.Errorf("want ErrMusicianNoName, got %v", err)
	}
}

func TestMusicianService_Delete_Referenced(t *testing.T) {
	svc, db, _ := setupTestDirectory()
	m := seedMusician(db, "Ann", "ann@example.com")
	db.staffing["gig-1"] = map[string]string{"Bass": m.ID}

	if err := svc.Musician.Delete(context.Background(), m.ID); !errors.Is(err, ErrStillReferenced) {
		t.Fatalf("want ErrStillReferenced, got %v", err)
	}
	if _, err := svc.Musician.Get(context.Background(), m.ID); err != nil {
		t.Error("referenced musician must survive")
	}

	if err := svc.Musician.SetActive(context.Background(), m.ID, false); err != nil {
		t.Errorf("deactivating is the way out: %v", err)
	}
}

func TestMusicianService_Delete_NotFound(t *testing.T) {
	svc, _, _ := setupTestDirectory()
	if err := svc.Musician.Delete(context.Background(), "missing"); !errors.Is(err, ErrMusicianNotFound) {
		t.Errorf("want ErrMusicianNotFound, got %v", err)
	}
}

// ── People ──

func TestPeopleService_List_CachesAndInvalidates(t *testing.T) {
	svc, db, cache := setupTestDirectory()
	db.people = []model.PersonOption{
		{ID: "mus-a", Kind: "musician", Label: "Ann", Active: true},
		{ID: "mus-b", Kind: "musician", Label: "Bob", Active: false},
	}
	ctx := context.Background()
	req := &dto.PeopleRequest{Kind: "musician"}

	rows, err := svc.People.List(ctx, req)
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows = %v, err = %v", rows, err)
	}
	if _, err := svc.People.List(ctx, req); err != nil {
		t.Fatal(err)
	}
	if db.peopleCalls != 1 {
		t.Errorf("second list should come from cache, view hit %d times", db.peopleCalls)
	}
	if _, ok := cache.data["people:musician:active"]; !ok {
		t.Error("cache key not written")
	}

	if _, err := svc.Musician.Create(ctx, &dto.MusicianRequest{FirstName: model.StrPtr("Cy")}); err != nil {
		t.Fatal(err)
	}
	if len(cache.data) != 0 {
		t.Errorf("directory writes must drop cached listings, left %v", cache.data)
	}
	if _, err := svc.People.List(ctx, req); err != nil {
		t.Fatal(err)
	}
	if db.peopleCalls != 2 {
		t.Errorf("list after invalidate should hit the view, calls = %d", db.peopleCalls)
	}
}

func TestPeopleService_List_NoCache(t *testing.T) {
	repo, db := newTestRepo()
	people := NewPeopleService(repo, nil, 0, zap.NewNop())

	rows, err := people.List(context.Background(), &dto.PeopleRequest{IncludeInactive: true})
	if err != nil || rows == nil || len(rows) != 0 {
		t.Errorf("rows = %v, err = %v", rows, err)
	}
	people.Invalidate(context.Background())
	if db.peopleCalls != 1 {
		t.Errorf("calls = %d", db.peopleCalls)
	}
}
