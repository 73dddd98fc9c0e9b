package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/model"
)

func setupTestProfileService() (ProfileService, *mockDB) {
	repo, db := newTestRepo()
	cfg := testConfig()
	return NewProfileService(&cfg.Auth, repo, zap.NewNop()), db
}

func TestProfileService_Me_CreatesOnFirstSight(t *testing.T) {
	svc, db := setupTestProfileService()

	me, err := svc.Me(context.Background(), "user-1", "pat@example.com")
	if err != nil {
		t.Fatalf("Me should succeed: %v", err)
	}
	if me.Role != model.RoleStaff || me.IsAdmin {
		t.Errorf("me = %+v", me)
	}
	if _, ok := db.profiles["user-1"]; !ok {
		t.Error("profile row should be created")
	}
}

func TestProfileService_Me_AllowListIsAdmin(t *testing.T) {
	svc, _ := setupTestProfileService()
	me, err := svc.Me(context.Background(), "user-2", "Boss@Example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !me.IsAdmin {
		t.Error("allow-listed emails are admins regardless of role")
	}
}

func TestProfileService_IsAdmin(t *testing.T) {
	svc, db := setupTestProfileService()
	db.profiles["user-3"] = &model.Profile{ID: "user-3", Email: "lee@example.com", Role: model.RoleAdmin}
	db.profiles["user-4"] = &model.Profile{ID: "user-4", Email: "kim@example.com", Role: model.RolePlayer}

	cases := []struct {
		id, email string
		want      bool
	}{
		{"user-3", "lee@example.com", true},
		{"user-4", "kim@example.com", false},
		{"nobody", "boss@example.com", true},
		{"nobody", "who@example.com", false},
	}
	for _, tc := range cases {
		got, err := svc.IsAdmin(context.Background(), tc.id, tc.email)
		if err != nil || got != tc.want {
			t.Errorf("IsAdmin(%s, %s) = %v, %v; want %v", tc.id, tc.email, got, err, tc.want)
		}
	}
}

func TestProfileService_UpdateRole(t *testing.T) {
	svc, db := setupTestProfileService()
	db.profiles["user-5"] = &model.Profile{ID: "user-5", Email: "x@example.com", Role: model.RoleStaff}

	if err := svc.UpdateRole(context.Background(), "user-5", "owner"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("want ErrInvalidRole, got %v", err)
	}
	if err := svc.UpdateRole(context.Background(), "missing", model.RoleAdmin); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("want ErrProfileNotFound, got %v", err)
	}
	if err := svc.UpdateRole(context.Background(), "user-5", model.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if db.profiles["user-5"].Role != model.RoleAdmin {
		t.Error("role not stored")
	}
}
