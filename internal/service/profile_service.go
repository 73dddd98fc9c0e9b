package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/repository"
)

var ErrInvalidRole = errors.New("role must be admin, staff or player")

// ProfileService the signed-in user and the admin gate.
type ProfileService interface {
	// Me returns the caller's profile, creating it on first sight.
	Me(ctx context.Context, userID, email string) (*dto.MeResponse, error)
	// IsAdmin the allow-list wins; otherwise the stored role decides.
	IsAdmin(ctx context.Context, userID, email string) (bool, error)
	List(ctx context.Context) ([]model.Profile, error)
	UpdateRole(ctx context.Context, id, role string) error
}

type profileService struct {
	auth   *config.AuthConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(auth *config.AuthConfig, repo *repository.Repository, logger *zap.Logger) ProfileService {
	return &profileService{auth: auth, repo: repo, logger: logger}
}

func (s *profileService) Me(ctx context.Context, userID, email string) (*dto.MeResponse, error) {
	p := &model.Profile{ID: userID, Email: email, Role: model.RoleStaff}
	if err := s.repo.Profile.Ensure(ctx, p); err != nil {
		s.logger.Error("ensure profile failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.MeResponse{
		ID:       p.ID,
		Email:    p.Email,
		FullName: p.FullName,
		Role:     p.Role,
		IsAdmin:  s.auth.IsAdminEmail(p.Email) || s.auth.IsAdminEmail(email) || p.Role == model.RoleAdmin,
	}, nil
}

func (s *profileService) IsAdmin(ctx context.Context, userID, email string) (bool, error) {
	if s.auth.IsAdminEmail(email) {
		return true, nil
	}
	p, err := s.repo.Profile.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.Role == model.RoleAdmin || s.auth.IsAdminEmail(p.Email), nil
}

func (s *profileService) List(ctx context.Context) ([]model.Profile, error) {
	return s.repo.Profile.List(ctx)
}

func (s *profileService) UpdateRole(ctx context.Context, id, role string) error {
	switch role {
	case model.RoleAdmin, model.RoleStaff, model.RolePlayer:
	default:
		return ErrInvalidRole
	}
	if err := s.repo.Profile.UpdateRole(ctx, id, role); err != nil {
		return notFoundAs(err, ErrProfileNotFound)
	}
	s.logger.Info("profile role updated", zap.String("profile_id", id), zap.String("role", role))
	return nil
}
