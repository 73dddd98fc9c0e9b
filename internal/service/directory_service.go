package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/repository"
	pkgerrors "github.com/rsaputelli/PRS/pkg/errors"
	"github.com/rsaputelli/PRS/pkg/redis"
)

// ── directory errors ──

var (
	ErrStillReferenced = errors.New("record is still referenced; deactivate it instead")
	ErrMusicianNoName  = errors.New("a musician needs a name or an email")
)

// DirectoryService CRUD over one directory table. R is its request body.
type DirectoryService[T any, R any] interface {
	List(ctx context.Context, req *dto.DirectoryListRequest) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, req *R) (*T, error)
	Update(ctx context.Context, id string, req *R) (*T, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type directoryService[T any, R any] struct {
	name     string
	repo     repository.DirectoryRepository[T]
	notFound error
	// apply copies req onto row; row is zero-valued on create.
	apply  func(row *T, req *R, create bool) error
	people PeopleService
	logger *zap.Logger
}

// NewVenueService venues.
func NewVenueService(repo *repository.Repository, people PeopleService, logger *zap.Logger) DirectoryService[model.Venue, dto.VenueRequest] {
	return &directoryService[model.Venue, dto.VenueRequest]{
		name: "venue", repo: repo.Venue, notFound: ErrVenueNotFound, people: people, logger: logger,
		apply: func(v *model.Venue, req *dto.VenueRequest, create bool) error {
			v.Name = req.Name
			v.AddressLine1 = trimPtr(req.AddressLine1)
			v.AddressLine2 = trimPtr(req.AddressLine2)
			v.City = trimPtr(req.City)
			v.State = trimPtr(req.State)
			v.PostalCode = trimPtr(req.PostalCode)
			v.Country = model.FirstNonEmpty(req.Country, v.Country, "USA")
			v.ContactName = trimPtr(req.ContactName)
			v.ContactPhone = trimPtr(req.ContactPhone)
			v.ContactEmail = trimPtr(req.ContactEmail)
			v.Notes = trimPtr(req.Notes)
			v.Active = activeFlag(req.Active, v.Active, create)
			return nil
		},
	}
}

// NewAgentService agents.
func NewAgentService(repo *repository.Repository, people PeopleService, logger *zap.Logger) DirectoryService[model.Agent, dto.AgentRequest] {
	return &directoryService[model.Agent, dto.AgentRequest]{
		name: "agent", repo: repo.Agent, notFound: ErrAgentNotFound, people: people, logger: logger,
		apply: func(a *model.Agent, req *dto.AgentRequest, create bool) error {
			a.DisplayName = req.DisplayName
			a.Company = trimPtr(req.Company)
			a.Phone = trimPtr(req.Phone)
			a.Email = trimPtr(req.Email)
			a.Notes = trimPtr(req.Notes)
			a.Active = activeFlag(req.Active, a.Active, create)
			return nil
		},
	}
}

// NewMusicianService musicians.
func NewMusicianService(repo *repository.Repository, people PeopleService, logger *zap.Logger) DirectoryService[model.Musician, dto.MusicianRequest] {
	return &directoryService[model.Musician, dto.MusicianRequest]{
		name: "musician", repo: repo.Musician, notFound: ErrMusicianNotFound, people: people, logger: logger,
		apply: func(m *model.Musician, req *dto.MusicianRequest, create bool) error {
			m.FirstName = trimPtr(req.FirstName)
			m.MiddleName = trimPtr(req.MiddleName)
			m.LastName = trimPtr(req.LastName)
			m.StageName = trimPtr(req.StageName)
			m.DisplayName = trimPtr(req.DisplayName)
			m.Instrument = trimPtr(req.Instrument)
			m.Phone = trimPtr(req.Phone)
			m.Email = trimPtr(req.Email)
			m.Address = trimPtr(req.Address)
			m.Notes = trimPtr(req.Notes)
			m.Active = activeFlag(req.Active, m.Active, create)
			if model.FirstNonEmpty(model.StrVal(m.FirstName), model.StrVal(m.LastName),
				model.StrVal(m.StageName), model.StrVal(m.DisplayName), model.StrVal(m.Email)) == "" {
				return ErrMusicianNoName
			}
			return nil
		},
	}
}

// NewSoundTechService sound techs.
func NewSoundTechService(repo *repository.Repository, people PeopleService, logger *zap.Logger) DirectoryService[model.SoundTech, dto.SoundTechRequest] {
	return &directoryService[model.SoundTech, dto.SoundTechRequest]{
		name: "sound_tech", repo: repo.SoundTech, notFound: ErrSoundTechNotFound, people: people, logger: logger,
		apply: func(st *model.SoundTech, req *dto.SoundTechRequest, create bool) error {
			st.DisplayName = req.DisplayName
			st.Company = trimPtr(req.Company)
			st.Phone = trimPtr(req.Phone)
			st.Email = trimPtr(req.Email)
			st.Notes = trimPtr(req.Notes)
			st.Active = activeFlag(req.Active, st.Active, create)
			st.DefaultFee = decimal.NullDecimal{}
			if req.DefaultFee != nil {
				if req.DefaultFee.IsNegative() {
					return ErrNegativeAmount
				}
				st.DefaultFee = decimal.NewNullDecimal(*req.DefaultFee)
			}
			return nil
		},
	}
}

// activeFlag new rows default to active; updates keep the current flag
// unless the request sets one.
func activeFlag(req *bool, current, create bool) bool {
	if req != nil {
		return *req
	}
	if create {
		return true
	}
	return current
}

// ────────────────────── CRUD ──────────────────────

func (s *directoryService[T, R]) List(ctx context.Context, req *dto.DirectoryListRequest) ([]T, error) {
	rows, err := s.repo.List(ctx, repository.DirectoryFilter{IncludeInactive: req.IncludeInactive, Search: req.Search})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func (s *directoryService[T, R]) Get(ctx context.Context, id string) (*T, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, s.notFound)
	}
	return row, nil
}

func (s *directoryService[T, R]) Create(ctx context.Context, req *R) (*T, error) {
	row := new(T)
	if err := s.apply(row, req, true); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("create directory row failed", zap.String("kind", s.name), zap.Error(err))
		return nil, err
	}
	s.people.Invalidate(ctx)
	return row, nil
}

func (s *directoryService[T, R]) Update(ctx context.Context, id string, req *R) (*T, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(row, req, false); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("update directory row failed", zap.String("kind", s.name), zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.people.Invalidate(ctx)
	return row, nil
}

func (s *directoryService[T, R]) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return notFoundAs(err, s.notFound)
	}
	s.people.Invalidate(ctx)
	return nil
}

func (s *directoryService[T, R]) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrReferenced) {
			return ErrStillReferenced
		}
		s.logger.Error("delete directory row failed", zap.String("kind", s.name), zap.String("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return s.notFound
	}
	s.people.Invalidate(ctx)
	s.logger.Info("directory row deleted", zap.String("kind", s.name), zap.String("id", id))
	return nil
}

// ────────────────────── People ──────────────────────

const (
	peopleCacheTTL = 2 * time.Minute
	peopleCacheKey = "people:"
)

// peopleKinds every kind the dropdown view emits.
var peopleKinds = []string{"", "venue", "agent", "musician", "sound_tech"}

// PeopleService vw_people_dropdown, cached when a cache is configured.
type PeopleService interface {
	List(ctx context.Context, req *dto.PeopleRequest) ([]model.PersonOption, error)
	// Invalidate drops every cached listing.
	Invalidate(ctx context.Context)
}

type peopleService struct {
	repo   *repository.Repository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewPeopleService creates a PeopleService. cache may be nil.
func NewPeopleService(repo *repository.Repository, cache Cache, ttl time.Duration, logger *zap.Logger) PeopleService {
	if ttl <= 0 {
		ttl = peopleCacheTTL
	}
	return &peopleService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func peopleKey(kind string, includeInactive bool) string {
	if includeInactive {
		return peopleCacheKey + kind + ":all"
	}
	return peopleCacheKey + kind + ":active"
}

func (s *peopleService) List(ctx context.Context, req *dto.PeopleRequest) ([]model.PersonOption, error) {
	key := peopleKey(req.Kind, req.IncludeInactive)
	if s.cache != nil {
		b, err := s.cache.GetBytes(ctx, key)
		if err == nil {
			var rows []model.PersonOption
			if json.Unmarshal(b, &rows) == nil {
				return rows, nil
			}
		} else if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("people cache read failed", zap.Error(err))
		}
	}

	rows, err := s.repo.Report.ListPeople(ctx, req.Kind, !req.IncludeInactive)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.PersonOption{}
	}
	if s.cache != nil {
		if b, err := json.Marshal(rows); err == nil {
			if err := s.cache.SetBytes(ctx, key, b, s.ttl); err != nil {
				s.logger.Warn("people cache write failed", zap.Error(err))
			}
		}
	}
	return rows, nil
}

func (s *peopleService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, 2*len(peopleKinds))
	for _, k := range peopleKinds {
		keys = append(keys, peopleKey(k, false), peopleKey(k, true))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("people cache invalidate failed", zap.Error(err))
	}
}

var _ Cache = (*redis.Client)(nil)
