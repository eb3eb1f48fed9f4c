package profile

import (
	"context"
	"errors"
	"log/slog"

	dErrors "incentra/pkg/domain-errors"
)

// Service owns profile CRUD. Kept thin: validation lives on the model so the
// matching service can reuse it for ad-hoc (unsaved) profiles.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Save validates and persists a profile, creating it when ID is zero.
func (s *Service) Save(ctx context.Context, p Profile) (*Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	saved, err := s.store.Save(ctx, &p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save profile")
	}
	s.logger.InfoContext(ctx, "profile saved",
		"profile_id", saved.ID,
		"country_code", saved.CountryCode)
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Profile, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get profile")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Profile, error) {
	profiles, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list profiles")
	}
	return profiles, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete profile")
	}
	s.logger.InfoContext(ctx, "profile deleted", "profile_id", id)
	return nil
}
