package program

import (
	"context"
	"errors"
	"log/slog"

	dErrors "incentra/pkg/domain-errors"
)

// CreateInput carries the wire form of a program record. Tags arrive as
// strings and are parsed once here; malformed tags reject the whole record.
type CreateInput struct {
	UID           string    `json:"uid"`
	SourceID      *int64    `json:"source_id"`
	CountryCode   string    `json:"country_code"`
	Jurisdiction  string    `json:"jurisdiction_code"`
	IndustryCodes []string  `json:"industry_codes"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	UpdatedAtMs   int64     `json:"updated_at"`
	Benefits      []Benefit `json:"benefits"`
	Tags          []string  `json:"tags"`
}

// Service owns catalog ingestion and lookup. Records sourced from feeds are
// upserted by UID so re-ingesting a feed updates in place.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Upsert validates and stores a program record. When a record with the same
// UID already exists it is updated in place.
func (s *Service) Upsert(ctx context.Context, input CreateInput) (*Record, error) {
	if input.CountryCode == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "country_code is required")
	}
	for _, b := range input.Benefits {
		if b.Type == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "benefit type is required")
		}
		if b.AmountCents() < 0 {
			return nil, dErrors.New(dErrors.CodeBadRequest, "benefit amounts must be non-negative")
		}
	}
	tags, err := ParseTags(input.Tags)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid tags")
	}

	rec := &Record{
		UID:           input.UID,
		SourceID:      input.SourceID,
		CountryCode:   input.CountryCode,
		Jurisdiction:  input.Jurisdiction,
		IndustryCodes: input.IndustryCodes,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		UpdatedAtMs:   input.UpdatedAtMs,
		Benefits:      input.Benefits,
		Tags:          tags,
	}

	if input.UID != "" {
		existing, err := s.store.GetByUID(ctx, input.UID)
		switch {
		case err == nil:
			rec.ID = existing.ID
			rec.CreatedAt = existing.CreatedAt
		case errors.Is(err, ErrNotFound):
			// first ingestion of this UID
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "lookup program by uid")
		}
	}

	saved, err := s.store.Save(ctx, rec)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save program")
	}

	s.logger.InfoContext(ctx, "program saved",
		"program_id", saved.ID,
		"uid", saved.UID,
		"country_code", saved.CountryCode)
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get program")
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Record, error) {
	records, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list programs")
	}
	return records, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete program")
	}
	s.logger.InfoContext(ctx, "program deleted", "program_id", id)
	return nil
}
