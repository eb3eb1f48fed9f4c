package settings

import (
	"context"
	"encoding/json"
	"log/slog"

	"incentra/internal/matching"
	dErrors "incentra/pkg/domain-errors"
)

// Service resolves and updates the matching configuration. Resolution never
// fails: a missing or unreadable document degrades to the built-in defaults
// so scoring always proceeds with a usable snapshot.
type Service struct {
	store  Store
	logger *slog.Logger
}

// New constructs the settings service.
func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ResolveWeights returns the configured scoring weights, falling back to
// DefaultWeights when the store is empty, unreachable, or holds a document
// that does not parse.
func (s *Service) ResolveWeights(ctx context.Context) matching.Weights {
	doc, err := s.store.Get(ctx, KeyWeights)
	if err != nil {
		s.logger.WarnContext(ctx, "weights unavailable, using defaults", "error", err)
		return matching.DefaultWeights()
	}
	if doc == nil {
		return matching.DefaultWeights()
	}

	var w matching.Weights
	if err := json.Unmarshal(doc, &w); err != nil {
		s.logger.WarnContext(ctx, "stored weights malformed, using defaults", "error", err)
		return matching.DefaultWeights()
	}
	if !w.Valid() {
		s.logger.WarnContext(ctx, "stored weights invalid, using defaults")
		return matching.DefaultWeights()
	}
	return w
}

// ResolveFxRates returns the configured FX snapshot, falling back to
// DefaultFxRates. USD is always present in the result.
func (s *Service) ResolveFxRates(ctx context.Context) matching.FxRates {
	doc, err := s.store.Get(ctx, KeyFxRates)
	if err != nil {
		s.logger.WarnContext(ctx, "fx rates unavailable, using defaults", "error", err)
		return DefaultFxRates()
	}
	if doc == nil {
		return DefaultFxRates()
	}

	var fx matching.FxRates
	if err := json.Unmarshal(doc, &fx); err != nil {
		s.logger.WarnContext(ctx, "stored fx rates malformed, using defaults", "error", err)
		return DefaultFxRates()
	}
	if _, ok := fx["USD"]; !ok {
		fx["USD"] = 1
	}
	return fx
}

// UpdateWeights validates and persists new scoring weights.
func (s *Service) UpdateWeights(ctx context.Context, w matching.Weights) error {
	if !w.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "weights must not be negative")
	}

	doc, err := json.Marshal(w)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal weights")
	}
	if err := s.store.Put(ctx, KeyWeights, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save weights")
	}
	return nil
}

// UpdateFxRates validates and persists a new FX snapshot. Rates must be
// positive; USD is pinned to 1 regardless of input.
func (s *Service) UpdateFxRates(ctx context.Context, fx matching.FxRates) error {
	if len(fx) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "fx rate table must not be empty")
	}
	for currency, rate := range fx {
		if rate <= 0 {
			return dErrors.New(dErrors.CodeBadRequest, "fx rate for "+currency+" must be positive")
		}
	}
	fx["USD"] = 1

	doc, err := json.Marshal(fx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal fx rates")
	}
	if err := s.store.Put(ctx, KeyFxRates, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save fx rates")
	}
	return nil
}
