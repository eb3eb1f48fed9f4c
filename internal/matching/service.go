package matching

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"incentra/internal/events"
	"incentra/internal/matching/metrics"
	"incentra/internal/profile"
	"incentra/internal/program"
	dErrors "incentra/pkg/domain-errors"
	"incentra/pkg/requestcontext"
)

// ProgramLister is the slice of the catalog the matching service reads.
type ProgramLister interface {
	List(ctx context.Context, filter program.Filter) ([]program.Record, error)
}

// ProfileGetter resolves stored profiles referenced by ID.
type ProfileGetter interface {
	Get(ctx context.Context, id int64) (*profile.Profile, error)
}

// SettingsResolver supplies the weights and FX snapshot for one request.
// Implementations never fail; they fall back to defaults.
type SettingsResolver interface {
	ResolveWeights(ctx context.Context) Weights
	ResolveFxRates(ctx context.Context) FxRates
}

// MatchRequest is the shared request shape for scoring and stack
// suggestions: an inline profile or a reference to a stored one, plus an
// optional catalog filter. When the filter has no country it defaults to
// the profile's.
type MatchRequest struct {
	ProfileID int64            `json:"profile_id,omitempty"`
	Profile   *profile.Profile `json:"profile,omitempty"`

	Filter struct {
		CountryCode  string `json:"country_code,omitempty"`
		Jurisdiction string `json:"jurisdiction_code,omitempty"`
		IndustryCode string `json:"industry_code,omitempty"`
		Limit        int    `json:"limit,omitempty"`
	} `json:"filter"`
}

// ScoredProgram pairs a catalog record with its relevance to the profile.
type ScoredProgram struct {
	Program  program.Record `json:"program"`
	Score    int            `json:"score"`
	Reasons  Reasons        `json:"reasons"`
	ValueUSD float64        `json:"value_usd"`
}

// Service orchestrates one matching request: resolve settings, load the
// candidate set, score, and (for stacks) run the allocator and emit the
// suggestion event.
type Service struct {
	programs  ProgramLister
	profiles  ProfileGetter
	settings  SettingsResolver
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// NewService constructs the matching service.
func NewService(programs ProgramLister, profiles ProfileGetter, settings SettingsResolver, publisher events.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		programs:  programs,
		profiles:  profiles,
		settings:  settings,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		tracer:    otel.Tracer("incentra/matching"),
	}
}

// ScoreCatalog scores the filtered catalog against the request's profile and
// returns the results ordered by score descending. Results are computed per
// request and never persisted.
func (s *Service) ScoreCatalog(ctx context.Context, req MatchRequest) ([]ScoredProgram, error) {
	ctx, span := s.tracer.Start(ctx, "matching.ScoreCatalog")
	defer span.End()
	start := time.Now()

	p, candidates, fx, weights, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	scored := make([]ScoredProgram, 0, len(candidates))
	for _, rec := range candidates {
		result := Score(*p, rec, weights, fx, now)
		scored = append(scored, ScoredProgram{
			Program:  rec,
			Score:    result.Score,
			Reasons:  result.Reasons,
			ValueUSD: ProgramValueUSD(rec, fx),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	span.SetAttributes(attribute.Int("matching.candidates", len(scored)))
	s.metrics.ObserveCandidates(len(scored))
	s.metrics.ObserveScoreLatency(time.Since(start))

	s.logger.InfoContext(ctx, "catalog scored",
		"request_id", requestcontext.RequestID(ctx),
		"candidates", len(scored),
		"country_code", p.CountryCode)
	return scored, nil
}

// SuggestStack scores the filtered catalog, runs the greedy allocator, and
// emits a stack.suggested event. Event failures are logged, not returned;
// the suggestion itself is the product.
func (s *Service) SuggestStack(ctx context.Context, req MatchRequest) (*StackSuggestion, error) {
	ctx, span := s.tracer.Start(ctx, "matching.SuggestStack")
	defer span.End()
	start := time.Now()

	p, candidates, fx, weights, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	for i := range candidates {
		result := Score(*p, candidates[i], weights, fx, now)
		score := result.Score
		candidates[i].Score = &score
	}

	suggestion := SuggestStack(*p, candidates, fx)

	span.SetAttributes(
		attribute.Int("matching.candidates", len(candidates)),
		attribute.Int("matching.selected", len(suggestion.Selected)),
	)
	s.metrics.ObserveCandidates(len(candidates))
	s.metrics.IncrementSuggestions()
	for _, reason := range suggestion.ConstraintsHit {
		s.metrics.IncrementConstraint(reasonClass(reason))
	}
	s.metrics.ObserveStackLatency(time.Since(start))

	s.emitSuggested(ctx, req, p, &suggestion, len(candidates))

	s.logger.InfoContext(ctx, "stack suggested",
		"request_id", requestcontext.RequestID(ctx),
		"candidates", len(candidates),
		"selected", len(suggestion.Selected),
		"value_usd", suggestion.ValueUSD,
		"coverage_ratio", suggestion.CoverageRatio)
	return &suggestion, nil
}

// prepare resolves the profile, settings snapshot, and candidate set shared
// by both entry points.
func (s *Service) prepare(ctx context.Context, req MatchRequest) (*profile.Profile, []program.Record, FxRates, Weights, error) {
	p, err := s.resolveProfile(ctx, req)
	if err != nil {
		return nil, nil, nil, Weights{}, err
	}

	filter := program.Filter{
		CountryCode:  req.Filter.CountryCode,
		Jurisdiction: req.Filter.Jurisdiction,
		IndustryCode: req.Filter.IndustryCode,
		Limit:        req.Filter.Limit,
	}
	if filter.CountryCode == "" {
		filter.CountryCode = p.CountryCode
	}

	candidates, err := s.programs.List(ctx, filter)
	if err != nil {
		return nil, nil, nil, Weights{}, dErrors.Wrap(err, dErrors.CodeInternal, "list candidate programs")
	}

	return p, candidates, s.settings.ResolveFxRates(ctx), s.settings.ResolveWeights(ctx), nil
}

func (s *Service) resolveProfile(ctx context.Context, req MatchRequest) (*profile.Profile, error) {
	switch {
	case req.Profile != nil && req.ProfileID != 0:
		return nil, dErrors.New(dErrors.CodeBadRequest, "provide either profile or profile_id, not both")
	case req.Profile != nil:
		if err := req.Profile.Validate(); err != nil {
			return nil, err
		}
		return req.Profile, nil
	case req.ProfileID != 0:
		p, err := s.profiles.Get(ctx, req.ProfileID)
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				return nil, err
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load profile")
		}
		return p, nil
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "profile or profile_id is required")
	}
}

func (s *Service) emitSuggested(ctx context.Context, req MatchRequest, p *profile.Profile, suggestion *StackSuggestion, candidates int) {
	programIDs := make([]int64, 0, len(suggestion.Selected))
	for _, sel := range suggestion.Selected {
		programIDs = append(programIDs, sel.Program.ID)
	}

	payload := events.StackSuggestedPayload{
		RequestID:        requestcontext.RequestID(ctx),
		ProfileID:        req.ProfileID,
		CountryCode:      p.CountryCode,
		ProgramIDs:       programIDs,
		StackValueUSD:    suggestion.ValueUSD,
		CoverageRatio:    suggestion.CoverageRatio,
		ConstraintsHit:   suggestion.ConstraintsHit,
		CandidatesScored: candidates,
	}
	if err := s.publisher.Emit(ctx, events.TypeStackSuggested, payload); err != nil {
		s.logger.ErrorContext(ctx, "stack.suggested event failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err)
	}
}

// reasonClass collapses parameterized reasons ("excluded:solar_credit",
// "duplicate_source:401", "cap:max:50%") to their prefix for metric labels.
func reasonClass(reason string) string {
	if i := strings.Index(reason, ":"); i > 0 {
		return reason[:i]
	}
	return reason
}
