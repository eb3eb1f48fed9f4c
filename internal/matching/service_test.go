package matching

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"incentra/internal/events"
	"incentra/internal/events/mocks"
	"incentra/internal/profile"
	"incentra/internal/program"
	dErrors "incentra/pkg/domain-errors"
	"incentra/pkg/requestcontext"
)

// fixedSettings resolves the built-in defaults without a settings store, so
// these tests exercise orchestration rather than settings fallback.
type fixedSettings struct{}

func (fixedSettings) ResolveWeights(ctx context.Context) Weights { return DefaultWeights() }
func (fixedSettings) ResolveFxRates(ctx context.Context) FxRates { return FxRates{"USD": 1} }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceFixture struct {
	service   *Service
	programs  *program.InMemoryStore
	profiles  *profile.Service
	outbox    *events.InMemoryStore
	publisher events.Publisher
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	programs := program.NewInMemoryStore()
	profiles := profile.NewService(profile.NewInMemoryStore(), discardLogger())
	outbox := events.NewInMemoryStore()
	publisher := events.NewOutboxPublisher(outbox, nil)

	return &serviceFixture{
		service:   NewService(programs, profiles, fixedSettings{}, publisher, discardLogger(), nil),
		programs:  programs,
		profiles:  profiles,
		outbox:    outbox,
		publisher: publisher,
	}
}

func (f *serviceFixture) seedProgram(t *testing.T, rec program.Record) program.Record {
	t.Helper()
	saved, err := f.programs.Save(context.Background(), &rec)
	require.NoError(t, err)
	return *saved
}

func testContext() context.Context {
	ctx := requestcontext.WithTime(context.Background(), testNow)
	return requestcontext.WithRequestID(ctx, "req-test")
}

func inlineRequest(p profile.Profile) MatchRequest {
	return MatchRequest{Profile: &p}
}

func TestScoreCatalogSortsByScore(t *testing.T) {
	f := newServiceFixture(t)
	ctx := testContext()

	// Same-country record with matching industry outranks the bare one.
	f.seedProgram(t, program.Record{
		UID:         "plain",
		CountryCode: "US",
		UpdatedAtMs: testNow.UnixMilli(),
	})
	f.seedProgram(t, program.Record{
		UID:           "industry-match",
		CountryCode:   "US",
		IndustryCodes: []string{"3344"},
		UpdatedAtMs:   testNow.UnixMilli(),
	})

	scored, err := f.service.ScoreCatalog(ctx, inlineRequest(profile.Profile{
		CountryCode:   "US",
		IndustryCodes: []string{"3344"},
	}))
	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.Equal(t, "industry-match", scored[0].Program.UID)
	assert.GreaterOrEqual(t, scored[0].Score, scored[1].Score)
	assert.NotZero(t, scored[0].Reasons.Industry)
}

func TestScoreCatalogDefaultsFilterToProfileCountry(t *testing.T) {
	f := newServiceFixture(t)
	ctx := testContext()

	f.seedProgram(t, program.Record{UID: "us", CountryCode: "US", UpdatedAtMs: testNow.UnixMilli()})
	f.seedProgram(t, program.Record{UID: "ca", CountryCode: "CA", UpdatedAtMs: testNow.UnixMilli()})

	scored, err := f.service.ScoreCatalog(ctx, inlineRequest(profile.Profile{CountryCode: "CA"}))
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Equal(t, "ca", scored[0].Program.UID)
}

func TestScoreCatalogValidatesProfile(t *testing.T) {
	f := newServiceFixture(t)
	ctx := testContext()

	_, err := f.service.ScoreCatalog(ctx, inlineRequest(profile.Profile{CountryCode: "FR"}))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))

	_, err = f.service.ScoreCatalog(ctx, MatchRequest{})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestScoreCatalogRejectsAmbiguousProfile(t *testing.T) {
	f := newServiceFixture(t)
	ctx := testContext()

	p := profile.Profile{CountryCode: "US"}
	_, err := f.service.ScoreCatalog(ctx, MatchRequest{ProfileID: 1, Profile: &p})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestScoreCatalogLoadsStoredProfile(t *testing.T) {
	f := newServiceFixture(t)
	ctx := testContext()

	stored, err := f.profiles.Save(ctx, profile.Profile{
		Name:        "Acme",
		CountryCode: "US",
	})
	require.NoError(t, err)

	f.seedProgram(t, program.Record{UID: "us", CountryCode: "US", UpdatedAtMs: testNow.UnixMilli()})

	scored, err := f.service.ScoreCatalog(ctx, MatchRequest{ProfileID: stored.ID})
	require.NoError(t, err)
	assert.Len(t, scored, 1)

	_, err = f.service.ScoreCatalog(ctx, MatchRequest{ProfileID: 999})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestSuggestStackSelectsAndEmitsEvent(t *testing.T) {
	f := newServiceFixture(t)
	ctx := testContext()

	f.seedProgram(t, program.Record{
		UID:         "grant-a",
		CountryCode: "US",
		UpdatedAtMs: testNow.UnixMilli(),
		Benefits:    []program.Benefit{usdBenefit(500_000)},
	})
	f.seedProgram(t, program.Record{
		UID:         "grant-b",
		CountryCode: "US",
		UpdatedAtMs: testNow.UnixMilli(),
		Benefits:    []program.Benefit{usdBenefit(300_000)},
	})

	suggestion, err := f.service.SuggestStack(ctx, inlineRequest(profile.Profile{
		CountryCode: "US",
		CapexCents:  centsPtr(2_000_000),
	}))
	require.NoError(t, err)
	require.Len(t, suggestion.Selected, 2)
	assert.Equal(t, 8000.0, suggestion.ValueUSD)

	pending, err := f.outbox.ListUnpublished(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, events.TypeStackSuggested, pending[0].Type)
}

func TestSuggestStackScoresCandidatesBeforeAllocation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := testContext()

	// The fresher record scores higher and must be admitted first even
	// though the stale one was stored first.
	f.seedProgram(t, program.Record{
		UID:         "stale",
		CountryCode: "US",
		UpdatedAtMs: testNow.AddDate(-1, 0, 0).UnixMilli(),
		Benefits:    []program.Benefit{usdBenefit(100_000)},
	})
	f.seedProgram(t, program.Record{
		UID:         "fresh",
		CountryCode: "US",
		UpdatedAtMs: testNow.UnixMilli(),
		Benefits:    []program.Benefit{usdBenefit(100_000)},
	})

	suggestion, err := f.service.SuggestStack(ctx, inlineRequest(profile.Profile{CountryCode: "US"}))
	require.NoError(t, err)
	require.Len(t, suggestion.Selected, 2)
	assert.Equal(t, "fresh", suggestion.Selected[0].Program.UID)
	assert.Equal(t, "stale", suggestion.Selected[1].Program.UID)
}

func TestSuggestStackSurvivesPublisherFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	publisher.EXPECT().
		Emit(gomock.Any(), events.TypeStackSuggested, gomock.Any()).
		Return(errors.New("outbox unavailable"))

	programs := program.NewInMemoryStore()
	profiles := profile.NewService(profile.NewInMemoryStore(), discardLogger())
	service := NewService(programs, profiles, fixedSettings{}, publisher, discardLogger(), nil)
	ctx := testContext()

	_, err := programs.Save(ctx, &program.Record{
		CountryCode: "US",
		UpdatedAtMs: testNow.UnixMilli(),
		Benefits:    []program.Benefit{usdBenefit(100_000)},
	})
	require.NoError(t, err)

	suggestion, err := service.SuggestStack(ctx, inlineRequest(profile.Profile{CountryCode: "US"}))
	require.NoError(t, err, "event failure must not fail the request")
	assert.Len(t, suggestion.Selected, 1)
}

func TestReasonClass(t *testing.T) {
	assert.Equal(t, "excluded", reasonClass("excluded:solar_credit"))
	assert.Equal(t, "duplicate_source", reasonClass("duplicate_source:401"))
	assert.Equal(t, "cap", reasonClass("cap:max:50%"))
	assert.Equal(t, ReasonCapexExhausted, reasonClass(ReasonCapexExhausted))
}
