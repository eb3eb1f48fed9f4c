//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"incentra/internal/events"
	"incentra/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *events.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = events.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "outbox_events")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestAppendListMarkRoundTrip() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := s.store.Append(ctx, events.Event{
			Type:    events.TypeStackSuggested,
			Payload: json.RawMessage(`{"country_code":"US"}`),
		})
		s.Require().NoError(err)
	}

	pending, err := s.store.ListUnpublished(ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(pending, 3)
	s.NotEqual(uuid.Nil, pending[0].ID)
	s.JSONEq(`{"country_code":"US"}`, string(pending[0].Payload))

	err = s.store.MarkPublished(ctx, []uuid.UUID{pending[0].ID, pending[1].ID})
	s.Require().NoError(err)

	remaining, err := s.store.ListUnpublished(ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal(pending[2].ID, remaining[0].ID)
}

func (s *PostgresStoreSuite) TestListHonorsLimit() {
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.Append(ctx, events.Event{
			Type:    events.TypeStackSuggested,
			Payload: json.RawMessage(`{}`),
		}))
	}

	limited, err := s.store.ListUnpublished(ctx, 2)
	s.Require().NoError(err)
	s.Len(limited, 2)
}

func (s *PostgresStoreSuite) TestMarkPublishedIsIdempotent() {
	ctx := context.Background()

	s.Require().NoError(s.store.Append(ctx, events.Event{
		Type:    events.TypeStackSuggested,
		Payload: json.RawMessage(`{}`),
	}))

	pending, err := s.store.ListUnpublished(ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)

	ids := []uuid.UUID{pending[0].ID}
	s.Require().NoError(s.store.MarkPublished(ctx, ids))
	s.Require().NoError(s.store.MarkPublished(ctx, ids))

	remaining, err := s.store.ListUnpublished(ctx, 0)
	s.Require().NoError(err)
	s.Empty(remaining)
}
