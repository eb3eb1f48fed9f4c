package profile

import (
	"context"

	dErrors "incentra/pkg/domain-errors"
)

// ErrNotFound is returned when a profile id does not exist.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "profile not found")

// Store persists applicant profiles. Implementations return copies.
type Store interface {
	Save(ctx context.Context, p *Profile) (*Profile, error)
	GetByID(ctx context.Context, id int64) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Delete(ctx context.Context, id int64) error
}
