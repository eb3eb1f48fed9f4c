package program

import (
	"context"

	dErrors "incentra/pkg/domain-errors"
)

// ErrNotFound is returned when a program id does not exist.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "program not found")

// Filter narrows a catalog listing. Zero values mean no constraint.
type Filter struct {
	CountryCode  string
	Jurisdiction string
	IndustryCode string
	Limit        int
}

// Store persists the program catalog. Implementations must return copies so
// callers can annotate records (e.g. attach scores) without mutating stored
// state.
type Store interface {
	Save(ctx context.Context, rec *Record) (*Record, error)
	GetByID(ctx context.Context, id int64) (*Record, error)
	GetByUID(ctx context.Context, uid string) (*Record, error)
	List(ctx context.Context, filter Filter) ([]Record, error)
	Delete(ctx context.Context, id int64) error
}
