package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"incentra/pkg/requestcontext"
)

// PostgresStore persists profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const profileColumns = `id, name, country_code, jurisdiction, industry_codes,
	capex_cents, start_date, end_date, created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, p *Profile) (*Profile, error) {
	if p == nil {
		return nil, fmt.Errorf("profile is required")
	}
	now := requestcontext.Now(ctx)

	if p.ID == 0 {
		row := s.db.QueryRowContext(ctx, `
			INSERT INTO profiles (name, country_code, jurisdiction, industry_codes,
				capex_cents, start_date, end_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			RETURNING `+profileColumns,
			p.Name, p.CountryCode, p.Jurisdiction, pq.Array(p.IndustryCodes),
			nullInt64(p.CapexCents), p.StartDate, p.EndDate, now)
		saved, err := scanProfile(row)
		if err != nil {
			return nil, fmt.Errorf("insert profile: %w", err)
		}
		return saved, nil
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE profiles
		SET name = $2, country_code = $3, jurisdiction = $4, industry_codes = $5,
			capex_cents = $6, start_date = $7, end_date = $8, updated_at = $9
		WHERE id = $1
		RETURNING `+profileColumns,
		p.ID, p.Name, p.CountryCode, p.Jurisdiction, pq.Array(p.IndustryCodes),
		nullInt64(p.CapexCents), p.StartDate, p.EndDate, now)
	saved, err := scanProfile(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return saved, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var (
		p     Profile
		capex sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &p.CountryCode, &p.Jurisdiction,
		pq.Array(&p.IndustryCodes), &capex, &p.StartDate, &p.EndDate,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if capex.Valid {
		p.CapexCents = &capex.Int64
	}
	return &p, nil
}

func nullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}
