package program

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"incentra/pkg/requestcontext"
)

// PostgresStore persists program records in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE programs (
//	    id             BIGSERIAL PRIMARY KEY,
//	    uid            TEXT NOT NULL DEFAULT '',
//	    source_id      BIGINT,
//	    country_code   TEXT NOT NULL,
//	    jurisdiction   TEXT NOT NULL DEFAULT '',
//	    industry_codes TEXT[] NOT NULL DEFAULT '{}',
//	    start_date     TEXT NOT NULL DEFAULT '',
//	    end_date       TEXT NOT NULL DEFAULT '',
//	    updated_at_ms  BIGINT NOT NULL DEFAULT 0,
//	    benefits       JSONB NOT NULL DEFAULT '[]',
//	    tags           TEXT[] NOT NULL DEFAULT '{}',
//	    created_at     TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed program store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const programColumns = `id, uid, source_id, country_code, jurisdiction, industry_codes,
	start_date, end_date, updated_at_ms, benefits, tags, created_at`

func (s *PostgresStore) Save(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, fmt.Errorf("program record is required")
	}
	benefits, err := json.Marshal(rec.Benefits)
	if err != nil {
		return nil, fmt.Errorf("encode benefits: %w", err)
	}

	if rec.ID == 0 {
		row := s.db.QueryRowContext(ctx, `
			INSERT INTO programs (uid, source_id, country_code, jurisdiction, industry_codes,
				start_date, end_date, updated_at_ms, benefits, tags, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING `+programColumns,
			rec.UID, nullInt64(rec.SourceID), rec.CountryCode, rec.Jurisdiction,
			pq.Array(rec.IndustryCodes), rec.StartDate, rec.EndDate, rec.UpdatedAtMs,
			benefits, pq.Array(rec.TagStrings()), requestcontext.Now(ctx))
		saved, err := scanRecord(row)
		if err != nil {
			return nil, fmt.Errorf("insert program: %w", err)
		}
		return saved, nil
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE programs
		SET uid = $2, source_id = $3, country_code = $4, jurisdiction = $5,
			industry_codes = $6, start_date = $7, end_date = $8, updated_at_ms = $9,
			benefits = $10, tags = $11
		WHERE id = $1
		RETURNING `+programColumns,
		rec.ID, rec.UID, nullInt64(rec.SourceID), rec.CountryCode, rec.Jurisdiction,
		pq.Array(rec.IndustryCodes), rec.StartDate, rec.EndDate, rec.UpdatedAtMs,
		benefits, pq.Array(rec.TagStrings()))
	saved, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update program: %w", err)
	}
	return saved, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+programColumns+` FROM programs WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get program: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) GetByUID(ctx context.Context, uid string) (*Record, error) {
	if uid == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+programColumns+` FROM programs WHERE uid = $1`, uid)
	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get program by uid: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := `SELECT ` + programColumns + ` FROM programs
		WHERE ($1 = '' OR country_code = $1)
		  AND ($2 = '' OR jurisdiction = $2)
		  AND ($3 = '' OR $3 = ANY(industry_codes))
		ORDER BY id`
	args := []any{filter.CountryCode, filter.Jurisdiction, filter.IndustryCode}
	if filter.Limit > 0 {
		query += ` LIMIT $4`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec      Record
		sourceID sql.NullInt64
		benefits []byte
		tags     []string
	)
	err := row.Scan(&rec.ID, &rec.UID, &sourceID, &rec.CountryCode, &rec.Jurisdiction,
		pq.Array(&rec.IndustryCodes), &rec.StartDate, &rec.EndDate, &rec.UpdatedAtMs,
		&benefits, pq.Array(&tags), &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if sourceID.Valid {
		rec.SourceID = &sourceID.Int64
	}
	if err := json.Unmarshal(benefits, &rec.Benefits); err != nil {
		return nil, fmt.Errorf("decode benefits: %w", err)
	}
	parsed, err := ParseTags(tags)
	if err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	rec.Tags = parsed
	return &rec, nil
}

func nullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}
