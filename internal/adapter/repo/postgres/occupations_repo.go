// Package postgres provides PostgreSQL database adapters.
//
// It implements the corpus and catalog repository interfaces with
// connection pooling and per-query tracing.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/talent-match/internal/domain"
)

// OccupationRepo reads and seeds occupation records using a minimal pgx pool.
type OccupationRepo struct{ Pool PgxPool }

// PgxPool is a minimal subset of pgxpool used by the repos for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// NewOccupationRepo constructs an OccupationRepo with the given pool.
func NewOccupationRepo(p PgxPool) *OccupationRepo { return &OccupationRepo{Pool: p} }

// ListOccupations returns the full occupation corpus ordered by name.
func (r *OccupationRepo) ListOccupations(ctx domain.Context) ([]domain.OccupationRecord, error) {
	tracer := otel.Tracer("repo.occupations")
	ctx, span := tracer.Start(ctx, "occupations.List")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "occupations"),
	)
	q := `SELECT id, name, competency_unit, required_keywords, functional_area FROM occupations ORDER BY name`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=occupation.list: %w", err)
	}
	defer rows.Close()
	var out []domain.OccupationRecord
	for rows.Next() {
		var rec domain.OccupationRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.CompetencyUnit, &rec.RequiredKeywordsRaw, &rec.FunctionalArea); err != nil {
			return nil, fmt.Errorf("op=occupation.list.scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=occupation.list.rows: %w", err)
	}
	return out, nil
}

// GetOccupation loads one occupation by id.
func (r *OccupationRepo) GetOccupation(ctx domain.Context, id string) (domain.OccupationRecord, error) {
	tracer := otel.Tracer("repo.occupations")
	ctx, span := tracer.Start(ctx, "occupations.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "occupations"),
	)
	q := `SELECT id, name, competency_unit, required_keywords, functional_area FROM occupations WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var rec domain.OccupationRecord
	if err := row.Scan(&rec.ID, &rec.Name, &rec.CompetencyUnit, &rec.RequiredKeywordsRaw, &rec.FunctionalArea); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OccupationRecord{}, fmt.Errorf("op=occupation.get: %w: id=%s", domain.ErrNotFound, id)
		}
		return domain.OccupationRecord{}, fmt.Errorf("op=occupation.get: %w", err)
	}
	return rec, nil
}

// SeedOccupations bulk-inserts records inside one transaction, replacing
// the existing corpus. Used by the indexer command after CSV import.
func (r *OccupationRepo) SeedOccupations(ctx domain.Context, recs []domain.OccupationRecord) error {
	tracer := otel.Tracer("repo.occupations")
	ctx, span := tracer.Start(ctx, "occupations.Seed")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "occupations"),
		attribute.Int("rows", len(recs)),
	)
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("op=occupation.seed.begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `DELETE FROM occupations`); err != nil {
		return fmt.Errorf("op=occupation.seed.clear: %w", err)
	}
	q := `INSERT INTO occupations (id, name, competency_unit, required_keywords, functional_area, created_at) VALUES ($1,$2,$3,$4,$5,$6)`
	now := time.Now().UTC()
	for _, rec := range recs {
		id := rec.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.Exec(ctx, q, id, rec.Name, rec.CompetencyUnit, rec.RequiredKeywordsRaw, rec.FunctionalArea, now); err != nil {
			return fmt.Errorf("op=occupation.seed.insert: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("op=occupation.seed.commit: %w", err)
	}
	return nil
}
