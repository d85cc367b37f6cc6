package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/talent-match/internal/domain"
)

// CourseRepo reads and seeds the course catalog using a minimal pgx pool.
type CourseRepo struct{ Pool PgxPool }

// NewCourseRepo constructs a CourseRepo with the given pool.
func NewCourseRepo(p PgxPool) *CourseRepo { return &CourseRepo{Pool: p} }

// ListCourses returns the full course catalog ordered by title.
func (r *CourseRepo) ListCourses(ctx domain.Context) ([]domain.CandidateItem, error) {
	tracer := otel.Tracer("repo.courses")
	ctx, span := tracer.Start(ctx, "courses.List")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "courses"),
	)
	q := `SELECT id, title, description, category, url FROM courses ORDER BY title`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=course.list: %w", err)
	}
	defer rows.Close()
	var out []domain.CandidateItem
	for rows.Next() {
		var c domain.CandidateItem
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.URL); err != nil {
			return nil, fmt.Errorf("op=course.list.scan: %w", err)
		}
		c.Source = "catalog"
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=course.list.rows: %w", err)
	}
	return out, nil
}

// SeedCourses bulk-inserts catalog rows inside one transaction, replacing
// the existing catalog.
func (r *CourseRepo) SeedCourses(ctx domain.Context, items []domain.CandidateItem) error {
	tracer := otel.Tracer("repo.courses")
	ctx, span := tracer.Start(ctx, "courses.Seed")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "courses"),
		attribute.Int("rows", len(items)),
	)
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("op=course.seed.begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `DELETE FROM courses`); err != nil {
		return fmt.Errorf("op=course.seed.clear: %w", err)
	}
	q := `INSERT INTO courses (id, title, description, category, url, created_at) VALUES ($1,$2,$3,$4,$5,$6)`
	now := time.Now().UTC()
	for _, c := range items {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.Exec(ctx, q, id, c.Title, c.Description, c.Category, c.URL, now); err != nil {
			return fmt.Errorf("op=course.seed.insert: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("op=course.seed.commit: %w", err)
	}
	return nil
}
