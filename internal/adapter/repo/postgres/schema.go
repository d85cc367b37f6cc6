package postgres

import (
	"fmt"

	"github.com/fairyhunter13/talent-match/internal/domain"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS occupations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		competency_unit TEXT NOT NULL DEFAULT '',
		required_keywords TEXT NOT NULL DEFAULT '',
		functional_area TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_occupations_name ON occupations (name)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_title ON courses (title)`,
}

// EnsureSchema creates the corpus and catalog tables when they do not
// exist yet. The indexer runs it before seeding so a fresh database
// needs no separate migration step.
func EnsureSchema(ctx domain.Context, pool PgxPool) error {
	for _, q := range schemaStatements {
		if _, err := pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("op=schema.ensure: %w", err)
		}
	}
	return nil
}
