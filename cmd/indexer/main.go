// Command indexer seeds the occupation corpus and course catalog from CSV
// files and optionally prebuilds the persisted occupation index so the
// first server request does not pay the embedding cost.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fairyhunter13/talent-match/internal/adapter/embedding"
	"github.com/fairyhunter13/talent-match/internal/adapter/embedding/local"
	"github.com/fairyhunter13/talent-match/internal/adapter/embedding/openai"
	redisstore "github.com/fairyhunter13/talent-match/internal/adapter/indexstore/redis"
	"github.com/fairyhunter13/talent-match/internal/adapter/observability"
	"github.com/fairyhunter13/talent-match/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/talent-match/internal/config"
	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/internal/matcher"
)

func main() {
	occPath := flag.String("occupations", "", "CSV file with occupation rows (name,functional_area,competency_unit,required_keywords)")
	coursePath := flag.String("courses", "", "CSV file with course rows (title,description,category,url)")
	buildIndex := flag.Bool("build", false, "build the occupation index and persist it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		slog.Error("schema setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	occRepo := postgres.NewOccupationRepo(pool)
	courseRepo := postgres.NewCourseRepo(pool)

	if *occPath != "" {
		recs, err := readOccupationCSV(*occPath)
		if err != nil {
			slog.Error("occupation csv unreadable", slog.String("path", *occPath), slog.Any("error", err))
			os.Exit(1)
		}
		if err := occRepo.SeedOccupations(ctx, recs); err != nil {
			slog.Error("occupation seed failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("occupations seeded", slog.Int("rows", len(recs)))
	}

	if *coursePath != "" {
		items, err := readCourseCSV(*coursePath)
		if err != nil {
			slog.Error("course csv unreadable", slog.String("path", *coursePath), slog.Any("error", err))
			os.Exit(1)
		}
		if err := courseRepo.SeedCourses(ctx, items); err != nil {
			slog.Error("course seed failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("courses seeded", slog.Int("rows", len(items)))
	}

	if *buildIndex {
		store, err := redisstore.New(cfg.RedisURL)
		if err != nil {
			slog.Error("index store connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()

		var embedder domain.EmbeddingClient
		if cfg.OpenAIAPIKey != "" {
			embedder = openai.New(cfg)
		} else {
			slog.Warn("OPENAI_API_KEY not set, using local hash embedder")
			embedder = local.New()
		}
		embedder = embedding.NewCache(embedder, cfg.EmbedCacheSize)

		builder := matcher.NewBuilder(occRepo, store, embedder, cfg.IndexTTL)
		ix, err := builder.Ensure(ctx)
		if err != nil {
			slog.Error("index build failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("index ready", slog.Int("rows", ix.Len()), slog.String("model", ix.ModelID()))
	}
}

// readOccupationCSV parses an occupation corpus CSV. A header row is
// detected by its first cell and skipped.
func readOccupationCSV(path string) ([]domain.OccupationRecord, error) {
	rows, err := readCSV(path, 4)
	if err != nil {
		return nil, err
	}
	var out []domain.OccupationRecord
	for _, row := range rows {
		if strings.EqualFold(row[0], "name") {
			continue
		}
		out = append(out, domain.OccupationRecord{
			Name:                strings.TrimSpace(row[0]),
			FunctionalArea:      strings.TrimSpace(row[1]),
			CompetencyUnit:      strings.TrimSpace(row[2]),
			RequiredKeywordsRaw: strings.TrimSpace(row[3]),
		})
	}
	return out, nil
}

func readCourseCSV(path string) ([]domain.CandidateItem, error) {
	rows, err := readCSV(path, 4)
	if err != nil {
		return nil, err
	}
	var out []domain.CandidateItem
	for _, row := range rows {
		if strings.EqualFold(row[0], "title") {
			continue
		}
		out = append(out, domain.CandidateItem{
			Title:       strings.TrimSpace(row[0]),
			Description: strings.TrimSpace(row[1]),
			Category:    strings.TrimSpace(row[2]),
			URL:         strings.TrimSpace(row[3]),
			Source:      "catalog",
		})
	}
	return out, nil
}

func readCSV(path string, minFields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < minFields {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
