// Package usecase contains application services orchestrating the domain
// ports: occupation matching, gap analysis, learning paths, and
// recommendations.
package usecase

import (
	"fmt"

	"log/slog"

	"github.com/fairyhunter13/talent-match/internal/adapter/observability"
	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/internal/gap"
	"github.com/fairyhunter13/talent-match/internal/matcher"
	"github.com/fairyhunter13/talent-match/pkg/textx"
)

const defaultTopK = 3

// MatchService matches free-form profile text against the occupation corpus
// and derives gap reports and learning paths from the result.
type MatchService struct {
	Builder  *matcher.Builder
	Corpus   domain.CorpusReader
	Analyzer *gap.Analyzer
}

// NewMatchService wires a MatchService.
func NewMatchService(b *matcher.Builder, corpus domain.CorpusReader, analyzer *gap.Analyzer) MatchService {
	return MatchService{Builder: b, Corpus: corpus, Analyzer: analyzer}
}

// MatchOccupations returns the topK closest occupations for the profile
// text, descending by similarity. topK <= 0 defaults to 3.
func (s MatchService) MatchOccupations(ctx domain.Context, profileText string, topK int) ([]domain.OccupationMatch, error) {
	normalized := textx.NormalizeText(profileText)
	if normalized == "" {
		return nil, fmt.Errorf("op=match.occupations: %w: empty profile text", domain.ErrInvalidArgument)
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	ix, err := s.Builder.Ensure(ctx)
	if err != nil {
		return nil, fmt.Errorf("op=match.occupations: %w", err)
	}
	hits, err := ix.TopK(ctx, normalized, topK)
	if err != nil {
		return nil, fmt.Errorf("op=match.occupations: %w", err)
	}

	out := make([]domain.OccupationMatch, len(hits))
	for i, h := range hits {
		rec := ix.Record(h.Row)
		out[i] = domain.OccupationMatch{
			OccupationID:   rec.ID,
			OccupationName: rec.Name,
			FunctionalArea: rec.FunctionalArea,
			CompetencyUnit: rec.CompetencyUnit,
			Score:          h.Score,
		}
	}
	slog.Debug("occupation match complete", slog.Int("hits", len(out)))
	return out, nil
}

// OccupationDetails is the read model for one corpus entry, with the parsed
// skill tokens and an inferred seniority level.
type OccupationDetails struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	FunctionalArea string   `json:"functional_area"`
	CompetencyUnit string   `json:"competency_unit"`
	RequiredSkills []string `json:"required_skills"`
	Level          string   `json:"level"`
}

// GetOccupationDetails loads one occupation and enriches it with parsed
// tokens and a level inferred from its name.
func (s MatchService) GetOccupationDetails(ctx domain.Context, id string) (OccupationDetails, error) {
	if id == "" {
		return OccupationDetails{}, fmt.Errorf("op=match.details: %w: empty id", domain.ErrInvalidArgument)
	}
	rec, err := s.Corpus.GetOccupation(ctx, id)
	if err != nil {
		return OccupationDetails{}, fmt.Errorf("op=match.details: %w", err)
	}
	return OccupationDetails{
		ID:             rec.ID,
		Name:           rec.Name,
		FunctionalArea: rec.FunctionalArea,
		CompetencyUnit: rec.CompetencyUnit,
		RequiredSkills: rec.RequiredTokens(),
		Level:          gap.InferLevel(rec.Name),
	}, nil
}

// AnalyzeGap compares owned skills against one occupation's requirements.
// An empty owned set is a valid input and reports a full gap.
func (s MatchService) AnalyzeGap(ctx domain.Context, owned []string, occupationID string) (domain.GapReport, error) {
	rec, err := s.Corpus.GetOccupation(ctx, occupationID)
	if err != nil {
		return domain.GapReport{}, fmt.Errorf("op=match.gap: %w", err)
	}
	report := s.Analyzer.Compute(owned, rec.RequiredTokens())
	observability.GapPercentageHistogram.Observe(report.GapPercentage)
	return report, nil
}

// LearningPath derives the phased learning path for the gap between owned
// skills and the occupation's requirements. An empty path means the profile
// already covers the requirements.
func (s MatchService) LearningPath(ctx domain.Context, owned []string, occupationID string) ([]domain.LearningPhase, domain.GapReport, error) {
	report, err := s.AnalyzeGap(ctx, owned, occupationID)
	if err != nil {
		return nil, domain.GapReport{}, fmt.Errorf("op=match.learning_path: %w", err)
	}
	return gap.BuildPath(report), report, nil
}
