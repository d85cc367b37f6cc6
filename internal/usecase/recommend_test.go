package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/internal/usecase"
)

type stubCatalog struct {
	items []domain.CandidateItem
	err   error
}

func (c *stubCatalog) ListCourses(_ domain.Context) ([]domain.CandidateItem, error) {
	return c.items, c.err
}

type stubFeeds struct {
	items    []domain.CandidateItem
	statuses []domain.SourceStatus
}

func (f *stubFeeds) FetchAll(_ domain.Context) ([]domain.CandidateItem, []domain.SourceStatus) {
	return f.items, f.statuses
}

func TestRecommendCourses_RanksBySkillCoverage(t *testing.T) {
	t.Parallel()
	catalog := &stubCatalog{items: []domain.CandidateItem{
		{ID: "c1", Title: "Photography Basics", Description: "camera and lighting"},
		{ID: "c2", Title: "SQL for Data Analysis", Description: "queries, joins, python integration"},
		{ID: "c3", Title: "Intro to Python", Description: "programming fundamentals"},
	}}
	svc := usecase.NewRecommendService(catalog, &stubFeeds{}, 8, 20)

	results, err := svc.RecommendCourses(context.Background(), []string{"python", "sql"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c2", results[0].Item.ID)
	assert.Equal(t, 2, results[0].Score)
	assert.Equal(t, "c3", results[1].Item.ID)
}

func TestRecommendCourses_NoSkillsReturnsEmptyRanking(t *testing.T) {
	t.Parallel()
	catalog := &stubCatalog{items: []domain.CandidateItem{
		{ID: "c1", Title: "Intro to Python", Description: "programming fundamentals"},
	}}
	svc := usecase.NewRecommendService(catalog, &stubFeeds{}, 8, 20)
	results, err := svc.RecommendCourses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRecommendCourses_CatalogError(t *testing.T) {
	t.Parallel()
	svc := usecase.NewRecommendService(&stubCatalog{err: errors.New("db down")}, &stubFeeds{}, 8, 20)
	_, err := svc.RecommendCourses(context.Background(), []string{"python"})
	require.Error(t, err)
}

func TestMatchJobs_RanksAndReportsSources(t *testing.T) {
	t.Parallel()
	feeds := &stubFeeds{
		items: []domain.CandidateItem{
			{ID: "j1", Title: "Remote Data Scientist", Description: "python, sql, machine learning"},
			{ID: "j2", Title: "Chef", Description: "fine dining"},
		},
		statuses: []domain.SourceStatus{
			{Source: "boardA", Status: domain.SourceStatusSuccess, Count: 2},
		},
	}
	svc := usecase.NewRecommendService(&stubCatalog{}, feeds, 8, 20)

	results, statuses, err := svc.MatchJobs(context.Background(), []string{"python", "sql"}, []string{"Data Scientist"}, nil)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "j1", results[0].Item.ID)
	assert.Contains(t, results[0].MatchedTokens, "python")
	assert.Contains(t, results[0].MatchedTokens, "data scientist")
}

func TestMatchJobs_PartialSourceFailure(t *testing.T) {
	t.Parallel()
	feeds := &stubFeeds{
		items: []domain.CandidateItem{
			{ID: "j1", Title: "Python Developer", Description: "backend"},
		},
		statuses: []domain.SourceStatus{
			{Source: "boardA", Status: domain.SourceStatusSuccess, Count: 1},
			{Source: "boardB", Status: domain.SourceStatusError, Message: "timeout"},
		},
	}
	svc := usecase.NewRecommendService(&stubCatalog{}, feeds, 8, 20)

	results, statuses, err := svc.MatchJobs(context.Background(), []string{"python"}, nil, nil)
	require.ErrorIs(t, err, domain.ErrPartialSourceFailure)
	assert.Len(t, statuses, 2)
	assert.Len(t, results, 1)
}

func TestMatchJobs_AllSourcesFailed(t *testing.T) {
	t.Parallel()
	feeds := &stubFeeds{
		statuses: []domain.SourceStatus{
			{Source: "boardA", Status: domain.SourceStatusError, Message: "dns"},
			{Source: "boardB", Status: domain.SourceStatusError, Message: "timeout"},
		},
	}
	svc := usecase.NewRecommendService(&stubCatalog{}, feeds, 8, 20)

	_, statuses, err := svc.MatchJobs(context.Background(), []string{"python"}, nil, nil)
	require.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.Len(t, statuses, 2)
}

func TestMatchJobs_NoInput(t *testing.T) {
	t.Parallel()
	svc := usecase.NewRecommendService(&stubCatalog{}, &stubFeeds{}, 8, 20)
	_, _, err := svc.MatchJobs(context.Background(), nil, nil, nil)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestJobSearchKeywords_ExpandsVariations(t *testing.T) {
	t.Parallel()
	got := usecase.JobSearchKeywords([]string{"Python", "SQL"}, []string{"Data Scientist"}, nil)
	assert.Contains(t, got, "data scientist")
	assert.Contains(t, got, "data science")
	assert.Contains(t, got, "machine learning engineer")
	assert.Contains(t, got, "python")
	assert.Contains(t, got, "sql")
}

func TestJobSearchKeywords_IncludesUnitPhrases(t *testing.T) {
	t.Parallel()
	got := usecase.JobSearchKeywords(nil, []string{"Welder"}, []string{"Arc Welding", "Metal Fabrication"})
	assert.Contains(t, got, "arc welding")
	assert.Contains(t, got, "metal fabrication")
}

func TestJobSearchKeywords_DedupesAndCapsSkills(t *testing.T) {
	t.Parallel()
	skills := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7"}
	got := usecase.JobSearchKeywords(skills, []string{"s1"}, nil)
	assert.NotContains(t, got, "s6")
	assert.NotContains(t, got, "s7")
	count := 0
	for _, k := range got {
		if k == "s1" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
