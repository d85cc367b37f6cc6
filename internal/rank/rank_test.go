package rank_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/internal/rank"
)

func jobCandidates() []domain.CandidateItem {
	return []domain.CandidateItem{
		{ID: "1", Title: "Remote Data Scientist", Description: "Python, SQL and machine learning on large datasets."},
		{ID: "2", Title: "Barista Needed", Description: "Espresso experience required."},
		{ID: "3", Title: "Backend Developer", Description: "We use Python and Docker in production."},
	}
}

func TestRank_ExcludesZeroScore(t *testing.T) {
	t.Parallel()
	kw := rank.Keywords{
		Primary: []string{"data scientist"},
		Scan:    []string{"data scientist", "machine learning"},
		Skills:  []string{"python", "sql"},
	}
	results := rank.Rank(jobCandidates(), kw, rank.JobFeedScheme(), 0)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "2", r.Item.ID)
		assert.Positive(t, r.Score)
	}
}

func TestRank_WeightsFavorPrimaryAndTitle(t *testing.T) {
	t.Parallel()
	kw := rank.Keywords{
		Primary: []string{"data scientist"},
		Scan:    []string{"data scientist"},
		Skills:  []string{"python"},
	}
	results := rank.Rank(jobCandidates(), kw, rank.JobFeedScheme(), 0)
	require.Len(t, results, 2)
	// Title + primary + skill: 4 + 3 + 2 = 9. Skill only: 2.
	assert.Equal(t, "1", results[0].Item.ID)
	assert.Equal(t, 9, results[0].Score)
	assert.Equal(t, "3", results[1].Item.ID)
	assert.Equal(t, 2, results[1].Score)
}

func TestRank_StableForEqualScores(t *testing.T) {
	t.Parallel()
	candidates := []domain.CandidateItem{
		{ID: "a", Title: "Python Course"},
		{ID: "b", Title: "Python Bootcamp"},
		{ID: "c", Title: "Python Workshop"},
	}
	results := rank.Rank(candidates, rank.Keywords{Skills: []string{"python"}}, rank.CourseScheme(), 0)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Item.ID)
	assert.Equal(t, "b", results[1].Item.ID)
	assert.Equal(t, "c", results[2].Item.ID)
}

func TestRank_CourseSchemeCountsDistinctSkills(t *testing.T) {
	t.Parallel()
	candidates := []domain.CandidateItem{
		{ID: "x", Title: "SQL and Python for Analysts", Description: "python python python"},
		{ID: "y", Title: "Intro to SQL"},
	}
	results := rank.Rank(candidates, rank.Keywords{Skills: []string{"python", "sql"}}, rank.CourseScheme(), 0)
	require.Len(t, results, 2)
	// Repetition does not inflate the score.
	assert.Equal(t, 2, results[0].Score)
	assert.Equal(t, 1, results[1].Score)
}

func TestRank_LimitCapsResults(t *testing.T) {
	t.Parallel()
	candidates := []domain.CandidateItem{
		{ID: "a", Title: "go"},
		{ID: "b", Title: "go"},
		{ID: "c", Title: "go"},
	}
	results := rank.Rank(candidates, rank.Keywords{Skills: []string{"go"}}, rank.CourseScheme(), 2)
	assert.Len(t, results, 2)
}

func TestRank_MatchedTokensUnionSkillsAndPrimary(t *testing.T) {
	t.Parallel()
	kw := rank.Keywords{
		Primary: []string{"data scientist"},
		Skills:  []string{"python", "data scientist"},
	}
	results := rank.Rank(jobCandidates()[:1], kw, rank.JobFeedScheme(), 0)
	require.Len(t, results, 1)
	assert.ElementsMatch(t, []string{"python", "data scientist"}, results[0].MatchedTokens)
}

func TestRank_AddingKeywordNeverLowersScore(t *testing.T) {
	t.Parallel()
	kw := rank.Keywords{
		Primary: []string{"data scientist"},
		Scan:    []string{"docker"},
		Skills:  []string{"python", "sql"},
	}
	item := domain.CandidateItem{ID: "j", Title: "Backend Developer", Description: "python services"}
	before := rank.Rank([]domain.CandidateItem{item}, kw, rank.JobFeedScheme(), 0)
	require.Len(t, before, 1)

	item.Description += " with docker"
	after := rank.Rank([]domain.CandidateItem{item}, kw, rank.JobFeedScheme(), 0)
	require.Len(t, after, 1)
	assert.Greater(t, after[0].Score, before[0].Score)

	// Repeating an already-matched keyword leaves the score unchanged.
	item.Description += " docker docker"
	repeated := rank.Rank([]domain.CandidateItem{item}, kw, rank.JobFeedScheme(), 0)
	require.Len(t, repeated, 1)
	assert.Equal(t, after[0].Score, repeated[0].Score)
}

func TestRank_EmptyInputs(t *testing.T) {
	t.Parallel()
	assert.Empty(t, rank.Rank(nil, rank.Keywords{Skills: []string{"x"}}, rank.CourseScheme(), 0))
	assert.Empty(t, rank.Rank(jobCandidates(), rank.Keywords{}, rank.JobFeedScheme(), 0))
}
