package gap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/talent-match/internal/gap"
)

func TestCompute_PartialOverlap(t *testing.T) {
	t.Parallel()
	a := gap.NewAnalyzer(nil)
	report := a.Compute(
		[]string{"python"},
		[]string{"python", "sql", "machine learning"},
	)
	assert.Equal(t, []string{"python"}, report.OwnedSkills)
	assert.Equal(t, []string{"sql", "machine learning"}, report.MissingSkills)
	assert.InDelta(t, 66.7, report.GapPercentage, 0.0001)
}

func TestCompute_CaseInsensitive(t *testing.T) {
	t.Parallel()
	a := gap.NewAnalyzer(nil)
	report := a.Compute([]string{"Python", " SQL "}, []string{"python", "sql"})
	assert.Empty(t, report.MissingSkills)
	assert.Equal(t, 0.0, report.GapPercentage)
}

func TestCompute_FullGap(t *testing.T) {
	t.Parallel()
	a := gap.NewAnalyzer(nil)
	report := a.Compute([]string{"cooking"}, []string{"python", "sql"})
	assert.Empty(t, report.OwnedSkills)
	assert.Equal(t, []string{"python", "sql"}, report.MissingSkills)
	assert.Equal(t, 100.0, report.GapPercentage)
}

func TestCompute_EmptyRequired(t *testing.T) {
	t.Parallel()
	a := gap.NewAnalyzer(nil)
	report := a.Compute([]string{"python"}, nil)
	assert.Empty(t, report.MissingSkills)
	assert.Equal(t, 0.0, report.GapPercentage)
}

func TestCompute_DedupesRequired(t *testing.T) {
	t.Parallel()
	a := gap.NewAnalyzer(nil)
	report := a.Compute(nil, []string{"sql", "SQL", "sql "})
	assert.Equal(t, []string{"sql"}, report.MissingSkills)
	assert.Equal(t, 100.0, report.GapPercentage)
}

func TestCompute_PriorityOrdering(t *testing.T) {
	t.Parallel()
	a := gap.NewAnalyzer(nil)
	report := a.Compute(nil, []string{"negotiation", "docker", "public speaking", "python"})
	// Priority skills first, both groups keep their relative order.
	assert.Equal(t, []string{"docker", "python", "negotiation", "public speaking"}, report.PrioritySkills)
	assert.Equal(t, []string{"negotiation", "docker", "public speaking", "python"}, report.MissingSkills)
}

func TestCompute_PriorityMatchesSubstring(t *testing.T) {
	t.Parallel()
	a := gap.NewAnalyzer(nil)
	report := a.Compute(nil, []string{"advanced python programming", "flower arranging"})
	assert.Equal(t, []string{"advanced python programming", "flower arranging"}, report.PrioritySkills)
	a2 := gap.NewAnalyzer([]string{"flower"})
	report2 := a2.Compute(nil, []string{"advanced python programming", "flower arranging"})
	assert.Equal(t, []string{"flower arranging", "advanced python programming"}, report2.PrioritySkills)
}

func TestLoadPriorityList(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "priority.yaml")
	require.NoError(t, os.WriteFile(path, []byte("priority_skills:\n  - rust\n  - go\n"), 0o600))
	got, err := gap.LoadPriorityList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust", "go"}, got)
}

func TestLoadPriorityList_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := gap.LoadPriorityList(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestInferLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Junior", gap.InferLevel("Junior Web Developer"))
	assert.Equal(t, "Junior", gap.InferLevel("Associate Data Analyst"))
	assert.Equal(t, "Senior", gap.InferLevel("Lead Software Engineer"))
	assert.Equal(t, "Senior", gap.InferLevel("Principal Architect"))
	assert.Equal(t, "Mid-Level", gap.InferLevel("Data Scientist"))
}
