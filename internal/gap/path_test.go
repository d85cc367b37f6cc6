package gap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/internal/gap"
)

func TestBuildPath_ThreePhases(t *testing.T) {
	t.Parallel()
	report := domain.GapReport{
		MissingSkills:  []string{"s7", "s1", "s2", "s3", "s4", "s5", "s6"},
		PrioritySkills: []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7"},
	}
	path := gap.BuildPath(report)
	require.Len(t, path, 3)
	assert.Equal(t, 1, path[0].Index)
	assert.Equal(t, []string{"s1", "s2", "s3"}, path[0].Skills)
	assert.Equal(t, "Foundation Phase (Priority)", path[0].Title)
	assert.Equal(t, []string{"s4", "s5", "s6"}, path[1].Skills)
	// Phase 3 draws from missing skills not already placed.
	assert.Equal(t, []string{"s7"}, path[2].Skills)
}

func TestBuildPath_SinglePhase(t *testing.T) {
	t.Parallel()
	report := domain.GapReport{
		MissingSkills:  []string{"sql", "python"},
		PrioritySkills: []string{"python", "sql"},
	}
	path := gap.BuildPath(report)
	require.Len(t, path, 1)
	assert.Equal(t, []string{"python", "sql"}, path[0].Skills)
	assert.Equal(t, "1-2 months", path[0].EstimatedDuration)
}

func TestBuildPath_EmptyGap(t *testing.T) {
	t.Parallel()
	path := gap.BuildPath(domain.GapReport{})
	assert.Empty(t, path)
}

func TestBuildPath_Phase3CapsAtThree(t *testing.T) {
	t.Parallel()
	missing := []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8", "m9", "m10"}
	report := domain.GapReport{
		MissingSkills:  missing,
		PrioritySkills: missing,
	}
	path := gap.BuildPath(report)
	require.Len(t, path, 3)
	assert.Len(t, path[2].Skills, 3)
	assert.Equal(t, []string{"m7", "m8", "m9"}, path[2].Skills)
}

func TestBuildPath_PhaseIndexesAreSequentialTitles(t *testing.T) {
	t.Parallel()
	report := domain.GapReport{
		MissingSkills:  []string{"a1", "a2", "a3", "a4"},
		PrioritySkills: []string{"a1", "a2", "a3", "a4"},
	}
	path := gap.BuildPath(report)
	require.Len(t, path, 2)
	assert.Equal(t, 1, path[0].Index)
	assert.Equal(t, 2, path[1].Index)
	assert.Equal(t, "Intermediate Phase", path[1].Title)
	assert.Equal(t, []string{"a4"}, path[1].Skills)
}
