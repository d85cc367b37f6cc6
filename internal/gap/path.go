package gap

import (
	"github.com/fairyhunter13/talent-match/internal/domain"
)

const phaseSize = 3

// BuildPath segments a gap report's priority skills into up to three ordered
// learning phases. Empty phases are omitted; an empty missing set yields an
// empty path, which means no significant gap rather than an error.
func BuildPath(report domain.GapReport) []domain.LearningPhase {
	priority := report.PrioritySkills
	missing := report.MissingSkills

	phase1 := headSlice(priority, 0, phaseSize)
	phase2 := headSlice(priority, phaseSize, 2*phaseSize)

	placed := make(map[string]struct{}, len(phase1)+len(phase2))
	for _, s := range phase1 {
		placed[s] = struct{}{}
	}
	for _, s := range phase2 {
		placed[s] = struct{}{}
	}
	var phase3 []string
	for _, s := range missing {
		if _, ok := placed[s]; ok {
			continue
		}
		phase3 = append(phase3, s)
		if len(phase3) == phaseSize {
			break
		}
	}

	var path []domain.LearningPhase
	if len(phase1) > 0 {
		path = append(path, domain.LearningPhase{
			Index:             1,
			Title:             "Foundation Phase (Priority)",
			Skills:            phase1,
			EstimatedDuration: "1-2 months",
			Focus:             "Core skills most demanded by the market",
		})
	}
	if len(phase2) > 0 {
		path = append(path, domain.LearningPhase{
			Index:             2,
			Title:             "Intermediate Phase",
			Skills:            phase2,
			EstimatedDuration: "2-3 months",
			Focus:             "Specialization and advanced tooling",
		})
	}
	if len(phase3) > 0 {
		path = append(path, domain.LearningPhase{
			Index:             3,
			Title:             "Advanced Phase",
			Skills:            phase3,
			EstimatedDuration: "3-6 months",
			Focus:             "Expert-level skills and certification",
		})
	}
	return path
}

func headSlice(s []string, from, to int) []string {
	if from >= len(s) {
		return nil
	}
	if to > len(s) {
		to = len(s)
	}
	out := make([]string, to-from)
	copy(out, s[from:to])
	return out
}
