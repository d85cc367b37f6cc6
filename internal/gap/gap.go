// Package gap computes skill-gap reports and phased learning paths from
// owned vs. required skill tokens. All functions are pure and safe for
// concurrent use.
package gap

import (
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/talent-match/internal/domain"
)

// DefaultPrioritySkills marks the in-demand substrings used to front-load a
// learning path. Callers can override the list via NewAnalyzer or a YAML
// file (see LoadPriorityList).
var DefaultPrioritySkills = []string{
	"python", "sql", "java", "javascript", "react", "aws",
	"docker", "kubernetes", "machine learning", "data analysis",
}

// Analyzer computes gap reports with a configurable priority list.
type Analyzer struct {
	priority []string
}

// NewAnalyzer constructs an Analyzer. A nil or empty priority list falls
// back to DefaultPrioritySkills.
func NewAnalyzer(priority []string) *Analyzer {
	if len(priority) == 0 {
		priority = DefaultPrioritySkills
	}
	lowered := make([]string, len(priority))
	for i, p := range priority {
		lowered[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return &Analyzer{priority: lowered}
}

// Compute returns the gap report between owned and required tokens.
// Matching is case-insensitive; owned and missing keep the required
// sequence's relative order. An empty required set yields a zero gap.
func (a *Analyzer) Compute(owned, required []string) domain.GapReport {
	ownedSet := make(map[string]struct{}, len(owned))
	for _, s := range owned {
		ownedSet[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	var (
		have    []string
		missing []string
		seen    = make(map[string]struct{}, len(required))
	)
	for _, req := range required {
		r := strings.ToLower(strings.TrimSpace(req))
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		if _, ok := ownedSet[r]; ok {
			have = append(have, r)
		} else {
			missing = append(missing, r)
		}
	}

	pct := 0.0
	if total := len(have) + len(missing); total > 0 {
		pct = math.Round(float64(len(missing))/float64(total)*1000) / 10
	}

	return domain.GapReport{
		OwnedSkills:    have,
		MissingSkills:  missing,
		PrioritySkills: a.prioritize(missing),
		GapPercentage:  pct,
	}
}

// prioritize partitions skills into priority and normal groups, each keeping
// its original relative order, priority group first.
func (a *Analyzer) prioritize(skills []string) []string {
	var priority, normal []string
	for _, skill := range skills {
		if a.isPriority(skill) {
			priority = append(priority, skill)
		} else {
			normal = append(normal, skill)
		}
	}
	return append(priority, normal...)
}

func (a *Analyzer) isPriority(skill string) bool {
	s := strings.ToLower(skill)
	for _, p := range a.priority {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// priorityFile is the YAML shape of an external priority-skills list.
type priorityFile struct {
	PrioritySkills []string `yaml:"priority_skills"`
}

// LoadPriorityList reads a priority-skills list from a YAML file with a
// top-level priority_skills sequence.
func LoadPriorityList(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf priorityFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, err
	}
	return pf.PrioritySkills, nil
}

// InferLevel guesses the seniority of an occupation from its display name.
func InferLevel(occupationName string) string {
	name := strings.ToLower(occupationName)
	for _, w := range []string{"junior", "entry", "associate"} {
		if strings.Contains(name, w) {
			return "Junior"
		}
	}
	for _, w := range []string{"senior", "lead", "principal", "expert"} {
		if strings.Contains(name, w) {
			return "Senior"
		}
	}
	return "Mid-Level"
}
