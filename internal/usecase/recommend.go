package usecase

import (
	"fmt"
	"strings"

	"log/slog"

	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/internal/rank"
)

// titleVariations expands common occupation names into the phrasings job
// boards actually use, so title scans do not miss near-synonyms.
var titleVariations = map[string][]string{
	"data scientist":    {"data science", "machine learning engineer", "ml engineer"},
	"data analyst":      {"data analytics", "business intelligence", "bi analyst"},
	"software engineer": {"software developer", "backend engineer", "full stack developer"},
	"web developer":     {"frontend developer", "front end developer", "web programmer"},
	"devops engineer":   {"site reliability engineer", "platform engineer", "cloud engineer"},
	"product manager":   {"product owner", "program manager"},
	"ui/ux designer":    {"ux designer", "ui designer", "product designer"},
	"network engineer":  {"network administrator", "network specialist"},
}

// RecommendService ranks courses and live job postings against a skill
// profile and its matched occupations.
type RecommendService struct {
	Catalog     domain.CourseCatalog
	Feeds       domain.FeedFetcher
	CourseLimit int
	JobLimit    int
}

// NewRecommendService wires a RecommendService.
func NewRecommendService(catalog domain.CourseCatalog, feeds domain.FeedFetcher, courseLimit, jobLimit int) RecommendService {
	return RecommendService{Catalog: catalog, Feeds: feeds, CourseLimit: courseLimit, JobLimit: jobLimit}
}

// RecommendCourses ranks catalog courses by how many of the given skills
// each one covers. Courses matching nothing are excluded, so an empty
// skill set yields an empty ranking rather than an error.
func (s RecommendService) RecommendCourses(ctx domain.Context, skills []string) ([]domain.RankedResult, error) {
	items, err := s.Catalog.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("op=recommend.courses: %w", err)
	}
	return rank.Rank(items, rank.Keywords{Skills: skills}, rank.CourseScheme(), s.CourseLimit), nil
}

// MatchJobs pulls the configured feeds and ranks postings against the
// profile. Source statuses are always returned; the error is
// ErrServiceUnavailable when every source failed and ErrPartialSourceFailure
// when only some did, in which case results are still valid.
func (s RecommendService) MatchJobs(ctx domain.Context, skills, occupationNames, unitPhrases []string) ([]domain.RankedResult, []domain.SourceStatus, error) {
	if len(skills) == 0 && len(occupationNames) == 0 {
		return nil, nil, fmt.Errorf("op=recommend.jobs: %w: no skills or occupations", domain.ErrInvalidArgument)
	}

	items, statuses := s.Feeds.FetchAll(ctx)

	failed := 0
	for _, st := range statuses {
		if st.Status == domain.SourceStatusError {
			failed++
		}
	}
	if len(statuses) > 0 && failed == len(statuses) {
		return nil, statuses, fmt.Errorf("op=recommend.jobs: all %d sources failed: %w", failed, domain.ErrServiceUnavailable)
	}

	kw := rank.Keywords{
		Primary: occupationNames,
		Scan:    JobSearchKeywords(skills, occupationNames, unitPhrases),
		Skills:  skills,
	}
	results := rank.Rank(items, kw, rank.JobFeedScheme(), s.JobLimit)
	slog.Debug("job matching complete",
		slog.Int("candidates", len(items)),
		slog.Int("ranked", len(results)),
		slog.Int("failed_sources", failed))

	if failed > 0 {
		return results, statuses, fmt.Errorf("op=recommend.jobs: %d of %d sources failed: %w", failed, len(statuses), domain.ErrPartialSourceFailure)
	}
	return results, statuses, nil
}

// JobSearchKeywords builds the scan-keyword set for job matching: the
// occupation names, their known title variations, any competency-unit
// phrases, and the leading skills. Order is deterministic and duplicates
// are dropped.
func JobSearchKeywords(skills, occupationNames, unitPhrases []string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, name := range occupationNames {
		add(name)
		for _, v := range titleVariations[strings.ToLower(strings.TrimSpace(name))] {
			add(v)
		}
	}
	for _, p := range unitPhrases {
		add(p)
	}
	// Leading skills only: long tails add noise, not recall.
	const maxSkillKeywords = 5
	for i, sk := range skills {
		if i == maxSkillKeywords {
			break
		}
		add(sk)
	}
	return out
}
