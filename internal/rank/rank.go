// Package rank scores candidate items (courses, job postings) against a
// token-weighted query profile. Scoring is pure and stable: equal-score
// candidates keep their input order.
package rank

import (
	"sort"
	"strings"

	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/pkg/textx"
)

// WeightScheme assigns a weight to each keyword category. A zero weight
// disables the category.
type WeightScheme struct {
	// Primary weights occupation-name matches against title+description.
	Primary int
	// TitleScan weights any scan keyword found in the title.
	TitleScan int
	// BodyScan weights any scan keyword found in the description.
	BodyScan int
	// Skills weights skill matches against title+description.
	Skills int
}

// JobFeedScheme is the full four-weight scheme used for job-feed matching.
func JobFeedScheme() WeightScheme {
	return WeightScheme{Primary: 4, TitleScan: 3, BodyScan: 1, Skills: 2}
}

// CourseScheme is the membership-only scheme used for course
// recommendation: each distinct matched skill counts once.
func CourseScheme() WeightScheme {
	return WeightScheme{Skills: 1}
}

// Keywords carries the keyword sets checked per category. Scan keywords are
// tested independently against title and description; Primary and Skills
// against the combined text.
type Keywords struct {
	Primary []string
	Scan    []string
	Skills  []string
}

// Rank scores every candidate and returns the ranked, capped list. Matching
// is substring containment on lowercased, whitespace-normalized text; a
// keyword counts once per category regardless of how often it occurs.
// Zero-score candidates are excluded. limit <= 0 means no cap.
func Rank(candidates []domain.CandidateItem, kw Keywords, scheme WeightScheme, limit int) []domain.RankedResult {
	results := make([]domain.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		title := strings.ToLower(textx.NormalizeText(c.Title))
		body := strings.ToLower(textx.NormalizeText(c.Description))
		combined := title + " " + body

		primaryHits := matchKeywords(combined, kw.Primary)
		titleHits := matchKeywords(title, kw.Scan)
		bodyHits := matchKeywords(body, kw.Scan)
		skillHits := matchKeywords(combined, kw.Skills)

		score := len(primaryHits)*scheme.Primary +
			len(titleHits)*scheme.TitleScan +
			len(bodyHits)*scheme.BodyScan +
			len(skillHits)*scheme.Skills
		if score <= 0 {
			continue
		}

		results = append(results, domain.RankedResult{
			Item:          c,
			MatchedTokens: union(skillHits, primaryHits),
			Score:         score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// matchKeywords returns the distinct keywords contained in text, in the
// keywords' original order. Containment is plain substring on lowercased
// input.
func matchKeywords(text string, keywords []string) []string {
	if text == "" || len(keywords) == 0 {
		return nil
	}
	var found []string
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		lk := strings.ToLower(strings.TrimSpace(k))
		if lk == "" {
			continue
		}
		if _, dup := seen[lk]; dup {
			continue
		}
		if strings.Contains(text, lk) {
			seen[lk] = struct{}{}
			found = append(found, lk)
		}
	}
	return found
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, set := range [][]string{a, b} {
		for _, s := range set {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
