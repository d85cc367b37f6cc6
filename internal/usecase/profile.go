package usecase

import (
	"regexp"
	"strings"

	"github.com/fairyhunter13/talent-match/internal/domain"
	"github.com/fairyhunter13/talent-match/pkg/textx"
)

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	linkedinRe = regexp.MustCompile(`(?i)linkedin\.com/in/[A-Za-z0-9\-_%]+`)
)

// ParseProfile heuristically extracts contact fields from free-form profile
// text. Missing fields stay empty; the function never fails.
func ParseProfile(text string) domain.ProfileInfo {
	info := domain.ProfileInfo{}
	info.Email = emailRe.FindString(text)
	info.LinkedIn = strings.ToLower(linkedinRe.FindString(text))

	// Name heuristic: the first short line without digits or an address.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		words := strings.Fields(line)
		if len(words) > 4 {
			break
		}
		if strings.ContainsAny(line, "@0123456789") {
			continue
		}
		info.Name = line
		break
	}
	return info
}

// ExtractSkills tokenizes free-form profile text into candidate skill
// tokens.
func ExtractSkills(text string) []string {
	return textx.ExtractTokens(text)
}
