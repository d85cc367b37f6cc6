// Package textx provides text normalization and skill-token extraction
// utilities used across the project.
package textx

import (
	"strings"
)

// NormalizeText strips control characters (0x00-0x1F, 0x7F-0x9F), replaces
// non-breaking spaces with ordinary spaces, collapses whitespace runs to a
// single space, and trims the ends. Empty input yields the empty string.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\u00a0': // non-breaking space
			b.WriteRune(' ')
		case r < 0x20, r >= 0x7f && r <= 0x9f:
			// Tabs and newlines become plain spaces so the whitespace
			// collapse below can fold them.
			if r == '\t' || r == '\n' || r == '\r' {
				b.WriteRune(' ')
			}
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// minTokenLen is the shortest token worth keeping; one-character fragments
// are noise from sloppy delimiter usage.
const minTokenLen = 2

// ExtractTokens lowercases the normalized text, splits on any run of the
// delimiter characters , ; / \ | and returns the trimmed parts with
// first-seen order preserved; duplicates and parts shorter than two
// characters are dropped.
func ExtractTokens(text string) []string {
	text = strings.ToLower(NormalizeText(text))
	if text == "" {
		return nil
	}
	parts := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ',', ';', '/', '\\', '|':
			return true
		}
		return false
	})
	return dedupe(parts)
}

// ParseKeywordList parses a structured "required skills" field without
// splitting inside parenthesized sub-phrases: "cloud (aws, gcp), security"
// yields ["cloud (aws, gcp)", "security"]. Separators , ; | and newline act
// only at parenthesis depth zero; a newline inside parentheses becomes a
// space. Output is lowercase, deduplicated, first-seen order.
func ParseKeywordList(raw string) []string {
	if raw == "" {
		return nil
	}
	var (
		parts   []string
		current strings.Builder
		depth   int
	)
	flush := func() {
		if w := strings.TrimSpace(current.String()); w != "" {
			parts = append(parts, strings.ToLower(w))
		}
		current.Reset()
	}
	for _, r := range raw {
		switch {
		case r == '(':
			depth++
			current.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			current.WriteRune(r)
		case (r == ',' || r == ';' || r == '|' || r == '\n') && depth == 0:
			flush()
		case r == '\n':
			current.WriteRune(' ')
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return dedupe(parts)
}

// dedupe trims each part, drops too-short ones, and removes duplicates while
// preserving first-seen order.
func dedupe(parts []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) < minTokenLen {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
