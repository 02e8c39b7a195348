// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package namenorm cleans scraped faculty display names and generates the
// query variants used for author searches. Roster pages decorate names with
// credentials ("Jane Doe, MD, PhD"), specialties ("(Otolaryngology)"), and
// department qualifiers; stripping those improves bibliographic matching.
// See docs/ARCHITECTURE § Name Normalization.
package namenorm

import (
	"regexp"
	"strings"
)

// specialtyPattern truncates a name at the first department or field
// qualifier; everything after it is discarded.
var specialtyPattern = regexp.MustCompile(`(?i)\b(otolaryngology|ent|pediatric|pediatrics)\b`)

// credentialTokens are degree and certification abbreviations stripped when
// they appear as comma-separated or trailing tokens.
var credentialTokens = []string{
	"md", "do", "phd", "mph", "ms", "msn", "mscr", "mspa", "msp", "aud",
	"np", "aprn", "pa-c", "pa", "rn", "bsn", "fnp", "anp", "cnp", "acnp",
	"agnp", "facs", "ccc-slp", "faap", "cnm", "dnp", "mba",
}

var (
	parenPattern      = regexp.MustCompile(`\([^)]*\)`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	credentialPattern = regexp.MustCompile(`(?i),?\s*\b(` + strings.Join(credentialTokens, "|") + `)\b\.?`)
)

// Normalize strips credentials, specialties, and extra whitespace from a raw
// display name. It is idempotent: normalizing an already-clean name returns
// it unchanged.
func Normalize(raw string) string {
	cleaned := strings.ReplaceAll(raw, "\n", " ")
	cleaned = strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))
	cleaned = parenPattern.ReplaceAllString(cleaned, "")
	if loc := specialtyPattern.FindStringIndex(cleaned); loc != nil {
		cleaned = cleaned[:loc[0]]
	}
	cleaned = credentialPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, ",", " ")
	cleaned = strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))
	return cleaned
}

// Variants returns the ordered, deduplicated query renderings of a cleaned
// name, most specific first: the cleaned name itself, then "first last"
// (first and last token only), then "last, first". Single-token names yield
// only themselves; a blank input yields no variants.
func Variants(cleaned string) []string {
	if cleaned == "" {
		return nil
	}
	variants := []string{cleaned}
	parts := strings.Fields(cleaned)
	if len(parts) >= 2 {
		variants = append(variants,
			parts[0]+" "+parts[len(parts)-1],
			parts[len(parts)-1]+", "+parts[0],
		)
	}

	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Equal reports whether two display names refer to the same rendering after
// normalization, case-insensitively.
func Equal(a, b string) bool {
	return strings.EqualFold(Normalize(a), Normalize(b))
}
