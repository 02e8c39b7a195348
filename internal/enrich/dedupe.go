// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"sort"
	"strings"

	"github.com/cmdshftateya/ent-research-radar/internal/taxonomy"
	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

// Dedupe drops publications whose lowercase-trimmed title is empty or
// already seen (first occurrence wins), then sorts newest first by the
// published_on string. Absent dates sort last. The comparison is lexical, so
// a year-only "2023" sorts after "2023-01-01"; see types.Publication.
func Dedupe(pubs []types.Publication) []types.Publication {
	seen := make(map[string]bool, len(pubs))
	unique := make([]types.Publication, 0, len(pubs))
	for _, pub := range pubs {
		title := strings.ToLower(strings.TrimSpace(pub.Title))
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		unique = append(unique, pub)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].PublishedOn > unique[j].PublishedOn
	})
	return unique
}

// FilterRelevant keeps publications whose title or abstract mentions a
// taxonomy term. When nothing matches it returns the input unchanged:
// subject identity was already established upstream, so recall wins over
// topical precision here.
func FilterRelevant(tax *taxonomy.Taxonomy, pubs []types.Publication) []types.Publication {
	var filtered []types.Publication
	for _, pub := range pubs {
		text := strings.ToLower(pub.Title) + " " + strings.ToLower(pub.Abstract)
		if tax.ContainsKeyword(text) {
			filtered = append(filtered, pub)
		}
	}
	if len(filtered) == 0 {
		return pubs
	}
	return filtered
}
