// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tags derives a bounded set of research topic tags from biography
// prose. Taxonomy phrases are counted first; when none appear, a generic
// keyword-frequency fallback keeps the result non-empty for unusual bios.
// Publication titles are not a tag source.
// See docs/ARCHITECTURE § Tag Derivation.
package tags

import (
	"regexp"
	"sort"
	"strings"

	"github.com/cmdshftateya/ent-research-radar/internal/taxonomy"
)

// MaxTags bounds every derived tag set.
const MaxTags = 10

var nonLetterPattern = regexp.MustCompile(`[^a-zA-Z\s]`)

// Derive returns at most MaxTags canonical tags for a biography, ordered by
// descending occurrence count. Ties break by taxonomy declaration order for
// canonical tags, and by first appearance for fallback keywords. An absent
// biography yields no tags.
func Derive(tax *taxonomy.Taxonomy, biography string) []string {
	if strings.TrimSpace(biography) == "" {
		return nil
	}

	lower := strings.ToLower(biography)

	type tagCount struct {
		tag   string
		count int
		order int // first taxonomy index that produced the tag
	}
	counts := make(map[string]*tagCount)
	var ordered []*tagCount
	for i := range tax.Keywords {
		hits := tax.CountPhrase(i, lower)
		if hits == 0 {
			continue
		}
		canonical := tax.Keywords[i].Tag
		tc, ok := counts[canonical]
		if !ok {
			tc = &tagCount{tag: canonical, order: i}
			counts[canonical] = tc
			ordered = append(ordered, tc)
		}
		tc.count += hits
	}

	if len(ordered) > 0 {
		sort.SliceStable(ordered, func(i, j int) bool {
			if ordered[i].count != ordered[j].count {
				return ordered[i].count > ordered[j].count
			}
			return ordered[i].order < ordered[j].order
		})
		out := make([]string, 0, MaxTags)
		for _, tc := range ordered {
			out = append(out, tc.tag)
			if len(out) == MaxTags {
				break
			}
		}
		return out
	}

	return fallbackTerms(tax, biography)
}

// fallbackTerms extracts the most frequent generic terms from text: letters
// only, lowercased, tokens longer than three characters, stop words removed.
// Ties break by first appearance.
func fallbackTerms(tax *taxonomy.Taxonomy, text string) []string {
	cleaned := strings.ToLower(nonLetterPattern.ReplaceAllString(text, " "))

	type termCount struct {
		term  string
		count int
		first int
	}
	counts := make(map[string]*termCount)
	var ordered []*termCount
	for i, word := range strings.Fields(cleaned) {
		if len(word) <= 3 || tax.Stopwords[word] {
			continue
		}
		tc, ok := counts[word]
		if !ok {
			tc = &termCount{term: word, first: i}
			counts[word] = tc
			ordered = append(ordered, tc)
		}
		tc.count++
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].first < ordered[j].first
	})

	out := make([]string, 0, MaxTags)
	for _, tc := range ordered {
		out = append(out, tc.term)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}
