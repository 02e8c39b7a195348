// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package taxonomy holds the fixed domain vocabulary: the ENT keyword table,
// the concept terms used for author disambiguation, the tag-fallback stop
// words, and the institution alias tables. The tables are embedded in the
// binary, parsed once, and read-only afterwards, so they may be shared across
// goroutines without locking.
// See docs/ARCHITECTURE § Taxonomy.
package taxonomy

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed taxonomy.yaml
var taxonomyYAML []byte

// Keyword maps one surface phrase to its canonical tag. Declaration order in
// the table is significant: tag-count ties break in favor of earlier entries.
type Keyword struct {
	Phrase string `yaml:"phrase"`
	Tag    string `yaml:"tag"`

	// pattern matches non-overlapping whole-word occurrences of Phrase.
	pattern *regexp.Regexp
}

// Institution is one alias table entry: every surface form in Aliases maps to
// the canonical Key, and OpenAlexID is the source-side institution filter id.
type Institution struct {
	Key        string   `yaml:"key"`
	OpenAlexID string   `yaml:"openalex_id"`
	Aliases    []string `yaml:"aliases"`
}

// Taxonomy is the immutable process-wide vocabulary.
type Taxonomy struct {
	Keywords     []Keyword
	Concepts     []string
	Stopwords    map[string]bool
	Institutions []Institution
}

type taxonomyFile struct {
	Keywords     []Keyword     `yaml:"keywords"`
	Concepts     []string      `yaml:"concepts"`
	Stopwords    []string      `yaml:"stopwords"`
	Institutions []Institution `yaml:"institutions"`
}

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
)

// Default returns the embedded taxonomy, parsed on first use. The embedded
// table is part of the build; a parse failure is a programming error.
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		t, err := Parse(taxonomyYAML)
		if err != nil {
			panic(fmt.Sprintf("taxonomy: embedded table invalid: %v", err))
		}
		defaultTax = t
	})
	return defaultTax
}

// Parse builds a Taxonomy from YAML table data.
func Parse(data []byte) (*Taxonomy, error) {
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing taxonomy: %w", err)
	}
	if len(f.Keywords) == 0 {
		return nil, fmt.Errorf("taxonomy has no keywords")
	}

	t := &Taxonomy{
		Keywords:     f.Keywords,
		Concepts:     f.Concepts,
		Stopwords:    make(map[string]bool, len(f.Stopwords)),
		Institutions: f.Institutions,
	}
	for i := range t.Keywords {
		kw := &t.Keywords[i]
		kw.Phrase = strings.ToLower(kw.Phrase)
		kw.pattern = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw.Phrase) + `\b`)
	}
	for _, w := range f.Stopwords {
		t.Stopwords[strings.ToLower(w)] = true
	}
	return t, nil
}

// CountPhrase returns the number of non-overlapping whole-word occurrences of
// keyword i's phrase in lowercased text.
func (t *Taxonomy) CountPhrase(i int, text string) int {
	return len(t.Keywords[i].pattern.FindAllStringIndex(text, -1))
}

// ContainsKeyword reports whether any taxonomy phrase occurs as a substring
// of lowercased text. Relevance filtering matches substrings, not whole
// words, so "otology" also matches "neurotology".
func (t *Taxonomy) ContainsKeyword(text string) bool {
	for i := range t.Keywords {
		if strings.Contains(text, t.Keywords[i].Phrase) {
			return true
		}
	}
	return false
}

// ConceptHits counts how many of the given concept labels contain an
// ENT-adjacent term.
func (t *Taxonomy) ConceptHits(labels []string) int {
	hits := 0
	for _, label := range labels {
		lower := strings.ToLower(label)
		for _, term := range t.Concepts {
			if strings.Contains(lower, term) {
				hits++
				break
			}
		}
	}
	return hits
}

// InstitutionKey resolves a surface institution name to its canonical key.
// Unknown institutions resolve to their own lowercased form.
func (t *Taxonomy) InstitutionKey(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, inst := range t.Institutions {
		if normalized == inst.Key {
			return inst.Key
		}
		for _, alias := range inst.Aliases {
			if normalized == alias {
				return inst.Key
			}
		}
	}
	return normalized
}

// InstitutionAliases returns the alias surface forms for an institution,
// falling back to the canonical key itself when the institution is unknown.
func (t *Taxonomy) InstitutionAliases(name string) []string {
	key := t.InstitutionKey(name)
	for _, inst := range t.Institutions {
		if inst.Key == key {
			return inst.Aliases
		}
	}
	return []string{key}
}

// InstitutionID returns the OpenAlex institution id for a known institution.
func (t *Taxonomy) InstitutionID(name string) (string, bool) {
	key := t.InstitutionKey(name)
	for _, inst := range t.Institutions {
		if inst.Key == key && inst.OpenAlexID != "" {
			return inst.OpenAlexID, true
		}
	}
	return "", false
}

// InstitutionMatches reports whether a candidate affiliation string contains
// any alias of the given institution, case-insensitively.
func (t *Taxonomy) InstitutionMatches(affiliation, institution string) bool {
	lower := strings.ToLower(affiliation)
	for _, alias := range t.InstitutionAliases(institution) {
		if strings.Contains(lower, alias) {
			return true
		}
	}
	return false
}
