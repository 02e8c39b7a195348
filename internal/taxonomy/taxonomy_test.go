// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParses(t *testing.T) {
	tax := Default()
	require.NotEmpty(t, tax.Keywords)
	require.NotEmpty(t, tax.Concepts)
	require.NotEmpty(t, tax.Institutions)

	// Same pointer on repeat calls.
	assert.Same(t, tax, Default())
}

func TestParseRejectsEmptyKeywordTable(t *testing.T) {
	_, err := Parse([]byte("keywords: []\n"))
	require.Error(t, err)
}

func TestCountPhraseWholeWord(t *testing.T) {
	tax := Default()
	idx := -1
	for i, kw := range tax.Keywords {
		if kw.Phrase == "hearing" {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0)

	assert.Equal(t, 2, tax.CountPhrase(idx, "hearing aids improve hearing"))
	// "hearings" must not match on a word boundary.
	assert.Equal(t, 0, tax.CountPhrase(idx, "congressional hearings"))
}

func TestContainsKeyword(t *testing.T) {
	tax := Default()
	assert.True(t, tax.ContainsKeyword("advances in otolaryngology"))
	// "sinusitis" contains the phrase "sinus".
	assert.True(t, tax.ContainsKeyword("sinusitis outcomes"))
	assert.False(t, tax.ContainsKeyword("quantum chromodynamics"))
}

func TestConceptHits(t *testing.T) {
	tax := Default()
	assert.Equal(t, 0, tax.ConceptHits(nil))
	assert.Equal(t, 1, tax.ConceptHits([]string{"Audiology", "Particle physics"}))
	assert.Equal(t, 2, tax.ConceptHits([]string{"Otolaryngology", "Head and neck surgery"}))
}

func TestInstitutionKey(t *testing.T) {
	tax := Default()
	tests := []struct {
		in, want string
	}{
		{"Northwestern University", "northwestern university"},
		{"feinberg", "northwestern university"},
		{"UIC", "university of illinois chicago"},
		{"Rush University Medical Center", "rush medical school"},
		{"Unknown Clinic", "unknown clinic"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tax.InstitutionKey(tt.in))
		})
	}
}

func TestInstitutionID(t *testing.T) {
	tax := Default()
	id, ok := tax.InstitutionID("UChicago Medicine")
	require.True(t, ok)
	assert.Equal(t, "https://openalex.org/I40347166", id)

	_, ok = tax.InstitutionID("Unknown Clinic")
	assert.False(t, ok)
}

func TestInstitutionMatches(t *testing.T) {
	tax := Default()
	assert.True(t, tax.InstitutionMatches("Feinberg School of Medicine", "Northwestern University"))
	assert.True(t, tax.InstitutionMatches("University of Illinois at Chicago", "UIC"))
	assert.False(t, tax.InstitutionMatches("Stanford University", "Northwestern University"))
}
