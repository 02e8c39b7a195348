// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"strings"

	"github.com/cmdshftateya/ent-research-radar/internal/namenorm"
	"github.com/cmdshftateya/ent-research-radar/internal/taxonomy"
)

// ConfidentScore is the additive score at which a candidate is accepted
// without trying further name variants. The weights below are tuned
// heuristics; a last-name + first-initial match with an institution hit
// reaches exactly this threshold.
const ConfidentScore = 5.0

// ScoreCandidate scores how likely a candidate author record is the person
// we are looking for. Sub-scores are independent and additive:
//
//	name similarity   0, 0.5, 2, 3 or 4
//	institution match +2 when any affiliation contains an institution alias
//	concept overlap   +2.5 (>=2 ENT concepts), +1.5 (exactly 1),
//	                  -1 when the profile has concepts but none are ENT
//	productivity      +0.5 for works count > 10, +0.5 for citations > 200
func ScoreCandidate(tax *taxonomy.Taxonomy, c AuthorCandidate, targetName, institution string) float64 {
	score := nameSimilarity(namenorm.Normalize(c.DisplayName), targetName)

	if institution != "" {
		for _, affiliation := range c.Affiliations {
			if tax.InstitutionMatches(affiliation, institution) {
				score += 2
				break
			}
		}
	}

	score += conceptScore(tax, c.Concepts)

	if c.WorksCount > 10 {
		score += 0.5
	}
	if c.CitedByCount > 200 {
		score += 0.5
	}
	return score
}

// nameSimilarity compares a normalized candidate name against the query
// name: exact match 4, same last token with matching first initial 3, same
// last token only 2, same first token only 0.5, otherwise 0.
func nameSimilarity(candidate, target string) float64 {
	candParts := strings.Fields(candidate)
	targetParts := strings.Fields(target)
	if len(candParts) == 0 || len(targetParts) == 0 {
		return 0
	}
	if strings.EqualFold(candidate, namenorm.Normalize(target)) {
		return 4
	}
	if strings.EqualFold(candParts[len(candParts)-1], targetParts[len(targetParts)-1]) {
		if firstInitial(candParts[0]) == firstInitial(targetParts[0]) {
			return 3
		}
		return 2
	}
	if strings.EqualFold(candParts[0], targetParts[0]) {
		return 0.5
	}
	return 0
}

func firstInitial(token string) byte {
	if token == "" {
		return 0
	}
	b := token[0]
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	return b
}

// conceptScore favors authors whose topical concepts include ENT-adjacent
// areas and penalizes profiles whose concepts are clearly elsewhere.
func conceptScore(tax *taxonomy.Taxonomy, concepts []string) float64 {
	if len(concepts) == 0 {
		return 0
	}
	switch hits := tax.ConceptHits(concepts); {
	case hits >= 2:
		return 2.5
	case hits == 1:
		return 1.5
	default:
		return -1
	}
}
