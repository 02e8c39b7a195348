// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich resolves a person against external bibliographic sources and
// returns their recent publications. OpenAlex is the primary source (author
// disambiguation plus works fetch) with Semantic Scholar as the fallback.
// There is no authoritative join key between a roster name and an author
// record, so resolution is best-effort: scoring heuristics, ordered name
// variants, and a chain of fallbacks that degrades to fewer or zero results
// rather than failing.
// See docs/ARCHITECTURE § Enrichment.
package enrich

import (
	"context"

	"github.com/cmdshftateya/ent-research-radar/internal/namenorm"
	"github.com/cmdshftateya/ent-research-radar/internal/taxonomy"
	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

// AuthorCandidate is one possible identity match returned by the primary
// source's author search. Transient: consumed immediately by the scorer.
type AuthorCandidate struct {
	ID          string
	DisplayName string

	// Affiliations are known affiliation display names, most recent first.
	Affiliations []string

	// Concepts are topical concept labels attached to the author profile.
	Concepts []string

	WorksCount   int
	CitedByCount int
}

// Primary is the author-disambiguating source (OpenAlex).
type Primary interface {
	// SearchAuthors returns candidate author records for a name query,
	// optionally restricted to an institution.
	SearchAuthors(ctx context.Context, name, institution string) ([]AuthorCandidate, error)

	// FetchWorks returns mapped publications for a resolved author id.
	FetchWorks(ctx context.Context, authorID, institution, subject string, limit int) ([]types.Publication, error)

	// SearchWorks returns mapped publications from a free-text works search,
	// used when author resolution fails.
	SearchWorks(ctx context.Context, name, institution, subject string, limit int) ([]types.Publication, error)
}

// Fallback is the secondary source consulted when the primary yields nothing
// (Semantic Scholar).
type Fallback interface {
	// LookupAuthor returns the source's single best author id for a name and
	// institution, or "" when there is no match.
	LookupAuthor(ctx context.Context, name, institution string) (string, error)

	// FetchPapers returns mapped publications for an author id.
	FetchPapers(ctx context.Context, authorID, subject string, limit int) ([]types.Publication, error)
}

// Status classifies one source interaction. Transport failures are always
// suppressed to an empty publication list for the caller, but tests (and
// logs) can still tell "the provider returned zero" from "the provider
// errored".
type Status int

const (
	// StatusOK means the source returned at least one usable publication.
	StatusOK Status = iota
	// StatusEmpty means the source responded but had nothing for us.
	StatusEmpty
	// StatusErrored means the request failed and was suppressed to empty.
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// outcome is the typed result of one source interaction.
type outcome struct {
	status Status
	pubs   []types.Publication
}

func classify(pubs []types.Publication, err error) outcome {
	switch {
	case err != nil:
		return outcome{status: StatusErrored}
	case len(pubs) == 0:
		return outcome{status: StatusEmpty}
	default:
		return outcome{status: StatusOK, pubs: pubs}
	}
}

// state names one step of the enrichment state machine.
type state int

const (
	stateNormalize state = iota
	stateResolvePrimary
	stateFetchPrimaryWorks
	stateSearchPrimaryByText
	stateResolveFallback
	stateFetchFallbackWorks
	stateDone
)

func (s state) String() string {
	switch s {
	case stateNormalize:
		return "normalize"
	case stateResolvePrimary:
		return "resolve_primary"
	case stateFetchPrimaryWorks:
		return "fetch_primary_works"
	case stateSearchPrimaryByText:
		return "search_primary_by_text"
	case stateResolveFallback:
		return "resolve_fallback"
	case stateFetchFallbackWorks:
		return "fetch_fallback_works"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Trace records which states ran and how each source interaction went. It
// exists for tests and debug logging; callers of FetchPublications only see
// the publication list.
type Trace struct {
	States   []string
	Outcomes map[string]Status
}

func (tr *Trace) visit(s state) {
	if tr == nil {
		return
	}
	tr.States = append(tr.States, s.String())
}

func (tr *Trace) record(s state, st Status) {
	if tr == nil {
		return
	}
	if tr.Outcomes == nil {
		tr.Outcomes = make(map[string]Status)
	}
	tr.Outcomes[s.String()] = st
}

// Enricher sequences author resolution and publication fetching across the
// primary and fallback sources. It holds no mutable state, so a single
// Enricher may serve concurrent callers.
type Enricher struct {
	Primary  Primary
	Fallback Fallback
	Tax      *taxonomy.Taxonomy

	// Offline short-circuits every network stage.
	Offline bool
}

// FetchPublications returns up to limit deduplicated publications for a
// person, newest first. It never returns an error: every failure mode
// degrades to fewer or zero results.
func (e *Enricher) FetchPublications(ctx context.Context, person types.PersonQuery, limit int) []types.Publication {
	pubs, _ := e.fetch(ctx, person, limit, nil)
	return pubs
}

// FetchPublicationsTraced is FetchPublications with a state/outcome trace.
func (e *Enricher) FetchPublicationsTraced(ctx context.Context, person types.PersonQuery, limit int) ([]types.Publication, *Trace) {
	tr := &Trace{}
	pubs, _ := e.fetch(ctx, person, limit, tr)
	return pubs, tr
}

func (e *Enricher) fetch(ctx context.Context, person types.PersonQuery, limit int, tr *Trace) ([]types.Publication, *Trace) {
	if e.Offline || limit <= 0 {
		return nil, tr
	}

	var (
		variants []string
		authorID string
		result   []types.Publication
	)

	for s := stateNormalize; s != stateDone; {
		tr.visit(s)
		switch s {
		case stateNormalize:
			variants = namenorm.Variants(namenorm.Normalize(person.RawName))
			if len(variants) == 0 {
				s = stateDone
				continue
			}
			s = stateResolvePrimary

		case stateResolvePrimary:
			authorID = e.resolvePrimary(ctx, variants, person.Institution)
			if authorID == "" {
				s = stateSearchPrimaryByText
				continue
			}
			s = stateFetchPrimaryWorks

		case stateFetchPrimaryWorks:
			out := classify(e.Primary.FetchWorks(ctx, authorID, person.Institution, person.RawName, limit))
			tr.record(s, out.status)
			result = Dedupe(FilterRelevant(e.Tax, out.pubs))
			if len(result) > 0 {
				s = stateDone
				continue
			}
			s = stateSearchPrimaryByText

		case stateSearchPrimaryByText:
			out := e.searchPrimaryByText(ctx, variants, person, limit)
			tr.record(s, out.status)
			result = out.pubs
			if len(result) > 0 {
				s = stateDone
				continue
			}
			s = stateResolveFallback

		case stateResolveFallback:
			id, err := e.Fallback.LookupAuthor(ctx, variants[0], person.Institution)
			if err != nil || id == "" {
				status := StatusEmpty
				if err != nil {
					status = StatusErrored
				}
				tr.record(s, status)
				s = stateDone
				continue
			}
			authorID = id
			s = stateFetchFallbackWorks

		case stateFetchFallbackWorks:
			out := classify(e.Fallback.FetchPapers(ctx, authorID, person.RawName, limit))
			tr.record(s, out.status)
			// No topic filter on the fallback source.
			result = Dedupe(out.pubs)
			s = stateDone
		}
	}

	if len(result) > limit {
		result = result[:limit]
	}
	return result, tr
}

// resolvePrimary tries each name variant in order and keeps the best-scoring
// candidate seen so far, stopping early once a candidate reaches the
// confident-match threshold. Search failures on a variant count as zero
// candidates. Returns "" when no candidate scored above zero.
func (e *Enricher) resolvePrimary(ctx context.Context, variants []string, institution string) string {
	var (
		bestID    string
		bestScore float64
	)
	for _, name := range variants {
		candidates, err := e.Primary.SearchAuthors(ctx, name, institution)
		if err != nil {
			continue
		}
		for _, c := range candidates {
			score := ScoreCandidate(e.Tax, c, name, institution)
			if score > bestScore {
				bestScore = score
				bestID = c.ID
			}
		}
		if bestScore >= ConfidentScore {
			break
		}
	}
	return bestID
}

// searchPrimaryByText retries the primary source without identity
// resolution, trying each variant in order and returning the first variant
// whose filtered results are non-empty.
func (e *Enricher) searchPrimaryByText(ctx context.Context, variants []string, person types.PersonQuery, limit int) outcome {
	errored := false
	for _, name := range variants {
		pubs, err := e.Primary.SearchWorks(ctx, name, person.Institution, person.RawName, limit)
		if err != nil {
			errored = true
			continue
		}
		filtered := Dedupe(FilterRelevant(e.Tax, pubs))
		if len(filtered) > 0 {
			return outcome{status: StatusOK, pubs: filtered}
		}
	}
	if errored {
		return outcome{status: StatusErrored}
	}
	return outcome{status: StatusEmpty}
}
