// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"testing"

	"github.com/cmdshftateya/ent-research-radar/internal/taxonomy"
	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

// --- mock sources ---

type mockPrimary struct {
	authors       []AuthorCandidate
	authorsErr    error
	works         []types.Publication
	worksErr      error
	searchResults []types.Publication
	searchErr     error

	authorQueries []string
	worksCalls    int
	searchCalls   int
}

func (m *mockPrimary) SearchAuthors(_ context.Context, name, _ string) ([]AuthorCandidate, error) {
	m.authorQueries = append(m.authorQueries, name)
	return m.authors, m.authorsErr
}

func (m *mockPrimary) FetchWorks(_ context.Context, _, _, _ string, _ int) ([]types.Publication, error) {
	m.worksCalls++
	return m.works, m.worksErr
}

func (m *mockPrimary) SearchWorks(_ context.Context, _, _, _ string, _ int) ([]types.Publication, error) {
	m.searchCalls++
	return m.searchResults, m.searchErr
}

type mockFallback struct {
	authorID  string
	lookupErr error
	papers    []types.Publication
	papersErr error

	lookupCalls int
}

func (m *mockFallback) LookupAuthor(_ context.Context, _, _ string) (string, error) {
	m.lookupCalls++
	return m.authorID, m.lookupErr
}

func (m *mockFallback) FetchPapers(_ context.Context, _, _ string, _ int) ([]types.Publication, error) {
	return m.papers, m.papersErr
}

func newEnricher(p Primary, f Fallback) *Enricher {
	return &Enricher{Primary: p, Fallback: f, Tax: taxonomy.Default()}
}

func entPub(title, date string) types.Publication {
	return types.Publication{Title: title, PublishedOn: date, Abstract: "a study of tinnitus outcomes"}
}

var person = types.PersonQuery{RawName: "Jane A. Doe, MD", Institution: "Northwestern University"}

// strongCandidate clears the confident-match threshold on its own.
var strongCandidate = AuthorCandidate{
	ID:           "https://openalex.org/A1",
	DisplayName:  "Jane A. Doe",
	Affiliations: []string{"Northwestern University"},
	Concepts:     []string{"Otolaryngology", "Audiology"},
	WorksCount:   50,
	CitedByCount: 900,
}

// --- orchestrator ---

func TestFetchPublicationsPrimaryHappyPath(t *testing.T) {
	primary := &mockPrimary{
		authors: []AuthorCandidate{strongCandidate},
		works:   []types.Publication{entPub("Advances in Otolaryngology", "2023-11-01"), entPub("Hearing Loss Interventions", "2022-06-15")},
	}
	fallback := &mockFallback{}
	e := newEnricher(primary, fallback)

	pubs := e.FetchPublications(context.Background(), person, 20)
	if len(pubs) != 2 {
		t.Fatalf("len(pubs) = %d, want 2", len(pubs))
	}
	if pubs[0].Title != "Advances in Otolaryngology" {
		t.Errorf("pubs[0].Title = %q, want newest first", pubs[0].Title)
	}
	if primary.searchCalls != 0 {
		t.Errorf("text search ran %d times, want 0 on the happy path", primary.searchCalls)
	}
	if fallback.lookupCalls != 0 {
		t.Errorf("fallback consulted %d times, want 0", fallback.lookupCalls)
	}
}

func TestFetchPublicationsEarlyStopSkipsRemainingVariants(t *testing.T) {
	primary := &mockPrimary{
		authors: []AuthorCandidate{strongCandidate},
		works:   []types.Publication{entPub("Advances in Otolaryngology", "2023")},
	}
	e := newEnricher(primary, &mockFallback{})

	e.FetchPublications(context.Background(), person, 20)
	// "Jane A. Doe" yields three variants; a confident hit on the first
	// prevents querying the remaining two.
	if len(primary.authorQueries) != 1 {
		t.Errorf("author search queried %d variants, want 1 (early stop)", len(primary.authorQueries))
	}
}

func TestFetchPublicationsWeakCandidatesTryAllVariants(t *testing.T) {
	weak := AuthorCandidate{ID: "A2", DisplayName: "Jane Doe"} // name only, score 4 < 5
	primary := &mockPrimary{
		authors: []AuthorCandidate{weak},
		works:   []types.Publication{entPub("Advances in Otolaryngology", "2023")},
	}
	e := newEnricher(primary, &mockFallback{})

	pubs := e.FetchPublications(context.Background(), person, 20)
	if len(primary.authorQueries) != 3 {
		t.Errorf("author search queried %d variants, want all 3", len(primary.authorQueries))
	}
	// A sub-threshold best candidate is still accepted.
	if len(pubs) != 1 {
		t.Errorf("len(pubs) = %d, want 1", len(pubs))
	}
}

func TestFetchPublicationsFallsBackToTextSearch(t *testing.T) {
	primary := &mockPrimary{
		// No candidates resolve.
		authors:       nil,
		searchResults: []types.Publication{entPub("Cochlear Implant Outcomes", "2021-02-01")},
	}
	e := newEnricher(primary, &mockFallback{})

	pubs := e.FetchPublications(context.Background(), person, 20)
	if len(pubs) != 1 || pubs[0].Title != "Cochlear Implant Outcomes" {
		t.Fatalf("pubs = %v, want the text-search result", pubs)
	}
}

func TestFetchPublicationsFallsBackToSecondarySource(t *testing.T) {
	primary := &mockPrimary{} // resolves nothing, finds nothing
	fallback := &mockFallback{
		authorID: "S2-99",
		papers:   []types.Publication{entPub("Balance Disorders", "2020")},
	}
	e := newEnricher(primary, fallback)

	pubs := e.FetchPublications(context.Background(), person, 20)
	if len(pubs) != 1 || pubs[0].Title != "Balance Disorders" {
		t.Fatalf("pubs = %v, want the fallback result", pubs)
	}
	if fallback.lookupCalls != 1 {
		t.Errorf("fallback lookups = %d, want 1 (first variant only)", fallback.lookupCalls)
	}
}

func TestFetchPublicationsAllSourcesFailYieldsEmpty(t *testing.T) {
	primary := &mockPrimary{
		authorsErr: fmt.Errorf("network down"),
		searchErr:  fmt.Errorf("network down"),
	}
	fallback := &mockFallback{lookupErr: fmt.Errorf("network down")}
	e := newEnricher(primary, fallback)

	pubs := e.FetchPublications(context.Background(), person, 20)
	if len(pubs) != 0 {
		t.Errorf("pubs = %v, want empty on total failure", pubs)
	}
}

func TestFetchPublicationsBlankNameTerminates(t *testing.T) {
	primary := &mockPrimary{}
	e := newEnricher(primary, &mockFallback{})

	pubs := e.FetchPublications(context.Background(), types.PersonQuery{RawName: "MD, PhD"}, 20)
	if len(pubs) != 0 {
		t.Errorf("pubs = %v, want empty for a name that normalizes away", pubs)
	}
	if len(primary.authorQueries) != 0 {
		t.Error("no source should be queried when no variants exist")
	}
}

func TestFetchPublicationsOffline(t *testing.T) {
	primary := &mockPrimary{authors: []AuthorCandidate{strongCandidate}}
	e := newEnricher(primary, &mockFallback{})
	e.Offline = true

	if pubs := e.FetchPublications(context.Background(), person, 20); pubs != nil {
		t.Errorf("pubs = %v, want nil offline", pubs)
	}
	if len(primary.authorQueries) != 0 {
		t.Error("offline mode must not touch the network")
	}
}

func TestFetchPublicationsTruncatesToLimit(t *testing.T) {
	var works []types.Publication
	for i := 0; i < 30; i++ {
		works = append(works, entPub(fmt.Sprintf("Tinnitus Study %d", i), fmt.Sprintf("20%02d", i)))
	}
	primary := &mockPrimary{authors: []AuthorCandidate{strongCandidate}, works: works}
	e := newEnricher(primary, &mockFallback{})

	pubs := e.FetchPublications(context.Background(), person, 5)
	if len(pubs) != 5 {
		t.Errorf("len(pubs) = %d, want 5", len(pubs))
	}
}

func TestTraceDistinguishesEmptyFromErrored(t *testing.T) {
	ctx := context.Background()

	// Provider responded with zero works.
	e := newEnricher(&mockPrimary{authors: []AuthorCandidate{strongCandidate}}, &mockFallback{})
	_, tr := e.FetchPublicationsTraced(ctx, person, 20)
	if got := tr.Outcomes["fetch_primary_works"]; got != StatusEmpty {
		t.Errorf("fetch_primary_works outcome = %v, want %v", got, StatusEmpty)
	}

	// Provider errored; caller-visible result is identical but the trace differs.
	e = newEnricher(&mockPrimary{authors: []AuthorCandidate{strongCandidate}, worksErr: fmt.Errorf("boom")}, &mockFallback{})
	_, tr = e.FetchPublicationsTraced(ctx, person, 20)
	if got := tr.Outcomes["fetch_primary_works"]; got != StatusErrored {
		t.Errorf("fetch_primary_works outcome = %v, want %v", got, StatusErrored)
	}
}

func TestTraceStateSequencePrimaryHappyPath(t *testing.T) {
	primary := &mockPrimary{
		authors: []AuthorCandidate{strongCandidate},
		works:   []types.Publication{entPub("Advances in Otolaryngology", "2023")},
	}
	e := newEnricher(primary, &mockFallback{})

	_, tr := e.FetchPublicationsTraced(context.Background(), person, 20)
	want := []string{"normalize", "resolve_primary", "fetch_primary_works"}
	if len(tr.States) != len(want) {
		t.Fatalf("states = %v, want %v", tr.States, want)
	}
	for i := range want {
		if tr.States[i] != want[i] {
			t.Errorf("states[%d] = %q, want %q", i, tr.States[i], want[i])
		}
	}
}
