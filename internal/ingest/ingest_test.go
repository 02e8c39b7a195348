// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdshftateya/ent-research-radar/internal/bio"
	"github.com/cmdshftateya/ent-research-radar/internal/enrich"
	"github.com/cmdshftateya/ent-research-radar/internal/roster"
	"github.com/cmdshftateya/ent-research-radar/internal/store"
	"github.com/cmdshftateya/ent-research-radar/internal/taxonomy"
	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

// stubPrimary resolves every name to one confident candidate and returns a
// fixed publication list.
type stubPrimary struct {
	pubs []types.Publication
}

func (s *stubPrimary) SearchAuthors(ctx context.Context, name, institution string) ([]enrich.AuthorCandidate, error) {
	return []enrich.AuthorCandidate{{
		ID:           "A1",
		DisplayName:  name,
		Affiliations: []string{institution},
		WorksCount:   20,
		CitedByCount: 300,
	}}, nil
}

func (s *stubPrimary) FetchWorks(ctx context.Context, authorID, institution, subject string, limit int) ([]types.Publication, error) {
	return s.pubs, nil
}

func (s *stubPrimary) SearchWorks(ctx context.Context, name, institution, subject string, limit int) ([]types.Publication, error) {
	return nil, nil
}

type stubFallback struct{}

func (s *stubFallback) LookupAuthor(ctx context.Context, name, institution string) (string, error) {
	return "", nil
}

func (s *stubFallback) FetchPapers(ctx context.Context, authorID, subject string, limit int) ([]types.Publication, error) {
	return nil, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "ingest.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRefreshOfflineSeeds(t *testing.T) {
	st := newTestStore(t)
	p := &Pipeline{Store: st, Log: zerolog.Nop(), Offline: true}
	require.NoError(t, p.Refresh(context.Background(), nil))

	summaries, err := st.ListProfessors(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Dr. Jane Doe", summaries[0].Name)
	assert.Equal(t, "Sample University", summaries[0].Institution)
	assert.Contains(t, summaries[0].Tags, "otology")

	detail, ok, err := st.GetProfessor(context.Background(), summaries[0].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, detail.Publications, 2)
	assert.Len(t, detail.Collaborators, 2)
	assert.True(t, detail.HasLab)
	assert.False(t, detail.LastRefreshedAt.IsZero())
}

func TestRefreshFullPipeline(t *testing.T) {
	// One server plays roster page and faculty profile page.
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/people/jane-doe">Jane A. Doe, MD</a></body></html>`)
	})
	mux.HandleFunc("/people/jane-doe", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><main><p>Dr. Doe studies cochlear implant outcomes and tinnitus management in adults, leading a translational hearing research program.</p></main></body></html>`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	primary := &stubPrimary{pubs: []types.Publication{
		{
			Title:       "Cochlear implant outcomes in adults",
			PublishedOn: "2024-02-01",
			CoAuthors:   []string{"Jane A. Doe", "Sam Lee"},
		},
		{
			Title:       "Tinnitus management strategies",
			PublishedOn: "2022-05-01",
			CoAuthors:   []string{"Jane A. Doe", "Sam Lee", "Alex Park"},
		},
	}}

	st := newTestStore(t)
	p := &Pipeline{
		Store:    st,
		Roster:   &roster.Scraper{Client: ts.Client()},
		Bio:      &bio.Fetcher{Client: ts.Client()},
		Enricher: &enrich.Enricher{Primary: primary, Fallback: &stubFallback{}, Tax: taxonomy.Default()},
		Tax:      taxonomy.Default(),
		Log:      zerolog.Nop(),
	}

	require.NoError(t, p.Refresh(context.Background(), []types.InstitutionConfig{
		{Name: "Sample University", Website: ts.URL},
	}))

	summaries, err := st.ListProfessors(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	detail, ok, err := st.GetProfessor(context.Background(), summaries[0].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Jane A. Doe, MD", detail.Name)
	assert.Contains(t, detail.Biography, "cochlear implant outcomes")
	require.Len(t, detail.Publications, 2)
	// Newest first.
	assert.Equal(t, "Cochlear implant outcomes in adults", detail.Publications[0].Title)
	// Tags come from the biography.
	assert.Contains(t, detail.TopTags, "cochlear implants")
	assert.Contains(t, detail.TopTags, "tinnitus")
	// Collaborators exclude the subject and dedupe across publications.
	require.Len(t, detail.Collaborators, 2)
	assert.Equal(t, "Sam Lee", detail.Collaborators[0].Name)
	assert.Equal(t, "Alex Park", detail.Collaborators[1].Name)
	assert.False(t, detail.LastRefreshedAt.IsZero())
}

func TestRefreshSkipsUnreachableRoster(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer ts.Close()

	st := newTestStore(t)
	p := &Pipeline{
		Store:  st,
		Roster: &roster.Scraper{Client: ts.Client()},
		Log:    zerolog.Nop(),
	}
	require.NoError(t, p.Refresh(context.Background(), []types.InstitutionConfig{
		{Name: "Sample University", Website: ts.URL},
	}))

	// The institution row exists, but no professors were ingested.
	summaries, err := st.ListProfessors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestCollaboratorsFrom(t *testing.T) {
	pubs := []types.Publication{
		{Title: "A", CoAuthors: []string{"Jane A. Doe, MD", "Sam Lee", "Alex Park"}},
		{Title: "B", CoAuthors: []string{"sam lee", "Dana Field", ""}},
	}
	got := collaboratorsFrom(pubs, "Jane A. Doe")
	require.Len(t, got, 3)
	assert.Equal(t, "Sam Lee", got[0].Name)
	assert.Equal(t, "Alex Park", got[1].Name)
	assert.Equal(t, "Dana Field", got[2].Name)
}
