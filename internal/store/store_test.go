// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProfessor(t *testing.T, s *Store) types.Professor {
	t.Helper()
	ctx := context.Background()
	inst, err := s.UpsertInstitution(ctx, "Rush Medical School", "https://www.rush.edu")
	require.NoError(t, err)
	prof, err := s.UpsertProfessor(ctx, types.Professor{
		Name:          "Jane A. Doe",
		Email:         "jdoe@rush.edu",
		InstitutionID: inst.ID,
	})
	require.NoError(t, err)
	return prof
}

func TestUpsertInstitution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inst, err := s.UpsertInstitution(ctx, "Rush Medical School", "https://www.rush.edu")
	require.NoError(t, err)
	assert.NotZero(t, inst.ID)
	assert.Equal(t, "https://www.rush.edu", inst.Website)

	// Same name is the same row; an empty website does not clobber.
	again, err := s.UpsertInstitution(ctx, "Rush Medical School", "")
	require.NoError(t, err)
	assert.Equal(t, inst.ID, again.ID)
	assert.Equal(t, "https://www.rush.edu", again.Website)

	// A fresh website replaces the stored one.
	moved, err := s.UpsertInstitution(ctx, "Rush Medical School", "https://rush.edu/ent")
	require.NoError(t, err)
	assert.Equal(t, "https://rush.edu/ent", moved.Website)
}

func TestUpsertProfessorFillSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prof := seedProfessor(t, s)
	assert.NotZero(t, prof.ID)
	assert.Equal(t, "Rush Medical School", prof.Institution)

	// Empty incoming fields keep stored values; has_lab is sticky.
	updated, err := s.UpsertProfessor(ctx, types.Professor{
		Name:          "Jane A. Doe",
		InstitutionID: prof.InstitutionID,
		HIndex:        31,
		HasLab:        true,
		Biography:     "Dr. Doe studies cochlear implant outcomes.",
	})
	require.NoError(t, err)
	assert.Equal(t, prof.ID, updated.ID)
	assert.Equal(t, "jdoe@rush.edu", updated.Email)
	assert.Equal(t, 31, updated.HIndex)
	assert.True(t, updated.HasLab)

	// A later pass without has_lab or biography does not erase them.
	later, err := s.UpsertProfessor(ctx, types.Professor{
		Name:          "Jane A. Doe",
		InstitutionID: prof.InstitutionID,
	})
	require.NoError(t, err)
	assert.True(t, later.HasLab)
	assert.Equal(t, "Dr. Doe studies cochlear implant outcomes.", later.Biography)

	// Biography fills when empty but never overwrites.
	overwrite, err := s.UpsertProfessor(ctx, types.Professor{
		Name:          "Jane A. Doe",
		InstitutionID: prof.InstitutionID,
		Biography:     "A different biography.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Doe studies cochlear implant outcomes.", overwrite.Biography)
}

func TestSameNameDifferentInstitutions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rush, err := s.UpsertInstitution(ctx, "Rush Medical School", "")
	require.NoError(t, err)
	uic, err := s.UpsertInstitution(ctx, "University of Illinois Chicago", "")
	require.NoError(t, err)

	p1, err := s.UpsertProfessor(ctx, types.Professor{Name: "Jane A. Doe", InstitutionID: rush.ID})
	require.NoError(t, err)
	p2, err := s.UpsertProfessor(ctx, types.Professor{Name: "Jane A. Doe", InstitutionID: uic.ID})
	require.NoError(t, err)
	assert.NotEqual(t, p1.ID, p2.ID)
}

func TestSetProfessorTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prof := seedProfessor(t, s)

	require.NoError(t, s.SetProfessorTags(ctx, prof.ID, []string{"Tinnitus", " cochlear implants ", "", "tinnitus"}))
	detail, ok, err := s.GetProfessor(ctx, prof.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"tinnitus", "cochlear implants"}, detail.TopTags)

	// Replacing swaps the set.
	require.NoError(t, s.SetProfessorTags(ctx, prof.ID, []string{"otology"}))
	detail, _, err = s.GetProfessor(ctx, prof.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"otology"}, detail.TopTags)

	// An all-blank set leaves the stored tags untouched.
	require.NoError(t, s.SetProfessorTags(ctx, prof.ID, []string{"", "  "}))
	detail, _, err = s.GetProfessor(ctx, prof.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"otology"}, detail.TopTags)
}

func TestUpsertPublications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prof := seedProfessor(t, s)

	pubs := []types.Publication{
		{Title: "Hearing Loss Interventions", PublishedOn: "2022-06-15", Link: "https://doi.org/ex2", CoAuthors: []string{"C. Patel"}},
		{Title: "Advances in Otolaryngology", PublishedOn: "2023-11-01", CoAuthors: []string{"A. Smith", "B. Chen"}},
		{Title: "   "},
	}
	require.NoError(t, s.UpsertPublications(ctx, prof.ID, pubs))

	detail, _, err := s.GetProfessor(ctx, prof.ID)
	require.NoError(t, err)
	require.Len(t, detail.Publications, 2)
	// Newest first.
	assert.Equal(t, "Advances in Otolaryngology", detail.Publications[0].Title)
	assert.Equal(t, []string{"C. Patel"}, detail.Publications[1].CoAuthors)

	// Re-upserting the same title updates in place instead of duplicating.
	require.NoError(t, s.UpsertPublications(ctx, prof.ID, []types.Publication{
		{Title: "Advances in Otolaryngology", Link: "https://doi.org/ex1"},
	}))
	detail, _, err = s.GetProfessor(ctx, prof.ID)
	require.NoError(t, err)
	require.Len(t, detail.Publications, 2)
	assert.Equal(t, "https://doi.org/ex1", detail.Publications[0].Link)
	// The stored date survives the empty incoming one.
	assert.Equal(t, "2023-11-01", detail.Publications[0].PublishedOn)
}

func TestUpsertCollaborators(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prof := seedProfessor(t, s)

	require.NoError(t, s.UpsertCollaborators(ctx, prof.ID, []types.Collaborator{
		{Name: "A. Smith", Affiliation: "Sample Lab"},
		{Name: "B. Chen"},
		{Name: ""},
		{Name: "A. Smith"},
	}))
	detail, _, err := s.GetProfessor(ctx, prof.ID)
	require.NoError(t, err)
	require.Len(t, detail.Collaborators, 2)
	assert.Equal(t, "A. Smith", detail.Collaborators[0].Name)
	// Re-upserting without an affiliation keeps the stored one.
	assert.Equal(t, "Sample Lab", detail.Collaborators[0].Affiliation)
}

func TestSetEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prof := seedProfessor(t, s)

	ok, err := s.SetEmail(ctx, prof.ID, "jane.doe@rush.edu")
	require.NoError(t, err)
	assert.True(t, ok)

	detail, _, err := s.GetProfessor(ctx, prof.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@rush.edu", detail.Email)

	ok, err = s.SetEmail(ctx, 9999, "nobody@example.edu")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTouchRefreshed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prof := seedProfessor(t, s)

	stamp := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.TouchRefreshed(ctx, prof.ID, stamp))

	detail, _, err := s.GetProfessor(ctx, prof.ID)
	require.NoError(t, err)
	assert.True(t, stamp.Equal(detail.LastRefreshedAt))
}

func TestListProfessorsOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	uic, err := s.UpsertInstitution(ctx, "University of Illinois Chicago", "")
	require.NoError(t, err)
	rush, err := s.UpsertInstitution(ctx, "Rush Medical School", "")
	require.NoError(t, err)

	for _, seed := range []struct {
		name string
		inst int64
	}{
		{"Dana Field", uic.ID},
		{"Alex Park", uic.ID},
		{"Chris Wu", rush.ID},
	} {
		_, err := s.UpsertProfessor(ctx, types.Professor{Name: seed.name, InstitutionID: seed.inst})
		require.NoError(t, err)
	}

	summaries, err := s.ListProfessors(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	// Institution name first, professor name second.
	assert.Equal(t, "Chris Wu", summaries[0].Name)
	assert.Equal(t, "Alex Park", summaries[1].Name)
	assert.Equal(t, "Dana Field", summaries[2].Name)
}

func TestHasRecentPublicationFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prof := seedProfessor(t, s)

	require.NoError(t, s.UpsertPublications(ctx, prof.ID, []types.Publication{
		{Title: "Old Work", PublishedOn: "2019-01-01"},
	}))
	summaries, err := s.ListProfessors(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.False(t, summaries[0].HasRecentPublication)

	require.NoError(t, s.UpsertPublications(ctx, prof.ID, []types.Publication{
		{Title: "Fresh Work", PublishedOn: time.Now().AddDate(0, 0, -7).Format("2006-01-02")},
	}))
	summaries, err = s.ListProfessors(ctx)
	require.NoError(t, err)
	assert.True(t, summaries[0].HasRecentPublication)
}

func TestGetProfessorUnknown(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.GetProfessor(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
}
