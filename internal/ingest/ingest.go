// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest orchestrates the directory refresh: roster scraping,
// biography extraction, publication enrichment, tag derivation, and
// persistence. See docs/ARCHITECTURE § Refresh Pipeline.
package ingest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cmdshftateya/ent-research-radar/internal/bio"
	"github.com/cmdshftateya/ent-research-radar/internal/enrich"
	"github.com/cmdshftateya/ent-research-radar/internal/namenorm"
	"github.com/cmdshftateya/ent-research-radar/internal/roster"
	"github.com/cmdshftateya/ent-research-radar/internal/store"
	"github.com/cmdshftateya/ent-research-radar/internal/tags"
	"github.com/cmdshftateya/ent-research-radar/internal/taxonomy"
	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

// defaultWorkers bounds concurrent per-person enrichment when the
// configuration does not set a count.
const defaultWorkers = 4

// defaultPublicationLimit caps stored publications per professor.
const defaultPublicationLimit = 20

// Pipeline wires the refresh stages together. The per-person stages hold no
// shared mutable state, so persons within an institution run concurrently on
// a bounded worker pool.
type Pipeline struct {
	Store    *store.Store
	Roster   *roster.Scraper
	Bio      *bio.Fetcher
	Enricher *enrich.Enricher
	Tax      *taxonomy.Taxonomy
	Log      zerolog.Logger

	// Workers bounds per-person concurrency (default 4).
	Workers int

	// PublicationLimit caps publications kept per person (default 20).
	PublicationLimit int

	// Offline replaces all network stages with the sample dataset.
	Offline bool
}

// Refresh runs the full pipeline over the configured institutions. Roster
// failures are logged and skipped; the refresh continues with the next
// institution. Offline mode seeds the sample dataset instead.
func (p *Pipeline) Refresh(ctx context.Context, institutions []types.InstitutionConfig) error {
	if p.Offline {
		p.Log.Info().Msg("offline: seeding sample data")
		return p.Seed(ctx)
	}

	for _, cfg := range institutions {
		inst, err := p.Store.UpsertInstitution(ctx, cfg.Name, cfg.Website)
		if err != nil {
			return err
		}

		entries, err := p.Roster.Fetch(ctx, inst)
		if err != nil {
			p.Log.Warn().Err(err).Str("institution", inst.Name).Msg("roster fetch failed, skipping")
			continue
		}
		p.Log.Info().Str("institution", inst.Name).Int("roster", len(entries)).Msg("refreshing institution")

		p.refreshRoster(ctx, inst, entries)
	}
	return nil
}

// refreshRoster fans roster entries out to the worker pool.
func (p *Pipeline) refreshRoster(ctx context.Context, inst types.Institution, entries []types.RosterEntry) {
	workers := p.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	work := make(chan types.RosterEntry)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range work {
				if err := p.refreshProfessor(ctx, inst, entry); err != nil {
					p.Log.Warn().Err(err).Str("name", entry.Name).Msg("refresh failed")
				}
			}
		}()
	}

	for _, entry := range entries {
		select {
		case work <- entry:
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return
		}
	}
	close(work)
	wg.Wait()
}

func (p *Pipeline) refreshProfessor(ctx context.Context, inst types.Institution, entry types.RosterEntry) error {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return nil
	}

	prof, err := p.Store.UpsertProfessor(ctx, types.Professor{
		Name:          name,
		Email:         entry.Email,
		ProfileURL:    entry.ProfileURL,
		InstitutionID: inst.ID,
	})
	if err != nil {
		return err
	}

	if prof.Biography == "" && entry.ProfileURL != "" {
		if biography := p.Bio.Fetch(ctx, entry.ProfileURL); biography != "" {
			prof, err = p.Store.UpsertProfessor(ctx, types.Professor{
				Name:          name,
				InstitutionID: inst.ID,
				Biography:     biography,
			})
			if err != nil {
				return err
			}
		}
	}

	limit := p.PublicationLimit
	if limit <= 0 {
		limit = defaultPublicationLimit
	}
	pubs := p.Enricher.FetchPublications(ctx, types.PersonQuery{RawName: name, Institution: inst.Name}, limit)
	if err := p.Store.UpsertPublications(ctx, prof.ID, pubs); err != nil {
		return err
	}

	if derived := tags.Derive(p.Tax, prof.Biography); len(derived) > 0 {
		if err := p.Store.SetProfessorTags(ctx, prof.ID, derived); err != nil {
			return err
		}
	}

	if err := p.Store.UpsertCollaborators(ctx, prof.ID, collaboratorsFrom(pubs, name)); err != nil {
		return err
	}

	return p.Store.TouchRefreshed(ctx, prof.ID, time.Now())
}

// collaboratorsFrom collects distinct co-author names across publications,
// excluding the subject, in first-seen order.
func collaboratorsFrom(pubs []types.Publication, subject string) []types.Collaborator {
	seen := make(map[string]struct{})
	var out []types.Collaborator
	for _, pub := range pubs {
		for _, name := range pub.CoAuthors {
			name = strings.TrimSpace(name)
			if name == "" || namenorm.Equal(name, subject) {
				continue
			}
			key := strings.ToLower(name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, types.Collaborator{Name: name})
		}
	}
	return out
}

// Seed inserts the sample dataset used by offline development and demos.
func (p *Pipeline) Seed(ctx context.Context) error {
	inst, err := p.Store.UpsertInstitution(ctx, "Sample University", "https://example.edu")
	if err != nil {
		return err
	}

	prof, err := p.Store.UpsertProfessor(ctx, types.Professor{
		Name:          "Dr. Jane Doe",
		Email:         "jane.doe@example.edu",
		ProfileURL:    "https://example.edu/jane-doe",
		InstitutionID: inst.ID,
		HIndex:        42,
		HasLab:        true,
		Biography: "Dr. Jane Doe leads translational research on hearing loss and cochlear implant " +
			"outcomes, mentoring residents and collaborating across neurology and speech pathology.",
	})
	if err != nil {
		return err
	}

	pubs := []types.Publication{
		{
			Title:       "Advances in Otolaryngology",
			PublishedOn: "2023-11-01",
			Link:        "https://doi.org/example1",
			CoAuthors:   []string{"A. Smith", "B. Chen"},
		},
		{
			Title:       "Hearing Loss Interventions",
			PublishedOn: "2022-06-15",
			Link:        "https://doi.org/example2",
			CoAuthors:   []string{"C. Patel"},
		},
	}
	if err := p.Store.UpsertPublications(ctx, prof.ID, pubs); err != nil {
		return err
	}
	if err := p.Store.UpsertCollaborators(ctx, prof.ID, []types.Collaborator{
		{Name: "A. Smith", Affiliation: "Sample Lab"},
		{Name: "B. Chen"},
	}); err != nil {
		return err
	}
	if err := p.Store.SetProfessorTags(ctx, prof.ID, []string{"otology", "hearing loss", "cochlear implants"}); err != nil {
		return err
	}
	return p.Store.TouchRefreshed(ctx, prof.ID, time.Now())
}
