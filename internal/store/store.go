// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the faculty directory in SQLite.
//
// Upserts follow a fill-don't-clobber rule: a refresh pass may add or
// replace data with fresher values, but a field that came back empty never
// erases one already stored. See docs/ARCHITECTURE § Persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

// maxTagsOut and maxPublicationsOut bound the API views.
const (
	maxTagsOut         = 10
	maxPublicationsOut = 20
)

// recentWindowMonths is the recency window for HasRecentPublication flags.
const recentWindowMonths = 3

// Store manages the directory SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the directory database at cfg.DBPath, creating
// parent directories and the schema as needed.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS institutions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			website TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS professors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT,
			profile_url TEXT,
			institution_id INTEGER NOT NULL REFERENCES institutions(id),
			h_index INTEGER,
			has_lab INTEGER NOT NULL DEFAULT 0,
			biography TEXT,
			last_refreshed_at TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			UNIQUE(name, institution_id)
		)`,
		`CREATE TABLE IF NOT EXISTS research_tags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS professor_tags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			professor_id INTEGER NOT NULL REFERENCES professors(id),
			tag_id INTEGER NOT NULL REFERENCES research_tags(id),
			UNIQUE(professor_id, tag_id)
		)`,
		`CREATE TABLE IF NOT EXISTS publications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			professor_id INTEGER NOT NULL REFERENCES professors(id),
			title TEXT NOT NULL,
			published_on TEXT,
			link TEXT,
			co_authors TEXT NOT NULL DEFAULT '',
			abstract TEXT,
			UNIQUE(professor_id, title)
		)`,
		`CREATE TABLE IF NOT EXISTS collaborators (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			professor_id INTEGER NOT NULL REFERENCES professors(id),
			name TEXT NOT NULL,
			affiliation TEXT,
			UNIQUE(professor_id, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_professors_institution ON professors(institution_id)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_professor ON publications(professor_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertInstitution inserts or refreshes an institution by name and returns
// its stored row. An empty website never overwrites a stored one.
func (s *Store) UpsertInstitution(ctx context.Context, name, website string) (types.Institution, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO institutions (name, website) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			website = CASE WHEN excluded.website != '' THEN excluded.website ELSE institutions.website END`,
		name, website,
	)
	if err != nil {
		return types.Institution{}, fmt.Errorf("upserting institution: %w", err)
	}

	var inst types.Institution
	var site sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT id, name, website FROM institutions WHERE name = ?`, name,
	).Scan(&inst.ID, &inst.Name, &site)
	if err != nil {
		return types.Institution{}, fmt.Errorf("reading institution: %w", err)
	}
	inst.Website = site.String
	return inst, nil
}

// UpsertProfessor inserts or refreshes a professor keyed on (name,
// institution). Empty incoming fields keep the stored values; has_lab is
// sticky once set; the biography fills only when none is stored.
func (s *Store) UpsertProfessor(ctx context.Context, prof types.Professor) (types.Professor, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO professors (name, email, profile_url, institution_id, h_index, has_lab, biography)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name, institution_id) DO UPDATE SET
			email       = CASE WHEN excluded.email != '' THEN excluded.email ELSE professors.email END,
			profile_url = CASE WHEN excluded.profile_url != '' THEN excluded.profile_url ELSE professors.profile_url END,
			h_index     = CASE WHEN excluded.h_index > 0 THEN excluded.h_index ELSE professors.h_index END,
			has_lab     = professors.has_lab OR excluded.has_lab,
			biography   = CASE WHEN IFNULL(professors.biography, '') = '' THEN excluded.biography ELSE professors.biography END`,
		prof.Name, prof.Email, prof.ProfileURL, prof.InstitutionID, prof.HIndex, prof.HasLab, prof.Biography,
	)
	if err != nil {
		return types.Professor{}, fmt.Errorf("upserting professor: %w", err)
	}
	return s.professorByName(ctx, prof.Name, prof.InstitutionID)
}

func (s *Store) professorByName(ctx context.Context, name string, institutionID int64) (types.Professor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT p.id, p.name, IFNULL(p.email, ''), IFNULL(p.profile_url, ''), p.institution_id, i.name,
			IFNULL(p.h_index, 0), p.has_lab, IFNULL(p.biography, ''), IFNULL(p.last_refreshed_at, '')
		 FROM professors p JOIN institutions i ON i.id = p.institution_id
		 WHERE p.name = ? AND p.institution_id = ?`, name, institutionID)
	return scanProfessor(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfessor(row rowScanner) (types.Professor, error) {
	var prof types.Professor
	var refreshed string
	err := row.Scan(&prof.ID, &prof.Name, &prof.Email, &prof.ProfileURL, &prof.InstitutionID,
		&prof.Institution, &prof.HIndex, &prof.HasLab, &prof.Biography, &refreshed)
	if err != nil {
		return types.Professor{}, fmt.Errorf("reading professor: %w", err)
	}
	if refreshed != "" {
		if t, err := time.Parse(time.RFC3339, refreshed); err == nil {
			prof.LastRefreshedAt = t
		}
	}
	return prof, nil
}

// SetProfessorTags replaces a professor's tag set. Tags are normalized to
// lowercase; blanks are dropped. An empty normalized set leaves the stored
// tags untouched.
func (s *Store) SetProfessorTags(ctx context.Context, professorID int64, tags []string) error {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	if len(normalized) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM professor_tags WHERE professor_id = ?`, professorID); err != nil {
		return fmt.Errorf("clearing tags: %w", err)
	}
	for _, tag := range normalized {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO research_tags (name) VALUES (?)`, tag); err != nil {
			return fmt.Errorf("inserting tag: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO professor_tags (professor_id, tag_id)
			 SELECT ?, id FROM research_tags WHERE name = ?`, professorID, tag)
		if err != nil {
			return fmt.Errorf("linking tag: %w", err)
		}
	}
	return tx.Commit()
}

// UpsertPublications inserts or refreshes publications keyed on (professor,
// title). Untitled records are skipped; empty incoming fields keep the
// stored values.
func (s *Store) UpsertPublications(ctx context.Context, professorID int64, pubs []types.Publication) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO publications (professor_id, title, published_on, link, co_authors, abstract)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(professor_id, title) DO UPDATE SET
			published_on = CASE WHEN excluded.published_on != '' THEN excluded.published_on ELSE publications.published_on END,
			link         = CASE WHEN excluded.link != '' THEN excluded.link ELSE publications.link END,
			co_authors   = CASE WHEN excluded.co_authors != '' THEN excluded.co_authors ELSE publications.co_authors END,
			abstract     = CASE WHEN excluded.abstract != '' THEN excluded.abstract ELSE publications.abstract END`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, pub := range pubs {
		if strings.TrimSpace(pub.Title) == "" {
			continue
		}
		_, err := stmt.ExecContext(ctx, professorID, pub.Title, pub.PublishedOn, pub.Link,
			strings.Join(pub.CoAuthors, ", "), pub.Abstract)
		if err != nil {
			return fmt.Errorf("upserting publication: %w", err)
		}
	}
	return tx.Commit()
}

// UpsertCollaborators inserts or refreshes collaborators keyed on
// (professor, name). Nameless records are skipped.
func (s *Store) UpsertCollaborators(ctx context.Context, professorID int64, collaborators []types.Collaborator) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range collaborators {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO collaborators (professor_id, name, affiliation) VALUES (?, ?, ?)
			 ON CONFLICT(professor_id, name) DO UPDATE SET
				affiliation = CASE WHEN excluded.affiliation != '' THEN excluded.affiliation ELSE collaborators.affiliation END`,
			professorID, c.Name, c.Affiliation)
		if err != nil {
			return fmt.Errorf("upserting collaborator: %w", err)
		}
	}
	return tx.Commit()
}

// SetEmail updates a professor's stored email. Returns false when no such
// professor exists.
func (s *Store) SetEmail(ctx context.Context, professorID int64, email string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE professors SET email = ? WHERE id = ?`, email, professorID)
	if err != nil {
		return false, fmt.Errorf("updating email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating email: %w", err)
	}
	return n > 0, nil
}

// TouchRefreshed stamps the professor's last successful enrichment time.
func (s *Store) TouchRefreshed(ctx context.Context, professorID int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE professors SET last_refreshed_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339), professorID)
	if err != nil {
		return fmt.Errorf("stamping refresh time: %w", err)
	}
	return nil
}

// ListProfessors returns summaries ordered by institution name then
// professor name.
func (s *Store) ListProfessors(ctx context.Context) ([]types.ProfessorSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, IFNULL(p.email, ''), i.name
		 FROM professors p JOIN institutions i ON i.id = p.institution_id
		 ORDER BY i.name, p.name`)
	if err != nil {
		return nil, fmt.Errorf("listing professors: %w", err)
	}
	defer rows.Close()

	summaries := []types.ProfessorSummary{}
	for rows.Next() {
		var sum types.ProfessorSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Email, &sum.Institution); err != nil {
			return nil, fmt.Errorf("reading professor row: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing professors: %w", err)
	}

	for i := range summaries {
		tags, err := s.professorTags(ctx, summaries[i].ID)
		if err != nil {
			return nil, err
		}
		summaries[i].Tags = tags
		pubs, err := s.professorPublications(ctx, summaries[i].ID, 0)
		if err != nil {
			return nil, err
		}
		summaries[i].HasRecentPublication = types.HasRecentPublication(publicationsOf(pubs), recentWindowMonths)
	}
	return summaries, nil
}

// GetProfessor returns the detail view for one professor. The second return
// is false when the id is unknown.
func (s *Store) GetProfessor(ctx context.Context, id int64) (types.ProfessorDetail, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT p.id, p.name, IFNULL(p.email, ''), IFNULL(p.profile_url, ''), p.institution_id, i.name,
			IFNULL(p.h_index, 0), p.has_lab, IFNULL(p.biography, ''), IFNULL(p.last_refreshed_at, '')
		 FROM professors p JOIN institutions i ON i.id = p.institution_id
		 WHERE p.id = ?`, id)
	prof, err := scanProfessor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ProfessorDetail{}, false, nil
		}
		return types.ProfessorDetail{}, false, err
	}

	tags, err := s.professorTags(ctx, id)
	if err != nil {
		return types.ProfessorDetail{}, false, err
	}
	pubs, err := s.professorPublications(ctx, id, maxPublicationsOut)
	if err != nil {
		return types.ProfessorDetail{}, false, err
	}
	collaborators, err := s.professorCollaborators(ctx, id)
	if err != nil {
		return types.ProfessorDetail{}, false, err
	}

	detail := types.ProfessorDetail{
		ID:                   prof.ID,
		Name:                 prof.Name,
		Email:                prof.Email,
		Institution:          prof.Institution,
		ProfileURL:           prof.ProfileURL,
		HIndex:               prof.HIndex,
		HasLab:               prof.HasLab,
		Biography:            prof.Biography,
		TopTags:              tags,
		HasRecentPublication: types.HasRecentPublication(publicationsOf(pubs), recentWindowMonths),
		Publications:         pubs,
		Collaborators:        collaborators,
		LastRefreshedAt:      prof.LastRefreshedAt,
	}
	return detail, true, nil
}

func (s *Store) professorTags(ctx context.Context, professorID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.name FROM research_tags t
		 JOIN professor_tags pt ON pt.tag_id = t.id
		 WHERE pt.professor_id = ?
		 ORDER BY pt.id
		 LIMIT ?`, professorID, maxTagsOut)
	if err != nil {
		return nil, fmt.Errorf("reading tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("reading tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// professorPublications returns stored publications sorted newest first by
// the lexical published_on ordering, dateless records last. A limit of 0
// means no limit.
func (s *Store) professorPublications(ctx context.Context, professorID int64, limit int) ([]types.PublicationOut, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, IFNULL(published_on, ''), IFNULL(link, ''), co_authors, IFNULL(abstract, '')
		 FROM publications WHERE professor_id = ?`, professorID)
	if err != nil {
		return nil, fmt.Errorf("reading publications: %w", err)
	}
	defer rows.Close()

	pubs := []types.PublicationOut{}
	for rows.Next() {
		var pub types.PublicationOut
		var coAuthors string
		if err := rows.Scan(&pub.ID, &pub.Title, &pub.PublishedOn, &pub.Link, &coAuthors, &pub.Abstract); err != nil {
			return nil, fmt.Errorf("reading publication row: %w", err)
		}
		pub.CoAuthors = splitCoAuthors(coAuthors)
		pubs = append(pubs, pub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading publications: %w", err)
	}

	sort.SliceStable(pubs, func(i, j int) bool { return pubs[i].PublishedOn > pubs[j].PublishedOn })
	if limit > 0 && len(pubs) > limit {
		pubs = pubs[:limit]
	}
	return pubs, nil
}

func (s *Store) professorCollaborators(ctx context.Context, professorID int64) ([]types.Collaborator, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, IFNULL(affiliation, '') FROM collaborators WHERE professor_id = ? ORDER BY id`, professorID)
	if err != nil {
		return nil, fmt.Errorf("reading collaborators: %w", err)
	}
	defer rows.Close()

	collaborators := []types.Collaborator{}
	for rows.Next() {
		var c types.Collaborator
		if err := rows.Scan(&c.ID, &c.Name, &c.Affiliation); err != nil {
			return nil, fmt.Errorf("reading collaborator row: %w", err)
		}
		collaborators = append(collaborators, c)
	}
	return collaborators, rows.Err()
}

func splitCoAuthors(joined string) []string {
	parts := strings.Split(joined, ",")
	names := []string{}
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func publicationsOf(pubs []types.PublicationOut) []types.Publication {
	out := make([]types.Publication, len(pubs))
	for i, p := range pubs {
		out[i] = types.Publication{Title: p.Title, PublishedOn: p.PublishedOn}
	}
	return out
}
