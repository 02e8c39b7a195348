// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the faculty directory.
// See docs/ARCHITECTURE § Data Structures.
package types

import (
	"strings"
	"time"
)

// Institution is one of the configured roster institutions.
type Institution struct {
	ID      int64  `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
}

// Professor is a faculty member in the directory.
type Professor struct {
	ID            int64  `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	ProfileURL    string `json:"profile_url,omitempty" yaml:"profile_url,omitempty"`
	InstitutionID int64  `json:"institution_id" yaml:"institution_id"`
	Institution   string `json:"institution" yaml:"institution"`
	HIndex        int    `json:"h_index,omitempty" yaml:"h_index,omitempty"`
	HasLab        bool   `json:"has_lab" yaml:"has_lab"`
	Biography     string `json:"biography,omitempty" yaml:"biography,omitempty"`

	// LastRefreshedAt is the time of the last successful enrichment pass.
	LastRefreshedAt time.Time `json:"last_refreshed_at,omitzero" yaml:"last_refreshed_at,omitempty"`
}

// PersonQuery identifies a person to enrich: a raw display name as scraped
// from a roster page plus the institution it came from. Institution may be
// empty when the roster did not carry one.
type PersonQuery struct {
	RawName     string `json:"raw_name" yaml:"raw_name"`
	Institution string `json:"institution,omitempty" yaml:"institution,omitempty"`
}

// Publication is the normalized shape of one bibliographic record.
type Publication struct {
	// Title is required; records without one are dropped during mapping.
	Title string `json:"title" yaml:"title"`

	// PublishedOn is an ISO-like date string. Partial dates are permitted:
	// "2023" or "2023-06" as well as "2023-06-15". Recency ordering compares
	// these lexically, so a bare "2023" sorts after "2023-01-01".
	PublishedOn string `json:"published_on,omitempty" yaml:"published_on,omitempty"`

	// Link points at the canonical DOI resolver when a DOI is known,
	// otherwise at a landing page or a source-internal record URL.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`

	// CoAuthors lists author display names in source order. The subject is
	// always present, prepended when the source omitted self-authorship.
	CoAuthors []string `json:"co_authors" yaml:"co_authors"`

	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}

// Collaborator is a co-author linked to a professor.
type Collaborator struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
}

// RosterEntry is one person scraped from an institution roster page.
type RosterEntry struct {
	Name       string `json:"name" yaml:"name"`
	Email      string `json:"email,omitempty" yaml:"email,omitempty"`
	ProfileURL string `json:"profile_url,omitempty" yaml:"profile_url,omitempty"`
}

// pubDateFormats are tried in order by ParsePublishedOn.
var pubDateFormats = []string{"2006-01-02", "2006-01", "2006"}

// ParsePublishedOn parses a stored publication date string. Partial dates
// resolve to the first day of their period. ISO timestamps are truncated to
// the date portion. Returns the zero time and false when nothing parses.
func ParsePublishedOn(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range pubDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	if i := strings.IndexByte(value, 'T'); i > 0 {
		return ParsePublishedOn(value[:i])
	}
	return time.Time{}, false
}

// HasRecentPublication reports whether any publication falls within the last
// months months. A month is counted as 30 days.
func HasRecentPublication(pubs []Publication, months int) bool {
	cutoff := time.Now().AddDate(0, 0, -months*30)
	for _, p := range pubs {
		if t, ok := ParsePublishedOn(p.PublishedOn); ok && !t.Before(cutoff) {
			return true
		}
	}
	return false
}
