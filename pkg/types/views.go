// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ProfessorSummary is the list-view shape served by GET /professors.
type ProfessorSummary struct {
	ID                   int64    `json:"id"`
	Name                 string   `json:"name"`
	Email                string   `json:"email,omitempty"`
	Institution          string   `json:"institution"`
	Tags                 []string `json:"tags"`
	HasRecentPublication bool     `json:"has_recent_publication"`
}

// PublicationOut is a stored publication as served by the API.
type PublicationOut struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	PublishedOn string   `json:"published_on,omitempty"`
	Link        string   `json:"link,omitempty"`
	CoAuthors   []string `json:"co_authors"`
	Abstract    string   `json:"abstract,omitempty"`
}

// ProfessorDetail is the detail-view shape served by GET /professors/{id}.
type ProfessorDetail struct {
	ID                   int64            `json:"id"`
	Name                 string           `json:"name"`
	Email                string           `json:"email,omitempty"`
	Institution          string           `json:"institution"`
	ProfileURL           string           `json:"profile_url,omitempty"`
	HIndex               int              `json:"h_index,omitempty"`
	HasLab               bool             `json:"has_lab"`
	Biography            string           `json:"biography,omitempty"`
	TopTags              []string         `json:"top_tags"`
	HasRecentPublication bool             `json:"has_recent_publication"`
	Publications         []PublicationOut `json:"publications"`
	Collaborators        []Collaborator   `json:"collaborators"`
	LastRefreshedAt      time.Time        `json:"last_refreshed_at,omitzero"`
}
