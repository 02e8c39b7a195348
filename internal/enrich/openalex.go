// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/cmdshftateya/ent-research-radar/internal/httputil"
	"github.com/cmdshftateya/ent-research-radar/internal/namenorm"
	"github.com/cmdshftateya/ent-research-radar/internal/taxonomy"
	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

// openAlexBase is the OpenAlex API root. Declared as a var so tests can
// substitute an httptest server.
var openAlexBase = "https://api.openalex.org"

const (
	openAlexAuthorSelect = "id,display_name,works_count,cited_by_count,last_known_institutions,affiliations,x_concepts"
	openAlexWorkSelect   = "id,doi,display_name,authorships,publication_year,primary_location,publication_date,abstract_inverted_index"

	// openAlexPageSize caps per-request result pages.
	openAlexPageSize = 25
)

// OpenAlexClient queries the OpenAlex API. It is the primary enrichment
// source: authors are disambiguated before works are fetched.
type OpenAlexClient struct {
	Client    *http.Client
	UserAgent string

	// Mailto is sent with every request for polite pool access.
	Mailto string

	Tax *taxonomy.Taxonomy
}

var _ Primary = (*OpenAlexClient)(nil)

// SearchAuthors queries the author search endpoint for a name, restricted to
// the institution's OpenAlex id when the institution is known.
func (c *OpenAlexClient) SearchAuthors(ctx context.Context, name, institution string) ([]AuthorCandidate, error) {
	params := url.Values{
		"search":   {name},
		"per-page": {"5"},
		"select":   {openAlexAuthorSelect},
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}
	if id, ok := c.Tax.InstitutionID(institution); ok {
		params.Set("filter", "last_known_institutions.id:"+id)
	}

	var resp openAlexAuthorResponse
	if err := httputil.GetJSON(ctx, c.Client, openAlexBase+"/authors?"+params.Encode(), c.UserAgent, &resp); err != nil {
		return nil, fmt.Errorf("OpenAlex author search: %w", err)
	}

	candidates := make([]AuthorCandidate, 0, len(resp.Results))
	for _, a := range resp.Results {
		candidates = append(candidates, a.toCandidate())
	}
	return candidates, nil
}

// FetchWorks returns the author's works sorted newest first, mapped to the
// normalized publication shape. Records without a title are dropped.
func (c *OpenAlexClient) FetchWorks(ctx context.Context, authorID, institution, subject string, limit int) ([]types.Publication, error) {
	filters := []string{"authorships.author.id:" + authorID}
	if id, ok := c.Tax.InstitutionID(institution); ok {
		filters = append(filters, "institutions.id:"+id)
	}

	params := url.Values{
		"filter":   {strings.Join(filters, ",")},
		"sort":     {"publication_year:desc"},
		"per-page": {fmt.Sprintf("%d", pageSize(limit))},
		"select":   {openAlexWorkSelect},
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}

	var resp openAlexWorkResponse
	if err := httputil.GetJSON(ctx, c.Client, openAlexBase+"/works?"+params.Encode(), c.UserAgent, &resp); err != nil {
		return nil, fmt.Errorf("OpenAlex works fetch: %w", err)
	}
	return mapOpenAlexWorks(resp.Results, subject), nil
}

// SearchWorks runs a free-text works search for a name, newest first, used
// when no author id could be resolved.
func (c *OpenAlexClient) SearchWorks(ctx context.Context, name, institution, subject string, limit int) ([]types.Publication, error) {
	params := url.Values{
		"search":   {name},
		"sort":     {"publication_year:desc"},
		"per-page": {fmt.Sprintf("%d", pageSize(limit))},
		"select":   {openAlexWorkSelect},
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}
	if id, ok := c.Tax.InstitutionID(institution); ok {
		params.Set("filter", "institutions.id:"+id)
	}

	var resp openAlexWorkResponse
	if err := httputil.GetJSON(ctx, c.Client, openAlexBase+"/works?"+params.Encode(), c.UserAgent, &resp); err != nil {
		return nil, fmt.Errorf("OpenAlex works search: %w", err)
	}
	return mapOpenAlexWorks(resp.Results, subject), nil
}

func pageSize(limit int) int {
	if limit <= 0 || limit > openAlexPageSize {
		return openAlexPageSize
	}
	return limit
}

func mapOpenAlexWorks(works []openAlexWork, subject string) []types.Publication {
	pubs := make([]types.Publication, 0, len(works))
	for _, w := range works {
		if pub, ok := mapOpenAlexWork(w, subject); ok {
			pubs = append(pubs, pub)
		}
	}
	return pubs
}

// mapOpenAlexWork converts one work record to the normalized shape. The
// second return is false when the record has no title and must be dropped.
func mapOpenAlexWork(w openAlexWork, subject string) (types.Publication, bool) {
	if strings.TrimSpace(w.DisplayName) == "" {
		return types.Publication{}, false
	}
	return types.Publication{
		Title:       w.DisplayName,
		PublishedOn: openAlexPublishedOn(w),
		Link:        openAlexLink(w),
		CoAuthors:   withSubject(openAlexAuthorNames(w), subject),
		Abstract:    ReconstructAbstract(w.AbstractInvertedIndex),
	}, true
}

// openAlexPublishedOn prefers the full publication date over the bare year.
func openAlexPublishedOn(w openAlexWork) string {
	if w.PublicationDate != "" {
		return w.PublicationDate
	}
	if w.PublicationYear > 0 {
		return fmt.Sprintf("%d", w.PublicationYear)
	}
	return ""
}

// openAlexLink prefers the canonical DOI resolver URL, then the landing
// page, then the OpenAlex record URL.
func openAlexLink(w openAlexWork) string {
	if w.DOI != "" {
		doi := w.DOI
		if i := strings.LastIndex(doi, "doi.org/"); i >= 0 {
			doi = doi[i+len("doi.org/"):]
		}
		return "https://doi.org/" + doi
	}
	if w.PrimaryLocation.LandingPageURL != "" {
		return w.PrimaryLocation.LandingPageURL
	}
	if w.ID != "" {
		id := w.ID
		if i := strings.LastIndex(id, "/"); i >= 0 {
			id = id[i+1:]
		}
		return "https://openalex.org/" + id
	}
	return ""
}

func openAlexAuthorNames(w openAlexWork) []string {
	var names []string
	for _, authorship := range w.Authorships {
		if name := authorship.Author.DisplayName; name != "" {
			names = append(names, name)
		}
	}
	return names
}

// withSubject guarantees the subject appears in the co-author list,
// prepending them when the source omitted self-authorship.
func withSubject(names []string, subject string) []string {
	if subject == "" {
		return names
	}
	for _, name := range names {
		if namenorm.Equal(name, subject) {
			return names
		}
	}
	return append([]string{subject}, names...)
}

// ReconstructAbstract converts an abstract inverted index (word → sorted
// token positions) back to plain text by flattening to (position, word)
// pairs, sorting by position, and joining with single spaces.
func ReconstructAbstract(inverted map[string][]int) string {
	if len(inverted) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range inverted {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.

type openAlexAuthorResponse struct {
	Results []openAlexAuthor `json:"results"`
}

type openAlexAuthor struct {
	ID                    string                `json:"id"`
	DisplayName           string                `json:"display_name"`
	WorksCount            int                   `json:"works_count"`
	CitedByCount          int                   `json:"cited_by_count"`
	LastKnownInstitutions []openAlexInstitution `json:"last_known_institutions"`
	Affiliations          []openAlexAffiliation `json:"affiliations"`
	XConcepts             []openAlexConcept     `json:"x_concepts"`
}

type openAlexInstitution struct {
	DisplayName string `json:"display_name"`
}

type openAlexAffiliation struct {
	Institution openAlexInstitution `json:"institution"`
}

type openAlexConcept struct {
	DisplayName string `json:"display_name"`
}

func (a openAlexAuthor) toCandidate() AuthorCandidate {
	c := AuthorCandidate{
		ID:           a.ID,
		DisplayName:  a.DisplayName,
		WorksCount:   a.WorksCount,
		CitedByCount: a.CitedByCount,
	}
	for _, inst := range a.LastKnownInstitutions {
		if inst.DisplayName != "" {
			c.Affiliations = append(c.Affiliations, inst.DisplayName)
		}
	}
	for _, aff := range a.Affiliations {
		if aff.Institution.DisplayName != "" {
			c.Affiliations = append(c.Affiliations, aff.Institution.DisplayName)
		}
	}
	for _, concept := range a.XConcepts {
		if concept.DisplayName != "" {
			c.Concepts = append(c.Concepts, concept.DisplayName)
		}
	}
	return c
}

type openAlexWorkResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	DOI                   string               `json:"doi"`
	DisplayName           string               `json:"display_name"`
	PublicationDate       string               `json:"publication_date"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
}

type openAlexAuthorship struct {
	Author struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexLocation struct {
	LandingPageURL string `json:"landing_page_url"`
}
