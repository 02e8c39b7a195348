// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cmdshftateya/ent-research-radar/internal/httputil"
	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

// semanticBase is the Semantic Scholar Graph API root. Declared as a var so
// tests can substitute an httptest server.
var semanticBase = "https://api.semanticscholar.org/graph/v1"

const (
	semanticAuthorFields = "authorId,name,affiliations"
	semanticPaperFields  = "title,abstract,year,publicationDate,url,authors,externalIds"
)

// SemanticClient queries the Semantic Scholar Graph API. It is the fallback
// enrichment source: its author search is a single-best-match lookup rather
// than a scored candidate list.
type SemanticClient struct {
	Client    *http.Client
	UserAgent string
	APIKey    string
}

var _ Fallback = (*SemanticClient)(nil)

// LookupAuthor returns the best-match author id for "name institution", or
// "" when the search came back empty.
func (c *SemanticClient) LookupAuthor(ctx context.Context, name, institution string) (string, error) {
	query := strings.TrimSpace(name + " " + institution)
	params := url.Values{
		"query":  {query},
		"limit":  {"1"},
		"fields": {semanticAuthorFields},
	}

	var resp semanticAuthorResponse
	if err := c.get(ctx, semanticBase+"/author/search?"+params.Encode(), &resp); err != nil {
		return "", fmt.Errorf("Semantic Scholar author search: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	return resp.Data[0].AuthorID, nil
}

// FetchPapers returns the author's papers mapped to the normalized shape.
// Records without a title are dropped.
func (c *SemanticClient) FetchPapers(ctx context.Context, authorID, subject string, limit int) ([]types.Publication, error) {
	params := url.Values{
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {semanticPaperFields},
	}

	var resp semanticPaperResponse
	if err := c.get(ctx, semanticBase+"/author/"+url.PathEscape(authorID)+"/papers?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("Semantic Scholar papers fetch: %w", err)
	}

	pubs := make([]types.Publication, 0, len(resp.Data))
	for _, p := range resp.Data {
		if pub, ok := mapSemanticPaper(p, subject); ok {
			pubs = append(pubs, pub)
		}
	}
	return pubs, nil
}

func (c *SemanticClient) get(ctx context.Context, reqURL string, out any) error {
	if c.APIKey != "" {
		return httputil.GetJSONWithHeaders(ctx, c.Client, reqURL, c.UserAgent, map[string]string{"x-api-key": c.APIKey}, out)
	}
	return httputil.GetJSON(ctx, c.Client, reqURL, c.UserAgent, out)
}

// mapSemanticPaper converts one paper record to the normalized shape.
func mapSemanticPaper(p semanticPaper, subject string) (types.Publication, bool) {
	if strings.TrimSpace(p.Title) == "" {
		return types.Publication{}, false
	}

	names := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}

	return types.Publication{
		Title:       p.Title,
		PublishedOn: semanticPublishedOn(p),
		Link:        semanticLink(p),
		CoAuthors:   withSubject(names, subject),
		Abstract:    p.Abstract,
	}, true
}

// semanticPublishedOn prefers the full publication date over the bare year.
func semanticPublishedOn(p semanticPaper) string {
	if p.PublicationDate != "" {
		return p.PublicationDate
	}
	if p.Year > 0 {
		return fmt.Sprintf("%d", p.Year)
	}
	return ""
}

// semanticLink prefers the canonical DOI resolver URL, then the landing
// page, then the Semantic Scholar record URL.
func semanticLink(p semanticPaper) string {
	if p.ExternalIDs.DOI != "" {
		return "https://doi.org/" + p.ExternalIDs.DOI
	}
	if p.URL != "" {
		return p.URL
	}
	if p.PaperID != "" {
		return "https://www.semanticscholar.org/paper/" + p.PaperID
	}
	return ""
}

// Semantic Scholar API JSON structures.

type semanticAuthorResponse struct {
	Data []semanticAuthor `json:"data"`
}

type semanticAuthor struct {
	AuthorID     string   `json:"authorId"`
	Name         string   `json:"name"`
	Affiliations []string `json:"affiliations"`
}

type semanticPaperResponse struct {
	Data []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string           `json:"paperId"`
	Title           string           `json:"title"`
	Abstract        string           `json:"abstract"`
	Year            int              `json:"year"`
	PublicationDate string           `json:"publicationDate"`
	URL             string           `json:"url"`
	Authors         []semanticAuthor `json:"authors"`
	ExternalIDs     struct {
		DOI string `json:"DOI"`
	} `json:"externalIds"`
}
