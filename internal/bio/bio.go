// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bio extracts a short biography paragraph from a faculty profile
// page. Like the roster scraper it is best-effort: any fetch or parse
// failure yields an empty biography.
package bio

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cmdshftateya/ent-research-radar/internal/httputil"
)

// minBioWords is the shortest paragraph accepted as a biography. Anything
// shorter is usually a heading or a contact line.
const minBioWords = 12

// bioSelectors are the content regions tried in order for a biography
// paragraph, covering the page layouts of the supported institutions.
const bioSelectors = "main p, article p, .field-name-body p, .provider-bio p, .bio p, .pane-node-body p"

// Fetcher retrieves biography text from faculty profile pages.
type Fetcher struct {
	Client    *http.Client
	UserAgent string

	// Offline disables all network fetches; Fetch returns "".
	Offline bool
}

// Fetch downloads a profile page and extracts its biography. Returns "" when
// the page is missing, unreachable, or has no usable paragraph.
func (f *Fetcher) Fetch(ctx context.Context, profileURL string) string {
	if f.Offline || profileURL == "" {
		return ""
	}
	html, err := httputil.GetHTML(ctx, f.Client, profileURL, f.UserAgent)
	if err != nil {
		return ""
	}
	return Extract(html)
}

// Extract returns the first content paragraph of at least minBioWords words,
// falling back to the page's meta description.
func Extract(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var bio string
	doc.Find(bioSelectors).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.Join(strings.Fields(p.Text()), " ")
		if len(strings.Fields(text)) >= minBioWords {
			bio = text
			return false
		}
		return true
	})
	if bio != "" {
		return bio
	}

	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}
