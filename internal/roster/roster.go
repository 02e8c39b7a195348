// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package roster scrapes faculty listings from institution department pages.
//
// Each supported institution gets a site-specific parser keyed off the page
// URL; anything else falls through to a generic anchor scan. Parse failures
// degrade to the generic scan; fetch failures surface as errors for the
// ingest layer to log and skip.
package roster

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cmdshftateya/ent-research-radar/internal/httputil"
	"github.com/cmdshftateya/ent-research-radar/pkg/types"
)

// profilePathPattern matches hrefs that look like faculty profile pages.
var profilePathPattern = regexp.MustCompile(`/(faculty|people|profile)`)

// Scraper fetches and parses institution roster pages.
type Scraper struct {
	Client    *http.Client
	UserAgent string

	// Offline disables all network fetches; Fetch returns an empty roster.
	Offline bool
}

// Fetch retrieves the roster page for an institution and parses it with the
// parser matching its site.
func (s *Scraper) Fetch(ctx context.Context, inst types.Institution) ([]types.RosterEntry, error) {
	if s.Offline || inst.Website == "" {
		return nil, nil
	}
	html, err := httputil.GetHTML(ctx, s.Client, inst.Website, s.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("fetching roster for %s: %w", inst.Name, err)
	}
	return Parse(html, inst.Website)
}

// Parse dispatches the page to a site-specific parser based on the URL.
func Parse(html, pageURL string) ([]types.RosterEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	switch {
	case strings.Contains(pageURL, "northwestern"):
		return parseNorthwestern(doc, pageURL), nil
	case strings.Contains(pageURL, "uchicago"):
		return parseUChicago(doc, pageURL), nil
	case strings.Contains(pageURL, "uic.edu"):
		return parseUIC(doc, pageURL), nil
	case strings.Contains(pageURL, "rush.edu"):
		return parseRush(doc, pageURL), nil
	}
	return parseGeneric(doc, pageURL), nil
}

func parseNorthwestern(doc *goquery.Document, baseURL string) []types.RosterEntry {
	var entries []types.RosterEntry
	cards := doc.Find(".faculty-listing .faculty-list-item, .faculty-list .person")
	if cards.Length() == 0 {
		return parseGeneric(doc, baseURL)
	}
	cards.Each(func(_ int, card *goquery.Selection) {
		entry := types.RosterEntry{Name: cardText(card)}
		link := card.Find("a").First()
		if href, ok := link.Attr("href"); ok && href != "" {
			if after, found := strings.CutPrefix(href, "mailto:"); found {
				entry.Email = after
			} else {
				entry.ProfileURL = absoluteURL(baseURL, href)
				if name := cardText(link); name != "" {
					entry.Name = name
				}
			}
		}
		if entry.Name != "" {
			entries = append(entries, entry)
		}
	})
	return dedupe(entries)
}

func parseUChicago(doc *goquery.Document, baseURL string) []types.RosterEntry {
	var entries []types.RosterEntry
	cards := doc.Find(".card-provider, .physician-listing")
	if cards.Length() == 0 {
		return parseGeneric(doc, baseURL)
	}
	cards.Each(func(_ int, card *goquery.Selection) {
		name := firstText(card, "h3, .card-title")
		if name == "" {
			name = cardText(card)
		}
		entry := types.RosterEntry{Name: name}
		if href, ok := card.Find("a").First().Attr("href"); ok && href != "" {
			entry.ProfileURL = absoluteURL(baseURL, href)
		}
		if entry.Name != "" {
			entries = append(entries, entry)
		}
	})
	return dedupe(entries)
}

func parseUIC(doc *goquery.Document, baseURL string) []types.RosterEntry {
	var entries []types.RosterEntry
	cards := doc.Find(".faculty-list .person, .profile-card")
	if cards.Length() == 0 {
		return parseGeneric(doc, baseURL)
	}
	cards.Each(func(_ int, card *goquery.Selection) {
		name := firstText(card, ".person-name, h3, h4")
		if name == "" {
			name = cardText(card)
		}
		entry := types.RosterEntry{Name: name}
		card.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
			href, _ := link.Attr("href")
			if after, found := strings.CutPrefix(href, "mailto:"); found {
				if entry.Email == "" {
					entry.Email = after
				}
				return true
			}
			if entry.ProfileURL == "" && href != "" {
				entry.ProfileURL = absoluteURL(baseURL, href)
			}
			return entry.Email == "" || entry.ProfileURL == ""
		})
		if entry.Name != "" {
			entries = append(entries, entry)
		}
	})
	return dedupe(entries)
}

func parseRush(doc *goquery.Document, baseURL string) []types.RosterEntry {
	var entries []types.RosterEntry
	cards := doc.Find(".views-row, .provider-card")
	if cards.Length() == 0 {
		return parseGeneric(doc, baseURL)
	}
	cards.Each(func(_ int, card *goquery.Selection) {
		name := firstText(card, "h3, h2, .provider-name")
		if name == "" {
			name = cardText(card)
		}
		entry := types.RosterEntry{Name: name}
		if href, ok := card.Find("a[href]").First().Attr("href"); ok {
			if href != "" && !strings.HasPrefix(href, "mailto:") {
				entry.ProfileURL = absoluteURL(baseURL, href)
			}
		}
		if entry.Name != "" {
			entries = append(entries, entry)
		}
	})
	return dedupe(entries)
}

// parseGeneric scans every anchor for mailto links and profile-looking hrefs.
func parseGeneric(doc *goquery.Document, baseURL string) []types.RosterEntry {
	var entries []types.RosterEntry
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		text := cardText(link)
		if text == "" {
			return
		}
		href, _ := link.Attr("href")
		if i := strings.Index(href, "mailto:"); i >= 0 {
			entries = append(entries, types.RosterEntry{Name: text, Email: href[i+len("mailto:"):]})
			return
		}
		if profilePathPattern.MatchString(href) {
			entries = append(entries, types.RosterEntry{Name: text, ProfileURL: absoluteURL(baseURL, href)})
		}
	})
	return dedupe(entries)
}

// cardText flattens an element's text with single-space separators.
func cardText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// firstText returns the flattened text of the first match for the selector.
func firstText(card *goquery.Selection, selector string) string {
	return cardText(card.Find(selector).First())
}

// absoluteURL resolves a possibly host-relative href against the page URL.
func absoluteURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
}

// dedupe removes entries whose (name, email, profile URL) triple repeats,
// keeping first occurrences in page order.
func dedupe(entries []types.RosterEntry) []types.RosterEntry {
	seen := make(map[types.RosterEntry]struct{}, len(entries))
	unique := make([]types.RosterEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		unique = append(unique, e)
	}
	return unique
}
