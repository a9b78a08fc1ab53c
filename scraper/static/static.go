// Package static scrapes site profiles whose listings render server-side,
// with a plain HTTP fetch instead of a browser.
package static

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"realestate-scraper/config"
	"realestate-scraper/models"
	"realestate-scraper/scraper"
	"realestate-scraper/utils"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Engine fetches a profile's page over HTTP and extracts listings with CSS
// queries. Selector candidates follow the same first-match-wins ordering as
// the browser engine.
type Engine struct {
	client *http.Client
	logger *utils.Logger
}

// NewEngine creates a static Engine with a default HTTP client.
func NewEngine(logger *utils.Logger) *Engine {
	return &Engine{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Collect fetches the profile URL and extracts raw listings from it.
func (e *Engine) Collect(ctx context.Context, p config.SiteProfile) (*scraper.CollectResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("static: build request for %s: %w", p.Name, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("static: fetch %s: %w", p.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("static: fetch %s: unexpected status %d", p.URL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("static: parse %s: %w", p.URL, err)
	}

	base, err := url.Parse(p.URL)
	if err != nil {
		return nil, fmt.Errorf("static: profile url %q: %w", p.URL, err)
	}

	selector, cards := resolveCards(doc, p.CardSelectors)
	if selector == "" {
		return nil, &scraper.NotFoundError{Candidates: p.CardSelectors}
	}
	e.logger.Debug("[static] %s: listings matched %q", p.Name, selector)

	now := time.Now()
	var listings []*models.RawListing
	cards.Each(func(_ int, card *goquery.Selection) {
		r := &models.RawListing{
			Title:     fieldText(card, p.Fields.Title),
			RawPrice:  fieldText(card, p.Fields.Price),
			Address:   fieldText(card, p.Fields.Address),
			Details:   fieldText(card, p.Fields.Details),
			Beds:      fieldText(card, p.Fields.Beds),
			Baths:     fieldText(card, p.Fields.Baths),
			Link:      resolveRef(base, card.Find("a").First().AttrOr("href", "")),
			ImageURL:  resolveRef(base, card.Find("img").First().AttrOr("src", "")),
			Source:    p.Source,
			ScrapedAt: now,
		}
		if r.HasData() {
			listings = append(listings, r)
		}
	})

	if len(listings) == 0 {
		return nil, &scraper.NoListingsFoundError{Selector: selector}
	}
	return &scraper.CollectResult{Listings: listings, Selector: selector}, nil
}

// resolveCards returns the first candidate selector with at least one match.
// Later candidates are never tried.
func resolveCards(doc *goquery.Document, candidates []string) (string, *goquery.Selection) {
	for _, sel := range candidates {
		if s := doc.Find(sel); s.Length() > 0 {
			return sel, s
		}
	}
	return "", nil
}

func fieldText(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(card.Find(selector).First().Text())
}

// resolveRef makes relative hrefs absolute against the page URL so the
// listing URL stays a stable identity.
func resolveRef(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
