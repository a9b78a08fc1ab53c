package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"realestate-scraper/config"
	"realestate-scraper/models"
	"realestate-scraper/scraper"
)

type rawCard struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Address  string `json:"address"`
	Details  string `json:"details"`
	Beds     string `json:"beds"`
	Baths    string `json:"baths"`
	Link     string `json:"link"`
	ImageURL string `json:"image_url"`
}

// extractListings evaluates a read-only query over every element matching the
// resolved card selector. Each field read is independently null-safe: a
// missing sub-element yields an empty string, never an aborted card.
func extractListings(ctx context.Context, selector string, p config.SiteProfile) ([]*models.RawListing, error) {
	var cards []rawCard
	if err := chromedp.Run(ctx, chromedp.Evaluate(extractionScript(selector, p.Fields), &cards)); err != nil {
		return nil, fmt.Errorf("extract %s: %w", p.Name, err)
	}

	now := time.Now()
	listings := make([]*models.RawListing, 0, len(cards))
	for _, c := range cards {
		r := &models.RawListing{
			Title:     strings.TrimSpace(c.Title),
			RawPrice:  strings.TrimSpace(c.Price),
			Address:   strings.TrimSpace(c.Address),
			Details:   strings.TrimSpace(c.Details),
			Beds:      strings.TrimSpace(c.Beds),
			Baths:     strings.TrimSpace(c.Baths),
			Link:      strings.TrimSpace(c.Link),
			ImageURL:  strings.TrimSpace(c.ImageURL),
			Source:    p.Source,
			ScrapedAt: now,
		}
		if r.HasData() {
			listings = append(listings, r)
		}
	}

	if len(listings) == 0 {
		return nil, &scraper.NoListingsFoundError{Selector: selector}
	}
	return listings, nil
}

// extractionScript builds the in-page IIFE that reads raw field strings out
// of every card. Field patterns come from the site profile so a markup change
// stays a data edit.
func extractionScript(cardSelector string, f config.FieldPatterns) string {
	return `(function() {
		function read(card, sel) {
			if (!sel) return '';
			var el = card.querySelector(sel);
			return el && el.textContent ? el.textContent.trim() : '';
		}
		var cards = document.querySelectorAll(` + strconv.Quote(cardSelector) + `);
		var out = [];
		for (var i = 0; i < cards.length; i++) {
			var card = cards[i];
			var a = card.querySelector('a');
			var img = card.querySelector('img');
			out.push({
				title:     read(card, ` + strconv.Quote(f.Title) + `),
				price:     read(card, ` + strconv.Quote(f.Price) + `),
				address:   read(card, ` + strconv.Quote(f.Address) + `),
				details:   read(card, ` + strconv.Quote(f.Details) + `),
				beds:      read(card, ` + strconv.Quote(f.Beds) + `),
				baths:     read(card, ` + strconv.Quote(f.Baths) + `),
				link:      a && a.href ? a.href : '',
				image_url: img ? (img.currentSrc || img.getAttribute('src') || '') : ''
			});
		}
		return out;
	})()`
}
