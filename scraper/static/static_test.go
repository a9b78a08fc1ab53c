package static

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-scraper/config"
	"realestate-scraper/scraper"
	"realestate-scraper/utils"
)

const listingsPage = `<!DOCTYPE html>
<html><body>
<div id="results">
	<div class="listingCard">
		<span class="listingCardPrice">$399,900</span>
		<div class="listingCardAddress">12 Main St, Toronto, ON</div>
		<span class="listingCardIconNum">3 Beds</span>
		<span class="listingCardBaths">2 Baths</span>
		<a href="/listing/123">View</a>
		<img src="/photos/123.jpg">
	</div>
	<div class="listingCard">
		<span class="listingCardPrice">$1,250,000</span>
		<div class="listingCardAddress">99 King St W, Toronto, ON</div>
		<a href="https://example.org/listing/456">View</a>
	</div>
	<div class="listingCard"></div>
</div>
</body></html>`

func testProfile(pageURL string) config.SiteProfile {
	return config.SiteProfile{
		Name:          "point2homes",
		Source:        config.SourcePoint2Homes,
		Engine:        config.EngineStatic,
		URL:           pageURL,
		CardSelectors: []string{".item-wrap", ".listingCard"},
		Fields: config.FieldPatterns{
			Price:   ".listingCardPrice",
			Address: ".listingCardAddress",
			Beds:    ".listingCardIconNum",
			Baths:   ".listingCardBaths",
		},
	}
}

func TestCollectExtractsListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingsPage))
	}))
	defer srv.Close()

	e := NewEngine(utils.NewLogger())
	res, err := e.Collect(context.Background(), testProfile(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, ".listingCard", res.Selector, "first matching candidate wins")
	require.Len(t, res.Listings, 2, "the empty card must be filtered out")

	first := res.Listings[0]
	assert.Equal(t, "$399,900", first.RawPrice)
	assert.Equal(t, "12 Main St, Toronto, ON", first.Address)
	assert.Equal(t, "3 Beds", first.Beds)
	assert.Equal(t, "2 Baths", first.Baths)
	assert.Equal(t, srv.URL+"/listing/123", first.Link, "relative hrefs must resolve against the page URL")
	assert.Equal(t, srv.URL+"/photos/123.jpg", first.ImageURL)
	assert.Equal(t, config.SourcePoint2Homes, first.Source)

	second := res.Listings[1]
	assert.Equal(t, "https://example.org/listing/456", second.Link, "absolute hrefs pass through")
}

func TestCollectNoSelectorMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>redesigned page</p></body></html>`))
	}))
	defer srv.Close()

	e := NewEngine(utils.NewLogger())
	_, err := e.Collect(context.Background(), testProfile(srv.URL))
	require.Error(t, err)

	var nfe *scraper.NotFoundError
	require.True(t, errors.As(err, &nfe))
	assert.Equal(t, []string{".item-wrap", ".listingCard"}, nfe.Candidates)
}

func TestCollectCardsWithoutData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="listingCard"></div><div class="listingCard"></div></body></html>`))
	}))
	defer srv.Close()

	e := NewEngine(utils.NewLogger())
	_, err := e.Collect(context.Background(), testProfile(srv.URL))
	require.Error(t, err)

	var nle *scraper.NoListingsFoundError
	require.True(t, errors.As(err, &nle))
	assert.Equal(t, ".listingCard", nle.Selector)
}

func TestCollectNon200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	e := NewEngine(utils.NewLogger())
	_, err := e.Collect(context.Background(), testProfile(srv.URL))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "403"))
}

func TestCollectSendsBrowserHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(listingsPage))
	}))
	defer srv.Close()

	e := NewEngine(utils.NewLogger())
	_, err := e.Collect(context.Background(), testProfile(srv.URL))
	require.NoError(t, err)
	assert.Contains(t, gotUA, "Mozilla/5.0")
}
