package services

import (
	"testing"
	"time"

	"realestate-scraper/models"
	"realestate-scraper/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func TestNormalizerParsePrice(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	tests := []struct {
		raw  string
		want *float64
	}{
		{"$450,000", fptr(450000)},
		{"$1,299,900", fptr(1299900)},
		{"CAD 750,000", fptr(750000)},
		{"$389,900.50", fptr(389900.50)},
		{"Contact for price", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := n.parsePrice(tt.raw)
		if !floatPtrEq(got, tt.want) {
			t.Errorf("parsePrice(%q) = %v; want %v", tt.raw, fstr(got), fstr(tt.want))
		}
	}
}

func TestNormalizerParseBedrooms(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	tests := []struct {
		beds    string
		details string
		want    *int
	}{
		{"3 Beds", "", iptr(3)},
		{"2", "", iptr(2)},
		{"", "3 Beds 2 Baths", iptr(3)},
		{"", "4 bd | 3 ba | 2,100 sqft", iptr(4)},
		{"", "", nil},
		{"Studio", "", nil},
	}

	for _, tt := range tests {
		got := n.parseBedrooms(tt.beds, tt.details)
		if !intPtrEq(got, tt.want) {
			t.Errorf("parseBedrooms(%q, %q) = %v; want %v", tt.beds, tt.details, istr(got), istr(tt.want))
		}
	}
}

func TestNormalizerParseBathrooms(t *testing.T) {
	n := NewNormalizer(newTestLogger())

	tests := []struct {
		baths   string
		details string
		want    *float64
	}{
		{"2.5 Baths", "", fptr(2.5)},
		{"1 Bath", "", fptr(1)},
		{"", "3 Beds 2 Baths", fptr(2)},
		{"", "", nil},
	}

	for _, tt := range tests {
		got := n.parseBathrooms(tt.baths, tt.details)
		if !floatPtrEq(got, tt.want) {
			t.Errorf("parseBathrooms(%q, %q) = %v; want %v", tt.baths, tt.details, fstr(got), fstr(tt.want))
		}
	}
}

func TestNormalizerDropsMissingLink(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	raw := []*models.RawListing{
		{Title: "No link", RawPrice: "$100,000", Source: "realtor.ca", ScrapedAt: time.Now()},
		{Title: "Has link", RawPrice: "$200,000", Link: "https://www.realtor.ca/real-estate/1", Source: "realtor.ca", ScrapedAt: time.Now()},
	}

	listings, skipped := n.Normalize(raw)
	if len(listings) != 1 {
		t.Errorf("expected 1 listing after dropping missing link, got %d", len(listings))
	}
	if skipped != 1 {
		t.Errorf("expected skipped = 1, got %d", skipped)
	}
}

func TestNormalizerDeduplicatesLink(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	raw := []*models.RawListing{
		{Title: "A", Link: "https://www.realtor.ca/real-estate/1", Source: "realtor.ca", ScrapedAt: time.Now()},
		{Title: "B", Link: "https://www.realtor.ca/real-estate/1", Source: "realtor.ca", ScrapedAt: time.Now()},
	}

	listings, skipped := n.Normalize(raw)
	if len(listings) != 1 {
		t.Errorf("expected 1 listing after deduplication, got %d", len(listings))
	}
	if skipped != 0 {
		t.Errorf("duplicates should not count as skipped, got %d", skipped)
	}
}

func TestNormalizerPartialRecordSurvives(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	raw := []*models.RawListing{
		{
			Title:     "  123   Maple St  ",
			RawPrice:  "Call for details",
			Link:      "https://www.realtor.ca/real-estate/2",
			Source:    "realtor.ca",
			ScrapedAt: time.Now(),
		},
	}

	listings, _ := n.Normalize(raw)
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}

	l := listings[0]
	if l.Title != "123 Maple St" {
		t.Errorf("expected collapsed title, got %q", l.Title)
	}
	if l.Price != nil {
		t.Errorf("expected nil price for unparseable value, got %v", *l.Price)
	}
	if l.Bedrooms != nil || l.Bathrooms != nil {
		t.Errorf("expected nil beds/baths for missing fields")
	}
}

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func floatPtrEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fstr(f *float64) interface{} {
	if f == nil {
		return "<nil>"
	}
	return *f
}

func istr(i *int) interface{} {
	if i == nil {
		return "<nil>"
	}
	return *i
}
