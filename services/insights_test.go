package services

import (
	"testing"

	"realestate-scraper/models"
	"realestate-scraper/utils"
)

func sampleListings() []*models.Listing {
	return []*models.Listing{
		{SourceWebsite: "realtor.ca", Price: fptr(450000), Location: "12 Main St, Toronto, ON", ListingURL: "https://www.realtor.ca/real-estate/1"},
		{SourceWebsite: "realtor.ca", Price: fptr(650000), Location: "99 King St W, Toronto, ON", ListingURL: "https://www.realtor.ca/real-estate/2"},
		{SourceWebsite: "point2homes.com", Price: fptr(899000), Location: "4 Bay Ave, Ottawa, ON", ListingURL: "https://www.point2homes.com/listing/3"},
		{SourceWebsite: "realtor.ca", Price: nil, Location: "1 Elm Rd, Ottawa, ON", ListingURL: "https://www.realtor.ca/real-estate/4"},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(utils.NewLogger())
	r := svc.Generate(sampleListings())
	if r.TotalListings != 4 {
		t.Errorf("TotalListings: got %d, want 4", r.TotalListings)
	}
	if r.ListingsBySource["realtor.ca"] != 3 {
		t.Errorf("realtor.ca count: got %d, want 3", r.ListingsBySource["realtor.ca"])
	}
	if r.ListingsBySource["point2homes.com"] != 1 {
		t.Errorf("point2homes.com count: got %d, want 1", r.ListingsBySource["point2homes.com"])
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(utils.NewLogger())
	r := svc.Generate(sampleListings())

	// Unpriced listings are excluded from price statistics.
	wantAvg := (450000.0 + 650000.0 + 899000.0) / 3
	if r.AveragePrice != round2(wantAvg) {
		t.Errorf("AveragePrice: got %.2f, want %.2f", r.AveragePrice, round2(wantAvg))
	}
	if r.MinPrice != 450000 {
		t.Errorf("MinPrice: got %.2f, want 450000", r.MinPrice)
	}
	if r.MaxPrice != 899000 {
		t.Errorf("MaxPrice: got %.2f, want 899000", r.MaxPrice)
	}
}

func TestInsightMostExpensive(t *testing.T) {
	svc := NewInsightService(utils.NewLogger())
	r := svc.Generate(sampleListings())
	if r.MostExpensive == nil {
		t.Fatal("MostExpensive should not be nil")
	}
	if r.MostExpensive.ListingURL != "https://www.point2homes.com/listing/3" {
		t.Errorf("MostExpensive: got %q", r.MostExpensive.ListingURL)
	}
}

func TestInsightCityGrouping(t *testing.T) {
	svc := NewInsightService(utils.NewLogger())
	r := svc.Generate(sampleListings())
	if r.ListingsByCity["Toronto"] != 2 {
		t.Errorf("Toronto count: got %d, want 2", r.ListingsByCity["Toronto"])
	}
	if r.ListingsByCity["Ottawa"] != 2 {
		t.Errorf("Ottawa count: got %d, want 2", r.ListingsByCity["Ottawa"])
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(utils.NewLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 {
		t.Errorf("expected 0 total listings for empty input")
	}
	if r.MostExpensive != nil {
		t.Error("MostExpensive should be nil with no listings")
	}
}

func TestCityOf(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"12 Main St, Toronto, ON", "Toronto"},
		{"Toronto", "Toronto"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cityOf(tt.location); got != tt.want {
			t.Errorf("cityOf(%q) = %q, want %q", tt.location, got, tt.want)
		}
	}
}
