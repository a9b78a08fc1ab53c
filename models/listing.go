package models

import "time"

// RawListing holds unprocessed field strings pulled from one listing card.
// It lives only between extraction and normalization (plus an optional CSV
// archive) and is never persisted in this form.
type RawListing struct {
	Title    string
	RawPrice string
	Address  string
	Details  string
	Beds     string
	Baths    string
	Link     string
	ImageURL string

	Source    string
	ScrapedAt time.Time
}

// HasData reports whether any extracted field carries a value. Cards that
// matched the selector but yielded nothing are not counted as listings.
func (r *RawListing) HasData() bool {
	return r.Title != "" || r.RawPrice != "" || r.Address != "" || r.Details != "" ||
		r.Beds != "" || r.Baths != "" || r.Link != "" || r.ImageURL != ""
}

// Listing is the normalized record persisted to PostgreSQL. The listing URL
// is the identity of a listing across scrape runs; numeric fields are nil
// when the source string could not be parsed.
type Listing struct {
	ID            int64     `db:"id" json:"id"`
	ListingURL    string    `db:"listing_url" json:"listing_url"`
	Title         string    `db:"title" json:"title"`
	Price         *float64  `db:"price" json:"price"`
	Location      string    `db:"location" json:"location"`
	Bedrooms      *int      `db:"bedrooms" json:"bedrooms"`
	Bathrooms     *float64  `db:"bathrooms" json:"bathrooms"`
	ImageURL      string    `db:"image_url" json:"image_url"`
	SourceWebsite string    `db:"source_website" json:"source_website"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ScrapeReport summarizes one orchestrator run. It is logged, not persisted.
type ScrapeReport struct {
	StartedAt time.Time
	Duration  time.Duration

	// Per-profile bookkeeping, keyed by profile name.
	SelectorsUsed map[string]string
	Failures      map[string]string

	RawCount     int
	SkippedCount int
	Written      int
}

// InsightReport holds the computed aggregates over the stored dataset.
type InsightReport struct {
	TotalListings    int            `json:"total_listings"`
	AveragePrice     float64        `json:"average_price"`
	MinPrice         float64        `json:"min_price"`
	MaxPrice         float64        `json:"max_price"`
	MostExpensive    *Listing       `json:"most_expensive,omitempty"`
	ListingsBySource map[string]int `json:"listings_by_source"`
	ListingsByCity   map[string]int `json:"listings_by_city"`
}
