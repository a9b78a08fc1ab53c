package storage

import (
	"context"

	"realestate-scraper/models"
)

// Upserter persists normalized listings, updating rows that already
// exist for the same listing URL.
type Upserter interface {
	Upsert(ctx context.Context, listings []*models.Listing) (int, error)
}

// RawArchiver records the raw extracted rows of a run before
// normalization, for offline inspection.
type RawArchiver interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}
