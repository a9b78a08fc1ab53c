package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"realestate-scraper/models"
	"realestate-scraper/utils"
)

const upsertBatchSize = 50

const schema = `
CREATE TABLE IF NOT EXISTS real_estate_listings (
	id             SERIAL PRIMARY KEY,
	listing_url    TEXT UNIQUE NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	price          NUMERIC(12,2),
	location       TEXT NOT NULL DEFAULT '',
	bedrooms       INTEGER,
	bathrooms      NUMERIC(3,1),
	image_url      TEXT NOT NULL DEFAULT '',
	source_website VARCHAR(50) NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_listings_source ON real_estate_listings (source_website);
CREATE INDEX IF NOT EXISTS idx_listings_price ON real_estate_listings (price);
`

// Connect opens a Postgres connection pool and verifies it with a
// retried ping, so the scraper survives the database coming up late.
func Connect(dsn string, retry *utils.RetryConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return db, nil
}

// PostgresStore persists listings in the real_estate_listings table.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the listings table and its indexes if missing.
func (s *PostgresStore) Migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating real_estate_listings table: %w", err)
	}
	return nil
}

// Upsert writes listings in batches, keyed on listing_url. Existing
// rows are refreshed in place and their updated_at bumped; created_at
// keeps the timestamp of the first sighting. Returns the number of
// rows written.
func (s *PostgresStore) Upsert(ctx context.Context, listings []*models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	written := 0
	for start := 0; start < len(listings); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(listings) {
			end = len(listings)
		}
		batch := listings[start:end]

		if err := s.upsertBatch(ctx, batch); err != nil {
			return written, err
		}
		written += len(batch)
	}

	return written, nil
}

func (s *PostgresStore) upsertBatch(ctx context.Context, batch []*models.Listing) error {
	const columns = 8

	placeholders := make([]string, 0, len(batch))
	args := make([]interface{}, 0, len(batch)*columns)
	for i, l := range batch {
		base := i * columns
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args,
			l.ListingURL, l.Title, l.Price, l.Location,
			l.Bedrooms, l.Bathrooms, l.ImageURL, l.SourceWebsite,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO real_estate_listings
			(listing_url, title, price, location, bedrooms, bathrooms, image_url, source_website)
		VALUES %s
		ON CONFLICT (listing_url) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			location = EXCLUDED.location,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			image_url = EXCLUDED.image_url,
			source_website = EXCLUDED.source_website,
			updated_at = NOW()`,
		strings.Join(placeholders, ", "),
	)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting batch of %d listings: %w", len(batch), err)
	}
	return nil
}

// FetchAll returns every stored listing, newest first.
func (s *PostgresStore) FetchAll(ctx context.Context) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := s.db.SelectContext(ctx, &listings, `
		SELECT id, listing_url, title, price, location, bedrooms, bathrooms,
		       image_url, source_website, created_at, updated_at
		FROM real_estate_listings
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("fetching listings: %w", err)
	}
	return listings, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
