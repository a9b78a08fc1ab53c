package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"realestate-scraper/models"
	"realestate-scraper/utils"
)

var (
	// numberRegexp captures the first numeric value after symbol stripping
	numberRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)
	// leadingIntRegexp captures the integer token opening a string like "3 Beds"
	leadingIntRegexp = regexp.MustCompile(`^\s*(\d+)`)
	// leadingFloatRegexp captures the numeric token opening a string like "2.5 Baths"
	leadingFloatRegexp = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)
	// bedsRegexp / bathsRegexp scan a combined details string ("3 Beds 2 Baths")
	bedsRegexp  = regexp.MustCompile(`(?i)(\d+)\s*(?:beds?|bd|br)\b`)
	bathsRegexp = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:baths?|ba)\b`)
)

// Normalizer converts raw extracted listings into typed records ready for the
// persistence sink. Field parse failures become nil values; only a missing
// listing URL drops the record, since it cannot be upserted safely.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize processes raw listings and returns persistable records plus the
// number skipped for missing listing URLs.
func (n *Normalizer) Normalize(raw []*models.RawListing) ([]*models.Listing, int) {
	seen := make(map[string]struct{})
	result := make([]*models.Listing, 0, len(raw))
	skipped := 0

	for _, r := range raw {
		link := strings.TrimSpace(r.Link)
		if link == "" {
			n.logger.Warn("[normalize] Dropping listing without a URL: %q (%s)", r.Title, r.Source)
			skipped++
			continue
		}

		if _, dup := seen[link]; dup {
			n.logger.Debug("[normalize] Duplicate URL skipped: %s", link)
			continue
		}
		seen[link] = struct{}{}

		listing := &models.Listing{
			ListingURL:    link,
			Title:         normaliseText(r.Title),
			Price:         n.parsePrice(r.RawPrice),
			Location:      normaliseText(r.Address),
			Bedrooms:      n.parseBedrooms(r.Beds, r.Details),
			Bathrooms:     n.parseBathrooms(r.Baths, r.Details),
			ImageURL:      strings.TrimSpace(r.ImageURL),
			SourceWebsite: r.Source,
		}

		result = append(result, listing)
	}

	n.logger.Info("[normalize] %d raw → %d records (skipped %d)", len(raw), len(result), skipped)
	return result, skipped
}

// parsePrice strips currency symbols and thousands separators and parses the
// remainder. "Contact for price" and friends yield nil, not an error.
//
//	"$450,000"  → 450000
//	"$1,299,900" → 1299900
func (n *Normalizer) parsePrice(raw string) *float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", "CAD", "", "USD", "").Replace(raw)
	match := numberRegexp.FindString(cleaned)
	if match == "" {
		return nil
	}

	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &val
}

// parseBedrooms reads the leading integer of a string like "3 Beds", falling
// back to scanning the combined details string.
func (n *Normalizer) parseBedrooms(beds, details string) *int {
	if m := leadingIntRegexp.FindStringSubmatch(beds); len(m) == 2 {
		if val, err := strconv.Atoi(m[1]); err == nil {
			return &val
		}
	}
	if m := bedsRegexp.FindStringSubmatch(details); len(m) == 2 {
		if val, err := strconv.Atoi(m[1]); err == nil {
			return &val
		}
	}
	return nil
}

// parseBathrooms reads the leading numeric token of a string like "2.5 Baths"
// (half-baths stay expressible), falling back to the details string.
func (n *Normalizer) parseBathrooms(baths, details string) *float64 {
	if m := leadingFloatRegexp.FindStringSubmatch(baths); len(m) == 2 {
		if val, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &val
		}
	}
	if m := bathsRegexp.FindStringSubmatch(details); len(m) == 2 {
		if val, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &val
		}
	}
	return nil
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
