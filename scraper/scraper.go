// Package scraper defines the common interface every marketplace
// ingestion adapter implements.
package scraper

import (
	"context"

	"wildguard/models"
)

// Adapter fetches raw listings from one marketplace for a set of search
// keywords. Implementations are expected to dedupe by URL within a run
// and to return whatever they managed to collect alongside any error.
type Adapter interface {
	// Platform returns the marketplace identifier, e.g. "ebay".
	Platform() string

	// Fetch runs the keyword searches and returns the raw listings found.
	Fetch(ctx context.Context, keywords []string) ([]*models.RawListing, error)
}
