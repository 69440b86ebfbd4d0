package storage

import (
	"context"

	"wildguard/models"
)

// DetectionSink is the interface any detection storage backend must
// satisfy. Implementations deduplicate by listing URL.
type DetectionSink interface {
	Write(ctx context.Context, detections []*models.Detection) (inserted int, err error)
	Close() error
}

// RawListingWriter is the interface for persisting unprocessed scraped
// data as an audit trail.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}
