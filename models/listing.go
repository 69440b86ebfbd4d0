package models

import (
	"strings"
	"time"
)

// RawListing holds an unprocessed marketplace listing exactly as an
// ingestion adapter produced it. This is written to CSV before any
// filtering or scoring.
type RawListing struct {
	Title       string
	Description string
	RawPrice    string
	Location    string
	URL         string
	ImageURL    string
	SearchTerm  string
	Platform    string
	ScrapedAt   time.Time
}

// CombinedText returns the lowercased title + description used by every
// text-matching stage.
func (l *RawListing) CombinedText() string {
	if l.Description == "" {
		return strings.ToLower(l.Title)
	}
	return strings.ToLower(l.Title + " " + l.Description)
}
