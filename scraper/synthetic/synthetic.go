// Package synthetic generates deterministic fake listings for load testing
// the analysis pipeline. It performs no network calls and is never enabled
// in production scans: the generator only runs when SYNTHETIC_LISTINGS is
// set, and every listing it emits is tagged with the "synthetic" platform
// so downstream consumers can tell fixture data from real ingestion.
package synthetic

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"time"

	"wildguard/models"
)

const platform = "synthetic"

// Generator produces a fixed number of listings per keyword, derived from
// an FNV hash of (seed, keyword, index). Same inputs, same output.
type Generator struct {
	seed       uint64
	perKeyword int
}

// New creates a Generator emitting perKeyword listings for each keyword.
func New(seed uint64, perKeyword int) *Generator {
	if perKeyword <= 0 {
		perKeyword = 25
	}
	return &Generator{seed: seed, perKeyword: perKeyword}
}

// Platform returns the fixture platform identifier.
func (g *Generator) Platform() string { return platform }

var titleTemplates = []string{
	"Vintage %s figurine, estate sale find",
	"Antique %s collection piece, pre-owned",
	"Genuine %s craft item, hand made",
	"Rare %s specimen for serious collectors",
	"%s decor piece, no questions asked",
	"Beautiful carved %s statue, quick sale",
}

var descriptionTemplates = []string{
	"Inherited from a relative, selling as-is. Cash only, discreet shipping available.",
	"Part of a private collection for decades. Serious buyers contact me directly.",
	"Bought overseas years ago. No papers but guaranteed authentic.",
	"Decorative item in good condition. Pickup preferred.",
	"Moving abroad and must sell everything this week.",
}

var locations = []string{
	"Bangkok, Thailand", "Hanoi, Vietnam", "Lagos, Nigeria",
	"Portland, OR", "Miami, FL", "Rotterdam, Netherlands",
}

// Fetch generates listings for every keyword. The context is accepted for
// interface compatibility and only checked between keywords.
func (g *Generator) Fetch(ctx context.Context, keywords []string) ([]*models.RawListing, error) {
	now := time.Now().UTC()
	listings := make([]*models.RawListing, 0, len(keywords)*g.perKeyword)

	for _, keyword := range keywords {
		if err := ctx.Err(); err != nil {
			return listings, err
		}
		for i := 0; i < g.perKeyword; i++ {
			listings = append(listings, g.generate(keyword, i, now))
		}
	}

	return listings, nil
}

func (g *Generator) generate(keyword string, index int, now time.Time) *models.RawListing {
	h := g.hash(keyword, index)

	title := fmt.Sprintf(titleTemplates[h%uint64(len(titleTemplates))], keyword)
	description := descriptionTemplates[(h>>8)%uint64(len(descriptionTemplates))]
	location := locations[(h>>16)%uint64(len(locations))]
	price := 20 + (h>>24)%2400

	return &models.RawListing{
		Title:       title,
		Description: description,
		RawPrice:    fmt.Sprintf("$%d", price),
		Location:    location,
		URL:         fmt.Sprintf("https://synthetic.invalid/listing/%x", h),
		SearchTerm:  keyword,
		Platform:    platform,
		ScrapedAt:   now,
	}
}

func (g *Generator) hash(keyword string, index int) uint64 {
	h := fnv.New64a()

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], g.seed)
	h.Write(buf[:])
	h.Write([]byte(keyword))
	binary.BigEndian.PutUint64(buf[:], uint64(index))
	h.Write(buf[:])

	return h.Sum64()
}
