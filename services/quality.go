package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"wildguard/models"
	"wildguard/utils"
)

// Per-match bonuses for the relevance score. The base is deliberately not
// zero: text that survived the rejection filter is more likely than not at
// least borderline relevant.
const (
	qualityBaseScore = 0.3

	liveAnimalBonus     = 0.18
	animalPartBonus     = 0.15
	traffickingBonus    = 0.13
	generalWildBonus    = 0.10
	criticalSpeciesQual = 0.18
)

// priceTokenRegexp captures the leading numeric token of a raw price
// string, separators included.
var priceTokenRegexp = regexp.MustCompile(`\d[\d.,]*`)

// QualityScorer computes a bounded [0,1] quality score and an initial
// threat tier for listings that survived the rejection filter. It is pure
// per listing and safe for concurrent use.
type QualityScorer struct {
	threshold float64
	logger    *utils.Logger
}

// NewQualityScorer creates a QualityScorer with the given inclusion
// threshold. The default of 0.2 favours recall: downstream stages can still
// exclude, but nothing excluded here gets a second look.
func NewQualityScorer(threshold float64, logger *utils.Logger) *QualityScorer {
	return &QualityScorer{threshold: threshold, logger: logger}
}

// Assess scores a single listing. It never fails, whatever shape the input
// has: missing fields simply contribute nothing.
func (s *QualityScorer) Assess(listing *models.RawListing) models.QualityAssessment {
	text := listing.CombinedText()

	if len(strings.TrimSpace(text)) < 3 {
		return models.QualityAssessment{
			ShouldInclude: false,
			QualityScore:  0,
			ThreatLevel:   models.LevelUnrated,
			Confidence:    0.9,
			Reason:        "empty or near-empty listing text",
		}
	}

	score := qualityBaseScore
	var notes []string

	wildlifeMatches := 0
	for _, cat := range []struct {
		name  string
		bonus float64
		terms []string
	}{
		{"live-animal", liveAnimalBonus, liveAnimalTerms},
		{"animal-part", animalPartBonus, animalPartTerms},
		{"trafficking-language", traffickingBonus, traffickingLanguageTerms},
		{"general-wildlife", generalWildBonus, generalWildlifeTerms},
		{"critical-species", criticalSpeciesQual, criticalSpecies},
	} {
		n := countTerms(text, cat.terms)
		if n > 0 {
			score += float64(n) * cat.bonus
			wildlifeMatches += n
			notes = append(notes, fmt.Sprintf("%d %s", n, cat.name))
		}
	}

	if price, ok := ParsePrice(listing.RawPrice); ok {
		switch {
		case price > 10000:
			score += 0.18
		case price > 1000:
			score += 0.12
		case price > 100:
			score += 0.08
		case price > 0 && price < 10:
			score -= 0.15 // suspiciously cheap items are almost always fakes
		}
	}

	if loc := strings.ToLower(listing.Location); loc != "" {
		for _, region := range highRiskRegions {
			if strings.Contains(loc, region) {
				score += 0.08
				notes = append(notes, "high-risk region: "+region)
				break
			}
		}
	}

	switch n := len(listing.Title); {
	case n > 50:
		score += 0.05
	case n < 10:
		score -= 0.10
	}

	if term := strings.ToLower(listing.SearchTerm); term != "" && strings.Contains(text, term) {
		score += 0.05
	}

	score += platformQualityNudge[strings.ToLower(listing.Platform)]

	for _, term := range suspiciousSaleTerms {
		if strings.Contains(text, term) {
			score -= 0.05
		}
	}

	score = clampFloat(score, 0, 1)
	include := score > s.threshold

	level := models.LevelUnrated
	if include {
		level = qualityTier(score, text)
	}

	confidence := qualityConfidence(score, text, wildlifeMatches)

	reason := "no wildlife terms matched"
	if len(notes) > 0 {
		reason = strings.Join(notes, ", ")
	}

	return models.QualityAssessment{
		ShouldInclude: include,
		QualityScore:  score,
		ThreatLevel:   level,
		Confidence:    confidence,
		Reason:        reason,
	}
}

func qualityTier(score float64, text string) models.ThreatLevel {
	switch {
	case score > 0.75 && anyTerm(text, criticalIndicatorTerms):
		return models.LevelCritical
	case score > 0.65 || anyTerm(text, highIndicatorTerms):
		return models.LevelHigh
	case score > 0.45:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}

func qualityConfidence(score float64, text string, wildlifeMatches int) float64 {
	c := 0.5
	switch {
	case score > 0.8 || score < 0.2:
		c = 0.9
	case score > 0.6 || score < 0.4:
		c = 0.75
	}

	if wildlifeMatches > 3 {
		c += 0.1
	}

	// A reject-category term slipping past the rejection filter is a weak
	// signal the text is genuinely ambiguous: we are confident either way.
	if containsRejectTerm(text) {
		c = 0.95
	}

	if len(text) > 100 {
		c += 0.05
	} else if len(text) < 20 {
		c -= 0.1
	}

	return clampFloat(c, 0.1, 0.99)
}

// ParsePrice extracts the leading numeric token from a locale-ambiguous
// price string. Disambiguation: when both separators appear, the one
// occurring last is the decimal separator; a lone comma is decimal only
// when at most two digits follow it. A lone period is always decimal.
// Known approximation — Indian digit grouping ("1,23,456") will misparse.
func ParsePrice(raw string) (float64, bool) {
	token := priceTokenRegexp.FindString(raw)
	if token == "" {
		return 0, false
	}
	token = strings.Trim(token, ".,")

	lastComma := strings.LastIndex(token, ",")
	lastDot := strings.LastIndex(token, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastDot > lastComma {
			// 1,234.56 — comma groups thousands
			token = strings.ReplaceAll(token, ",", "")
		} else {
			// 1.234,56 — period groups thousands, comma is decimal
			token = strings.ReplaceAll(token, ".", "")
			token = strings.Replace(token, ",", ".", 1)
		}
	case lastComma >= 0:
		if len(token)-lastComma-1 <= 2 {
			token = strings.Replace(token, ",", ".", 1)
		} else {
			token = strings.ReplaceAll(token, ",", "")
		}
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func countTerms(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}

func anyTerm(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
