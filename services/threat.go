package services

import (
	"fmt"
	"strings"

	"wildguard/models"
	"wildguard/utils"
)

// Weighted term bonuses for the two threat axes. Age-related red flags are
// the single highest-weight signal in the system.
const (
	criticalSpeciesWeight = 45
	highPriorityWeight    = 30
	scientificNameWeight  = 35
	wildlifeLanguageBonus = 25
	multiIndicatorBonus   = 20

	ageConcernWeight     = 50
	controlPatternWeight = 40
	escortServiceWeight  = 35
	financialWeight      = 35
	codedLanguageWeight  = 30
	employmentWeight     = 25

	availabilityBonus = 15
	cashOnlyBonus     = 12
	escortClusterMin  = 3
	escortCluster     = 20

	unambiguousExclusionWeight = -50
	cheapReplicaWeight         = -25
	multilingualRejectWeight   = -15

	safeOverridePenalty = -40
)

// ThreatScorer re-scores a listing along two independent axes — wildlife
// trafficking and human trafficking — using a prior score as the baseline.
// It is a pure function per listing; the only state is the static term
// tables.
type ThreatScorer struct {
	logger *utils.Logger
}

// NewThreatScorer creates a ThreatScorer.
func NewThreatScorer(logger *utils.Logger) *ThreatScorer {
	return &ThreatScorer{logger: logger}
}

// axisResult accumulates one axis's score and diagnostic trail.
type axisResult struct {
	score      int
	indicators []string
}

func (a *axisResult) add(weight int, indicator string) {
	a.score += weight
	a.indicators = append(a.indicators, indicator)
}

// Analyze scores the listing against both axes and folds the result into
// originalScore (0–100 scale, from any upstream source). It never fails.
func (s *ThreatScorer) Analyze(listing *models.RawListing, originalScore int) models.ThreatAnalysis {
	text := listing.CombinedText()
	price, hasPrice := ParsePrice(listing.RawPrice)

	exclusions, penalty := s.scanExclusions(text, price, hasPrice)
	wildlife, criticalCount, hasScientific := s.scoreWildlife(text, price, hasPrice)
	human, hasAgeConcern := s.scoreHumanTrafficking(text)

	category := decideCategory(penalty, wildlife.score, human.score)
	enhanced := enhanceScore(originalScore, wildlife.score, human.score, penalty, listing.Platform)
	level := decideLevel(category, enhanced, hasAgeConcern)

	review := category == models.CategoryHumanTrafficking ||
		category == models.CategoryBoth ||
		hasAgeConcern ||
		enhanced >= 85 ||
		criticalCount >= 2

	confidence := threatConfidence(
		len(wildlife.indicators)+len(human.indicators),
		len(exclusions), enhanced, hasScientific, hasAgeConcern,
	)

	return models.ThreatAnalysis{
		OriginalScore:              originalScore,
		EnhancedScore:              enhanced,
		Category:                   category,
		Level:                      level,
		WildlifeIndicators:         wildlife.indicators,
		HumanTraffickingIndicators: human.indicators,
		ExclusionFactors:           exclusions,
		Confidence:                 confidence,
		Reasoning: buildReasoning(originalScore, enhanced, category,
			wildlife.indicators, human.indicators, len(exclusions)),
		RequiresHumanReview: review,
	}
}

// scanExclusions collects false-positive signals. The returned penalty is
// negative (or zero); a cumulative penalty at or below -40 later forces the
// SAFE category regardless of anything else.
func (s *ThreatScorer) scanExclusions(text string, price float64, hasPrice bool) ([]string, int) {
	var factors []string
	penalty := 0

	for _, term := range unambiguousExclusions {
		if strings.Contains(text, term) {
			penalty += unambiguousExclusionWeight
			factors = append(factors, "unambiguous: "+term)
		}
	}

	for _, cat := range exclusionCategories {
		for _, term := range cat.terms {
			if strings.Contains(text, term) {
				penalty += cat.weight
				factors = append(factors, cat.name+": "+term)
			}
		}
	}

	for _, lang := range rejectLanguageOrder {
		for _, term := range rejectLanguages[lang] {
			if strings.Contains(text, term) {
				penalty += multilingualRejectWeight
				factors = append(factors, lang+": "+term)
			}
		}
	}

	if hasPrice && price > 0 && price < 20 && anyTerm(text, lowPriceToyTerms) {
		penalty += cheapReplicaWeight
		factors = append(factors, "cheap replica or toy")
	}

	return factors, penalty
}

func (s *ThreatScorer) scoreWildlife(text string, price float64, hasPrice bool) (axisResult, int, bool) {
	var axis axisResult
	criticalCount := 0
	hasScientific := false

	for _, sp := range criticalSpecies {
		if strings.Contains(text, sp) {
			axis.add(criticalSpeciesWeight, "critical species: "+sp)
			criticalCount++
		}
	}
	for _, sp := range highPrioritySpecies {
		if strings.Contains(text, sp) {
			axis.add(highPriorityWeight, "high-priority species: "+sp)
		}
	}
	for _, name := range scientificNames {
		if strings.Contains(text, name) {
			axis.add(scientificNameWeight, "scientific name: "+name)
			hasScientific = true
		}
	}
	for _, cat := range wildlifeLanguageCategories {
		if anyTerm(text, cat.terms) {
			axis.add(wildlifeLanguageBonus, "trafficking language: "+cat.name)
		}
	}

	if len(axis.indicators) >= 3 {
		axis.score += multiIndicatorBonus
	}
	axis.score = clampInt(axis.score, 0, 100)

	// High prices only matter once something wildlife-related matched.
	if hasPrice && len(axis.indicators) > 0 {
		if price > 10000 {
			axis.score += 20
		} else if price > 5000 {
			axis.score += 15
		}
	}
	axis.score = clampInt(axis.score, 0, 100)

	return axis, criticalCount, hasScientific
}

func (s *ThreatScorer) scoreHumanTrafficking(text string) (axisResult, bool) {
	var axis axisResult
	hasAgeConcern := false

	for _, term := range ageConcernTerms {
		if strings.Contains(text, term) {
			axis.add(ageConcernWeight, "age concern: "+term)
			hasAgeConcern = true
		}
	}

	escortMatches := 0
	for _, cat := range []struct {
		name   string
		weight int
		terms  []string
	}{
		{"control pattern", controlPatternWeight, controlPatternTerms},
		{"escort service", escortServiceWeight, escortServiceTerms},
		{"financial exploitation", financialWeight, financialExploitationTerms},
		{"coded language", codedLanguageWeight, codedLanguageTerms},
		{"suspicious employment", employmentWeight, suspiciousEmploymentTerms},
	} {
		for _, term := range cat.terms {
			if strings.Contains(text, term) {
				axis.add(cat.weight, cat.name+": "+term)
				if cat.name == "escort service" {
					escortMatches++
				}
			}
		}
	}

	if anyTerm(text, availabilityTerms) {
		axis.score += availabilityBonus
	}
	if anyTerm(text, cashOnlyTerms) {
		axis.score += cashOnlyBonus
	}
	if escortMatches >= escortClusterMin {
		axis.score += escortCluster
	}

	axis.score = clampInt(axis.score, 0, 100)
	return axis, hasAgeConcern
}

func decideCategory(penalty, wildlife, human int) models.ThreatCategory {
	if penalty <= safeOverridePenalty {
		return models.CategorySafe
	}
	switch {
	case wildlife >= 40 && human >= 40:
		return models.CategoryBoth
	case wildlife > human && wildlife >= 25:
		return models.CategoryWildlife
	case human > wildlife && human >= 25:
		return models.CategoryHumanTrafficking
	default:
		return models.CategorySafe
	}
}

func enhanceScore(original, wildlife, human, penalty int, platform string) int {
	hi, lo := wildlife, human
	if human > wildlife {
		hi, lo = human, wildlife
	}

	raw := float64(original) + float64(hi)
	if wildlife >= 25 && human >= 25 {
		raw += 0.3 * float64(lo)
	}
	raw += float64(penalty)

	if m, ok := platformRiskMultiplier[strings.ToLower(platform)]; ok {
		raw *= m
	}

	return clampInt(int(raw), 0, 100)
}

func decideLevel(category models.ThreatCategory, score int, hasAgeConcern bool) models.ThreatLevel {
	switch category {
	case models.CategorySafe:
		return models.LevelSafe
	case models.CategoryBoth:
		return models.LevelCritical
	case models.CategoryHumanTrafficking:
		if hasAgeConcern {
			return models.LevelCritical
		}
		switch {
		case score >= 60:
			return models.LevelCritical
		case score >= 40:
			return models.LevelHigh
		case score >= 25:
			return models.LevelMedium
		default:
			return models.LevelLow
		}
	default: // wildlife
		switch {
		case score >= 80:
			return models.LevelCritical
		case score >= 65:
			return models.LevelHigh
		case score >= 45:
			return models.LevelMedium
		default:
			return models.LevelLow
		}
	}
}

func threatConfidence(indicators, exclusions, score int, hasScientific, hasAgeConcern bool) float64 {
	c := 0.5

	switch {
	case indicators >= 5:
		c += 0.3
	case indicators >= 3:
		c += 0.2
	case indicators >= 1:
		c += 0.1
	}

	c -= 0.1 * float64(exclusions)

	if score >= 80 {
		c += 0.2
	} else if score >= 60 {
		c += 0.1
	}

	if hasScientific {
		c += 0.15
	}
	if hasAgeConcern {
		c += 0.25
	}

	return clampFloat(c, 0, 1)
}

func buildReasoning(original, enhanced int, category models.ThreatCategory,
	wildlife, human []string, exclusions int) string {

	parts := []string{
		fmt.Sprintf("score %d → %d", original, enhanced),
		fmt.Sprintf("primary category: %s", category),
	}
	for i, ind := range wildlife {
		if i == 2 {
			break
		}
		parts = append(parts, ind)
	}
	for i, ind := range human {
		if i == 2 {
			break
		}
		parts = append(parts, ind)
	}
	if exclusions > 0 {
		parts = append(parts, fmt.Sprintf("%d exclusion factor(s)", exclusions))
	}

	return strings.Join(parts, "; ")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
