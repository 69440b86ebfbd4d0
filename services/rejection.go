package services

import (
	"fmt"
	"regexp"
	"strings"

	"wildguard/models"
)

var structuralRejectPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"clothing size", regexp.MustCompile(`\bsize\s*(?:xs|s|m|l|xl|xxl|\d{1,2})\b`)},
	{"mint condition", regexp.MustCompile(`\b(?:brand new|mint condition)\b`)},
	{"digital download", regexp.MustCompile(`\bdigital\s+download\b`)},
	{"home decor", regexp.MustCompile(`\bhome\s+d[eé]cor\b`)},
	{"costume", regexp.MustCompile(`\b(?:costume|cosplay)\b`)},
	{"children's toy", regexp.MustCompile(`\b(?:children'?s?|kids'?)\s+toy\b`)},
	{"art print", regexp.MustCompile(`\b(?:art|canvas)\s+print\b`)},
	{"toy weapon", regexp.MustCompile(`\b(?:toy\s+gun|airsoft)\b`)},
	{"game", regexp.MustCompile(`\b(?:video|board|card)\s+game\b`)},
}

// RejectionFilter cheaply eliminates listings whose text indicates a
// non-wildlife item before any scoring work is done. It is a pure function
// of the input text and safe for concurrent use.
type RejectionFilter struct{}

// NewRejectionFilter creates a RejectionFilter.
func NewRejectionFilter() *RejectionFilter {
	return &RejectionFilter{}
}

// Check scans the combined lowercase title + description. First match wins;
// the confidence attached to a match is fixed per category, not computed.
func (f *RejectionFilter) Check(text string) models.RejectionResult {
	text = strings.ToLower(strings.TrimSpace(text))

	if len(text) < 3 {
		return models.RejectionResult{
			ShouldReject: true,
			Reason:       "empty or too-short text",
			Confidence:   0.9,
		}
	}

	for _, cat := range rejectCategories {
		for _, term := range cat.terms {
			if strings.Contains(text, term) {
				return models.RejectionResult{
					ShouldReject: true,
					Reason:       fmt.Sprintf("%s term: %q", cat.name, term),
					Confidence:   cat.confidence,
				}
			}
		}
	}

	for _, lang := range rejectLanguageOrder {
		for _, term := range rejectLanguages[lang] {
			if strings.Contains(text, term) {
				return models.RejectionResult{
					ShouldReject: true,
					Reason:       fmt.Sprintf("%s term: %q", lang, term),
					Confidence:   0.85,
				}
			}
		}
	}

	for _, pat := range structuralRejectPatterns {
		if pat.re.MatchString(text) {
			return models.RejectionResult{
				ShouldReject: true,
				Reason:       fmt.Sprintf("pattern: %s", pat.name),
				Confidence:   0.8,
			}
		}
	}

	return models.RejectionResult{ShouldReject: false}
}

// containsRejectTerm reports whether any reject-category term appears in
// text. The relevance scorer uses this as a second-chance weak signal when
// shaping confidence.
func containsRejectTerm(text string) bool {
	for _, cat := range rejectCategories {
		for _, term := range cat.terms {
			if strings.Contains(text, term) {
				return true
			}
		}
	}
	for _, lang := range rejectLanguageOrder {
		for _, term := range rejectLanguages[lang] {
			if strings.Contains(text, term) {
				return true
			}
		}
	}
	return false
}
