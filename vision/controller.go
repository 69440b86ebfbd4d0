// Package vision implements the cost-capped image-analysis gate: a hard
// monthly budget of external image-annotation calls, spent only where an
// image could plausibly change a listing's disposition.
package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"wildguard/models"
	"wildguard/utils"
)

const (
	// MonthlyQuota is the hard cap on external image-analysis calls per
	// calendar month.
	MonthlyQuota = 1000

	// The uncertain band: the enhanced-score range where an image could
	// plausibly flip the decision. Below it the listing is likely safe;
	// above it the listing is already confidently flagged.
	uncertainBandLow  = 35
	uncertainBandHigh = 80

	downloadTimeout = 15 * time.Second
	analyzeTimeout  = 30 * time.Second
)

// Annotation is the parsed output of one external image-analysis call.
type Annotation struct {
	Labels  []string
	Objects []string
	Text    string
}

// Annotator performs the external label/text/object detection call.
type Annotator interface {
	Annotate(ctx context.Context, imageData []byte) (*Annotation, error)
}

// ImageFetcher downloads image bytes, enforcing the size limit.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// QuotaStore tracks the monthly call budget. Reserve must be atomic with
// respect to concurrent callers: two workers racing on the last remaining
// unit must not both succeed.
type QuotaStore interface {
	Reserve(ctx context.Context, monthKey string, limit int) (bool, error)
	Refund(ctx context.Context, monthKey string) error
	Used(ctx context.Context, monthKey string) (int, error)
}

// Cache stores analysis results keyed by image-URL hash.
type Cache interface {
	Get(ctx context.Context, key string) (*models.VisionResult, bool, error)
	Set(ctx context.Context, key string, res *models.VisionResult) error
}

// Controller decides whether an image is worth one unit of the monthly
// budget, executes the analysis when justified, and folds the outcome back
// into the threat score.
type Controller struct {
	quota     QuotaStore
	cache     Cache
	annotator Annotator
	fetcher   ImageFetcher
	keyed     *utils.KeyedMutex
	logger    *utils.Logger
	now       func() time.Time

	configured bool
}

// NewController wires a Controller. Pass configured=false when no API key
// is present; the gate then always answers no instead of failing later.
func NewController(quota QuotaStore, cache Cache, annotator Annotator,
	fetcher ImageFetcher, configured bool, logger *utils.Logger) *Controller {

	return &Controller{
		quota:      quota,
		cache:      cache,
		annotator:  annotator,
		fetcher:    fetcher,
		keyed:      utils.NewKeyedMutex(),
		logger:     logger,
		now:        time.Now,
		configured: configured,
	}
}

// monthKey returns the quota bucket for the current calendar month.
func (c *Controller) monthKey() string {
	return c.now().UTC().Format("2006-01")
}

// ShouldAnalyze decides whether spending one quota unit on this listing's
// image is justified. The returned reason is diagnostic only.
func (c *Controller) ShouldAnalyze(ctx context.Context, listing *models.RawListing, analysis *models.ThreatAnalysis) (bool, string) {
	if listing.ImageURL == "" {
		return false, "no image url"
	}
	if !c.configured {
		return false, "vision api key not configured"
	}

	used, err := c.quota.Used(ctx, c.monthKey())
	if err != nil {
		c.logger.Warn("[vision] quota lookup failed: %v", err)
		return false, "quota state unavailable"
	}
	if used >= MonthlyQuota {
		return false, "quota exceeded"
	}

	// Human-trafficking signals outrank cost control: a review-flagged
	// listing gets its image analyzed even outside the score window.
	if analysis.RequiresHumanReview {
		return true, "human review required"
	}

	if analysis.EnhancedScore >= uncertainBandLow && analysis.EnhancedScore <= uncertainBandHigh {
		return true, "uncertain score band"
	}

	return false, "score outside uncertain band"
}

// AnalyzeListingImage runs the full gated analysis. It returns nil both
// when the gate says no and when the external call fails — callers treat
// the two identically and proceed without image confirmation. Quota is
// consumed exactly once per successful non-cached call, never on cache
// hits, gate rejections or failed calls.
func (c *Controller) AnalyzeListingImage(ctx context.Context, listing *models.RawListing, analysis *models.ThreatAnalysis) *models.VisionResult {
	if ok, reason := c.ShouldAnalyze(ctx, listing, analysis); !ok {
		c.logger.Debug("[vision] skipping %s: %s", listing.URL, reason)
		return nil
	}

	key := ImageHash(listing.ImageURL)

	// Serialize per image hash so two workers racing on the same
	// never-before-seen image pay for it at most once.
	c.keyed.Lock(key)
	defer c.keyed.Unlock(key)

	if cached, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("[vision] cache read failed: %v", err)
	} else if ok {
		hit := *cached
		hit.CacheHit = true
		hit.CostUsed = false
		return &hit
	}

	monthKey := c.monthKey()
	granted, err := c.quota.Reserve(ctx, monthKey, MonthlyQuota)
	if err != nil {
		c.logger.Warn("[vision] quota reserve failed: %v", err)
		return nil
	}
	if !granted {
		c.logger.Debug("[vision] quota exhausted for %s", monthKey)
		return nil
	}

	result, err := c.analyze(ctx, listing.ImageURL)
	if err != nil {
		// The external call never happened or failed — give the unit back.
		if rerr := c.quota.Refund(ctx, monthKey); rerr != nil {
			c.logger.Error("[vision] quota refund failed: %v", rerr)
		}
		c.logger.Warn("[vision] analysis failed for %s: %v", listing.ImageURL, err)
		return nil
	}

	if err := c.cache.Set(ctx, key, result); err != nil {
		c.logger.Warn("[vision] cache write failed: %v", err)
	}

	return result
}

// analyze downloads the image and runs the external annotation call,
// then scores the returned labels/objects/text.
func (c *Controller) analyze(ctx context.Context, imageURL string) (*models.VisionResult, error) {
	dlCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()
	data, err := c.fetcher.Fetch(dlCtx, imageURL)
	if err != nil {
		return nil, err
	}

	anCtx, cancel2 := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel2()
	ann, err := c.annotator.Annotate(anCtx, data)
	if err != nil {
		return nil, err
	}

	return scoreAnnotation(ann), nil
}

// scoreAnnotation applies the category-weighted term matching over the
// combined label + object + text blob.
func scoreAnnotation(ann *Annotation) *models.VisionResult {
	blob := strings.ToLower(strings.Join(ann.Labels, " ") + " " +
		strings.Join(ann.Objects, " ") + " " + ann.Text)

	wildlife := 0
	for _, m := range []struct {
		weight int
		terms  []string
	}{
		{30, visionAnimalTerms},
		{25, visionAnimalPartTerms},
		{20, visionProductTerms},
		{35, visionRareMaterialTerms},
	} {
		for _, term := range m.terms {
			if strings.Contains(blob, term) {
				wildlife += m.weight
			}
		}
	}

	human := 0
	for _, term := range visionHumanPresenceTerms {
		if strings.Contains(blob, term) {
			human += 20
		}
	}

	// Exclusions subtract once per matched term, not per occurrence.
	for _, term := range visionExclusionTerms {
		if strings.Contains(blob, term) {
			wildlife -= 15
			human -= 10
		}
	}
	if wildlife < 0 {
		wildlife = 0
	}
	if human < 0 {
		human = 0
	}

	var analysisType models.AnalysisType
	switch {
	case wildlife >= 25 && human >= 30:
		analysisType = models.AnalysisBoth
	case wildlife >= 25:
		analysisType = models.AnalysisWildlife
	case human >= 20:
		analysisType = models.AnalysisHumanTrafficking
	default:
		analysisType = models.AnalysisSafe
	}

	confidence := float64(wildlife+human) / 100
	if confidence > 1 {
		confidence = 1
	}

	labels := append([]string{}, ann.Labels...)
	labels = append(labels, ann.Objects...)

	return &models.VisionResult{
		HasWildlifeIndicators:         wildlife >= 25,
		HasHumanTraffickingIndicators: human >= 20,
		DetectedLabels:                labels,
		DetectedText:                  ann.Text,
		ConfidenceScore:               confidence,
		AnalysisType:                  analysisType,
		CostUsed:                      true,
		CacheHit:                      false,
	}
}

// EnhanceScore folds a vision result back into the enhanced threat score.
// Human-trafficking confirmation is weighted above wildlife, consistent
// with the text scorer.
func EnhanceScore(score int, v *models.VisionResult) (int, string) {
	var notes []string

	if v.HasWildlifeIndicators {
		switch {
		case v.ConfidenceScore > 0.7:
			score += 20
		case v.ConfidenceScore > 0.5:
			score += 15
		default:
			score += 10
		}
		notes = append(notes, "image confirms wildlife indicators")
	}

	if v.HasHumanTraffickingIndicators {
		if v.ConfidenceScore > 0.6 {
			score += 25
		} else {
			score += 15
		}
		notes = append(notes, "image confirms human-trafficking indicators")
	}

	text := strings.ToLower(v.DetectedText)
	for _, term := range visionSuspiciousText {
		if strings.Contains(text, term) {
			score += 12
			notes = append(notes, "suspicious text in image: "+term)
			break
		}
	}

	for _, label := range v.DetectedLabels {
		l := strings.ToLower(label)
		safe := false
		for _, s := range visionSafeLabels {
			if strings.Contains(l, s) {
				safe = true
				break
			}
		}
		if safe {
			score -= 20
			notes = append(notes, "safe label detected: "+l)
			break
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, strings.Join(notes, "; ")
}

// ImageHash returns the stable cache key for an image URL.
func ImageHash(imageURL string) string {
	sum := sha256.Sum256([]byte(imageURL))
	return hex.EncodeToString(sum[:])
}
