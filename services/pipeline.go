package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wildguard/models"
	"wildguard/storage"
	"wildguard/utils"
	"wildguard/vision"
)

// Pipeline runs each listing through the full decision chain:
// rejection filter → relevance scorer → threat scorer → optional image
// analysis → detection sink. Stages within one listing are strictly
// sequential; listings are independent of each other.
type Pipeline struct {
	filter  *RejectionFilter
	quality *QualityScorer
	threat  *ThreatScorer
	vision  *vision.Controller // nil disables image analysis
	sink    storage.DetectionSink
	logger  *utils.Logger
}

// NewPipeline wires a Pipeline. Pass a nil vision controller to run
// text-only.
func NewPipeline(threshold float64, visionCtl *vision.Controller,
	sink storage.DetectionSink, logger *utils.Logger) *Pipeline {

	return &Pipeline{
		filter:  NewRejectionFilter(),
		quality: NewQualityScorer(threshold, logger),
		threat:  NewThreatScorer(logger),
		vision:  visionCtl,
		sink:    sink,
		logger:  logger,
	}
}

// outcome classifies what happened to one listing.
type outcome int

const (
	outcomeRejected outcome = iota
	outcomeBelowThreshold
	outcomeDetection
)

// ProcessListing runs one listing through every stage. It returns nil for
// listings filtered out before the threat scorer. It never fails: scoring
// is pure, and a failed image analysis degrades to a text-only score.
func (p *Pipeline) ProcessListing(ctx context.Context, listing *models.RawListing) (*models.Detection, outcome) {
	if rej := p.filter.Check(listing.CombinedText()); rej.ShouldReject {
		p.logger.Debug("[pipeline] rejected %q: %s", listing.Title, rej.Reason)
		return nil, outcomeRejected
	}

	assessment := p.quality.Assess(listing)
	if !assessment.ShouldInclude {
		p.logger.Debug("[pipeline] below threshold %q (score %.2f)",
			listing.Title, assessment.QualityScore)
		return nil, outcomeBelowThreshold
	}

	analysis := p.threat.Analyze(listing, int(assessment.QualityScore*100))

	visionAnalyzed := false
	if p.vision != nil {
		if res := p.vision.AnalyzeListingImage(ctx, listing, &analysis); res != nil {
			newScore, note := vision.EnhanceScore(analysis.EnhancedScore, res)
			if note != "" {
				analysis.Reasoning += "; " + note
			}
			analysis.EnhancedScore = newScore
			visionAnalyzed = true
		}
	}

	return &models.Detection{
		ID:                  uuid.New().String(),
		Platform:            listing.Platform,
		ThreatScore:         analysis.EnhancedScore,
		ThreatLevel:         analysis.Level,
		ThreatCategory:      analysis.Category,
		Confidence:          analysis.Confidence,
		RequiresHumanReview: analysis.RequiresHumanReview,
		Title:               listing.Title,
		URL:                 listing.URL,
		RawPrice:            listing.RawPrice,
		SearchTerm:          listing.SearchTerm,
		Location:            listing.Location,
		WildlifeIndicators:  analysis.WildlifeIndicators,
		HumanIndicators:     analysis.HumanTraffickingIndicators,
		VisionAnalyzed:      visionAnalyzed,
		QualityScore:        assessment.QualityScore,
		InitialThreatLevel:  assessment.ThreatLevel,
		CreatedAt:           time.Now().UTC(),
	}, outcomeDetection
}

// Run processes a batch of listings, persists the detections, and returns
// the cycle report. The sink deduplicates by URL; a storage failure is
// logged and the report still reflects what was scored.
func (p *Pipeline) Run(ctx context.Context, listings []*models.RawListing) *models.ScanReport {
	var detections []*models.Detection
	rejected, below := 0, 0

	for _, listing := range listings {
		d, o := p.ProcessListing(ctx, listing)
		switch o {
		case outcomeRejected:
			rejected++
		case outcomeBelowThreshold:
			below++
		case outcomeDetection:
			detections = append(detections, d)
		}
	}

	if len(detections) > 0 && p.sink != nil {
		inserted, err := p.sink.Write(ctx, detections)
		if err != nil {
			p.logger.Error("[pipeline] sink write failed: %v", err)
		} else {
			p.logger.Info("[pipeline] stored %d new detection(s), %d duplicate(s) skipped",
				inserted, len(detections)-inserted)
		}
	}

	report := BuildReport(listings, detections, rejected, below)
	return report
}
