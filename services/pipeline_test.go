package services

import (
	"context"
	"errors"
	"testing"

	"wildguard/models"
)

// memorySink records detections in memory and pretends everything inserted.
type memorySink struct {
	detections []*models.Detection
	failWrites bool
}

func (m *memorySink) Write(_ context.Context, ds []*models.Detection) (int, error) {
	if m.failWrites {
		return 0, errors.New("sink unavailable")
	}
	m.detections = append(m.detections, ds...)
	return len(ds), nil
}

func (m *memorySink) Close() error { return nil }

func TestPipelineStageOutcomes(t *testing.T) {
	sink := &memorySink{}
	p := NewPipeline(0.2, nil, sink, newTestLogger())

	listings := []*models.RawListing{
		{Title: "Plush tiger toy for kids", URL: "https://x.test/1", Platform: "ebay"},
		{Title: "Old stuff", URL: "https://x.test/2", Platform: "craigslist"},
		{Title: "Authentic African Elephant Ivory Carving - Serious Buyers Only",
			RawPrice: "$2,500", URL: "https://x.test/3", Platform: "craigslist"},
	}

	report := p.Run(context.Background(), listings)

	if report.TotalListings != 3 {
		t.Errorf("TotalListings = %d; want 3", report.TotalListings)
	}
	if report.Rejected != 1 {
		t.Errorf("Rejected = %d; want 1", report.Rejected)
	}
	if report.BelowThreshold != 1 {
		t.Errorf("BelowThreshold = %d; want 1", report.BelowThreshold)
	}
	if report.Detections != 1 {
		t.Errorf("Detections = %d; want 1", report.Detections)
	}
	if len(sink.detections) != 1 {
		t.Fatalf("sink received %d detections; want 1", len(sink.detections))
	}

	d := sink.detections[0]
	if d.URL != "https://x.test/3" {
		t.Errorf("wrong listing detected: %s", d.URL)
	}
	if d.ThreatCategory != models.CategoryWildlife {
		t.Errorf("ThreatCategory = %v; want WILDLIFE", d.ThreatCategory)
	}
	if d.ID == "" {
		t.Error("detection must carry a generated ID")
	}
	if d.VisionAnalyzed {
		t.Error("VisionAnalyzed must be false when no vision controller is wired")
	}
	if d.QualityScore <= 0 {
		t.Errorf("QualityScore = %v; want > 0 provenance from relevance scorer", d.QualityScore)
	}
}

func TestPipelineSurvivesSinkFailure(t *testing.T) {
	sink := &memorySink{failWrites: true}
	p := NewPipeline(0.2, nil, sink, newTestLogger())

	report := p.Run(context.Background(), []*models.RawListing{
		{Title: "Genuine rhino horn powder", RawPrice: "$4,000",
			URL: "https://x.test/1", Platform: "craigslist"},
	})

	// A storage failure is logged, never propagated: the report must still
	// reflect what was scored.
	if report.Detections != 1 {
		t.Errorf("Detections = %d; want 1 despite sink failure", report.Detections)
	}
}

func TestPipelineThreatScorerIsAuthoritative(t *testing.T) {
	p := NewPipeline(0.2, nil, &memorySink{}, newTestLogger())

	// The relevance scorer's tier and the threat scorer's level can
	// disagree; the stored ThreatLevel is the threat scorer's, with the
	// earlier tier kept only as provenance.
	d, o := p.ProcessListing(context.Background(), &models.RawListing{
		Title:    "Ivory colored ceramic vase, tall",
		RawPrice: "$45",
		URL:      "https://x.test/1",
		Platform: "ebay",
	})

	if o != outcomeDetection {
		t.Fatalf("outcome = %v; want detection", o)
	}
	if d.ThreatLevel != models.LevelSafe {
		t.Errorf("ThreatLevel = %v; want SAFE from threat scorer", d.ThreatLevel)
	}
	if d.InitialThreatLevel == "" {
		t.Error("InitialThreatLevel provenance must be preserved")
	}
}
