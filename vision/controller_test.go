package vision

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"wildguard/models"
	"wildguard/utils"
)

// fakeQuota is an in-memory QuotaStore with the same atomicity contract as
// the Redis-backed one.
type fakeQuota struct {
	mu   sync.Mutex
	used int
}

func (f *fakeQuota) Reserve(_ context.Context, _ string, limit int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.used >= limit {
		return false, nil
	}
	f.used++
	return true, nil
}

func (f *fakeQuota) Refund(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.used > 0 {
		f.used--
	}
	return nil
}

func (f *fakeQuota) Used(_ context.Context, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.used, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*models.VisionResult
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*models.VisionResult)}
}

func (f *fakeCache) Get(_ context.Context, key string) (*models.VisionResult, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.entries[key]
	return res, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, res *models.VisionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = res
	return nil
}

type fakeAnnotator struct {
	calls int64
	ann   Annotation
	err   error
}

func (f *fakeAnnotator) Annotate(_ context.Context, _ []byte) (*Annotation, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	ann := f.ann
	return &ann, nil
}

type fakeFetcher struct{ err error }

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte{0xFF, 0xD8}, nil
}

func newTestController(quota QuotaStore, cache Cache, ann Annotator, fetch ImageFetcher) *Controller {
	return NewController(quota, cache, ann, fetch, true, utils.NewTestLogger())
}

func TestShouldAnalyzeGateOrdering(t *testing.T) {
	ctx := context.Background()
	quota := &fakeQuota{}
	c := newTestController(quota, newFakeCache(), &fakeAnnotator{}, &fakeFetcher{})

	withImage := &models.RawListing{ImageURL: "https://img.test/a.jpg"}

	tests := []struct {
		name     string
		listing  *models.RawListing
		analysis models.ThreatAnalysis
		used     int
		want     bool
		reason   string
	}{
		{"no image", &models.RawListing{}, models.ThreatAnalysis{EnhancedScore: 50}, 0, false, "no image url"},
		{"quota exceeded", withImage, models.ThreatAnalysis{EnhancedScore: 50}, MonthlyQuota, false, "quota exceeded"},
		{"review override", withImage, models.ThreatAnalysis{EnhancedScore: 95, RequiresHumanReview: true}, 0, true, "human review required"},
		{"in band low edge", withImage, models.ThreatAnalysis{EnhancedScore: 35}, 0, true, "uncertain score band"},
		{"in band high edge", withImage, models.ThreatAnalysis{EnhancedScore: 80}, 0, true, "uncertain score band"},
		{"below band", withImage, models.ThreatAnalysis{EnhancedScore: 34}, 0, false, "score outside uncertain band"},
		{"above band", withImage, models.ThreatAnalysis{EnhancedScore: 81}, 0, false, "score outside uncertain band"},
	}

	for _, tt := range tests {
		quota.used = tt.used
		got, reason := c.ShouldAnalyze(ctx, tt.listing, &tt.analysis)
		if got != tt.want || reason != tt.reason {
			t.Errorf("%s: got (%v, %q); want (%v, %q)", tt.name, got, reason, tt.want, tt.reason)
		}
	}
}

func TestShouldAnalyzeUnconfigured(t *testing.T) {
	c := NewController(&fakeQuota{}, newFakeCache(), nil, &fakeFetcher{}, false, utils.NewTestLogger())

	got, reason := c.ShouldAnalyze(context.Background(),
		&models.RawListing{ImageURL: "https://img.test/a.jpg"},
		&models.ThreatAnalysis{EnhancedScore: 50})
	if got || reason != "vision api key not configured" {
		t.Errorf("got (%v, %q); want unconfigured refusal", got, reason)
	}
}

func TestAnalyzeConsumesLastQuotaUnitThenRefuses(t *testing.T) {
	ctx := context.Background()
	quota := &fakeQuota{used: MonthlyQuota - 1}
	ann := &fakeAnnotator{ann: Annotation{Labels: []string{"elephant", "ivory"}}}
	c := newTestController(quota, newFakeCache(), ann, &fakeFetcher{})

	flagged := &models.RawListing{URL: "https://x.test/1", ImageURL: "https://img.test/flagged.jpg"}
	res := c.AnalyzeListingImage(ctx, flagged,
		&models.ThreatAnalysis{EnhancedScore: 85, RequiresHumanReview: true})
	if res == nil {
		t.Fatal("review-flagged listing with one quota unit left must be analyzed")
	}
	if !res.CostUsed || res.CacheHit {
		t.Errorf("fresh analysis: CostUsed=%v CacheHit=%v; want true/false", res.CostUsed, res.CacheHit)
	}
	if quota.used != MonthlyQuota {
		t.Errorf("quota used = %d; want %d", quota.used, MonthlyQuota)
	}

	next := &models.RawListing{URL: "https://x.test/2", ImageURL: "https://img.test/other.jpg"}
	ok, reason := c.ShouldAnalyze(ctx, next, &models.ThreatAnalysis{EnhancedScore: 50})
	if ok || reason != "quota exceeded" {
		t.Errorf("after exhaustion got (%v, %q); want (false, quota exceeded)", ok, reason)
	}
	if res := c.AnalyzeListingImage(ctx, next, &models.ThreatAnalysis{EnhancedScore: 50}); res != nil {
		t.Error("exhausted quota must block the external call entirely")
	}
	if ann.calls != 1 {
		t.Errorf("annotator calls = %d; want 1", ann.calls)
	}
}

func TestAnalyzeCachesByImageURL(t *testing.T) {
	ctx := context.Background()
	quota := &fakeQuota{}
	ann := &fakeAnnotator{ann: Annotation{Labels: []string{"elephant", "ivory"}}}
	c := newTestController(quota, newFakeCache(), ann, &fakeFetcher{})

	listing := &models.RawListing{URL: "https://x.test/1", ImageURL: "https://img.test/same.jpg"}
	analysis := &models.ThreatAnalysis{EnhancedScore: 60}

	first := c.AnalyzeListingImage(ctx, listing, analysis)
	if first == nil {
		t.Fatal("first call should analyze")
	}
	if !first.CostUsed || first.CacheHit {
		t.Errorf("first call: CostUsed=%v CacheHit=%v; want true/false", first.CostUsed, first.CacheHit)
	}

	second := c.AnalyzeListingImage(ctx, listing, analysis)
	if second == nil {
		t.Fatal("second call should return the cached result")
	}
	if second.CostUsed || !second.CacheHit {
		t.Errorf("second call: CostUsed=%v CacheHit=%v; want false/true", second.CostUsed, second.CacheHit)
	}

	if quota.used != 1 {
		t.Errorf("quota used = %d; want 1 (cache hits are free)", quota.used)
	}
	if ann.calls != 1 {
		t.Errorf("annotator calls = %d; want 1", ann.calls)
	}
}

func TestAnalyzeCoalescesConcurrentSameImage(t *testing.T) {
	ctx := context.Background()
	quota := &fakeQuota{}
	ann := &fakeAnnotator{ann: Annotation{Labels: []string{"tiger"}}}
	c := newTestController(quota, newFakeCache(), ann, &fakeFetcher{})

	listing := &models.RawListing{URL: "https://x.test/1", ImageURL: "https://img.test/shared.jpg"}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.AnalyzeListingImage(ctx, listing, &models.ThreatAnalysis{EnhancedScore: 60})
		}()
	}
	wg.Wait()

	if ann.calls != 1 {
		t.Errorf("annotator calls = %d; want 1 for one distinct image", ann.calls)
	}
	if quota.used != 1 {
		t.Errorf("quota used = %d; want 1", quota.used)
	}
}

func TestAnalyzeNeverExceedsQuotaConcurrently(t *testing.T) {
	ctx := context.Background()
	quota := &fakeQuota{used: MonthlyQuota - 5}
	ann := &fakeAnnotator{ann: Annotation{Labels: []string{"tiger"}}}
	c := newTestController(quota, newFakeCache(), ann, &fakeFetcher{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		n := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			listing := &models.RawListing{
				URL:      "https://x.test/item",
				ImageURL: "https://img.test/" + string(rune('a'+n)) + ".jpg",
			}
			c.AnalyzeListingImage(ctx, listing, &models.ThreatAnalysis{EnhancedScore: 60})
		}()
	}
	wg.Wait()

	if quota.used > MonthlyQuota {
		t.Errorf("quota used = %d; hard cap %d breached", quota.used, MonthlyQuota)
	}
	if ann.calls > 5 {
		t.Errorf("annotator calls = %d; only 5 quota units were available", ann.calls)
	}
}

func TestAnalyzeRefundsQuotaOnFailure(t *testing.T) {
	ctx := context.Background()
	quota := &fakeQuota{used: 10}
	c := newTestController(quota, newFakeCache(),
		&fakeAnnotator{err: errors.New("backend down")}, &fakeFetcher{})

	listing := &models.RawListing{URL: "https://x.test/1", ImageURL: "https://img.test/a.jpg"}
	if res := c.AnalyzeListingImage(ctx, listing, &models.ThreatAnalysis{EnhancedScore: 60}); res != nil {
		t.Error("failed analysis must degrade to nil, not a partial result")
	}

	if quota.used != 10 {
		t.Errorf("quota used = %d; want 10 (unit refunded after failure)", quota.used)
	}
}

func TestScoreAnnotationTypes(t *testing.T) {
	tests := []struct {
		name     string
		ann      Annotation
		wantType models.AnalysisType
	}{
		{"ivory carving", Annotation{Labels: []string{"elephant", "ivory", "carving"}}, models.AnalysisWildlife},
		{"person in hotel room", Annotation{Labels: []string{"person", "hotel room"}}, models.AnalysisHumanTrafficking},
		{"plush toy", Annotation{Labels: []string{"elephant", "toy", "plush", "cartoon"}}, models.AnalysisSafe},
		{"nothing notable", Annotation{Labels: []string{"table", "chair"}}, models.AnalysisSafe},
	}

	for _, tt := range tests {
		got := scoreAnnotation(&tt.ann)
		if got.AnalysisType != tt.wantType {
			t.Errorf("%s: AnalysisType = %v; want %v", tt.name, got.AnalysisType, tt.wantType)
		}
	}
}

func TestEnhanceScoreFoldsVisionBack(t *testing.T) {
	tests := []struct {
		name  string
		score int
		v     models.VisionResult
		want  int
	}{
		{"high-confidence wildlife", 60,
			models.VisionResult{HasWildlifeIndicators: true, ConfidenceScore: 0.8}, 80},
		{"low-confidence wildlife", 60,
			models.VisionResult{HasWildlifeIndicators: true, ConfidenceScore: 0.3}, 70},
		{"human indicators", 60,
			models.VisionResult{HasHumanTraffickingIndicators: true, ConfidenceScore: 0.7}, 85},
		{"suspicious text", 60,
			models.VisionResult{DetectedText: "genuine ivory, cash only"}, 72},
		{"safe label pulls down", 60,
			models.VisionResult{DetectedLabels: []string{"Plush toy"}}, 40},
		{"clamped at 100", 95,
			models.VisionResult{HasWildlifeIndicators: true, ConfidenceScore: 0.9,
				HasHumanTraffickingIndicators: true}, 100},
		{"clamped at 0", 5,
			models.VisionResult{DetectedLabels: []string{"drawing"}}, 0},
	}

	for _, tt := range tests {
		got, _ := EnhanceScore(tt.score, &tt.v)
		if got != tt.want {
			t.Errorf("%s: EnhanceScore(%d) = %d; want %d", tt.name, tt.score, got, tt.want)
		}
	}
}
