package models

import "time"

// ThreatLevel classifies how dangerous a listing looks.
type ThreatLevel string

const (
	LevelUnrated  ThreatLevel = "UNRATED"
	LevelSafe     ThreatLevel = "SAFE"
	LevelLow      ThreatLevel = "LOW"
	LevelMedium   ThreatLevel = "MEDIUM"
	LevelHigh     ThreatLevel = "HIGH"
	LevelCritical ThreatLevel = "CRITICAL"
)

// ThreatCategory identifies which trafficking axis a listing matched.
type ThreatCategory string

const (
	CategoryWildlife         ThreatCategory = "WILDLIFE"
	CategoryHumanTrafficking ThreatCategory = "HUMAN_TRAFFICKING"
	CategoryBoth             ThreatCategory = "BOTH"
	CategorySafe             ThreatCategory = "SAFE"
)

// RejectionResult is the outcome of the first-pass rejection filter.
type RejectionResult struct {
	ShouldReject bool
	Reason       string
	Confidence   float64
}

// QualityAssessment is the relevance scorer's verdict on a listing that
// survived the rejection filter.
type QualityAssessment struct {
	ShouldInclude bool
	QualityScore  float64 // [0,1]
	ThreatLevel   ThreatLevel
	Confidence    float64 // [0.1,0.99]
	Reason        string  // diagnostic only
}

// ThreatAnalysis is the dual-axis threat scorer's verdict. Scores are on a
// 0–100 scale; the indicator slices preserve match order as a diagnostic
// trail.
type ThreatAnalysis struct {
	OriginalScore              int
	EnhancedScore              int
	Category                   ThreatCategory
	Level                      ThreatLevel
	WildlifeIndicators         []string
	HumanTraffickingIndicators []string
	ExclusionFactors           []string
	Confidence                 float64 // [0,1]
	Reasoning                  string
	RequiresHumanReview        bool
}

// AnalysisType labels what an image analysis found.
type AnalysisType string

const (
	AnalysisWildlife         AnalysisType = "wildlife"
	AnalysisHumanTrafficking AnalysisType = "human_trafficking"
	AnalysisBoth             AnalysisType = "both"
	AnalysisSafe             AnalysisType = "safe"
)

// VisionResult is the outcome of one image analysis. CostUsed is true only
// when the call actually consumed a unit of monthly quota; cache hits set
// CacheHit instead.
type VisionResult struct {
	HasWildlifeIndicators         bool         `json:"has_wildlife_indicators"`
	HasHumanTraffickingIndicators bool         `json:"has_human_trafficking_indicators"`
	DetectedLabels                []string     `json:"detected_labels"`
	DetectedText                  string       `json:"detected_text"`
	ConfidenceScore               float64      `json:"confidence_score"`
	AnalysisType                  AnalysisType `json:"analysis_type"`
	CostUsed                      bool         `json:"cost_used"`
	CacheHit                      bool         `json:"cache_hit"`
}

// Detection is the record persisted for every listing that survives the
// full pipeline. The sink deduplicates by URL.
type Detection struct {
	ID                  string
	Platform            string
	ThreatScore         int
	ThreatLevel         ThreatLevel
	ThreatCategory      ThreatCategory
	Confidence          float64
	RequiresHumanReview bool
	Title               string
	URL                 string
	RawPrice            string
	SearchTerm          string
	Location            string
	WildlifeIndicators  []string
	HumanIndicators     []string
	VisionAnalyzed      bool
	QualityScore        float64
	InitialThreatLevel  ThreatLevel // relevance scorer's tier, kept for provenance
	CreatedAt           time.Time
}

// ScanReport summarises one scan cycle across all platforms.
type ScanReport struct {
	TotalListings  int
	Rejected       int
	BelowThreshold int
	Detections     int
	VisionCalls    int
	ByLevel        map[ThreatLevel]int
	ByCategory     map[ThreatCategory]int
	ByPlatform     map[string]int
	TopThreats     []*Detection
}
