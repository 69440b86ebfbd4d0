package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"wildguard/models"
)

// BuildReport aggregates a scan cycle's results.
func BuildReport(listings []*models.RawListing, detections []*models.Detection,
	rejected, belowThreshold int) *models.ScanReport {

	report := &models.ScanReport{
		TotalListings:  len(listings),
		Rejected:       rejected,
		BelowThreshold: belowThreshold,
		Detections:     len(detections),
		ByLevel:        make(map[models.ThreatLevel]int),
		ByCategory:     make(map[models.ThreatCategory]int),
		ByPlatform:     make(map[string]int),
	}

	for _, d := range detections {
		report.ByLevel[d.ThreatLevel]++
		report.ByCategory[d.ThreatCategory]++
		report.ByPlatform[d.Platform]++
		if d.VisionAnalyzed {
			report.VisionCalls++
		}
	}

	// Top 5 by threat score
	sorted := append([]*models.Detection{}, detections...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ThreatScore > sorted[j].ThreatScore
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	report.TopThreats = sorted

	return report
}

// PrintReport writes a human-readable cycle summary to stdout.
func PrintReport(r *models.ScanReport) {
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n  SCAN CYCLE SUMMARY\n  %s\n", thin)
	fmt.Printf("  Listings scanned   : %d\n", r.TotalListings)
	fmt.Printf("  Rejected outright  : %d\n", r.Rejected)
	fmt.Printf("  Below threshold    : %d\n", r.BelowThreshold)
	fmt.Printf("  Detections stored  : %d\n", r.Detections)
	fmt.Printf("  Images analyzed    : %d\n", r.VisionCalls)

	if len(r.ByLevel) > 0 {
		fmt.Printf("\n  By threat level\n  %s\n", thin)
		for _, level := range []models.ThreatLevel{
			models.LevelCritical, models.LevelHigh, models.LevelMedium,
			models.LevelLow, models.LevelSafe,
		} {
			if n := r.ByLevel[level]; n > 0 {
				fmt.Printf("  %-10s %s (%d)\n", level, strings.Repeat("█", n), n)
			}
		}
	}

	if len(r.ByPlatform) > 0 {
		fmt.Printf("\n  By platform\n  %s\n", thin)
		platforms := make([]string, 0, len(r.ByPlatform))
		for p := range r.ByPlatform {
			platforms = append(platforms, p)
		}
		sort.Strings(platforms)
		for _, p := range platforms {
			fmt.Printf("  %-14s %d\n", p, r.ByPlatform[p])
		}
	}

	if len(r.TopThreats) > 0 {
		fmt.Printf("\n  Top threats\n  %s\n", thin)
		for i, d := range r.TopThreats {
			fmt.Printf("  %d. [%3d] %-8s %s\n",
				i+1, d.ThreatScore, d.ThreatLevel, truncate(d.Title, 40))
		}
	}
	fmt.Println()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
