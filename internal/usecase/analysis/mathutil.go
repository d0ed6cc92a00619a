package analysis

import (
	"sort"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// populationVariance is 0 for fewer than two values
func populationVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

// LevelFor maps a score to a risk level using the configured thresholds
func LevelFor(score float64, cfg config.RiskConfig) entities.RiskLevel {
	switch {
	case score >= cfg.HighThreshold:
		return entities.RiskHigh
	case score >= cfg.MediumThreshold:
		return entities.RiskMedium
	default:
		return entities.RiskLow
	}
}

// uniqueOrdered drops duplicates keeping first occurrence
func uniqueOrdered(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// uniqueSorted drops duplicates and sorts, for order-insensitive factor sets
func uniqueSorted(items []string) []string {
	out := uniqueOrdered(items)
	sort.Strings(out)
	return out
}
