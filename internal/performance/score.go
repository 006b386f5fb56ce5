// Package performance records per-period scores and summarizes attendance and
// performance per employee.
package performance

import (
	"math"
	"time"
)

// ProductivityScore derives a 0-10 productivity score from raw figures: ten
// tasks saturate the task component and efficiency is capped at 1.
func ProductivityScore(tasks int, quality, efficiency float64) float64 {
	taskComponent := math.Min(float64(max(tasks, 0))/10, 1) * 0.4
	qualityComponent := clamp(quality, 0, 10) / 10 * 0.4
	efficiencyComponent := clamp(efficiency, 0, 1) * 0.2
	return round2((taskComponent + qualityComponent + efficiencyComponent) * 10)
}

// OverallScore is the weighted blend used by the "overall" alert score source.
func OverallScore(tasks int, quality, productivity float64) float64 {
	return round2(0.3*float64(tasks) + 0.4*quality + 0.3*productivity)
}

// WorkingDays counts Monday to Friday dates in [from, to).
func WorkingDays(from, to time.Time) int {
	from = truncateDay(from)
	to = truncateDay(to)
	n := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d) {
			n++
		}
	}
	return n
}

// IsWorkingDay reports whether t falls Monday to Friday.
func IsWorkingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Trend direction labels.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// Trend fits a least-squares line through equally spaced scores and returns
// its slope and direction. Fewer than two scores are stable.
func Trend(scores []float64) (float64, string) {
	n := float64(len(scores))
	if len(scores) < 2 {
		return 0, TrendStable
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range scores {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	slope = math.Round(slope*1e4) / 1e4

	switch {
	case slope > 0:
		return slope, TrendImproving
	case slope < 0:
		return slope, TrendDeclining
	default:
		return 0, TrendStable
	}
}
