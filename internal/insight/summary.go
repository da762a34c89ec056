// Package insight computes weekly summaries over energy samples. Pure
// computation only; the service layer supplies the samples and the clock.
package insight

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	TrendImproving    = "Improving"
	TrendDeclining    = "Declining"
	TrendStable       = "Stable"
	TrendBuildingData = "Building data"
)

// NoDataMessage is returned verbatim for weeks with no samples.
const NoDataMessage = "No energy check-ins recorded for this week yet. Log a few sessions to build your insights."

// trendMinSamples is the least number of samples needed before the
// first-half/second-half comparison is meaningful.
const trendMinSamples = 3

type Sample struct {
	Level     int
	Timestamp time.Time
}

type Summary struct {
	AverageLevel float64 `json:"averageLevel"`
	SampleCount  int     `json:"sampleCount"`
	BestDay      string  `json:"bestDay"`
	Trend        string  `json:"trend"`
	Message      string  `json:"message"`
}

// WeekWindow returns the Monday-to-Monday window for the week `offset` weeks
// relative to now (0 = current week, -1 = previous). Start is inclusive, end
// exclusive.
func WeekWindow(now time.Time, offset int) (time.Time, time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	monday := midnight.AddDate(0, 0, -daysSinceMonday+7*offset)
	return monday, monday.AddDate(0, 0, 7)
}

// Summarize aggregates a week's samples. The input need not be sorted.
func Summarize(samples []Sample) Summary {
	if len(samples) == 0 {
		return Summary{
			Trend:   TrendBuildingData,
			Message: NoDataMessage,
		}
	}

	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	total := 0
	for _, s := range sorted {
		total += s.Level
	}
	avg := math.Round(float64(total)/float64(len(sorted))*10) / 10

	best := bestDay(sorted)
	trend := classifyTrend(sorted)

	return Summary{
		AverageLevel: avg,
		SampleCount:  len(sorted),
		BestDay:      best,
		Trend:        trend,
		Message:      message(avg, best),
	}
}

// bestDay picks the weekday with the highest average level. Iteration is
// Sunday-first, and only a strictly higher average displaces the current
// best, so ties resolve to the earliest weekday in Sunday-first order.
func bestDay(samples []Sample) string {
	var sums, counts [7]int
	for _, s := range samples {
		wd := int(s.Timestamp.Weekday())
		sums[wd] += s.Level
		counts[wd]++
	}

	bestIdx := -1
	bestAvg := 0.0
	for wd := 0; wd < 7; wd++ {
		if counts[wd] == 0 {
			continue
		}
		avg := float64(sums[wd]) / float64(counts[wd])
		if bestIdx < 0 || avg > bestAvg {
			bestIdx = wd
			bestAvg = avg
		}
	}
	return time.Weekday(bestIdx).String()
}

// classifyTrend compares the mean of the first half of the chronologically
// sorted samples with the mean of the second half.
func classifyTrend(sorted []Sample) string {
	if len(sorted) < trendMinSamples {
		return TrendBuildingData
	}

	half := len(sorted) / 2
	firstMean := mean(sorted[:half])
	secondMean := mean(sorted[half:])

	switch {
	case secondMean-firstMean > 0.5:
		return TrendImproving
	case firstMean-secondMean > 0.5:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(samples []Sample) float64 {
	total := 0
	for _, s := range samples {
		total += s.Level
	}
	return float64(total) / float64(len(samples))
}

func message(avg float64, best string) string {
	var text string
	switch {
	case avg >= 7.5:
		text = "Your energy ran high this week. Keep protecting the habits that fuel it."
	case avg >= 6.0:
		text = "Solid, steady energy this week with room to push a little further."
	case avg >= 4.0:
		text = "Energy was middling this week. Watch for drains around your low sessions."
	default:
		text = "A low-energy week. Consider lighter sessions and more recovery."
	}
	return fmt.Sprintf("%s Your best day was %s.", text, best)
}
