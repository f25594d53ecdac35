package store

import (
	"math"

	"github.com/local/easystudy/api/models"
)

// CalculateProgress returns the rounded percentage of completed chapters.
// A course without chapters is at 0%.
func CalculateProgress(chapters []models.Chapter) int {
	if len(chapters) == 0 {
		return 0
	}
	completed := 0
	for _, ch := range chapters {
		if ch.Completed {
			completed++
		}
	}
	return clampPercent(int(math.Round(100 * float64(completed) / float64(len(chapters)))))
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
