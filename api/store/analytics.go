package store

import (
	"context"
	"math"

	"github.com/local/easystudy/api/models"
)

const courseNameLimit = 15

type CourseProgress struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Progress int    `json:"progress"`
}

// Summary aggregates progress and material counts across all courses
type Summary struct {
	TotalCourses      int                         `json:"totalCourses"`
	TotalMaterials    int                         `json:"totalMaterials"`
	TotalProgress     int                         `json:"totalProgress"`
	CompletedChapters int                         `json:"completedChapters"`
	TotalChapters     int                         `json:"totalChapters"`
	MaterialsByType   map[models.MaterialType]int `json:"materialsByType"`
	CourseProgress    []CourseProgress            `json:"courseProgress"`
}

func (s *Store) Analytics(ctx context.Context) (Summary, error) {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return Summary{}, err
	}
	materials, err := s.ListMaterials(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(courses, materials), nil
}

func Summarize(courses []models.Course, materials []models.Material) Summary {
	sum := Summary{
		TotalCourses:    len(courses),
		TotalMaterials:  len(materials),
		MaterialsByType: make(map[models.MaterialType]int, len(models.MaterialTypes)),
		CourseProgress:  make([]CourseProgress, 0, len(courses)),
	}
	for _, t := range models.MaterialTypes {
		sum.MaterialsByType[t] = 0
	}
	for _, m := range materials {
		if m.Type.Valid() {
			sum.MaterialsByType[m.Type]++
		}
	}

	progressTotal := 0
	for _, c := range courses {
		progressTotal += c.Progress
		sum.TotalChapters += len(c.Chapters)
		for _, ch := range c.Chapters {
			if ch.Completed {
				sum.CompletedChapters++
			}
		}
		sum.CourseProgress = append(sum.CourseProgress, CourseProgress{
			ID:       c.ID,
			Name:     shortName(c.Title),
			Progress: c.Progress,
		})
	}
	if len(courses) > 0 {
		sum.TotalProgress = int(math.Round(float64(progressTotal) / float64(len(courses))))
	}
	return sum
}

func shortName(title string) string {
	runes := []rune(title)
	if len(runes) > courseNameLimit {
		return string(runes[:courseNameLimit]) + "..."
	}
	return title
}
