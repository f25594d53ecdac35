package store

import (
	"fmt"
	"strings"

	"github.com/local/easystudy/api/models"
)

// CourseStatus selects courses by how far along they are
type CourseStatus string

const (
	StatusAll        CourseStatus = "all"
	StatusInProgress CourseStatus = "in-progress"
	StatusCompleted  CourseStatus = "completed"
)

// ParseCourseStatus accepts the dashboard tab names. Empty means all.
func ParseCourseStatus(s string) (CourseStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "in-progress", "inprogress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown course status %q", s)
}

// Matches reports whether a course at progress p belongs to the status.
// Not-started courses are only listed under all.
func (st CourseStatus) Matches(p int) bool {
	switch st {
	case StatusInProgress:
		return p > 0 && p < 100
	case StatusCompleted:
		return p == 100
	}
	return true
}

// FilterCourses keeps courses whose title or description contains q,
// ignoring case, and whose progress matches status. Order is preserved.
func FilterCourses(courses []models.Course, q string, status CourseStatus) []models.Course {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if !status.Matches(c.Progress) {
			continue
		}
		if q != "" && !contains(c.Title, q) && !contains(c.Description, q) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SearchMaterials keeps materials whose title or content contains q,
// ignoring case. An empty typ matches every type.
func SearchMaterials(materials []models.Material, q string, typ models.MaterialType) []models.Material {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]models.Material, 0, len(materials))
	for _, m := range materials {
		if typ != "" && m.Type != typ {
			continue
		}
		if q != "" && !contains(m.Title, q) && !contains(m.Content, q) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func contains(s, lowered string) bool {
	return strings.Contains(strings.ToLower(s), lowered)
}
