// Package store persists Courses and Materials as two JSON collections in a
// key/value medium.
//
// Every write re-reads and rewrites a whole collection. Concurrent writers are
// not coordinated, so interleaved read-modify-write sequences lose updates
// (last writer wins per collection).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/local/easystudy/api/models"
	"github.com/local/easystudy/api/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	CoursesKey   = "easystudy-courses"
	MaterialsKey = "easystudy-materials"
)

type Store struct {
	medium storage.Medium
	log    zerolog.Logger
	now    func() time.Time
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock replaces time.Now for timestamping
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(medium storage.Medium, opts ...Option) *Store {
	s := &Store{
		medium: medium,
		log:    log.Logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// readCollection never fails on malformed data: it logs and returns an empty
// collection instead. Only medium errors are returned.
func readCollection[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	raw, ok, err := s.medium.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	items := []T{}
	if !ok || raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to parse collection from storage")
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func writeCollection[T any](ctx context.Context, s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.medium.Set(ctx, key, string(data))
}

func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	return readCollection[models.Course](ctx, s, CoursesKey)
}

// SaveCourse upserts by id. Updates keep the stored createdAt when the caller
// passes a zero one; inserts stamp both timestamps.
func (s *Store) SaveCourse(ctx context.Context, course models.Course) error {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return err
	}
	if course.Materials == nil {
		course.Materials = []string{}
	}
	course.Progress = clampPercent(course.Progress)

	now := s.now()
	if i := courseIndex(courses, course.ID); i >= 0 {
		if course.CreatedAt.IsZero() {
			course.CreatedAt = courses[i].CreatedAt
		}
		course.UpdatedAt = now
		courses[i] = course
	} else {
		course.CreatedAt = now
		course.UpdatedAt = now
		courses = append(courses, course)
	}

	return writeCollection(ctx, s, CoursesKey, courses)
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return err
	}
	kept := courses[:0]
	for _, c := range courses {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return writeCollection(ctx, s, CoursesKey, kept)
}

func (s *Store) ListMaterials(ctx context.Context) ([]models.Material, error) {
	return readCollection[models.Material](ctx, s, MaterialsKey)
}

// SaveMaterial upserts by id without touching timestamps, except that a zero
// createdAt is stamped with the current time.
func (s *Store) SaveMaterial(ctx context.Context, material models.Material) error {
	materials, err := s.ListMaterials(ctx)
	if err != nil {
		return err
	}
	if material.CreatedAt.IsZero() {
		material.CreatedAt = s.now()
	}

	replaced := false
	for i := range materials {
		if materials[i].ID == material.ID {
			materials[i] = material
			replaced = true
			break
		}
	}
	if !replaced {
		materials = append(materials, material)
	}

	return writeCollection(ctx, s, MaterialsKey, materials)
}

// DeleteMaterial removes the material and strips its id from every course
func (s *Store) DeleteMaterial(ctx context.Context, id string) error {
	materials, err := s.ListMaterials(ctx)
	if err != nil {
		return err
	}
	kept := materials[:0]
	for _, m := range materials {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if err := writeCollection(ctx, s, MaterialsKey, kept); err != nil {
		return err
	}

	courses, err := s.ListCourses(ctx)
	if err != nil {
		return err
	}
	for i := range courses {
		refs := make([]string, 0, len(courses[i].Materials))
		for _, ref := range courses[i].Materials {
			if ref != id {
				refs = append(refs, ref)
			}
		}
		courses[i].Materials = refs
	}
	return writeCollection(ctx, s, CoursesKey, courses)
}

// GetCourseByID returns nil when the course does not exist
func (s *Store) GetCourseByID(ctx context.Context, id string) (*models.Course, error) {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	if i := courseIndex(courses, id); i >= 0 {
		return &courses[i], nil
	}
	return nil, nil
}

// GetMaterialByID returns nil when the material does not exist
func (s *Store) GetMaterialByID(ctx context.Context, id string) (*models.Material, error) {
	materials, err := s.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}
	for i := range materials {
		if materials[i].ID == id {
			return &materials[i], nil
		}
	}
	return nil, nil
}

// GetMaterialsByCourse resolves the course's material ids in course order.
// Ids without a matching material are skipped.
func (s *Store) GetMaterialsByCourse(ctx context.Context, courseID string) ([]models.Material, error) {
	course, err := s.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	result := []models.Material{}
	if course == nil {
		return result, nil
	}

	materials, err := s.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Material, len(materials))
	for _, m := range materials {
		byID[m.ID] = m
	}
	for _, ref := range course.Materials {
		if m, ok := byID[ref]; ok {
			result = append(result, m)
		}
	}
	return result, nil
}

// UpdateCourseProgress sets progress directly, bypassing chapter-derived progress
func (s *Store) UpdateCourseProgress(ctx context.Context, courseID string, progress int) error {
	return s.updateCourse(ctx, courseID, func(c *models.Course) bool {
		c.Progress = clampPercent(progress)
		return true
	})
}

func (s *Store) AddMaterialToCourse(ctx context.Context, courseID, materialID string) error {
	return s.updateCourse(ctx, courseID, func(c *models.Course) bool {
		if c.HasMaterial(materialID) {
			return false
		}
		c.Materials = append(c.Materials, materialID)
		return true
	})
}

// UpdateChapterCompletion toggles a chapter and recomputes the course progress
func (s *Store) UpdateChapterCompletion(ctx context.Context, courseID, chapterID string, completed bool) error {
	return s.updateCourse(ctx, courseID, func(c *models.Course) bool {
		found := false
		for i := range c.Chapters {
			if c.Chapters[i].ID == chapterID {
				c.Chapters[i].Completed = completed
				found = true
				break
			}
		}
		if !found {
			return false
		}
		c.Progress = CalculateProgress(c.Chapters)
		return true
	})
}

// updateCourse applies fn to the stored course and writes the collection back
// when fn reports a change. Missing courses are a no-op.
func (s *Store) updateCourse(ctx context.Context, courseID string, fn func(*models.Course) bool) error {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return err
	}
	i := courseIndex(courses, courseID)
	if i < 0 {
		return nil
	}
	if !fn(&courses[i]) {
		return nil
	}
	courses[i].UpdatedAt = s.now()
	return writeCollection(ctx, s, CoursesKey, courses)
}

func courseIndex(courses []models.Course, id string) int {
	for i := range courses {
		if courses[i].ID == id {
			return i
		}
	}
	return -1
}
