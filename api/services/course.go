package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/local/easystudy/api/models"
	"github.com/rs/zerolog/log"
)

const (
	DefaultChapterCount = 5
	MaxChapterCount     = 20
)

type CourseRequest struct {
	Title         string
	Description   string
	Chapters      int
	IncludeVideos bool
}

// CourseBuilder assembles a new course with templated chapters
type CourseBuilder struct {
	videos VideoResolver
	now    func() time.Time
}

// NewCourseBuilder creates a builder. videos may be nil when chapter videos
// are never requested.
func NewCourseBuilder(videos VideoResolver) *CourseBuilder {
	return &CourseBuilder{videos: videos, now: time.Now}
}

func (b *CourseBuilder) Build(ctx context.Context, req CourseRequest) (models.Course, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Course{}, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = fmt.Sprintf("Comprehensive course on %s for students of all levels.", title)
	}

	count := req.Chapters
	if count <= 0 {
		count = DefaultChapterCount
	}
	if count > MaxChapterCount {
		count = MaxChapterCount
	}

	chapters := make([]models.Chapter, count)
	for i := range chapters {
		n := i + 1
		chapters[i] = models.Chapter{
			ID:       fmt.Sprintf("chapter-%d", n),
			Title:    fmt.Sprintf("Chapter %d", n),
			Content:  fmt.Sprintf("This is auto-generated content for Chapter %d. This will be replaced with AI-generated content.", n),
			Duration: fmt.Sprintf("%d minutes", 10+n*5),
		}
	}

	if req.IncludeVideos && b.videos != nil {
		for i := range chapters {
			if err := ctx.Err(); err != nil {
				return models.Course{}, err
			}
			query := fmt.Sprintf("%s %s", title, chapters[i].Title)
			id, found, err := b.videos.Resolve(ctx, query)
			if err != nil {
				log.Warn().Err(err).Str("query", query).Msg("Failed to resolve chapter video")
				continue
			}
			if found {
				chapters[i].VideoID = id
			}
		}
	}

	now := b.now().UTC()
	return models.Course{
		ID:          "course-" + uuid.NewString(),
		Title:       title,
		Description: description,
		Materials:   []string{},
		Chapters:    chapters,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
