package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/local/easystudy/api/models"
	"github.com/local/easystudy/api/services"
	"github.com/local/easystudy/api/store"
)

type CreateCourseRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Chapters      int    `json:"chapters" binding:"gte=0"`
	IncludeVideos bool   `json:"includeVideos"`
}

// UpdateCourseRequest edits a course in place. Omitted fields keep their
// stored values; sending chapters replaces them and recomputes progress.
type UpdateCourseRequest struct {
	Title       *string          `json:"title" binding:"omitempty,min=1"`
	Description *string          `json:"description"`
	Progress    *int             `json:"progress" binding:"omitempty,gte=0,lte=100"`
	Materials   []string         `json:"materials"`
	Chapters    []models.Chapter `json:"chapters"`
}

// CourseQuery narrows the course list. Status takes the dashboard tabs.
type CourseQuery struct {
	Q      string `form:"q"`
	Status string `form:"status"`
}

type ProgressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

type ChapterRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func (h *Handler) ListCourses(c *gin.Context) {
	var query CourseQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := store.ParseCourseStatus(query.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	courses, err := h.store.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store.FilterCourses(courses, query.Q, status))
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	course, err := h.builder.Build(ctx, services.CourseRequest{
		Title:         req.Title,
		Description:   req.Description,
		Chapters:      req.Chapters,
		IncludeVideos: req.IncludeVideos,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.SaveCourse(ctx, course); err != nil {
		respondError(c, err)
		return
	}

	saved, err := h.store.GetCourseByID(ctx, course.ID)
	if err != nil || saved == nil {
		saved = &course
	}
	c.JSON(http.StatusCreated, saved)
}

// course loads the course named by the :id param, writing a 404 when missing
func (h *Handler) course(c *gin.Context) (*models.Course, bool) {
	course, err := h.store.GetCourseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if course == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return nil, false
	}
	return course, true
}

func (h *Handler) GetCourse(c *gin.Context) {
	course, ok := h.course(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, course)
}

// respondCourse writes the current stored state of course id
func (h *Handler) respondCourse(c *gin.Context, id string) {
	course, err := h.store.GetCourseByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if course == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	existing, ok := h.course(c)
	if !ok {
		return
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := *existing
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Materials != nil {
		course.Materials = req.Materials
	}
	switch {
	case len(req.Chapters) > 0:
		course.Chapters = req.Chapters
		for i := range course.Chapters {
			if course.Chapters[i].ID == "" {
				course.Chapters[i].ID = uuid.NewString()
			}
		}
		course.Progress = store.CalculateProgress(course.Chapters)
	case req.Progress != nil:
		course.Progress = *req.Progress
	}

	if err := h.store.SaveCourse(c.Request.Context(), course); err != nil {
		respondError(c, err)
		return
	}
	h.respondCourse(c, course.ID)
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	course, ok := h.course(c)
	if !ok {
		return
	}
	if err := h.store.DeleteCourse(c.Request.Context(), course.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}

func (h *Handler) UpdateProgress(c *gin.Context) {
	course, ok := h.course(c)
	if !ok {
		return
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.UpdateCourseProgress(c.Request.Context(), course.ID, *req.Progress); err != nil {
		respondError(c, err)
		return
	}
	h.respondCourse(c, course.ID)
}

func (h *Handler) UpdateChapter(c *gin.Context) {
	course, ok := h.course(c)
	if !ok {
		return
	}

	chapterID := c.Param("chapterId")
	found := false
	for _, ch := range course.Chapters {
		if ch.ID == chapterID {
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chapter not found"})
		return
	}

	var req ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.UpdateChapterCompletion(c.Request.Context(), course.ID, chapterID, *req.Completed); err != nil {
		respondError(c, err)
		return
	}
	h.respondCourse(c, course.ID)
}

func (h *Handler) GetCourseMaterials(c *gin.Context) {
	course, ok := h.course(c)
	if !ok {
		return
	}
	var query MaterialQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	materials, err := h.store.GetMaterialsByCourse(c.Request.Context(), course.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store.SearchMaterials(materials, query.Q, query.Type))
}

func (h *Handler) AttachMaterial(c *gin.Context) {
	course, ok := h.course(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	material, err := h.store.GetMaterialByID(ctx, c.Param("materialId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if material == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
		return
	}

	if err := h.store.AddMaterialToCourse(ctx, course.ID, material.ID); err != nil {
		respondError(c, err)
		return
	}
	h.respondCourse(c, course.ID)
}
