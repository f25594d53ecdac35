package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/local/easystudy/api/models"
	"github.com/local/easystudy/api/services"
	"github.com/local/easystudy/api/store"
	"github.com/rs/zerolog/log"
)

type GenerateMaterialRequest struct {
	Type     models.MaterialType `json:"type" binding:"required,oneof=outline notes flashcards quiz"`
	Topic    string              `json:"topic" binding:"required"`
	Section  string              `json:"section"`
	CourseID string              `json:"courseId"`
}

// MaterialQuery searches materials by title and content
type MaterialQuery struct {
	Q    string              `form:"q"`
	Type models.MaterialType `form:"type" binding:"omitempty,oneof=outline notes flashcards quiz"`
}

type MaterialResponse struct {
	Material   *models.Material `json:"material"`
	Parsed     models.Content   `json:"parsed,omitempty"`
	ParseError string           `json:"parseError,omitempty"`
}

func (h *Handler) ListMaterials(c *gin.Context) {
	var query MaterialQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	materials, err := h.store.ListMaterials(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store.SearchMaterials(materials, query.Q, query.Type))
}

func (h *Handler) GetMaterial(c *gin.Context) {
	material, err := h.store.GetMaterialByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if material == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
		return
	}

	resp := MaterialResponse{Material: material}
	if parsed, err := material.Parse(); err != nil {
		resp.ParseError = err.Error()
	} else {
		resp.Parsed = parsed
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteMaterial(c *gin.Context) {
	ctx := c.Request.Context()
	material, err := h.store.GetMaterialByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if material == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
		return
	}

	if err := h.store.DeleteMaterial(ctx, material.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Material deleted"})
}

// GenerateMaterial generates a material, saves it and attaches it to the
// course when courseId is given. Nothing is saved when generation fails.
func (h *Handler) GenerateMaterial(c *gin.Context) {
	var req GenerateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	key := "topic:" + strings.ToLower(strings.TrimSpace(req.Topic))
	if req.CourseID != "" {
		course, err := h.store.GetCourseByID(ctx, req.CourseID)
		if err != nil {
			respondError(c, err)
			return
		}
		if course == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		key = "course:" + course.ID
	}

	release, err := h.sessions.Guard().Acquire(key)
	if err != nil {
		respondError(c, err)
		return
	}
	defer release()

	material, err := h.gen.Generate(ctx, services.GenerateRequest{
		Type:    req.Type,
		Topic:   req.Topic,
		Section: req.Section,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.SaveMaterial(ctx, *material); err != nil {
		respondError(c, err)
		return
	}
	if req.CourseID != "" {
		if err := h.store.AddMaterialToCourse(ctx, req.CourseID, material.ID); err != nil {
			respondError(c, err)
			return
		}
	}

	log.Info().Str("material_id", material.ID).Str("type", string(material.Type)).Msg("Material generated")
	c.JSON(http.StatusCreated, material)
}

// UploadSource extracts text from an uploaded PDF for use as source material
func (h *Handler) UploadSource(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
		return
	}

	if file.Size > h.cfg.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds upload limit"})
		return
	}

	f, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer f.Close()

	text, err := services.SourceFromPDF(f, file.Size)
	if err != nil {
		if !errors.Is(err, services.ErrNoText) {
			log.Warn().Err(err).Str("file", file.Filename).Msg("Failed to extract text")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to extract text from PDF"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text, "fileName": file.Filename})
}
