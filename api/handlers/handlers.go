package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/local/easystudy/api/config"
	"github.com/local/easystudy/api/services"
	"github.com/local/easystudy/api/session"
	"github.com/local/easystudy/api/store"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type Handler struct {
	cfg         *config.Config
	store       *store.Store
	gen         services.Generator
	interviewer services.Interviewer
	builder     *services.CourseBuilder
	sessions    *SessionRegistry
	limiter     *rate.Limiter
}

func New(cfg *config.Config, st *store.Store) *Handler {
	perMinute := cfg.GenerationRate
	if perMinute <= 0 {
		perMinute = 30
	}

	return &Handler{
		cfg:         cfg,
		store:       st,
		gen:         NewGenerator(cfg),
		interviewer: NewInterviewer(cfg),
		builder:     services.NewCourseBuilder(NewVideoResolver(cfg)),
		sessions:    NewSessionRegistry(),
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

// NewGenerator picks the content generator configured by GENERATION_PROVIDER
func NewGenerator(cfg *config.Config) services.Generator {
	if p := newAIProvider(cfg); p != nil {
		return services.NewProviderGenerator(p)
	}
	return services.NewMockGenerator(cfg.GenerationDelay)
}

// NewInterviewer picks the interview backend the same way as NewGenerator
func NewInterviewer(cfg *config.Config) services.Interviewer {
	if p := newAIProvider(cfg); p != nil {
		return services.NewProviderGenerator(p)
	}
	return services.NewMockGenerator(cfg.GenerationDelay)
}

func newAIProvider(cfg *config.Config) services.AIProvider {
	switch cfg.GenerationProvider {
	case "anthropic":
		return services.NewAIProvider("anthropic", cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case "openai":
		return services.NewAIProvider("openai", cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	return nil
}

func NewVideoResolver(cfg *config.Config) services.VideoResolver {
	if cfg.VideoProvider == "youtube" {
		return services.NewYouTubeResolver(cfg.YouTubeAPIKey, "")
	}
	return &services.MockVideoResolver{Delay: cfg.GenerationDelay}
}

// Register mounts the API routes under /api
func (h *Handler) Register(router gin.IRouter) {
	api := router.Group("/api")
	limited := h.RateLimit()

	api.GET("/health", h.Health)

	api.GET("/courses", h.ListCourses)
	api.POST("/courses", limited, h.CreateCourse)
	api.GET("/courses/:id", h.GetCourse)
	api.PUT("/courses/:id", h.UpdateCourse)
	api.DELETE("/courses/:id", h.DeleteCourse)
	api.PUT("/courses/:id/progress", h.UpdateProgress)
	api.PUT("/courses/:id/chapters/:chapterId", h.UpdateChapter)
	api.GET("/courses/:id/materials", h.GetCourseMaterials)
	api.POST("/courses/:id/materials/:materialId", h.AttachMaterial)

	api.GET("/materials", h.ListMaterials)
	api.POST("/materials/generate", limited, h.GenerateMaterial)
	api.GET("/materials/:id", h.GetMaterial)
	api.DELETE("/materials/:id", h.DeleteMaterial)

	api.POST("/sources/pdf", h.UploadSource)

	api.POST("/sessions", limited, h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)
	api.POST("/sessions/:id/answer", h.AnswerQuestion)
	api.POST("/sessions/:id/next", h.sessionAction(func(s *session.Session) error {
		_, err := s.Next()
		return err
	}))
	api.POST("/sessions/:id/previous", h.sessionAction(func(s *session.Session) error {
		_, err := s.Previous()
		return err
	}))
	api.POST("/sessions/:id/submit", h.sessionAction(func(s *session.Session) error {
		_, err := s.Submit()
		return err
	}))
	api.POST("/sessions/:id/restart", h.RestartSession)
	api.DELETE("/sessions/:id", h.DeleteSession)

	api.POST("/interviews", limited, h.CreateInterview)
	api.POST("/interviews/:id/feedback", limited, h.EvaluateInterview)
	api.GET("/interviews/:id/feedback", h.GetInterviewFeedback)

	api.GET("/analytics", h.Analytics)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "ok",
		"storage_driver":      h.cfg.StorageDriver,
		"generation_provider": h.cfg.GenerationProvider,
		"video_provider":      h.cfg.VideoProvider,
	})
}

// RateLimit rejects generation requests beyond GENERATION_RATE per minute
func (h *Handler) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many generation requests, try again shortly"})
			return
		}
		c.Next()
	}
}

func (h *Handler) Analytics(c *gin.Context) {
	summary, err := h.store.Analytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func statusFor(err error) int {
	var verr *session.ValidationError
	switch {
	case errors.Is(err, services.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrGenerationInFlight),
		errors.Is(err, session.ErrSessionCompleted),
		errors.Is(err, ErrInterviewInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrInterviewNotFound),
		errors.Is(err, ErrNoFeedback):
		return http.StatusNotFound
	case errors.As(err, &verr),
		errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, session.ErrQuestionOutOfRange),
		errors.Is(err, session.ErrInvalidAnswer),
		errors.Is(err, session.ErrNoActiveSession),
		errors.Is(err, ErrKindMismatch):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}

	body := gin.H{"error": err.Error()}
	var verr *session.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		body["fields"] = verr.Fields
	}
	c.JSON(status, body)
}
