package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/local/easystudy/api/services"
	"github.com/local/easystudy/api/session"
)

var (
	ErrInterviewNotFound   = errors.New("interview not found")
	ErrInterviewInProgress = errors.New("interview must be submitted before feedback")
	ErrNoFeedback          = errors.New("no feedback generated for this interview")
)

type CreateInterviewRequest struct {
	JobTitle        string `json:"jobTitle" binding:"required"`
	TechStack       string `json:"techStack"`
	YearsExperience int    `json:"yearsExperience" binding:"gte=0"`
}

type FeedbackView struct {
	ID      string                    `json:"id"`
	Profile services.InterviewProfile `json:"profile"`
	Report  *services.InterviewReport `json:"report"`
}

// CreateInterview prepares interview questions for a role and starts an
// interview session. Answers go through the session routes.
func (h *Handler) CreateInterview(c *gin.Context) {
	var req CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := services.InterviewProfile{
		JobTitle:        req.JobTitle,
		TechStack:       req.TechStack,
		YearsExperience: req.YearsExperience,
	}
	questions, err := h.interviewer.InterviewQuestions(c.Request.Context(), profile)
	if err != nil {
		respondError(c, err)
		return
	}

	id := uuid.NewString()
	s := session.New(session.KindInterview)
	s.Describe(profile.Details())
	if err := s.Start(questions); err != nil {
		respondError(c, err)
		return
	}
	view := newSessionView(id, s)
	h.sessions.PutInterview(id, s, profile)
	c.JSON(http.StatusCreated, view)
}

// EvaluateInterview grades a submitted interview and keeps the report
func (h *Handler) EvaluateInterview(c *gin.Context) {
	id := c.Param("id")

	var (
		profile   services.InterviewProfile
		questions []session.Question
	)
	err := h.sessions.WithInterview(id, func(s *session.Session, iv *Interview) error {
		if iv == nil {
			return ErrInterviewNotFound
		}
		if s.State() != session.Completed {
			return ErrInterviewInProgress
		}
		profile = iv.Profile
		questions = s.Questions()
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	release, err := h.sessions.Guard().Acquire(id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer release()

	report, err := h.interviewer.EvaluateInterview(c.Request.Context(), profile, questions)
	if err != nil {
		respondError(c, err)
		return
	}

	err = h.sessions.WithInterview(id, func(s *session.Session, iv *Interview) error {
		if iv == nil {
			return ErrInterviewNotFound
		}
		if s.State() != session.Completed {
			return ErrInterviewInProgress
		}
		iv.Report = report
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, FeedbackView{ID: id, Profile: profile, Report: report})
}

func (h *Handler) GetInterviewFeedback(c *gin.Context) {
	id := c.Param("id")
	var view FeedbackView
	err := h.sessions.WithInterview(id, func(_ *session.Session, iv *Interview) error {
		if iv == nil {
			return ErrInterviewNotFound
		}
		if iv.Report == nil {
			return ErrNoFeedback
		}
		view = FeedbackView{ID: id, Profile: iv.Profile, Report: iv.Report}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RestartSession clears answers and drops any interview report
func (h *Handler) RestartSession(c *gin.Context) {
	id := c.Param("id")
	var view SessionView
	err := h.sessions.WithInterview(id, func(s *session.Session, iv *Interview) error {
		if err := s.Restart(); err != nil {
			return err
		}
		if iv != nil {
			iv.Report = nil
		}
		view = newSessionView(id, s)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
