package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/local/easystudy/api/services"
	"github.com/local/easystudy/api/session"
)

var ErrKindMismatch = errors.New("session kind cannot change on regenerate")

type CreateSessionRequest struct {
	SessionID      string                 `json:"sessionId"`
	Kind           session.Kind           `json:"kind" binding:"required,oneof=exam quiz"`
	Topic          string                 `json:"topic" binding:"required"`
	SourceMaterial string                 `json:"sourceMaterial"`
	Count          int                    `json:"count" binding:"gte=0,lte=50"`
	Difficulty     string                 `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	QuestionTypes  []session.QuestionType `json:"questionTypes"`
}

// AnswerRequest carries exactly one of Choice or Text. A missing Index
// answers the current question.
type AnswerRequest struct {
	Index  *int    `json:"index"`
	Choice *int    `json:"choice"`
	Text   *string `json:"text"`
}

type SessionView struct {
	ID          string          `json:"id"`
	Kind        session.Kind    `json:"kind"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	State       session.State   `json:"state"`
	Index       int             `json:"index"`
	Answered    int             `json:"answered"`
	Total       int             `json:"total"`
	Questions   []QuestionView  `json:"questions"`
	Result      *session.Result `json:"result,omitempty"`
}

// QuestionView is a question as shown to the learner. CorrectAnswer and
// Explanation stay empty until the session is completed.
type QuestionView struct {
	ID            int                  `json:"id"`
	Question      string               `json:"question"`
	Options       []string             `json:"options,omitempty"`
	Type          session.QuestionType `json:"type"`
	UserAnswer    session.Answer       `json:"userAnswer,omitempty"`
	CorrectAnswer session.Answer       `json:"correctAnswer,omitempty"`
	Explanation   string               `json:"explanation,omitempty"`
}

func (v *QuestionView) UnmarshalJSON(data []byte) error {
	type plain QuestionView
	var raw struct {
		plain
		UserAnswer    json.RawMessage `json:"userAnswer"`
		CorrectAnswer json.RawMessage `json:"correctAnswer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = QuestionView(raw.plain)

	var err error
	if v.UserAnswer, err = session.DecodeAnswer(raw.UserAnswer, v.Type, v.Options); err != nil {
		return err
	}
	v.CorrectAnswer, err = session.DecodeAnswer(raw.CorrectAnswer, v.Type, v.Options)
	return err
}

func newQuestionViews(s *session.Session) []QuestionView {
	reveal := s.State() == session.Completed
	questions := s.Questions()
	views := make([]QuestionView, len(questions))
	for i, q := range questions {
		views[i] = QuestionView{
			ID:         q.ID,
			Question:   q.Question,
			Options:    q.Options,
			Type:       q.Type,
			UserAnswer: q.UserAnswer,
		}
		if reveal {
			views[i].CorrectAnswer = q.CorrectAnswer
			views[i].Explanation = q.Explanation
		}
	}
	return views
}

// newSessionView renders s. Interviews are graded by feedback rather than
// exact match, so their result is left out.
func newSessionView(id string, s *session.Session) SessionView {
	answered, total := s.Progress()
	result := s.Result()
	if s.Kind() == session.KindInterview {
		result = nil
	}
	return SessionView{
		ID:          id,
		Kind:        s.Kind(),
		Title:       s.Title(),
		Description: s.Description(),
		State:       s.State(),
		Index:       s.Index(),
		Answered:    answered,
		Total:       total,
		Questions:   newQuestionViews(s),
		Result:      result,
	}
}

// CreateSession generates questions and starts a session. Passing an
// existing sessionId regenerates that session in place.
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := req.SessionID
	status := http.StatusOK
	if id == "" {
		id = uuid.NewString()
		status = http.StatusCreated
	} else if err := h.sessions.With(id, func(s *session.Session) error {
		if s.Kind() != req.Kind {
			return ErrKindMismatch
		}
		return nil
	}); err != nil {
		respondError(c, err)
		return
	}

	release, err := h.sessions.Guard().Acquire(id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer release()

	qreq := services.QuestionsRequest{
		Kind:           req.Kind,
		Topic:          req.Topic,
		SourceMaterial: req.SourceMaterial,
		Count:          req.Count,
		Difficulty:     req.Difficulty,
		QuestionTypes:  req.QuestionTypes,
	}
	questions, err := h.gen.GenerateQuestions(c.Request.Context(), qreq)
	if err == nil {
		err = session.Validate(questions)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	start := func(s *session.Session) error {
		s.Reset()
		if req.Kind == session.KindExam {
			s.Describe(services.ExamDetails(qreq))
		}
		return s.Start(questions)
	}

	var view SessionView
	if status == http.StatusCreated {
		s := session.New(req.Kind)
		if err := start(s); err != nil {
			respondError(c, err)
			return
		}
		view = newSessionView(id, s)
		h.sessions.Put(id, s)
	} else {
		err = h.sessions.With(id, func(s *session.Session) error {
			if err := start(s); err != nil {
				return err
			}
			view = newSessionView(id, s)
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(status, view)
}

func (h *Handler) GetSession(c *gin.Context) {
	h.sessionAction(func(*session.Session) error { return nil })(c)
}

func (h *Handler) AnswerQuestion(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var answer session.Answer
	switch {
	case req.Choice != nil && req.Text == nil:
		answer = session.Choice(*req.Choice)
	case req.Text != nil && req.Choice == nil:
		answer = session.Text(*req.Text)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide exactly one of choice or text"})
		return
	}

	h.sessionAction(func(s *session.Session) error {
		if req.Index == nil {
			return s.AnswerCurrent(answer)
		}
		return s.Answer(*req.Index, answer)
	})(c)
}

func (h *Handler) DeleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		respondError(c, ErrSessionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// sessionAction applies action to the :id session and responds with its view
func (h *Handler) sessionAction(action func(*session.Session) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var view SessionView
		err := h.sessions.With(id, func(s *session.Session) error {
			if err := action(s); err != nil {
				return err
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
}
