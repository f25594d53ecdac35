package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/local/easystudy/api/config"
	"github.com/local/easystudy/api/models"
	"github.com/local/easystudy/api/services"
	"github.com/local/easystudy/api/session"
	"github.com/local/easystudy/api/storage"
	"github.com/local/easystudy/api/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func setup(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		StorageDriver:      "memory",
		GenerationProvider: "mock",
		VideoProvider:      "mock",
		GenerationRate:     1000,
		MaxUploadSize:      1 << 20,
	}
	h := New(cfg, store.New(storage.NewMemory(), store.WithLogger(zerolog.Nop())))

	router := gin.New()
	h.Register(router)
	return router, h
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createCourse(t *testing.T, router http.Handler, title string) models.Course {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/courses", gin.H{"title": title, "chapters": 4})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Course](t, w)
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, services.GenerateRequest) (*models.Material, error) {
	return nil, fmt.Errorf("%w: provider down", services.ErrGenerationFailed)
}

func (failingGenerator) GenerateQuestions(context.Context, services.QuestionsRequest) ([]session.Question, error) {
	return nil, fmt.Errorf("%w: provider down", services.ErrGenerationFailed)
}

func TestHealth(t *testing.T) {
	router, _ := setup(t)
	w := do(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
}

func TestCourses(t *testing.T) {
	router, _ := setup(t)

	w := do(t, router, http.MethodGet, "/api/courses", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	course := createCourse(t, router, "Physics")
	assert.Len(t, course.Chapters, 4)
	assert.Equal(t, "Comprehensive course on Physics for students of all levels.", course.Description)

	w = do(t, router, http.MethodGet, "/api/courses/"+course.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPut, "/api/courses/"+course.ID+"/chapters/chapter-1", gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 25, decode[models.Course](t, w).Progress)

	w = do(t, router, http.MethodPut, "/api/courses/"+course.ID+"/progress", gin.H{"progress": 150})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, decode[models.Course](t, w).Progress)

	course.Title = "Modern Physics"
	w = do(t, router, http.MethodPut, "/api/courses/"+course.ID, course)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Modern Physics", decode[models.Course](t, w).Title)

	w = do(t, router, http.MethodDelete, "/api/courses/"+course.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodGet, "/api/courses/"+course.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCourse(t *testing.T) {
	router, _ := setup(t)
	course := createCourse(t, router, "Physics")
	path := "/api/courses/" + course.ID

	for _, p := range []int{250, -7} {
		w := do(t, router, http.MethodPut, path, gin.H{"progress": p})
		assert.Equal(t, http.StatusBadRequest, w.Code, "progress %d", p)
	}

	w := do(t, router, http.MethodPut, path, gin.H{"title": "Modern Physics", "progress": 40})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Course](t, w)
	assert.Equal(t, "Modern Physics", updated.Title)
	assert.Equal(t, course.Description, updated.Description)
	assert.Equal(t, 40, updated.Progress)
	assert.Len(t, updated.Chapters, 4)

	chapters := updated.Chapters[:2]
	chapters[0].Completed = true
	w = do(t, router, http.MethodPut, path, gin.H{"chapters": chapters, "progress": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated = decode[models.Course](t, w)
	assert.Len(t, updated.Chapters, 2)
	assert.Equal(t, 50, updated.Progress)
	assert.Equal(t, "Modern Physics", updated.Title)
}

func TestCourses_BadRequests(t *testing.T) {
	router, _ := setup(t)
	course := createCourse(t, router, "Physics")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"missing title", http.MethodPost, "/api/courses", gin.H{"description": "x"}, http.StatusBadRequest},
		{"unknown course", http.MethodGet, "/api/courses/nope", nil, http.StatusNotFound},
		{"unknown chapter", http.MethodPut, "/api/courses/" + course.ID + "/chapters/chapter-9", gin.H{"completed": true}, http.StatusNotFound},
		{"missing completed", http.MethodPut, "/api/courses/" + course.ID + "/chapters/chapter-1", gin.H{}, http.StatusBadRequest},
		{"missing progress", http.MethodPut, "/api/courses/" + course.ID + "/progress", gin.H{}, http.StatusBadRequest},
		{"unknown material", http.MethodPost, "/api/courses/" + course.ID + "/materials/nope", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestMaterials(t *testing.T) {
	router, _ := setup(t)
	course := createCourse(t, router, "Chemistry")

	w := do(t, router, http.MethodPost, "/api/materials/generate", gin.H{"type": "flashcards", "topic": "Chemistry", "courseId": course.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	material := decode[models.Material](t, w)
	assert.Equal(t, models.MaterialFlashcards, material.Type)

	w = do(t, router, http.MethodGet, "/api/courses/"+course.ID+"/materials", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.Material](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, material.ID, list[0].ID)

	w = do(t, router, http.MethodGet, "/api/materials/"+material.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Material models.Material   `json:"material"`
		Parsed   models.Flashcards `json:"parsed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Parsed.Cards, 5)

	w = do(t, router, http.MethodDelete, "/api/materials/"+material.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/courses/"+course.ID, nil)
	assert.Empty(t, decode[models.Course](t, w).Materials)
	w = do(t, router, http.MethodGet, "/api/materials/"+material.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourses_SearchAndStatus(t *testing.T) {
	router, _ := setup(t)
	physics := createCourse(t, router, "Physics")
	chemistry := createCourse(t, router, "Organic Chemistry")
	createCourse(t, router, "Biology")

	do(t, router, http.MethodPut, "/api/courses/"+physics.ID+"/progress", gin.H{"progress": 100})
	do(t, router, http.MethodPut, "/api/courses/"+chemistry.ID+"/progress", gin.H{"progress": 30})

	titles := func(path string) []string {
		w := do(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		out := []string{}
		for _, c := range decode[[]models.Course](t, w) {
			out = append(out, c.Title)
		}
		return out
	}

	assert.Len(t, titles("/api/courses"), 3)
	assert.Equal(t, []string{"Physics"}, titles("/api/courses?status=completed"))
	assert.Equal(t, []string{"Organic Chemistry"}, titles("/api/courses?status=in-progress"))
	assert.Equal(t, []string{"Organic Chemistry"}, titles("/api/courses?q=CHEMISTRY"))
	assert.Equal(t, []string{"Physics", "Organic Chemistry", "Biology"}, titles("/api/courses?q=comprehensive"))
	assert.Empty(t, titles("/api/courses?q=physics&status=in-progress"))

	w := do(t, router, http.MethodGet, "/api/courses?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMaterials_Search(t *testing.T) {
	router, _ := setup(t)
	course := createCourse(t, router, "Earth Science")

	w := do(t, router, http.MethodPost, "/api/materials/generate", gin.H{"type": "outline", "topic": "Photosynthesis", "courseId": course.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	outline := decode[models.Material](t, w)
	w = do(t, router, http.MethodPost, "/api/materials/generate", gin.H{"type": "flashcards", "topic": "Volcanoes", "courseId": course.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodGet, "/api/materials?q=photoSYNTHESIS", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.Material](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, outline.ID, list[0].ID)

	w = do(t, router, http.MethodGet, "/api/materials?type=flashcards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Material](t, w), 1)

	w = do(t, router, http.MethodGet, "/api/courses/"+course.ID+"/materials?q=volcanoes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[[]models.Material](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, models.MaterialFlashcards, list[0].Type)

	w = do(t, router, http.MethodGet, "/api/materials?type=essay", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMaterials_Attach(t *testing.T) {
	router, _ := setup(t)
	course := createCourse(t, router, "Biology")

	w := do(t, router, http.MethodPost, "/api/materials/generate", gin.H{"type": "outline", "topic": "Cells"})
	require.Equal(t, http.StatusCreated, w.Code)
	material := decode[models.Material](t, w)

	for i := 0; i < 2; i++ {
		w = do(t, router, http.MethodPost, "/api/courses/"+course.ID+"/materials/"+material.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, []string{material.ID}, decode[models.Course](t, w).Materials)

	w = do(t, router, http.MethodGet, "/api/materials", nil)
	assert.Len(t, decode[[]models.Material](t, w), 1)
}

func TestMaterials_GenerateErrors(t *testing.T) {
	router, h := setup(t)

	w := do(t, router, http.MethodPost, "/api/materials/generate", gin.H{"type": "video", "topic": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/materials/generate", gin.H{"type": "notes", "topic": "x", "courseId": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	h.gen = failingGenerator{}
	w = do(t, router, http.MethodPost, "/api/materials/generate", gin.H{"type": "notes", "topic": "x"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = do(t, router, http.MethodGet, "/api/materials", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestMaterials_InFlight(t *testing.T) {
	router, h := setup(t)
	course := createCourse(t, router, "Go")

	release, err := h.sessions.Guard().Acquire("course:" + course.ID)
	require.NoError(t, err)
	defer release()

	w := do(t, router, http.MethodPost, "/api/materials/generate", gin.H{"type": "notes", "topic": "Go", "courseId": course.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessions_Flow(t *testing.T) {
	router, h := setup(t)

	w := do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "exam", "topic": "History", "count": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decode[SessionView](t, w)
	assert.Equal(t, session.KindExam, view.Kind)
	assert.Equal(t, "History Exam", view.Title)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 1, h.sessions.Len())
	base := "/api/sessions/" + view.ID

	w = do(t, router, http.MethodPost, base+"/answer", gin.H{"choice": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, decode[SessionView](t, w).Index)

	w = do(t, router, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[SessionView](t, w).Index)

	w = do(t, router, http.MethodPost, base+"/answer", gin.H{"index": 1, "choice": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[SessionView](t, w).Answered)

	w = do(t, router, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[SessionView](t, w)
	require.NotNil(t, view.Result)
	assert.Equal(t, 1, view.Result.Score)
	assert.Equal(t, 50, view.Result.Percentage)
	assert.Equal(t, "Keep practicing!", view.Result.Message)
	require.Len(t, view.Result.IncorrectQuestions, 1)

	w = do(t, router, http.MethodPost, base+"/answer", gin.H{"choice": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, base+"/restart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[SessionView](t, w)
	assert.Nil(t, view.Result)
	assert.Zero(t, view.Answered)

	w = do(t, router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessions_BadAnswers(t *testing.T) {
	router, _ := setup(t)

	w := do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "quiz", "topic": "Art", "count": 2, "questionTypes": []string{"short-answer"}})
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/sessions/" + decode[SessionView](t, w).ID

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"neither", gin.H{}, http.StatusBadRequest},
		{"both", gin.H{"choice": 0, "text": "x"}, http.StatusBadRequest},
		{"out of range", gin.H{"index": 5, "text": "x"}, http.StatusBadRequest},
		{"text", gin.H{"text": "Systematic"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, base+"/answer", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w = do(t, router, http.MethodPost, "/api/sessions/nope/next", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessions_HidesAnswersUntilSubmit(t *testing.T) {
	router, _ := setup(t)

	w := do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "quiz", "topic": "Art", "count": 2, "questionTypes": []string{"multiple-choice"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "correctAnswer")
	assert.NotContains(t, w.Body.String(), "explanation")
	base := "/api/sessions/" + decode[SessionView](t, w).ID

	w = do(t, router, http.MethodPost, base+"/answer", gin.H{"choice": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "correctAnswer")
	view := decode[SessionView](t, w)
	assert.Equal(t, session.Choice(1), view.Questions[0].UserAnswer)
	assert.Nil(t, view.Questions[0].CorrectAnswer)

	w = do(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "explanation")

	w = do(t, router, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[SessionView](t, w)
	for _, q := range view.Questions {
		assert.NotNil(t, q.CorrectAnswer)
		assert.NotEmpty(t, q.Explanation)
	}
}

func TestSessions_RejectsChoiceOutOfRange(t *testing.T) {
	router, _ := setup(t)

	w := do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "quiz", "topic": "Art", "count": 1, "questionTypes": []string{"multiple-choice"}})
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/sessions/" + decode[SessionView](t, w).ID

	w = do(t, router, http.MethodPost, base+"/answer", gin.H{"choice": 99})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	w = do(t, router, http.MethodPost, base+"/answer", gin.H{"text": "Paris"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = do(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[SessionView](t, w).Answered)
}

func TestSessions_CreateErrors(t *testing.T) {
	router, h := setup(t)

	w := do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "homework", "topic": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "quiz", "topic": "x", "questionTypes": []string{"essay"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "quiz", "topic": "x", "sessionId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	h.gen = failingGenerator{}
	w = do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "quiz", "topic": "x"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Zero(t, h.sessions.Len())
}

func TestSessions_Regenerate(t *testing.T) {
	router, h := setup(t)

	w := do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "quiz", "topic": "Math", "count": 3})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[SessionView](t, w).ID

	release, err := h.sessions.Guard().Acquire(id)
	require.NoError(t, err)
	w = do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "quiz", "topic": "Math", "sessionId": id})
	assert.Equal(t, http.StatusConflict, w.Code)
	release()

	w = do(t, router, http.MethodPost, "/api/sessions/"+id+"/answer", gin.H{"choice": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var before *session.Session
	require.NoError(t, h.sessions.With(id, func(s *session.Session) error {
		before = s
		return nil
	}))

	w = do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "exam", "topic": "Math", "sessionId": id})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "quiz", "topic": "Math", "count": 5, "sessionId": id})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[SessionView](t, w)
	assert.Equal(t, id, view.ID)
	assert.Equal(t, 5, view.Total)
	assert.Zero(t, view.Answered)
	assert.Equal(t, session.InProgress, view.State)
	assert.Equal(t, 1, h.sessions.Len())
	require.NoError(t, h.sessions.With(id, func(s *session.Session) error {
		assert.Same(t, before, s)
		return nil
	}))
}

func TestInterviews_Flow(t *testing.T) {
	router, h := setup(t)

	w := do(t, router, http.MethodPost, "/api/interviews", gin.H{"jobTitle": "Backend Engineer", "techStack": "Go, Postgres", "yearsExperience": 3})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "correctAnswer")
	view := decode[SessionView](t, w)
	assert.Equal(t, session.KindInterview, view.Kind)
	assert.Equal(t, "Backend Engineer Interview", view.Title)
	assert.Equal(t, services.InterviewQuestionCount, view.Total)
	assert.Contains(t, view.Questions[0].Question, "Go")
	base := "/api/sessions/" + view.ID
	feedback := "/api/interviews/" + view.ID + "/feedback"

	w = do(t, router, http.MethodPost, feedback, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(t, router, http.MethodGet, feedback, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPost, base+"/answer", gin.H{"choice": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, router, http.MethodPost, base+"/answer", gin.H{"text": "I built concrete projects in Go with a clean architecture and measurable results."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[SessionView](t, w)
	assert.Equal(t, session.Completed, view.State)
	assert.Nil(t, view.Result)
	assert.NotNil(t, view.Questions[0].CorrectAnswer)

	w = do(t, router, http.MethodPost, feedback, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	fb := decode[FeedbackView](t, w)
	assert.Equal(t, "Backend Engineer", fb.Profile.JobTitle)
	require.NotNil(t, fb.Report)
	require.Len(t, fb.Report.Questions, services.InterviewQuestionCount)
	assert.Positive(t, fb.Report.Questions[0].Rating)
	assert.NotEmpty(t, fb.Report.Questions[0].CorrectAnswer)
	assert.Zero(t, fb.Report.Questions[1].Rating)
	assert.LessOrEqual(t, fb.Report.Overall, 10)

	w = do(t, router, http.MethodGet, feedback, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fb.Report.Overall, decode[FeedbackView](t, w).Report.Overall)

	w = do(t, router, http.MethodPost, base+"/restart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodGet, feedback, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, h.sessions.Len())
}

func TestInterviews_BadRequests(t *testing.T) {
	router, _ := setup(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing job title", gin.H{"techStack": "Go"}},
		{"blank job title", gin.H{"jobTitle": "   "}},
		{"negative experience", gin.H{"jobTitle": "Dev", "yearsExperience": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/interviews", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := do(t, router, http.MethodPost, "/api/sessions", gin.H{"kind": "quiz", "topic": "Art", "count": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[SessionView](t, w).ID

	w = do(t, router, http.MethodPost, "/api/interviews/"+id+"/feedback", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, router, http.MethodGet, "/api/interviews/missing/feedback", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	router, h := setup(t)
	h.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	w := do(t, router, http.MethodPost, "/api/materials/generate", gin.H{"type": "notes", "topic": "x"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = do(t, router, http.MethodPost, "/api/materials/generate", gin.H{"type": "notes", "topic": "x"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = do(t, router, http.MethodGet, "/api/materials", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalytics(t *testing.T) {
	router, _ := setup(t)
	course := createCourse(t, router, "Economics")
	do(t, router, http.MethodPut, "/api/courses/"+course.ID+"/progress", gin.H{"progress": 40})
	do(t, router, http.MethodPost, "/api/materials/generate", gin.H{"type": "quiz", "topic": "Economics", "courseId": course.ID})

	w := do(t, router, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[store.Summary](t, w)
	assert.Equal(t, 1, sum.TotalCourses)
	assert.Equal(t, 1, sum.TotalMaterials)
	assert.Equal(t, 40, sum.TotalProgress)
	assert.Equal(t, 1, sum.MaterialsByType[models.MaterialQuiz])
}

func TestUploadSource_Rejects(t *testing.T) {
	router, _ := setup(t)

	upload := func(name string, data []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, _ = part.Write(data)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/sources/pdf", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, upload("notes.txt", []byte("hello")).Code)
	assert.Equal(t, http.StatusBadRequest, upload("notes.pdf", []byte("not really a pdf")).Code)

	w := do(t, router, http.MethodPost, "/api/sources/pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrGenerationInFlight, http.StatusConflict},
		{session.ErrSessionCompleted, http.StatusConflict},
		{fmt.Errorf("%w: %w", services.ErrGenerationFailed, &session.ValidationError{Err: session.ErrInvalidQuestions}), http.StatusBadGateway},
		{&session.ValidationError{Err: session.ErrNoQuestions}, http.StatusBadRequest},
		{ErrSessionNotFound, http.StatusNotFound},
		{session.ErrInvalidAnswer, http.StatusBadRequest},
		{ErrKindMismatch, http.StatusBadRequest},
		{ErrInterviewInProgress, http.StatusConflict},
		{ErrNoFeedback, http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
