package services

import (
	"context"
	"testing"

	"github.com/local/easystudy/api/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterviewProfile_Details(t *testing.T) {
	title, desc := InterviewProfile{JobTitle: "Backend Engineer", TechStack: "Go, Postgres", YearsExperience: 3}.Details()
	assert.Equal(t, "Backend Engineer Interview", title)
	assert.Equal(t, "Mock interview for the Backend Engineer role with 3 years of experience using Go, Postgres.", desc)

	_, desc = InterviewProfile{JobTitle: "Intern"}.Details()
	assert.Equal(t, "Mock interview for the Intern role.", desc)
}

func TestMockGenerator_InterviewQuestions(t *testing.T) {
	g := NewMockGenerator(0)
	ctx := context.Background()

	qs, err := g.InterviewQuestions(ctx, InterviewProfile{JobTitle: "Developer"})
	require.NoError(t, err)
	require.Len(t, qs, InterviewQuestionCount)
	require.NoError(t, session.Validate(qs))
	assert.Contains(t, qs[0].Question, "React.js")
	assert.Contains(t, qs[1].Question, "Spring Boot and Node.js")
	for i, q := range qs {
		assert.Equal(t, i+1, q.ID)
		assert.Equal(t, session.ShortAnswer, q.Type)
	}

	qs, err = g.InterviewQuestions(ctx, InterviewProfile{JobTitle: "Developer", TechStack: "Go, Kubernetes"})
	require.NoError(t, err)
	assert.Contains(t, qs[0].Question, "experience with Go,")
	assert.Contains(t, qs[1].Question, "between Go and Kubernetes")

	_, err = g.InterviewQuestions(ctx, InterviewProfile{JobTitle: "  "})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = g.InterviewQuestions(ctx, InterviewProfile{JobTitle: "Dev", YearsExperience: -1})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestMockGenerator_EvaluateInterview(t *testing.T) {
	g := NewMockGenerator(0)
	ctx := context.Background()
	profile := InterviewProfile{JobTitle: "Developer"}

	qs, err := g.InterviewQuestions(ctx, profile)
	require.NoError(t, err)
	qs[0].UserAnswer = qs[0].CorrectAnswer
	qs[2].UserAnswer = session.Text("I read logs")

	report, err := g.EvaluateInterview(ctx, profile, qs)
	require.NoError(t, err)
	require.Len(t, report.Questions, len(qs))

	strong := report.Questions[0]
	assert.Equal(t, 10, strong.Rating)
	assert.Equal(t, "Strong answer that covers the key points.", strong.Feedback)
	assert.Equal(t, string(qs[0].CorrectAnswer.(session.Text)), strong.CorrectAnswer)

	weak := report.Questions[2]
	assert.Equal(t, 0, weak.Rating)
	assert.Equal(t, "I read logs", weak.Answer)
	assert.Contains(t, weak.Feedback, "lacks concrete details")

	skipped := report.Questions[1]
	assert.Zero(t, skipped.Rating)
	assert.Empty(t, skipped.Answer)
	assert.Contains(t, skipped.Feedback, "No answer")

	assert.Equal(t, 2, report.Overall)
}

func TestProviderGenerator_InterviewQuestions(t *testing.T) {
	p := &stubProvider{text: `{"questions": [
		{"question": "Why Go?", "answer": "Simplicity and concurrency"},
		{"question": "What is a goroutine?", "answer": "A lightweight thread"}
	]}`}
	g := NewProviderGenerator(p)

	qs, err := g.InterviewQuestions(context.Background(), InterviewProfile{JobTitle: "Go Developer", TechStack: "Go", YearsExperience: 4})
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, session.Text("A lightweight thread"), qs[1].CorrectAnswer)
	assert.Equal(t, 2, qs[1].ID)
	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], `"Go Developer"`)
	assert.Contains(t, p.prompts[0], "4 years")

	p.text = `{"questions": [{"question": "Why Go?", "answer": ""}]}`
	_, err = g.InterviewQuestions(context.Background(), InterviewProfile{JobTitle: "Go Developer"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestProviderGenerator_EvaluateInterview(t *testing.T) {
	qs := []session.Question{
		{ID: 1, Question: "Why Go?", Type: session.ShortAnswer, CorrectAnswer: session.Text("Simplicity"), UserAnswer: session.Text("It is simple")},
		{ID: 2, Question: "Goroutine?", Type: session.ShortAnswer, CorrectAnswer: session.Text("Lightweight thread")},
	}
	p := &stubProvider{text: "```json\n" + `{"overall": 9, "questions": [
		{"questionId": 1, "rating": 15, "feedback": "Good"},
		{"questionId": 2, "rating": 3, "feedback": "Missing"}
	]}` + "\n```"}
	g := NewProviderGenerator(p)

	report, err := g.EvaluateInterview(context.Background(), InterviewProfile{JobTitle: "Dev"}, qs)
	require.NoError(t, err)
	require.Len(t, report.Questions, 2)
	assert.Equal(t, 10, report.Questions[0].Rating)
	assert.Equal(t, "It is simple", report.Questions[0].Answer)
	assert.Equal(t, "Lightweight thread", report.Questions[1].CorrectAnswer)
	assert.Equal(t, 7, report.Overall)
	assert.Contains(t, p.prompts[0], "Candidate answer: (no answer)")

	p.text = `{"questions": []}`
	_, err = g.EvaluateInterview(context.Background(), InterviewProfile{JobTitle: "Dev"}, qs)
	assert.ErrorIs(t, err, ErrGenerationFailed)

	_, err = g.EvaluateInterview(context.Background(), InterviewProfile{JobTitle: "Dev"}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
