package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/local/easystudy/api/session"
)

const InterviewQuestionCount = 5

// InterviewProfile describes the role a mock interview prepares for
type InterviewProfile struct {
	JobTitle        string `json:"jobTitle"`
	TechStack       string `json:"techStack,omitempty"`
	YearsExperience int    `json:"yearsExperience"`
}

func (p *InterviewProfile) normalize() error {
	p.JobTitle = strings.TrimSpace(p.JobTitle)
	p.TechStack = strings.TrimSpace(p.TechStack)
	if p.JobTitle == "" {
		return fmt.Errorf("%w: job title is required", ErrInvalidRequest)
	}
	if p.YearsExperience < 0 {
		return fmt.Errorf("%w: years of experience cannot be negative", ErrInvalidRequest)
	}
	return nil
}

// Details returns the heading shown for an interview session
func (p InterviewProfile) Details() (title, description string) {
	title = strings.TrimSpace(p.JobTitle) + " Interview"
	description = fmt.Sprintf("Mock interview for the %s role", strings.TrimSpace(p.JobTitle))
	if p.YearsExperience > 0 {
		description += fmt.Sprintf(" with %d years of experience", p.YearsExperience)
	}
	if stack := strings.TrimSpace(p.TechStack); stack != "" {
		description += " using " + stack
	}
	return title, description + "."
}

// stack splits the comma separated tech stack
func (p InterviewProfile) stack() []string {
	var out []string
	for _, s := range strings.Split(p.TechStack, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AnswerFeedback rates one interview answer out of 10
type AnswerFeedback struct {
	QuestionID    int    `json:"questionId"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correctAnswer"`
	Rating        int    `json:"rating"`
	Feedback      string `json:"feedback"`
}

// InterviewReport is the graded outcome of a mock interview. Overall is out of 10.
type InterviewReport struct {
	Overall   int              `json:"overall"`
	Questions []AnswerFeedback `json:"questions"`
}

// Interviewer prepares interview questions and grades the answers
type Interviewer interface {
	InterviewQuestions(ctx context.Context, profile InterviewProfile) ([]session.Question, error)
	EvaluateInterview(ctx context.Context, profile InterviewProfile, questions []session.Question) (*InterviewReport, error)
}

func answerText(a session.Answer) string {
	if t, ok := a.(session.Text); ok {
		return strings.TrimSpace(string(t))
	}
	return ""
}

func clampRating(r int) int {
	if r < 0 {
		return 0
	}
	if r > 10 {
		return 10
	}
	return r
}

// overallRating is the rounded mean of the per-question ratings
func overallRating(feedback []AnswerFeedback) int {
	if len(feedback) == 0 {
		return 0
	}
	sum := 0
	for _, f := range feedback {
		sum += f.Rating
	}
	return int(math.Round(float64(sum) / float64(len(feedback))))
}

func (g *MockGenerator) InterviewQuestions(ctx context.Context, profile InterviewProfile) ([]session.Question, error) {
	if err := profile.normalize(); err != nil {
		return nil, err
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	primary, first, second := "React.js", "Spring Boot", "Node.js"
	switch stack := profile.stack(); {
	case len(stack) >= 3:
		primary, first, second = stack[0], stack[1], stack[2]
	case len(stack) == 2:
		primary, first, second = stack[0], stack[0], stack[1]
	case len(stack) == 1:
		primary = stack[0]
	}

	items := []struct{ question, answer string }{
		{
			fmt.Sprintf("Describe your experience with %s, highlighting any specific projects or components you've developed.", primary),
			fmt.Sprintf("A good answer would discuss concrete projects built with %s, the architecture and components involved, how state and data flow were managed, and measurable results.", primary),
		},
		{
			fmt.Sprintf("Explain the differences between %s and %s and why you might choose one over the other for a specific project.", first, second),
			fmt.Sprintf("A good answer would compare %s and %s on performance, ecosystem, scalability and team experience, then give an example project where the requirements favour one of them.", first, second),
		},
		{
			"What is your approach to debugging complex issues in a full-stack application?",
			"A good answer would describe reproducing the issue, reading logs and metrics, isolating the failing layer, using debuggers and tests to confirm the cause, and adding monitoring to prevent regressions.",
		},
		{
			"Describe a challenging project you worked on and how you overcame the obstacles.",
			"A good answer would follow the situation, task, action and result structure, explain the technical obstacles, the decisions taken, collaboration with the team and the outcome.",
		},
		{
			"How do you stay updated with the latest technologies and frameworks in your field?",
			"A good answer would mention documentation, release notes, conferences, community forums, side projects and applying new knowledge deliberately at work.",
		},
	}

	questions := make([]session.Question, len(items))
	for i, it := range items {
		questions[i] = session.Question{
			ID:            i + 1,
			Question:      it.question,
			Type:          session.ShortAnswer,
			CorrectAnswer: session.Text(it.answer),
			Explanation:   it.answer,
		}
	}
	return questions, nil
}

// EvaluateInterview rates each answer by how many key terms of the model
// answer it covers. Covering half of them earns full marks.
func (g *MockGenerator) EvaluateInterview(ctx context.Context, profile InterviewProfile, questions []session.Question) (*InterviewReport, error) {
	if err := profile.normalize(); err != nil {
		return nil, err
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	report := &InterviewReport{Questions: make([]AnswerFeedback, len(questions))}
	for i, q := range questions {
		model := answerText(q.CorrectAnswer)
		answer := answerText(q.UserAnswer)
		fb := AnswerFeedback{
			QuestionID:    q.ID,
			Question:      q.Question,
			Answer:        answer,
			CorrectAnswer: model,
		}

		terms := keyTerms(model)
		given := keyTerms(answer)
		var missing []string
		for t := range terms {
			if _, ok := given[t]; !ok {
				missing = append(missing, t)
			}
		}
		sort.Strings(missing)

		switch {
		case answer == "":
			fb.Feedback = "No answer was given. Practice answering this question out loud."
		case len(terms) == 0:
			fb.Rating = 5
			fb.Feedback = "Answer recorded."
		default:
			covered := float64(len(terms)-len(missing)) / float64(len(terms))
			fb.Rating = clampRating(int(math.Round(10 * math.Min(1, 2*covered))))
			fb.Feedback = mockFeedback(fb.Rating, missing)
		}
		report.Questions[i] = fb
	}
	report.Overall = overallRating(report.Questions)
	return report, nil
}

func mockFeedback(rating int, missing []string) string {
	if len(missing) > 3 {
		missing = missing[:3]
	}
	switch {
	case rating >= 8:
		return "Strong answer that covers the key points."
	case rating >= 5:
		return fmt.Sprintf("Solid answer. Add more concrete detail, for example about %s.", strings.Join(missing, ", "))
	default:
		return fmt.Sprintf("Your answer lacks concrete details. A strong answer would mention %s.", strings.Join(missing, ", "))
	}
}

var stopWords = map[string]struct{}{
	"about": {}, "answer": {}, "could": {}, "would": {}, "should": {}, "their": {},
	"there": {}, "these": {}, "which": {}, "while": {}, "where": {}, "involved": {},
}

// keyTerms returns the distinct lowercased words of five letters or more
func keyTerms(s string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) < 5 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		terms[w] = struct{}{}
	}
	return terms
}

const interviewerPrompt = "You are an experienced technical interviewer who asks realistic questions and gives honest, specific feedback."

func (g *ProviderGenerator) InterviewQuestions(ctx context.Context, profile InterviewProfile) ([]session.Question, error) {
	if err := profile.normalize(); err != nil {
		return nil, err
	}

	raw, err := g.provider.GenerateJSON(ctx, interviewQuestionsPrompt(profile), interviewerPrompt)
	if err != nil {
		return nil, g.failed(err)
	}

	var items []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := decodeList(raw, "questions", &items); err != nil {
		return nil, g.failed(err)
	}
	if len(items) > InterviewQuestionCount {
		items = items[:InterviewQuestionCount]
	}

	questions := make([]session.Question, len(items))
	for i, it := range items {
		questions[i] = session.Question{
			ID:            i + 1,
			Question:      strings.TrimSpace(it.Question),
			Type:          session.ShortAnswer,
			CorrectAnswer: session.Text(strings.TrimSpace(it.Answer)),
			Explanation:   strings.TrimSpace(it.Answer),
		}
	}
	if err := session.Validate(questions); err != nil {
		return nil, g.failed(err)
	}
	return questions, nil
}

func (g *ProviderGenerator) EvaluateInterview(ctx context.Context, profile InterviewProfile, questions []session.Question) (*InterviewReport, error) {
	if err := profile.normalize(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions to evaluate", ErrInvalidRequest)
	}

	raw, err := g.provider.GenerateJSON(ctx, evaluationPrompt(profile, questions), interviewerPrompt)
	if err != nil {
		return nil, g.failed(err)
	}

	var rated []struct {
		QuestionID int    `json:"questionId"`
		Rating     int    `json:"rating"`
		Feedback   string `json:"feedback"`
	}
	if err := decodeList(raw, "questions", &rated); err != nil {
		return nil, g.failed(err)
	}
	byID := make(map[int]int, len(rated))
	for i, r := range rated {
		byID[r.QuestionID] = i
	}

	report := &InterviewReport{Questions: make([]AnswerFeedback, len(questions))}
	found := 0
	for i, q := range questions {
		fb := AnswerFeedback{
			QuestionID:    q.ID,
			Question:      q.Question,
			Answer:        answerText(q.UserAnswer),
			CorrectAnswer: answerText(q.CorrectAnswer),
		}
		if j, ok := byID[q.ID]; ok {
			fb.Rating = clampRating(rated[j].Rating)
			fb.Feedback = strings.TrimSpace(rated[j].Feedback)
			found++
		}
		report.Questions[i] = fb
	}
	if found == 0 {
		return nil, g.failed(errors.New("no ratings in response"))
	}
	report.Overall = overallRating(report.Questions)
	return report, nil
}

func interviewQuestionsPrompt(p InterviewProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Prepare %d interview questions for a %q position.\n", InterviewQuestionCount, p.JobTitle)
	if p.TechStack != "" {
		fmt.Fprintf(&b, "- Tech stack: %s\n", p.TechStack)
	}
	if p.YearsExperience > 0 {
		fmt.Fprintf(&b, "- Candidate experience: %d years\n", p.YearsExperience)
	}
	b.WriteString(`
Mix technical and behavioural questions. For each question give a model answer describing what a strong response covers.

Return valid JSON:
{"questions": [{"question": "Question text", "answer": "Model answer"}]}`)
	return b.String()
}

func evaluationPrompt(p InterviewProfile, questions []session.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate this mock interview for a %q position.\n\n", p.JobTitle)
	for _, q := range questions {
		answer := answerText(q.UserAnswer)
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&b, "Question %d: %s\nModel answer: %s\nCandidate answer: %s\n\n", q.ID, q.Question, answerText(q.CorrectAnswer), answer)
	}
	b.WriteString(`Rate each answer from 0 to 10 and give specific feedback on what was missing.

Return valid JSON:
{"questions": [{"questionId": 1, "rating": 6, "feedback": "Feedback text"}]}`)
	return b.String()
}
