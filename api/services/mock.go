package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/local/easystudy/api/models"
	"github.com/local/easystudy/api/session"
)

const DefaultGenerationDelay = 1500 * time.Millisecond

// MockGenerator returns templated content after a fixed delay
type MockGenerator struct {
	Delay time.Duration
}

func NewMockGenerator(delay time.Duration) *MockGenerator {
	return &MockGenerator{Delay: delay}
}

func (g *MockGenerator) wait(ctx context.Context) error {
	if g.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(g.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (g *MockGenerator) Generate(ctx context.Context, req GenerateRequest) (*models.Material, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	var content string
	switch req.Type {
	case models.MaterialOutline:
		content = mockOutline(req.Topic)
	case models.MaterialNotes:
		content = mockNotes(req.Section)
	case models.MaterialFlashcards:
		content, _ = models.FormatContent(models.Flashcards{Cards: mockFlashcards(req.Topic)})
	case models.MaterialQuiz:
		var err error
		if content, err = models.FormatContent(models.Quiz{Items: mockQuiz(req.Topic)}); err != nil {
			return nil, err
		}
	}

	return newMaterial(req.Type, req, content), nil
}

func (g *MockGenerator) GenerateQuestions(ctx context.Context, req QuestionsRequest) ([]session.Question, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	questions := make([]session.Question, req.Count)
	for i := range questions {
		n := i + 1
		q := session.Question{ID: n, Type: req.QuestionTypes[i%len(req.QuestionTypes)]}
		switch q.Type {
		case session.TrueFalse:
			q.Question = fmt.Sprintf("%s relies on evidence-based reasoning. (statement %d)", req.Topic, n)
			q.Options = []string{"True", "False"}
			q.CorrectAnswer = session.Choice(0)
			q.Explanation = fmt.Sprintf("Evidence-based reasoning is a core principle of %s.", req.Topic)
		case session.ShortAnswer:
			q.Question = fmt.Sprintf("In one word, what kind of analysis is central to %s? (question %d)", req.Topic, n)
			q.CorrectAnswer = session.Text("Systematic")
			q.Explanation = fmt.Sprintf("%s is built on systematic analysis.", req.Topic)
		default:
			item := mockQuiz(req.Topic)[i%5]
			q.Question = item.Question
			q.Options = item.Options
			q.CorrectAnswer = session.Choice(item.CorrectAnswer)
			q.Explanation = fmt.Sprintf("The correct answer is %q.", item.Options[item.CorrectAnswer])
		}
		questions[i] = q
	}
	return questions, nil
}

func mockOutline(topic string) string {
	return strings.ReplaceAll(`
# {topic} - Complete Course Outline

## 1. Introduction to {topic}
- Overview and significance
- Historical context
- Modern applications

## 2. Fundamental Concepts
- Key terminology
- Core principles
- Theoretical frameworks

## 3. Advanced Topics
- Specialized techniques
- Current research areas
- Practical implementations

## 4. Case Studies
- Real-world examples
- Analysis methodology
- Result interpretation

## 5. Future Directions
- Emerging trends
- Potential challenges
- Opportunities for innovation
`, "{topic}", topic)
}

func mockNotes(section string) string {
	return fmt.Sprintf(`
# %s - Comprehensive Notes

## Key Concepts
- First important concept: This explains the fundamental principles and provides a foundation for understanding.
- Second important concept: This builds on the first concept and introduces more complex ideas.
- Third important concept: This connects previous concepts and shows their practical applications.

## Important Formulas/Definitions
- Definition 1: A precise explanation with examples
- Definition 2: Another critical definition with context
- Formula 1: The mathematical representation with variables explained
- Formula 2: Another important equation with its applications

## Examples
1. Example situation demonstrating concept application
2. Step-by-step walkthrough of problem-solving
3. Real-world scenario illustrating practical usage

## Common Misconceptions
- Misconception 1: Why it's wrong and the correct understanding
- Misconception 2: Common error and its correction

## Remember
- Important point to remember for exams
- Critical insight that ties concepts together
- Practical tip for application
`, section)
}

func mockFlashcards(topic string) []models.Flashcard {
	return []models.Flashcard{
		{
			Question: fmt.Sprintf("What is the main purpose of %s?", topic),
			Answer:   "The main purpose is to provide a systematic approach to understanding and solving problems in this domain.",
		},
		{
			Question: fmt.Sprintf("Name three key principles of %s.", topic),
			Answer:   "1. Systematic analysis 2. Evidence-based reasoning 3. Practical application",
		},
		{
			Question: fmt.Sprintf("When was %s first introduced?", topic),
			Answer:   "The concept was first formally introduced in the late 20th century, though its roots go back much further.",
		},
		{
			Question: fmt.Sprintf("What distinguishes %s from related fields?", topic),
			Answer:   "Its unique integration of theoretical frameworks with practical methodologies sets it apart from related disciplines.",
		},
		{
			Question: fmt.Sprintf("How is %s applied in modern contexts?", topic),
			Answer:   "It's widely applied in technology, education, business strategy, and problem-solving across various industries.",
		},
	}
}

func mockQuiz(topic string) []models.QuizItem {
	return []models.QuizItem{
		{
			Question: fmt.Sprintf("Which of the following best describes %s?", topic),
			Options: []string{
				"A systematic approach to problem-solving",
				"A theoretical framework only",
				"A historical concept with no modern relevance",
				"A specialized technique for limited applications",
			},
			CorrectAnswer: 0,
		},
		{
			Question: fmt.Sprintf("What is NOT considered a core principle of %s?", topic),
			Options: []string{
				"Evidence-based reasoning",
				"Intuitive decision-making without data",
				"Systematic analysis",
				"Practical application",
			},
			CorrectAnswer: 1,
		},
		{
			Question:      fmt.Sprintf("Which industry has seen the LEAST application of %s?", topic),
			Options:       []string{"Healthcare", "Education", "Ancient history", "Technology"},
			CorrectAnswer: 2,
		},
		{
			Question: fmt.Sprintf("How does %s contribute to innovation?", topic),
			Options: []string{
				"By restricting creative thinking",
				"By providing frameworks for systematic exploration",
				"By eliminating the need for human input",
				"By focusing exclusively on theoretical aspects",
			},
			CorrectAnswer: 1,
		},
		{
			Question: fmt.Sprintf("What is the relationship between %s and data analysis?", topic),
			Options: []string{
				"They are completely unrelated",
				"They are identical concepts",
				fmt.Sprintf("%s incorporates data analysis as one of its tools", topic),
				fmt.Sprintf("Data analysis has replaced %s entirely", topic),
			},
			CorrectAnswer: 2,
		},
	}
}
