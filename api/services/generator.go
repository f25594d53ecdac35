package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/local/easystudy/api/models"
	"github.com/local/easystudy/api/session"
	"github.com/rs/zerolog/log"
)

var (
	ErrGenerationFailed = errors.New("generation failed")
	ErrInvalidRequest   = errors.New("invalid generation request")
)

const (
	DefaultQuestionCount = 10
	MaxQuestionCount     = 50
	DefaultDifficulty    = "medium"
	DefaultSection       = "Overview"
)

// Generator produces study materials and session questions
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*models.Material, error)
	GenerateQuestions(ctx context.Context, req QuestionsRequest) ([]session.Question, error)
}

type GenerateRequest struct {
	Type    models.MaterialType
	Topic   string
	Section string
}

func (r *GenerateRequest) normalize() error {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Section = strings.TrimSpace(r.Section)
	if r.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidRequest, models.ErrUnknownMaterialType, r.Type)
	}
	if r.Section == "" {
		r.Section = DefaultSection
	}
	return nil
}

type QuestionsRequest struct {
	Kind           session.Kind
	Topic          string
	SourceMaterial string
	Count          int
	Difficulty     string
	QuestionTypes  []session.QuestionType
}

func (r *QuestionsRequest) normalize() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if !r.Kind.Valid() {
		r.Kind = session.KindQuiz
	}
	if r.Count <= 0 {
		r.Count = DefaultQuestionCount
	}
	if r.Count > MaxQuestionCount {
		r.Count = MaxQuestionCount
	}
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}

	var types []session.QuestionType
	for _, t := range r.QuestionTypes {
		t = session.ParseQuestionType(string(t))
		switch t {
		case session.MultipleChoice, session.TrueFalse, session.ShortAnswer:
			types = append(types, t)
		default:
			return fmt.Errorf("%w: unknown question type %q", ErrInvalidRequest, t)
		}
	}
	if len(types) == 0 {
		types = []session.QuestionType{session.MultipleChoice}
	}
	r.QuestionTypes = types
	return nil
}

// ExamDetails returns the heading used for a generated exam
func ExamDetails(req QuestionsRequest) (title, description string) {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = DefaultDifficulty
	}
	return fmt.Sprintf("%s Exam", req.Topic),
		fmt.Sprintf("A %s difficulty exam on %s.", difficulty, req.Topic)
}

func newMaterial(t models.MaterialType, req GenerateRequest, content string) *models.Material {
	var title string
	switch t {
	case models.MaterialOutline:
		title = fmt.Sprintf("%s - Course Outline", req.Topic)
	case models.MaterialNotes:
		title = fmt.Sprintf("%s: %s - Detailed Notes", req.Topic, req.Section)
	case models.MaterialFlashcards:
		title = fmt.Sprintf("%s - Flashcards", req.Topic)
	case models.MaterialQuiz:
		title = fmt.Sprintf("%s - Quiz", req.Topic)
	}
	return &models.Material{
		ID:        fmt.Sprintf("%s-%s", t, uuid.NewString()),
		Title:     title,
		Content:   content,
		Type:      t,
		CreatedAt: time.Now().UTC(),
	}
}

// ProviderGenerator generates content with an AI provider
type ProviderGenerator struct {
	provider AIProvider
}

func NewProviderGenerator(provider AIProvider) *ProviderGenerator {
	return &ProviderGenerator{provider: provider}
}

const systemPrompt = "You are an expert educator who writes accurate, well structured study material for students."

func (g *ProviderGenerator) Generate(ctx context.Context, req GenerateRequest) (*models.Material, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	var content string
	switch req.Type {
	case models.MaterialOutline, models.MaterialNotes:
		text, err := g.provider.GenerateText(ctx, materialPrompt(req), systemPrompt)
		if err != nil {
			return nil, g.failed(err)
		}
		content = strings.TrimSpace(trimFences(text))
		if content == "" {
			return nil, g.failed(errors.New("empty response"))
		}

	case models.MaterialFlashcards:
		raw, err := g.provider.GenerateJSON(ctx, materialPrompt(req), systemPrompt)
		if err != nil {
			return nil, g.failed(err)
		}
		var cards []models.Flashcard
		if err := decodeList(raw, "flashcards", &cards); err != nil {
			return nil, g.failed(err)
		}
		if len(cards) == 0 {
			return nil, g.failed(errors.New("no flashcards in response"))
		}
		if content, err = models.FormatContent(models.Flashcards{Cards: cards}); err != nil {
			return nil, g.failed(err)
		}

	case models.MaterialQuiz:
		raw, err := g.provider.GenerateJSON(ctx, materialPrompt(req), systemPrompt)
		if err != nil {
			return nil, g.failed(err)
		}
		var items []models.QuizItem
		if err := decodeList(raw, "questions", &items); err != nil {
			return nil, g.failed(err)
		}
		if len(items) == 0 {
			return nil, g.failed(errors.New("no quiz questions in response"))
		}
		if content, err = models.FormatContent(models.Quiz{Items: items}); err != nil {
			return nil, g.failed(err)
		}
	}

	return newMaterial(req.Type, req, content), nil
}

func (g *ProviderGenerator) GenerateQuestions(ctx context.Context, req QuestionsRequest) ([]session.Question, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	raw, err := g.provider.GenerateJSON(ctx, questionsPrompt(req), systemPrompt)
	if err != nil {
		return nil, g.failed(err)
	}

	var questions []session.Question
	if err := decodeList(raw, "questions", &questions); err != nil {
		return nil, g.failed(err)
	}
	if len(questions) > req.Count {
		questions = questions[:req.Count]
	}
	if err := session.Validate(questions); err != nil {
		return nil, g.failed(err)
	}
	return questions, nil
}

func (g *ProviderGenerator) failed(err error) error {
	log.Error().Err(err).Str("provider", g.provider.GetProviderName()).Msg("Generation failed")
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}

func materialPrompt(req GenerateRequest) string {
	switch req.Type {
	case models.MaterialOutline:
		return fmt.Sprintf(`Write a complete course outline for "%s" in markdown.
Use five numbered sections with three bullet points each.`, req.Topic)
	case models.MaterialNotes:
		return fmt.Sprintf(`Write detailed study notes in markdown for the section "%s" of "%s".
Include key concepts, definitions, examples, common misconceptions and points to remember.`, req.Section, req.Topic)
	case models.MaterialFlashcards:
		return fmt.Sprintf(`Create 5 flashcards about "%s".

Return valid JSON:
{"flashcards": [{"question": "Question text", "answer": "Answer text"}]}`, req.Topic)
	default:
		return fmt.Sprintf(`Create a 5 question multiple choice quiz about "%s".

Return valid JSON:
{"questions": [{"question": "Question text", "options": ["A", "B", "C", "D"], "correctAnswer": 0, "explanation": "Why"}]}`, req.Topic)
	}
}

func questionsPrompt(req QuestionsRequest) string {
	types := make([]string, len(req.QuestionTypes))
	for i, t := range req.QuestionTypes {
		types[i] = string(t)
	}

	var b strings.Builder
	if req.Kind == session.KindExam {
		fmt.Fprintf(&b, "Generate a %s difficulty exam on %q with:\n", req.Difficulty, req.Topic)
	} else {
		fmt.Fprintf(&b, "Generate a quiz on %q with:\n", req.Topic)
	}
	fmt.Fprintf(&b, "- %d questions\n", req.Count)
	fmt.Fprintf(&b, "- Question types: %s\n", strings.Join(types, ", "))
	if req.SourceMaterial != "" {
		fmt.Fprintf(&b, "- Based on: %s\n", req.SourceMaterial)
	}
	b.WriteString(`
Use zero-based option indexes for correctAnswer. True-false questions use the options ["True", "False"].
Short-answer questions have no options and a text correctAnswer.

Return valid JSON:
{"questions": [{"id": 1, "question": "Question text", "options": ["Option 1", "Option 2"], "correctAnswer": 0, "explanation": "Explanation", "type": "multiple-choice"}]}`)
	return b.String()
}

// trimFences drops a surrounding markdown code fence
func trimFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// ExtractJSON returns the JSON document embedded in model output, spanning
// from the first opening bracket to the matching last closing one.
func ExtractJSON(s string) (string, error) {
	s = trimFences(s)
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", errors.New("no JSON found in response")
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end < start {
		return "", errors.New("unterminated JSON in response")
	}
	return s[start : end+1], nil
}

// decodeList accepts either a bare JSON array or an object holding the
// array under key (or as its only array value).
func decodeList(raw, key string, out interface{}) error {
	doc, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if doc[0] == '[' {
		return json.Unmarshal([]byte(doc), out)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &obj); err != nil {
		return err
	}
	if list, ok := obj[key]; ok {
		return json.Unmarshal(list, out)
	}
	for _, v := range obj {
		if trimmed := strings.TrimSpace(string(v)); strings.HasPrefix(trimmed, "[") {
			return json.Unmarshal(v, out)
		}
	}
	return fmt.Errorf("no %q list in response", key)
}
