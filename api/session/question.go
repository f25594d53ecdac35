package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	ShortAnswer    QuestionType = "short-answer"
)

// IsChoice reports whether answers are option indexes
func (t QuestionType) IsChoice() bool {
	return t == MultipleChoice || t == TrueFalse
}

// ParseQuestionType accepts loose spellings such as "Multiple Choice" or
// "true_false". Unknown values are returned unchanged and fail validation later.
func ParseQuestionType(s string) QuestionType {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-", "/", "-").Replace(norm)
	switch QuestionType(norm) {
	case MultipleChoice, TrueFalse, ShortAnswer:
		return QuestionType(norm)
	}
	return QuestionType(s)
}

// Answer is either a Choice (zero-based option index) or a Text answer.
// Two answers match only when both the variant and the value are equal.
type Answer interface {
	isAnswer()
}

type Choice int

type Text string

func (Choice) isAnswer() {}
func (Text) isAnswer()   {}

var trueFalseOptions = []string{"True", "False"}

// Question is one session item. UserAnswer is nil until answered.
type Question struct {
	ID            int          `json:"id"`
	Question      string       `json:"question" validate:"required"`
	Options       []string     `json:"options,omitempty" validate:"omitempty,dive,required"`
	CorrectAnswer Answer       `json:"correctAnswer"`
	Explanation   string       `json:"explanation"`
	Type          QuestionType `json:"type" validate:"required,oneof=multiple-choice true-false short-answer"`
	UserAnswer    Answer       `json:"userAnswer,omitempty"`
}

// IsCorrect reports whether the question was answered with the correct answer
func (q *Question) IsCorrect() bool {
	return q.UserAnswer != nil && q.UserAnswer == q.CorrectAnswer
}

// Accepts reports whether a is a well-formed answer for the question:
// an in-range option index for choice questions, text otherwise.
func (q *Question) Accepts(a Answer) bool {
	switch v := a.(type) {
	case Choice:
		return q.Type.IsChoice() && int(v) >= 0 && int(v) < len(q.Options)
	case Text:
		return !q.Type.IsChoice()
	}
	return false
}

func (q Question) clone() Question {
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}

// UnmarshalJSON decodes answers according to the question type: option
// indexes for choice questions and literal text for short answers.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            json.RawMessage `json:"id"`
		Question      string          `json:"question"`
		Options       []string        `json:"options"`
		CorrectAnswer json.RawMessage `json:"correctAnswer"`
		Explanation   string          `json:"explanation"`
		Type          string          `json:"type"`
		UserAnswer    json.RawMessage `json:"userAnswer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*q = Question{
		Question:    raw.Question,
		Options:     raw.Options,
		Explanation: raw.Explanation,
		Type:        ParseQuestionType(raw.Type),
	}
	if id, err := decodeInt(raw.ID); err == nil {
		q.ID = id
	}
	if q.Type == TrueFalse && len(q.Options) == 0 {
		q.Options = append([]string(nil), trueFalseOptions...)
	}

	var err error
	if q.CorrectAnswer, err = DecodeAnswer(raw.CorrectAnswer, q.Type, q.Options); err != nil {
		return fmt.Errorf("correctAnswer: %w", err)
	}
	if q.UserAnswer, err = DecodeAnswer(raw.UserAnswer, q.Type, q.Options); err != nil {
		return fmt.Errorf("userAnswer: %w", err)
	}
	return nil
}

// DecodeAnswer turns a JSON number, string or boolean into the Answer variant
// used by the question type. An empty or null value decodes to nil.
func DecodeAnswer(data json.RawMessage, t QuestionType, options []string) (Answer, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}

	if !t.IsChoice() {
		switch val := v.(type) {
		case string:
			return Text(val), nil
		case float64:
			return Text(strconv.FormatFloat(val, 'f', -1, 64)), nil
		case bool:
			return Text(strconv.FormatBool(val)), nil
		}
		return nil, fmt.Errorf("unsupported answer %s", data)
	}

	switch val := v.(type) {
	case float64:
		if val != float64(int(val)) {
			return nil, fmt.Errorf("option index %v is not an integer", val)
		}
		return Choice(int(val)), nil
	case string:
		if i := optionIndex(options, val); i >= 0 {
			return Choice(i), nil
		}
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return Choice(i), nil
		}
		return nil, fmt.Errorf("answer %q matches no option", val)
	case bool:
		if i := optionIndex(options, strconv.FormatBool(val)); i >= 0 {
			return Choice(i), nil
		}
		return nil, fmt.Errorf("answer %v matches no option", val)
	}
	return nil, fmt.Errorf("unsupported answer %s", data)
}

func optionIndex(options []string, s string) int {
	s = strings.TrimSpace(s)
	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), s) {
			return i
		}
	}
	return -1
}

func decodeInt(data json.RawMessage) (int, error) {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, err
	}
	i, err := n.Int64()
	return int(i), err
}
