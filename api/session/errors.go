package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoActiveSession    = errors.New("no active session")
	ErrSessionCompleted   = errors.New("session already submitted")
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrInvalidAnswer      = errors.New("answer does not fit the question")
	ErrNoQuestions        = errors.New("at least one question is required")
	ErrInvalidQuestions   = errors.New("invalid questions")
)

type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError lists every malformed question field found by Start
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func (err *ValidationError) Error() string {
	if len(err.Fields) == 0 {
		return err.Err.Error()
	}
	parts := make([]string, len(err.Fields))
	for i, f := range err.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Error)
	}
	return fmt.Sprintf("%s: %s", err.Err, strings.Join(parts, "; "))
}

func (err *ValidationError) Unwrap() error {
	return err.Err
}
