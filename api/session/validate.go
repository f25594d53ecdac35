package session

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a question list before it is accepted into a session
func Validate(questions []Question) error {
	if len(questions) == 0 {
		return &ValidationError{Err: ErrNoQuestions}
	}

	var fields []FieldError
	for i := range questions {
		prefix := fmt.Sprintf("questions[%d]", i)
		fields = append(fields, validateQuestion(prefix, &questions[i])...)
	}
	if len(fields) > 0 {
		return &ValidationError{Err: ErrInvalidQuestions, Fields: fields}
	}
	return nil
}

func validateQuestion(prefix string, q *Question) []FieldError {
	var fields []FieldError
	add := func(field, msg string) {
		fields = append(fields, FieldError{Field: prefix + "." + field, Error: msg})
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			add("question", err.Error())
			return fields
		}
		for _, fe := range verrs {
			add(strings.TrimPrefix(fe.Namespace(), "Question."), fe.Tag())
		}
	}

	switch {
	case q.CorrectAnswer == nil:
		add("correctAnswer", "required")
	case q.Type.IsChoice():
		if len(q.Options) < 2 {
			add("options", "at least two options required")
		}
		c, ok := q.CorrectAnswer.(Choice)
		if !ok {
			add("correctAnswer", "must be an option index")
		} else if int(c) < 0 || int(c) >= len(q.Options) {
			add("correctAnswer", "option index out of range")
		}
	case q.Type == ShortAnswer:
		if t, ok := q.CorrectAnswer.(Text); !ok || strings.TrimSpace(string(t)) == "" {
			add("correctAnswer", "must be non-empty text")
		}
	}
	return fields
}
