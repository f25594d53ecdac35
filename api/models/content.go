package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownMaterialType = errors.New("unknown material type")
	ErrMalformedContent    = errors.New("malformed material content")
)

// Content is the parsed form of Material.Content. The concrete type is one of
// Outline, Notes, Flashcards or Quiz.
type Content interface {
	Type() MaterialType
}

type Outline struct {
	Text string `json:"text"`
}

type Notes struct {
	Text string `json:"text"`
}

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Flashcards struct {
	Cards []Flashcard `json:"cards"`
}

// QuizItem is a stored quiz question. CorrectAnswer indexes Options.
type QuizItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

type Quiz struct {
	Items []QuizItem `json:"items"`
}

func (Outline) Type() MaterialType    { return MaterialOutline }
func (Notes) Type() MaterialType      { return MaterialNotes }
func (Flashcards) Type() MaterialType { return MaterialFlashcards }
func (Quiz) Type() MaterialType       { return MaterialQuiz }

// ParseContent interprets a raw payload by material type.
//
// Flashcards are blank-line separated blocks of the form "Q: ...\nA: ...".
// Quizzes are a JSON array of QuizItem.
func ParseContent(t MaterialType, raw string) (Content, error) {
	switch t {
	case MaterialOutline:
		return Outline{Text: raw}, nil
	case MaterialNotes:
		return Notes{Text: raw}, nil
	case MaterialFlashcards:
		return Flashcards{Cards: parseFlashcards(raw)}, nil
	case MaterialQuiz:
		var items []QuizItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedContent, err)
		}
		return Quiz{Items: items}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMaterialType, t)
}

func parseFlashcards(raw string) []Flashcard {
	cards := []Flashcard{}
	for _, block := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		card := Flashcard{Question: strings.TrimPrefix(strings.TrimSpace(lines[0]), "Q: ")}
		if len(lines) > 1 {
			card.Answer = strings.TrimPrefix(strings.TrimSpace(strings.Join(lines[1:], "\n")), "A: ")
		}
		cards = append(cards, card)
	}
	return cards
}

// FormatContent is the inverse of ParseContent
func FormatContent(c Content) (string, error) {
	switch v := c.(type) {
	case Outline:
		return v.Text, nil
	case Notes:
		return v.Text, nil
	case Flashcards:
		var b strings.Builder
		for _, card := range v.Cards {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", card.Question, card.Answer)
		}
		return b.String(), nil
	case Quiz:
		items := v.Items
		if items == nil {
			items = []QuizItem{}
		}
		data, err := json.Marshal(items)
		if err != nil {
			return "", fmt.Errorf("failed to marshal quiz: %w", err)
		}
		return string(data), nil
	}
	return "", ErrUnknownMaterialType
}
