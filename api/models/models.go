package models

import (
	"time"
)

// MaterialType is the closed set of generated material kinds
type MaterialType string

const (
	MaterialOutline    MaterialType = "outline"
	MaterialNotes      MaterialType = "notes"
	MaterialFlashcards MaterialType = "flashcards"
	MaterialQuiz       MaterialType = "quiz"
)

// MaterialTypes lists every material type in display order
var MaterialTypes = []MaterialType{MaterialOutline, MaterialNotes, MaterialFlashcards, MaterialQuiz}

func (t MaterialType) Valid() bool {
	switch t {
	case MaterialOutline, MaterialNotes, MaterialFlashcards, MaterialQuiz:
		return true
	}
	return false
}

// Course is a user-created study unit. Materials holds ids only; the
// Material records live in their own collection.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Progress    int       `json:"progress"`
	Materials   []string  `json:"materials"`
	Chapters    []Chapter `json:"chapters,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Chapter is owned by its Course
type Chapter struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Duration  string `json:"duration"`
	Completed bool   `json:"completed"`
	VideoID   string `json:"videoId,omitempty"`
}

// HasMaterial reports whether id is already referenced by the course
func (c *Course) HasMaterial(id string) bool {
	for _, m := range c.Materials {
		if m == id {
			return true
		}
	}
	return false
}

// Material is a single generated study artifact (GeneratedContent)
type Material struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Type      MaterialType `json:"type"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Parse decodes the raw content payload according to the material type
func (m *Material) Parse() (Content, error) {
	return ParseContent(m.Type, m.Content)
}

// Entry is one row of the key/value storage medium
type Entry struct {
	Key       string `gorm:"column:entry_key;primaryKey"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "kv_entries"
}
