package models

// Lesson is the slice of a curriculum lesson the review subsystem reads:
// an id/module pair plus the three optional content sections cards are built from
type Lesson struct {
	ID                   string                `json:"id"`
	ModuleID             string                `json:"moduleId"`
	Title                string                `json:"title"`
	VocabularyTable      []VocabularyEntry     `json:"vocabularyTable,omitempty"`
	KeyPoints            []string              `json:"keyPoints,omitempty"`
	ClassicalConnections []ClassicalConnection `json:"classicalConnections,omitempty"`
}

// VocabularyEntry is one row of a lesson's vocabulary table
type VocabularyEntry struct {
	Term          string   `json:"term"`
	Meaning       string   `json:"meaning"`
	Pronunciation string   `json:"pronunciation,omitempty"`
	Derivatives   []string `json:"derivatives,omitempty"`
}

// ClassicalConnection links a modern term to its classical-language origin
type ClassicalConnection struct {
	Term     string `json:"term"`
	Original string `json:"original"`
	Meaning  string `json:"meaning"`
	Language string `json:"language"`
}
