package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// CardType identifies the kind of review card and the shape of its extra data
type CardType string

const (
	CardTypeFlashcard CardType = "flashcard"
	CardTypeMatching  CardType = "matching"
	CardTypeFillBlank CardType = "fill_blank"
)

// ReviewCard tracks one spaced-repetition unit for a user using the SM-2 algorithm
type ReviewCard struct {
	ID             string         `json:"id" db:"id"`
	UserID         string         `json:"user_id" db:"user_id"`
	LessonID       string         `json:"lesson_id" db:"lesson_id"`
	ModuleID       string         `json:"module_id" db:"module_id"`
	CardType       CardType       `json:"card_type" db:"card_type"`
	Front          string         `json:"front" db:"front"`
	Back           string         `json:"back" db:"back"`
	ExtraData      types.JSONText `json:"extra_data" db:"extra_data"`
	EaseFactor     float64        `json:"ease_factor" db:"ease_factor"`         // SM-2 EF parameter, never below 1.3
	IntervalDays   int            `json:"interval_days" db:"interval_days"`     // Current interval in days, 0 means due today
	Repetitions    int            `json:"repetitions" db:"repetitions"`         // Consecutive non-failed reviews
	LastQuality    int            `json:"last_quality" db:"last_quality"`       // 0-5 rating of last recall
	NextReviewAt   time.Time      `json:"next_review_at" db:"next_review_at"`
	LastReviewedAt *time.Time     `json:"last_reviewed_at" db:"last_reviewed_at"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// CardDraft is a card's content before persistence: no id and no schedule state yet
type CardDraft struct {
	CardType  CardType       `json:"card_type"`
	Front     string         `json:"front"`
	Back      string         `json:"back"`
	ExtraData types.JSONText `json:"extra_data"`
}

// FlashcardExtra is the extra_data payload for flashcard cards
type FlashcardExtra struct {
	Pronunciation string   `json:"pronunciation,omitempty"`
	Derivatives   []string `json:"derivatives,omitempty"`
}

// FillBlankExtra is the extra_data payload for fill_blank cards
type FillBlankExtra struct {
	FullText string `json:"fullText"`
}

// MatchingExtra is the extra_data payload for matching cards
type MatchingExtra struct {
	Language string `json:"language,omitempty"`
}

// MatchingPair is one term/match entry serialized into a matching card's back
type MatchingPair struct {
	Term  string `json:"term"`
	Match string `json:"match"`
}

// MustExtra marshals an extra_data payload; the payload types above cannot fail to marshal
func MustExtra(v any) types.JSONText {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return types.JSONText(data)
}
