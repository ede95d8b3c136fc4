package cardgen

import (
	"strings"

	"github.com/example/geniuspath/pkg/models"
	"github.com/samber/lo"
)

const (
	// BlankMarker replaces the hidden part of a fill-blank prompt
	BlankMarker = "___"
	// MatchingPrompt is the fixed instruction shown on a matching card
	MatchingPrompt = "Match each term with its classical origin"
	// Minimum classical connections before a matching card is worth making
	matchingThreshold = 3
	// Cap on term/match pairs packed into one matching card
	maxMatchingPairs = 6
)

// Generate derives review card drafts from a lesson's static content.
// It is a pure transformation: lessons with no vocabulary, no usable key
// points and too few classical connections produce an empty slice, which is
// a valid outcome rather than an error.
func Generate(lesson *models.Lesson) []models.CardDraft {
	if lesson == nil {
		return nil
	}

	var drafts []models.CardDraft

	// One flashcard per vocabulary entry
	drafts = append(drafts, lo.Map(lesson.VocabularyTable, func(entry models.VocabularyEntry, _ int) models.CardDraft {
		return models.CardDraft{
			CardType: models.CardTypeFlashcard,
			Front:    entry.Term,
			Back:     entry.Meaning,
			ExtraData: models.MustExtra(models.FlashcardExtra{
				Pronunciation: entry.Pronunciation,
				Derivatives:   entry.Derivatives,
			}),
		}
	})...)

	// One fill-blank per key point with a usable "term: definition" split
	for _, point := range lesson.KeyPoints {
		if draft, ok := fillBlankFromKeyPoint(point); ok {
			drafts = append(drafts, draft)
		}
	}

	// A single matching card covering the lesson's classical connections
	if draft, ok := matchingFromConnections(lesson.ClassicalConnections); ok {
		drafts = append(drafts, draft)
	}

	return drafts
}

// fillBlankFromKeyPoint splits a key point at its first colon. A colon in the
// last 5 characters is rejected as a trivial or garbage split. The split is
// rune-based so multi-byte text after the colon is never cut mid-character.
func fillBlankFromKeyPoint(point string) (models.CardDraft, bool) {
	runes := []rune(point)
	idx := -1
	for i, r := range runes {
		if r == ':' {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(runes)-5 {
		return models.CardDraft{}, false
	}

	// The prompt keeps the colon and the two characters after it
	front := string(runes[:idx+3]) + BlankMarker
	back := strings.TrimSpace(string(runes[idx+3:]))

	return models.CardDraft{
		CardType:  models.CardTypeFillBlank,
		Front:     front,
		Back:      back,
		ExtraData: models.MustExtra(models.FillBlankExtra{FullText: point}),
	}, true
}

// matchingFromConnections builds one matching card when a lesson carries at
// least 3 classical connections, packing at most 6 pairs.
func matchingFromConnections(connections []models.ClassicalConnection) (models.CardDraft, bool) {
	if len(connections) < matchingThreshold {
		return models.CardDraft{}, false
	}

	selected := connections
	if len(selected) > maxMatchingPairs {
		selected = selected[:maxMatchingPairs]
	}

	pairs := lo.Map(selected, func(c models.ClassicalConnection, _ int) models.MatchingPair {
		return models.MatchingPair{
			Term:  c.Term,
			Match: c.Original + " — " + c.Meaning,
		}
	})

	return models.CardDraft{
		CardType:  models.CardTypeMatching,
		Front:     MatchingPrompt,
		Back:      string(models.MustExtra(pairs)),
		ExtraData: models.MustExtra(models.MatchingExtra{Language: connections[0].Language}),
	}, true
}
