package review

import (
	"log/slog"
	"sync"
	"time"

	"github.com/example/geniuspath/internal/cardgen"
	"github.com/example/geniuspath/internal/content"
	"github.com/example/geniuspath/internal/database"
	"github.com/example/geniuspath/internal/spaced_repetition"
	"github.com/example/geniuspath/pkg/models"
)

// DueCardLimit caps how many due cards a single fetch returns
const DueCardLimit = 20

// DueCards is the result of a due-card fetch: the capped due list plus the
// user's total card count
type DueCards struct {
	Cards      []models.ReviewCard `json:"cards"`
	TotalCards int                 `json:"total_cards"`
}

// Store owns persisted review-card state and the per-user in-memory due
// list. It delegates schedule math to the SM-2 scheduler and content
// transformation to the card generator.
//
// Persistence failures are absorbed at this boundary: they are logged and
// surfaced as empty results or no-ops, never as errors to the caller. A
// failed review leaves the card due again on the next fetch, so the worst
// case is a duplicate review, not data loss.
type Store struct {
	cards   *database.ReviewCardRepository
	sm2     *spaced_repetition.SM2
	lessons content.Provider

	mu  sync.Mutex
	due map[string][]models.ReviewCard
}

// NewStore creates a review store over the given lesson provider
func NewStore(lessons content.Provider) *Store {
	return &Store{
		cards:   database.NewReviewCardRepository(),
		sm2:     spaced_repetition.NewSM2(),
		lessons: lessons,
		due:     make(map[string][]models.ReviewCard),
	}
}

// FetchDueCards returns up to DueCardLimit cards due at the time of the
// call, soonest-due first, together with the user's total card count.
// An empty user id or a persistence failure yields an empty result.
func (s *Store) FetchDueCards(userID string) DueCards {
	empty := DueCards{Cards: []models.ReviewCard{}}
	if userID == "" {
		return empty
	}

	now := time.Now().UTC()
	cards, err := s.cards.FindDue(userID, now, DueCardLimit)
	if err != nil {
		slog.Error("fetching due cards failed", "user", userID, "error", err)
		return empty
	}
	if cards == nil {
		cards = []models.ReviewCard{}
	}

	total, err := s.cards.CountByUser(userID)
	if err != nil {
		slog.Error("counting cards failed", "user", userID, "error", err)
		return empty
	}

	// Cache a copy: the returned slice belongs to the caller and must not be
	// touched when evict later compacts the due list
	cached := make([]models.ReviewCard, len(cards))
	copy(cached, cards)

	s.mu.Lock()
	s.due[userID] = cached
	s.mu.Unlock()

	return DueCards{Cards: cards, TotalCards: total}
}

// GenerateCardsForLesson derives cards from a lesson's content and persists
// them for the user, returning how many cards were created. Generation is
// idempotent: if the user already has cards for the lesson, nothing happens.
// Lessons without card-worthy content are a valid no-op, not an error.
func (s *Store) GenerateCardsForLesson(userID, lessonID string) int {
	if userID == "" || lessonID == "" {
		return 0
	}

	// The lesson dataset is materialized lazily by the provider; this is the
	// only path that touches it
	lesson, ok := s.lessons.Lesson(lessonID)
	if !ok {
		slog.Warn("card generation requested for unknown lesson", "lesson", lessonID)
		return 0
	}

	created := s.generateLocked(userID, lessonID, lesson)
	if created == 0 {
		return 0
	}

	// New cards are due immediately; refresh the due view so they show up
	s.FetchDueCards(userID)

	return created
}

// generateLocked holds the store lock across the existence check and the
// insert so that concurrent generation calls for the same user and lesson
// cannot both pass the check and write duplicate cards.
func (s *Store) generateLocked(userID, lessonID string, lesson *models.Lesson) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.cards.ExistsForLesson(userID, lessonID)
	if err != nil {
		slog.Error("existence check failed", "user", userID, "lesson", lessonID, "error", err)
		return 0
	}
	if exists {
		return 0
	}

	drafts := cardgen.Generate(lesson)
	if len(drafts) == 0 {
		return 0
	}

	now := time.Now().UTC()
	cards, err := s.cards.BulkInsert(userID, lessonID, lesson.ModuleID, drafts, now)
	if err != nil {
		slog.Error("inserting generated cards failed", "user", userID, "lesson", lessonID, "error", err)
		return 0
	}

	return len(cards)
}

// RecordReview applies a quality rating (0-5, caller-validated) to a card,
// persists the new schedule and drops the card from the in-memory due list.
// Returns the updated card, or nil when the card is unknown or persistence
// failed; on failure the in-memory state is left untouched, so the card
// stays due.
//
// Recording is serialized under the store lock: concurrent reviews of the
// same card would otherwise apply a schedule update on top of stale state.
func (s *Store) RecordReview(cardID string, quality int) *models.ReviewCard {
	if cardID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cachedCard(cardID)
	if !ok {
		// Not in the due cache (e.g. first call after a restart): fall back
		// to the persisted state
		fetched, err := s.cards.GetByID(cardID)
		if err != nil {
			slog.Error("review card lookup failed", "card", cardID, "error", err)
			return nil
		}
		card = *fetched
	}

	updated := card
	s.sm2.Process(&updated, spaced_repetition.QualityResponse(quality), time.Now().UTC())

	if err := s.cards.Update(&updated); err != nil {
		slog.Error("persisting review failed", "card", cardID, "error", err)
		return nil
	}

	s.evict(updated.UserID, cardID)
	return &updated
}

// Statistics returns aggregate review numbers for the user (total cards,
// due today, mastered, average ease factor). Empty on failure.
func (s *Store) Statistics(userID string) map[string]interface{} {
	if userID == "" {
		return map[string]interface{}{}
	}

	stats, err := s.cards.GetUserStatistics(userID, time.Now().UTC())
	if err != nil {
		slog.Error("loading statistics failed", "user", userID, "error", err)
		return map[string]interface{}{}
	}
	return stats
}

// cachedCard looks a card up in the in-memory due lists. Caller holds s.mu.
func (s *Store) cachedCard(cardID string) (models.ReviewCard, bool) {
	for _, cards := range s.due {
		for _, card := range cards {
			if card.ID == cardID {
				return card, true
			}
		}
	}
	return models.ReviewCard{}, false
}

// evict removes a card from a user's due list. Caller holds s.mu.
func (s *Store) evict(userID, cardID string) {
	cards := s.due[userID]
	for i, card := range cards {
		if card.ID == cardID {
			s.due[userID] = append(cards[:i], cards[i+1:]...)
			return
		}
	}
}
