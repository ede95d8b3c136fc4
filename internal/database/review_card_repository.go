package database

import (
	"fmt"
	"time"

	"github.com/example/geniuspath/pkg/models"
	"github.com/google/uuid"
)

// DefaultEaseFactor is the SM-2 starting easiness factor for new cards
const DefaultEaseFactor = 2.5

// ReviewCardRepository handles database operations for review cards
type ReviewCardRepository struct{}

// NewReviewCardRepository creates a new repository instance
func NewReviewCardRepository() *ReviewCardRepository {
	return &ReviewCardRepository{}
}

// GetByID returns a review card by ID
func (r *ReviewCardRepository) GetByID(id string) (*models.ReviewCard, error) {
	var card models.ReviewCard
	err := DB.Get(&card, "SELECT * FROM review_cards WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review card by ID: %w", err)
	}
	return &card, nil
}

// FindDue returns up to limit cards for the user whose next review is at or
// before now, soonest-due first
func (r *ReviewCardRepository) FindDue(userID string, now time.Time, limit int) ([]models.ReviewCard, error) {
	var cards []models.ReviewCard
	err := DB.Select(&cards, `
		SELECT * FROM review_cards
		WHERE user_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at ASC
		LIMIT $3
	`, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due cards: %w", err)
	}
	return cards, nil
}

// CountByUser returns the user's total card count
func (r *ReviewCardRepository) CountByUser(userID string) (int, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM review_cards WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

// CountDueByUser returns how many of the user's cards are due at now
func (r *ReviewCardRepository) CountDueByUser(userID string, now time.Time) (int, error) {
	var count int
	err := DB.Get(&count,
		"SELECT COUNT(*) FROM review_cards WHERE user_id = $1 AND next_review_at <= $2",
		userID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to count due cards: %w", err)
	}
	return count, nil
}

// ExistsForLesson reports whether the user already has cards for a lesson
func (r *ReviewCardRepository) ExistsForLesson(userID, lessonID string) (bool, error) {
	var count int
	err := DB.Get(&count,
		"SELECT COUNT(*) FROM review_cards WHERE user_id = $1 AND lesson_id = $2",
		userID, lessonID)
	if err != nil {
		return false, fmt.Errorf("failed to check existing cards: %w", err)
	}
	return count > 0, nil
}

// BulkInsert persists a batch of card drafts for a user and lesson in a
// single transaction. New cards start with the default ease factor, a zero
// interval and a next review of now, so they are due immediately.
func (r *ReviewCardRepository) BulkInsert(userID, lessonID, moduleID string, drafts []models.CardDraft, now time.Time) ([]models.ReviewCard, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	tx, err := DB.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cards := make([]models.ReviewCard, 0, len(drafts))
	for _, draft := range drafts {
		card := models.ReviewCard{
			ID:           uuid.NewString(),
			UserID:       userID,
			LessonID:     lessonID,
			ModuleID:     moduleID,
			CardType:     draft.CardType,
			Front:        draft.Front,
			Back:         draft.Back,
			ExtraData:    draft.ExtraData,
			EaseFactor:   DefaultEaseFactor,
			IntervalDays: 0,
			Repetitions:  0,
			NextReviewAt: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		_, err := tx.Exec(`
			INSERT INTO review_cards (
				id, user_id, lesson_id, module_id, card_type, front, back, extra_data,
				ease_factor, interval_days, repetitions, last_quality,
				next_review_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`,
			card.ID,
			card.UserID,
			card.LessonID,
			card.ModuleID,
			card.CardType,
			card.Front,
			card.Back,
			card.ExtraData,
			card.EaseFactor,
			card.IntervalDays,
			card.Repetitions,
			card.LastQuality,
			card.NextReviewAt,
			card.CreatedAt,
			card.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert card for lesson %s: %w", lessonID, err)
		}
		cards = append(cards, card)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit card batch: %w", err)
	}
	return cards, nil
}

// Update persists a card's scheduling state after a review
func (r *ReviewCardRepository) Update(card *models.ReviewCard) error {
	card.UpdatedAt = time.Now().UTC()
	_, err := DB.Exec(`
		UPDATE review_cards SET
			ease_factor = $1,
			interval_days = $2,
			repetitions = $3,
			last_quality = $4,
			next_review_at = $5,
			last_reviewed_at = $6,
			updated_at = $7
		WHERE id = $8
	`,
		card.EaseFactor,
		card.IntervalDays,
		card.Repetitions,
		card.LastQuality,
		card.NextReviewAt,
		card.LastReviewedAt,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review card %s: %w", card.ID, err)
	}
	return nil
}

// GetUserStatistics returns statistics about a user's review cards
func (r *ReviewCardRepository) GetUserStatistics(userID string, now time.Time) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	// Get total cards
	var totalCount int
	err := DB.Get(&totalCount, "SELECT COUNT(*) FROM review_cards WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	stats["total_cards"] = totalCount

	// Get cards currently due, matching what the due-card fetch would return
	var dueToday int
	err = DB.Get(&dueToday,
		"SELECT COUNT(*) FROM review_cards WHERE user_id = $1 AND next_review_at <= $2",
		userID, now)
	if err != nil {
		return nil, err
	}
	stats["due_today"] = dueToday

	// Get mastered cards (at least 5 repetitions with a high rating and a long interval)
	var mastered int
	err = DB.Get(&mastered, `
		SELECT COUNT(*) FROM review_cards
		WHERE user_id = $1 AND repetitions >= 5 AND last_quality >= 4 AND interval_days >= 30
	`, userID)
	if err != nil {
		return nil, err
	}
	stats["mastered"] = mastered

	// Get average easiness factor
	var avgEF float64
	err = DB.Get(&avgEF,
		"SELECT COALESCE(AVG(ease_factor), 2.5) FROM review_cards WHERE user_id = $1",
		userID)
	if err != nil {
		return nil, err
	}
	stats["avg_ease_factor"] = avgEF

	return stats, nil
}
