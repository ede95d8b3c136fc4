package spaced_repetition

import (
	"math"
	"time"

	"github.com/example/geniuspath/pkg/models"
)

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Quality ratings at or above this value count as a successful recall
	PassThreshold int
	// Lower bound for the easiness factor
	MinEaseFactor float64
}

// NewSM2 creates a new SM2 instance with default settings
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold: 3,
		MinEaseFactor: 1.3,
	}
}

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// Process applies the SM-2 update for a review performed at now.
// The interval growth step uses the interval and easiness factor as they
// were before this review. Quality is assumed caller-validated to lie in
// [0,5]; out-of-range values are not rejected here.
func (sm *SM2) Process(card *models.ReviewCard, quality QualityResponse, now time.Time) {
	prevEF := card.EaseFactor
	prevInterval := card.IntervalDays

	if quality < QualityResponse(sm.PassThreshold) {
		// Failed recall: schedule restarts from one day
		card.Repetitions = 0
		card.IntervalDays = 1
	} else {
		card.Repetitions++
		switch card.Repetitions {
		case 1:
			card.IntervalDays = 1
		case 2:
			card.IntervalDays = 3
		default:
			card.IntervalDays = int(math.Round(float64(prevInterval) * prevEF))
		}
	}

	// Easiness factor is adjusted on every review, success or failure
	newEF := prevEF + (0.1 - (5.0-float64(quality))*(0.08+(5.0-float64(quality))*0.02))
	if newEF < sm.MinEaseFactor {
		newEF = sm.MinEaseFactor
	}
	card.EaseFactor = newEF

	card.LastQuality = int(quality)
	reviewed := now
	card.LastReviewedAt = &reviewed
	card.NextReviewAt = now.AddDate(0, 0, card.IntervalDays)
}

// IsCardMastered determines if a card is considered "mastered"
func (sm *SM2) IsCardMastered(card *models.ReviewCard) bool {
	// A card is considered mastered if:
	// 1. It has at least 5 consecutive successful reviews
	// 2. The latest quality response was 4 or 5
	// 3. The interval is at least 30 days
	return card.Repetitions >= 5 &&
		card.LastQuality >= int(QualityCorrectHesitation) &&
		card.IntervalDays >= 30
}
