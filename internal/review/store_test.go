package review

import (
	"sync"
	"testing"
	"time"

	"github.com/example/geniuspath/internal/database"
	"github.com/example/geniuspath/pkg/models"
)

type stubProvider struct {
	lessons map[string]models.Lesson
}

func (p *stubProvider) Lesson(id string) (*models.Lesson, bool) {
	lesson, ok := p.lessons[id]
	if !ok {
		return nil, false
	}
	return &lesson, true
}

func setup(t *testing.T) *Store {
	t.Helper()
	if err := database.Connect("sqlite3", ":memory:"); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	provider := &stubProvider{lessons: map[string]models.Lesson{
		"latin-1": {
			ID:       "latin-1",
			ModuleID: "classics",
			VocabularyTable: []models.VocabularyEntry{
				{Term: "aqua", Meaning: "water"},
				{Term: "terra", Meaning: "earth"},
			},
			KeyPoints: []string{"Euclid: father of geometry"},
		},
		"empty-1": {ID: "empty-1", ModuleID: "classics"},
	}}
	return NewStore(provider)
}

func TestGenerateCardsForLesson(t *testing.T) {
	store := setup(t)

	created := store.GenerateCardsForLesson("user-1", "latin-1")
	if created != 3 {
		t.Fatalf("expected 3 cards (2 flashcards, 1 fill-blank), got %d", created)
	}

	due := store.FetchDueCards("user-1")
	if len(due.Cards) != 3 {
		t.Errorf("expected 3 due cards, got %d", len(due.Cards))
	}
	if due.TotalCards != 3 {
		t.Errorf("expected total 3, got %d", due.TotalCards)
	}
	for _, card := range due.Cards {
		if card.EaseFactor != database.DefaultEaseFactor {
			t.Errorf("new card should start at EF %.1f, got %.2f", database.DefaultEaseFactor, card.EaseFactor)
		}
		if card.IntervalDays != 0 || card.Repetitions != 0 {
			t.Errorf("new card should start unscheduled, got interval=%d reps=%d", card.IntervalDays, card.Repetitions)
		}
	}
}

func TestGenerateCardsIdempotent(t *testing.T) {
	store := setup(t)

	first := store.GenerateCardsForLesson("user-1", "latin-1")
	second := store.GenerateCardsForLesson("user-1", "latin-1")

	if first == 0 {
		t.Fatal("expected cards on first generation")
	}
	if second != 0 {
		t.Errorf("expected second generation to be a no-op, got %d new cards", second)
	}

	due := store.FetchDueCards("user-1")
	if due.TotalCards != first {
		t.Errorf("expected total to stay at %d, got %d", first, due.TotalCards)
	}
}

func TestGenerateCardsConcurrent(t *testing.T) {
	store := setup(t)

	// Simultaneous generation requests for the same user and lesson must not
	// slip past the existence check together and double the deck
	var wg sync.WaitGroup
	results := make([]int, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = store.GenerateCardsForLesson("user-1", "latin-1")
		}(i)
	}
	wg.Wait()

	created := 0
	for _, n := range results {
		created += n
	}
	if created != 3 {
		t.Errorf("expected 3 cards created across all calls, got %d", created)
	}

	due := store.FetchDueCards("user-1")
	if due.TotalCards != 3 {
		t.Errorf("expected 3 cards total, got %d", due.TotalCards)
	}
}

func TestGenerateCardsEdgeCases(t *testing.T) {
	store := setup(t)

	if n := store.GenerateCardsForLesson("user-1", "empty-1"); n != 0 {
		t.Errorf("lesson without card-worthy content should create 0 cards, got %d", n)
	}
	if n := store.GenerateCardsForLesson("user-1", "no-such-lesson"); n != 0 {
		t.Errorf("unknown lesson should create 0 cards, got %d", n)
	}
	if n := store.GenerateCardsForLesson("", "latin-1"); n != 0 {
		t.Errorf("unauthenticated generation should be a no-op, got %d", n)
	}

	// Cards for another user must not suppress generation for this one
	if n := store.GenerateCardsForLesson("user-1", "latin-1"); n == 0 {
		t.Error("expected cards for user-1")
	}
	if n := store.GenerateCardsForLesson("user-2", "latin-1"); n == 0 {
		t.Error("expected cards for user-2 despite user-1 having some")
	}
}

func TestFetchDueCardsOrderingAndWindow(t *testing.T) {
	store := setup(t)
	repo := database.NewReviewCardRepository()

	if n := store.GenerateCardsForLesson("user-1", "latin-1"); n != 3 {
		t.Fatalf("expected 3 cards, got %d", n)
	}

	now := time.Now().UTC()
	all, err := repo.FindDue("user-1", now.Add(time.Minute), DueCardLimit)
	if err != nil {
		t.Fatalf("failed to load cards: %v", err)
	}

	// Spread the three cards around "now": one overdue, one due this instant,
	// one due tomorrow
	offsets := []time.Duration{-24 * time.Hour, 0, 24 * time.Hour}
	for i := range all {
		all[i].NextReviewAt = now.Add(offsets[i])
		if err := repo.Update(&all[i]); err != nil {
			t.Fatalf("failed to reschedule card: %v", err)
		}
	}

	due := store.FetchDueCards("user-1")
	if len(due.Cards) != 2 {
		t.Fatalf("expected 2 due cards (tomorrow's excluded), got %d", len(due.Cards))
	}
	if due.Cards[0].ID != all[0].ID {
		t.Errorf("expected the overdue card first, got %s", due.Cards[0].ID)
	}
	if due.Cards[1].ID != all[1].ID {
		t.Errorf("expected the just-due card second, got %s", due.Cards[1].ID)
	}
	if due.TotalCards != 3 {
		t.Errorf("total count should include the not-yet-due card, got %d", due.TotalCards)
	}
}

func TestFetchDueCardsCapped(t *testing.T) {
	store := setup(t)

	// A vocabulary-heavy lesson produces more cards than one fetch returns
	big := models.Lesson{ID: "big-1", ModuleID: "classics"}
	for i := 0; i < DueCardLimit+5; i++ {
		big.VocabularyTable = append(big.VocabularyTable, models.VocabularyEntry{
			Term:    string(rune('a' + i)),
			Meaning: "meaning",
		})
	}
	store.lessons.(*stubProvider).lessons["big-1"] = big

	if n := store.GenerateCardsForLesson("user-1", "big-1"); n != DueCardLimit+5 {
		t.Fatalf("expected %d cards, got %d", DueCardLimit+5, n)
	}

	due := store.FetchDueCards("user-1")
	if len(due.Cards) != DueCardLimit {
		t.Errorf("expected the due list capped at %d, got %d", DueCardLimit, len(due.Cards))
	}
	if due.TotalCards != DueCardLimit+5 {
		t.Errorf("expected total %d, got %d", DueCardLimit+5, due.TotalCards)
	}
}

func TestRecordReviewSuccess(t *testing.T) {
	store := setup(t)

	store.GenerateCardsForLesson("user-1", "latin-1")
	due := store.FetchDueCards("user-1")
	if len(due.Cards) == 0 {
		t.Fatal("expected due cards")
	}
	cardID := due.Cards[0].ID

	updated := store.RecordReview(cardID, 5)
	if updated == nil {
		t.Fatal("expected an updated card")
	}
	if updated.Repetitions != 1 || updated.IntervalDays != 1 {
		t.Errorf("first success should yield reps=1 interval=1, got reps=%d interval=%d", updated.Repetitions, updated.IntervalDays)
	}
	if !updated.NextReviewAt.After(time.Now().UTC()) {
		t.Errorf("reviewed card should not be due anymore, next review %v", updated.NextReviewAt)
	}

	refreshed := store.FetchDueCards("user-1")
	for _, card := range refreshed.Cards {
		if card.ID == cardID {
			t.Error("reviewed card should have left the due list")
		}
	}
	if refreshed.TotalCards != due.TotalCards {
		t.Errorf("review must not change the total count: %d -> %d", due.TotalCards, refreshed.TotalCards)
	}

	// The new schedule must have been persisted, not just cached
	persisted, err := database.NewReviewCardRepository().GetByID(cardID)
	if err != nil {
		t.Fatalf("failed to reload card: %v", err)
	}
	if persisted.Repetitions != 1 || persisted.LastReviewedAt == nil {
		t.Errorf("persisted card not updated: %+v", persisted)
	}
}

func TestRecordReviewKeepsFetchedListIntact(t *testing.T) {
	store := setup(t)

	store.GenerateCardsForLesson("user-1", "latin-1")
	due := store.FetchDueCards("user-1")
	if len(due.Cards) != 3 {
		t.Fatalf("expected 3 due cards, got %d", len(due.Cards))
	}
	ids := []string{due.Cards[0].ID, due.Cards[1].ID, due.Cards[2].ID}

	// A fetched list belongs to the caller; recording a review must not
	// reshuffle or truncate it behind their back
	if store.RecordReview(ids[0], 5) == nil {
		t.Fatal("expected the review to be recorded")
	}

	if len(due.Cards) != 3 {
		t.Fatalf("caller-held list changed length: got %d", len(due.Cards))
	}
	for i, id := range ids {
		if due.Cards[i].ID != id {
			t.Errorf("caller-held list changed at %d: expected %s, got %s", i, id, due.Cards[i].ID)
		}
	}
}

func TestRecordReviewFailureResets(t *testing.T) {
	store := setup(t)

	store.GenerateCardsForLesson("user-1", "latin-1")
	due := store.FetchDueCards("user-1")
	cardID := due.Cards[0].ID

	// Build up some schedule first
	store.RecordReview(cardID, 5)
	card, _ := database.NewReviewCardRepository().GetByID(cardID)
	card.Repetitions = 4
	card.IntervalDays = 25
	if err := database.NewReviewCardRepository().Update(card); err != nil {
		t.Fatalf("failed to seed card state: %v", err)
	}

	updated := store.RecordReview(cardID, 2)
	if updated == nil {
		t.Fatal("expected an updated card")
	}
	if updated.Repetitions != 0 || updated.IntervalDays != 1 {
		t.Errorf("failed review should reset to reps=0 interval=1, got reps=%d interval=%d", updated.Repetitions, updated.IntervalDays)
	}
}

func TestRecordReviewUnknownCard(t *testing.T) {
	store := setup(t)
	if updated := store.RecordReview("no-such-card", 4); updated != nil {
		t.Errorf("expected nil for unknown card, got %+v", updated)
	}
	if updated := store.RecordReview("", 4); updated != nil {
		t.Errorf("expected nil for empty card id, got %+v", updated)
	}
}

func TestFetchDueCardsUnauthenticated(t *testing.T) {
	store := setup(t)
	due := store.FetchDueCards("")
	if len(due.Cards) != 0 || due.TotalCards != 0 {
		t.Errorf("expected empty result without a user, got %+v", due)
	}
}

func TestStatistics(t *testing.T) {
	store := setup(t)

	store.GenerateCardsForLesson("user-1", "latin-1")
	stats := store.Statistics("user-1")

	if stats["total_cards"] != 3 {
		t.Errorf("expected total_cards 3, got %v", stats["total_cards"])
	}
	if stats["due_today"] != 3 {
		t.Errorf("expected due_today 3, got %v", stats["due_today"])
	}
	if stats["mastered"] != 0 {
		t.Errorf("expected mastered 0, got %v", stats["mastered"])
	}

	// Only cards already due count, not ones scheduled later today
	repo := database.NewReviewCardRepository()
	all, err := repo.FindDue("user-1", time.Now().UTC().Add(time.Minute), DueCardLimit)
	if err != nil {
		t.Fatalf("failed to load cards: %v", err)
	}
	all[0].NextReviewAt = time.Now().UTC().Add(2 * time.Hour)
	if err := repo.Update(&all[0]); err != nil {
		t.Fatalf("failed to reschedule card: %v", err)
	}

	stats = store.Statistics("user-1")
	if stats["due_today"] != 2 {
		t.Errorf("expected due_today 2 after rescheduling one card, got %v", stats["due_today"])
	}
	if stats["total_cards"] != 3 {
		t.Errorf("expected total_cards to stay 3, got %v", stats["total_cards"])
	}

	if stats := store.Statistics(""); len(stats) != 0 {
		t.Errorf("expected empty stats without a user, got %v", stats)
	}
}
