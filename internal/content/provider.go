package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/geniuspath/pkg/models"
)

// Provider supplies lesson records to the card generator. Implementations
// may defer materializing the underlying dataset until the first lookup.
type Provider interface {
	Lesson(id string) (*models.Lesson, bool)
}

//go:embed curriculum.json
var curriculumData []byte

// Library is a lesson provider backed by the embedded curriculum dataset.
// The dataset is decoded lazily on first access, since card generation is
// the only operation that needs it.
type Library struct {
	once    sync.Once
	mu      sync.RWMutex
	lessons map[string]models.Lesson
}

// NewLibrary creates a lesson library. No data is decoded yet.
func NewLibrary() *Library {
	return &Library{}
}

func (l *Library) load() {
	var lessons []models.Lesson
	if err := json.Unmarshal(curriculumData, &lessons); err != nil {
		// A broken embedded dataset is a build defect; log it and carry on
		// with an empty library so lookups degrade to "lesson not found".
		slog.Error("failed to decode embedded curriculum", "error", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lessons == nil {
		l.lessons = make(map[string]models.Lesson, len(lessons))
	}
	for _, lesson := range lessons {
		// Imported lessons added before first load take precedence
		if _, ok := l.lessons[lesson.ID]; !ok {
			l.lessons[lesson.ID] = lesson
		}
	}
}

// Lesson returns the lesson with the given id, if known
func (l *Library) Lesson(id string) (*models.Lesson, bool) {
	l.once.Do(l.load)

	l.mu.RLock()
	defer l.mu.RUnlock()
	lesson, ok := l.lessons[id]
	if !ok {
		return nil, false
	}
	return &lesson, true
}

// Add merges lessons into the library, replacing lessons with the same id
func (l *Library) Add(lessons []models.Lesson) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lessons == nil {
		l.lessons = make(map[string]models.Lesson, len(lessons))
	}
	for _, lesson := range lessons {
		if lesson.ID == "" {
			return fmt.Errorf("lesson %q has no id", lesson.Title)
		}
		l.lessons[lesson.ID] = lesson
	}
	return nil
}
