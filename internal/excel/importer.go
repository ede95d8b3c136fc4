package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/geniuspath/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Row kinds understood by the importer
const (
	kindVocab      = "vocab"
	kindKeyPoint   = "keypoint"
	kindConnection = "connection"
)

// ImportConfig defines the import configuration.
// Each row describes one piece of lesson content:
//
//	lesson_id | module_id | title | kind | field1 | field2 | field3 | field4
//
// kind is one of vocab (term, meaning, pronunciation, derivatives),
// keypoint (text) or connection (term, original, meaning, language).
// Derivatives are separated with "|".
type ImportConfig struct {
	FilePath   string // Path to the Excel or CSV file
	SheetName  string // Name of the sheet to import
	SkipHeader bool   // Skip the header row
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:   path,
		SheetName:  "Sheet1",
		SkipHeader: true,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Lessons        int
	Skipped        int
	Errors         []string
}

// ImportLessons reads lesson content from an Excel or CSV file and groups it
// into lessons, preserving row order within each lesson
func ImportLessons(config ImportConfig) ([]models.Lesson, *ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	var rows [][]string
	var err error
	if ext == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config)
	}
	if err != nil {
		return nil, nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}

	lessonsByID := make(map[string]*models.Lesson)
	var order []string

	for i, row := range rows {
		if i == 0 && config.SkipHeader {
			continue
		}
		result.TotalProcessed++

		if err := processRow(row, lessonsByID, &order); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	lessons := make([]models.Lesson, 0, len(order))
	for _, id := range order {
		lessons = append(lessons, *lessonsByID[id])
	}
	result.Lessons = len(lessons)

	return lessons, result, nil
}

func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func processRow(row []string, lessonsByID map[string]*models.Lesson, order *[]string) error {
	if len(row) < 5 {
		return fmt.Errorf("expected at least 5 columns, got %d", len(row))
	}

	field := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	lessonID := field(0)
	if lessonID == "" {
		return fmt.Errorf("missing lesson id")
	}

	lesson, ok := lessonsByID[lessonID]
	if !ok {
		lesson = &models.Lesson{
			ID:       lessonID,
			ModuleID: field(1),
			Title:    field(2),
		}
		lessonsByID[lessonID] = lesson
		*order = append(*order, lessonID)
	}

	switch kind := field(3); kind {
	case kindVocab:
		term, meaning := field(4), field(5)
		if term == "" || meaning == "" {
			return fmt.Errorf("vocab row needs a term and a meaning")
		}
		entry := models.VocabularyEntry{
			Term:          term,
			Meaning:       meaning,
			Pronunciation: field(6),
		}
		if derivatives := field(7); derivatives != "" {
			entry.Derivatives = strings.Split(derivatives, "|")
		}
		lesson.VocabularyTable = append(lesson.VocabularyTable, entry)

	case kindKeyPoint:
		text := field(4)
		if text == "" {
			return fmt.Errorf("keypoint row has no text")
		}
		lesson.KeyPoints = append(lesson.KeyPoints, text)

	case kindConnection:
		term, original, meaning := field(4), field(5), field(6)
		if term == "" || original == "" || meaning == "" {
			return fmt.Errorf("connection row needs a term, an original and a meaning")
		}
		lesson.ClassicalConnections = append(lesson.ClassicalConnections, models.ClassicalConnection{
			Term:     term,
			Original: original,
			Meaning:  meaning,
			Language: field(7),
		})

	default:
		return fmt.Errorf("unknown row kind %q", kind)
	}

	return nil
}
