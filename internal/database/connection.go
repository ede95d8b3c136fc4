package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the review store database.
// driver is either "postgres" or "sqlite3".
func Connect(driver, dsn string) error {
	if driver == "sqlite3" && dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	DB = db

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	// Create users table
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			telegram_chat_id BIGINT DEFAULT 0,
			notification_enabled BOOLEAN DEFAULT false,
			notification_hour INTEGER DEFAULT 9,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	// Create review_cards table
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS review_cards (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			lesson_id TEXT NOT NULL,
			module_id TEXT NOT NULL,
			card_type TEXT NOT NULL,
			front TEXT NOT NULL,
			back TEXT NOT NULL,
			extra_data TEXT NOT NULL DEFAULT '{}',
			ease_factor REAL NOT NULL DEFAULT 2.5,
			interval_days INTEGER NOT NULL DEFAULT 0,
			repetitions INTEGER NOT NULL DEFAULT 0,
			last_quality INTEGER NOT NULL DEFAULT 0,
			next_review_at TIMESTAMP NOT NULL,
			last_reviewed_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create review_cards table: %w", err)
	}

	// Index for the due-card query
	_, err = DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_review_cards_user_due
		ON review_cards (user_id, next_review_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to create review_cards index: %w", err)
	}

	// Index for the per-lesson existence check
	_, err = DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_review_cards_user_lesson
		ON review_cards (user_id, lesson_id)
	`)
	if err != nil {
		return fmt.Errorf("failed to create review_cards lesson index: %w", err)
	}

	return nil
}
