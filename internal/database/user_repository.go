package database

import (
	"fmt"
	"time"

	"github.com/example/geniuspath/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := DB.Get(&user, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Upsert creates or updates a user's reminder preferences
func (r *UserRepository) Upsert(user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := DB.Exec(`
		INSERT INTO users (id, telegram_chat_id, notification_enabled, notification_hour, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			telegram_chat_id = EXCLUDED.telegram_chat_id,
			notification_enabled = EXCLUDED.notification_enabled,
			notification_hour = EXCLUDED.notification_hour,
			updated_at = EXCLUDED.updated_at
	`,
		user.ID,
		user.TelegramChatID,
		user.NotificationEnabled,
		user.NotificationHour,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.ID, err)
	}
	return nil
}

// GetForNotificationHour returns users who opted into reminders at the given hour
func (r *UserRepository) GetForNotificationHour(hour int) ([]models.User, error) {
	var users []models.User
	err := DB.Select(&users, `
		SELECT * FROM users
		WHERE notification_enabled AND notification_hour = $1 AND telegram_chat_id != 0
	`, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %w", err)
	}
	return users, nil
}
