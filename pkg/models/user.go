package models

import "time"

// User holds a learner's reminder preferences
type User struct {
	ID                  string    `json:"id" db:"id"`
	TelegramChatID      int64     `json:"telegram_chat_id" db:"telegram_chat_id"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // Hour of day for reminders (0-23)
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
