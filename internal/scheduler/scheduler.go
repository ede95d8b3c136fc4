package scheduler

import (
	"log/slog"
	"time"

	"github.com/example/geniuspath/internal/database"
	"github.com/go-co-op/gocron"
)

// Default window during which reminders may be sent
const (
	DefaultQuietStartHour = 8
	DefaultQuietEndHour   = 22
)

// Notifier sends a due-card reminder to a user
type Notifier interface {
	SendReminder(chatID int64, dueCount int) error
}

// Scheduler runs the hourly reminder job: every user who opted into
// reminders at the current hour and has cards due gets a nudge.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	startHour int
	endHour   int
}

// New creates a new scheduler instance. Hours bound the daily window
// outside of which no reminders are sent.
func New(notifier Notifier, startHour, endHour int) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		notifier:  notifier,
		startHour: startHour,
		endHour:   endHour,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders finds users due a reminder this hour and notifies them
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().UTC().Hour()

	if currentHour < s.startHour || currentHour > s.endHour {
		slog.Debug("outside reminder hours, skipping", "hour", currentHour)
		return
	}

	userRepo := database.NewUserRepository()
	cardRepo := database.NewReviewCardRepository()

	users, err := userRepo.GetForNotificationHour(currentHour)
	if err != nil {
		slog.Error("loading users for reminders failed", "error", err)
		return
	}

	now := time.Now().UTC()
	for _, user := range users {
		dueCount, err := cardRepo.CountDueByUser(user.ID, now)
		if err != nil {
			slog.Error("counting due cards failed", "user", user.ID, "error", err)
			continue
		}
		if dueCount == 0 {
			continue
		}

		if err := s.notifier.SendReminder(user.TelegramChatID, dueCount); err != nil {
			slog.Error("sending reminder failed", "user", user.ID, "error", err)
		}
	}
}

// RunManualCheck forces a reminder check for a specific user
func (s *Scheduler) RunManualCheck(userID string) error {
	userRepo := database.NewUserRepository()
	cardRepo := database.NewReviewCardRepository()

	user, err := userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	dueCount, err := cardRepo.CountDueByUser(userID, time.Now().UTC())
	if err != nil {
		return err
	}
	if dueCount == 0 || user.TelegramChatID == 0 {
		return nil
	}

	return s.notifier.SendReminder(user.TelegramChatID, dueCount)
}
