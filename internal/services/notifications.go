package services

import (
	"context"
	"log"
	"time"

	"focusflow-backend/internal/repository"
)

const (
	focusReminderLastSentKey = "focus_reminders_last_sent_at"
	focusReminderInterval    = 48 * time.Hour
	notificationPollInterval = 1 * time.Hour
)

// NotificationScheduler emails users who opted into focus reminders and have
// gone quiet. Polls hourly; last-sent timestamps live in the user's
// notification settings so restarts don't re-send.
type NotificationScheduler struct {
	userRepo *repository.UserRepo
	email    *EmailService
	stopChan chan struct{}
}

func NewNotificationScheduler(userRepo *repository.UserRepo, email *EmailService) *NotificationScheduler {
	return &NotificationScheduler{
		userRepo: userRepo,
		email:    email,
		stopChan: make(chan struct{}),
	}
}

func (s *NotificationScheduler) Start() {
	if s.userRepo == nil || s.email == nil {
		return
	}

	go s.loop(func(ctx context.Context, now time.Time) {
		s.sendFocusReminders(ctx, now)
	})

	log.Printf("Notification scheduler started")
}

func (s *NotificationScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *NotificationScheduler) loop(runFn func(ctx context.Context, now time.Time)) {
	// Run on startup as well as by interval.
	runFn(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(notificationPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			runFn(context.Background(), time.Now().UTC())
		}
	}
}

func (s *NotificationScheduler) sendFocusReminders(ctx context.Context, now time.Time) {
	recipients, err := s.userRepo.ListUsersWithReminderEnabled(ctx, "focus_reminders", focusReminderLastSentKey)
	if err != nil {
		log.Printf("focus reminders: failed to list recipients: %v", err)
		return
	}

	for _, recipient := range recipients {
		if !shouldSendByLastSent(recipient.LastSentAtRaw, focusReminderInterval, now) {
			continue
		}

		lastSessionAt, sessionErr := s.userRepo.LastSessionAt(ctx, recipient.ID)
		if sessionErr != nil {
			log.Printf("focus reminders: failed to load last session for user %s: %v", recipient.ID, sessionErr)
			continue
		}

		referenceTime := reminderReferenceTime(lastSessionAt, recipient.CreatedAt)
		if now.Sub(referenceTime) < focusReminderInterval {
			continue
		}

		if err := s.email.SendFocusReminderEmail(recipient.Email, recipient.FullName); err != nil {
			log.Printf("focus reminders: failed to send to %s: %v", recipient.Email, err)
			continue
		}

		if err := s.userRepo.SetNotificationTimestamp(ctx, recipient.ID, focusReminderLastSentKey, now); err != nil {
			log.Printf("focus reminders: failed to persist last sent at for user %s: %v", recipient.ID, err)
		}
	}
}

func shouldSendByLastSent(lastSentRaw string, minInterval time.Duration, now time.Time) bool {
	if lastSentRaw == "" {
		return true
	}

	lastSentAt, err := time.Parse(time.RFC3339, lastSentRaw)
	if err != nil {
		return true
	}

	return now.Sub(lastSentAt) >= minInterval
}

func reminderReferenceTime(lastSessionAt *time.Time, createdAt time.Time) time.Time {
	if lastSessionAt != nil && !lastSessionAt.IsZero() {
		return lastSessionAt.UTC()
	}

	return createdAt.UTC()
}
