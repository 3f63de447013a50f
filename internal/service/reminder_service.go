package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segyhp/emi-tracker/internal/domain"
	"github.com/segyhp/emi-tracker/internal/metrics"
	"github.com/segyhp/emi-tracker/internal/notifier"
	"github.com/segyhp/emi-tracker/internal/repository"
	customError "github.com/segyhp/emi-tracker/pkg/errors"
	"github.com/segyhp/emi-tracker/pkg/utils"
)

type ReminderService struct {
	ReminderRepo repository.ReminderRepository
	sender       notifier.Sender
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

func NewReminderService(reminderRepo repository.ReminderRepository, sender notifier.Sender, m *metrics.Metrics) *ReminderService {
	return &ReminderService{
		ReminderRepo: reminderRepo,
		sender:       sender,
		metrics:      m,
		logger:       slog.Default().With("component", "reminders"),
		now:          time.Now,
	}
}

// DispatchDue sends every unsent reminder dated on or before today. A
// failed delivery is recorded on the reminder and the batch carries on.
// Without a mail transport reminders are counted as skipped and left unsent.
func (s *ReminderService) DispatchDue(ctx context.Context, today time.Time) (domain.DispatchResult, error) {
	var result domain.DispatchResult

	reminders, err := s.ReminderRepo.ListUnsentDue(ctx, utils.DateOnly(today))
	if err != nil {
		return result, customError.WrapDatabaseError(err)
	}

	for _, reminder := range reminders {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sendErr := s.sender.Send(ctx, reminder.Recipient, reminder.Subject, reminder.Message)
		if errors.Is(sendErr, notifier.ErrDeliveryDisabled) {
			s.metrics.Reminder(metrics.OutcomeSkipped)
			result.Skipped++
			continue
		}
		if sendErr != nil {
			failure := customError.WrapNotificationError(reminder.Recipient, sendErr)
			s.logger.WarnContext(ctx, "reminder delivery failed",
				"reminder_id", reminder.ID,
				"loan_id", reminder.LoanID,
				"error", failure,
			)
			if err := s.ReminderRepo.MarkFailed(ctx, reminder.ID, failure.Error()); err != nil {
				return result, customError.WrapDatabaseError(err)
			}
			s.metrics.Reminder(metrics.OutcomeFailed)
			result.Failed++
			continue
		}

		if err := s.ReminderRepo.MarkSent(ctx, reminder.ID, s.now().UTC()); err != nil {
			return result, customError.WrapDatabaseError(err)
		}
		s.metrics.Reminder(metrics.OutcomeSent)
		result.Sent++
	}

	s.logger.InfoContext(ctx, "reminder dispatch finished",
		"date", utils.DateOnly(today).Format(utils.DateLayout),
		"sent", result.Sent,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)

	return result, nil
}
