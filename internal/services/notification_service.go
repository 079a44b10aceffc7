// internal/services/notification_service.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/admissions-checklist/internal/i18n"
	"github.com/javajoker/admissions-checklist/internal/models"
	"github.com/javajoker/admissions-checklist/internal/repository"
)

// NotificationService records in-app notifications for families. Delivery
// over email or SMS happens elsewhere.
type NotificationService struct {
	lang string
}

func NewNotificationService(lang string) *NotificationService {
	if lang == "" {
		lang = "en"
	}
	return &NotificationService{lang: lang}
}

// NotifyItemOverdue is written through repo so the sweep can keep it in the
// same transaction as the status change.
func (s *NotificationService) NotifyItemOverdue(ctx context.Context, repo repository.Repository, item *models.ChecklistItem) (*models.Notification, error) {
	notification := &models.Notification{
		ApplicationID:   item.ApplicationID,
		ChecklistItemID: &item.ID,
		Kind:            models.NotificationKindItemOverdue,
		Title:           i18n.T(s.lang, i18n.KeyNotificationOverdueTitle, item.Title),
		Message:         i18n.T(s.lang, i18n.KeyNotificationOverdueBody, item.Title, models.FormatDate(item.DueDate)),
		Status:          models.NotificationStatusUnread,
	}

	if err := repo.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create overdue notification: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"application_id": item.ApplicationID,
		"item_id":        item.ID,
	}).Debug("Overdue notification recorded")
	return notification, nil
}

func (s *NotificationService) NotifyNextAction(ctx context.Context, repo repository.Repository, item *models.ChecklistItem) (*models.Notification, error) {
	message := i18n.T(s.lang, i18n.KeyNotificationNextActionBody, item.Title)
	if item.DueDate != nil {
		message = i18n.T(s.lang, i18n.KeyNotificationNextActionDue, item.Title, models.FormatDate(item.DueDate))
	}

	notification := &models.Notification{
		ApplicationID:   item.ApplicationID,
		ChecklistItemID: &item.ID,
		Kind:            models.NotificationKindNextActionReminder,
		Title:           i18n.T(s.lang, i18n.KeyNotificationNextActionTitle, item.Title),
		Message:         message,
		Status:          models.NotificationStatusUnread,
	}

	if err := repo.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create reminder notification: %w", err)
	}
	return notification, nil
}
