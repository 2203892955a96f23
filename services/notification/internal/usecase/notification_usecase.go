package usecase

import (
	"context"
	"fmt"
	"strings"

	"premier-open-group/pkg/logger"
	"premier-open-group/pkg/models"
	"premier-open-group/pkg/queue"
	"premier-open-group/services/notification/internal/entity"
	"premier-open-group/services/notification/internal/repo/persistent"
)

// Publisher delivers a stored notification to open member sockets.
type Publisher interface {
	Publish(ctx context.Context, notification *entity.MemberNotification) error
}

type NotificationUseCase interface {
	HandleStatusChange(ctx context.Context, task queue.MemberStatusTask) error
}

type notificationUseCase struct {
	repo   persistent.NotificationRepository
	live   Publisher
	logger *logger.Logger
}

func NewNotificationUseCase(repo persistent.NotificationRepository, live Publisher, logger *logger.Logger) NotificationUseCase {
	return &notificationUseCase{
		repo:   repo,
		live:   live,
		logger: logger,
	}
}

// HandleStatusChange stores the member's notification for an approval or
// role change. A returned error requeues the task.
func (uc *notificationUseCase) HandleStatusChange(ctx context.Context, task queue.MemberStatusTask) error {
	name, err := uc.repo.FullName(ctx, task.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up profile %s: %w", task.UserID, err)
	}

	title, message, ok := Compose(task, name)
	if !ok {
		uc.logger.Warn("[NOTIFICATION] Ignoring %s change for user %s: status=%q role=%q", task.Change, task.UserID, task.Status, task.Role)
		return nil
	}

	notification := &entity.MemberNotification{
		UserID:  task.UserID,
		Title:   title,
		Message: message,
	}
	if err := uc.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification for %s: %w", task.UserID, err)
	}
	uc.logger.Info("[NOTIFICATION] Stored %q for user %s (changed by %s)", title, task.UserID, task.ChangedBy)

	if uc.live != nil {
		if err := uc.live.Publish(ctx, notification); err != nil {
			uc.logger.Error("[NOTIFICATION] Failed to push %s live: %v", notification.ID, err)
		}
	}
	return nil
}

// Compose returns the title and message for a change. ok is false for values
// no member message exists for.
func Compose(task queue.MemberStatusTask, fullName string) (title, message string, ok bool) {
	greeting := "Hello"
	if name := strings.TrimSpace(fullName); name != "" {
		greeting = "Hello " + name
	}

	if task.Change == queue.ChangeRole {
		switch models.UserRole(task.Role) {
		case models.RoleAdmin:
			return "Administrator access granted",
				greeting + ", you can now manage site content, members and registrations from the admin page.", true
		case models.RoleMember:
			return "Administrator access removed",
				greeting + ", your account is now a regular member account.", true
		}
		return "", "", false
	}

	switch models.ProfileStatus(task.Status) {
	case models.StatusApproved:
		return "Membership approved",
			greeting + ", welcome to Premier Open Group! Your member area is now open.", true
	case models.StatusRejected:
		return "Membership not approved",
			greeting + ", your membership request was not approved. Please contact us if you think this is a mistake.", true
	case models.StatusPending:
		return "Membership under review",
			greeting + ", your membership is being reviewed again. We will let you know once a decision is made.", true
	}
	return "", "", false
}
