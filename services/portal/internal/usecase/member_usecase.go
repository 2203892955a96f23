package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/content"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/repo/persistent"
)

const dashboardNewsLimit = 5

type ProgressInput struct {
	ServiceHours   int `json:"service_hours"`
	EventsAttended int `json:"events_attended"`
	BadgesEarned   int `json:"badges_earned"`
}

type NotificationInput struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Dashboard is everything the member home page shows.
type Dashboard struct {
	Profile       *entity.Profile              `json:"profile"`
	Progress      *entity.MemberProgress       `json:"progress"`
	Notifications []*entity.MemberNotification `json:"notifications"`
	Unread        int                          `json:"unread"`
	News          []content.Record             `json:"news"`
}

type MemberUseCase interface {
	GetProgress(ctx context.Context, userID string) (*entity.MemberProgress, error)
	ListProgress(ctx context.Context) ([]*entity.MemberProgress, error)
	SetProgress(ctx context.Context, userID string, input ProgressInput) (*entity.MemberProgress, error)

	SendNotification(ctx context.Context, userID string, input NotificationInput) (*entity.MemberNotification, error)
	ListNotifications(ctx context.Context, userID string) ([]*entity.MemberNotification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error

	Dashboard(ctx context.Context, userID string) (*Dashboard, error)
}

type memberUseCase struct {
	repo     persistent.MemberRepository
	profiles ProfileUseCase
	content  ContentUseCase
	logger   *logger.Logger
}

func NewMemberUseCase(repo persistent.MemberRepository, profiles ProfileUseCase, contentUC ContentUseCase, log *logger.Logger) MemberUseCase {
	return &memberUseCase{repo: repo, profiles: profiles, content: contentUC, logger: log}
}

// GetProgress returns zeroed counters for a member without a progress row.
func (uc *memberUseCase) GetProgress(ctx context.Context, userID string) (*entity.MemberProgress, error) {
	progress, err := uc.repo.GetProgress(ctx, userID)
	if errors.Is(err, persistent.ErrNotFound) {
		return &entity.MemberProgress{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return progress, nil
}

func (uc *memberUseCase) ListProgress(ctx context.Context) ([]*entity.MemberProgress, error) {
	return uc.repo.ListProgress(ctx)
}

func (uc *memberUseCase) SetProgress(ctx context.Context, userID string, input ProgressInput) (*entity.MemberProgress, error) {
	fields := map[string]string{}
	if input.ServiceHours < 0 {
		fields["service_hours"] = "must not be negative"
	}
	if input.EventsAttended < 0 {
		fields["events_attended"] = "must not be negative"
	}
	if input.BadgesEarned < 0 {
		fields["badges_earned"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := uc.profiles.GetOwn(ctx, userID); err != nil {
		return nil, err
	}

	progress := &entity.MemberProgress{
		UserID:         userID,
		ServiceHours:   input.ServiceHours,
		EventsAttended: input.EventsAttended,
		BadgesEarned:   input.BadgesEarned,
	}
	if err := uc.repo.UpsertProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return progress, nil
}

func (uc *memberUseCase) SendNotification(ctx context.Context, userID string, input NotificationInput) (*entity.MemberNotification, error) {
	title := strings.TrimSpace(input.Title)
	message := strings.TrimSpace(input.Message)

	fields := map[string]string{}
	if title == "" {
		fields["title"] = "is required"
	} else if len(title) > 200 {
		fields["title"] = "must be at most 200 characters"
	}
	if message == "" {
		fields["message"] = "is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := uc.profiles.GetOwn(ctx, userID); err != nil {
		return nil, err
	}

	notification := &entity.MemberNotification{UserID: userID, Title: title, Message: message}
	if err := uc.repo.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	uc.logger.Info("Sent notification %s to %s", notification.ID, userID)
	return notification, nil
}

func (uc *memberUseCase) ListNotifications(ctx context.Context, userID string) ([]*entity.MemberNotification, error) {
	return uc.repo.ListNotifications(ctx, userID)
}

func (uc *memberUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := uc.repo.MarkNotificationRead(ctx, notificationID, userID); err != nil {
		return translateRepoError(err)
	}
	return nil
}

func (uc *memberUseCase) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	profile, err := uc.profiles.GetOwn(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	progress, err := uc.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	notifications, err := uc.ListNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	news, err := uc.content.List(ctx, string(content.Posts), content.Filter{PublishedOnly: true, Limit: dashboardNewsLimit})
	if err != nil {
		return nil, err
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}
	return &Dashboard{
		Profile:       profile,
		Progress:      progress,
		Notifications: notifications,
		Unread:        unread,
		News:          news,
	}, nil
}
