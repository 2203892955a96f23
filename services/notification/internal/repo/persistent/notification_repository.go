package persistent

import (
	"context"
	"errors"

	"premier-open-group/services/notification/internal/entity"
	"premier-open-group/services/notification/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.MemberNotification) error
	// FullName returns "" when the profile has no name or no longer exists.
	FullName(ctx context.Context, userID string) (string, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.MemberNotification) error {
	notificationModel := ToNotificationModel(notification)
	if err := r.db.WithContext(ctx).Create(notificationModel).Error; err != nil {
		return err
	}
	*notification = *ToNotificationEntity(notificationModel)
	return nil
}

func (r *notificationRepository) FullName(ctx context.Context, userID string) (string, error) {
	var profile model.ProfileNameModel
	err := r.db.WithContext(ctx).
		Select("id", "full_name").
		Where("id = ?", userID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return profile.FullName, nil
}
