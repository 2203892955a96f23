package persistent

import (
	"context"
	"time"

	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository interface {
	GetProgress(ctx context.Context, userID string) (*entity.MemberProgress, error)
	ListProgress(ctx context.Context) ([]*entity.MemberProgress, error)
	// UpsertProgress writes the counters for progress.UserID, creating the
	// row on first use.
	UpsertProgress(ctx context.Context, progress *entity.MemberProgress) error

	CreateNotification(ctx context.Context, notification *entity.MemberNotification) error
	ListNotifications(ctx context.Context, userID string) ([]*entity.MemberNotification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) GetProgress(ctx context.Context, userID string) (*entity.MemberProgress, error) {
	var progressModel model.MemberProgressModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&progressModel).Error; err != nil {
		return nil, translate(err)
	}
	return ToProgressEntity(&progressModel), nil
}

func (r *memberRepository) ListProgress(ctx context.Context) ([]*entity.MemberProgress, error) {
	var models []model.MemberProgressModel
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*entity.MemberProgress, len(models))
	for i := range models {
		out[i] = ToProgressEntity(&models[i])
	}
	return out, nil
}

func (r *memberRepository) UpsertProgress(ctx context.Context, progress *entity.MemberProgress) error {
	now := time.Now().UTC()
	progressModel := ToProgressModel(progress)
	if progressModel.ID == "" {
		progressModel.ID = uuid.New().String()
	}
	progressModel.CreatedAt = now
	progressModel.UpdatedAt = now

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"service_hours", "events_attended", "badges_earned", "updated_at"}),
		}).
		Create(progressModel).Error
	if err != nil {
		return err
	}

	stored, err := r.GetProgress(ctx, progress.UserID)
	if err != nil {
		return err
	}
	*progress = *stored
	return nil
}

func (r *memberRepository) CreateNotification(ctx context.Context, notification *entity.MemberNotification) error {
	notificationModel := ToNotificationModel(notification)
	if err := r.db.WithContext(ctx).Create(notificationModel).Error; err != nil {
		return err
	}
	*notification = *ToNotificationEntity(notificationModel)
	return nil
}

func (r *memberRepository) ListNotifications(ctx context.Context, userID string) ([]*entity.MemberNotification, error) {
	var models []model.MemberNotificationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entity.MemberNotification, len(models))
	for i := range models {
		out[i] = ToNotificationEntity(&models[i])
	}
	return out, nil
}

// MarkNotificationRead only touches a notification owned by userID.
func (r *memberRepository) MarkNotificationRead(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.MemberNotificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
