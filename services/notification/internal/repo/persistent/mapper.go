package persistent

import (
	"premier-open-group/services/notification/internal/entity"
	"premier-open-group/services/notification/internal/model"
)

func ToNotificationEntity(m *model.NotificationModel) *entity.MemberNotification {
	if m == nil {
		return nil
	}

	return &entity.MemberNotification{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

func ToNotificationModel(e *entity.MemberNotification) *model.NotificationModel {
	if e == nil {
		return nil
	}

	return &model.NotificationModel{
		ID:        e.ID,
		UserID:    e.UserID,
		Title:     e.Title,
		Message:   e.Message,
		IsRead:    e.IsRead,
		CreatedAt: e.CreatedAt,
	}
}
