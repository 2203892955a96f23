package persistent

import (
	"premier-open-group/services/auth/internal/entity"
	"premier-open-group/services/auth/internal/model"
)

func ToUserEntity(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		Password:  m.Password,
		FullName:  m.FullName,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *model.UserModel {
	if e == nil {
		return nil
	}

	return &model.UserModel{
		ID:        e.ID,
		Email:     e.Email,
		Password:  e.Password,
		FullName:  e.FullName,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func ToProfileEntity(m *model.ProfileModel) *entity.Profile {
	if m == nil {
		return nil
	}

	return &entity.Profile{
		ID:        m.ID,
		FullName:  m.FullName,
		Phone:     m.Phone,
		Role:      entity.UserRole(m.Role),
		Status:    entity.ProfileStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
