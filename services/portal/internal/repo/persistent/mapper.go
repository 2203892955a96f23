package persistent

import (
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/model"
)

func ToProfileEntity(m *model.ProfileRow) *entity.Profile {
	if m == nil {
		return nil
	}

	return &entity.Profile{
		ID:        m.ID,
		Email:     m.Email,
		FullName:  m.FullName,
		Phone:     m.Phone,
		Role:      entity.UserRole(m.Role),
		Status:    entity.ProfileStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToProgressEntity(m *model.MemberProgressModel) *entity.MemberProgress {
	if m == nil {
		return nil
	}

	return &entity.MemberProgress{
		ID:             m.ID,
		UserID:         m.UserID,
		ServiceHours:   m.ServiceHours,
		EventsAttended: m.EventsAttended,
		BadgesEarned:   m.BadgesEarned,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func ToProgressModel(e *entity.MemberProgress) *model.MemberProgressModel {
	if e == nil {
		return nil
	}

	return &model.MemberProgressModel{
		ID:             e.ID,
		UserID:         e.UserID,
		ServiceHours:   e.ServiceHours,
		EventsAttended: e.EventsAttended,
		BadgesEarned:   e.BadgesEarned,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func ToNotificationEntity(m *model.MemberNotificationModel) *entity.MemberNotification {
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

func ToNotificationModel(e *entity.MemberNotification) *model.MemberNotificationModel {
	if e == nil {
		return nil
	}

	return &model.MemberNotificationModel{
		ID:        e.ID,
		UserID:    e.UserID,
		Title:     e.Title,
		Message:   e.Message,
		IsRead:    e.IsRead,
		CreatedAt: e.CreatedAt,
	}
}

func ToRegistrationEntity(m *model.RegistrationModel) *entity.Registration {
	if m == nil {
		return nil
	}

	return &entity.Registration{
		ID:                   m.ID,
		RegistrationNumber:   deref(m.RegistrationNumber),
		Section:              m.Section,
		Name:                 m.Name,
		FatherName:           m.FatherName,
		MotherName:           m.MotherName,
		DateOfBirth:          m.DateOfBirth,
		BloodGroup:           m.BloodGroup,
		MobileNo:             m.MobileNo,
		Email:                m.Email,
		CommunicationAddress: m.CommunicationAddress,
		PermanentAddress:     m.PermanentAddress,
		AlternateContact:     deref(m.AlternateContact),
		SchoolCollege:        deref(m.SchoolCollege),
		CreatedAt:            m.CreatedAt,
	}
}

func ToRegistrationModel(e *entity.Registration) *model.RegistrationModel {
	if e == nil {
		return nil
	}

	return &model.RegistrationModel{
		ID:                   e.ID,
		RegistrationNumber:   optional(e.RegistrationNumber),
		Section:              e.Section,
		Name:                 e.Name,
		FatherName:           e.FatherName,
		MotherName:           e.MotherName,
		DateOfBirth:          e.DateOfBirth,
		BloodGroup:           e.BloodGroup,
		MobileNo:             e.MobileNo,
		Email:                e.Email,
		CommunicationAddress: e.CommunicationAddress,
		PermanentAddress:     e.PermanentAddress,
		AlternateContact:     optional(e.AlternateContact),
		SchoolCollege:        optional(e.SchoolCollege),
		CreatedAt:            e.CreatedAt,
	}
}

func ToInquiryEntity(m *model.ContactInquiryModel) *entity.ContactInquiry {
	if m == nil {
		return nil
	}

	return &entity.ContactInquiry{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     deref(m.Phone),
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}

func ToInquiryModel(e *entity.ContactInquiry) *model.ContactInquiryModel {
	if e == nil {
		return nil
	}

	return &model.ContactInquiryModel{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		Phone:     optional(e.Phone),
		Message:   e.Message,
		CreatedAt: e.CreatedAt,
	}
}

// optional stores empty strings as NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
