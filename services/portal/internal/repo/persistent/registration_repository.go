package persistent

import (
	"context"

	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/model"

	"gorm.io/gorm"
)

type RegistrationRepository interface {
	CreateRegistration(ctx context.Context, registration *entity.Registration) error
	ListRegistrations(ctx context.Context) ([]*entity.Registration, error)
	DeleteRegistration(ctx context.Context, id string) error

	CreateInquiry(ctx context.Context, inquiry *entity.ContactInquiry) error
	ListInquiries(ctx context.Context) ([]*entity.ContactInquiry, error)
	DeleteInquiry(ctx context.Context, id string) error
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) CreateRegistration(ctx context.Context, registration *entity.Registration) error {
	registrationModel := ToRegistrationModel(registration)
	if err := r.db.WithContext(ctx).Create(registrationModel).Error; err != nil {
		return err
	}
	*registration = *ToRegistrationEntity(registrationModel)
	return nil
}

func (r *registrationRepository) ListRegistrations(ctx context.Context) ([]*entity.Registration, error) {
	var models []model.RegistrationModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*entity.Registration, len(models))
	for i := range models {
		out[i] = ToRegistrationEntity(&models[i])
	}
	return out, nil
}

func (r *registrationRepository) DeleteRegistration(ctx context.Context, id string) error {
	return deleteByID(r.db.WithContext(ctx), &model.RegistrationModel{}, id)
}

func (r *registrationRepository) CreateInquiry(ctx context.Context, inquiry *entity.ContactInquiry) error {
	inquiryModel := ToInquiryModel(inquiry)
	if err := r.db.WithContext(ctx).Create(inquiryModel).Error; err != nil {
		return err
	}
	*inquiry = *ToInquiryEntity(inquiryModel)
	return nil
}

func (r *registrationRepository) ListInquiries(ctx context.Context) ([]*entity.ContactInquiry, error) {
	var models []model.ContactInquiryModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*entity.ContactInquiry, len(models))
	for i := range models {
		out[i] = ToInquiryEntity(&models[i])
	}
	return out, nil
}

func (r *registrationRepository) DeleteInquiry(ctx context.Context, id string) error {
	return deleteByID(r.db.WithContext(ctx), &model.ContactInquiryModel{}, id)
}

func deleteByID(db *gorm.DB, value interface{}, id string) error {
	result := db.Where("id = ?", id).Delete(value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
