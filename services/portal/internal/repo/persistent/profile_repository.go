package persistent

import (
	"context"
	"errors"
	"time"

	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	List(ctx context.Context) ([]*entity.Profile, error)
	UpdateStatus(ctx context.Context, id string, status entity.ProfileStatus) error
	UpdateRole(ctx context.Context, id string, role entity.UserRole) error
	UpdateFields(ctx context.Context, id, fullName, phone string) error
	Delete(ctx context.Context, id string) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("profiles").
		Select("profiles.*, users.email AS email").
		Joins("LEFT JOIN users ON users.id = profiles.id")
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	var rows []model.ProfileRow
	if err := r.base(ctx).Where("profiles.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return ToProfileEntity(&rows[0]), nil
}

func (r *profileRepository) List(ctx context.Context) ([]*entity.Profile, error) {
	var rows []model.ProfileRow
	if err := r.base(ctx).Order("profiles.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	profiles := make([]*entity.Profile, len(rows))
	for i := range rows {
		profiles[i] = ToProfileEntity(&rows[i])
	}
	return profiles, nil
}

func (r *profileRepository) UpdateStatus(ctx context.Context, id string, status entity.ProfileStatus) error {
	return r.update(ctx, id, map[string]interface{}{"status": string(status)})
}

func (r *profileRepository) UpdateRole(ctx context.Context, id string, role entity.UserRole) error {
	return r.update(ctx, id, map[string]interface{}{"role": string(role)})
}

func (r *profileRepository) UpdateFields(ctx context.Context, id, fullName, phone string) error {
	return r.update(ctx, id, map[string]interface{}{"full_name": fullName, "phone": phone})
}

func (r *profileRepository) update(ctx context.Context, id string, changes map[string]interface{}) error {
	changes["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&model.ProfileModel{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ProfileModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
