package persistent

import (
	"context"
	"errors"

	"premier-open-group/services/auth/internal/entity"
	"premier-open-group/services/auth/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// EnsureProfile inserts a member/pending profile for userID unless one
	// exists, then returns the stored row.
	EnsureProfile(ctx context.Context, userID, fullName string) (*entity.Profile, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	userModel := ToUserModel(user)
	if userModel.ID == "" {
		userModel.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(userModel).Error; err != nil {
		return err
	}
	*user = *ToUserEntity(userModel)
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&userModel).Error; err != nil {
		return nil, translate(err)
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error; err != nil {
		return nil, translate(err)
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) EnsureProfile(ctx context.Context, userID, fullName string) (*entity.Profile, error) {
	profileModel := &model.ProfileModel{
		ID:       userID,
		FullName: fullName,
		Role:     string(entity.RoleMember),
		Status:   string(entity.StatusPending),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(profileModel).Error
	if err != nil {
		return nil, err
	}

	var stored model.ProfileModel
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&stored).Error; err != nil {
		return nil, translate(err)
	}
	return ToProfileEntity(&stored), nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
