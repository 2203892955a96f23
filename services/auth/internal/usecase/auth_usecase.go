package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"premier-open-group/pkg/jwt"
	"premier-open-group/pkg/logger"
	"premier-open-group/services/auth/internal/entity"
	"premier-open-group/services/auth/internal/repo/cache"
	"premier-open-group/services/auth/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthUseCase interface {
	Register(ctx context.Context, email, password, fullName string) (*entity.AuthResult, error)
	Login(ctx context.Context, email, password string) (*entity.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (*entity.User, *entity.Profile, error)
}

type authUseCase struct {
	userRepo   persistent.UserRepository
	tokens     cache.TokenStore
	jwtService *jwt.Service
	logger     *logger.Logger
}

func NewAuthUseCase(
	userRepo persistent.UserRepository,
	tokens cache.TokenStore,
	jwtService *jwt.Service,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo:   userRepo,
		tokens:     tokens,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (uc *authUseCase) Register(ctx context.Context, email, password, fullName string) (*entity.AuthResult, error) {
	email = normalizeEmail(email)

	_, err := uc.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, persistent.ErrNotFound) {
		uc.logger.Error("Failed to look up user %s: %v", email, err)
		return nil, fmt.Errorf("failed to process registration")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, fmt.Errorf("failed to process registration")
	}

	user := &entity.User{
		Email:    email,
		Password: string(hashedPassword),
		FullName: strings.TrimSpace(fullName),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		uc.logger.Error("Failed to create user: %v", err)
		return nil, fmt.Errorf("failed to create user")
	}

	uc.logger.Info("Registered user %s", user.ID)
	return uc.signIn(ctx, user)
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*entity.AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, persistent.ErrNotFound) {
			uc.logger.Error("Failed to look up user: %v", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return uc.signIn(ctx, user)
}

func (uc *authUseCase) Refresh(ctx context.Context, refreshToken string) (*entity.AuthResult, error) {
	claims, err := uc.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := uc.tokens.IsRevoked(ctx, refreshToken)
	if err != nil {
		uc.logger.Error("Failed to check token revocation: %v", err)
		return nil, fmt.Errorf("failed to refresh session")
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// The old refresh token is single use.
	if err := uc.tokens.Revoke(ctx, refreshToken, remaining(claims)); err != nil {
		uc.logger.Warn("Failed to revoke rotated refresh token for %s: %v", user.ID, err)
	}

	return uc.signIn(ctx, user)
}

func (uc *authUseCase) Logout(ctx context.Context, refreshToken string) error {
	claims, err := uc.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		// Nothing to revoke; the token is already unusable.
		return nil
	}
	if err := uc.tokens.Revoke(ctx, refreshToken, remaining(claims)); err != nil {
		uc.logger.Error("Failed to revoke refresh token for %s: %v", claims.UserID, err)
		return fmt.Errorf("failed to sign out")
	}
	uc.logger.Info("User %s signed out", claims.UserID)
	return nil
}

func (uc *authUseCase) Me(ctx context.Context, userID string) (*entity.User, *entity.Profile, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	profile, err := uc.userRepo.EnsureProfile(ctx, user.ID, user.FullName)
	if err != nil {
		uc.logger.Error("Failed to load profile for %s: %v", user.ID, err)
		return nil, nil, fmt.Errorf("failed to load profile")
	}

	user.Password = ""
	return user, profile, nil
}

// signIn upserts the profile row and issues a fresh token pair.
func (uc *authUseCase) signIn(ctx context.Context, user *entity.User) (*entity.AuthResult, error) {
	profile, err := uc.userRepo.EnsureProfile(ctx, user.ID, user.FullName)
	if err != nil {
		uc.logger.Error("Failed to upsert profile for %s: %v", user.ID, err)
		return nil, fmt.Errorf("failed to create profile")
	}

	accessToken, err := uc.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, fmt.Errorf("failed to generate token")
	}
	refreshToken, err := uc.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		uc.logger.Error("Failed to generate refresh token: %v", err)
		return nil, fmt.Errorf("failed to generate token")
	}

	user.Password = ""
	return &entity.AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(uc.jwtService.AccessTTL().Seconds()),
		User:         user,
		Profile:      profile,
	}, nil
}

func remaining(claims *jwt.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return time.Until(claims.ExpiresAt.Time)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
