package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/logger"
	"premier-open-group/pkg/queue"
	"premier-open-group/pkg/session"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/repo/cache"
	"premier-open-group/services/portal/internal/repo/persistent"
)

// StatusPublisher announces approval and role changes. pkg/queue.Client
// satisfies it.
type StatusPublisher interface {
	PublishMemberStatusChanged(ctx context.Context, task queue.MemberStatusTask) error
}

type ProfileUseCase interface {
	session.ProfileFetcher

	GetOwn(ctx context.Context, userID string) (*entity.Profile, error)
	UpdateOwn(ctx context.Context, userID, fullName, phone string) (*entity.Profile, error)

	ListUsers(ctx context.Context) (*entity.UserGroups, error)
	SetStatus(ctx context.Context, adminID, userID, status string) (*entity.Profile, error)
	SetRole(ctx context.Context, adminID, userID, role string) (*entity.Profile, error)
	DeleteProfile(ctx context.Context, adminID, userID string) error
}

type profileUseCase struct {
	repo      persistent.ProfileRepository
	cache     cache.ProfileCache
	publisher StatusPublisher
	logger    *logger.Logger
}

// NewProfileUseCase accepts a nil publisher, in which case status changes
// are not announced.
func NewProfileUseCase(repo persistent.ProfileRepository, profileCache cache.ProfileCache, publisher StatusPublisher, log *logger.Logger) ProfileUseCase {
	return &profileUseCase{repo: repo, cache: profileCache, publisher: publisher, logger: log}
}

// FetchProfile returns (nil, nil) for an identity without a profile row.
func (uc *profileUseCase) FetchProfile(ctx context.Context, userID string) (*session.Profile, error) {
	entry, profile, hit, err := uc.cache.Get(ctx, userID)
	if err != nil {
		uc.logger.Warn("Profile cache read failed for %s: %v", userID, err)
	}
	if !hit {
		profile, err = uc.repo.GetByID(ctx, userID)
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if err := uc.cache.Set(ctx, entry, profile); err != nil {
			uc.logger.Warn("Profile cache write failed for %s: %v", userID, err)
		}
	}

	return &session.Profile{
		ID:       profile.ID,
		FullName: profile.FullName,
		Phone:    profile.Phone,
		Role:     access.ParseRole(string(profile.Role)),
		Status:   access.ParseStatus(string(profile.Status)),
	}, nil
}

func (uc *profileUseCase) GetOwn(ctx context.Context, userID string) (*entity.Profile, error) {
	profile, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return profile, nil
}

func (uc *profileUseCase) UpdateOwn(ctx context.Context, userID, fullName, phone string) (*entity.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)

	fields := map[string]string{}
	if len(fullName) > 200 {
		fields["full_name"] = "must be at most 200 characters"
	}
	if len(phone) > 30 {
		fields["phone"] = "must be at most 30 characters"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := uc.repo.UpdateFields(ctx, userID, fullName, phone); err != nil {
		return nil, translateRepoError(err)
	}
	uc.forget(ctx, userID)
	return uc.GetOwn(ctx, userID)
}

func (uc *profileUseCase) ListUsers(ctx context.Context) (*entity.UserGroups, error) {
	profiles, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	groups := &entity.UserGroups{
		Pending:  []*entity.Profile{},
		Approved: []*entity.Profile{},
		Rejected: []*entity.Profile{},
	}
	for _, p := range profiles {
		switch p.Status {
		case entity.StatusApproved:
			groups.Approved = append(groups.Approved, p)
		case entity.StatusRejected:
			groups.Rejected = append(groups.Rejected, p)
		default:
			groups.Pending = append(groups.Pending, p)
		}
	}
	return groups, nil
}

func (uc *profileUseCase) SetStatus(ctx context.Context, adminID, userID, status string) (*entity.Profile, error) {
	next := access.Status(status)
	if !next.Valid() {
		return nil, invalid("status", "must be one of pending, approved, rejected")
	}

	current, err := uc.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.Role == entity.RoleAdmin && next == access.StatusRejected {
		return nil, fmt.Errorf("%w: administrators cannot be rejected", ErrForbidden)
	}

	if err := uc.repo.UpdateStatus(ctx, userID, entity.ProfileStatus(next)); err != nil {
		return nil, translateRepoError(err)
	}
	uc.forget(ctx, userID)
	uc.logger.Info("Admin %s set status of %s to %s", adminID, userID, next)

	current.Status = entity.ProfileStatus(next)
	uc.announce(ctx, adminID, queue.ChangeStatus, current)
	return current, nil
}

func (uc *profileUseCase) SetRole(ctx context.Context, adminID, userID, role string) (*entity.Profile, error) {
	next := access.Role(role)
	if !next.Valid() {
		return nil, invalid("role", "must be admin or member")
	}
	if adminID == userID && next != access.RoleAdmin {
		return nil, fmt.Errorf("%w: administrators cannot demote themselves", ErrForbidden)
	}

	current, err := uc.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateRole(ctx, userID, entity.UserRole(next)); err != nil {
		return nil, translateRepoError(err)
	}
	uc.forget(ctx, userID)
	uc.logger.Info("Admin %s set role of %s to %s", adminID, userID, next)

	current.Role = entity.UserRole(next)
	uc.announce(ctx, adminID, queue.ChangeRole, current)
	return current, nil
}

func (uc *profileUseCase) DeleteProfile(ctx context.Context, adminID, userID string) error {
	current, err := uc.GetOwn(ctx, userID)
	if err != nil {
		return err
	}
	if current.Role == entity.RoleAdmin {
		return fmt.Errorf("%w: administrators cannot be deleted", ErrForbidden)
	}

	if err := uc.repo.Delete(ctx, userID); err != nil {
		return translateRepoError(err)
	}
	uc.forget(ctx, userID)
	uc.logger.Info("Admin %s deleted profile %s", adminID, userID)
	return nil
}

func (uc *profileUseCase) forget(ctx context.Context, userID string) {
	if err := uc.cache.Invalidate(ctx, userID); err != nil {
		uc.logger.Error("Failed to invalidate profile cache for %s: %v", userID, err)
	}
}

// announce is best effort; the change is already stored.
func (uc *profileUseCase) announce(ctx context.Context, adminID, change string, profile *entity.Profile) {
	if uc.publisher == nil {
		return
	}
	task := queue.MemberStatusTask{
		Type:      queue.StatusChangedType,
		Change:    change,
		UserID:    profile.ID,
		Status:    string(profile.Status),
		Role:      string(profile.Role),
		ChangedBy: adminID,
		Priority:  5,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.publisher.PublishMemberStatusChanged(ctx, task); err != nil {
		uc.logger.Error("Failed to publish status change for %s: %v", profile.ID, err)
	}
}
