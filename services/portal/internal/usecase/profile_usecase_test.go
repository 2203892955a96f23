package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/logger"
	"premier-open-group/pkg/queue"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/repo/cache"
	"premier-open-group/services/portal/internal/repo/persistent"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func redisProfileCache(t *testing.T) cache.ProfileCache {
	mr := miniredis.RunT(t)
	return cache.NewProfileCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
}

func TestProfileUseCase_FetchProfileMissingRow(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewProfileUseCase(repo, cache.NewProfileCache(nil, 0), nil, logger.New())
	ctx := context.Background()

	repo.On("GetByID", ctx, "user-1").Return(nil, persistent.ErrNotFound).Once()

	profile, err := uc.FetchProfile(ctx, "user-1")

	assert.NoError(t, err)
	assert.Nil(t, profile)
}

func TestProfileUseCase_FetchProfileError(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewProfileUseCase(repo, cache.NewProfileCache(nil, 0), nil, logger.New())
	ctx := context.Background()

	repo.On("GetByID", ctx, "user-1").Return(nil, errors.New("connection refused")).Once()

	_, err := uc.FetchProfile(ctx, "user-1")

	assert.Error(t, err)
}

func TestProfileUseCase_FetchProfileIsCached(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewProfileUseCase(repo, redisProfileCache(t), nil, logger.New())
	ctx := context.Background()

	repo.On("GetByID", ctx, "user-1").
		Return(&entity.Profile{ID: "user-1", Role: entity.RoleMember, Status: entity.StatusApproved}, nil).Once()

	for i := 0; i < 3; i++ {
		profile, err := uc.FetchProfile(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, access.StatusApproved, profile.Status)
		assert.Equal(t, access.RoleMember, profile.Role)
	}
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestProfileUseCase_SetStatusPublishesTask(t *testing.T) {
	repo := new(MockProfileRepository)
	publisher := new(MockPublisher)
	uc := NewProfileUseCase(repo, cache.NewProfileCache(nil, 0), publisher, logger.New())
	ctx := context.Background()

	repo.On("GetByID", ctx, "user-1").
		Return(&entity.Profile{ID: "user-1", Role: entity.RoleMember, Status: entity.StatusPending}, nil).Once()
	repo.On("UpdateStatus", ctx, "user-1", entity.StatusApproved).Return(nil).Once()
	publisher.On("PublishMemberStatusChanged", ctx, mock.MatchedBy(func(task queue.MemberStatusTask) bool {
		return task.Type == queue.StatusChangedType &&
			task.Change == queue.ChangeStatus &&
			task.UserID == "user-1" &&
			task.Status == "approved" &&
			task.ChangedBy == "admin-1"
	})).Return(nil).Once()

	profile, err := uc.SetStatus(ctx, "admin-1", "user-1", "approved")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, profile.Status)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProfileUseCase_SetStatusPublishFailureIsNotFatal(t *testing.T) {
	repo := new(MockProfileRepository)
	publisher := new(MockPublisher)
	uc := NewProfileUseCase(repo, cache.NewProfileCache(nil, 0), publisher, logger.New())
	ctx := context.Background()

	repo.On("GetByID", ctx, "user-1").
		Return(&entity.Profile{ID: "user-1", Role: entity.RoleMember, Status: entity.StatusPending}, nil).Once()
	repo.On("UpdateStatus", ctx, "user-1", entity.StatusRejected).Return(nil).Once()
	publisher.On("PublishMemberStatusChanged", ctx, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := uc.SetStatus(ctx, "admin-1", "user-1", "rejected")

	assert.NoError(t, err)
}

func TestProfileUseCase_SetStatusRules(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewProfileUseCase(repo, cache.NewProfileCache(nil, 0), nil, logger.New())
	ctx := context.Background()

	_, err := uc.SetStatus(ctx, "admin-1", "user-1", "banned")
	assert.ErrorIs(t, err, ErrValidation)

	repo.On("GetByID", ctx, "admin-2").
		Return(&entity.Profile{ID: "admin-2", Role: entity.RoleAdmin, Status: entity.StatusApproved}, nil)
	_, err = uc.SetStatus(ctx, "admin-1", "admin-2", "rejected")
	assert.ErrorIs(t, err, ErrForbidden)

	repo.On("GetByID", ctx, "ghost").Return(nil, persistent.ErrNotFound).Once()
	_, err = uc.SetStatus(ctx, "admin-1", "ghost", "approved")
	assert.ErrorIs(t, err, ErrNotFound)

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileUseCase_SetRole(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewProfileUseCase(repo, cache.NewProfileCache(nil, 0), nil, logger.New())
	ctx := context.Background()

	_, err := uc.SetRole(ctx, "admin-1", "admin-1", "member")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.SetRole(ctx, "admin-1", "user-1", "owner")
	assert.ErrorIs(t, err, ErrValidation)

	repo.On("GetByID", ctx, "user-1").
		Return(&entity.Profile{ID: "user-1", Role: entity.RoleMember, Status: entity.StatusApproved}, nil).Once()
	repo.On("UpdateRole", ctx, "user-1", entity.RoleAdmin).Return(nil).Once()

	profile, err := uc.SetRole(ctx, "admin-1", "user-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, profile.Role)
	repo.AssertExpectations(t)
}

func TestProfileUseCase_DeleteProfile(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewProfileUseCase(repo, cache.NewProfileCache(nil, 0), nil, logger.New())
	ctx := context.Background()

	repo.On("GetByID", ctx, "admin-2").Return(&entity.Profile{ID: "admin-2", Role: entity.RoleAdmin}, nil).Once()
	err := uc.DeleteProfile(ctx, "admin-1", "admin-2")
	assert.ErrorIs(t, err, ErrForbidden)

	repo.On("GetByID", ctx, "user-1").Return(&entity.Profile{ID: "user-1", Role: entity.RoleMember}, nil).Once()
	repo.On("Delete", ctx, "user-1").Return(nil).Once()
	assert.NoError(t, uc.DeleteProfile(ctx, "admin-1", "user-1"))

	repo.AssertNumberOfCalls(t, "Delete", 1)
}

func TestProfileUseCase_ListUsersGroupsByStatus(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewProfileUseCase(repo, cache.NewProfileCache(nil, 0), nil, logger.New())
	ctx := context.Background()

	repo.On("List", ctx).Return([]*entity.Profile{
		{ID: "a", Status: entity.StatusPending},
		{ID: "b", Status: entity.StatusApproved},
		{ID: "c", Status: entity.StatusRejected},
		{ID: "d", Status: ""},
	}, nil).Once()

	groups, err := uc.ListUsers(ctx)

	require.NoError(t, err)
	assert.Len(t, groups.Pending, 2)
	assert.Len(t, groups.Approved, 1)
	assert.Len(t, groups.Rejected, 1)
}

func TestProfileUseCase_UpdateOwn(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewProfileUseCase(repo, cache.NewProfileCache(nil, 0), nil, logger.New())
	ctx := context.Background()

	repo.On("UpdateFields", ctx, "user-1", "Asha Rao", "9876543210").Return(nil).Once()
	repo.On("GetByID", ctx, "user-1").Return(&entity.Profile{ID: "user-1", FullName: "Asha Rao", Phone: "9876543210"}, nil).Once()

	profile, err := uc.UpdateOwn(ctx, "user-1", "  Asha Rao ", " 9876543210")

	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", profile.FullName)
	repo.AssertExpectations(t)
}

// memoryProfiles is a stateful repository for end-to-end flows.
type memoryProfiles struct {
	mu   sync.Mutex
	rows map[string]entity.Profile
	// afterRead runs once, after the next GetByID has copied its row.
	afterRead func()
}

func (m *memoryProfiles) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	m.mu.Lock()
	p, ok := m.rows[id]
	hook := m.afterRead
	m.afterRead = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, persistent.ErrNotFound
	}
	return &p, nil
}

func (m *memoryProfiles) List(context.Context) ([]*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Profile
	for _, p := range m.rows {
		p := p
		out = append(out, &p)
	}
	return out, nil
}

func (m *memoryProfiles) mutate(id string, fn func(*entity.Profile)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return persistent.ErrNotFound
	}
	fn(&p)
	m.rows[id] = p
	return nil
}

func (m *memoryProfiles) UpdateStatus(_ context.Context, id string, status entity.ProfileStatus) error {
	return m.mutate(id, func(p *entity.Profile) { p.Status = status })
}

func (m *memoryProfiles) UpdateRole(_ context.Context, id string, role entity.UserRole) error {
	return m.mutate(id, func(p *entity.Profile) { p.Role = role })
}

func (m *memoryProfiles) UpdateFields(_ context.Context, id, fullName, phone string) error {
	return m.mutate(id, func(p *entity.Profile) { p.FullName, p.Phone = fullName, phone })
}

func (m *memoryProfiles) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func sessionFor(t *testing.T, uc ProfileUseCase, userID string) access.Session {
	profile, err := uc.FetchProfile(context.Background(), userID)
	require.NoError(t, err)
	s := access.Session{Identity: &access.Identity{ID: userID}, Role: access.RoleMember, Status: access.StatusPending}
	if profile != nil {
		s.Role, s.Status = profile.Role, profile.Status
	}
	return s
}

func TestApprovalUnlocksMemberArea(t *testing.T) {
	repo := &memoryProfiles{rows: map[string]entity.Profile{
		"user-1":  {ID: "user-1", Role: entity.RoleMember, Status: entity.StatusPending},
		"admin-1": {ID: "admin-1", Role: entity.RoleAdmin, Status: entity.StatusApproved},
	}}
	uc := NewProfileUseCase(repo, redisProfileCache(t), nil, logger.New())
	member := access.RequirementFor("/member")

	before := access.Decide(sessionFor(t, uc, "user-1"), member)
	assert.Equal(t, access.RedirectTo(access.PathPendingApproval), before)

	_, err := uc.SetStatus(context.Background(), "admin-1", "user-1", "approved")
	require.NoError(t, err)

	after := access.Decide(sessionFor(t, uc, "user-1"), member)
	assert.Equal(t, access.Decision{Kind: access.Allow}, after)

	admin := access.Decide(sessionFor(t, uc, "user-1"), access.RequirementFor("/admin"))
	assert.Equal(t, access.RedirectTo(access.PathMemberHome), admin)
}

func TestApprovalDuringGateLookupIsNotMasked(t *testing.T) {
	repo := &memoryProfiles{rows: map[string]entity.Profile{
		"user-1":  {ID: "user-1", Role: entity.RoleMember, Status: entity.StatusPending},
		"admin-1": {ID: "admin-1", Role: entity.RoleAdmin, Status: entity.StatusApproved},
	}}
	uc := NewProfileUseCase(repo, redisProfileCache(t), nil, logger.New())
	member := access.RequirementFor("/member")

	// The gate has read the pending row when the admin approves.
	repo.afterRead = func() {
		_, err := uc.SetStatus(context.Background(), "admin-1", "user-1", "approved")
		require.NoError(t, err)
	}
	before := access.Decide(sessionFor(t, uc, "user-1"), member)
	assert.Equal(t, access.RedirectTo(access.PathPendingApproval), before)

	after := access.Decide(sessionFor(t, uc, "user-1"), member)
	assert.Equal(t, access.Decision{Kind: access.Allow}, after)
}

func TestNewIdentityWithoutProfileIsPending(t *testing.T) {
	repo := &memoryProfiles{rows: map[string]entity.Profile{}}
	uc := NewProfileUseCase(repo, cache.NewProfileCache(nil, 0), nil, logger.New())

	decision := access.Decide(sessionFor(t, uc, "new-user"), access.RequirementFor("/member"))

	assert.Equal(t, access.RedirectTo(access.PathPendingApproval), decision)
}
