package usecase

import (
	"context"
	"io"

	"premier-open-group/pkg/queue"
	"premier-open-group/services/portal/internal/content"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/repo/persistent"

	"github.com/stretchr/testify/mock"
)

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) List(ctx context.Context, schema *content.Schema, filter content.Filter) ([]content.Record, error) {
	args := m.Called(ctx, schema, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]content.Record), args.Error(1)
}

func (m *MockContentRepository) Get(ctx context.Context, schema *content.Schema, id string) (content.Record, error) {
	args := m.Called(ctx, schema, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(content.Record), args.Error(1)
}

func (m *MockContentRepository) GetBy(ctx context.Context, schema *content.Schema, column, value string) (content.Record, error) {
	args := m.Called(ctx, schema, column, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(content.Record), args.Error(1)
}

func (m *MockContentRepository) Create(ctx context.Context, schema *content.Schema, record content.Record) (content.Record, error) {
	args := m.Called(ctx, schema, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(content.Record), args.Error(1)
}

func (m *MockContentRepository) CreateBatch(ctx context.Context, schema *content.Schema, records []content.Record) ([]content.Record, error) {
	args := m.Called(ctx, schema, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]content.Record), args.Error(1)
}

func (m *MockContentRepository) Update(ctx context.Context, schema *content.Schema, id string, changes content.Record) (content.Record, error) {
	args := m.Called(ctx, schema, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(content.Record), args.Error(1)
}

func (m *MockContentRepository) Delete(ctx context.Context, schema *content.Schema, id string) error {
	args := m.Called(ctx, schema, id)
	return args.Error(0)
}

var _ persistent.ContentRepository = (*MockContentRepository)(nil)

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context) ([]*entity.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Profile), args.Error(1)
}

func (m *MockProfileRepository) UpdateStatus(ctx context.Context, id string, status entity.ProfileStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateRole(ctx context.Context, id string, role entity.UserRole) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateFields(ctx context.Context, id, fullName, phone string) error {
	args := m.Called(ctx, id, fullName, phone)
	return args.Error(0)
}

func (m *MockProfileRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ persistent.ProfileRepository = (*MockProfileRepository)(nil)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishMemberStatusChanged(ctx context.Context, task queue.MemberStatusTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) GetProgress(ctx context.Context, userID string) (*entity.MemberProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MemberProgress), args.Error(1)
}

func (m *MockMemberRepository) ListProgress(ctx context.Context) ([]*entity.MemberProgress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.MemberProgress), args.Error(1)
}

func (m *MockMemberRepository) UpsertProgress(ctx context.Context, progress *entity.MemberProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockMemberRepository) CreateNotification(ctx context.Context, notification *entity.MemberNotification) error {
	args := m.Called(ctx, notification)
	if notification.ID == "" {
		notification.ID = "notification-id"
	}
	return args.Error(0)
}

func (m *MockMemberRepository) ListNotifications(ctx context.Context, userID string) ([]*entity.MemberNotification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.MemberNotification), args.Error(1)
}

func (m *MockMemberRepository) MarkNotificationRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

var _ persistent.MemberRepository = (*MockMemberRepository)(nil)

type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) CreateRegistration(ctx context.Context, registration *entity.Registration) error {
	args := m.Called(ctx, registration)
	return args.Error(0)
}

func (m *MockRegistrationRepository) ListRegistrations(ctx context.Context) ([]*entity.Registration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) DeleteRegistration(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRegistrationRepository) CreateInquiry(ctx context.Context, inquiry *entity.ContactInquiry) error {
	args := m.Called(ctx, inquiry)
	return args.Error(0)
}

func (m *MockRegistrationRepository) ListInquiries(ctx context.Context) ([]*entity.ContactInquiry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ContactInquiry), args.Error(1)
}

func (m *MockRegistrationRepository) DeleteInquiry(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ persistent.RegistrationRepository = (*MockRegistrationRepository)(nil)
