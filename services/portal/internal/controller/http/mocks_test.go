package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/authclient"
	"premier-open-group/pkg/middleware"
	"premier-open-group/pkg/session"
	"premier-open-group/services/portal/internal/content"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type MockContentUseCase struct {
	mock.Mock
}

func (m *MockContentUseCase) List(ctx context.Context, contentType string, filter content.Filter) ([]content.Record, error) {
	args := m.Called(contentType, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]content.Record), args.Error(1)
}

func (m *MockContentUseCase) Get(ctx context.Context, contentType, id string) (content.Record, error) {
	args := m.Called(contentType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(content.Record), args.Error(1)
}

func (m *MockContentUseCase) GetPostBySlug(ctx context.Context, slug string) (content.Record, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(content.Record), args.Error(1)
}

func (m *MockContentUseCase) Create(ctx context.Context, contentType, authorID string, input map[string]interface{}) (content.Record, error) {
	args := m.Called(contentType, authorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(content.Record), args.Error(1)
}

func (m *MockContentUseCase) Update(ctx context.Context, contentType, id string, input map[string]interface{}) (content.Record, error) {
	args := m.Called(contentType, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(content.Record), args.Error(1)
}

func (m *MockContentUseCase) Delete(ctx context.Context, contentType, id string) error {
	return m.Called(contentType, id).Error(0)
}

func (m *MockContentUseCase) HomeFeed(ctx context.Context) (*usecase.HomeFeed, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.HomeFeed), args.Error(1)
}

func (m *MockContentUseCase) AboutGroups(ctx context.Context) ([]usecase.MemberGroup, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usecase.MemberGroup), args.Error(1)
}

type MockUploadUseCase struct {
	mock.Mock
}

func (m *MockUploadUseCase) UploadBatch(ctx context.Context, userID, bucket string, files []usecase.ImageFile) (*entity.BatchResult, error) {
	args := m.Called(userID, bucket, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.BatchResult), args.Error(1)
}

func (m *MockUploadUseCase) CommitGalleryBatch(ctx context.Context, items []entity.GalleryItem, settings *entity.GallerySettings) ([]content.Record, error) {
	args := m.Called(items, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]content.Record), args.Error(1)
}

type MockProfileUseCase struct {
	mock.Mock
}

func (m *MockProfileUseCase) FetchProfile(ctx context.Context, userID string) (*session.Profile, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Profile), args.Error(1)
}

func (m *MockProfileUseCase) GetOwn(ctx context.Context, userID string) (*entity.Profile, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileUseCase) UpdateOwn(ctx context.Context, userID, fullName, phone string) (*entity.Profile, error) {
	args := m.Called(userID, fullName, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileUseCase) ListUsers(ctx context.Context) (*entity.UserGroups, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserGroups), args.Error(1)
}

func (m *MockProfileUseCase) SetStatus(ctx context.Context, adminID, userID, status string) (*entity.Profile, error) {
	args := m.Called(adminID, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileUseCase) SetRole(ctx context.Context, adminID, userID, role string) (*entity.Profile, error) {
	args := m.Called(adminID, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileUseCase) DeleteProfile(ctx context.Context, adminID, userID string) error {
	return m.Called(adminID, userID).Error(0)
}

type MockMemberUseCase struct {
	mock.Mock
}

func (m *MockMemberUseCase) GetProgress(ctx context.Context, userID string) (*entity.MemberProgress, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MemberProgress), args.Error(1)
}

func (m *MockMemberUseCase) ListProgress(ctx context.Context) ([]*entity.MemberProgress, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.MemberProgress), args.Error(1)
}

func (m *MockMemberUseCase) SetProgress(ctx context.Context, userID string, input usecase.ProgressInput) (*entity.MemberProgress, error) {
	args := m.Called(userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MemberProgress), args.Error(1)
}

func (m *MockMemberUseCase) SendNotification(ctx context.Context, userID string, input usecase.NotificationInput) (*entity.MemberNotification, error) {
	args := m.Called(userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MemberNotification), args.Error(1)
}

func (m *MockMemberUseCase) ListNotifications(ctx context.Context, userID string) ([]*entity.MemberNotification, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.MemberNotification), args.Error(1)
}

func (m *MockMemberUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	return m.Called(userID, notificationID).Error(0)
}

func (m *MockMemberUseCase) Dashboard(ctx context.Context, userID string) (*usecase.Dashboard, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Dashboard), args.Error(1)
}

type MockRegistrationUseCase struct {
	mock.Mock
}

func (m *MockRegistrationUseCase) Submit(ctx context.Context, registration *entity.Registration) error {
	return m.Called(registration).Error(0)
}

func (m *MockRegistrationUseCase) List(ctx context.Context) ([]*entity.Registration, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Registration), args.Error(1)
}

func (m *MockRegistrationUseCase) Delete(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockRegistrationUseCase) SubmitInquiry(ctx context.Context, inquiry *entity.ContactInquiry) error {
	return m.Called(inquiry).Error(0)
}

func (m *MockRegistrationUseCase) ListInquiries(ctx context.Context) ([]*entity.ContactInquiry, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ContactInquiry), args.Error(1)
}

func (m *MockRegistrationUseCase) DeleteInquiry(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*authclient.Tokens, error) {
	args := m.Called(email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authclient.Tokens), args.Error(1)
}

func (m *MockAuthenticator) Register(ctx context.Context, email, password, fullName string) (*authclient.Tokens, error) {
	args := m.Called(email, password, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authclient.Tokens), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(refreshToken).Error(0)
}

var (
	_ usecase.ContentUseCase      = (*MockContentUseCase)(nil)
	_ usecase.UploadUseCase       = (*MockUploadUseCase)(nil)
	_ usecase.ProfileUseCase      = (*MockProfileUseCase)(nil)
	_ usecase.MemberUseCase       = (*MockMemberUseCase)(nil)
	_ usecase.RegistrationUseCase = (*MockRegistrationUseCase)(nil)
	_ Authenticator               = (*MockAuthenticator)(nil)
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// withSession stands in for the gates: it stores sess the way they do.
func withSession(sess access.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.SessionKey, sess)
		if sess.Identity != nil {
			c.Set("user_id", sess.Identity.ID)
			c.Set("user_email", sess.Identity.Email)
			c.Set("user_role", string(sess.Role))
		}
		c.Next()
	}
}

func adminSession() access.Session {
	return access.Session{
		Identity: &access.Identity{ID: "admin-1", Email: "admin@example.com", FullName: "Group Admin"},
		Role:     access.RoleAdmin,
		Status:   access.StatusApproved,
	}
}

func memberSession() access.Session {
	return access.Session{
		Identity: &access.Identity{ID: "member-1", Email: "scout@example.com", FullName: "Young Scout"},
		Role:     access.RoleMember,
		Status:   access.StatusApproved,
	}
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}
