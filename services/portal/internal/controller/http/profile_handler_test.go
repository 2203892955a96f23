package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func profileRouter(uc *MockProfileUseCase) http.Handler {
	handler := NewProfileHandler(uc, logger.New())
	r := setupTestRouter()

	me := r.Group("/me", withSession(memberSession()))
	me.GET("/profile", handler.GetMe)
	me.PUT("/profile", handler.UpdateMe)

	admin := r.Group("/admin", withSession(adminSession()))
	admin.GET("/users", handler.ListUsers)
	admin.PUT("/users/:id/status", handler.SetStatus)
	admin.PUT("/users/:id/role", handler.SetRole)
	admin.DELETE("/users/:id", handler.DeleteUser)
	return r
}

func TestProfileGetMe(t *testing.T) {
	uc := new(MockProfileUseCase)
	router := profileRouter(uc)

	uc.On("GetOwn", "member-1").Return(&entity.Profile{ID: "member-1", FullName: "Young Scout", Status: entity.StatusApproved}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me/profile", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var profile entity.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "Young Scout", profile.FullName)
}

func TestProfileUpdateMe(t *testing.T) {
	uc := new(MockProfileUseCase)
	router := profileRouter(uc)

	uc.On("UpdateOwn", "member-1", "New Name", "9876543210").
		Return(&entity.Profile{ID: "member-1", FullName: "New Name", Phone: "9876543210"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPut, "/me/profile", UpdateProfileRequest{FullName: "New Name", Phone: "9876543210"}))

	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestProfileListUsers(t *testing.T) {
	uc := new(MockProfileUseCase)
	router := profileRouter(uc)

	uc.On("ListUsers").Return(&entity.UserGroups{
		Pending:  []*entity.Profile{{ID: "u-2"}},
		Approved: []*entity.Profile{{ID: "u-1"}},
		Rejected: []*entity.Profile{},
	}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var groups entity.UserGroups
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groups))
	assert.Len(t, groups.Pending, 1)
	assert.Len(t, groups.Approved, 1)
}

func TestProfileSetStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		err        error
		wantStatus int
	}{
		{name: "approve", body: StatusRequest{Status: "approved"}, wantStatus: http.StatusOK},
		{name: "missing status", body: map[string]string{}, wantStatus: http.StatusBadRequest},
		{name: "invalid status", body: StatusRequest{Status: "banned"}, err: &usecase.ValidationError{Fields: map[string]string{"status": "invalid status"}}, wantStatus: http.StatusBadRequest},
		{name: "admin target", body: StatusRequest{Status: "rejected"}, err: fmt.Errorf("%w: administrators cannot be rejected", usecase.ErrForbidden), wantStatus: http.StatusForbidden},
		{name: "unknown user", body: StatusRequest{Status: "approved"}, err: usecase.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockProfileUseCase)
			router := profileRouter(uc)

			if tt.err != nil {
				uc.On("SetStatus", "admin-1", "u-2", mock.Anything).Return(nil, tt.err)
			} else {
				uc.On("SetStatus", "admin-1", "u-2", "approved").Return(&entity.Profile{ID: "u-2", Status: entity.StatusApproved}, nil)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, jsonRequest(http.MethodPut, "/admin/users/u-2/status", tt.body))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestProfileSetRole_SelfDemotion(t *testing.T) {
	uc := new(MockProfileUseCase)
	router := profileRouter(uc)

	uc.On("SetRole", "admin-1", "admin-1", "member").
		Return(nil, fmt.Errorf("%w: administrators cannot demote themselves", usecase.ErrForbidden))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPut, "/admin/users/admin-1/role", RoleRequest{Role: "member"}))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "demote themselves")
}

func TestProfileDeleteUser(t *testing.T) {
	uc := new(MockProfileUseCase)
	router := profileRouter(uc)

	uc.On("DeleteProfile", "admin-1", "u-3").Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/users/u-3", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}
