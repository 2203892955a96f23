package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func registrationRouter(uc *MockRegistrationUseCase) http.Handler {
	handler := NewRegistrationHandler(uc, logger.New())
	r := setupTestRouter()
	r.POST("/registrations", handler.Submit)
	r.POST("/contact", handler.SubmitInquiry)

	admin := r.Group("/admin", withSession(adminSession()))
	admin.GET("/registrations", handler.List)
	admin.DELETE("/registrations/:id", handler.Delete)
	admin.GET("/inquiries", handler.ListInquiries)
	admin.DELETE("/inquiries/:id", handler.DeleteInquiry)
	return r
}

func TestRegistrationSubmit_IgnoresClientID(t *testing.T) {
	uc := new(MockRegistrationUseCase)
	router := registrationRouter(uc)

	uc.On("Submit", mock.MatchedBy(func(r *entity.Registration) bool {
		return r.ID == "" && r.Name == "Asha"
	})).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Registration).ID = "reg-1"
	}).Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/registrations", map[string]string{"id": "forged", "name": "Asha"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"reg-1"`)
}

func TestRegistrationSubmit_Invalid(t *testing.T) {
	uc := new(MockRegistrationUseCase)
	router := registrationRouter(uc)

	uc.On("Submit", mock.Anything).
		Return(&usecase.ValidationError{Fields: map[string]string{"mobile_no": "mobile_no must be at least 10 characters"}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/registrations", map[string]string{"mobile_no": "123"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "mobile_no")
}

func TestInquirySubmit(t *testing.T) {
	uc := new(MockRegistrationUseCase)
	router := registrationRouter(uc)

	uc.On("SubmitInquiry", mock.MatchedBy(func(i *entity.ContactInquiry) bool {
		return i.Email == "parent@example.com"
	})).Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/contact", entity.ContactInquiry{Name: "Parent", Email: "parent@example.com", Message: "When is the next camp?"}))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRegistrationAdminEndpoints(t *testing.T) {
	uc := new(MockRegistrationUseCase)
	router := registrationRouter(uc)

	uc.On("List").Return([]*entity.Registration{{ID: "reg-1"}}, nil)
	uc.On("Delete", "reg-1").Return(nil)
	uc.On("ListInquiries").Return([]*entity.ContactInquiry{}, nil)
	uc.On("DeleteInquiry", "missing").Return(usecase.ErrNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/registrations", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/registrations/reg-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/inquiries", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/inquiries/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	uc.AssertExpectations(t)
}
