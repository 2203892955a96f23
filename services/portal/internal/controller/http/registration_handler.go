package http

import (
	"net/http"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/usecase"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	registrationUseCase usecase.RegistrationUseCase
	logger              *logger.Logger
}

func NewRegistrationHandler(registrationUseCase usecase.RegistrationUseCase, logger *logger.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registrationUseCase: registrationUseCase,
		logger:              logger,
	}
}

// Submit godoc
// @Summary      Submit a membership registration
// @Tags         forms
// @Accept       json
// @Produce      json
// @Param        request  body  entity.Registration  true  "Registration form"
// @Success      201  {object}  entity.Registration
// @Failure      400  {object}  map[string]interface{}
// @Failure      429  {object}  map[string]string
// @Router       /registrations [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req entity.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = ""

	if err := h.registrationUseCase.Submit(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// List godoc
// @Summary      List registrations
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.Registration
// @Router       /admin/registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	registrations, err := h.registrationUseCase.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, registrations)
}

// Delete godoc
// @Summary      Delete a registration
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Registration ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/registrations/{id} [delete]
func (h *RegistrationHandler) Delete(c *gin.Context) {
	if err := h.registrationUseCase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registration deleted"})
}

// SubmitInquiry godoc
// @Summary      Send a contact inquiry
// @Tags         forms
// @Accept       json
// @Produce      json
// @Param        request  body  entity.ContactInquiry  true  "Contact form"
// @Success      201  {object}  entity.ContactInquiry
// @Failure      400  {object}  map[string]interface{}
// @Failure      429  {object}  map[string]string
// @Router       /contact [post]
func (h *RegistrationHandler) SubmitInquiry(c *gin.Context) {
	var req entity.ContactInquiry
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = ""

	if err := h.registrationUseCase.SubmitInquiry(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// ListInquiries godoc
// @Summary      List contact inquiries
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.ContactInquiry
// @Router       /admin/inquiries [get]
func (h *RegistrationHandler) ListInquiries(c *gin.Context) {
	inquiries, err := h.registrationUseCase.ListInquiries(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, inquiries)
}

// DeleteInquiry godoc
// @Summary      Delete a contact inquiry
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Inquiry ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/inquiries/{id} [delete]
func (h *RegistrationHandler) DeleteInquiry(c *gin.Context) {
	if err := h.registrationUseCase.DeleteInquiry(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inquiry deleted"})
}
