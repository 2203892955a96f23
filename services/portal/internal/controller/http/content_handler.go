package http

import (
	"net/http"
	"strconv"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/content"
	"premier-open-group/services/portal/internal/usecase"

	"github.com/gin-gonic/gin"
)

const maxListLimit = 100

type ContentHandler struct {
	contentUseCase usecase.ContentUseCase
	logger         *logger.Logger
}

func NewContentHandler(contentUseCase usecase.ContentUseCase, logger *logger.Logger) *ContentHandler {
	return &ContentHandler{
		contentUseCase: contentUseCase,
		logger:         logger,
	}
}

func filterFromQuery(c *gin.Context, publishedOnly bool) content.Filter {
	filter := content.Filter{PublishedOnly: publishedOnly, Category: c.Query("category")}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		if limit > maxListLimit {
			limit = maxListLimit
		}
		filter.Limit = limit
	}
	return filter
}

// List godoc
// @Summary      List published content
// @Description  List published items of one content type (posts, programs, awards, gallery, notifications, member_profiles)
// @Tags         content
// @Produce      json
// @Param        type      path   string  true   "Content type"
// @Param        category  query  string  false  "Category filter (posts, gallery, member_profiles)"
// @Param        limit     query  int     false  "Maximum number of items"
// @Success      200  {array}   map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /content/{type} [get]
func (h *ContentHandler) List(c *gin.Context) {
	records, err := h.contentUseCase.List(c.Request.Context(), c.Param("type"), filterFromQuery(c, true))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Get godoc
// @Summary      Get published content
// @Tags         content
// @Produce      json
// @Param        type  path  string  true  "Content type"
// @Param        id    path  string  true  "Item ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /content/{type}/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	record, err := h.contentUseCase.Get(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if published, _ := record["published"].(bool); !published {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// AdminList godoc
// @Summary      List all content
// @Description  List every item of a content type, drafts included
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        type      path   string  true   "Content type"
// @Param        category  query  string  false  "Category filter"
// @Success      200  {array}   map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /admin/content/{type} [get]
func (h *ContentHandler) AdminList(c *gin.Context) {
	records, err := h.contentUseCase.List(c.Request.Context(), c.Param("type"), filterFromQuery(c, false))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Create godoc
// @Summary      Create content
// @Description  Create an item. Unknown fields are dropped and required fields are checked before anything is stored.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        type     path  string                  true  "Content type"
// @Param        request  body  map[string]interface{}  true  "Item fields"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /admin/content/{type} [post]
func (h *ContentHandler) Create(c *gin.Context) {
	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.contentUseCase.Create(c.Request.Context(), c.Param("type"), c.GetString("user_id"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Update godoc
// @Summary      Update content
// @Description  Change the supplied fields of an item
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        type     path  string                  true  "Content type"
// @Param        id       path  string                  true  "Item ID"
// @Param        request  body  map[string]interface{}  true  "Changed fields"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /admin/content/{type}/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.contentUseCase.Update(c.Request.Context(), c.Param("type"), c.Param("id"), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete godoc
// @Summary      Delete content
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        type  path  string  true  "Content type"
// @Param        id    path  string  true  "Item ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/content/{type}/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.contentUseCase.Delete(c.Request.Context(), c.Param("type"), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// Schemas godoc
// @Summary      Content schemas
// @Description  Field lists and rules for every content type, used to render the admin editor
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  SchemaResponse
// @Router       /admin/schemas [get]
func (h *ContentHandler) Schemas(c *gin.Context) {
	out := make([]SchemaResponse, 0, len(content.Types()))
	for _, t := range content.Types() {
		schema := content.MustLookup(t)
		resp := SchemaResponse{Type: string(t), Bucket: schema.Bucket}
		for _, f := range schema.Fields {
			resp.Fields = append(resp.Fields, FieldResponse{Name: f.Name, Kind: kindName(f.Kind), Rules: f.Rules, Default: f.Default})
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

type SchemaResponse struct {
	Type   string          `json:"type"`
	Bucket string          `json:"bucket,omitempty"`
	Fields []FieldResponse `json:"fields"`
}

type FieldResponse struct {
	Name    string      `json:"name"`
	Kind    string      `json:"kind"`
	Rules   string      `json:"rules,omitempty"`
	Default interface{} `json:"default,omitempty"`
}

func kindName(k content.Kind) string {
	switch k {
	case content.KindBool:
		return "bool"
	case content.KindInt:
		return "int"
	default:
		return "string"
	}
}
