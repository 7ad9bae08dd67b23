package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stackitdev/stackit/internal/services"
	"github.com/stackitdev/stackit/pkg/response"
)

// TagHandler exposes the tag catalogue.
type TagHandler struct {
	tags *services.TagService
}

func NewTagHandler(tags *services.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

type createTagRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	Description string `json:"description" validate:"max=1024"`
}

type updateTagRequest struct {
	Description *string `json:"description" validate:"omitempty,max=1024"`
}

// POST /api/tags
func (h *TagHandler) Create(c *gin.Context) {
	var req createTagRequest
	if !bindAndValidate(c, &req) {
		return
	}

	tag, err := h.tags.Create(requestContext(c), services.CreateTagInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, tag)
}

// GET /api/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tags.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tags)
}

// GET /api/tags/:id
func (h *TagHandler) Get(c *gin.Context) {
	tag, err := h.tags.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tag)
}

// GET /api/tags/name/:name
func (h *TagHandler) GetByName(c *gin.Context) {
	tag, err := h.tags.GetByName(requestContext(c), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tag)
}

// PUT /api/tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	var req updateTagRequest
	if !bindAndValidate(c, &req) {
		return
	}

	tag, err := h.tags.Update(requestContext(c), c.Param("id"), services.UpdateTagInput{
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tag)
}

// DELETE /api/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.tags.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
