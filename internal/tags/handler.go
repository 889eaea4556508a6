package tags

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pipelinq/internal/api"
	"pipelinq/internal/logger"
	pkgerrors "pipelinq/pkg/errors"
)

type Handler struct {
	api.BaseHandler
	service *Service
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: api.BaseHandler{Logger: log},
		service:     service,
	}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	h.mount(v1.Group("/lead-sources"), CategoryLeadSource)
	h.mount(v1.Group("/request-channels"), CategoryRequestChannel)
}

func (h *Handler) mount(g *gin.RouterGroup, category Category) {
	g.GET("", h.ListTags(category))
	g.POST("", h.AddTag(category))
	g.PUT("/:id", h.RenameTag(category))
	g.DELETE("/:id", h.RemoveTag(category))
}

// ListTags godoc
// @Summary      List the tags of a category
// @Description  Sorted by name, case-insensitive
// @Tags         tags
// @Produce      json
// @Success      200  {array}   Tag
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /lead-sources [get]
// @Router       /request-channels [get]
func (h *Handler) ListTags(category Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		tags, err := h.service.ListTags(c.Request.Context(), category)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, tags)
	}
}

// AddTag godoc
// @Summary      Add a tag to a category
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        tag  body      TagRequest  true  "Tag name"
// @Success      201  {object}  Tag
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Router       /lead-sources [post]
// @Router       /request-channels [post]
func (h *Handler) AddTag(category Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TagRequest
		if !h.BindJSON(c, &req) {
			return
		}

		tag, err := h.service.AddTag(c.Request.Context(), category, req.Name)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, tag)
	}
}

// RenameTag godoc
// @Summary      Rename a tag
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        id   path      int         true  "Tag ID"
// @Param        tag  body      TagRequest  true  "New name"
// @Success      200  {object}  Tag
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Router       /lead-sources/{id} [put]
// @Router       /request-channels/{id} [put]
func (h *Handler) RenameTag(category Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.tagID(c)
		if !ok {
			return
		}
		var req TagRequest
		if !h.BindJSON(c, &req) {
			return
		}

		tag, err := h.service.RenameTag(c.Request.Context(), category, id, req.Name)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, tag)
	}
}

// RemoveTag godoc
// @Summary      Remove a tag from a category
// @Description  The tag itself is deleted once no category uses it
// @Tags         tags
// @Param        id  path  int  true  "Tag ID"
// @Success      204
// @Failure      400  {object}  errors.ErrorResponse
// @Router       /lead-sources/{id} [delete]
// @Router       /request-channels/{id} [delete]
func (h *Handler) RemoveTag(category Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.tagID(c)
		if !ok {
			return
		}
		if err := h.service.RemoveTag(c.Request.Context(), category, id); err != nil {
			h.HandleError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) tagID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, pkgerrors.ToErrorResponse(
			pkgerrors.ErrValidation.WithMessage("invalid tag id").WithCause(err)))
		return 0, false
	}
	return id, true
}
