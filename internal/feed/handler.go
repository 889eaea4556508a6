package feed

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pipelinq/internal/api"
	"pipelinq/internal/logger"
	"pipelinq/pkg/actor"
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
	v1.GET("/activities", h.ListActivities)
}

// ListActivities godoc
// @Summary      Activity feed
// @Description  Newest first, subjects rendered in the requested language
// @Tags         activities
// @Produce      json
// @Param        object_type  query     string  false  "Object type (lead, request, ...)"
// @Param        object_id    query     string  false  "Object ID"
// @Param        type         query     string  false  "pipelinq_assignment, pipelinq_stage_status or pipelinq_notes"
// @Param        lang         query     string  false  "Language, e.g. en or nl"
// @Param        mine         query     bool    false  "Only activities affecting the current user"
// @Param        limit        query     int     false  "Maximum number of items (max 200)"
// @Success      200          {array}   Item
// @Failure      400          {object}  errors.ErrorResponse
// @Failure      503          {object}  errors.ErrorResponse
// @Router       /activities [get]
func (h *Handler) ListActivities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	q := Query{
		ObjectType: c.Query("object_type"),
		ObjectID:   c.Query("object_id"),
		Type:       c.Query("type"),
		Lang:       c.Query("lang"),
		Limit:      limit,
	}
	if q.Lang == "" {
		q.Lang = h.service.MatchLanguage(c.GetHeader("Accept-Language"))
	}
	if mine, _ := strconv.ParseBool(c.Query("mine")); mine {
		q.AffectedUserID = actor.FromContext(c.Request.Context())
	}

	items, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
