package pipelines

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pipelinq/internal/api"
	"pipelinq/internal/logger"
	pkgerrors "pipelinq/pkg/errors"
)

type TransitionsResponse struct {
	From     RequestStatus   `json:"from"`
	Allowed  []RequestStatus `json:"allowed"`
	Terminal bool            `json:"terminal"`
}

type ValidateTransitionRequest struct {
	From RequestStatus `json:"from" binding:"required"`
	To   RequestStatus `json:"to" binding:"required"`
}

type ValidateTransitionResponse struct {
	Valid bool `json:"valid"`
}

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
	v1.POST("/settings/pipelines/defaults", h.CreateDefaults)
	v1.GET("/requests/status-transitions", h.ListTransitions)
	v1.POST("/requests/status-transitions/validate", h.ValidateTransition)
}

// CreateDefaults godoc
// @Summary      Create the default pipelines
// @Description  Does nothing when any pipeline already exists
// @Tags         pipelines
// @Produce      json
// @Success      200  {object}  CreateDefaultsResult
// @Failure      412  {object}  errors.ErrorResponse
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /settings/pipelines/defaults [post]
func (h *Handler) CreateDefaults(c *gin.Context) {
	result, err := h.service.CreateDefaults(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListTransitions godoc
// @Summary      Allowed request status transitions
// @Tags         requests
// @Produce      json
// @Param        from  query     string  true  "Current status"
// @Success      200   {object}  TransitionsResponse
// @Failure      400   {object}  errors.ErrorResponse
// @Router       /requests/status-transitions [get]
func (h *Handler) ListTransitions(c *gin.Context) {
	from := RequestStatus(c.Query("from"))
	if !from.Known() {
		h.HandleError(c, pkgerrors.ErrValidation.WithMessage("unknown status").WithDetail("from", from))
		return
	}
	c.JSON(http.StatusOK, TransitionsResponse{
		From:     from,
		Allowed:  AllowedTransitions(from),
		Terminal: IsTerminal(from),
	})
}

// ValidateTransition godoc
// @Summary      Check a request status transition
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        transition  body      ValidateTransitionRequest  true  "Transition"
// @Success      200         {object}  ValidateTransitionResponse
// @Failure      400         {object}  errors.ErrorResponse
// @Router       /requests/status-transitions/validate [post]
func (h *Handler) ValidateTransition(c *gin.Context) {
	var req ValidateTransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, ValidateTransitionResponse{Valid: IsValidTransition(req.From, req.To)})
}
