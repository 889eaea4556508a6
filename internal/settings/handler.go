package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pipelinq/internal/api"
	"pipelinq/internal/logger"
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
	v1.GET("/settings", h.GetSettings)
	v1.PUT("/settings", h.UpdateSettings)
	v1.GET("/user/settings", h.GetUserSettings)
	v1.PUT("/user/settings", h.UpdateUserSettings)
}

// GetSettings godoc
// @Summary      Get app settings
// @Description  Register and schema ids the CRM objects live in
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /settings [get]
func (h *Handler) GetSettings(c *gin.Context) {
	values, err := h.service.GetSettings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, values)
}

// UpdateSettings godoc
// @Summary      Update app settings
// @Description  Store register and schema ids and announce the change to the dispatchers
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        settings  body      UpdateSettingsRequest  true  "Settings to store"
// @Success      200       {object}  map[string]string
// @Failure      400       {object}  errors.ErrorResponse
// @Failure      500       {object}  errors.ErrorResponse
// @Router       /settings [put]
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	values, err := h.service.UpdateSettings(c.Request.Context(), req.Settings)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, values)
}

// GetUserSettings godoc
// @Summary      Get notification settings of the current user
// @Tags         settings
// @Produce      json
// @Success      200  {object}  UserSettings
// @Failure      401  {object}  errors.ErrorResponse
// @Router       /user/settings [get]
func (h *Handler) GetUserSettings(c *gin.Context) {
	s, err := h.service.GetUserSettings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateUserSettings godoc
// @Summary      Update notification settings of the current user
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        settings  body      UpdateUserSettingsRequest  true  "Switches to change"
// @Success      200       {object}  UserSettings
// @Failure      400       {object}  errors.ErrorResponse
// @Failure      401       {object}  errors.ErrorResponse
// @Router       /user/settings [put]
func (h *Handler) UpdateUserSettings(c *gin.Context) {
	var req UpdateUserSettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s, err := h.service.UpdateUserSettings(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
