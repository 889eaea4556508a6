// Package api holds what the management REST handlers share.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pipelinq/internal/logger"
	"pipelinq/pkg/errors"
)

// Routes is implemented by every handler mounted under /api/v1.
type Routes interface {
	RegisterRoutes(v1 *gin.RouterGroup)
}

type BaseHandler struct {
	Logger logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.DebugwCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, errors.ToErrorResponse(err))
}

// BindJSON decodes the body into req and answers 400 when it does not fit.
func (h *BaseHandler) BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return false
	}
	return true
}

// Mount registers every handler under /api/v1.
func Mount(router *gin.Engine, handlers ...Routes) {
	v1 := router.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(v1)
	}
}
