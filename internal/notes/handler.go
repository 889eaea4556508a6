package notes

import (
	"net/http"
	"strconv"

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
	notes := v1.Group("/notes")
	{
		notes.DELETE("/single/:noteId", h.DeleteNote)
		notes.GET("/:objectType/:objectId", h.ListNotes)
		notes.POST("/:objectType/:objectId", h.CreateNote)
		notes.DELETE("/:objectType/:objectId", h.DeleteAllNotes)
	}
}

// ListNotes godoc
// @Summary      List notes of an object
// @Description  Newest first
// @Tags         notes
// @Produce      json
// @Param        objectType  path      string  true   "Object type, e.g. pipelinq_lead"
// @Param        objectId    path      string  true   "Object ID"
// @Param        limit       query     int     false  "Maximum number of notes (max 200)"
// @Success      200         {array}   Note
// @Failure      400         {object}  errors.ErrorResponse
// @Router       /notes/{objectType}/{objectId} [get]
func (h *Handler) ListNotes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	notes, err := h.service.List(c.Request.Context(), c.Param("objectType"), c.Param("objectId"), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// CreateNote godoc
// @Summary      Add a note to an object
// @Description  Notifies the assignee of the object
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        objectType  path      string             true  "Object type"
// @Param        objectId    path      string             true  "Object ID"
// @Param        note        body      CreateNoteRequest  true  "Note"
// @Success      201         {object}  Note
// @Failure      400         {object}  errors.ErrorResponse
// @Failure      401         {object}  errors.ErrorResponse
// @Router       /notes/{objectType}/{objectId} [post]
func (h *Handler) CreateNote(c *gin.Context) {
	var req CreateNoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	note, err := h.service.Add(c.Request.Context(), c.Param("objectType"), c.Param("objectId"), req.Message)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// DeleteAllNotes godoc
// @Summary      Delete all notes of an object
// @Tags         notes
// @Produce      json
// @Param        objectType  path      string  true  "Object type"
// @Param        objectId    path      string  true  "Object ID"
// @Success      200         {object}  DeleteAllResponse
// @Failure      401         {object}  errors.ErrorResponse
// @Router       /notes/{objectType}/{objectId} [delete]
func (h *Handler) DeleteAllNotes(c *gin.Context) {
	n, err := h.service.DeleteAll(c.Request.Context(), c.Param("objectType"), c.Param("objectId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteAllResponse{Deleted: n})
}

// DeleteNote godoc
// @Summary      Delete one of your own notes
// @Tags         notes
// @Param        noteId  path  string  true  "Note ID"
// @Success      204
// @Failure      403  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /notes/single/{noteId} [delete]
func (h *Handler) DeleteNote(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("noteId")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
