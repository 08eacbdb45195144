package reminder

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medtrack/medtrack-api/internal/handler"
	"github.com/medtrack/medtrack-api/internal/middleware"
	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/service/reminder"
)

type Handler struct {
	service *reminder.Service
}

func NewHandler(service *reminder.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reminders := r.Group("/reminders")
	{
		reminders.GET("", h.ListReminders)
		reminders.PATCH("/:id", h.UpdateStatus)
	}
}

func (h *Handler) ListReminders(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	filters := &model.ReminderFilters{
		Status: model.ReminderStatus(c.Query("status")),
		Type:   model.ReminderType(c.Query("type")),
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid limit"))
			return
		}
		filters.Limit = n
	}

	reminders, err := h.service.ListReminders(c.Request.Context(), userID, filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reminders))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid reminder ID"))
		return
	}

	var req model.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, userID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}
