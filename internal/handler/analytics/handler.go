package analytics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medtrack/medtrack-api/internal/handler"
	"github.com/medtrack/medtrack-api/internal/middleware"
	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/service/analytics"
)

type Handler struct {
	service *analytics.Service
}

func NewHandler(service *analytics.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/analytics")
	{
		reports.GET("/adherence", h.GetAdherence)
		reports.GET("/logs", h.ListLogs)
		reports.GET("/trends", h.GetTrends)
		reports.GET("/risk", h.GetRiskReport)
		reports.GET("/predictive", h.GetReminderShifts)
		reports.GET("/schedule", h.GetSchedulePlan)
		reports.GET("/streaks", h.GetStreaks)
		reports.GET("/suggestions", h.GetSuggestions)
	}
}

func (h *Handler) GetAdherence(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	stats, err := h.service.GetAdherence(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func (h *Handler) ListLogs(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	filters := &model.LogFilters{
		Status: model.LogStatus(c.Query("status")),
	}
	if id := c.Query("medication_id"); id != "" {
		medicationID, err := uuid.Parse(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
			return
		}
		filters.MedicationID = medicationID
	}
	if date := c.Query("start_date"); date != "" {
		start, err := time.Parse(time.RFC3339, date)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid start date"))
			return
		}
		filters.StartDate = start
	}
	if date := c.Query("end_date"); date != "" {
		end, err := time.Parse(time.RFC3339, date)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid end date"))
			return
		}
		filters.EndDate = end
	}

	logs, err := h.service.ListLogs(c.Request.Context(), userID, filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(logs))
}

func (h *Handler) GetTrends(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	trends, err := h.service.GetTrends(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(trends))
}

func (h *Handler) GetRiskReport(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	report, err := h.service.GetRiskReport(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}

func (h *Handler) GetReminderShifts(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	shifts, err := h.service.GetReminderShifts(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(shifts))
}

func (h *Handler) GetSchedulePlan(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	plan, err := h.service.GetSchedulePlan(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(plan))
}

func (h *Handler) GetStreaks(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	report, err := h.service.GetStreaks(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}

func (h *Handler) GetSuggestions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	suggestions, err := h.service.GetSuggestions(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(suggestions))
}
