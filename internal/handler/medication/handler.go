package medication

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medtrack/medtrack-api/internal/handler"
	"github.com/medtrack/medtrack-api/internal/middleware"
	"github.com/medtrack/medtrack-api/internal/model"
	"github.com/medtrack/medtrack-api/internal/service/medication"
)

type Handler struct {
	service *medication.Service
}

func NewHandler(service *medication.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	medications := r.Group("/medications")
	{
		medications.POST("", h.CreateMedication)
		medications.GET("", h.ListMedications)
		medications.GET("/conflicts", h.CheckConflicts)
		medications.GET("/interactions", h.CheckInteractions)
		medications.GET("/:id", h.GetMedication)
		medications.PUT("/:id", h.UpdateMedication)
		medications.DELETE("/:id", h.DeleteMedication)
		medications.POST("/:id/logs", h.LogIntake)
		medications.GET("/:id/logs", h.GetLogs)
		medications.POST("/:id/renewals", h.RequestRenewal)
		medications.GET("/:id/renewals", h.ListRenewals)
	}

	renewals := r.Group("/renewals")
	{
		renewals.GET("", h.ListUserRenewals)
		renewals.PUT("/:id", h.RespondToRenewal)
	}
}

func (h *Handler) CreateMedication(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	var req model.CreateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	med, err := h.service.CreateMedication(c.Request.Context(), userID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(med))
}

func (h *Handler) ListMedications(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	medications, err := h.service.ListMedications(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(medications))
}

func (h *Handler) GetMedication(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	med, err := h.service.GetMedication(c.Request.Context(), id, userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(med))
}

func (h *Handler) UpdateMedication(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	var req model.UpdateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	med, err := h.service.UpdateMedication(c.Request.Context(), id, userID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(med))
}

func (h *Handler) DeleteMedication(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	if err := h.service.DeleteMedication(c.Request.Context(), id, userID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) LogIntake(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	var req model.LogIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	log, err := h.service.LogIntake(c.Request.Context(), id, userID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(log))
}

func (h *Handler) GetLogs(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	logs, err := h.service.GetLogs(c.Request.Context(), id, userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(logs))
}

func (h *Handler) CheckConflicts(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	conflicts, err := h.service.CheckConflicts(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(conflicts))
}

func (h *Handler) CheckInteractions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	warnings, err := h.service.CheckInteractions(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(warnings))
}

func (h *Handler) RequestRenewal(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	var req model.CreateRenewalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	renewal, err := h.service.RequestRenewal(c.Request.Context(), id, userID, req.Message)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(renewal))
}

func (h *Handler) ListRenewals(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	renewals, err := h.service.ListRenewals(c.Request.Context(), id, userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(renewals))
}

func (h *Handler) ListUserRenewals(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	renewals, err := h.service.ListUserRenewals(c.Request.Context(), userID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(renewals))
}

func (h *Handler) RespondToRenewal(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing user identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid renewal ID"))
		return
	}

	var req model.UpdateRenewalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	renewal, err := h.service.RespondToRenewal(c.Request.Context(), id, userID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(renewal))
}
