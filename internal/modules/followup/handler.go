package followup

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"travelcrm/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/follow-ups", h.Create)
	rg.GET("/follow-ups/agenda", h.Agenda)
	rg.POST("/follow-ups/:id/done", h.Complete)
	rg.POST("/follow-ups/:id/cancel", h.Cancel)
	rg.GET("/leads/:id/follow-ups", h.ListByLead)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	f, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown type or priority, or missing schedule")
		case errors.Is(err, ErrLeadNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create follow-up")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"follow_up": f})
}

func (h *Handler) Agenda(c *gin.Context) {
	agenda, err := h.service.Agenda(c.Request.Context(), time.Now())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build agenda")
		return
	}
	response.Success(c, http.StatusOK, agenda)
}

func (h *Handler) Complete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid follow-up id")
		return
	}
	f, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		h.closeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"follow_up": f})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid follow-up id")
		return
	}
	f, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.closeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"follow_up": f})
}

func (h *Handler) ListByLead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lead id")
		return
	}
	list, err := h.service.ListByLead(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list follow-ups")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"follow_ups": list})
}

func (h *Handler) closeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Follow-up not found")
	case errors.Is(err, ErrNotPending):
		response.Error(c, http.StatusConflict, "NOT_PENDING", "Follow-up is already done or cancelled")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update follow-up")
	}
}
