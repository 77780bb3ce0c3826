package lead

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travelcrm/internal/domain"
	"travelcrm/internal/pkg/response"
	"travelcrm/internal/synccache"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads", h.List)
	rg.POST("/leads", h.Create)
	rg.GET("/leads/:id", h.Get)
	rg.PATCH("/leads/:id", h.Update)
	rg.DELETE("/leads/:id", h.Delete)
	rg.POST("/leads/:id/status", h.ChangeStatus)
	rg.POST("/leads/:id/logs", h.AppendLog)
}

func (h *Handler) List(c *gin.Context) {
	var status *domain.LeadStatus
	if s := c.Query("status"); s != "" {
		st := domain.LeadStatus(s)
		status = &st
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	leads, total, err := h.service.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list leads")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leads": leads, "total": total})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Create(c.Request.Context(), req, req.Confirmed)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Lead needs a name and at least one contact")
		case errors.Is(err, synccache.ErrRemoteUnavailable):
			response.Error(c, http.StatusBadGateway, "REMOTE_UNAVAILABLE", "Could not reach the data store, please retry")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create lead")
		}
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lead id")
		return
	}
	l, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch lead")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": l})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lead id")
		return
	}
	var patch domain.LeadPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	l, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status changes must go through the status endpoint")
		case errors.Is(err, synccache.ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
		case errors.Is(err, synccache.ErrRemoteUnavailable):
			response.Error(c, http.StatusBadGateway, "REMOTE_UNAVAILABLE", "Could not reach the data store, please retry")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update lead")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": l})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lead id")
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, synccache.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete lead")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lead id")
		return
	}
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	l, err := h.service.ChangeStatus(c.Request.Context(), id, req.Status, req.PerformedBy)
	if err != nil {
		switch {
		case errors.Is(err, ErrLeadNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
		case errors.Is(err, ErrInvalidTransition):
			response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
		case errors.Is(err, synccache.ErrRemoteUnavailable):
			response.Error(c, http.StatusBadGateway, "REMOTE_UNAVAILABLE", "Could not reach the data store, please retry")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to change status")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": l})
}

func (h *Handler) AppendLog(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lead id")
		return
	}
	var req AppendLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	entry, err := h.service.AppendLog(c.Request.Context(), id, req.Kind, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrLeadNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Lead not found")
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown log kind or empty message")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to append log")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"log": entry})
}
