package inventory

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"travelcrm/internal/domain"
	"travelcrm/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/inventory/:date", h.EnsureDay)
	rg.GET("/inventory/:date", h.GetDay)
}

type ensureDayRequest struct {
	Capacity int `json:"capacity" binding:"min=0"`
}

func (h *Handler) EnsureDay(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Date must be YYYY-MM-DD")
		return
	}
	var req ensureDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := h.service.EnsureDay(c.Request.Context(), date, req.Capacity); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to set allotment")
		return
	}
	day, err := h.service.Day(c.Request.Context(), date)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read allotment")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"day": day})
}

func (h *Handler) GetDay(c *gin.Context) {
	date := c.Param("date")
	day, err := h.service.Day(c.Request.Context(), date)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read allotment")
		return
	}
	if day == nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "No allotment configured for date")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"day": day})
}
