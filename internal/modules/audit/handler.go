package audit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travelcrm/internal/domain"
	"travelcrm/internal/pkg/response"
)

type Repository interface {
	List(ctx context.Context, module string, limit int) ([]domain.AuditEntry, error)
}

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/audit", h.List)
}

func (h *Handler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid limit")
			return
		}
		limit = n
	}
	entries, err := h.repo.List(c.Request.Context(), c.Query("module"), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list audit entries")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entries": entries})
}
