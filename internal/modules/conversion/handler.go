package conversion

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travelcrm/internal/modules/inventory"
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
	rg.POST("/leads/:id/convert", h.Convert)
}

func (h *Handler) Convert(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lead id")
		return
	}

	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	req.LeadID = id

	res, err := h.service.Convert(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPrecondition):
			response.ErrorWithDetails(c, http.StatusConflict, "PRECONDITION_FAILED", "Lead cannot be converted", err.Error())
		case errors.Is(err, inventory.ErrExhausted):
			// Capacity problems get their own code: the fix is picking
			// another date, not retrying.
			response.Error(c, http.StatusConflict, "CAPACITY_EXHAUSTED", "No capacity left on the travel date; choose another date")
		case errors.Is(err, inventory.ErrLockFailed), errors.Is(err, synccache.ErrRemoteUnavailable):
			response.Error(c, http.StatusBadGateway, "REMOTE_UNAVAILABLE", "Could not reach the data store, please retry")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Conversion failed")
		}
		return
	}
	response.Success(c, http.StatusCreated, res)
}
