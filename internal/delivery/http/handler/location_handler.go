package handler

import (
	"net/http"

	"github.com/gdugdh24/topicmatch-backend/internal/usecase/location"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LocationHandler struct {
	locationUseCase *location.LocationUseCase
}

func NewLocationHandler(locationUseCase *location.LocationUseCase) *LocationHandler {
	return &LocationHandler{
		locationUseCase: locationUseCase,
	}
}

// UpdateLocation handles PUT /location
// @Summary Update location preferences
// @Description Set shared coordinates and the maximum match distance
// @Tags location
// @Accept json
// @Produce json
// @Param request body location.UpdateLocationRequest true "Location preferences"
// @Success 200 {object} domain.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /location [put]
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	var req location.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == uuid.Nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
		return
	}

	profile, err := h.locationUseCase.UpdateLocation(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "failed to update location")
		return
	}

	c.JSON(http.StatusOK, profile)
}
