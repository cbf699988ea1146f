package handler

import (
	"net/http"

	"github.com/gdugdh24/topicmatch-backend/internal/usecase/score"
	"github.com/gin-gonic/gin"
)

type CompatibilityHandler struct {
	scoreUseCase *score.ScoreUseCase
}

func NewCompatibilityHandler(scoreUseCase *score.ScoreUseCase) *CompatibilityHandler {
	return &CompatibilityHandler{
		scoreUseCase: scoreUseCase,
	}
}

// Compare handles GET /compatibility
// @Summary Compare two users
// @Description Score two users from their current preferences with a full breakdown
// @Tags compatibility
// @Produce json
// @Param user_id query string true "User id"
// @Param other_user_id query string true "Other user id"
// @Success 200 {object} score.CompareResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /compatibility [get]
func (h *CompatibilityHandler) Compare(c *gin.Context) {
	userID, ok := parseUserID(c, c.Query("user_id"), "user_id")
	if !ok {
		return
	}
	otherID, ok := parseUserID(c, c.Query("other_user_id"), "other_user_id")
	if !ok {
		return
	}
	if userID == otherID {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "cannot compare a user with themselves",
			Code:  "SAME_USER",
		})
		return
	}

	resp, err := h.scoreUseCase.Compare(c.Request.Context(), userID, otherID)
	if err != nil {
		respondError(c, err, "failed to calculate compatibility")
		return
	}

	c.JSON(http.StatusOK, resp)
}
