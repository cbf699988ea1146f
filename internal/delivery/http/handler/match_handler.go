package handler

import (
	"net/http"

	"github.com/gdugdh24/topicmatch-backend/internal/usecase/match"
	"github.com/gin-gonic/gin"
)

// MatchDefaults are applied to query parameters the client omits.
type MatchDefaults struct {
	MaxDistanceKm    int
	MinCompatibility int
	Limit            int
}

type MatchHandler struct {
	matchUseCase *match.MatchUseCase
	defaults     MatchDefaults
}

func NewMatchHandler(matchUseCase *match.MatchUseCase, defaults MatchDefaults) *MatchHandler {
	return &MatchHandler{
		matchUseCase: matchUseCase,
		defaults:     defaults,
	}
}

type matchesQuery struct {
	UserID           string `form:"user_id" binding:"required"`
	MaxDistance      *int   `form:"max_distance" binding:"omitempty,min=1,max=20000"`
	MinCompatibility *int   `form:"min_compatibility" binding:"omitempty,min=0,max=100"`
	Limit            *int   `form:"limit" binding:"omitempty,min=1,max=100"`
}

// FindMatches handles GET /matches
// @Summary Find matches
// @Description Rank other users by topic compatibility, filtered by distance
// @Tags matches
// @Produce json
// @Param user_id query string true "Requesting user id"
// @Param max_distance query int false "Maximum distance in km"
// @Param min_compatibility query int false "Minimum compatibility score"
// @Param limit query int false "Maximum number of matches"
// @Success 200 {object} match.MatchesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches [get]
func (h *MatchHandler) FindMatches(c *gin.Context) {
	var q matchesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMETERS",
		})
		return
	}

	userID, ok := parseUserID(c, q.UserID, "user_id")
	if !ok {
		return
	}

	query := match.MatchQuery{
		UserID:           userID,
		MaxDistanceKm:    h.defaults.MaxDistanceKm,
		MinCompatibility: h.defaults.MinCompatibility,
		Limit:            h.defaults.Limit,
	}
	if q.MaxDistance != nil {
		query.MaxDistanceKm = *q.MaxDistance
	}
	if q.MinCompatibility != nil {
		query.MinCompatibility = *q.MinCompatibility
	}
	if q.Limit != nil {
		query.Limit = *q.Limit
	}

	resp, err := h.matchUseCase.FindMatches(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "failed to find matches")
		return
	}

	c.JSON(http.StatusOK, resp)
}
