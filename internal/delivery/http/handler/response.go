package handler

import (
	"errors"
	"net/http"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/geo"
	"github.com/gdugdh24/topicmatch-backend/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError maps domain errors to HTTP status codes.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found", Code: "PROFILE_NOT_FOUND"})
	case errors.Is(err, domain.ErrNoValidTopics):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no valid topics in preference set", Code: "NO_VALID_TOPICS"})
	case errors.Is(err, domain.ErrInvalidPreference):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_PREFERENCE"})
	case errors.Is(err, geo.ErrInvalidCoordinates):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_COORDINATES"})
	case errors.Is(err, domain.ErrMatchQueryFailed):
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback, Code: "MATCH_QUERY_FAILED"})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback, Code: "INTERNAL_ERROR"})
	}
}

func parseUserID(c *gin.Context, raw, field string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid " + field,
			Code:  "INVALID_USER_ID",
		})
		return uuid.Nil, false
	}
	return id, true
}
