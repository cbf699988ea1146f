package handler

import (
	"net/http"

	"github.com/gdugdh24/topicmatch-backend/internal/usecase/preference"
	"github.com/gin-gonic/gin"
)

type PreferenceHandler struct {
	preferenceUseCase *preference.PreferenceUseCase
}

func NewPreferenceHandler(preferenceUseCase *preference.PreferenceUseCase) *PreferenceHandler {
	return &PreferenceHandler{
		preferenceUseCase: preferenceUseCase,
	}
}

// SavePreferences handles POST /preferences
// @Summary Save topic preferences
// @Description Replace the user's like/dislike set and refresh compatibility scores
// @Tags preferences
// @Accept json
// @Produce json
// @Param request body preference.SavePreferencesRequest true "Preference set"
// @Success 200 {object} preference.SaveResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /preferences [post]
func (h *PreferenceHandler) SavePreferences(c *gin.Context) {
	var req preference.SavePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
		return
	}

	result, err := h.preferenceUseCase.SavePreferences(c.Request.Context(), req.UserID, req.Preferences)
	if err != nil {
		respondError(c, err, "failed to save preferences")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "preferences saved",
		"saved":   result.Saved,
		"dropped": result.Dropped,
	})
}

// GetPreferences handles GET /preferences
// @Summary Get topic preferences
// @Tags preferences
// @Produce json
// @Param user_id query string true "User id"
// @Success 200 {array} domain.TopicPreference
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /preferences [get]
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	userID, ok := parseUserID(c, c.Query("user_id"), "user_id")
	if !ok {
		return
	}

	prefs, err := h.preferenceUseCase.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to get preferences")
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// ListTopics handles GET /topics
// @Summary List topics
// @Tags topics
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {array} domain.Topic
// @Failure 500 {object} ErrorResponse
// @Router /topics [get]
func (h *PreferenceHandler) ListTopics(c *gin.Context) {
	topics, err := h.preferenceUseCase.ListTopics(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err, "failed to list topics")
		return
	}

	c.JSON(http.StatusOK, gin.H{"topics": topics})
}
