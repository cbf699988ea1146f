package http

import (
	"github.com/gdugdh24/topicmatch-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/topicmatch-backend/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	matchHandler         *handler.MatchHandler
	preferenceHandler    *handler.PreferenceHandler
	locationHandler      *handler.LocationHandler
	compatibilityHandler *handler.CompatibilityHandler
	exposeMetrics        bool
}

func NewRouter(
	matchHandler *handler.MatchHandler,
	preferenceHandler *handler.PreferenceHandler,
	locationHandler *handler.LocationHandler,
	compatibilityHandler *handler.CompatibilityHandler,
	exposeMetrics bool,
) *Router {
	return &Router{
		matchHandler:         matchHandler,
		preferenceHandler:    preferenceHandler,
		locationHandler:      locationHandler,
		compatibilityHandler: compatibilityHandler,
		exposeMetrics:        exposeMetrics,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(), middleware.Metrics())

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	if r.exposeMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/matches", r.matchHandler.FindMatches)

		preferences := v1.Group("/preferences")
		{
			preferences.POST("", r.preferenceHandler.SavePreferences)
			preferences.GET("", r.preferenceHandler.GetPreferences)
		}

		v1.GET("/topics", r.preferenceHandler.ListTopics)
		v1.PUT("/location", r.locationHandler.UpdateLocation)
		v1.GET("/compatibility", r.compatibilityHandler.Compare)
	}

	return router
}
