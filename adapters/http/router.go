package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/khoahotran/skillpath/pkg/auth"
	"github.com/khoahotran/skillpath/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Sessions     *SessionHandler
	Shares       *ShareHandler
	JWT          *auth.JWTService
	Limiter      *LimiterManager
	PublicOrigin string
	Logger       logger.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ErrorMiddleware(d.Logger, d.PublicOrigin))
	router.NoRoute(NotFoundHandler(d.PublicOrigin))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sessionAuth := SessionMiddleware(d.JWT, d.Logger)
	limited := RateLimitMiddleware(d.Limiter, d.Logger)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		api.POST("/sessions", d.Sessions.StartSession)
		api.GET("/profiles/:shareId", d.Shares.GetSharedProfile)
		api.GET("/courses/search-url", CourseSearchURL)

		session := api.Group("/session")
		session.Use(sessionAuth)
		{
			session.GET("", d.Sessions.GetSession)
			session.PATCH("", d.Sessions.PatchSession)
			session.DELETE("", d.Sessions.ResetSession)
			session.POST("/advance", d.Sessions.Advance)
			session.POST("/retreat", d.Sessions.Retreat)
			session.PUT("/step", d.Sessions.GoTo)
			session.POST("/background", d.Sessions.SubmitBackground)

			assessment := session.Group("/assessment")
			{
				assessment.GET("", limited, d.Sessions.GetAssessment)
				assessment.POST("/select", d.Sessions.SelectOption)
				assessment.POST("/rating", d.Sessions.SetRating)
				assessment.POST("/text", d.Sessions.SetText)
				assessment.POST("/submit", d.Sessions.SubmitAnswer)
			}

			session.GET("/analysis", limited, d.Sessions.GetAnalysis)
			session.POST("/uploads/:category", d.Sessions.Upload)
			session.POST("/publish", d.Sessions.Publish)
		}
	}
	return router
}
