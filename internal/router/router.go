package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deepflow/backend/internal/handler"
	"deepflow/backend/internal/middleware"
	"deepflow/backend/internal/service"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Timer       *handler.TimerHandler
	Energy      *handler.EnergyHandler
	Insight     *handler.InsightHandler
	Shelf       *handler.ShelfHandler
	Preferences *handler.PreferencesHandler
	Account     *handler.AccountHandler
}

func New(authService *service.AuthService, h Handlers, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.Auth(authService))

	timers := authed.Group("/timers")
	timers.GET("", h.Timer.List)
	timers.POST("", h.Timer.Create)
	timers.DELETE("/:id", h.Timer.Delete)
	timers.GET("/:id/state", h.Timer.GetState)
	timers.POST("/:id/action", h.Timer.ApplyAction)

	energy := authed.Group("/energy")
	energy.POST("/checkins", h.Energy.LogSample)
	energy.GET("/checkins", h.Energy.ListSamples)
	energy.POST("/insights", h.Energy.SaveInsight)
	energy.GET("/insights", h.Energy.ListInsights)

	authed.GET("/insights/weekly", h.Insight.WeeklySummary)

	shelf := authed.Group("/shelf")
	shelf.GET("", h.Shelf.List)
	shelf.POST("", h.Shelf.Add)
	shelf.DELETE("/:id", h.Shelf.Remove)

	authed.GET("/preferences", h.Preferences.Get)
	authed.PUT("/preferences", h.Preferences.Update)

	authed.GET("/account/export", h.Account.Export)
	authed.DELETE("/account", h.Account.Delete)

	return engine
}
