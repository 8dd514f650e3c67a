package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/padraicbc/f1picks/metrics"
	mw "github.com/padraicbc/f1picks/middleware"
)

// Routes registers every endpoint on e.
func (h *Handler) Routes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(metrics.RequestDuration())

	// Public
	e.POST("/api/signin", h.Signin)
	e.POST("/api/register", h.Register)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Protected – require valid JWT in Authorization header
	api := e.Group("/api", mw.JWT(h.JWTKey))
	api.GET("/races", h.Races)
	api.GET("/races/:id", h.Race)
	api.POST("/races/:id/predictions", h.CreatePrediction)
	api.POST("/races/:id/preview", h.Preview)
	api.GET("/me/predictions", h.MyPredictions)
	api.GET("/leaderboard", h.Leaderboard)

	admin := api.Group("/admin", mw.RequireAdmin(h.isAdmin))
	admin.POST("/races", h.CreateRace)
	admin.PUT("/races/:id/sprint", h.SetSprint)
	admin.POST("/races/:id/result", h.SaveResult)
	admin.PUT("/races/:id/result", h.ReplaceResult)
	admin.POST("/races/:id/ingest", h.Ingest)
	admin.GET("/predictions", h.AllPredictions)
	admin.GET("/leaderboard/verify", h.VerifyLeaderboard)
}
