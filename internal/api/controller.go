// Package api exposes the alerting engine over HTTP: alert listing and
// acknowledgment, rule CRUD, the rule-builder schema, a live SSE stream,
// and prometheus metrics.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/channelpulse/channelpulse-go/internal/alerting"
	"github.com/channelpulse/channelpulse-go/internal/datastore/repository"
	"github.com/channelpulse/channelpulse-go/internal/logger"
	"github.com/channelpulse/channelpulse-go/internal/notification"
)

// Controller wires the engine and hub into echo handlers. repo may be nil
// when persistence is disabled; the history endpoint then returns 404.
type Controller struct {
	engine *alerting.Engine
	hub    *notification.Hub
	repo   repository.RuleRepository
	log    logger.Logger
}

// NewController creates the API controller.
func NewController(engine *alerting.Engine, hub *notification.Hub, repo repository.RuleRepository, log logger.Logger) *Controller {
	return &Controller{engine: engine, hub: hub, repo: repo, log: log}
}

// Register attaches all routes to the echo instance.
func (c *Controller) Register(e *echo.Echo) {
	e.Use(middleware.Recover())

	v1 := e.Group("/api/v1")
	v1.GET("/alerts", c.ListAlerts)
	v1.POST("/alerts/:id/read", c.MarkAlertRead)
	v1.DELETE("/alerts/:id", c.DeleteAlert)
	v1.GET("/alerts/stream", c.StreamAlerts)
	v1.GET("/history", c.ListHistory)

	v1.GET("/rules", c.ListRules)
	v1.POST("/rules", c.CreateRule)
	v1.PATCH("/rules/:id/toggle", c.ToggleRule)
	v1.GET("/schema", c.GetSchema)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
