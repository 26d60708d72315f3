package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/channelpulse/channelpulse-go/internal/logger"
)

// ListAlerts returns the current collection and derived unread count.
func (c *Controller) ListAlerts(ctx echo.Context) error {
	alerts := c.engine.Alerts()
	return ctx.JSON(http.StatusOK, map[string]any{
		"alerts":      alerts,
		"unreadCount": alerts.UnreadCount(),
		"count":       len(alerts),
	})
}

// MarkAlertRead acknowledges an alert. Unknown IDs return 404; the
// underlying operation is an idempotent no-op.
func (c *Controller) MarkAlertRead(ctx echo.Context) error {
	if !c.engine.MarkAlertRead(ctx.Param("id")) {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "alert not found"})
	}
	return ctx.NoContent(http.StatusNoContent)
}

// DeleteAlert removes an alert from the local working set. Client-side
// only; the backend keeps its own copy.
func (c *Controller) DeleteAlert(ctx echo.Context) error {
	if !c.engine.DeleteAlert(ctx.Param("id")) {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "alert not found"})
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ListHistory returns recent fired-alert history rows from the local
// store. 404 when persistence is disabled.
func (c *Controller) ListHistory(ctx echo.Context) error {
	if c.repo == nil {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "history persistence is not enabled"})
	}
	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	rows, err := c.repo.ListHistory(ctx.Request().Context(), limit)
	if err != nil {
		c.log.Error("failed to list alert history", logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list history"})
	}
	return ctx.JSON(http.StatusOK, map[string]any{"history": rows, "count": len(rows)})
}

// StreamAlerts pushes collection updates to the client over SSE. The
// initial state is sent immediately; afterwards every engine publish
// produces one event. The hub drops updates for slow readers, so the
// stream can skip intermediate states but always converges on the latest.
func (c *Controller) StreamAlerts(ctx echo.Context) error {
	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	id, updates := c.hub.Subscribe()
	defer c.hub.Unsubscribe(id)

	alerts := c.engine.Alerts()
	if err := writeSSE(res, map[string]any{"alerts": alerts, "unreadCount": alerts.UnreadCount()}); err != nil {
		return nil
	}

	reqCtx := ctx.Request().Context()
	for {
		select {
		case <-reqCtx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeSSE(res, update); err != nil {
				return nil
			}
		}
	}
}

func writeSSE(res *echo.Response, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "data: %s\n\n", data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
