package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/channelpulse/channelpulse-go/internal/alerting"
)

// ListRules returns the current rule list.
func (c *Controller) ListRules(ctx echo.Context) error {
	rules := c.engine.Rules()
	return ctx.JSON(http.StatusOK, map[string]any{
		"rules": rules,
		"count": len(rules),
	})
}

// CreateRule validates and adds a rule. The assigned ID is generated
// server-side; any client-supplied ID is ignored.
func (c *Controller) CreateRule(ctx echo.Context) error {
	var rule alerting.AlertRule
	if err := ctx.Bind(&rule); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	added, err := c.engine.AddRule(rule)
	if err != nil {
		if errors.Is(err, alerting.ErrEmptyRuleName) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "rule name is required"})
		}
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create rule"})
	}
	return ctx.JSON(http.StatusCreated, added)
}

// ToggleRule flips a rule's enabled flag. Unknown IDs return 404; the
// engine treats them as a no-op, since the rule may have been deleted by
// another session.
func (c *Controller) ToggleRule(ctx echo.Context) error {
	if !c.engine.ToggleRule(ctx.Param("id")) {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "rule not found"})
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetSchema returns the rule-builder catalog.
func (c *Controller) GetSchema(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, alerting.GetSchema())
}
