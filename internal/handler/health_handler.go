package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_activity_nlq/internal/service/serviceutils"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) HealthzHandler(c echo.Context) error {
	if err := h.db.PingContext(c.Request().Context()); err != nil {
		return serviceutils.ResponseError(c, http.StatusServiceUnavailable, "Database unavailable", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "ok", nil)
}
