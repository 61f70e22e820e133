package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_activity_nlq/internal/domain"
	"github.com/locvowork/employee_activity_nlq/internal/nlq"
	"github.com/locvowork/employee_activity_nlq/internal/service"
	"github.com/locvowork/employee_activity_nlq/internal/service/serviceutils"
)

type QueryHandler struct {
	svc service.QueryService
}

func NewQueryHandler(svc service.QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

// AskHandler answers one question. Pipeline failures still produce a 200 with the answer record.
func (h *QueryHandler) AskHandler(c echo.Context) error {
	var req domain.QueryRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	res, err := h.svc.Ask(c.Request().Context(), requestID, req.Query)
	if errors.Is(err, nlq.ErrEmptyQuestion) {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Query must not be empty", err)
	}
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to answer query", err)
	}

	return c.JSON(http.StatusOK, res.Answer())
}
