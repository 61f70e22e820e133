package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_activity_nlq/internal/domain"
	"github.com/locvowork/employee_activity_nlq/internal/service"
	"github.com/locvowork/employee_activity_nlq/internal/service/serviceutils"
)

type EmployeeHandler struct {
	svc service.EmployeeService
}

func NewEmployeeHandler(svc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

func (h *EmployeeHandler) GetHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee ID", err)
	}

	emp, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to get employee", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee retrieved successfully", emp)
}

func (h *EmployeeHandler) ListHandler(c echo.Context) error {
	employees, err := h.svc.List(c.Request().Context(), employeeFilter(c))
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to list employees", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees listed successfully", employees)
}

func (h *EmployeeHandler) ListActivitiesHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.QueryParam("employee_id"), 10, 64)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee_id", err)
	}

	activities, err := h.svc.Activities(c.Request().Context(), id)
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to list activities", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Activities listed successfully", activities)
}

func (h *EmployeeHandler) ExportHandler(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = service.ExportFormatXLSX
	}

	data, err := h.svc.Export(c.Request().Context(), employeeFilter(c), format)
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to export employees", err)
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == service.ExportFormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	c.Response().Header().Set("Content-Type", contentType)
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="employees.%s"`, format))
	c.Response().Header().Set("Content-Transfer-Encoding", "binary")

	_, err = c.Response().Write(data)
	return err
}

func employeeFilter(c echo.Context) domain.EmployeeFilter {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	return domain.EmployeeFilter{
		Department: c.QueryParam("department"),
		Limit:      limit,
		Offset:     offset,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnknownDepartment), errors.Is(err, service.ErrUnknownFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
