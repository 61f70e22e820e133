package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_activity_nlq/internal/service"
	"github.com/locvowork/employee_activity_nlq/internal/service/serviceutils"
)

type BenchmarkHandler struct {
	svc service.BenchmarkService
}

func NewBenchmarkHandler(svc service.BenchmarkService) *BenchmarkHandler {
	return &BenchmarkHandler{svc: svc}
}

func (h *BenchmarkHandler) RunHandler(c echo.Context) error {
	report, err := h.svc.Run(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to run benchmark", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Benchmark completed successfully", report)
}

func (h *BenchmarkHandler) ExportHandler(c echo.Context) error {
	report, err := h.svc.Run(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to run benchmark", err)
	}

	data, err := h.svc.Export(report)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to generate excel file", err)
	}

	c.Response().Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, "benchmark_report.xlsx"))
	c.Response().Header().Set("Content-Transfer-Encoding", "binary")

	_, err = c.Response().Write(data)
	return err
}
