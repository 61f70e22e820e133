package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
	"github.com/locvowork/employee_activity_nlq/internal/logger"
	"github.com/locvowork/employee_activity_nlq/pkg/simpleexcel"
)

const (
	// MaxPageSize caps the limit accepted by List.
	MaxPageSize = 100

	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrUnknownDepartment = errors.New("unknown department")
	ErrUnknownFormat     = errors.New("unknown export format")
)

// EmployeeService is the read-only view over the seeded dataset.
type EmployeeService interface {
	List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error)
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	Activities(ctx context.Context, employeeID int64) ([]domain.ActivityRecord, error)
	// Export renders the filtered employees and their weekly activity as xlsx or csv.
	Export(ctx context.Context, filter domain.EmployeeFilter, format string) ([]byte, error)
}

type employeeService struct {
	repo domain.EmployeeRepository
}

func NewEmployeeService(repo domain.EmployeeRepository) EmployeeService {
	return &employeeService{repo: repo}
}

func (s *employeeService) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	if filter.Department != "" && !domain.IsDepartment(filter.Department) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDepartment, filter.Department)
	}
	if filter.Limit <= 0 || filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

func (s *employeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrEmployeeNotFound, id)
	}
	return e, err
}

func (s *employeeService) Activities(ctx context.Context, employeeID int64) ([]domain.ActivityRecord, error) {
	if _, err := s.Get(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.repo.ListActivities(ctx, employeeID)
}

// employeeRow is one exported line: an employee with one week of activity.
type employeeRow struct {
	ID               int64
	FullName         string
	Department       string
	JobTitle         string
	HireDate         string
	WeekNumber       int
	HoursWorked      float64
	TotalSales       *float64
	MeetingsAttended int
}

func (s *employeeService) Export(ctx context.Context, filter domain.EmployeeFilter, format string) ([]byte, error) {
	if format == "" {
		format = ExportFormatXLSX
	}
	if format != ExportFormatXLSX && format != ExportFormatCSV {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	employees, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var rows []employeeRow
	for _, e := range employees {
		activities, err := s.repo.ListActivities(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range activities {
			rows = append(rows, employeeRow{
				ID:               e.ID,
				FullName:         e.FullName,
				Department:       e.Department,
				JobTitle:         e.JobTitle,
				HireDate:         e.HireDate.Format(domain.DateLayout),
				WeekNumber:       a.WeekNumber,
				HoursWorked:      a.HoursWorked,
				TotalSales:       a.TotalSales,
				MeetingsAttended: a.MeetingsAttended,
			})
		}
	}
	logger.DebugLog(ctx, "Exporting %d employees as %d %s rows", len(employees), len(rows), format)

	exporter := simpleexcel.NewDataExporter()
	exporter.AddSheet("Employees").
		AddSection(&simpleexcel.SectionConfig{
			ShowHeader: true,
			Data:       rows,
			Columns: []simpleexcel.ColumnConfig{
				{FieldName: "ID", Header: "ID", Width: 6},
				{FieldName: "FullName", Header: "Name", Width: 20},
				{FieldName: "Department", Header: "Department", Width: 22},
				{FieldName: "JobTitle", Header: "Job Title", Width: 28},
				{FieldName: "HireDate", Header: "Hire Date", Width: 12},
				{FieldName: "WeekNumber", Header: "Week"},
				{FieldName: "HoursWorked", Header: "Hours Worked"},
				{FieldName: "TotalSales", Header: "Total Sales", Width: 14},
				{FieldName: "MeetingsAttended", Header: "Meetings"},
			},
		})

	if format == ExportFormatCSV {
		return exporter.ToCSVBytes()
	}
	return exporter.ToBytes()
}
