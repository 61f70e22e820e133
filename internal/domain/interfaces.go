package domain

import "context"

// EmployeeFilter defines criteria for listing employees
type EmployeeFilter struct {
	Department string
	Limit      int
	Offset     int
}

// EmployeeRepository defines the interface for employee activity data access
type EmployeeRepository interface {
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id int64) (*Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	Count(ctx context.Context) (int, error)

	CreateActivity(ctx context.Context, a *ActivityRecord) error
	ListActivities(ctx context.Context, employeeID int64) ([]ActivityRecord, error)
	CreateCalendarWeek(ctx context.Context, w *CalendarWeek) error
}
