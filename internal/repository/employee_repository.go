package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
	"github.com/locvowork/employee_activity_nlq/internal/repository/builder"
)

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(db *sql.DB) domain.EmployeeRepository {
	return &employeeRepository{db: db}
}

var employeeColumns = []string{"e.id", "e.full_name", "e.email", "e.department", "e.job_title", "e.hire_date"}

func (r *employeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	if !domain.IsDepartment(e.Department) {
		return fmt.Errorf("unknown department %q", e.Department)
	}
	b := builder.NewSQLBuilder()
	query, args := b.Insert("employees", "id", "full_name", "email", "department", "job_title", "hire_date").
		Values(e.ID, e.FullName, e.Email, e.Department, e.JobTitle, e.HireDate.Format(domain.DateLayout)).
		OnConflict("(id) DO NOTHING").
		Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert employee %d: %w", e.ID, err)
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	b := builder.NewSQLBuilder()
	query, args := b.Select(employeeColumns...).
		From("employees e").
		Where("e.id = ?", id).
		Build()

	row := r.db.QueryRowContext(ctx, query, args...)
	var e domain.Employee
	if err := row.Scan(&e.ID, &e.FullName, &e.Email, &e.Department, &e.JobTitle, dateValue{&e.HireDate}); err != nil {
		return nil, fmt.Errorf("failed to get employee %d: %w", id, err)
	}
	return &e, nil
}

func (r *employeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	b := builder.NewSQLBuilder()
	b.Select(employeeColumns...).
		From("employees e").
		OrderBy("e.id ASC")

	if filter.Department != "" {
		b.Where("e.department = ?", filter.Department)
	}
	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		b.Offset(filter.Offset)
	}

	query, args := b.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.FullName, &e.Email, &e.Department, &e.JobTitle, dateValue{&e.HireDate}); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *employeeRepository) Count(ctx context.Context) (int, error) {
	query, args := builder.NewSQLBuilder().Select("COUNT(*)").From("employees e").Build()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return n, nil
}

func (r *employeeRepository) CreateActivity(ctx context.Context, a *domain.ActivityRecord) error {
	if a.WeekNumber < 1 || a.WeekNumber > domain.WeekCount {
		return fmt.Errorf("week number %d outside 1..%d", a.WeekNumber, domain.WeekCount)
	}

	var sales interface{}
	if a.TotalSales != nil {
		sales = *a.TotalSales
	}
	b := builder.NewSQLBuilder()
	query, args := b.Insert("employee_activities", "id", "employee_id", "week_number", "hours_worked", "total_sales", "meetings_attended", "activities").
		Values(a.ID, a.EmployeeID, a.WeekNumber, a.HoursWorked, sales, a.MeetingsAttended, a.Activities).
		OnConflict("(id) DO NOTHING").
		Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert activity %d: %w", a.ID, err)
	}
	return nil
}

func (r *employeeRepository) ListActivities(ctx context.Context, employeeID int64) ([]domain.ActivityRecord, error) {
	b := builder.NewSQLBuilder()
	query, args := b.Select("ea.id", "ea.employee_id", "ea.week_number", "ea.hours_worked", "ea.total_sales", "ea.meetings_attended", "ea.activities").
		From("employee_activities ea").
		Where("ea.employee_id = ?", employeeID).
		OrderBy("ea.week_number ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var out []domain.ActivityRecord
	for rows.Next() {
		var a domain.ActivityRecord
		var sales sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.WeekNumber, &a.HoursWorked, &sales, &a.MeetingsAttended, &a.Activities); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if sales.Valid {
			v := sales.Float64
			a.TotalSales = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *employeeRepository) CreateCalendarWeek(ctx context.Context, w *domain.CalendarWeek) error {
	b := builder.NewSQLBuilder()
	query, args := b.Insert("calendar_weeks", "week_number", "start_date", "end_date").
		Values(w.WeekNumber, w.StartDate.Format(domain.DateLayout), w.EndDate.Format(domain.DateLayout)).
		OnConflict("(week_number) DO NOTHING").
		Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert calendar week %d: %w", w.WeekNumber, err)
	}
	return nil
}

// dateValue scans DATE columns from either driver: Postgres yields time.Time, SQLite may yield text.
type dateValue struct {
	t *time.Time
}

var dateLayouts = []string{domain.DateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04:05 -0700 MST"}

func (d dateValue) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d.t = v
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		*d.t = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into date", src)
	}
}

func (d dateValue) parse(s string) error {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d.t = t
			return nil
		}
	}
	return fmt.Errorf("cannot parse date %q", s)
}
