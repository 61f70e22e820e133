package domain

import "time"

// ==================== EMPLOYEE ACTIVITY ====================

const (
	DepartmentSales               = "Sales"
	DepartmentMarketing           = "Marketing"
	DepartmentProductDevelopment  = "Product Development"
	DepartmentFinance             = "Finance"
	DepartmentIT                  = "IT"
	DepartmentBusinessDevelopment = "Business Development"
)

// Departments is the closed department enumeration.
var Departments = []string{
	DepartmentSales,
	DepartmentMarketing,
	DepartmentProductDevelopment,
	DepartmentFinance,
	DepartmentIT,
	DepartmentBusinessDevelopment,
}

// IsDepartment reports whether name is one of the canonical departments.
func IsDepartment(name string) bool {
	for _, d := range Departments {
		if d == name {
			return true
		}
	}
	return false
}

// Employee represents the employees table
type Employee struct {
	ID         int64     `json:"id" db:"id"`
	FullName   string    `json:"full_name" db:"full_name"`
	Email      string    `json:"email" db:"email"`
	Department string    `json:"department" db:"department"`
	JobTitle   string    `json:"job_title" db:"job_title"`
	HireDate   time.Time `json:"hire_date" db:"hire_date"`
}

// ActivityRecord represents one weekly row of the employee_activities table.
// TotalSales is nil for roles that do not generate revenue.
type ActivityRecord struct {
	ID               int64    `json:"id" db:"id"`
	EmployeeID       int64    `json:"employee_id" db:"employee_id"`
	WeekNumber       int      `json:"week_number" db:"week_number"`
	HoursWorked      float64  `json:"hours_worked" db:"hours_worked"`
	TotalSales       *float64 `json:"total_sales" db:"total_sales"`
	MeetingsAttended int      `json:"meetings_attended" db:"meetings_attended"`
	Activities       string   `json:"activities" db:"activities"`
}

// CalendarWeek maps a week number to its 7-day date range.
type CalendarWeek struct {
	WeekNumber int       `json:"week_number" db:"week_number"`
	StartDate  time.Time `json:"start_date" db:"start_date"`
	EndDate    time.Time `json:"end_date" db:"end_date"`
}

// ==================== REPORTING CALENDAR ====================

const (
	// WeekCount is the dataset horizon in weeks.
	WeekCount  = 10
	DateLayout = "2006-01-02"
)

// CalendarEpoch is the first day of week 1.
var CalendarEpoch = time.Date(2024, time.August, 28, 0, 0, 0, 0, time.UTC)

// CalendarWeeks returns the contiguous weeks 1..WeekCount anchored at CalendarEpoch.
func CalendarWeeks() []CalendarWeek {
	weeks := make([]CalendarWeek, 0, WeekCount)
	for n := 1; n <= WeekCount; n++ {
		start := CalendarEpoch.AddDate(0, 0, 7*(n-1))
		weeks = append(weeks, CalendarWeek{
			WeekNumber: n,
			StartDate:  start,
			EndDate:    start.AddDate(0, 0, 6),
		})
	}
	return weeks
}

// WeekOf returns the week number containing t, or 0 when t is outside the horizon.
func WeekOf(t time.Time) int {
	for _, w := range CalendarWeeks() {
		if !t.Before(w.StartDate) && !t.After(w.EndDate) {
			return w.WeekNumber
		}
	}
	return 0
}

// ==================== QUERY ANSWERS ====================

// QueryRequest is the body accepted by the query endpoint.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the structured answer record returned for every question.
type QueryResponse struct {
	Response   string  `json:"response"`
	Confidence float64 `json:"confidence"`
	SQLQuery   *string `json:"sql_query"`
	Error      *string `json:"error"`
}

// BenchmarkResult is the outcome of one canned question.
type BenchmarkResult struct {
	Query         string  `json:"query"`
	Intent        string  `json:"intent"`
	Response      string  `json:"response"`
	SQLQuery      string  `json:"sql_query"`
	Success       bool    `json:"success"`
	Error         string  `json:"error,omitempty"`
	ExecutionTime float64 `json:"execution_time"`
}

// BenchmarkReport aggregates a full run of the question battery.
type BenchmarkReport struct {
	TotalQueries          int               `json:"total_queries"`
	SuccessfulQueries     int               `json:"successful_queries"`
	AverageExecutionTime  float64           `json:"average_execution_time"`
	QueryTypeDistribution map[string]int    `json:"query_type_distribution"`
	Results               []BenchmarkResult `json:"results"`
}
