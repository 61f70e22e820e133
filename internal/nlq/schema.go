package nlq

import (
	"fmt"
	"strings"
	"time"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
)

// SchemaVersion identifies the table layout the templates and preamble are written against.
const SchemaVersion = "2024.10"

// Column describes one column for the model preamble and the validator.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Note     string
}

// Table is a relation with the alias every generated statement must use.
type Table struct {
	Name    string
	Alias   string
	Columns []Column
}

// Schema is the static description consulted by every stage.
type Schema struct {
	Version        string
	Tables         []Table
	Departments    []string
	Weeks          []domain.CalendarWeek
	Currency       string
	CurrencySymbol string
	RecessionStart time.Time
	RecessionEnd   time.Time
}

// DefaultSchema describes employees, employee_activities and calendar_weeks.
func DefaultSchema() *Schema {
	return &Schema{
		Version: SchemaVersion,
		Tables: []Table{
			{Name: "employees", Alias: "e", Columns: []Column{
				{Name: "id", Type: "integer"},
				{Name: "full_name", Type: "text"},
				{Name: "email", Type: "text"},
				{Name: "department", Type: "text", Note: "one of the enumerated departments"},
				{Name: "job_title", Type: "text"},
				{Name: "hire_date", Type: "date"},
			}},
			{Name: "employee_activities", Alias: "ea", Columns: []Column{
				{Name: "id", Type: "integer"},
				{Name: "employee_id", Type: "integer", Note: "references employees.id"},
				{Name: "week_number", Type: "integer", Note: fmt.Sprintf("1..%d", domain.WeekCount)},
				{Name: "hours_worked", Type: "decimal"},
				{Name: "total_sales", Type: "decimal", Nullable: true, Note: "RMB; NULL for non-revenue roles"},
				{Name: "meetings_attended", Type: "integer"},
				{Name: "activities", Type: "text", Note: "free-text weekly summary"},
			}},
			{Name: "calendar_weeks", Alias: "cw", Columns: []Column{
				{Name: "week_number", Type: "integer"},
				{Name: "start_date", Type: "date"},
				{Name: "end_date", Type: "date"},
			}},
		},
		Departments:    domain.Departments,
		Weeks:          domain.CalendarWeeks(),
		Currency:       "RMB",
		CurrencySymbol: "¥",
		RecessionStart: time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC),
		RecessionEnd:   time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// Table returns the table with the given name.
func (s *Schema) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// IsColumn reports whether name is a column of any table.
func (s *Schema) IsColumn(name string) bool {
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if strings.EqualFold(c.Name, name) {
				return true
			}
		}
	}
	return false
}

// MaxWeek is the last week of the dataset horizon.
func (s *Schema) MaxWeek() int {
	return len(s.Weeks)
}

// Describe renders the schema and query rules as plain text for the completion preamble.
func (s *Schema) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Schema version %s.\n\nTables:\n", s.Version)
	for _, t := range s.Tables {
		fmt.Fprintf(&sb, "- %s (alias %s)\n", t.Name, t.Alias)
		for _, c := range t.Columns {
			fmt.Fprintf(&sb, "    %s %s", c.Name, c.Type)
			if c.Nullable {
				sb.WriteString(" NULL")
			}
			if c.Note != "" {
				fmt.Fprintf(&sb, " -- %s", c.Note)
			}
			sb.WriteString("\n")
		}
	}

	fmt.Fprintf(&sb, "\nDepartments (exact values): %s.\n", strings.Join(s.Departments, ", "))

	sb.WriteString("\nWeek anchors (week_number: start_date .. end_date):\n")
	for _, w := range s.Weeks {
		fmt.Fprintf(&sb, "    %d: %s .. %s\n", w.WeekNumber, w.StartDate.Format(domain.DateLayout), w.EndDate.Format(domain.DateLayout))
	}

	fmt.Fprintf(&sb, "\nMoney is stored in %s.\n", s.Currency)
	fmt.Fprintf(&sb, "The industry recession period is %s to %s.\n",
		s.RecessionStart.Format(domain.DateLayout), s.RecessionEnd.Format(domain.DateLayout))
	return sb.String()
}
