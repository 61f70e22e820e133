package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements is portable between Postgres and SQLite.
// Dates are stored as ISO strings on SQLite and DATE on Postgres; both compare correctly against 'YYYY-MM-DD'.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		department TEXT NOT NULL,
		job_title TEXT NOT NULL,
		hire_date DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS calendar_weeks (
		week_number INTEGER PRIMARY KEY,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS employee_activities (
		id INTEGER PRIMARY KEY,
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		week_number INTEGER NOT NULL CHECK (week_number BETWEEN 1 AND 10),
		hours_worked DOUBLE PRECISION NOT NULL CHECK (hours_worked >= 0),
		total_sales DOUBLE PRECISION,
		meetings_attended INTEGER NOT NULL CHECK (meetings_attended >= 0),
		activities TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_employee_activities_employee ON employee_activities (employee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_employee_activities_week ON employee_activities (week_number)`,
}

// EnsureSchema creates the tables read by the query pipeline when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
