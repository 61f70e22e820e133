package builder_test

import (
	"fmt"
	"log"

	"github.com/locvowork/employee_activity_nlq/internal/repository/builder"
)

// Example_orOperator demonstrates using the Or() method
func Example_orOperator() {
	qb := builder.NewSQLBuilder().
		Select("e.full_name", "e.department").
		From("employees e").
		Or("e.department = ?", "Sales").
		Or("e.department = ?", "Marketing")

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: SELECT e.full_name, e.department FROM employees e WHERE e.department = $1 OR e.department = $2
	// Args: [Sales Marketing]
}

// Example_whereGroup demonstrates a name comparison scoped to a single week
func Example_whereGroup() {
	qb := builder.NewSQLBuilder().
		Select("e.full_name", "ea.hours_worked").
		From("employees e").
		Join("INNER", "employee_activities ea", "e.id = ea.employee_id").
		Where("ea.week_number = ?", 1).
		WhereGroup(func(g *builder.SQLBuilder) *builder.SQLBuilder {
			return g.
				Or("LOWER(e.full_name) = LOWER(?)", "Wei Zhang").
				Or("LOWER(e.full_name) = LOWER(?)", "Tao Huang")
		}).
		OrderBy("e.full_name")

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: SELECT e.full_name, ea.hours_worked FROM employees e INNER JOIN employee_activities ea ON e.id = ea.employee_id WHERE ea.week_number = $1 AND (LOWER(e.full_name) = LOWER($2) OR LOWER(e.full_name) = LOWER($3)) ORDER BY e.full_name
	// Args: [1 Wei Zhang Tao Huang]
}

// Example_groupBy demonstrates a ranked aggregate
func Example_groupBy() {
	qb := builder.NewSQLBuilder().
		Select("e.full_name", "SUM(ea.hours_worked) AS total_hours").
		From("employees e").
		Join("INNER", "employee_activities ea", "e.id = ea.employee_id").
		Where("ea.week_number BETWEEN ? AND ?", 7, 10).
		GroupBy("e.id", "e.full_name").
		OrderBy("total_hours DESC").
		Limit(3)

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: SELECT e.full_name, SUM(ea.hours_worked) AS total_hours FROM employees e INNER JOIN employee_activities ea ON e.id = ea.employee_id WHERE ea.week_number BETWEEN $1 AND $2 GROUP BY e.id, e.full_name ORDER BY total_hours DESC LIMIT 3
	// Args: [7 10]
}

// Example_buildSafe demonstrates using BuildSafe() for validation
func Example_buildSafe() {
	qb := builder.NewSQLBuilder().
		Select("*").
		From("employees e").
		Where("e.id = ?", 1001).
		Where("e.department = ?", "IT")

	sql, args, err := qb.BuildSafe()
	if err != nil {
		log.Printf("Error: %v\n", err)
	} else {
		fmt.Println("Valid query built successfully")
		fmt.Printf("Number of placeholders matches args: %d\n", len(args))
	}

	fmt.Println("SQL:", sql)

	// Output:
	// Valid query built successfully
	// Number of placeholders matches args: 2
	// SQL: SELECT * FROM employees e WHERE e.id = $1 AND e.department = $2
}

// Example_upsert demonstrates using OnConflict() for idempotent seeding
func Example_upsert() {
	qb := builder.NewSQLBuilder().
		Insert("calendar_weeks", "week_number", "start_date", "end_date").
		Values(1, "2024-08-28", "2024-09-03").
		OnConflict("(week_number) DO NOTHING")

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: INSERT INTO calendar_weeks (week_number, start_date, end_date) VALUES ($1, $2, $3) ON CONFLICT (week_number) DO NOTHING
	// Args: [1 2024-08-28 2024-09-03]
}
