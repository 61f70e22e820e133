package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
	"github.com/locvowork/employee_activity_nlq/internal/repository"
)

type DataSeeder struct {
	db   *sql.DB
	repo domain.EmployeeRepository
}

func NewDataSeeder(db *sql.DB) *DataSeeder {
	return &DataSeeder{db: db, repo: repository.NewEmployeeRepository(db)}
}

var (
	employeeNames = []string{
		"Wei Zhang", "Na Li", "Tao Huang", "Jing Wang", "Lei Liu", "Fang Chen",
		"Yong Yang", "Min Zhao", "Jie Wu", "Xin Zhou", "Hui Xu", "Qiang Sun",
		"Yan Ma", "Bo Zhu", "Ling Hu", "Gang Guo", "Ping He", "Hong Lin",
		"Jun Gao", "Mei Luo", "Dong Zheng", "Ying Liang", "Chao Xie", "Xia Song",
		"Kai Tang", "Rui Han", "Lan Feng", "Peng Deng", "Yu Cao", "Hao Peng",
	}

	jobTitles = map[string][]string{
		domain.DepartmentSales:               {"Sales Manager", "Sales Representative", "Account Executive"},
		domain.DepartmentMarketing:           {"Marketing Manager", "Marketing Specialist", "Content Writer"},
		domain.DepartmentProductDevelopment:  {"Product Manager", "Software Engineer", "UX Designer"},
		domain.DepartmentFinance:             {"Finance Manager", "Financial Analyst", "Accountant"},
		domain.DepartmentIT:                  {"IT Manager", "Data Analyst", "System Administrator"},
		domain.DepartmentBusinessDevelopment: {"Business Development Manager", "Partnership Manager", "Business Analyst"},
	}

	// revenueDepartments carry total_sales; every other department records NULL.
	revenueDepartments = map[string]bool{
		domain.DepartmentSales:               true,
		domain.DepartmentMarketing:           true,
		domain.DepartmentBusinessDevelopment: true,
	}

	activityPhrases = []string{
		"Prepared sales presentation for client meeting and implemented new sales strategy",
		"Attended team training session and documented key learnings",
		"Worked on quarterly report and identified areas for improvement",
		"Conducted market research and analyzed competitor strategies",
		"Implemented new feature and resolved technical challenges",
		"Fixed critical bug in production and documented solution",
		"Met with potential clients and addressed their concerns",
		"Updated documentation and improved code quality",
		"Participated in code review and suggested optimizations",
		"Analyzed customer feedback and proposed solutions",
		"Faced challenges with customer retention and proposed a new engagement strategy",
		"Prepared data analysis report for management review",
		"Led team meeting to discuss project progress and challenges",
		"Developed new marketing campaign and tracked its performance",
		"Conducted performance review and provided feedback",
	}

	hireWindowStart = time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC)
	hireWindowDays  = int(time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC).Sub(hireWindowStart).Hours() / 24)
)

// SeedOptions controls the generated dataset. The same Seed always yields the same rows.
type SeedOptions struct {
	Employees int
	Seed      int64
}

// DefaultSeedOptions seeds every well-known employee.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{Employees: len(employeeNames), Seed: 42}
}

// SeedData creates the schema and fills employees, calendar weeks and weekly activity records.
func (ds *DataSeeder) SeedData(ctx context.Context, opts SeedOptions) error {
	start := time.Now()
	fmt.Println("🚀 Seeding data...")

	if opts.Employees <= 0 || opts.Employees > len(employeeNames) {
		opts.Employees = len(employeeNames)
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	if err := EnsureSchema(ctx, ds.db); err != nil {
		return err
	}

	fmt.Println("📅 Creating calendar weeks...")
	for _, w := range domain.CalendarWeeks() {
		w := w
		if err := ds.repo.CreateCalendarWeek(ctx, &w); err != nil {
			return err
		}
	}

	fmt.Println("👥 Creating employees and activities...")
	var activityID int64
	for i := 0; i < opts.Employees; i++ {
		emp := buildEmployee(i, rng)
		if err := ds.repo.Create(ctx, &emp); err != nil {
			return err
		}

		for week := 1; week <= domain.WeekCount; week++ {
			activityID++
			a := buildActivity(activityID, emp, week, rng)
			if err := ds.repo.CreateActivity(ctx, &a); err != nil {
				return err
			}
		}
	}

	fmt.Printf("✅ Created %d employees with %d activity records\n", opts.Employees, activityID)
	fmt.Printf("🎉 Done in %v\n", time.Since(start))
	return nil
}

func buildEmployee(i int, rng *rand.Rand) domain.Employee {
	name := employeeNames[i]
	dept := domain.Departments[i%len(domain.Departments)]
	titles := jobTitles[dept]

	return domain.Employee{
		ID:         int64(i + 1),
		FullName:   name,
		Email:      emailFor(name),
		Department: dept,
		JobTitle:   titles[(i/len(domain.Departments))%len(titles)],
		HireDate:   hireWindowStart.AddDate(0, 0, rng.Intn(hireWindowDays)),
	}
}

func buildActivity(id int64, emp domain.Employee, week int, rng *rand.Rand) domain.ActivityRecord {
	a := domain.ActivityRecord{
		ID:               id,
		EmployeeID:       emp.ID,
		WeekNumber:       week,
		HoursWorked:      round(35+rng.Float64()*15, 1),
		MeetingsAttended: 2 + rng.Intn(9),
		Activities:       activityPhrases[rng.Intn(len(activityPhrases))],
	}
	if revenueDepartments[emp.Department] {
		base := 10000 + rng.Float64()*40000
		sales := round(base*(0.8+rng.Float64()*0.4), 2)
		a.TotalSales = &sales
	}
	return a
}

// emailFor maps "Wei Zhang" to wei.zhang@example.org.
func emailFor(fullName string) string {
	return strings.ToLower(strings.Join(strings.Fields(fullName), ".")) + "@example.org"
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// ClearData removes every seeded row, children first.
func (ds *DataSeeder) ClearData(ctx context.Context) error {
	fmt.Println("🗑️  Clearing data...")

	for _, table := range []string{"employee_activities", "employees", "calendar_weeks"} {
		if _, err := ds.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}

	fmt.Println("✅ Cleared SQL data")
	return nil
}
