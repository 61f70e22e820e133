package nlq

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type templateCase struct {
	question string
	intent   Intent
}

func synthesize(t *testing.T, question string) Statement {
	t.Helper()
	rules := testRules(t)
	schema := DefaultSchema()
	intent := NewClassifier(rules).Classify(question)
	params := NewExtractor(rules, schema).Extract(question)
	stmt, err := NewTemplateSynthesizer(rules, schema).Synthesize(context.Background(), question, intent, params)
	require.NoError(t, err)
	return stmt
}

func TestTemplateSynthesizer_Exact(t *testing.T) {
	tests := []struct {
		question string
		wantSQL  string
		wantArgs []any
	}{
		{
			question: "How many employees does the company have in total?",
			wantSQL:  "SELECT COUNT(*) FROM employees e",
		},
		{
			question: "Who are the employees working in the 'Finance' department?",
			wantSQL:  "SELECT e.full_name, e.email FROM employees e WHERE e.department = $1 ORDER BY e.full_name",
			wantArgs: []any{"Finance"},
		},
		{
			question: "What is the email address of the employee who is the Sales Manager?",
			wantSQL:  "SELECT e.full_name, e.email FROM employees e WHERE LOWER(e.job_title) = LOWER($1) ORDER BY e.full_name",
			wantArgs: []any{"Sales Manager"},
		},
		{
			question: "Retrieve the total number of meetings attended by 'Na Li' in her weekly updates.",
			wantSQL: "SELECT SUM(ea.meetings_attended) AS total_meetings FROM employees e " +
				"INNER JOIN employee_activities ea ON e.id = ea.employee_id WHERE LOWER(e.full_name) = LOWER($1)",
			wantArgs: []any{"Na Li"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			stmt := synthesize(t, tt.question)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
			assert.Equal(t, tt.wantArgs, stmt.Args)
		})
	}
}

func TestTemplateSynthesizer_Shapes(t *testing.T) {
	t.Run("point with name and date joins the calendar", func(t *testing.T) {
		stmt := synthesize(t, "What was the sales revenue of 'Wei Zhang' for the week starting on '2024-08-28'?")
		assert.Contains(t, stmt.SQL, "ea.total_sales")
		assert.Contains(t, stmt.SQL, "INNER JOIN calendar_weeks cw ON ea.week_number = cw.week_number")
		assert.Contains(t, stmt.SQL, "cw.start_date <= $2 AND cw.end_date >= $3")
		assert.Equal(t, []any{"Wei Zhang", "2024-08-28", "2024-08-28"}, stmt.Args)
	})

	t.Run("top n over a week range", func(t *testing.T) {
		stmt := synthesize(t, "Who are the top 3 employees by total hours worked during the last 4 weeks?")
		assert.Contains(t, stmt.SQL, "SUM(ea.hours_worked) AS total_hours")
		assert.Contains(t, stmt.SQL, "ea.week_number BETWEEN $1 AND $2")
		assert.Contains(t, stmt.SQL, "GROUP BY e.id, e.full_name ORDER BY total_hours DESC, e.full_name LIMIT 3")
		assert.Equal(t, []any{7, 10}, stmt.Args)
	})

	t.Run("single week ranking excludes null sales", func(t *testing.T) {
		stmt := synthesize(t, "Who achieved the highest sales revenue in a single week, and when?")
		assert.Contains(t, stmt.SQL, "ea.total_sales IS NOT NULL")
		assert.Contains(t, stmt.SQL, "cw.start_date")
		assert.Contains(t, stmt.SQL, "ORDER BY ea.total_sales DESC, e.full_name LIMIT 1")
	})

	t.Run("first week of a month", func(t *testing.T) {
		stmt := synthesize(t, "Who worked the most hours during the first week of September 2024?")
		assert.Contains(t, stmt.SQL, "cw.start_date <= $1 AND cw.end_date >= $2")
		assert.Equal(t, []any{"2024-09-01", "2024-09-01"}, stmt.Args)
		assert.Contains(t, stmt.SQL, "LIMIT 1")
	})

	t.Run("threshold match", func(t *testing.T) {
		stmt := synthesize(t, "Which employees worked more than 40 hours during week 1?")
		assert.Contains(t, stmt.SQL, "ea.hours_worked > $1 AND ea.week_number = $2")
		assert.Equal(t, []any{40.0, 1}, stmt.Args)
	})

	t.Run("average with a metric and a sum", func(t *testing.T) {
		stmt := synthesize(t, "What is the total number of hours worked and average sales revenue for employees in the Business Development department?")
		assert.Contains(t, stmt.SQL, "SUM(ea.hours_worked) AS total_hours, AVG(ea.total_sales) AS avg_sales")
		assert.Contains(t, stmt.SQL, "e.department = $1")
		assert.Equal(t, []any{"Business Development"}, stmt.Args)
	})

	t.Run("sales department is not a sales metric cue", func(t *testing.T) {
		stmt := synthesize(t, "How many employees work in the Sales department?")
		assert.Equal(t, "SELECT COUNT(*) FROM employees e WHERE e.department = $1", stmt.SQL)
	})

	t.Run("bare department name is a filter", func(t *testing.T) {
		stmt := synthesize(t, "How many employees work in Sales?")
		assert.Equal(t, "SELECT COUNT(*) FROM employees e WHERE e.department = $1", stmt.SQL)
		assert.Equal(t, []any{"Sales"}, stmt.Args)

		stmt = synthesize(t, "List all employees in Sales.")
		assert.Contains(t, stmt.SQL, "WHERE e.department = $1")
		assert.NotContains(t, stmt.SQL, "LIMIT")
		assert.Equal(t, []any{"Sales"}, stmt.Args)
	})

	t.Run("employee count with a threshold", func(t *testing.T) {
		stmt := synthesize(t, "How many employees worked more than 45 hours?")
		assert.Equal(t,
			"SELECT COUNT(*) AS qualifying_employees FROM (SELECT e.id FROM employees e INNER JOIN employee_activities ea ON e.id = ea.employee_id GROUP BY e.id HAVING MAX(ea.hours_worked) > $1) AS qualifying",
			stmt.SQL)
		assert.Equal(t, []any{45.0}, stmt.Args)
	})

	t.Run("employee count with a total threshold", func(t *testing.T) {
		stmt := synthesize(t, "How many employees in the IT department worked more than 150 hours in total during weeks 1 to 4?")
		assert.Equal(t,
			"SELECT COUNT(*) AS qualifying_employees FROM (SELECT e.id FROM employees e INNER JOIN employee_activities ea ON e.id = ea.employee_id WHERE ea.week_number BETWEEN $1 AND $2 AND e.department = $3 GROUP BY e.id HAVING SUM(ea.hours_worked) > $4) AS qualifying",
			stmt.SQL)
		assert.Equal(t, []any{1, 4, "IT", 150.0}, stmt.Args)
	})

	t.Run("employee count below a threshold", func(t *testing.T) {
		stmt := synthesize(t, "How many employees worked less than 35 hours?")
		assert.Contains(t, stmt.SQL, "HAVING MIN(ea.hours_worked) < $1")
		assert.Equal(t, []any{35.0}, stmt.Args)
	})

	t.Run("metric total with a row threshold", func(t *testing.T) {
		stmt := synthesize(t, "What is the total sales revenue from activity weeks over 5000?")
		assert.Equal(t,
			"SELECT SUM(ea.total_sales) AS total_sales FROM employees e INNER JOIN employee_activities ea ON e.id = ea.employee_id WHERE ea.total_sales IS NOT NULL AND ea.total_sales > $1",
			stmt.SQL)
		assert.Equal(t, []any{5000.0}, stmt.Args)
	})

	t.Run("recession window", func(t *testing.T) {
		stmt := synthesize(t, "Which employees in the company were hired during a time of industry recession?")
		assert.Contains(t, stmt.SQL, "e.hire_date BETWEEN $1 AND $2")
		assert.Equal(t, []any{"2020-02-01", "2020-12-31"}, stmt.Args)
	})

	t.Run("role topic", func(t *testing.T) {
		stmt := synthesize(t, "Which employees work in roles that likely require data analysis or reporting skills?")
		assert.Contains(t, stmt.SQL, "(LOWER(e.job_title) LIKE $1 OR LOWER(e.job_title) LIKE $2")
		assert.Contains(t, stmt.Args, "%analyst%")
	})

	t.Run("activity search", func(t *testing.T) {
		stmt := synthesize(t, "Who are the employees that faced challenges with customer retention, and what solutions did they propose?")
		assert.Contains(t, stmt.SQL, "LOWER(ea.activities) LIKE $1")
		assert.Equal(t, []any{"%customer retention%"}, stmt.Args)
	})

	t.Run("department breakdown", func(t *testing.T) {
		stmt := synthesize(t, "What is the average hours worked by department?")
		assert.Contains(t, stmt.SQL, "SELECT e.department, AVG(ea.hours_worked) AS avg_hours")
		assert.Contains(t, stmt.SQL, "GROUP BY e.department ORDER BY e.department")
	})

	t.Run("unfiltered listing is bounded", func(t *testing.T) {
		stmt := synthesize(t, "List all employees")
		assert.Contains(t, stmt.SQL, "LIMIT 10")
	})
}

func TestTemplateSynthesizer_RankingIsOrderedAndBounded(t *testing.T) {
	for _, question := range []string{
		"Who worked the most hours during the first week of September 2024?",
		"Which employee attended the most meetings during week 2?",
		"Who are the top 3 employees by total hours worked during the last 4 weeks?",
		"Who achieved the highest sales revenue in a single week, and when?",
		"Which department has the highest total sales?",
		"Who attended the fewest meetings?",
		"Which employee in Marketing is the best performer?",
	} {
		t.Run(question, func(t *testing.T) {
			require.Equal(t, IntentRanking, NewClassifier(testRules(t)).Classify(question))
			stmt := synthesize(t, question)
			assert.Contains(t, stmt.SQL, " ORDER BY ")
			assert.Regexp(t, `LIMIT \d+$`, stmt.SQL)
			if strings.Contains(stmt.SQL, "ea.total_sales") {
				assert.Contains(t, stmt.SQL, "ea.total_sales IS NOT NULL")
			}
		})
	}
}

func TestTemplateSynthesizer_BindsUserText(t *testing.T) {
	question := "What is the email address of 'Robert; DROP TABLE employees'?"
	stmt := synthesize(t, question)

	assert.NotContains(t, stmt.SQL, "DROP")
	assert.Equal(t, []any{"Robert; DROP TABLE employees"}, stmt.Args)
	assert.Contains(t, stmt.Display(), "'Robert; DROP TABLE employees'")
}

func TestTemplateSynthesizer_EveryIntent(t *testing.T) {
	rules := testRules(t)
	synth := NewTemplateSynthesizer(rules, DefaultSchema())
	for _, intent := range Intents() {
		stmt, err := synth.Synthesize(context.Background(), "anything", intent, Params{})
		require.NoError(t, err, intent)
		assert.NotEmpty(t, stmt.SQL, intent)
	}

	_, err := synth.Synthesize(context.Background(), "anything", Intent("gossip"), Params{})
	assert.ErrorIs(t, err, ErrNoTemplate)
}

func TestStatement_Display(t *testing.T) {
	stmt := Statement{
		SQL:  "SELECT e.email FROM employees e WHERE e.full_name = $1 AND ea.week_number = $2 AND ea.hours_worked > $3",
		Args: []any{"O'Brien", 3, 40.5},
	}
	assert.Equal(t,
		"SELECT e.email FROM employees e WHERE e.full_name = 'O''Brien' AND ea.week_number = 3 AND ea.hours_worked > 40.5",
		stmt.Display())
}
