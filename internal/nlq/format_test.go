package nlq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter(DefaultSchema())

	tests := []struct {
		name     string
		question string
		intent   Intent
		rows     *RowSet
		want     string
	}{
		{
			name:   "no rows",
			intent: IntentMatch,
			rows:   &RowSet{Columns: []string{"full_name"}},
			want:   NoResultsMessage,
		},
		{
			name:   "nil row set",
			intent: IntentPoint,
			want:   NoResultsMessage,
		},
		{
			name:     "employee count",
			question: "How many employees does the company have in total?",
			intent:   IntentAggregation,
			rows:     &RowSet{Columns: []string{"COUNT(*)"}, Rows: [][]any{{int64(30)}}},
			want:     "Total number of employees: 30",
		},
		{
			name:     "single plain value",
			question: "Which department?",
			intent:   IntentPoint,
			rows:     &RowSet{Columns: []string{"department"}, Rows: [][]any{{"Sales"}}},
			want:     "The value is Sales.",
		},
		{
			name:     "email echo",
			question: "What is the email address of 'Wei Zhang'?",
			intent:   IntentPoint,
			rows:     &RowSet{Columns: []string{"full_name", "email"}, Rows: [][]any{{"Wei Zhang", "wei.zhang@example.org"}}},
			want:     "The email address is: wei.zhang@example.org",
		},
		{
			name:     "named field",
			question: "Which department does Na Li work in?",
			intent:   IntentPoint,
			rows:     &RowSet{Columns: []string{"full_name", "department"}, Rows: [][]any{{"Na Li", "Marketing"}}},
			want:     "The department of Na Li is: Marketing",
		},
		{
			name:     "weekly activity row",
			question: "What was the sales revenue of 'Wei Zhang' for the week starting on '2024-08-28'?",
			intent:   IntentPoint,
			rows: &RowSet{
				Columns: []string{"full_name", "week_number", "total_sales", "start_date"},
				Rows:    [][]any{{"Wei Zhang", int64(1), 23456.5, time.Date(2024, 8, 28, 0, 0, 0, 0, time.UTC)}},
			},
			want: "Wei Zhang in week 1 (starting 2024-08-28): total sales revenue ¥23,456.50 RMB.",
		},
		{
			name:     "money total",
			question: "How much total sales revenue has the Sales department generated to date?",
			intent:   IntentAggregation,
			rows:     &RowSet{Columns: []string{"total_sales"}, Rows: [][]any{{1234567.891}}},
			want:     "Total sales revenue: ¥1,234,567.89 RMB",
		},
		{
			name:     "null aggregate",
			question: "What is the total sales revenue of the IT department?",
			intent:   IntentAggregation,
			rows:     &RowSet{Columns: []string{"total_sales"}, Rows: [][]any{{nil}}},
			want:     "Total sales revenue: not available",
		},
		{
			name:     "two aggregates",
			question: "What is the total number of hours worked and average sales revenue?",
			intent:   IntentAggregation,
			rows:     &RowSet{Columns: []string{"total_hours", "avg_sales"}, Rows: [][]any{{2150.5, 30000.0}}},
			want:     "Total hours worked: 2,150.5 hours; Average sales revenue: ¥30,000.00 RMB",
		},
		{
			name:     "department breakdown",
			question: "What is the total hours worked by department?",
			intent:   IntentAggregation,
			rows: &RowSet{
				Columns: []string{"department", "total_hours"},
				Rows:    [][]any{{"Finance", 100.0}, {"IT", 200.5}},
			},
			want: "Finance: Total hours worked: 100 hours\nIT: Total hours worked: 200.5 hours",
		},
		{
			name:     "meetings",
			question: "Retrieve the total number of meetings attended by 'Na Li'",
			intent:   IntentAggregation,
			rows:     &RowSet{Columns: []string{"total_meetings"}, Rows: [][]any{{int64(52)}}},
			want:     "Total meetings attended: 52 meetings",
		},
		{
			name:     "fractional meetings",
			question: "What is the average number of meetings attended during week 2?",
			intent:   IntentAggregation,
			rows:     &RowSet{Columns: []string{"avg_meetings"}, Rows: [][]any{{1.5}}},
			want:     "Average meetings attended: 1.5 meetings",
		},
		{
			name:     "single meeting",
			question: "How many meetings did 'Na Li' attend in week 1?",
			intent:   IntentAggregation,
			rows:     &RowSet{Columns: []string{"total_meetings"}, Rows: [][]any{{int64(1)}}},
			want:     "Total meetings attended: 1 meeting",
		},
		{
			name:     "qualifying employees",
			question: "How many employees worked more than 45 hours?",
			intent:   IntentAggregation,
			rows:     &RowSet{Columns: []string{"qualifying_employees"}, Rows: [][]any{{int64(7)}}},
			want:     "Number of employees matching the condition: 7",
		},
		{
			name:     "top one with week context",
			question: "Who achieved the highest sales revenue in a single week, and when?",
			intent:   IntentRanking,
			rows: &RowSet{
				Columns: []string{"full_name", "week_number", "start_date", "total_sales"},
				Rows:    [][]any{{"Wei Zhang", int64(3), "2024-09-11", 48000.0}},
			},
			want: "Highest total sales revenue: Wei Zhang with ¥48,000.00 RMB in week 3 (starting 2024-09-11).",
		},
		{
			name:     "top n",
			question: "Who are the top 2 employees by total hours worked?",
			intent:   IntentRanking,
			rows: &RowSet{
				Columns: []string{"full_name", "total_hours"},
				Rows:    [][]any{{"Na Li", 450.0}, {"Wei Zhang", 440.5}},
			},
			want: "Top 2 by total hours worked:\n1. Na Li - 450 hours\n2. Wei Zhang - 440.5 hours",
		},
		{
			name:     "lowest",
			question: "Who worked the least hours?",
			intent:   IntentRanking,
			rows:     &RowSet{Columns: []string{"full_name", "total_hours"}, Rows: [][]any{{"Tao Huang", 380.0}}},
			want:     "Lowest total hours worked: Tao Huang with 380 hours.",
		},
		{
			name:     "listing truncated",
			question: "Who are the employees working in the 'Finance' department?",
			intent:   IntentMatch,
			rows: &RowSet{
				Columns: []string{"full_name", "email"},
				Rows: [][]any{
					{"Gang Guo", "gang.guo@example.org"},
					{"Jing Wang", "jing.wang@example.org"},
					{"Peng Deng", "peng.deng@example.org"},
					{"Xin Zhou", "xin.zhou@example.org"},
					{"Ying Liang", "ying.liang@example.org"},
				},
			},
			want: "Found 5 employees: Gang Guo, Jing Wang, Peng Deng ... and 2 more",
		},
		{
			name:     "listing capped by limit",
			question: "List all employees.",
			intent:   IntentMatch,
			rows: &RowSet{
				Columns: []string{"full_name", "email", "department"},
				Rows: [][]any{
					{"Wei Zhang", "wei.zhang@example.org", "Sales"},
					{"Na Li", "na.li@example.org", "Marketing"},
					{"Tao Huang", "tao.huang@example.org", "IT"},
					{"Lei Liu", "lei.liu@example.org", "IT"},
				},
				Capped: true,
			},
			want: "Showing the first 4 employees: Wei Zhang (Sales), Na Li (Marketing), Tao Huang (IT) ... and 1 more",
		},
		{
			name:     "listing of one",
			question: "List all employees who work in the IT department",
			intent:   IntentMatch,
			rows:     &RowSet{Columns: []string{"full_name", "email"}, Rows: [][]any{{"Lei Liu", "lei.liu@example.org"}}},
			want:     "Found 1 employee: Lei Liu",
		},
		{
			name:     "comparison lead",
			question: "Compare the total hours worked by 'Wei Zhang' and 'Tao Huang'",
			intent:   IntentComparison,
			rows: &RowSet{
				Columns: []string{"full_name", "total_hours"},
				Rows:    [][]any{{"Tao Huang", 400.5}, {"Wei Zhang", 420.0}},
			},
			want: "Tao Huang: 400.5 hours\nWei Zhang: 420 hours\nWei Zhang leads by 19.5 hours.",
		},
		{
			name:     "activity records",
			question: "Who faced challenges with customer retention?",
			intent:   IntentReasoning,
			rows: &RowSet{
				Columns: []string{"full_name", "week_number", "activities"},
				Rows:    [][]any{{"Na Li", int64(4), "Faced challenges with customer retention"}},
			},
			want: "Found 1 activity record: Na Li in week 4: Faced challenges with customer retention",
		},
		{
			name:     "unknown numeric column uses question cues",
			question: "What is the sum of sales?",
			intent:   IntentAggregation,
			rows:     &RowSet{Columns: []string{"sum"}, Rows: [][]any{{"1500.5"}}},
			want:     "The value is ¥1,500.50 RMB.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Format(tt.question, tt.rows, tt.intent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRowSet_MarkCapped(t *testing.T) {
	rows := func(n int) *RowSet {
		rs := &RowSet{Columns: []string{"full_name"}}
		for i := 0; i < n; i++ {
			rs.Rows = append(rs.Rows, []any{"x"})
		}
		return rs
	}

	full := rows(DefaultListLimit)
	full.markCapped("SELECT e.full_name FROM employees e ORDER BY e.id LIMIT 10")
	assert.True(t, full.Capped)

	short := rows(4)
	short.markCapped("SELECT e.full_name FROM employees e ORDER BY e.id LIMIT 10")
	assert.False(t, short.Capped)

	unbounded := rows(DefaultListLimit)
	unbounded.markCapped("SELECT e.full_name FROM employees e WHERE e.department = $1")
	assert.False(t, unbounded.Capped)

	top := rows(1)
	top.markCapped("SELECT e.full_name FROM employees e LIMIT 1")
	assert.False(t, top.Capped)
}

func TestFormatter_RecoversFromPanics(t *testing.T) {
	f := NewFormatter(DefaultSchema())
	malformed := &RowSet{Columns: []string{"full_name", "email"}, Rows: [][]any{{"Wei Zhang"}}}

	got, err := f.Format("What is the email address of 'Wei Zhang'?", malformed, IntentPoint)
	assert.Error(t, err)
	assert.Equal(t, FormattingErrorMessage, got)
}

func TestFormatter_NeverEmpty(t *testing.T) {
	f := NewFormatter(DefaultSchema())
	for _, intent := range Intents() {
		got, err := f.Format("anything", &RowSet{Columns: []string{"x", "y"}, Rows: [][]any{{"a", "b"}}}, intent)
		require.NoError(t, err, intent)
		assert.NotEmpty(t, got, intent)
	}
}
