package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
	"github.com/locvowork/employee_activity_nlq/internal/logger"
	"github.com/locvowork/employee_activity_nlq/internal/metrics"
	"github.com/locvowork/employee_activity_nlq/pkg/dataflow"
	"github.com/locvowork/employee_activity_nlq/pkg/simpleexcel"
)

// BenchmarkQuestions is the fixed regression battery.
var BenchmarkQuestions = []string{
	"What is the email address of the employee who is the Sales Manager?",
	"Which employee in the company works in the Product Development department?",
	"What was the sales revenue of 'Wei Zhang' for the week starting on '2024-08-28'?",
	"Who are the employees working in the 'Finance' department?",
	"Retrieve the total number of meetings attended by 'Na Li' in her weekly updates.",
	"Which employees worked more than 40 hours during week 1?",
	"How many employees does the company have in total?",
	"What is the average hours worked by all employees during week 2?",
	"How much total sales revenue has the Sales department generated to date?",
	"What is the total sales revenue generated by the company during week 1?",
	"Who worked the most hours during the first week of September 2024?",
	"Which employee attended the most meetings during week 2?",
	"Which employees in the company were hired during a time of industry recession?",
	"Who are the employees that faced challenges with customer retention, and what solutions did they propose?",
	"Which employees work in roles that likely require data analysis or reporting skills?",
	"List all employees who work in the IT department within the company.",
	"Compare the hours worked by 'Wei Zhang' and 'Tao Huang' during week 1.",
	"Who are the top 3 employees by total hours worked during the last 4 weeks?",
	"Who achieved the highest sales revenue in a single week, and when?",
	"What is the total number of hours worked and average sales revenue for employees in the Business Development department?",
}

// BenchmarkService runs the question battery and exports its report.
type BenchmarkService interface {
	Run(ctx context.Context) (*domain.BenchmarkReport, error)
	Export(report *domain.BenchmarkReport) ([]byte, error)
}

type benchmarkService struct {
	queries   QueryService
	clock     clockwork.Clock
	questions []string
}

func NewBenchmarkService(queries QueryService, clock clockwork.Clock, questions []string) BenchmarkService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if len(questions) == 0 {
		questions = BenchmarkQuestions
	}
	return &benchmarkService{queries: queries, clock: clock, questions: questions}
}

// benchmarkRun accumulates one run. It is never shared between runs.
type benchmarkRun struct {
	report    domain.BenchmarkReport
	totalTime float64
}

func (r *benchmarkRun) add(res domain.BenchmarkResult) {
	r.report.TotalQueries++
	r.totalTime += res.ExecutionTime
	if res.Success {
		r.report.SuccessfulQueries++
		r.report.QueryTypeDistribution[res.Intent]++
	}
	r.report.Results = append(r.report.Results, res)
}

func (r *benchmarkRun) finish() *domain.BenchmarkReport {
	if r.report.TotalQueries > 0 {
		r.report.AverageExecutionTime = r.totalTime / float64(r.report.TotalQueries)
	}
	return &r.report
}

// Run answers every question strictly in order.
func (s *benchmarkService) Run(ctx context.Context) (*domain.BenchmarkReport, error) {
	run := &benchmarkRun{report: domain.BenchmarkReport{
		QueryTypeDistribution: make(map[string]int),
		Results:               make([]domain.BenchmarkResult, 0, len(s.questions)),
	}}

	results := dataflow.Map(ctx, dataflow.From(ctx, s.questions...), s.runOne, dataflow.WithWorkers(1))
	err := dataflow.ForEach(ctx, results, func(_ context.Context, res domain.BenchmarkResult) error {
		run.add(res)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("benchmark interrupted: %w", err)
	}

	report := run.finish()
	metrics.BenchmarkRunsTotal.Inc()
	if report.TotalQueries > 0 {
		metrics.BenchmarkSuccessRatio.Set(float64(report.SuccessfulQueries) / float64(report.TotalQueries))
	}
	logger.InfoLog(ctx, "Benchmark finished: %d/%d successful, avg %.3fs",
		report.SuccessfulQueries, report.TotalQueries, report.AverageExecutionTime)
	return report, nil
}

func (s *benchmarkService) runOne(ctx context.Context, question string) (domain.BenchmarkResult, error) {
	start := s.clock.Now()
	res, err := s.queries.Ask(ctx, "", question)
	out := domain.BenchmarkResult{
		Query:         question,
		ExecutionTime: s.clock.Since(start).Seconds(),
	}
	if err != nil {
		out.Error = err.Error()
		return out, nil
	}

	answer := res.Answer()
	out.Intent = string(res.Intent)
	out.Response = answer.Response
	out.Success = !res.Failed()
	if answer.SQLQuery != nil {
		out.SQLQuery = *answer.SQLQuery
	}
	if answer.Error != nil {
		out.Error = *answer.Error
	}
	return out, nil
}

type distributionRow struct {
	Intent string
	Count  int
}

type benchmarkSummary struct {
	TotalQueries         int     `excel:"total_queries"`
	SuccessfulQueries    int     `excel:"successful_queries"`
	AverageExecutionTime float64 `excel:"average_execution_time"`
}

// Export renders the report as an xlsx workbook with a Summary and a Results sheet.
func (s *benchmarkService) Export(report *domain.BenchmarkReport) ([]byte, error) {
	summary, err := simpleexcel.ConvertToDynamicData(benchmarkSummary{
		TotalQueries:         report.TotalQueries,
		SuccessfulQueries:    report.SuccessfulQueries,
		AverageExecutionTime: report.AverageExecutionTime,
	})
	if err != nil {
		return nil, err
	}

	intents := make([]string, 0, len(report.QueryTypeDistribution))
	for intent := range report.QueryTypeDistribution {
		intents = append(intents, intent)
	}
	sort.Strings(intents)
	distribution := make([]distributionRow, 0, len(intents))
	for _, intent := range intents {
		distribution = append(distribution, distributionRow{Intent: intent, Count: report.QueryTypeDistribution[intent]})
	}

	exporter := simpleexcel.NewDataExporter()
	exporter.AddSheet("Summary").
		AddSection(&simpleexcel.SectionConfig{
			Title:      "Benchmark Summary",
			TitleStyle: &simpleexcel.StyleTemplate{Font: &simpleexcel.FontTemplate{Bold: true}},
			ShowHeader: true,
			Data:       []interface{}{summary},
			Columns: []simpleexcel.ColumnConfig{
				{FieldName: "total_queries", Header: "Total Queries", Width: 16},
				{FieldName: "successful_queries", Header: "Successful Queries", Width: 20},
				{FieldName: "average_execution_time", Header: "Average Time (s)", Width: 18},
			},
		}).
		AddSection(&simpleexcel.SectionConfig{
			Title:      "Query Type Distribution",
			ShowHeader: true,
			Data:       distribution,
			Columns: []simpleexcel.ColumnConfig{
				{FieldName: "Intent", Header: "Intent"},
				{FieldName: "Count", Header: "Successful"},
			},
		})

	exporter.AddSheet("Results").
		AddSection(&simpleexcel.SectionConfig{
			ShowHeader: true,
			Data:       report.Results,
			Columns: []simpleexcel.ColumnConfig{
				{FieldName: "Query", Header: "Question", Width: 60},
				{FieldName: "Intent", Header: "Intent", Width: 14},
				{FieldName: "Success", Header: "Success", Width: 10},
				{FieldName: "ExecutionTime", Header: "Time (s)", Width: 10},
				{FieldName: "Response", Header: "Response", Width: 80},
				{FieldName: "SQLQuery", Header: "SQL", Width: 80},
				{FieldName: "Error", Header: "Error", Width: 40},
			},
		})

	return exporter.ToBytes()
}
