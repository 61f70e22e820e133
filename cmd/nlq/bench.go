package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
)

var xlsxPath string

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the canned question battery and print a report",
	Args:  cobra.NoArgs,
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the report to this xlsx file")
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.Benchmark.Run(ctx)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)

	if xlsxPath != "" {
		data, err := app.Benchmark.Export(report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", xlsxPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", xlsxPath)
	}
	return nil
}

func printReport(w io.Writer, report *domain.BenchmarkReport) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetRowLine(true)
	table.SetHeader([]string{"#", "Question", "Intent", "OK", "Time (s)", "Response"})
	for i, res := range report.Results {
		ok := "yes"
		if !res.Success {
			ok = "no"
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			truncate(res.Query, 60),
			res.Intent,
			ok,
			fmt.Sprintf("%.3f", res.ExecutionTime),
			truncate(res.Response, 80),
		})
	}
	table.Render()

	intents := make([]string, 0, len(report.QueryTypeDistribution))
	for intent := range report.QueryTypeDistribution {
		intents = append(intents, intent)
	}
	sort.Strings(intents)

	summary := tablewriter.NewWriter(w)
	summary.SetAutoFormatHeaders(false)
	summary.SetHeader([]string{"Metric", "Value"})
	summary.Append([]string{"total_queries", strconv.Itoa(report.TotalQueries)})
	summary.Append([]string{"successful_queries", strconv.Itoa(report.SuccessfulQueries)})
	summary.Append([]string{"average_execution_time", fmt.Sprintf("%.3f", report.AverageExecutionTime)})
	for _, intent := range intents {
		summary.Append([]string{"intent:" + intent, strconv.Itoa(report.QueryTypeDistribution[intent])})
	}
	summary.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
