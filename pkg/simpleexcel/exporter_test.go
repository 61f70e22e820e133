package simpleexcel

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type resultRow struct {
	Query   string
	Success bool
	Seconds float64
	SQL     *string
}

func TestDataExporter_Sections(t *testing.T) {
	sql := "SELECT COUNT(*) FROM employees e"
	exporter := NewDataExporter()
	exporter.AddSheet("Benchmark").
		AddSection(&SectionConfig{
			Title:      "Summary",
			ShowHeader: true,
			Columns: []ColumnConfig{
				{FieldName: "total", Header: "Total"},
				{FieldName: "ok", Header: "Successful"},
			},
			Data: []map[string]interface{}{{"total": 2, "ok": 1}},
		}).
		AddSection(&SectionConfig{
			Title:      "Results",
			TitleStyle: &StyleTemplate{Font: &FontTemplate{Bold: true}},
			ShowHeader: true,
			Columns: []ColumnConfig{
				{FieldName: "Query", Header: "Question", Width: 60},
				{FieldName: "Success", Header: "Success"},
				{FieldName: "SQL", Header: "SQL"},
			},
			Data: []resultRow{
				{Query: "How many employees?", Success: true, Seconds: 0.01, SQL: &sql},
				{Query: "Gibberish", Success: false},
			},
		})

	f, err := exporter.BuildExcel()
	require.NoError(t, err)
	defer f.Close()

	cell := func(axis string) string {
		v, err := f.GetCellValue("Benchmark", axis)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Summary", cell("A1"))
	assert.Equal(t, "Total", cell("A2"))
	assert.Equal(t, "2", cell("A3"))
	assert.Equal(t, "1", cell("B3"))

	// One blank row separates vertical sections.
	assert.Equal(t, "", cell("A4"))
	assert.Equal(t, "Results", cell("A5"))
	assert.Equal(t, "Question", cell("A6"))
	assert.Equal(t, "How many employees?", cell("A7"))
	assert.Equal(t, "TRUE", cell("B7"))
	assert.Equal(t, sql, cell("C7"))
	assert.Equal(t, "", cell("C8"))

	width, err := f.GetColWidth("Benchmark", "A")
	require.NoError(t, err)
	assert.Equal(t, 60.0, width)

	merged, err := f.GetMergeCells("Benchmark")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A5", merged[0].GetStartAxis())
}

func TestDataExporter_Outputs(t *testing.T) {
	exporter := NewDataExporter().
		AddSheet("One").
		AddSection(&SectionConfig{Columns: []ColumnConfig{{FieldName: "A", Header: "A"}}, Data: []map[string]interface{}{{"A": 1}}}).
		Build()
	exporter.AddSheet("Two")

	data, err := exporter.ToBytes()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"One", "Two"}, f.GetSheetList())

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, exporter.ExportToExcel(path))
	g, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer g.Close()
	v, err := g.GetCellValue("One", "A1")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestDataExporter_NoSheets(t *testing.T) {
	_, err := NewDataExporter().ToBytes()
	assert.Error(t, err)
}

func TestDataExporter_ToCSV(t *testing.T) {
	exporter := NewDataExporter()
	exporter.AddSheet("Employees").
		AddSection(&SectionConfig{
			ShowHeader: true,
			Columns: []ColumnConfig{
				{FieldName: "Query", Header: "Question"},
				{FieldName: "Seconds", Header: "Seconds"},
			},
			Data: []resultRow{
				{Query: "Who works in IT, and since when?", Seconds: 0.5},
				{Query: "How many employees?", Seconds: 2},
			},
		})
	exporter.AddSheet("Ignored").AddSection(&SectionConfig{Title: "second sheet"})

	out, err := exporter.ToCSVBytes()
	require.NoError(t, err)
	assert.Equal(t,
		"Question,Seconds\n\"Who works in IT, and since when?\",0.5\nHow many employees?,2\n",
		string(out))
}
