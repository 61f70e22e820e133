// Package simpleexcel renders struct or map slices into xlsx workbooks section by section.
package simpleexcel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	SectionDirectionHorizontal = "horizontal"
	SectionDirectionVertical   = "vertical"
)

// DataExporter is the main entry point for exporting data.
type DataExporter struct {
	sheets []*SheetBuilder
}

// SectionConfig defines a block of rows in a sheet.
type SectionConfig struct {
	Title       string
	Data        interface{} // slice of structs or maps
	ShowHeader  bool
	Direction   string // "horizontal" or "vertical"
	TitleStyle  *StyleTemplate
	HeaderStyle *StyleTemplate
	Columns     []ColumnConfig
}

// ColumnConfig defines a column in a section.
type ColumnConfig struct {
	FieldName string // struct field name or map key
	Header    string
	Width     float64
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font *FontTemplate
	Fill *FillTemplate
}

type FontTemplate struct {
	Bold  bool
	Color string // hex color
}

type FillTemplate struct {
	Color string // hex color
}

// DefaultHeaderStyle is bold text on a light grey fill.
var DefaultHeaderStyle = &StyleTemplate{
	Font: &FontTemplate{Bold: true},
	Fill: &FillTemplate{Color: "#E7E6E6"},
}

func NewDataExporter() *DataExporter {
	return &DataExporter{}
}

// AddSheet starts a new sheet builder.
func (e *DataExporter) AddSheet(name string) *SheetBuilder {
	sb := &SheetBuilder{exporter: e, name: name}
	e.sheets = append(e.sheets, sb)
	return sb
}

type SheetBuilder struct {
	exporter *DataExporter
	name     string
	sections []*SectionConfig
}

func (sb *SheetBuilder) AddSection(config *SectionConfig) *SheetBuilder {
	sb.sections = append(sb.sections, config)
	return sb
}

func (sb *SheetBuilder) Build() *DataExporter {
	return sb.exporter
}

// BuildExcel renders every sheet into a new workbook. The caller closes it.
func (e *DataExporter) BuildExcel() (*excelize.File, error) {
	if len(e.sheets) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}
	f := excelize.NewFile()
	for i, sb := range e.sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sb.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sb.name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", sb.name, err)
		}
		if err := renderSections(f, sb.name, sb.sections); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ExportToExcel writes the workbook to path.
func (e *DataExporter) ExportToExcel(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	return e.ToWriter(out)
}

// ToBytes exports the workbook to an in-memory byte slice.
func (e *DataExporter) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.ToWriter(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToWriter writes the workbook to w.
func (e *DataExporter) ToWriter(w io.Writer) error {
	f, err := e.BuildExcel()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ToCSV writes the first sheet as CSV, one line per rendered row.
func (e *DataExporter) ToCSV(w io.Writer) error {
	f, err := e.BuildExcel()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(e.sheets[0].name)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}
	csvWriter := csv.NewWriter(w)
	for _, row := range rows {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// ToCSVBytes exports the first sheet as CSV and returns it as a byte slice.
func (e *DataExporter) ToCSVBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.ToCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderSections lays vertical sections out top to bottom with one blank row between them,
// and horizontal sections left to right from row 1.
func renderSections(f *excelize.File, sheet string, sections []*SectionConfig) error {
	nextRow := 1
	nextCol := 1

	for _, sec := range sections {
		startCol, row := 1, nextRow
		if sec.Direction == SectionDirectionHorizontal {
			startCol, row = nextCol, 1
		}

		if sec.Title != "" {
			cell, _ := excelize.CoordinatesToCellName(startCol, row)
			if err := f.SetCellValue(sheet, cell, sec.Title); err != nil {
				return err
			}
			if sec.TitleStyle != nil {
				styleID, err := createStyle(f, sec.TitleStyle)
				if err != nil {
					return err
				}
				end := cell
				if len(sec.Columns) > 1 {
					end, _ = excelize.CoordinatesToCellName(startCol+len(sec.Columns)-1, row)
					if err := f.MergeCell(sheet, cell, end); err != nil {
						return err
					}
				}
				if err := f.SetCellStyle(sheet, cell, end, styleID); err != nil {
					return err
				}
			}
			row++
		}

		if sec.ShowHeader {
			style := sec.HeaderStyle
			if style == nil {
				style = DefaultHeaderStyle
			}
			styleID, err := createStyle(f, style)
			if err != nil {
				return err
			}
			for i, col := range sec.Columns {
				cell, _ := excelize.CoordinatesToCellName(startCol+i, row)
				if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
					return err
				}
				if col.Width > 0 {
					name, _ := excelize.ColumnNumberToName(startCol + i)
					if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
						return err
					}
				}
			}
			row++
		}

		data := reflect.ValueOf(sec.Data)
		if data.Kind() == reflect.Ptr {
			data = data.Elem()
		}
		if data.Kind() == reflect.Slice {
			for i := 0; i < data.Len(); i++ {
				item := data.Index(i)
				for j, col := range sec.Columns {
					cell, _ := excelize.CoordinatesToCellName(startCol+j, row)
					if err := f.SetCellValue(sheet, cell, extractValue(item, col.FieldName)); err != nil {
						return err
					}
				}
				row++
			}
		}

		if sec.Direction == SectionDirectionHorizontal {
			nextCol = startCol + len(sec.Columns) + 1
			if row+1 > nextRow {
				nextRow = row + 1
			}
		} else {
			nextRow = row + 1
		}
	}
	return nil
}

func extractValue(item reflect.Value, fieldName string) interface{} {
	for item.Kind() == reflect.Ptr || item.Kind() == reflect.Interface {
		if item.IsNil() {
			return ""
		}
		item = item.Elem()
	}
	switch item.Kind() {
	case reflect.Struct:
		if f := item.FieldByName(fieldName); f.IsValid() {
			return cellValue(f)
		}
	case reflect.Map:
		if v := item.MapIndex(reflect.ValueOf(fieldName)); v.IsValid() {
			return cellValue(v)
		}
	}
	return ""
}

// cellValue dereferences pointers so nil renders as an empty cell.
func cellValue(v reflect.Value) interface{} {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	return v.Interface()
}

func createStyle(f *excelize.File, tmpl *StyleTemplate) (int, error) {
	style := &excelize.Style{}
	if tmpl.Font != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Font.Bold,
			Color: strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	return f.NewStyle(style)
}
