package nlq

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
)

const (
	// NoResultsMessage is the answer for every empty row set.
	NoResultsMessage = "No matching records were found for your question."
	// FormattingErrorMessage replaces any answer whose rendering failed.
	FormattingErrorMessage = "Error formatting response"
	// ListPreviewSize is how many rows a bulk listing shows before the "and K more" suffix.
	ListPreviewSize = 3

	notAvailable = "not available"
)

var errFormatting = errors.New("formatting failed")

type valueKind int

const (
	kindPlain valueKind = iota
	kindMoney
	kindHours
	kindMeetings
	kindCount
)

type columnInfo struct {
	kind  valueKind
	label string
}

// knownColumns maps result column names to their unit and label.
var knownColumns = map[string]columnInfo{
	"total_sales":          {kindMoney, "Total sales revenue"},
	"avg_sales":            {kindMoney, "Average sales revenue"},
	"total_hours":          {kindHours, "Total hours worked"},
	"avg_hours":            {kindHours, "Average hours worked"},
	"hours_worked":         {kindHours, "Hours worked"},
	"total_meetings":       {kindMeetings, "Total meetings attended"},
	"avg_meetings":         {kindMeetings, "Average meetings attended"},
	"meetings_attended":    {kindMeetings, "Meetings attended"},
	"employee_count":       {kindCount, "Number of employees"},
	"qualifying_employees": {kindCount, "Number of employees matching the condition"},
	"count":                {kindCount, "Total count"},
	"count(*)":             {kindCount, "Total count"},
}

var fieldLabels = map[string]string{
	"email":      "email address",
	"department": "department",
	"job_title":  "job title",
	"hire_date":  "hire date",
	"full_name":  "name",
}

var (
	employeeCue = regexp.MustCompile(`(?i)\b(employees?|staff|people|workers|headcount)\b`)
	salesCue    = regexp.MustCompile(`(?i)\b(sales|revenue)\b`)
	hoursCue    = regexp.MustCompile(`(?i)\bhours?\b`)
	meetingsCue = regexp.MustCompile(`(?i)\bmeetings?\b`)
)

// Formatter renders row sets as natural-language answers.
type Formatter struct {
	schema *Schema
}

func NewFormatter(schema *Schema) *Formatter {
	return &Formatter{schema: schema}
}

// Format never panics. A failed rendering yields FormattingErrorMessage and a non-nil error.
func (f *Formatter) Format(question string, rs *RowSet, intent Intent) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = FormattingErrorMessage
			err = fmt.Errorf("%w: %v", errFormatting, r)
		}
	}()

	if rs.Empty() {
		return NoResultsMessage, nil
	}
	if len(rs.Rows) == 1 && len(rs.Columns) == 1 {
		return f.singleValue(question, rs), nil
	}

	switch intent {
	case IntentPoint:
		return f.point(question, rs), nil
	case IntentAggregation:
		return f.aggregation(question, rs), nil
	case IntentRanking:
		return f.ranking(question, rs), nil
	case IntentComparison:
		return f.comparison(question, rs), nil
	case IntentReasoning:
		return f.listing(rs, "activity record", f.activityItem), nil
	default:
		return f.listing(rs, f.listNoun(rs), f.listItem), nil
	}
}

func (f *Formatter) singleValue(question string, rs *RowSet) string {
	col := rs.Columns[0]
	v := rs.Rows[0][0]
	info, known := f.column(question, col, v)

	switch {
	case info.kind == kindCount && employeeCue.MatchString(question) && !strings.EqualFold(col, "qualifying_employees"):
		return "Total number of employees: " + f.render(info.kind, v)
	case known:
		return info.label + ": " + f.render(info.kind, v)
	case info.kind != kindPlain:
		return "The value is " + f.render(info.kind, v) + "."
	}
	if label, ok := fieldLabels[strings.ToLower(col)]; ok && label == "email address" {
		return "The email address is: " + plain(v)
	}
	return "The value is " + plain(v) + "."
}

func (f *Formatter) point(question string, rs *RowSet) string {
	if len(rs.Rows) > 1 {
		return f.listing(rs, f.listNoun(rs), f.detailItem)
	}
	row := rs.Rows[0]
	nameIdx := indexOf(rs.Columns, "full_name")

	if idx := indexOf(rs.Columns, "email"); idx >= 0 && ((len(rs.Columns) == 2 && nameIdx >= 0) || len(rs.Columns) == 1) {
		return "The email address is: " + plain(row[idx])
	}
	if indexOf(rs.Columns, "week_number") >= 0 {
		return f.activityLine(rs.Columns, row) + "."
	}
	if len(rs.Columns) == 2 && nameIdx >= 0 {
		other := 1 - nameIdx
		label := fieldLabels[strings.ToLower(rs.Columns[other])]
		if label == "" {
			label = strings.ReplaceAll(rs.Columns[other], "_", " ")
		}
		return fmt.Sprintf("The %s of %s is: %s", label, plain(row[nameIdx]), f.cell(question, rs.Columns[other], row[other]))
	}

	var parts []string
	for i, col := range rs.Columns {
		if i == nameIdx {
			continue
		}
		label := fieldLabels[strings.ToLower(col)]
		if label == "" {
			label = strings.ReplaceAll(col, "_", " ")
		}
		parts = append(parts, label+": "+f.cell(question, col, row[i]))
	}
	if nameIdx >= 0 {
		return fmt.Sprintf("Found %s (%s)", plain(row[nameIdx]), strings.Join(parts, ", "))
	}
	return "Found: " + strings.Join(parts, ", ")
}

func (f *Formatter) aggregation(question string, rs *RowSet) string {
	groupIdx, metricIdx := f.splitColumns(question, rs)
	if len(rs.Rows) == 1 && len(groupIdx) == 0 {
		return f.summary(question, rs.Columns, rs.Rows[0], metricIdx)
	}

	lines := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		key := make([]string, 0, len(groupIdx))
		for _, i := range groupIdx {
			key = append(key, groupKey(rs.Columns[i], row[i]))
		}
		lines = append(lines, strings.Join(key, " / ")+": "+f.summary(question, rs.Columns, row, metricIdx))
	}
	return strings.Join(lines, "\n")
}

// summary renders every metric cell of row as "Label: value unit", joined by "; ".
func (f *Formatter) summary(question string, cols []string, row []any, metricIdx []int) string {
	parts := make([]string, 0, len(metricIdx))
	for _, i := range metricIdx {
		info, _ := f.column(question, cols[i], row[i])
		label := info.label
		if info.kind == kindCount && employeeCue.MatchString(question) && len(metricIdx) == 1 {
			label = "Total number of employees"
		}
		parts = append(parts, label+": "+f.render(info.kind, row[i]))
	}
	return strings.Join(parts, "; ")
}

func (f *Formatter) ranking(question string, rs *RowSet) string {
	subjectIdx := indexOf(rs.Columns, "full_name")
	if subjectIdx < 0 {
		subjectIdx = indexOf(rs.Columns, "department")
	}
	_, metricIdx := f.splitColumns(question, rs)
	if subjectIdx < 0 || len(metricIdx) == 0 {
		return f.listing(rs, "result", f.listItem)
	}
	m := metricIdx[0]
	info, _ := f.column(question, rs.Columns[m], rs.Rows[0][m])

	direction := "Highest"
	if ascendingCue.MatchString(question) {
		direction = "Lowest"
	}

	if len(rs.Rows) == 1 {
		row := rs.Rows[0]
		return fmt.Sprintf("%s %s: %s with %s%s.", direction, strings.ToLower(info.label),
			plain(row[subjectIdx]), f.render(info.kind, row[m]), weekContext(rs.Columns, row))
	}

	lines := []string{fmt.Sprintf("Top %d by %s:", len(rs.Rows), strings.ToLower(info.label))}
	if direction == "Lowest" {
		lines[0] = fmt.Sprintf("Bottom %d by %s:", len(rs.Rows), strings.ToLower(info.label))
	}
	for i, row := range rs.Rows {
		lines = append(lines, fmt.Sprintf("%d. %s - %s%s", i+1, plain(row[subjectIdx]), f.render(info.kind, row[m]), weekContext(rs.Columns, row)))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) comparison(question string, rs *RowSet) string {
	subjectIdx := indexOf(rs.Columns, "full_name")
	if subjectIdx < 0 {
		subjectIdx = indexOf(rs.Columns, "department")
	}
	_, metricIdx := f.splitColumns(question, rs)
	if subjectIdx < 0 || len(metricIdx) == 0 {
		return f.listing(rs, "result", f.listItem)
	}
	m := metricIdx[0]
	info, _ := f.column(question, rs.Columns[m], rs.Rows[0][m])

	lines := make([]string, 0, len(rs.Rows)+1)
	for _, row := range rs.Rows {
		lines = append(lines, fmt.Sprintf("%s: %s%s", plain(row[subjectIdx]), f.render(info.kind, row[m]), weekContext(rs.Columns, row)))
	}

	if len(rs.Rows) == 2 && indexOf(rs.Columns, "week_number") < 0 {
		a, okA := toFloat(rs.Rows[0][m])
		b, okB := toFloat(rs.Rows[1][m])
		if okA && okB {
			leader, diff := rs.Rows[0][subjectIdx], a-b
			if b > a {
				leader, diff = rs.Rows[1][subjectIdx], b-a
			}
			if diff == 0 {
				lines = append(lines, "Both are level.")
			} else {
				lines = append(lines, fmt.Sprintf("%s leads by %s.", plain(leader), f.render(info.kind, diff)))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// listing renders at most ListPreviewSize items followed by "... and K more".
func (f *Formatter) listing(rs *RowSet, noun string, item func(cols []string, row []any) string) string {
	n := len(rs.Rows)
	shown := rs.Rows
	if n > ListPreviewSize {
		shown = shown[:ListPreviewSize]
	}
	items := make([]string, 0, len(shown))
	for _, row := range shown {
		items = append(items, item(rs.Columns, row))
	}

	sep := ", "
	for _, it := range items {
		if strings.Contains(it, ",") {
			sep = "; "
			break
		}
	}
	verb := "Found"
	if rs.Capped {
		verb = "Showing the first"
	}
	out := fmt.Sprintf("%s %s: %s", verb, english.Plural(n, noun, ""), strings.Join(items, sep))
	if n > ListPreviewSize {
		out += fmt.Sprintf(" ... and %d more", n-ListPreviewSize)
	}
	return out
}

func (f *Formatter) listNoun(rs *RowSet) string {
	if indexOf(rs.Columns, "week_number") >= 0 {
		return "record"
	}
	if indexOf(rs.Columns, "full_name") >= 0 {
		return "employee"
	}
	return "result"
}

func (f *Formatter) listItem(cols []string, row []any) string {
	return f.item(cols, row, true)
}

func (f *Formatter) detailItem(cols []string, row []any) string {
	return f.item(cols, row, false)
}

// item renders a row as "Name (extra, extra)". Bulk listings leave out the email column.
func (f *Formatter) item(cols []string, row []any, skipEmail bool) string {
	nameIdx := indexOf(cols, "full_name")
	if nameIdx < 0 {
		vals := make([]string, 0, len(row))
		for i := range row {
			vals = append(vals, f.cell("", cols[i], row[i]))
		}
		return strings.Join(vals, " ")
	}
	if indexOf(cols, "week_number") >= 0 {
		return f.activityLine(cols, row)
	}

	var extra []string
	for i, col := range cols {
		switch strings.ToLower(col) {
		case "full_name", "row_num":
			continue
		case "email":
			if skipEmail {
				continue
			}
		}
		extra = append(extra, f.cell("", col, row[i]))
	}
	if len(extra) == 0 {
		return plain(row[nameIdx])
	}
	return fmt.Sprintf("%s (%s)", plain(row[nameIdx]), strings.Join(extra, ", "))
}

func (f *Formatter) activityItem(cols []string, row []any) string {
	nameIdx := indexOf(cols, "full_name")
	textIdx := indexOf(cols, "activities")
	if nameIdx < 0 || textIdx < 0 {
		return f.listItem(cols, row)
	}
	return fmt.Sprintf("%s%s: %s", plain(row[nameIdx]), weekContext(cols, row), plain(row[textIdx]))
}

// activityLine renders a weekly activity row such as "Wei Zhang in week 2: hours worked 42.5 hours".
func (f *Formatter) activityLine(cols []string, row []any) string {
	var sb strings.Builder
	if i := indexOf(cols, "full_name"); i >= 0 {
		sb.WriteString(plain(row[i]))
	}
	sb.WriteString(weekContext(cols, row))

	var parts []string
	for i, col := range cols {
		info, ok := knownColumns[strings.ToLower(col)]
		if !ok || info.kind == kindCount {
			continue
		}
		parts = append(parts, strings.ToLower(info.label)+" "+f.render(info.kind, row[i]))
	}
	if len(parts) > 0 {
		sb.WriteString(": " + strings.Join(parts, ", "))
	}
	return sb.String()
}

// splitColumns separates grouping columns from metric columns.
func (f *Formatter) splitColumns(question string, rs *RowSet) (groups, metrics []int) {
	for i, col := range rs.Columns {
		switch strings.ToLower(col) {
		case "week_number", "start_date", "end_date", "row_num":
			if strings.EqualFold(col, "week_number") && len(rs.Columns) > 1 {
				groups = append(groups, i)
			}
			continue
		}
		info, known := f.column(question, col, rs.Rows[0][i])
		if known || (info.kind != kindPlain && isNumeric(rs.Rows[0][i])) {
			metrics = append(metrics, i)
		} else {
			groups = append(groups, i)
		}
	}
	return groups, metrics
}

// column resolves a result column to its unit. Unknown numeric columns fall back to question cues.
func (f *Formatter) column(question, col string, v any) (columnInfo, bool) {
	lower := strings.ToLower(col)
	if info, ok := knownColumns[lower]; ok {
		return info, true
	}
	if strings.HasPrefix(lower, "count") {
		return columnInfo{kindCount, "Total count"}, true
	}
	if v != nil && !isNumeric(v) {
		return columnInfo{kindPlain, col}, false
	}
	switch {
	case salesCue.MatchString(question):
		return columnInfo{kindMoney, "Sales revenue"}, false
	case hoursCue.MatchString(question):
		return columnInfo{kindHours, "Hours worked"}, false
	case meetingsCue.MatchString(question):
		return columnInfo{kindMeetings, "Meetings attended"}, false
	}
	return columnInfo{kindPlain, col}, false
}

func (f *Formatter) cell(question, col string, v any) string {
	info, _ := f.column(question, col, v)
	if info.kind == kindPlain {
		return plain(v)
	}
	return f.render(info.kind, v)
}

func (f *Formatter) render(kind valueKind, v any) string {
	if v == nil {
		return notAvailable
	}
	n, ok := toFloat(v)
	if !ok {
		return plain(v)
	}
	switch kind {
	case kindMoney:
		return f.schema.CurrencySymbol + humanize.FormatFloat("#,###.##", n) + " " + f.schema.Currency
	case kindHours:
		return humanize.CommafWithDigits(n, 2) + " hours"
	case kindMeetings:
		if n == 1 {
			return "1 meeting"
		}
		return humanize.CommafWithDigits(n, 2) + " meetings"
	case kindCount:
		return humanize.Comma(int64(n))
	}
	return humanize.CommafWithDigits(n, 2)
}

func groupKey(col string, v any) string {
	if strings.EqualFold(col, "week_number") {
		return "Week " + plain(v)
	}
	return plain(v)
}

// weekContext renders " in week N (starting YYYY-MM-DD)" for rows that carry a week.
func weekContext(cols []string, row []any) string {
	w := indexOf(cols, "week_number")
	if w < 0 {
		return ""
	}
	out := " in week " + plain(row[w])
	if s := indexOf(cols, "start_date"); s >= 0 && row[s] != nil {
		out += " (starting " + plain(row[s]) + ")"
	}
	return out
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

func plain(v any) string {
	switch x := v.(type) {
	case nil:
		return notAvailable
	case string:
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return t.Format(domain.DateLayout)
		}
		return x
	case time.Time:
		return x.Format(domain.DateLayout)
	case float64:
		return humanize.CommafWithDigits(x, 2)
	case float32:
		return humanize.CommafWithDigits(float64(x), 2)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

func isNumeric(v any) bool {
	_, ok := toFloat(v)
	return ok
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case string:
		n, err := strconv.ParseFloat(x, 64)
		return n, err == nil
	}
	return 0, false
}
