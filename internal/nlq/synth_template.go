package nlq

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
	"github.com/locvowork/employee_activity_nlq/internal/repository/builder"
)

// Synthesizer turns a classified question into a statement.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, intent Intent, params Params) (Statement, error)
}

const (
	// DefaultDepartment fills a department-scoped template when none was extracted.
	DefaultDepartment = domain.DepartmentSales
	// DefaultListLimit bounds listings that have no filter.
	DefaultListLimit = 10
)

type metric struct {
	key      string
	column   string
	nullable bool
}

var (
	metricHours    = metric{key: "hours", column: "ea.hours_worked"}
	metricSales    = metric{key: "sales", column: "ea.total_sales", nullable: true}
	metricMeetings = metric{key: "meetings", column: "ea.meetings_attended"}
)

var metricCues = []struct {
	m  metric
	re *regexp.Regexp
}{
	{metricSales, regexp.MustCompile(`(?i)\b(sales|revenue|sold)\b`)},
	{metricHours, regexp.MustCompile(`(?i)\bhours?\b`)},
	{metricMeetings, regexp.MustCompile(`(?i)\bmeetings?\b`)},
}

var (
	averageCue    = regexp.MustCompile(`(?i)\b(average|avg|mean)\b`)
	emailCue      = regexp.MustCompile(`(?i)\be-?mail`)
	departmentCue = regexp.MustCompile(`(?i)\bdepartments?\b`)
	titleCue      = regexp.MustCompile(`(?i)\b(job title|title|role|position)\b`)
	hireCue       = regexp.MustCompile(`(?i)\b(hired|hire date|joined|start date)\b`)
	recessionCue  = regexp.MustCompile(`(?i)\brecession\b`)
	ascendingCue  = regexp.MustCompile(`(?i)\b(lowest|least|fewest|bottom|minimum)\b`)
	totalCue      = regexp.MustCompile(`(?i)\b(total|overall|combined|cumulative)\b`)
	singleWeekCue = regexp.MustCompile(`(?i)\b(single week|one week|in a week|any week|and when)\b`)
	performerCue  = regexp.MustCompile(`(?i)\b(performer|performing|salesperson|salespeople)\b`)
	byDeptCue     = regexp.MustCompile(`(?i)\b(by|per|each|every|across) department`)
	byWeekCue     = regexp.MustCompile(`(?i)\b(by|per|each|every) week\b|\bweekly breakdown\b`)
	byEmployeeCue = regexp.MustCompile(`(?i)\b(by|per|each|every) (employee|person|staff member)\b`)
	countCue      = regexp.MustCompile(`(?i)\b(how many|number of|count of)\s+(employees|people|persons|staff|workers)\b`)
)

// activitySubjects are searched in employee_activities.activities, most specific first.
var activitySubjects = []string{
	"customer retention", "customer feedback", "technical challenges", "critical bug", "code review",
	"market research", "marketing campaign", "sales strategy", "engagement strategy", "training",
	"presentation", "quarterly report", "performance review", "documentation", "client",
	"challenge", "solution",
}

// TemplateSynthesizer builds parameter-bound SQL from a fixed dispatch table keyed by intent and lexical cues.
type TemplateSynthesizer struct {
	rules  *Rules
	schema *Schema
}

func NewTemplateSynthesizer(rules *Rules, schema *Schema) *TemplateSynthesizer {
	return &TemplateSynthesizer{rules: rules, schema: schema}
}

func (s *TemplateSynthesizer) Synthesize(_ context.Context, question string, intent Intent, params Params) (Statement, error) {
	var b *builder.SQLBuilder
	switch intent {
	case IntentPoint:
		b = s.point(question, params)
	case IntentAggregation:
		b = s.aggregation(question, params)
	case IntentKnowledge:
		b = s.knowledge(question, params)
	case IntentReasoning:
		b = s.reasoning(question, params)
	case IntentMatch:
		b = s.match(question, params)
	case IntentComparison:
		b = s.comparison(question, params)
	case IntentRanking:
		b = s.ranking(question, params)
	}
	if b == nil {
		return Statement{}, fmt.Errorf("%w: intent %q", ErrNoTemplate, intent)
	}

	sql, args, err := b.BuildSafe()
	if err != nil {
		return Statement{}, fmt.Errorf("build %s statement: %w", intent, err)
	}
	return Statement{SQL: sql, Args: args}, nil
}

func (s *TemplateSynthesizer) point(q string, p Params) *builder.SQLBuilder {
	name, hasName := p.String(ParamName)
	title, hasTitle := p.String(ParamJobTitle)
	dept, hasDept := p.String(ParamDepartment)

	employee := builder.NewSQLBuilder()
	switch {
	case emailCue.MatchString(q):
		employee.Select("e.full_name", "e.email")
	case hasName && departmentCue.MatchString(q):
		employee.Select("e.full_name", "e.department")
	case hasName && titleCue.MatchString(q):
		employee.Select("e.full_name", "e.job_title")
	case hasName && hireCue.MatchString(q):
		employee.Select("e.full_name", "e.hire_date")
	case hasName && len(s.metrics(q)) > 0:
		return s.activityRows(q, p)
	default:
		employee.Select("e.full_name", "e.email", "e.department", "e.job_title")
	}
	employee.From("employees e")

	switch {
	case hasName:
		employee.Where("LOWER(e.full_name) = LOWER(?)", name)
	case hasTitle:
		employee.Where("LOWER(e.job_title) = LOWER(?)", title)
		if hasDept {
			employee.Where("e.department = ?", dept)
		}
		employee.OrderBy("e.full_name")
	case hasDept:
		employee.Where("e.department = ?", dept).OrderBy("e.full_name")
	default:
		employee.OrderBy("e.id").Limit(DefaultListLimit)
	}
	return employee
}

// activityRows echoes a named employee's weekly values for the mentioned metrics.
func (s *TemplateSynthesizer) activityRows(q string, p Params) *builder.SQLBuilder {
	name, _ := p.String(ParamName)
	cols := []string{"e.full_name", "ea.week_number"}
	for _, m := range s.metrics(q) {
		cols = append(cols, m.column)
	}

	b := builder.NewSQLBuilder().From("employees e").Join("INNER", "employee_activities ea", "e.id = ea.employee_id")
	if _, ok := p.String(ParamDate); ok {
		cols = append(cols, "cw.start_date")
	}
	b.Select(cols...).Where("LOWER(e.full_name) = LOWER(?)", name)
	s.applyTimeWindow(b, p, false)
	return b.OrderBy("ea.week_number")
}

func (s *TemplateSynthesizer) aggregation(q string, p Params) *builder.SQLBuilder {
	metrics := s.metrics(q)
	b := builder.NewSQLBuilder().From("employees e")

	groupCol := ""
	switch {
	case byDeptCue.MatchString(q):
		groupCol = "e.department"
	case byWeekCue.MatchString(q) && len(metrics) > 0:
		groupCol = "ea.week_number"
	case byEmployeeCue.MatchString(q):
		groupCol = "e.full_name"
	}

	threshold, hasThreshold := p.Float(ParamThreshold)
	if hasThreshold && groupCol == "" && (countCue.MatchString(q) || len(metrics) == 0) {
		return s.qualifyingCount(q, p, metrics, threshold)
	}

	var cols []string
	if groupCol != "" {
		cols = append(cols, groupCol)
	}

	var aggExprs []string
	if len(metrics) == 0 {
		if groupCol != "" {
			cols = append(cols, "COUNT(*) AS employee_count")
			aggExprs = append(aggExprs, "COUNT(*)")
		} else {
			cols = append(cols, "COUNT(*)")
		}
	} else {
		b.Join("INNER", "employee_activities ea", "e.id = ea.employee_id")
		for _, m := range metrics {
			fn := "SUM"
			if m.averaged {
				fn = "AVG"
			}
			expr, _ := m.aggregate(fn)
			cols = append(cols, expr)
			aggExprs = append(aggExprs, fmt.Sprintf("%s(%s)", fn, m.column))
		}
		if len(metrics) == 1 && metrics[0].nullable {
			b.Where(metrics[0].column + " IS NOT NULL")
		}
		s.applyTimeWindow(b, p, false)
	}
	b.Select(cols...)

	s.applyNames(b, p)
	if dept, ok := p.String(ParamDepartment); ok && groupCol != "e.department" {
		b.Where("e.department = ?", dept)
	}
	if title, ok := p.String(ParamJobTitle); ok {
		b.Where("LOWER(e.job_title) = LOWER(?)", title)
	}

	cmp, _ := p.String(ParamComparator)
	if groupCol == "" {
		// Without groups the threshold filters the activity rows being aggregated.
		if hasThreshold {
			b.Where(fmt.Sprintf("%s %s ?", metrics[0].column, cmp), threshold)
		}
		return b
	}

	if groupCol == "e.full_name" {
		b.GroupBy("e.id", "e.full_name")
	} else {
		b.GroupBy(groupCol)
	}
	if hasThreshold && len(aggExprs) > 0 {
		b.Having(fmt.Sprintf("%s %s ?", aggExprs[0], cmp), threshold)
	}
	return b.OrderBy(groupCol)
}

// qualifyingCount counts employees whose activity passes the threshold. A single week is enough unless
// the question asks for a total or an average; "less than" looks at the lowest week.
func (s *TemplateSynthesizer) qualifyingCount(q string, p Params, metrics []metricMention, threshold float64) *builder.SQLBuilder {
	m := metricMention{metric: metricHours}
	if len(metrics) > 0 {
		m = metrics[0]
	}
	cmp, _ := p.String(ParamComparator)
	fn := "MAX"
	switch {
	case m.averaged:
		fn = "AVG"
	case totalCue.MatchString(q):
		fn = "SUM"
	case cmp == "<" || cmp == "<=":
		fn = "MIN"
	}

	perEmployee := builder.NewSQLBuilder().
		Select("e.id").
		From("employees e").
		Join("INNER", "employee_activities ea", "e.id = ea.employee_id")
	if m.nullable {
		perEmployee.Where(m.column + " IS NOT NULL")
	}
	s.applyTimeWindow(perEmployee, p, false)
	s.applyNames(perEmployee, p)
	if dept, ok := p.String(ParamDepartment); ok {
		perEmployee.Where("e.department = ?", dept)
	}
	if title, ok := p.String(ParamJobTitle); ok {
		perEmployee.Where("LOWER(e.job_title) = LOWER(?)", title)
	}
	perEmployee.GroupBy("e.id").Having(fmt.Sprintf("%s(%s) %s ?", fn, m.column, cmp), threshold)

	return builder.NewSQLBuilder().
		Select("COUNT(*) AS qualifying_employees").
		FromSubquery(perEmployee, "qualifying")
}

func (s *TemplateSynthesizer) knowledge(q string, p Params) *builder.SQLBuilder {
	b := builder.NewSQLBuilder().From("employees e")
	if dept, ok := p.String(ParamDepartment); ok {
		b.Where("e.department = ?", dept)
	}

	if recessionCue.MatchString(q) {
		return b.Select("e.full_name", "e.job_title", "e.hire_date").
			Where("e.hire_date BETWEEN ? AND ?",
				s.schema.RecessionStart.Format(domain.DateLayout),
				s.schema.RecessionEnd.Format(domain.DateLayout)).
			OrderBy("e.hire_date")
	}

	if topic, ok := s.rules.RoleTopicFor(q); ok && len(topic.TitleKeywords) > 0 {
		return b.Select("e.full_name", "e.job_title", "e.department").
			WhereGroup(func(g *builder.SQLBuilder) *builder.SQLBuilder {
				for _, kw := range topic.TitleKeywords {
					g.Or("LOWER(e.job_title) LIKE ?", "%"+strings.ToLower(kw)+"%")
				}
				return g
			}).
			OrderBy("e.full_name")
	}

	return b.Select("e.full_name", "e.job_title", "e.department", "e.hire_date").
		OrderBy("e.hire_date").
		Limit(DefaultListLimit)
}

func (s *TemplateSynthesizer) reasoning(q string, p Params) *builder.SQLBuilder {
	b := builder.NewSQLBuilder().
		Select("e.full_name", "ea.week_number", "ea.activities").
		From("employees e").
		Join("INNER", "employee_activities ea", "e.id = ea.employee_id")

	lower := strings.ToLower(q)
	subject := ""
	for _, candidate := range activitySubjects {
		if strings.Contains(lower, candidate) {
			subject = candidate
			break
		}
	}

	s.applyNames(b, p)
	if dept, ok := p.String(ParamDepartment); ok {
		b.Where("e.department = ?", dept)
	}
	s.applyTimeWindow(b, p, false)

	if subject == "" {
		return b.OrderBy("ea.week_number DESC").OrderBy("e.full_name").Limit(DefaultListLimit)
	}
	return b.Where("LOWER(ea.activities) LIKE ?", "%"+subject+"%").
		OrderBy("e.full_name").
		OrderBy("ea.week_number")
}

func (s *TemplateSynthesizer) match(q string, p Params) *builder.SQLBuilder {
	b := builder.NewSQLBuilder().From("employees e")
	cols := []string{"e.full_name", "e.email"}
	filtered := false

	threshold, hasThreshold := p.Float(ParamThreshold)
	if hasThreshold {
		m := metricHours
		if metrics := s.metrics(q); len(metrics) > 0 {
			m = metrics[0].metric
		}
		cmp, _ := p.String(ParamComparator)
		b.Join("INNER", "employee_activities ea", "e.id = ea.employee_id")
		cols = []string{"e.full_name", "ea.week_number", m.column}
		if m.nullable {
			b.Where(m.column + " IS NOT NULL")
		}
		b.Where(fmt.Sprintf("%s %s ?", m.column, cmp), threshold)
		s.applyTimeWindow(b, p, false)
		b.OrderBy(m.column + " DESC")
		filtered = true
	}

	dept, hasDept := p.String(ParamDepartment)
	if !hasDept && departmentCue.MatchString(q) && !filtered {
		dept, hasDept = DefaultDepartment, true
	}
	if hasDept {
		b.Where("e.department = ?", dept)
		filtered = true
	} else if !hasThreshold {
		cols = append(cols, "e.department")
	}

	if title, ok := p.String(ParamJobTitle); ok {
		b.Where("LOWER(e.job_title) = LOWER(?)", title)
		filtered = true
	}
	if len(p.Strings(ParamNames)) > 0 {
		s.applyNames(b, p)
		filtered = true
	}

	b.Select(cols...).OrderBy("e.full_name")
	if !filtered {
		b.Limit(DefaultListLimit)
	}
	return b
}

func (s *TemplateSynthesizer) comparison(q string, p Params) *builder.SQLBuilder {
	m := metricHours
	if metrics := s.metrics(q); len(metrics) > 0 {
		m = metrics[0].metric
	}
	b := builder.NewSQLBuilder().From("employees e").Join("INNER", "employee_activities ea", "e.id = ea.employee_id")
	if m.nullable {
		b.Where(m.column + " IS NOT NULL")
	}

	names := p.Strings(ParamNames)
	if len(names) >= 2 {
		s.applyNames(b, p)
		_, hasWeek := p.Int(ParamWeek)
		_, hasDate := p.String(ParamDate)
		if hasWeek || hasDate {
			s.applyTimeWindow(b, p, false)
			return b.Select("e.full_name", "ea.week_number", m.column).OrderBy("e.full_name").OrderBy("ea.week_number")
		}
		s.applyTimeWindow(b, p, false)
		expr, _ := m.aggregate("SUM")
		return b.Select("e.full_name", expr).GroupBy("e.id", "e.full_name").OrderBy("e.full_name")
	}

	// Department comparison, also the fallback when fewer than two people were named.
	if depts := p.Strings(ParamDepartments); len(depts) >= 2 {
		b.WhereGroup(func(g *builder.SQLBuilder) *builder.SQLBuilder {
			for _, d := range depts {
				g.Or("e.department = ?", d)
			}
			return g
		})
	}
	s.applyTimeWindow(b, p, false)
	fn := "SUM"
	if averageCue.MatchString(q) {
		fn = "AVG"
	}
	expr, _ := m.aggregate(fn)
	return b.Select("e.department", expr).GroupBy("e.department").OrderBy("e.department")
}

func (s *TemplateSynthesizer) ranking(q string, p Params) *builder.SQLBuilder {
	m := metricHours
	if metrics := s.metrics(q); len(metrics) > 0 {
		m = metrics[0].metric
	} else if performerCue.MatchString(q) {
		m = metricSales
	}

	limit := 1
	if n, ok := p.Int(ParamTopN); ok {
		limit = n
	}
	dir := "DESC"
	if ascendingCue.MatchString(q) {
		dir = "ASC"
	}

	b := builder.NewSQLBuilder().From("employees e").Join("INNER", "employee_activities ea", "e.id = ea.employee_id")
	if m.nullable {
		b.Where(m.column + " IS NOT NULL")
	}

	dept, hasDept := p.String(ParamDepartment)
	if departmentCue.MatchString(q) && !hasDept {
		s.applyTimeWindow(b, p, false)
		expr, alias := m.aggregate("SUM")
		return b.Select("e.department", expr).
			GroupBy("e.department").
			OrderBy(alias + " " + dir).
			OrderBy("e.department").
			Limit(limit)
	}
	if hasDept {
		b.Where("e.department = ?", dept)
	}

	_, hasWeek := p.Int(ParamWeek)
	_, hasDate := p.String(ParamDate)
	_, hasRange := p.Int(ParamStartWeek)
	perWeek := hasWeek || hasDate || singleWeekCue.MatchString(q)
	if !perWeek || hasRange || totalCue.MatchString(q) {
		s.applyTimeWindow(b, p, false)
		expr, alias := m.aggregate("SUM")
		return b.Select("e.full_name", expr).
			GroupBy("e.id", "e.full_name").
			OrderBy(alias + " " + dir).
			OrderBy("e.full_name").
			Limit(limit)
	}

	b.Join("INNER", "calendar_weeks cw", "ea.week_number = cw.week_number")
	s.applyTimeWindow(b, p, true)
	return b.Select("e.full_name", "ea.week_number", "cw.start_date", m.column).
		OrderBy(m.column + " " + dir).
		OrderBy("e.full_name").
		Limit(limit)
}

// applyTimeWindow narrows activity rows by week range, week, or calendar date.
// A date needs calendar_weeks; it is joined here unless the caller already did.
func (s *TemplateSynthesizer) applyTimeWindow(b *builder.SQLBuilder, p Params, calendarJoined bool) {
	if start, ok := p.Int(ParamStartWeek); ok {
		end, _ := p.Int(ParamEndWeek)
		b.Where("ea.week_number BETWEEN ? AND ?", start, end)
		return
	}
	if week, ok := p.Int(ParamWeek); ok {
		b.Where("ea.week_number = ?", week)
		return
	}
	if date, ok := p.String(ParamDate); ok {
		if !calendarJoined {
			b.Join("INNER", "calendar_weeks cw", "ea.week_number = cw.week_number")
		}
		b.Where("cw.start_date <= ?", date).Where("cw.end_date >= ?", date)
	}
}

func (s *TemplateSynthesizer) applyNames(b *builder.SQLBuilder, p Params) {
	names := p.Strings(ParamNames)
	switch len(names) {
	case 0:
	case 1:
		b.Where("LOWER(e.full_name) = LOWER(?)", names[0])
	default:
		b.WhereGroup(func(g *builder.SQLBuilder) *builder.SQLBuilder {
			for _, n := range names {
				g.Or("LOWER(e.full_name) = LOWER(?)", n)
			}
			return g
		})
	}
}

type metricMention struct {
	metric
	pos      int
	averaged bool
}

func (m metric) aggregate(fn string) (expr, alias string) {
	prefix := "total"
	if fn == "AVG" {
		prefix = "avg"
	}
	alias = prefix + "_" + m.key
	return fmt.Sprintf("%s(%s) AS %s", fn, m.column, alias), alias
}

// metrics returns the activity metrics mentioned in q, in order of mention.
// Department names and job titles are blanked first so "Sales department" is not a sales cue.
// A metric is averaged when an average cue appears between it and the previous mention.
func (s *TemplateSynthesizer) metrics(q string) []metricMention {
	stripped := q
	for _, rule := range s.rules.departments {
		for _, re := range rule.patterns {
			stripped = re.ReplaceAllStringFunc(stripped, blank)
		}
		for _, re := range rule.standalone {
			stripped = re.ReplaceAllStringFunc(stripped, blank)
		}
	}
	for _, re := range s.rules.jobTitlePatterns {
		stripped = re.ReplaceAllStringFunc(stripped, blank)
	}

	var out []metricMention
	for _, cue := range metricCues {
		if loc := cue.re.FindStringIndex(stripped); loc != nil {
			out = append(out, metricMention{metric: cue.m, pos: loc[0]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pos < out[j].pos })

	prev := 0
	for i := range out {
		out[i].averaged = averageCue.MatchString(stripped[prev:out[i].pos])
		prev = out[i].pos
	}
	return out
}

// blank keeps byte offsets stable while removing a match.
func blank(s string) string {
	return strings.Repeat(" ", len(s))
}
