package nlq

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
)

// Parameter keys. A key is present only when its pattern matched.
const (
	ParamName        = "name"
	ParamNames       = "names"
	ParamDepartment  = "department"
	ParamDepartments = "departments"
	ParamJobTitle    = "job_title"
	ParamWeek        = "week"
	ParamDate        = "date"
	ParamStartWeek   = "start_week"
	ParamEndWeek     = "end_week"
	ParamThreshold   = "threshold"
	ParamComparator  = "comparator"
	ParamTopN        = "top_n"
)

// Params holds values pulled out of a question.
type Params map[string]any

func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Params) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

func (p Params) Int(key string) (int, bool) {
	v, ok := p[key].(int)
	return v, ok
}

func (p Params) Float(key string) (float64, bool) {
	v, ok := p[key].(float64)
	return v, ok
}

func (p Params) Strings(key string) []string {
	v, _ := p[key].([]string)
	return v
}

var (
	quotedPattern    = regexp.MustCompile(`'([^']+)'|"([^"]+)"`)
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	weekPattern      = regexp.MustCompile(`(?i)\bweek\s+(\d{1,2})\b`)
	weekRangePattern = regexp.MustCompile(`(?i)\bweeks?\s+(\d{1,2})\s*(?:-|to|through|and)\s*(?:week\s+)?(\d{1,2})\b`)
	lastWeeksPattern = regexp.MustCompile(`(?i)\blast\s+(\d{1,2})\s+weeks?\b`)
	monthWeekPattern = regexp.MustCompile(`(?i)\bfirst week of (january|february|march|april|may|june|july|august|september|october|november|december),?\s+(\d{4})\b`)
	thresholdPattern = regexp.MustCompile(`(?i)\b(more than|greater than|over|above|at least|less than|fewer than|under|below|at most)\s+(\d+(?:\.\d+)?)\b`)
	topNPattern      = regexp.MustCompile(`(?i)\btop\s+(\d{1,3})\b`)
	capitalizedWord  = regexp.MustCompile(`^[A-Z][a-z]+$`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March, "april": time.April,
	"may": time.May, "june": time.June, "july": time.July, "august": time.August,
	"september": time.September, "october": time.October, "november": time.November, "december": time.December,
}

var comparatorFor = map[string]string{
	"more than":    ">",
	"greater than": ">",
	"over":         ">",
	"above":        ">",
	"at least":     ">=",
	"less than":    "<",
	"fewer than":   "<",
	"under":        "<",
	"below":        "<",
	"at most":      "<=",
}

// nameStopwords are capitalized words that never start or end a person's name.
var nameStopwords = map[string]bool{
	"What": true, "Which": true, "Who": true, "Whom": true, "How": true, "When": true, "Where": true,
	"List": true, "Compare": true, "Find": true, "Show": true, "Retrieve": true, "Give": true,
	"Is": true, "Are": true, "Was": true, "Were": true, "Did": true, "Does": true, "Do": true,
	"The": true, "In": true, "During": true, "For": true, "Of": true, "And": true, "Between": true,
	"Total": true, "Average": true, "Top": true, "Week": true, "Department": true, "Company": true,
	"January": true, "February": true, "March": true, "April": true, "May": true, "June": true,
	"July": true, "August": true, "September": true, "October": true, "November": true, "December": true,
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true, "Friday": true, "Saturday": true, "Sunday": true,
}

// Extractor pulls structured parameters out of question text.
type Extractor struct {
	rules  *Rules
	schema *Schema
}

func NewExtractor(rules *Rules, schema *Schema) *Extractor {
	return &Extractor{rules: rules, schema: schema}
}

// Extract runs every pattern independently over the unmodified question.
func (x *Extractor) Extract(question string) Params {
	p := Params{}

	if names := x.names(question); len(names) > 0 {
		p[ParamName] = names[0]
		p[ParamNames] = names
	}

	if depts := x.departments(question); len(depts) > 0 {
		p[ParamDepartment] = depts[0]
		if len(depts) > 1 {
			p[ParamDepartments] = depts
		}
	}

	if title, ok := x.jobTitle(question); ok {
		p[ParamJobTitle] = title
	}

	if m := weekPattern.FindStringSubmatch(question); m != nil {
		if n, ok := x.weekNumber(m[1]); ok {
			p[ParamWeek] = n
		}
	}

	if m := weekRangePattern.FindStringSubmatch(question); m != nil {
		start, okStart := x.weekNumber(m[1])
		end, okEnd := x.weekNumber(m[2])
		if okStart && okEnd && start <= end {
			p[ParamStartWeek] = start
			p[ParamEndWeek] = end
		}
	}

	if m := lastWeeksPattern.FindStringSubmatch(question); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			last := x.schema.MaxWeek()
			start := last - n + 1
			if start < 1 {
				start = 1
			}
			p[ParamStartWeek] = start
			p[ParamEndWeek] = last
		}
	}

	if d, ok := quotedDate(question); ok {
		p[ParamDate] = d
	} else if m := monthWeekPattern.FindStringSubmatch(question); m != nil {
		year, _ := strconv.Atoi(m[2])
		first := time.Date(year, monthNames[strings.ToLower(m[1])], 1, 0, 0, 0, 0, time.UTC)
		p[ParamDate] = first.Format(domain.DateLayout)
	}

	if m := thresholdPattern.FindStringSubmatch(question); m != nil {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			p[ParamThreshold] = v
			p[ParamComparator] = comparatorFor[strings.ToLower(m[1])]
		}
	}

	if m := topNPattern.FindStringSubmatch(question); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			p[ParamTopN] = n
		}
	}

	return p
}

func (x *Extractor) weekNumber(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > x.schema.MaxWeek() {
		return 0, false
	}
	return n, true
}

// names returns quoted candidates first, then capitalized word pairs, without duplicates.
func (x *Extractor) names(question string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		key := strings.ToLower(name)
		if seen[key] || x.isKnownPhrase(name) {
			return
		}
		seen[key] = true
		out = append(out, name)
	}

	for _, m := range quotedPattern.FindAllStringSubmatch(question, -1) {
		candidate := strings.TrimSpace(m[1] + m[2])
		if candidate == "" || isoDatePattern.MatchString(candidate) || !strings.ContainsAny(candidate, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ") {
			continue
		}
		add(candidate)
	}

	words := strings.Fields(quotedPattern.ReplaceAllString(question, " "))
	for i := 0; i+1 < len(words); {
		first := strings.Trim(words[i], `,.?!;:()`)
		second := strings.Trim(words[i+1], `,.?!;:()`)
		trailing := strings.ContainsAny(words[i], ",.?!;:")
		if !capitalizedWord.MatchString(first) || !capitalizedWord.MatchString(second) || trailing ||
			nameStopwords[first] || nameStopwords[second] {
			i++
			continue
		}
		pair := first + " " + second
		if x.isKnownPhrase(pair) {
			i += 2
			continue
		}
		add(pair)
		i += 2
	}
	return out
}

// isKnownPhrase reports whether s is part of a department or job title rather than a person.
func (x *Extractor) isKnownPhrase(s string) bool {
	for _, d := range x.schema.Departments {
		if containsWords(d, s) {
			return true
		}
	}
	for _, t := range x.rules.jobTitles {
		if containsWords(t, s) {
			return true
		}
	}
	return len(x.departments(s)) > 0
}

// containsWords reports whether needle's words appear contiguously in haystack, ignoring case.
func containsWords(haystack, needle string) bool {
	h := strings.Fields(strings.ToLower(haystack))
	n := strings.Fields(strings.ToLower(needle))
	if len(n) == 0 || len(n) > len(h) {
		return false
	}
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if h[i+j] != n[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// departments returns canonical departments ordered by first mention.
// Standalone cues that fall inside a job title are skipped.
func (x *Extractor) departments(question string) []string {
	type hit struct {
		name string
		pos  int
	}
	var titles [][]int
	for _, re := range x.rules.jobTitlePatterns {
		titles = append(titles, re.FindAllStringIndex(question, -1)...)
	}
	insideTitle := func(loc []int) bool {
		for _, t := range titles {
			if loc[0] >= t[0] && loc[1] <= t[1] {
				return true
			}
		}
		return false
	}

	var hits []hit
	for _, rule := range x.rules.departments {
		best := -1
		consider := func(loc []int) {
			if best < 0 || loc[0] < best {
				best = loc[0]
			}
		}
		for _, re := range rule.patterns {
			if loc := re.FindStringIndex(question); loc != nil {
				consider(loc)
			}
		}
		for _, re := range rule.standalone {
			for _, loc := range re.FindAllStringIndex(question, -1) {
				if !insideTitle(loc) {
					consider(loc)
					break
				}
			}
		}
		if best >= 0 {
			hits = append(hits, hit{name: rule.canonical, pos: best})
		}
	}
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

// jobTitle returns the longest known title mentioned in question.
func (x *Extractor) jobTitle(question string) (string, bool) {
	best := ""
	for i, re := range x.rules.jobTitlePatterns {
		if t := x.rules.jobTitles[i]; re.MatchString(question) && len(t) > len(best) {
			best = t
		}
	}
	return best, best != ""
}

func quotedDate(question string) (string, bool) {
	for _, m := range quotedPattern.FindAllStringSubmatch(question, -1) {
		candidate := strings.TrimSpace(m[1] + m[2])
		if !isoDatePattern.MatchString(candidate) {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}
