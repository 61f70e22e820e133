package nlq

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Issue codes reported by the validator.
const (
	IssueLeftoverPlaceholder = "leftover_placeholder"
	IssueLimitInjected       = "limit_injected"
	IssueHavingAlias         = "having_unknown_alias"
	IssueMissingAlias        = "missing_table_alias"
	IssueNotSelect           = "not_select"
	IssueArgMismatch         = "placeholder_arg_mismatch"
)

// Issue is an advisory finding. Issues never block execution.
type Issue struct {
	Code    string
	Message string
}

func (i Issue) String() string { return i.Code + ": " + i.Message }

var (
	namedPlaceholder    = regexp.MustCompile(`(^|[\s(=,<>])(:[A-Za-z_][A-Za-z0-9_]*)`)
	pyformatPlaceholder = regexp.MustCompile(`%\([A-Za-z_][A-Za-z0-9_]*\)s`)
	bracePlaceholder    = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)
	selectStar          = regexp.MustCompile(`(?is)^\s*select\s+\*\s+from\b`)
	limitClause         = regexp.MustCompile(`(?i)\blimit\s+\d+`)
	whereClause         = regexp.MustCompile(`(?i)\bwhere\b`)
	selectOrWith        = regexp.MustCompile(`(?i)^\s*(select|with)\b`)
	selectAlias         = regexp.MustCompile(`(?i)\bas\s+([A-Za-z_][A-Za-z0-9_]*)`)
	havingBody          = regexp.MustCompile(`(?is)\bhaving\b(.*?)(?:\border\s+by\b|\blimit\b|$)`)
	stringLiteral       = regexp.MustCompile(`'(?:[^']|'')*'`)
	maskedLiteral       = regexp.MustCompile(`\x00(\d+)\x00`)
	identifier          = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_.]*(\s*\()?`)
)

var sqlKeywords = map[string]bool{
	"and": true, "or": true, "not": true, "null": true, "is": true, "in": true, "between": true,
	"like": true, "ilike": true, "true": true, "false": true, "case": true, "when": true, "then": true,
	"else": true, "end": true, "distinct": true, "as": true, "exists": true,
}

// Validator applies conservative textual checks and mechanical repairs. It does not parse SQL.
type Validator struct {
	schema *Schema
}

func NewValidator(schema *Schema) *Validator {
	return &Validator{schema: schema}
}

// Validate returns the repaired statement and every issue found.
func (v *Validator) Validate(stmt Statement) (Statement, []Issue) {
	var issues []Issue
	sql := strings.TrimSpace(stmt.SQL)
	sql = strings.TrimSpace(strings.TrimRight(sql, ";"))

	if !selectOrWith.MatchString(sql) {
		issues = append(issues, Issue{Code: IssueNotSelect, Message: "statement is not a SELECT; it will run in a rolled-back transaction"})
	}

	sql, leftovers := replacePlaceholders(sql, len(stmt.Args) == 0)
	for _, p := range leftovers {
		issues = append(issues, Issue{Code: IssueLeftoverPlaceholder, Message: fmt.Sprintf("replaced placeholder %s with ''", p)})
	}

	if n := countPositional(sql); len(stmt.Args) > 0 && n != len(stmt.Args) {
		issues = append(issues, Issue{Code: IssueArgMismatch, Message: fmt.Sprintf("%d placeholders for %d arguments", n, len(stmt.Args))})
	}

	if selectStar.MatchString(sql) && !limitClause.MatchString(sql) {
		if whereClause.MatchString(sql) {
			sql += fmt.Sprintf(" LIMIT %d", DefaultListLimit)
		} else {
			sql = fmt.Sprintf("SELECT * FROM (SELECT ROW_NUMBER() OVER () AS row_num, src.* FROM (%s) AS src) AS bounded ORDER BY row_num LIMIT %d", sql, DefaultListLimit)
		}
		issues = append(issues, Issue{Code: IssueLimitInjected, Message: fmt.Sprintf("unbounded SELECT * limited to %d rows", DefaultListLimit)})
	}

	issues = append(issues, v.havingIssues(sql)...)
	issues = append(issues, v.aliasIssues(sql)...)

	return Statement{SQL: sql, Args: stmt.Args}, issues
}

// replacePlaceholders swaps leftover named placeholders for empty literals. Positional $N markers count as
// leftovers only when the statement has no bound arguments.
// Quoted literals are left untouched.
func replacePlaceholders(sql string, positionalToo bool) (string, []string) {
	sql, literals := maskLiterals(sql)
	var found []string
	sql = namedPlaceholder.ReplaceAllStringFunc(sql, func(m string) string {
		sub := namedPlaceholder.FindStringSubmatch(m)
		found = append(found, sub[2])
		return sub[1] + "''"
	})
	for _, re := range []*regexp.Regexp{pyformatPlaceholder, bracePlaceholder} {
		sql = re.ReplaceAllStringFunc(sql, func(m string) string {
			found = append(found, m)
			return "''"
		})
	}
	if positionalToo {
		sql = positionalPlaceholder.ReplaceAllStringFunc(sql, func(m string) string {
			found = append(found, m)
			return "''"
		})
	}
	return unmaskLiterals(sql, literals), found
}

// maskLiterals swaps every quoted literal for an indexed NUL-delimited token.
func maskLiterals(sql string) (string, []string) {
	var literals []string
	masked := stringLiteral.ReplaceAllStringFunc(sql, func(m string) string {
		literals = append(literals, m)
		return fmt.Sprintf("\x00%d\x00", len(literals)-1)
	})
	return masked, literals
}

func unmaskLiterals(sql string, literals []string) string {
	return maskedLiteral.ReplaceAllStringFunc(sql, func(m string) string {
		i, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || i >= len(literals) {
			return m
		}
		return literals[i]
	})
}

func countPositional(sql string) int {
	sql, _ = maskLiterals(sql)
	seen := map[string]bool{}
	for _, m := range positionalPlaceholder.FindAllString(sql, -1) {
		seen[m] = true
	}
	return len(seen)
}

// havingIssues flags bare identifiers in HAVING that are neither SELECT aliases nor columns.
func (v *Validator) havingIssues(sql string) []Issue {
	m := havingBody.FindStringSubmatch(sql)
	if m == nil {
		return nil
	}
	aliases := map[string]bool{}
	for _, a := range selectAlias.FindAllStringSubmatch(sql, -1) {
		aliases[strings.ToLower(a[1])] = true
	}

	body := stringLiteral.ReplaceAllString(m[1], "''")
	var issues []Issue
	for _, tok := range identifier.FindAllStringSubmatch(body, -1) {
		name := tok[0]
		if tok[1] != "" || strings.Contains(name, ".") {
			continue
		}
		lower := strings.ToLower(name)
		if sqlKeywords[lower] || aliases[lower] || v.schema.IsColumn(lower) {
			continue
		}
		issues = append(issues, Issue{Code: IssueHavingAlias, Message: fmt.Sprintf("HAVING references %q which is not defined in the SELECT list", name)})
	}
	return issues
}

// aliasIssues flags schema tables referenced without their expected alias.
func (v *Validator) aliasIssues(sql string) []Issue {
	var issues []Issue
	for _, t := range v.schema.Tables {
		ref := regexp.MustCompile(`(?i)\b(?:from|join)\s+` + regexp.QuoteMeta(t.Name) + `\b`)
		if !ref.MatchString(sql) {
			continue
		}
		aliased := regexp.MustCompile(`(?i)\b(?:from|join)\s+` + regexp.QuoteMeta(t.Name) + `\s+(?:as\s+)?` + regexp.QuoteMeta(t.Alias) + `\b`)
		if !aliased.MatchString(sql) {
			issues = append(issues, Issue{Code: IssueMissingAlias, Message: fmt.Sprintf("table %s is referenced without alias %s", t.Name, t.Alias)})
		}
	}
	return issues
}
