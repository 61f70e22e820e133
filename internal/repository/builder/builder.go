package builder

import (
	"fmt"
	"regexp"
	"strings"
)

// SQLBuilder helps construct parameter-bound SQL queries dynamically.
// Conditions are written with "?" markers which Build rewrites to "$N".
type SQLBuilder struct {
	table      string
	columns    []string
	values     []interface{}
	onConflict string
	joins      []string
	groupBy    []string
	orderBy    []string
	limit      int
	offset     int
	isInsert   bool
	isSelect   bool

	where         []condition
	orConditions  []condition
	whereGroups   []whereGroup
	rawConditions []condition
	having        []condition

	subquery *SQLBuilder
	subAlias string
}

// condition is a SQL fragment with its bound arguments.
type condition struct {
	sql  string
	args []interface{}
}

// whereGroup represents a grouped (parenthesized) condition
type whereGroup struct {
	builder *SQLBuilder
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.isSelect = true
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.isInsert = true
	b.table = table
	b.columns = cols
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// FromSubquery selects from a derived table. Its placeholders are numbered before the outer query's.
func (b *SQLBuilder) FromSubquery(sub *SQLBuilder, alias string) *SQLBuilder {
	b.subquery = sub
	b.subAlias = alias
	return b
}

// Values specifies the values for insertion.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.values = vals
	return b
}

// OnConflict appends an ON CONFLICT clause to an INSERT.
func (b *SQLBuilder) OnConflict(clause string) *SQLBuilder {
	b.onConflict = clause
	return b
}

// Where adds a condition combined with AND.
func (b *SQLBuilder) Where(cond string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition{sql: cond, args: args})
	return b
}

// Join adds a JOIN clause.
func (b *SQLBuilder) Join(joinType, table, on string) *SQLBuilder {
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN %s ON %s", joinType, table, on))
	return b
}

// GroupBy adds GROUP BY expressions.
func (b *SQLBuilder) GroupBy(cols ...string) *SQLBuilder {
	b.groupBy = append(b.groupBy, cols...)
	return b
}

// Having adds a HAVING condition combined with AND.
func (b *SQLBuilder) Having(cond string, args ...interface{}) *SQLBuilder {
	b.having = append(b.having, condition{sql: cond, args: args})
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Offset adds an OFFSET clause.
func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// Or adds a condition combined with OR against everything before it.
func (b *SQLBuilder) Or(cond string, args ...interface{}) *SQLBuilder {
	b.orConditions = append(b.orConditions, condition{sql: cond, args: args})
	return b
}

// WhereGroup adds a parenthesized condition combined with AND.
// Inside the group, Where conditions are AND-ed and the result is OR-ed with the group's Or conditions.
func (b *SQLBuilder) WhereGroup(fn func(*SQLBuilder) *SQLBuilder) *SQLBuilder {
	b.whereGroups = append(b.whereGroups, whereGroup{builder: fn(NewSQLBuilder())})
	return b
}

// WhereRaw adds a raw SQL condition combined with AND.
func (b *SQLBuilder) WhereRaw(sql string, args ...interface{}) *SQLBuilder {
	b.rawConditions = append(b.rawConditions, condition{sql: sql, args: args})
	return b
}

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// BuildSafe constructs the final SQL string and arguments with safety validation.
// Returns an error if the number of distinct placeholders doesn't match the number of arguments.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	sql, args := b.Build()

	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllString(sql, -1) {
		seen[m] = struct{}{}
	}
	if len(seen) != len(args) {
		return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d)", len(seen), len(args))
	}

	return sql, args, nil
}

// Build constructs the final SQL string and arguments. It does not mutate the builder,
// so calling it twice yields the same result.
func (b *SQLBuilder) Build() (string, []interface{}) {
	sql, args, _ := b.build(1)
	return sql, args
}

// build renders the statement numbering placeholders from argIndex and returns the next free index.
func (b *SQLBuilder) build(argIndex int) (string, []interface{}, int) {
	var sb strings.Builder
	var args []interface{}

	bind := func(c condition) string {
		args = append(args, c.args...)
		return rewritePlaceholders(c.sql, &argIndex)
	}

	if b.isInsert {
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES (")
		placeholders := make([]string, len(b.values))
		for i := range b.values {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			argIndex++
		}
		args = append(args, b.values...)
		sb.WriteString(strings.Join(placeholders, ", "))
		sb.WriteString(")")
		if b.onConflict != "" {
			sb.WriteString(" ON CONFLICT ")
			sb.WriteString(b.onConflict)
		}
		return sb.String(), args, argIndex
	}

	if b.isSelect {
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		if b.subquery != nil {
			var subSQL string
			var subArgs []interface{}
			subSQL, subArgs, argIndex = b.subquery.build(argIndex)
			args = append(args, subArgs...)
			sb.WriteString("(" + subSQL + ") AS " + b.subAlias)
		} else {
			sb.WriteString(b.table)
		}
		for _, join := range b.joins {
			sb.WriteString(" ")
			sb.WriteString(join)
		}
	}

	// AND-combined conditions: where, groups, raw
	var conditions []string
	for _, c := range b.where {
		conditions = append(conditions, bind(c))
	}
	for _, group := range b.whereGroups {
		g := group.builder
		var groupConditions []string
		if len(g.where) > 0 {
			var inner []string
			for _, c := range g.where {
				inner = append(inner, bind(c))
			}
			groupConditions = append(groupConditions, strings.Join(inner, " AND "))
		}
		for _, c := range g.orConditions {
			groupConditions = append(groupConditions, bind(c))
		}
		for _, c := range g.rawConditions {
			groupConditions = append(groupConditions, bind(c))
		}
		if len(groupConditions) > 0 {
			conditions = append(conditions, "("+strings.Join(groupConditions, " OR ")+")")
		}
	}
	for _, c := range b.rawConditions {
		conditions = append(conditions, bind(c))
	}

	clause := strings.Join(conditions, " AND ")
	for _, c := range b.orConditions {
		if clause == "" {
			clause = bind(c)
			continue
		}
		clause += " OR " + bind(c)
	}
	if clause != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(clause)
	}

	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}

	if len(b.having) > 0 {
		var having []string
		for _, c := range b.having {
			having = append(having, bind(c))
		}
		sb.WriteString(" HAVING ")
		sb.WriteString(strings.Join(having, " AND "))
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	if b.limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
	}

	if b.offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", b.offset))
	}

	return sb.String(), args, argIndex
}

// rewritePlaceholders replaces each "?" with the next "$N".
func rewritePlaceholders(sql string, next *int) string {
	var sb strings.Builder
	parts := strings.Split(sql, "?")
	for i, part := range parts {
		sb.WriteString(part)
		if i < len(parts)-1 {
			sb.WriteString(fmt.Sprintf("$%d", *next))
			*next++
		}
	}
	return sb.String()
}
