package nlq

import (
	"context"
	"database/sql"
	"regexp"
	"strconv"
	"time"
)

var trailingLimit = regexp.MustCompile(`(?i)\blimit\s+(\d+)\s*$`)

// RowSet is the raw result of one statement.
type RowSet struct {
	Columns []string
	Rows    [][]any
	// Capped is set when the statement's trailing LIMIT was reached, so more rows may exist.
	Capped bool
}

// Empty reports whether no rows came back.
func (r *RowSet) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// markCapped sets Capped when the row count equals the statement's trailing LIMIT.
func (r *RowSet) markCapped(sql string) {
	if r == nil {
		return
	}
	m := trailingLimit.FindStringSubmatch(sql)
	if m == nil {
		return
	}
	if n, err := strconv.Atoi(m[1]); err == nil && n > 1 && len(r.Rows) == n {
		r.Capped = true
	}
}

// Executor runs a validated statement.
type Executor interface {
	Execute(ctx context.Context, stmt Statement) (*RowSet, error)
}

// SQLExecutor runs statements inside a transaction that is always rolled back,
// so a statement that slipped past validation can never change data.
type SQLExecutor struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLExecutor(db *sql.DB, timeout time.Duration) *SQLExecutor {
	return &SQLExecutor{db: db, timeout: timeout}
}

func (x *SQLExecutor) Execute(ctx context.Context, stmt Statement) (*RowSet, error) {
	if x.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.timeout)
		defer cancel()
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}

	rs := &RowSet{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &ExecutionError{Err: err}
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExecutionError{Err: err}
	}
	return rs, nil
}
