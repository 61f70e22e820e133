package nlq

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
)

// Statement is synthesized SQL with its bound arguments kept apart from the text.
type Statement struct {
	SQL  string
	Args []any
}

var positionalPlaceholder = regexp.MustCompile(`\$(\d+)`)

// Display renders the statement with arguments inlined as literals.
// It is for humans only; execution always binds Args.
func (s Statement) Display() string {
	if len(s.Args) == 0 {
		return s.SQL
	}
	return positionalPlaceholder.ReplaceAllStringFunc(s.SQL, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(s.Args) {
			return m
		}
		return literal(s.Args[n-1])
	})
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case time.Time:
		return "'" + x.Format(domain.DateLayout) + "'"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
