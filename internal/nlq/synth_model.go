package nlq

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/locvowork/employee_activity_nlq/internal/domain"
	"github.com/locvowork/employee_activity_nlq/internal/llm"
)

// ModelOptions configures the completion call.
type ModelOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultCompletionTimeout bounds a completion call when ModelOptions.Timeout is unset.
const DefaultCompletionTimeout = 30 * time.Second

// ModelSynthesizer delegates SQL writing to a completion service constrained by a schema preamble.
// Its output is untrusted text and always goes through the validator.
type ModelSynthesizer struct {
	client   llm.Client
	schema   *Schema
	opts     ModelOptions
	preamble string
}

func NewModelSynthesizer(client llm.Client, schema *Schema, opts ModelOptions) *ModelSynthesizer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultCompletionTimeout
	}
	return &ModelSynthesizer{
		client:   client,
		schema:   schema,
		opts:     opts,
		preamble: BuildPreamble(schema),
	}
}

func (s *ModelSynthesizer) Synthesize(ctx context.Context, question string, intent Intent, params Params) (Statement, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	text, err := s.client.Complete(ctx, llm.Request{
		Model: s.opts.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: s.preamble},
			{Role: llm.RoleUser, Content: userPrompt(question, intent, params)},
		},
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Statement{}, fmt.Errorf("completion timed out after %s: %w", s.opts.Timeout, err)
		}
		return Statement{}, fmt.Errorf("completion failed: %w", err)
	}

	sql, err := ExtractSQL(text)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: sql}, nil
}

var (
	sqlTagPattern   = regexp.MustCompile(`(?is)<sql>(.*?)</sql>`)
	codeFencePrefix = regexp.MustCompile("(?i)^```(?:sql)?\\s*")
)

// ExtractSQL returns the statement inside the first <sql></sql> pair.
func ExtractSQL(text string) (string, error) {
	m := sqlTagPattern.FindStringSubmatch(text)
	if m == nil {
		return "", ErrNoSQLTags
	}
	sql := strings.TrimSpace(m[1])
	sql = codeFencePrefix.ReplaceAllString(sql, "")
	sql = strings.TrimSpace(strings.TrimSuffix(sql, "```"))
	sql = strings.TrimSpace(strings.TrimRight(sql, ";"))
	if sql == "" {
		return "", ErrNoSQLTags
	}
	return sql, nil
}

func userPrompt(question string, intent Intent, params Params) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n", question)
	fmt.Fprintf(&sb, "Detected intent: %s\n", intent)
	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("Extracted values:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "- %s: %v\n", k, params[k])
		}
	}
	return sb.String()
}

// BuildPreamble renders the fixed system prompt: schema, anchors and query rules.
func BuildPreamble(schema *Schema) string {
	var sb strings.Builder
	sb.WriteString("You translate questions about employee work activity into one read-only SQL SELECT statement.\n\n")
	sb.WriteString(schema.Describe())

	first, last := schema.Weeks[0], schema.Weeks[len(schema.Weeks)-1]
	rules := []string{
		"Use only the tables and columns listed, always with their aliases (employees e, employee_activities ea, calendar_weeks cw) and explicit JOIN ... ON conditions.",
		"Department values are exact: " + strings.Join(schema.Departments, ", ") + ". Map synonyms such as \"tech\" or \"R&D\" to these values.",
		fmt.Sprintf("week_number runs 1..%d. Week 1 starts %s and week %d ends %s.", schema.MaxWeek(),
			first.StartDate.Format(domain.DateLayout), last.WeekNumber, last.EndDate.Format(domain.DateLayout)),
		"Translate any date into a week by joining calendar_weeks: a date D is in the week where cw.start_date <= D AND cw.end_date >= D. \"The first week of September 2024\" is the week containing 2024-09-01.",
		fmt.Sprintf("\"The last N weeks\" means week_number BETWEEN %d-N+1 AND %d.", schema.MaxWeek(), schema.MaxWeek()),
		"total_sales is NULL for roles without revenue. Add ea.total_sales IS NOT NULL before ranking, MAX, MIN or ORDER BY on it and never treat NULL as zero.",
		"Search text case-insensitively with substring matching: LOWER(column) LIKE '%term%'.",
		fmt.Sprintf("\"During the recession\" means e.hire_date BETWEEN '%s' AND '%s'.",
			schema.RecessionStart.Format(domain.DateLayout), schema.RecessionEnd.Format(domain.DateLayout)),
		"Ranking questions need ORDER BY and LIMIT: LIMIT N for \"top N\", otherwise LIMIT 1.",
		"When projecting aggregates next to plain columns, GROUP BY every plain column. HAVING may only use aliases defined in the SELECT list.",
		"Write literal values directly in the statement. Do not use bind parameters or placeholders.",
		"Answer with exactly one statement wrapped as <sql>SELECT ...</sql> and nothing else.",
	}
	sb.WriteString("\nRules:\n")
	for i, r := range rules {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
	}
	return sb.String()
}
