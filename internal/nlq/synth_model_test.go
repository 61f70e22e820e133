package nlq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_activity_nlq/internal/llm"
)

type stubClient struct {
	reply string
	err   error
	got   llm.Request
}

func (c *stubClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	c.got = req
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{name: "plain tags", text: "Sure.\n<sql>SELECT COUNT(*) FROM employees e;</sql>", want: "SELECT COUNT(*) FROM employees e"},
		{name: "upper case tags", text: "<SQL>\nSELECT 1\n</SQL>", want: "SELECT 1"},
		{name: "fenced inside tags", text: "<sql>```sql\nSELECT e.email FROM employees e\n```</sql>", want: "SELECT e.email FROM employees e"},
		{name: "first pair wins", text: "<sql>SELECT 1</sql> or <sql>SELECT 2</sql>", want: "SELECT 1"},
		{name: "missing tags", text: "SELECT 1", wantErr: ErrNoSQLTags},
		{name: "empty tags", text: "<sql> ; </sql>", wantErr: ErrNoSQLTags},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSQL(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModelSynthesizer_Synthesize(t *testing.T) {
	schema := DefaultSchema()

	t.Run("sends the preamble and extracted values", func(t *testing.T) {
		client := &stubClient{reply: "<sql>SELECT COUNT(*) FROM employees e</sql>"}
		s := NewModelSynthesizer(client, schema, ModelOptions{Model: "test-model", MaxTokens: 256})

		stmt, err := s.Synthesize(context.Background(), "How many employees are in IT?", IntentAggregation, Params{ParamDepartment: "IT"})
		require.NoError(t, err)
		assert.Equal(t, Statement{SQL: "SELECT COUNT(*) FROM employees e"}, stmt)

		require.Len(t, client.got.Messages, 2)
		assert.Equal(t, "test-model", client.got.Model)
		assert.Equal(t, 256, client.got.MaxTokens)
		assert.Equal(t, llm.RoleSystem, client.got.Messages[0].Role)
		assert.Contains(t, client.got.Messages[0].Content, "2024-08-28")
		assert.Contains(t, client.got.Messages[0].Content, "<sql>")
		assert.Contains(t, client.got.Messages[1].Content, "- department: IT")
		assert.Contains(t, client.got.Messages[1].Content, "Detected intent: aggregation")
	})

	t.Run("no tags", func(t *testing.T) {
		s := NewModelSynthesizer(&stubClient{reply: "I cannot help with that."}, schema, ModelOptions{})
		_, err := s.Synthesize(context.Background(), "q", IntentPoint, Params{})
		assert.ErrorIs(t, err, ErrNoSQLTags)
	})

	t.Run("client error", func(t *testing.T) {
		boom := errors.New("boom")
		s := NewModelSynthesizer(&stubClient{err: boom}, schema, ModelOptions{Timeout: time.Second})
		_, err := s.Synthesize(context.Background(), "q", IntentPoint, Params{})
		assert.ErrorIs(t, err, boom)
	})
}

func TestBuildPreamble(t *testing.T) {
	p := BuildPreamble(DefaultSchema())

	for _, want := range []string{
		"employees (alias e)",
		"employee_activities (alias ea)",
		"calendar_weeks (alias cw)",
		"Business Development",
		"total_sales is NULL",
		"LOWER(column) LIKE '%term%'",
		"2020-02-01",
		"week_number BETWEEN 10-N+1 AND 10",
		"RMB",
	} {
		assert.Contains(t, p, want)
	}
}
