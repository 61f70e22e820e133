package dataflow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_activity_nlq/pkg/dataflow"
)

type weekRow struct {
	Name  string
	Hours int
}

func TestPipeline_MapRetryCollect(t *testing.T) {
	ctx := context.Background()

	source := dataflow.From(ctx, "Wei Zhang,42", "Na Li,38", "retry,40", "broken")

	parsed := dataflow.Map(ctx, source, func(_ context.Context, s string) (weekRow, error) {
		var r weekRow
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return r, fmt.Errorf("invalid row %q", s)
		}
		_, err := fmt.Sscanf(parts[1], "%d", &r.Hours)
		r.Name = parts[0]
		return r, err
	})

	var attempts int32
	saved := dataflow.Map(ctx, parsed, func(_ context.Context, r weekRow) (weekRow, error) {
		if r.Name == "retry" && atomic.AddInt32(&attempts, 1) < 3 {
			return r, errors.New("transient error")
		}
		return r, nil
	}, dataflow.WithRetry(3, func(int) time.Duration { return time.Millisecond }))

	rows, err := dataflow.Collect(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, []weekRow{{"Wei Zhang", 42}, {"Na Li", 38}, {"retry", 40}}, rows)
	assert.EqualValues(t, 3, attempts)
}

func TestPipeline_ErrorHandlerSeesDroppedItems(t *testing.T) {
	ctx := context.Background()
	var dropped []error

	out := dataflow.Map(ctx, dataflow.From(ctx, 1, 2, 3), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errors.New("two")
		}
		return n * 10, nil
	}, dataflow.WithErrorHandler(func(err error) bool {
		dropped = append(dropped, err)
		return true
	}))

	got, err := dataflow.Collect(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 30}, got)
	assert.Len(t, dropped, 1)
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	even := dataflow.Filter(ctx, dataflow.From(ctx, 1, 2, 3, 4), func(n int) bool { return n%2 == 0 })

	got, err := dataflow.Collect(ctx, even)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, got)
}

func TestForEach_FirstError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := dataflow.ForEach(ctx, dataflow.From(ctx, "a", "b"), func(_ context.Context, s string) error {
		if s == "b" {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEach_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := dataflow.ForEach(ctx, dataflow.New(make(chan int)), func(context.Context, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
