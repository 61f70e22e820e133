package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := globalLogger
	buf := &bytes.Buffer{}
	globalLogger = zerolog.New(buf)
	t.Cleanup(func() { globalLogger = prev })
	return buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestContextFields(t *testing.T) {
	buf := captureGlobal(t)

	ctx := WithLogger(context.Background(), map[string]interface{}{"source": "cli"})
	ctx = WithRequest(ctx, "abc", "template")
	ctx = WithIntent(ctx, "ranking")
	InfoLog(ctx, "answered %d question", 1)

	entry := lastLine(t, buf)
	assert.Equal(t, "cli", entry["source"])
	assert.Equal(t, "abc", entry[FieldRequestID])
	assert.Equal(t, "template", entry[FieldStrategy])
	assert.Equal(t, "ranking", entry[FieldIntent])
	assert.Equal(t, "answered 1 question", entry["message"])
}

func TestWithStage(t *testing.T) {
	buf := captureGlobal(t)

	WarnLog(WithStage(context.Background(), "validated", ""), "repaired")
	entry := lastLine(t, buf)
	assert.Equal(t, "validated", entry[FieldStage])
	assert.NotContains(t, entry, FieldErrorKind)

	ErrorLog(WithStage(context.Background(), "executed", "execution"), "Pipeline failed: %v", errors.New("no such table"))
	entry = lastLine(t, buf)
	assert.Equal(t, "executed", entry[FieldStage])
	assert.Equal(t, "execution", entry[FieldErrorKind])
}

func TestErrorLog(t *testing.T) {
	buf := captureGlobal(t)

	ErrorLog(context.Background(), "Execution failed: %v", errors.New("syntax error"))
	entry := lastLine(t, buf)
	assert.Equal(t, "syntax error", entry["error"])
	assert.Equal(t, "Execution failed: syntax error", entry["message"])

	ErrorLog(context.Background(), "stage %s failed: %v", "format", errors.New("boom"))
	entry = lastLine(t, buf)
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "stage format failed: boom", entry["message"])

	ErrorLog(context.Background(), "stage %s failed", "format")
	entry = lastLine(t, buf)
	assert.NotContains(t, entry, "error")
	assert.Equal(t, "stage format failed", entry["message"])
}
