package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadEnvConfig(t *testing.T) {
	t.Run("defaults without .env file", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("DB_DRIVER", "")
		t.Setenv("NLQ_STRATEGY", "")

		require.NoError(t, LoadEnvConfig())
		assert.Equal(t, "postgres", DefaultEnvConfig.DB_DRIVER)
		assert.Equal(t, "template", DefaultEnvConfig.NLQ_STRATEGY)
		assert.Equal(t, 10*time.Second, DefaultEnvConfig.QUERY_TIMEOUT)
		assert.Equal(t, 1024, DefaultEnvConfig.LLM_MAX_TOKENS)
	})

	t.Run("environment overrides", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("LLM_TEMPERATURE", "0.2")
		t.Setenv("LLM_TIMEOUT", "45")
		t.Setenv("QUERY_TIMEOUT", "2s")

		require.NoError(t, LoadEnvConfig())
		assert.Equal(t, "sqlite", DefaultEnvConfig.DB_DRIVER)
		assert.InDelta(t, 0.2, DefaultEnvConfig.LLM_TEMPERATURE, 1e-9)
		assert.Equal(t, 45*time.Second, DefaultEnvConfig.LLM_TIMEOUT)
		assert.Equal(t, 2*time.Second, DefaultEnvConfig.QUERY_TIMEOUT)
	})
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("NLQ_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("NLQ_TEST_INT", 7))

	t.Setenv("NLQ_TEST_FLOAT", "1.5")
	assert.InDelta(t, 1.5, getEnvFloat("NLQ_TEST_FLOAT", 0), 1e-9)

	assert.Equal(t, "fallback", getEnvString("NLQ_TEST_MISSING", "fallback"))
}
