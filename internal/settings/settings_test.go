package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-standings/internal/ports"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE", "DATABASE_URL", "HTTP_ADDR", "SUBMIT_RATE", "SUBMIT_BURST"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, ":8080", s.HTTPAddr)
	assert.Equal(t, 2.0, s.SubmitRate)
	assert.Equal(t, 5, s.SubmitBurst)

	_, err = s.RequireDatabase()
	assert.True(t, errors.Is(err, ports.ErrConfigNotFound))
}

func TestLoad_DotEnvAndOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "test.env")
	content := "LOG_LEVEL=debug\nHTTP_ADDR=:9090\nSUBMIT_RATE=0.5\nDATABASE_URL=postgres://file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("DATABASE_URL", "postgres://env")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, ":9090", s.HTTPAddr)
	assert.Equal(t, 0.5, s.SubmitRate)

	url, err := s.RequireDatabase()
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", url)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SUBMIT_RATE", "fast"},
		{"SUBMIT_RATE", "-1"},
		{"SUBMIT_BURST", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			var cfgErr *ports.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.key, cfgErr.ConfigKey)
		})
	}
}
