package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/angka-kredit/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DB_PATH", "LOG_LEVEL", "LOG_FORMAT", "TABLES_FILE", "TEMPLATE_FILE", "CORS_ORIGINS", "REPORT_CITY"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := config.LoadFiles()
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "angka_kredit.db", c.DBPath)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, []string{"*"}, c.CORSOrigins)
	assert.Equal(t, ":8080", c.Addr())
	assert.Equal(t, logrus.InfoLevel, c.LogrusLevel())
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3001")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := config.LoadFiles()
	require.NoError(t, err)
	assert.Equal(t, 3001, c.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins)
	assert.Equal(t, logrus.DebugLevel, c.Logger().GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, c.Logger().Formatter)
}

func TestLoad_EnvFileDoesNotOverrideProcess(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("DB_PATH=from-file.db\nREPORT_CITY=Surabaya\n"), 0o600))
	t.Setenv("REPORT_CITY", "Malang")
	t.Cleanup(func() { os.Unsetenv("DB_PATH") })

	c, err := config.LoadFiles(file, filepath.Join(dir, ".env.local"))
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", c.DBPath)
	assert.Equal(t, "Malang", c.ReportCity)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_FORMAT", "xml")
	_, err := config.LoadFiles()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("PORT", "not-a-number")
	_, err = config.LoadFiles()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("PORT", "70000")
	_, err = config.LoadFiles()
	assert.Error(t, err)
}
