package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nDB_DRIVER=postgres\nJWT_SECRET=\"s3cret\"\n\nbroken-line\n"), 0o600))

	out := defaultValues()
	require.NoError(t, mergeDotEnv(path, out))

	assert.Equal(t, "postgres", out["DB_DRIVER"])
	assert.Equal(t, "s3cret", out["JWT_SECRET"])
}

func TestMergeJSONConfigAcceptsScalars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"app_port":"9090","low_stock_threshold":5,"debug":true,"nested":{"a":1}}`), 0o600))

	out := map[string]string{}
	require.NoError(t, mergeJSONConfig(path, out))

	assert.Equal(t, "9090", out["APP_PORT"])
	assert.Equal(t, "5", out["LOW_STOCK_THRESHOLD"])
	assert.Equal(t, "true", out["DEBUG"])
	assert.NotContains(t, out, "NESTED")
}

func TestMergeEnvironOnlyTakesAppKeys(t *testing.T) {
	out := defaultValues()
	mergeEnviron([]string{"APP_PORT=7000", "HOME=/root", "REPORT_CACHE_TTL=5m"}, out)

	assert.Equal(t, "7000", out["APP_PORT"])
	assert.Equal(t, "5m", out["REPORT_CACHE_TTL"])
	assert.NotContains(t, out, "HOME")
}

func TestTypedAccessorsFallBack(t *testing.T) {
	Set("JWT_TTL", "not-a-duration")
	Set("LOW_STOCK_THRESHOLD", "abc")
	Set("CORS_ORIGINS", "https://a.example, https://b.example,")

	assert.Equal(t, 2*time.Hour, JWTTTL())
	assert.Equal(t, 10, LowStockThreshold())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, CORSOrigins())

	Set("JWT_TTL", "30m")
	assert.Equal(t, 30*time.Minute, JWTTTL())
}

func TestDatabaseDriverRejectsUnknown(t *testing.T) {
	Set("DB_DRIVER", "oracle")
	Set("DATABASE_DSN", "")
	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, defaultSQLiteDSN, DatabaseDSN())

	Set("DB_DRIVER", "postgres")
	assert.Equal(t, defaultPostgresDSN, DatabaseDSN())
}
