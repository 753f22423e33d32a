package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8090", cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, EventBackendLocal, cfg.EventBackend)
	assert.Equal(t, 5, cfg.IndexLimit)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "polls.yaml")
	err := os.WriteFile(path, []byte("server_port: \"9000\"\nindex_limit: 10\ndb_path: from-file.db\n"), 0o600)
	require.NoError(t, err)

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("INDEX_LIMIT", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "from-file.db", cfg.DBPath)
	assert.Equal(t, 3, cfg.IndexLimit)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_PATH=dotenv.db\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DB_PATH") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dotenv.db", cfg.DBPath)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad driver", "DB_DRIVER", "oracle"},
		{"bad backend", "EVENT_BACKEND", "kafka"},
		{"redis backend without addr", "EVENT_BACKEND", "redis"},
		{"bad index limit", "INDEX_LIMIT", "many"},
		{"bad redis db", "REDIS_DB", "x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "pollsuser:pollspassword@tcp(mysql:3306)/pollsdb?charset=utf8mb4&parseTime=True&loc=Local", cfg.MySQLDSN())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
