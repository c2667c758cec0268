package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "density", cfg.Simulation.FieldPolicy)
	assert.Equal(t, 256, cfg.Simulation.CacheSize)
	assert.Equal(t, 180, cfg.Simulation.GridRows)
	assert.Equal(t, 360, cfg.Simulation.GridCols)
	assert.Equal(t, 4.0, cfg.Simulation.DefaultScale)
}

func TestLoad_File(t *testing.T) {
	content := `
server:
  port: 9090
  shutdown_timeout: 5s
database:
  enabled: true
  host: db.internal
  max_open_conns: 20
logging:
  level: debug
simulation:
  field_policy: magnitude
  cache_size: 0
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "magnitude", cfg.Simulation.FieldPolicy)
	assert.Equal(t, 0, cfg.Simulation.CacheSize)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CLIMATE_SERVER_PORT", "7070")
	t.Setenv("CLIMATE_SIMULATION_FIELD_POLICY", "magnitude")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "magnitude", cfg.Simulation.FieldPolicy)
}

func TestLoadConfig_UsesEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o600))
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "bad shutdown", mutate: func(c *Config) { c.Server.ShutdownTimeout = 0 }, wantErr: "server.shutdown_timeout"},
		{name: "db without host", mutate: func(c *Config) { c.Database.Enabled = true; c.Database.Host = "" }, wantErr: "database.host"},
		{name: "db without pool", mutate: func(c *Config) { c.Database.Enabled = true; c.Database.MaxOpenConns = 0 }, wantErr: "database.max_open_conns"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "logging.level"},
		{name: "bad policy", mutate: func(c *Config) { c.Simulation.FieldPolicy = "random" }, wantErr: "simulation.field_policy"},
		{name: "negative cache", mutate: func(c *Config) { c.Simulation.CacheSize = -1 }, wantErr: "simulation.cache_size"},
		{name: "tiny grid", mutate: func(c *Config) { c.Simulation.GridRows = 1 }, wantErr: "simulation.grid_rows"},
		{name: "scale too big", mutate: func(c *Config) { c.Simulation.DefaultScale = 7 }, wantErr: "simulation.default_scale"},
		{name: "scale not a number", mutate: func(c *Config) { c.Simulation.DefaultScale = math.NaN() }, wantErr: "simulation.default_scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_Connection(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Database.Password = "secret"

	conn := cfg.Database.Connection()
	assert.Equal(t, "localhost", conn.Host)
	assert.Equal(t, 10, conn.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, conn.ConnMaxIdleTime)
	assert.Equal(t,
		"host=localhost port=5432 user=climate password=secret dbname=climate_dashboard sslmode=disable",
		conn.DSN())
}

func TestLoad_ExampleFile(t *testing.T) {
	example, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	require.NoError(t, example.Validate())

	defaults, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, defaults, example)
}
