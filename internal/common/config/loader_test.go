package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  redis:
    address: localhost:6379
workers:
  index-lead:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "magnet-wizard", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Wizard.TTL())
	assert.Equal(t, "wizard:session:", cfg.Wizard.SessionKeyPrefix)
	assert.Equal(t, "lead-submission", cfg.Wizard.ProcessID)
	assert.Equal(t, "magnet-leads", cfg.Database.Elasticsearch.LeadIndex)
	assert.Equal(t, "info", cfg.Logging.Level)

	w := cfg.Workers["index-lead"]
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis.internal:6380")
	path := writeConfig(t, `
database:
  redis:
    address: ${TEST_REDIS_ADDR}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", cfg.Database.Redis.Address)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing redis",
			body:    "app:\n  name: x\n",
			wantErr: "database.redis.address is required",
		},
		{
			name: "process start without broker",
			body: `
database:
  redis:
    address: localhost:6379
wizard:
  start_process: true
`,
			wantErr: "camunda.broker_address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateForWorkers(t *testing.T) {
	cfg := &Config{}
	cfg.Camunda.BrokerAddress = "localhost:26500"
	cfg.Database.Postgres.Host = "db"
	cfg.Database.Postgres.Database = "magnet_wizard"
	cfg.Database.Postgres.User = "wizard"
	cfg.Database.Elasticsearch.Addresses = []string{"http://es:9200"}
	assert.NoError(t, ValidateForWorkers(cfg))

	cfg.Database.Elasticsearch.Addresses = nil
	assert.Error(t, ValidateForWorkers(cfg))
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"crm-lead-create": {Enabled: false, MaxJobsActive: 2, Timeout: 1000, MaxRetries: 1},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "crm-lead-create"))
	assert.True(t, IsWorkerEnabled(cfg, "index-lead"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "crm-lead-create").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
