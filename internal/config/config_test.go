package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketwatch/bucketwatch/internal/config"
)

// writeConfig writes yaml to a temp file and returns its path.
func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bucketwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestLoad_NoFile_ReturnsDefaults(t *testing.T) {
	// Blank out any ambient overrides from the developer's shell.
	for _, name := range []string{"S3_ENDPOINT", "S3_KEY", "S3_SECRET", "S3_USE_SSL", "BUCKETWATCH_LISTEN_ADDR", "PORT"} {
		t.Setenv(name, "")
	}

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "s3.amazonaws.com", cfg.S3.Endpoint)
	assert.True(t, cfg.S3.UseSSL)
	assert.Nil(t, cfg.Watch)
}

func TestLoad_MissingFile_Fails(t *testing.T) {
	_, err := config.Load("/nonexistent/bucketwatch.yaml")
	require.Error(t, err)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
s3:
  endpoint: minio:9000
  access_key: watcher
  secret_key: hunter2
  use_ssl: false
  list_timeout: 45s
watch:
  schedule: "*/5 * * * *"
  probes:
    - bucket: backups
      max_age: 24h
    - bucket: exports
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "minio:9000", cfg.S3.Endpoint)
	assert.Equal(t, "watcher", cfg.S3.AccessKey)
	assert.False(t, cfg.S3.UseSSL)
	assert.Equal(t, 45*time.Second, cfg.S3.ListTimeout)

	require.NotNil(t, cfg.Watch)
	assert.Equal(t, "*/5 * * * *", cfg.Watch.Schedule)
	require.Len(t, cfg.Watch.Probes, 2)
	assert.Equal(t, "backups", cfg.Watch.Probes[0].Bucket)
	assert.Equal(t, "24h", cfg.Watch.Probes[0].MaxAge)
	assert.Empty(t, cfg.Watch.Probes[1].MaxAge)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
s3:
  endpoint: minio:9000
  access_key: from-file
`)
	t.Setenv("S3_ENDPOINT", "other-minio:9000")
	t.Setenv("S3_KEY", "from-env")
	t.Setenv("S3_SECRET", "secret-from-env")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "other-minio:9000", cfg.S3.Endpoint)
	assert.Equal(t, "from-env", cfg.S3.AccessKey)
	assert.Equal(t, "secret-from-env", cfg.S3.SecretKey)
}

func TestLoad_EndpointSchemeSelectsSSL(t *testing.T) {
	t.Setenv("S3_ENDPOINT", "https://s3.example.com")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3.example.com", cfg.S3.Endpoint)
	assert.True(t, cfg.S3.UseSSL)

	t.Setenv("S3_ENDPOINT", "http://minio:9000")
	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", cfg.S3.Endpoint)
	assert.False(t, cfg.S3.UseSSL)
}

func TestLoad_PortEnvSetsListen(t *testing.T) {
	t.Setenv("BUCKETWATCH_LISTEN_ADDR", "")
	t.Setenv("PORT", "9999")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Listen)
}

func TestLoad_WatchValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			"missing schedule",
			"watch:\n  probes:\n    - bucket: backups\n",
		},
		{
			"no probes",
			"watch:\n  schedule: \"*/5 * * * *\"\n",
		},
		{
			"probe without bucket",
			"watch:\n  schedule: \"*/5 * * * *\"\n  probes:\n    - max_age: 24h\n",
		},
		{
			"probe with bad max_age",
			"watch:\n  schedule: \"*/5 * * * *\"\n  probes:\n    - bucket: backups\n      max_age: soon\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
		})
	}
}
